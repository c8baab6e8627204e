package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/JUSAIR-JSR/MEA-Student-portal/core/account"
	"github.com/JUSAIR-JSR/MEA-Student-portal/core/notification"
)

func Test_notificationApi(t *testing.T) {
	ta := setup(t)

	adm := ta.createAdmin(t, "Boss", "admin@mea.test", "adminpass")
	stu := ta.createStudent(t, "S One", "s1@mea.test", "pw", "R-001", "Science")

	adminToken := getToken(t, account.Identity{ID: adm.ID, Role: account.RoleAdmin}, ta.conf)
	studentToken := getToken(t, account.Identity{ID: stu.ID, Role: account.RoleStudent}, ta.conf)

	// students may not manage notifications
	req, rec := newAuthRequest(http.MethodPost, "/api/notifications", studentToken,
		[]byte(`{"title":"T","message":"M"}`))
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("student create: code = %v; want %v", rec.Code, http.StatusForbidden)
	}

	// create: default expiry 30 days out, saved unpublished
	req, rec = newAuthRequest(http.MethodPost, "/api/notifications", adminToken,
		[]byte(`{"title":"Exam week","message":"Midterms start Monday"}`))
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed! code = %v body = %s", rec.Code, rec.Body.String())
	}
	var ntf notification.Notification
	if err := json.Unmarshal(rec.Body.Bytes(), &ntf); err != nil {
		t.Fatalf("unmarshalling notification: %v", err)
	}
	if ntf.IsPublished {
		t.Error("new notifications must start unpublished")
	}
	wantExpiry := time.Now().Add(notification.DefaultTTL)
	if diff := ntf.ExpiryDate.Sub(wantExpiry); diff < -time.Minute || diff > time.Minute {
		t.Errorf("expiry = %v; want ~%v", ntf.ExpiryDate, wantExpiry)
	}

	// unpublished drafts stay out of the feed
	req, rec = newAuthRequest(http.MethodGet, "/api/notifications/published/all", studentToken)
	ta.app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallList(t)}, rec)

	// toggle publishes and broadcasts to students
	req, rec = newAuthRequest(http.MethodPut, "/api/notifications/toggle/"+ntf.ID, adminToken)
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle failed! code = %v body = %s", rec.Code, rec.Body.String())
	}

	// published feed now carries it
	req, rec = newAuthRequest(http.MethodGet, "/api/notifications/published/all", studentToken)
	ta.app.ServeHTTP(rec, req)
	var feed []notification.Notification
	if err := json.Unmarshal(rec.Body.Bytes(), &feed); err != nil {
		t.Fatalf("unmarshalling feed: %v", err)
	}
	if len(feed) != 1 || feed[0].ID != ntf.ID {
		t.Errorf("feed = %+v; want the published notification", feed)
	}

	// broadcast goes out in the background
	deadline := time.Now().Add(2 * time.Second)
	for ta.mailSvc.sentCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if n := ta.mailSvc.sentCount(); n != 1 {
		t.Fatalf("sent = %d messages; want 1", n)
	}
	if got := ta.mailSvc.lastMessage(); got.Subject != "Exam week" || len(got.To) != 1 {
		t.Errorf("broadcast = %+v; want one recipient with the notification title", got)
	}

	// update, then delete
	req, rec = newAuthRequest(http.MethodPut, "/api/notifications/"+ntf.ID, adminToken,
		[]byte(`{"message":"Midterms start Tuesday"}`))
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("update: code = %v; want %v", rec.Code, http.StatusOK)
	}
	req, rec = newAuthRequest(http.MethodDelete, "/api/notifications/"+ntf.ID, adminToken)
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete: code = %v; want %v", rec.Code, http.StatusNoContent)
	}
	req, rec = newAuthRequest(http.MethodDelete, "/api/notifications/"+ntf.ID, adminToken)
	ta.app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusNotFound,
		wantData: marchallObj(t, httpErr{Error: "notification not found"}),
	}, rec)
}

func Test_notificationApi_expiredHiddenFromFeed(t *testing.T) {
	ta := setup(t)

	stu := ta.createStudent(t, "S One", "s1@mea.test", "pw", "R-001", "Science")
	studentToken := getToken(t, account.Identity{ID: stu.ID, Role: account.RoleStudent}, ta.conf)

	ntf, err := ta.ntfSvc.Create(notification.NewNotification{
		Title: "Old news", Message: "gone", ExpiryDate: time.Now().Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}
	if _, err = ta.ntfSvc.Toggle(ntf.ID); err != nil {
		t.Fatalf("Toggle(): %v", err)
	}

	req, rec := newAuthRequest(http.MethodGet, "/api/notifications/published/all", studentToken)
	ta.app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallList(t)}, rec)
}
