package notification_test

import (
	"context"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/JUSAIR-JSR/MEA-Student-portal/core"
	"github.com/JUSAIR-JSR/MEA-Student-portal/core/account"
	"github.com/JUSAIR-JSR/MEA-Student-portal/core/notification"
	dummydb "github.com/JUSAIR-JSR/MEA-Student-portal/storage/database/dummy"
)

type mailSvcMock struct {
	mu   sync.Mutex
	sent []*core.EmailMessage
}

func (m *mailSvcMock) SendMessages(messages ...*core.EmailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, messages...)
	return nil
}

func (m *mailSvcMock) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type fixture struct {
	svc      *notification.Service
	repo     notification.Repository
	accounts account.Repository
	mailSvc  *mailSvcMock
}

func setup(t *testing.T) fixture {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open(): %v", err)
	}
	repo := dummydb.NewNotificationRepository(db)
	accounts := dummydb.NewAccountRepository(db)
	mailSvc := &mailSvcMock{}
	logger := core.NewStdLogger(log.New(io.Discard, "", 0))
	return fixture{
		svc:      notification.NewService(repo, mailSvc, accounts, logger),
		repo:     repo,
		accounts: accounts,
		mailSvc:  mailSvc,
	}
}

func Test_Service_Create(t *testing.T) {
	f := setup(t)

	t.Run("missing expiry gets the default ttl", func(t *testing.T) {
		ntf, err := f.svc.Create(notification.NewNotification{Title: "Exam week", Message: "Be ready"})
		if err != nil {
			t.Fatalf("Create(): %v", err)
		}
		want := time.Now().UTC().Add(notification.DefaultTTL)
		if diff := ntf.ExpiryDate.Sub(want); diff < -time.Minute || diff > time.Minute {
			t.Errorf("ExpiryDate = %v; want about %v", ntf.ExpiryDate, want)
		}
		if ntf.IsPublished {
			t.Error("new notifications start unpublished")
		}
	})
	t.Run("auto-send publishes and broadcasts immediately", func(t *testing.T) {
		if _, err := f.accounts.CreateStudent(account.Student{
			Name: "Cam", Email: "cam@mea.test", RollNo: "R-009", Department: "Science",
		}); err != nil {
			t.Fatalf("CreateStudent(): %v", err)
		}
		ntf, err := f.svc.Create(notification.NewNotification{
			Title: "Now", Message: "m", AutoSend: true,
		})
		if err != nil {
			t.Fatalf("Create(): %v", err)
		}
		if !ntf.IsPublished || !ntf.AutoSend {
			t.Errorf("Create() = %+v; want published with auto-send", ntf)
		}
		deadline := time.Now().Add(2 * time.Second)
		for f.mailSvc.sentCount() == 0 && time.Now().Before(deadline) {
			time.Sleep(10 * time.Millisecond)
		}
		if n := f.mailSvc.sentCount(); n != 1 {
			t.Errorf("sent %d messages; want 1", n)
		}
	})
	t.Run("explicit expiry is kept", func(t *testing.T) {
		expiry := time.Now().UTC().Add(2 * time.Hour).Truncate(time.Second)
		ntf, err := f.svc.Create(notification.NewNotification{Title: "Soon", Message: "m", ExpiryDate: expiry})
		if err != nil {
			t.Fatalf("Create(): %v", err)
		}
		if !ntf.ExpiryDate.Equal(expiry) {
			t.Errorf("ExpiryDate = %v; want %v", ntf.ExpiryDate, expiry)
		}
	})
}

func Test_Service_Published(t *testing.T) {
	f := setup(t)

	publish := func(t *testing.T, title string, expiry time.Time) notification.Notification {
		t.Helper()
		ntf, err := f.svc.Create(notification.NewNotification{Title: title, Message: "m", ExpiryDate: expiry})
		if err != nil {
			t.Fatalf("Create(): %v", err)
		}
		if ntf, err = f.svc.Toggle(ntf.ID); err != nil {
			t.Fatalf("Toggle(): %v", err)
		}
		return ntf
	}

	t.Run("drafts and expired rows stay out of the feed", func(t *testing.T) {
		if _, err := f.svc.Create(notification.NewNotification{Title: "Draft", Message: "m"}); err != nil {
			t.Fatalf("Create(): %v", err)
		}
		publish(t, "Expired", time.Now().UTC().Add(-time.Hour))
		live := publish(t, "Live", time.Now().UTC().Add(time.Hour))

		feed, err := f.svc.Published()
		if err != nil {
			t.Fatalf("Published(): %v", err)
		}
		if len(feed) != 1 || feed[0].ID != live.ID {
			t.Errorf("Published() = %+v; want only %q", feed, live.Title)
		}
	})
	t.Run("feed is capped", func(t *testing.T) {
		for i := 0; i < notification.PublishedFeedLimit+3; i++ {
			publish(t, "Bulk", time.Now().UTC().Add(time.Hour))
		}
		feed, err := f.svc.Published()
		if err != nil {
			t.Fatalf("Published(): %v", err)
		}
		if len(feed) != notification.PublishedFeedLimit {
			t.Errorf("len(feed) = %d; want %d", len(feed), notification.PublishedFeedLimit)
		}
	})
}

func Test_Service_Toggle_broadcast(t *testing.T) {
	f := setup(t)
	for _, stu := range []account.Student{
		{Name: "Ann", Email: "ann@mea.test", RollNo: "R-001", Department: "Science"},
		{Name: "Ben", Email: "ben@mea.test", RollNo: "R-002", Department: "Arts"},
	} {
		if _, err := f.accounts.CreateStudent(stu); err != nil {
			t.Fatalf("CreateStudent(): %v", err)
		}
	}

	ntf, err := f.svc.Create(notification.NewNotification{Title: "Exam week", Message: "Be ready"})
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}
	if ntf, err = f.svc.Toggle(ntf.ID); err != nil {
		t.Fatalf("Toggle(): %v", err)
	}
	if !ntf.IsPublished {
		t.Fatal("Toggle() must publish a draft")
	}

	// the broadcast runs in a goroutine; poll briefly
	deadline := time.Now().Add(2 * time.Second)
	for f.mailSvc.sentCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	func() {
		f.mailSvc.mu.Lock()
		defer f.mailSvc.mu.Unlock()
		if len(f.mailSvc.sent) != 1 {
			t.Fatalf("sent %d messages; want 1", len(f.mailSvc.sent))
		}
		msg := f.mailSvc.sent[0]
		if msg.Subject != "Exam week" || len(msg.To) != 2 {
			t.Errorf("broadcast = subject %q to %d recipients; want the title to both students", msg.Subject, len(msg.To))
		}
	}()

	t.Run("unpublishing does not broadcast again", func(t *testing.T) {
		if _, err := f.svc.Toggle(ntf.ID); err != nil {
			t.Fatalf("Toggle(): %v", err)
		}
		time.Sleep(50 * time.Millisecond)
		if n := f.mailSvc.sentCount(); n != 1 {
			t.Errorf("sent %d messages; want still 1", n)
		}
	})
}

func Test_Service_sweep(t *testing.T) {
	f := setup(t)

	if _, err := f.svc.Create(notification.NewNotification{
		Title: "Gone", Message: "m", ExpiryDate: time.Now().UTC().Add(-time.Hour),
	}); err != nil {
		t.Fatalf("Create(): %v", err)
	}
	keep, err := f.svc.Create(notification.NewNotification{Title: "Keep", Message: "m"})
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}

	t.Run("expired rows are deleted", func(t *testing.T) {
		n, err := f.repo.DeleteExpiredNotifications(time.Now().UTC())
		if err != nil {
			t.Fatalf("DeleteExpiredNotifications(): %v", err)
		}
		if n != 1 {
			t.Errorf("deleted = %d; want 1", n)
		}
		all, err := f.svc.QueryAll()
		if err != nil {
			t.Fatalf("QueryAll(): %v", err)
		}
		if len(all) != 1 || all[0].ID != keep.ID {
			t.Errorf("QueryAll() = %+v; want only %q", all, keep.Title)
		}
	})
	t.Run("the sweeper ticks on its own", func(t *testing.T) {
		if _, err := f.svc.Create(notification.NewNotification{
			Title: "Gone too", Message: "m", ExpiryDate: time.Now().UTC().Add(-time.Hour),
		}); err != nil {
			t.Fatalf("Create(): %v", err)
		}
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		f.svc.StartSweeper(ctx, 20*time.Millisecond)

		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			all, err := f.svc.QueryAll()
			if err != nil {
				t.Fatalf("QueryAll(): %v", err)
			}
			if len(all) == 1 {
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
		t.Error("sweeper never removed the expired notification")
	})
}

func Test_Service_Delete(t *testing.T) {
	f := setup(t)
	ntf, err := f.svc.Create(notification.NewNotification{Title: "T", Message: "m"})
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}
	if err = f.svc.Delete(ntf.ID); err != nil {
		t.Fatalf("Delete(): %v", err)
	}
	if err = f.svc.Delete(ntf.ID); errors.Cause(err) != notification.ErrNotFound {
		t.Errorf("error = %v; want ErrNotFound", err)
	}
}
