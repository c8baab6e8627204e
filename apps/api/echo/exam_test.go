package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/JUSAIR-JSR/MEA-Student-portal/core/account"
	"github.com/JUSAIR-JSR/MEA-Student-portal/core/exam"
)

func Test_examApi_lifecycle(t *testing.T) {
	ta := setup(t)

	adm := ta.createAdmin(t, "Boss", "admin@mea.test", "adminpass")
	tch := ta.createTeacher(t, "T One", "t1@mea.test", "pw", "Maths")
	other := ta.createTeacher(t, "T Two", "t2@mea.test", "pw", "Physics")
	stu := ta.createStudent(t, "S One", "s1@mea.test", "pw", "R-001", "Science")

	adminToken := getToken(t, account.Identity{ID: adm.ID, Role: account.RoleAdmin}, ta.conf)
	teacherToken := getToken(t, account.Identity{ID: tch.ID, Role: account.RoleTeacher}, ta.conf)
	studentToken := getToken(t, account.Identity{ID: stu.ID, Role: account.RoleStudent}, ta.conf)

	// create
	req, rec := newAuthRequest(http.MethodPost, "/api/exam/create", adminToken,
		[]byte(`{"title":"Midterm","subject":"Maths","date":"2026-10-01T09:00:00Z"}`))
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed! code = %v body = %s", rec.Code, rec.Body.String())
	}
	var exm exam.Exam
	if err := json.Unmarshal(rec.Body.Bytes(), &exm); err != nil {
		t.Fatalf("unmarshalling exam: %v", err)
	}
	if exm.CreatedBy != adm.ID {
		t.Errorf("createdBy = %q; want session admin %q", exm.CreatedBy, adm.ID)
	}

	// teachers cannot create
	req, rec = newAuthRequest(http.MethodPost, "/api/exam/create", teacherToken, []byte(`{"title":"X","subject":"Y"}`))
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("teacher create: code = %v; want %v", rec.Code, http.StatusForbidden)
	}

	// assign replaces the full membership sets
	req, rec = newAuthRequest(http.MethodPut, "/api/exam/assign/"+exm.ID, adminToken,
		marchallObj(t, exam.AssignExam{TeacherIDs: []string{tch.ID, other.ID}, StudentIDs: []string{stu.ID}}))
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("assign failed! code = %v body = %s", rec.Code, rec.Body.String())
	}

	// unpublished exams stay hidden from the student listing
	req, rec = newAuthRequest(http.MethodGet, "/api/student/assigned-exams", studentToken)
	ta.app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallList(t)}, rec)

	// teacher sees the assignment
	req, rec = newAuthRequest(http.MethodGet, "/api/exam/assigned", teacherToken)
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("assigned failed! code = %v", rec.Code)
	}
	var assigned []exam.Exam
	if err := json.Unmarshal(rec.Body.Bytes(), &assigned); err != nil {
		t.Fatalf("unmarshalling exams: %v", err)
	}
	if len(assigned) != 1 || assigned[0].ID != exm.ID {
		t.Errorf("assigned = %+v; want the Midterm exam", assigned)
	}

	// remove one teacher; no-op on an id that is not present
	req, rec = newAuthRequest(http.MethodPut, "/api/exam/remove-assignment", adminToken,
		marchallObj(t, exam.RemoveAssignment{ExamID: exm.ID, UserID: other.ID, Role: account.RoleTeacher}))
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("remove-assignment failed! code = %v body = %s", rec.Code, rec.Body.String())
	}
	req, rec = newAuthRequest(http.MethodPut, "/api/exam/remove-assignment", adminToken,
		marchallObj(t, exam.RemoveAssignment{ExamID: exm.ID, UserID: other.ID, Role: account.RoleTeacher}))
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("repeated remove-assignment: code = %v; want %v", rec.Code, http.StatusOK)
	}
	req, rec = newAuthRequest(http.MethodPut, "/api/exam/remove-assignment", adminToken,
		marchallObj(t, exam.RemoveAssignment{ExamID: "nope", UserID: other.ID, Role: account.RoleTeacher}))
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("remove-assignment on unknown exam: code = %v; want %v", rec.Code, http.StatusNotFound)
	}

	// publish
	req, rec = newAuthRequest(http.MethodPut, "/api/exam/publish/"+exm.ID, adminToken)
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("publish failed! code = %v", rec.Code)
	}

	// published exam now visible to the student
	req, rec = newAuthRequest(http.MethodGet, "/api/student/assigned-exams", studentToken)
	ta.app.ServeHTTP(rec, req)
	var visible []exam.Exam
	if err := json.Unmarshal(rec.Body.Bytes(), &visible); err != nil {
		t.Fatalf("unmarshalling exams: %v", err)
	}
	if len(visible) != 1 || !visible[0].IsPublished {
		t.Errorf("student listing = %+v; want one published exam", visible)
	}

	// delete requires admin, leaves results dangling (checked in service tests)
	req, rec = newAuthRequest(http.MethodDelete, "/api/exam/delete/"+exm.ID, teacherToken)
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("teacher delete: code = %v; want %v", rec.Code, http.StatusForbidden)
	}
	req, rec = newAuthRequest(http.MethodDelete, "/api/exam/delete/"+exm.ID, adminToken)
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("admin delete: code = %v; want %v", rec.Code, http.StatusNoContent)
	}
}

func Test_examApi_results(t *testing.T) {
	ta := setup(t)

	adm := ta.createAdmin(t, "Boss", "admin@mea.test", "adminpass")
	tch := ta.createTeacher(t, "T One", "t1@mea.test", "pw", "Maths")
	outsider := ta.createTeacher(t, "T Two", "t2@mea.test", "pw", "Physics")
	stu := ta.createStudent(t, "S One", "s1@mea.test", "pw", "R-001", "Science")

	exm := ta.createExam(t, adm.ID, "Midterm", "Maths", time.Now().Add(24*time.Hour))
	ta.assignExam(t, exm.ID, []string{tch.ID}, []string{stu.ID})

	adminToken := getToken(t, account.Identity{ID: adm.ID, Role: account.RoleAdmin}, ta.conf)
	teacherToken := getToken(t, account.Identity{ID: tch.ID, Role: account.RoleTeacher}, ta.conf)
	outsiderToken := getToken(t, account.Identity{ID: outsider.ID, Role: account.RoleTeacher}, ta.conf)
	studentToken := getToken(t, account.Identity{ID: stu.ID, Role: account.RoleStudent}, ta.conf)

	// a teacher outside the exam's set may not grade
	req, rec := newAuthRequest(http.MethodPost, "/api/result/"+exm.ID, outsiderToken,
		marchallObj(t, exam.SaveResult{StudentID: stu.ID, Marks: 50}))
	ta.app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusForbidden,
		wantData: marchallObj(t, httpErr{Error: "not assigned to this exam"}),
	}, rec)

	// first save: subject snapshotted from the title, blank grade becomes N/A
	req, rec = newAuthRequest(http.MethodPost, "/api/result/"+exm.ID, teacherToken,
		marchallObj(t, exam.SaveResult{StudentID: stu.ID, Marks: 72}))
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("saveResult failed! code = %v body = %s", rec.Code, rec.Body.String())
	}
	var res exam.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("unmarshalling result: %v", err)
	}
	if res.Subject != "Midterm" {
		t.Errorf("subject = %q; want snapshot of the exam title", res.Subject)
	}
	if res.Grade != exam.DefaultGrade {
		t.Errorf("grade = %q; want %q", res.Grade, exam.DefaultGrade)
	}

	// second save for the same (exam, student) updates in place
	req, rec = newAuthRequest(http.MethodPost, "/api/result/"+exm.ID, teacherToken,
		marchallObj(t, exam.SaveResult{StudentID: stu.ID, Marks: 80, Grade: "A"}))
	ta.app.ServeHTTP(rec, req)
	var updated exam.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("unmarshalling result: %v", err)
	}
	if updated.ID != res.ID {
		t.Errorf("expected upsert to reuse result %s; got %s", res.ID, updated.ID)
	}
	if updated.Marks != 80 || updated.Grade != "A" {
		t.Errorf("updated = %+v; want marks 80 grade A", updated)
	}

	// marks beyond the grading scale come back as a field error
	req, rec = newAuthRequest(http.MethodPost, "/api/result/"+exm.ID, teacherToken,
		marchallObj(t, exam.SaveResult{StudentID: stu.ID, Marks: 150}))
	ta.app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, map[string]string{"marks": exam.ErrMarksOutOfRange.Error()}),
	}, rec)

	// roster merges the result onto the student row
	req, rec = newAuthRequest(http.MethodGet, "/api/exam/"+exm.ID+"/students", teacherToken)
	ta.app.ServeHTTP(rec, req)
	var roster exam.Roster
	if err := json.Unmarshal(rec.Body.Bytes(), &roster); err != nil {
		t.Fatalf("unmarshalling roster: %v", err)
	}
	if roster.ExamTitle != "Midterm" || len(roster.Students) != 1 {
		t.Fatalf("roster = %+v; want one Midterm row", roster)
	}
	if roster.Students[0].Marks == nil || *roster.Students[0].Marks != 80 {
		t.Errorf("roster marks = %v; want 80", roster.Students[0].Marks)
	}

	// roster is hidden from teachers outside the exam's set
	req, rec = newAuthRequest(http.MethodGet, "/api/exam/"+exm.ID+"/students", outsiderToken)
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("outsider roster: code = %v; want %v", rec.Code, http.StatusNotFound)
	}

	// student results appear only once the exam is published
	req, rec = newAuthRequest(http.MethodGet, "/api/student/my-results", studentToken)
	ta.app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallList(t)}, rec)

	if _, err := ta.examSvc.TogglePublish(exm.ID); err != nil {
		t.Fatalf("TogglePublish(): %v", err)
	}

	req, rec = newAuthRequest(http.MethodGet, "/api/student/my-results", studentToken)
	ta.app.ServeHTTP(rec, req)
	var mine []exam.DetailedResult
	if err := json.Unmarshal(rec.Body.Bytes(), &mine); err != nil {
		t.Fatalf("unmarshalling results: %v", err)
	}
	if len(mine) != 1 || mine[0].Marks != 80 {
		t.Fatalf("my-results = %+v; want one entry with marks 80", mine)
	}
	if mine[0].Exam == nil || mine[0].Exam.Title != "Midterm" {
		t.Errorf("joined exam ref = %+v; want Midterm", mine[0].Exam)
	}

	// only the grading teacher may adjust a result by id
	req, rec = newAuthRequest(http.MethodPut, "/api/teacher/update-result/"+res.ID, outsiderToken,
		[]byte(`{"marks":10}`))
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("outsider update-result: code = %v; want %v", rec.Code, http.StatusForbidden)
	}

	// teacher listing
	req, rec = newAuthRequest(http.MethodGet, "/api/teacher/results", teacherToken)
	ta.app.ServeHTTP(rec, req)
	var graded []exam.DetailedResult
	if err := json.Unmarshal(rec.Body.Bytes(), &graded); err != nil {
		t.Fatalf("unmarshalling results: %v", err)
	}
	if len(graded) != 1 {
		t.Errorf("teacher results = %+v; want one entry", graded)
	}

	// admin sees every result and may delete any
	req, rec = newAuthRequest(http.MethodGet, "/api/admin/all-results", adminToken)
	ta.app.ServeHTTP(rec, req)
	var all []exam.DetailedResult
	if err := json.Unmarshal(rec.Body.Bytes(), &all); err != nil {
		t.Fatalf("unmarshalling results: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("all-results = %+v; want one entry", all)
	}
	req, rec = newAuthRequest(http.MethodDelete, "/api/admin/delete-result/"+res.ID, adminToken)
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("admin delete-result: code = %v; want %v", rec.Code, http.StatusNoContent)
	}
}
