package stats_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/JUSAIR-JSR/MEA-Student-portal/core/account"
	"github.com/JUSAIR-JSR/MEA-Student-portal/core/exam"
	"github.com/JUSAIR-JSR/MEA-Student-portal/core/stats"
	dummydb "github.com/JUSAIR-JSR/MEA-Student-portal/storage/database/dummy"
)

const passMark = 35

type fixture struct {
	svc      *stats.Service
	accounts account.Repository
	exams    exam.Repository
}

func setup(t *testing.T) fixture {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open(): %v", err)
	}
	return fixture{
		svc:      stats.NewService(dummydb.NewStatsRepository(db), passMark),
		accounts: dummydb.NewAccountRepository(db),
		exams:    dummydb.NewExamRepository(db),
	}
}

func (f fixture) student(t *testing.T, name, dept string, n int) account.Student {
	t.Helper()
	stu, err := f.accounts.CreateStudent(account.Student{
		Name: name, Email: fmt.Sprintf("s%d@mea.test", n), RollNo: fmt.Sprintf("R-%03d", n), Department: dept,
	})
	if err != nil {
		t.Fatalf("CreateStudent(): %v", err)
	}
	return stu
}

func (f fixture) result(t *testing.T, studentID, subject string, marks float64, created time.Time) exam.Result {
	t.Helper()
	res, err := f.exams.CreateResult(exam.Result{
		ExamID:    "exam-id",
		StudentID: studentID,
		TeacherID: "teacher-id",
		Subject:   subject,
		Marks:     marks,
		Grade:     exam.DefaultGrade,
		CreatedAt: created,
		UpdatedAt: created,
	})
	if err != nil {
		t.Fatalf("CreateResult(): %v", err)
	}
	return res
}

func Test_Service_emptyData(t *testing.T) {
	f := setup(t)

	t.Run("overview is all zeroes", func(t *testing.T) {
		ov, err := f.svc.Overview()
		if err != nil {
			t.Fatalf("Overview(): %v", err)
		}
		if ov != (stats.Overview{}) {
			t.Errorf("Overview() = %+v; want the zero value", ov)
		}
	})
	t.Run("pass-fail percents read 0.00", func(t *testing.T) {
		pf, err := f.svc.PassFail()
		if err != nil {
			t.Fatalf("PassFail(): %v", err)
		}
		want := stats.PassFail{PassPercent: "0.00", FailPercent: "0.00", PassMark: passMark}
		if pf != want {
			t.Errorf("PassFail() = %+v; want %+v", pf, want)
		}
	})
	t.Run("groupings come back empty, never error", func(t *testing.T) {
		if rows, err := f.svc.SubjectAverages(); err != nil || len(rows) != 0 {
			t.Errorf("SubjectAverages() = %v, %v", rows, err)
		}
		if rows, err := f.svc.DepartmentPerformance(); err != nil || len(rows) != 0 {
			t.Errorf("DepartmentPerformance() = %v, %v", rows, err)
		}
		if rows, err := f.svc.TopPerformers(); err != nil || len(rows) != 0 {
			t.Errorf("TopPerformers() = %v, %v", rows, err)
		}
		if rows, err := f.svc.MonthlyTrends(); err != nil || len(rows) != 0 {
			t.Errorf("MonthlyTrends() = %v, %v", rows, err)
		}
		if feed, err := f.svc.RecentActivity(); err != nil || len(feed) != 0 {
			t.Errorf("RecentActivity() = %v, %v", feed, err)
		}
	})
}

func Test_Service_aggregations(t *testing.T) {
	f := setup(t)

	ann := f.student(t, "Ann", "Science", 1)
	ben := f.student(t, "Ben", "Arts", 2)
	jan := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	f.result(t, ann.ID, "Maths", 40, jan)
	f.result(t, ann.ID, "Physics", 70, mar)
	f.result(t, ben.ID, "Maths", 20, jan)

	t.Run("pass-fail partitions on the pass mark", func(t *testing.T) {
		pf, err := f.svc.PassFail()
		if err != nil {
			t.Fatalf("PassFail(): %v", err)
		}
		want := stats.PassFail{
			Total: 3, Passed: 2, Failed: 1,
			PassPercent: "66.67", FailPercent: "33.33", PassMark: passMark,
		}
		if pf != want {
			t.Errorf("PassFail() = %+v; want %+v", pf, want)
		}
	})
	t.Run("subject averages sort by mean desc and round", func(t *testing.T) {
		rows, err := f.svc.SubjectAverages()
		if err != nil {
			t.Fatalf("SubjectAverages(): %v", err)
		}
		want := []stats.SubjectAverage{
			{Subject: "Physics", AvgMarks: 70, Count: 1},
			{Subject: "Maths", AvgMarks: 30, Count: 2},
		}
		if len(rows) != 2 || rows[0] != want[0] || rows[1] != want[1] {
			t.Errorf("SubjectAverages() = %+v; want %+v", rows, want)
		}
	})
	t.Run("department performance joins onto students", func(t *testing.T) {
		rows, err := f.svc.DepartmentPerformance()
		if err != nil {
			t.Fatalf("DepartmentPerformance(): %v", err)
		}
		want := []stats.DepartmentPerformance{
			{Department: "Science", AverageMarks: 55, Students: 1},
			{Department: "Arts", AverageMarks: 20, Students: 1},
		}
		if len(rows) != 2 || rows[0] != want[0] || rows[1] != want[1] {
			t.Errorf("DepartmentPerformance() = %+v; want %+v", rows, want)
		}
	})
	t.Run("top performers rank by mean", func(t *testing.T) {
		rows, err := f.svc.TopPerformers()
		if err != nil {
			t.Fatalf("TopPerformers(): %v", err)
		}
		if len(rows) != 2 || rows[0].Name != "Ann" || rows[0].AverageMarks != 55 {
			t.Errorf("TopPerformers() = %+v; want Ann first with 55", rows)
		}
	})
	t.Run("monthly trends map month numbers to names", func(t *testing.T) {
		rows, err := f.svc.MonthlyTrends()
		if err != nil {
			t.Fatalf("MonthlyTrends(): %v", err)
		}
		want := []stats.MonthlyTrendView{
			{Month: "Jan", AverageMarks: 30, Exams: 2},
			{Month: "Mar", AverageMarks: 70, Exams: 1},
		}
		if len(rows) != 2 || rows[0] != want[0] || rows[1] != want[1] {
			t.Errorf("MonthlyTrends() = %+v; want %+v", rows, want)
		}
	})
	t.Run("deleted students drop out of the grouping", func(t *testing.T) {
		if err := f.accounts.DeleteStudent(ben.ID); err != nil {
			t.Fatalf("DeleteStudent(): %v", err)
		}
		rows, err := f.svc.DepartmentPerformance()
		if err != nil {
			t.Fatalf("DepartmentPerformance(): %v", err)
		}
		if len(rows) != 1 || rows[0].Department != "Science" {
			t.Errorf("DepartmentPerformance() = %+v; want Science only", rows)
		}
	})
}

func Test_Service_RecentActivity(t *testing.T) {
	f := setup(t)

	base := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		if _, err := f.exams.CreateExam(exam.Exam{
			Title:     fmt.Sprintf("Exam %d", i),
			CreatedAt: base.Add(time.Duration(2*i) * time.Hour),
		}); err != nil {
			t.Fatalf("CreateExam(): %v", err)
		}
		f.result(t, "stu", "Maths", 50, base.Add(time.Duration(2*i+1)*time.Hour))
	}

	feed, err := f.svc.RecentActivity()
	if err != nil {
		t.Fatalf("RecentActivity(): %v", err)
	}
	if len(feed) != stats.RecentActivityLimit {
		t.Fatalf("len(feed) = %d; want %d", len(feed), stats.RecentActivityLimit)
	}
	for i := 1; i < len(feed); i++ {
		if feed[i].Timestamp.After(feed[i-1].Timestamp) {
			t.Fatalf("feed out of order at %d: %v after %v", i, feed[i].Timestamp, feed[i-1].Timestamp)
		}
	}
	// the newest event is a result, the two feeds interleave
	if feed[0].Type != "Result" || feed[1].Type != "Exam" {
		t.Errorf("feed types = [%s %s ...]; want an interleaved feed", feed[0].Type, feed[1].Type)
	}
}

func Test_Service_TopPerformersCap(t *testing.T) {
	f := setup(t)
	now := time.Now().UTC()
	for i := 1; i <= stats.TopPerformersLimit+2; i++ {
		stu := f.student(t, fmt.Sprintf("Student %d", i), "Science", i)
		f.result(t, stu.ID, "Maths", float64(5*i), now)
	}
	rows, err := f.svc.TopPerformers()
	if err != nil {
		t.Fatalf("TopPerformers(): %v", err)
	}
	if len(rows) != stats.TopPerformersLimit {
		t.Errorf("len(rows) = %d; want %d", len(rows), stats.TopPerformersLimit)
	}
	if rows[0].AverageMarks != float64(5*(stats.TopPerformersLimit+2)) {
		t.Errorf("best mean = %v; want %v", rows[0].AverageMarks, 5*(stats.TopPerformersLimit+2))
	}
}
