package stats

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/JUSAIR-JSR/MEA-Student-portal/core/exam"
)

// TopPerformersLimit caps the top-performers listing.
const TopPerformersLimit = 10

// RecentActivityLimit caps the merged activity feed.
const RecentActivityLimit = 5

type (
	PassFailCounts struct {
		Total  int
		Passed int
		Failed int
	}

	SubjectAverage struct {
		Subject  string  `json:"subject"`
		AvgMarks float64 `json:"avgMarks"`
		Count    int     `json:"count"`
	}

	DepartmentPerformance struct {
		Department   string  `json:"department"`
		AverageMarks float64 `json:"averageMarks"`
		Students     int     `json:"students"`
	}

	TopPerformer struct {
		StudentID    string  `json:"id"`
		Name         string  `json:"name"`
		RollNo       string  `json:"rollNo"`
		Department   string  `json:"department"`
		AverageMarks float64 `json:"averageMarks"`
	}

	MonthlyTrend struct {
		Month        int
		AverageMarks float64
		Exams        int
	}

	// Repository computes grouped folds over the Result collection.
	// All methods tolerate empty data and return zeroed/empty values.
	Repository interface {
		CountStudents() (int, error)
		CountTeachers() (int, error)
		CountExams() (int, error)
		CountResults() (int, error)
		// PassFailCounts partitions all results on marks >= passMark.
		PassFailCounts(passMark float64) (PassFailCounts, error)
		// SubjectAverages groups results by subject, sorted by mean desc.
		SubjectAverages() ([]SubjectAverage, error)
		// DepartmentPerformances joins results onto students and groups by
		// department, sorted by mean desc. Results whose student no longer
		// exists are dropped from the grouping.
		DepartmentPerformances() ([]DepartmentPerformance, error)
		// TopPerformers groups results by student with joined display
		// fields, sorted by mean desc, capped at limit.
		TopPerformers(limit int) ([]TopPerformer, error)
		// MonthlyTrends groups results by calendar month of creation (1-12),
		// sorted ascending by month number.
		MonthlyTrends() ([]MonthlyTrend, error)
		RecentExams(limit int) ([]exam.Exam, error)
		RecentResults(limit int) ([]exam.Result, error)
	}

	Overview struct {
		Students int `json:"students"`
		Teachers int `json:"teachers"`
		Exams    int `json:"exams"`
		Results  int `json:"results"`
	}

	PassFail struct {
		Total       int     `json:"total"`
		Passed      int     `json:"passed"`
		Failed      int     `json:"failed"`
		PassPercent string  `json:"passPercent"`
		FailPercent string  `json:"failPercent"`
		PassMark    float64 `json:"passMark"`
	}

	MonthlyTrendView struct {
		Month        string  `json:"month"`
		AverageMarks float64 `json:"averageMarks"`
		Exams        int     `json:"exams"`
	}

	Activity struct {
		Type        string    `json:"type"`
		Description string    `json:"description"`
		Timestamp   time.Time `json:"timestamp"`
	}

	Service struct {
		repo     Repository
		passMark float64
	}
)

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

func NewService(repo Repository, passMark float64) *Service {
	return &Service{repo: repo, passMark: passMark}
}

func (svc *Service) Overview() (Overview, error) {
	var ov Overview
	var err error
	if ov.Students, err = svc.repo.CountStudents(); err != nil {
		return Overview{}, err
	}
	if ov.Teachers, err = svc.repo.CountTeachers(); err != nil {
		return Overview{}, err
	}
	if ov.Exams, err = svc.repo.CountExams(); err != nil {
		return Overview{}, err
	}
	if ov.Results, err = svc.repo.CountResults(); err != nil {
		return Overview{}, err
	}
	return ov, nil
}

// PassFail partitions all results against the pass mark. Percentages are
// two-decimal strings; both are "0.00" when there are no results at all.
func (svc *Service) PassFail() (PassFail, error) {
	counts, err := svc.repo.PassFailCounts(svc.passMark)
	if err != nil {
		return PassFail{}, err
	}
	pf := PassFail{
		Total:       counts.Total,
		Passed:      counts.Passed,
		Failed:      counts.Failed,
		PassPercent: "0.00",
		FailPercent: "0.00",
		PassMark:    svc.passMark,
	}
	if counts.Total > 0 {
		pf.PassPercent = percent(counts.Passed, counts.Total)
		pf.FailPercent = percent(counts.Failed, counts.Total)
	}
	return pf, nil
}

func (svc *Service) SubjectAverages() ([]SubjectAverage, error) {
	rows, err := svc.repo.SubjectAverages()
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].AvgMarks = round2(rows[i].AvgMarks)
	}
	return rows, nil
}

func (svc *Service) DepartmentPerformance() ([]DepartmentPerformance, error) {
	rows, err := svc.repo.DepartmentPerformances()
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].AverageMarks = round2(rows[i].AverageMarks)
	}
	return rows, nil
}

func (svc *Service) TopPerformers() ([]TopPerformer, error) {
	rows, err := svc.repo.TopPerformers(TopPerformersLimit)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].AverageMarks = round2(rows[i].AverageMarks)
	}
	return rows, nil
}

func (svc *Service) MonthlyTrends() ([]MonthlyTrendView, error) {
	rows, err := svc.repo.MonthlyTrends()
	if err != nil {
		return nil, err
	}
	views := make([]MonthlyTrendView, 0, len(rows))
	for _, row := range rows {
		if row.Month < 1 || row.Month > 12 {
			continue
		}
		views = append(views, MonthlyTrendView{
			Month:        monthNames[row.Month-1],
			AverageMarks: round2(row.AverageMarks),
			Exams:        row.Exams,
		})
	}
	return views, nil
}

// RecentActivity merges the newest exams and results into one feed, newest
// first, truncated to RecentActivityLimit entries.
func (svc *Service) RecentActivity() ([]Activity, error) {
	exams, err := svc.repo.RecentExams(RecentActivityLimit)
	if err != nil {
		return nil, err
	}
	results, err := svc.repo.RecentResults(RecentActivityLimit)
	if err != nil {
		return nil, err
	}

	feed := make([]Activity, 0, len(exams)+len(results))
	for _, exm := range exams {
		feed = append(feed, Activity{
			Type:        "Exam",
			Description: fmt.Sprintf("New exam created: %s", exm.Title),
			Timestamp:   exm.CreatedAt,
		})
	}
	for _, res := range results {
		feed = append(feed, Activity{
			Type:        "Result",
			Description: fmt.Sprintf("Result published for %s", res.Subject),
			Timestamp:   res.CreatedAt,
		})
	}
	sort.Slice(feed, func(i, j int) bool { return feed[i].Timestamp.After(feed[j].Timestamp) })
	if len(feed) > RecentActivityLimit {
		feed = feed[:RecentActivityLimit]
	}
	return feed, nil
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func percent(part, total int) string {
	return fmt.Sprintf("%.2f", float64(part)/float64(total)*100)
}
