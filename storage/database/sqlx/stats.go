package sqlxrepos

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/JUSAIR-JSR/MEA-Student-portal/core/exam"
	"github.com/JUSAIR-JSR/MEA-Student-portal/core/stats"
)

type statsRepository struct {
	db *sqlx.DB
}

var _ stats.Repository = (*statsRepository)(nil) // interface compliance check

func NewStatsRepository(db *sqlx.DB) *statsRepository {
	return &statsRepository{db: db}
}

func (repo *statsRepository) CountStudents() (int, error) { return repo.count("student") }
func (repo *statsRepository) CountTeachers() (int, error) { return repo.count("teacher") }
func (repo *statsRepository) CountExams() (int, error)    { return repo.count("exam") }
func (repo *statsRepository) CountResults() (int, error)  { return repo.count("result") }

func (repo *statsRepository) count(table string) (int, error) {
	var n int
	if err := repo.db.Get(&n, "SELECT count(*) FROM "+table); err != nil {
		return 0, errors.Wrapf(err, "counting %s rows", table)
	}
	return n, nil
}

func (repo *statsRepository) PassFailCounts(passMark float64) (stats.PassFailCounts, error) {
	var row struct {
		Total  int `db:"total"`
		Passed int `db:"passed"`
		Failed int `db:"failed"`
	}
	err := repo.db.Get(&row,
		`SELECT count(*) AS total,
		        count(*) FILTER (WHERE marks >= $1) AS passed,
		        count(*) FILTER (WHERE marks < $1) AS failed
		 FROM result`, passMark)
	if err != nil {
		return stats.PassFailCounts{}, errors.Wrap(err, "counting pass/fail results")
	}
	return stats.PassFailCounts{Total: row.Total, Passed: row.Passed, Failed: row.Failed}, nil
}

func (repo *statsRepository) SubjectAverages() ([]stats.SubjectAverage, error) {
	var rows []struct {
		Subject  string  `db:"subject"`
		AvgMarks float64 `db:"avg_marks"`
		Count    int     `db:"count"`
	}
	err := repo.db.Select(&rows,
		`SELECT subject, avg(marks) AS avg_marks, count(*) AS count
		 FROM result
		 GROUP BY subject
		 ORDER BY avg_marks DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "querying subject averages")
	}
	avgs := make([]stats.SubjectAverage, 0, len(rows))
	for _, row := range rows {
		avgs = append(avgs, stats.SubjectAverage{Subject: row.Subject, AvgMarks: row.AvgMarks, Count: row.Count})
	}
	return avgs, nil
}

func (repo *statsRepository) DepartmentPerformances() ([]stats.DepartmentPerformance, error) {
	var rows []struct {
		Department   string  `db:"department"`
		AverageMarks float64 `db:"average_marks"`
		Students     int     `db:"students"`
	}
	// inner join drops results whose student was deleted
	err := repo.db.Select(&rows,
		`SELECT s.department, avg(r.marks) AS average_marks, count(DISTINCT r.student_id) AS students
		 FROM result r
		 JOIN student s ON s.id = r.student_id
		 GROUP BY s.department
		 ORDER BY average_marks DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "querying department performances")
	}
	perfs := make([]stats.DepartmentPerformance, 0, len(rows))
	for _, row := range rows {
		perfs = append(perfs, stats.DepartmentPerformance{
			Department:   row.Department,
			AverageMarks: row.AverageMarks,
			Students:     row.Students,
		})
	}
	return perfs, nil
}

func (repo *statsRepository) TopPerformers(limit int) ([]stats.TopPerformer, error) {
	var rows []struct {
		StudentID    string  `db:"student_id"`
		Name         string  `db:"name"`
		RollNo       string  `db:"roll_no"`
		Department   string  `db:"department"`
		AverageMarks float64 `db:"average_marks"`
	}
	err := repo.db.Select(&rows,
		`SELECT r.student_id, s.name, s.roll_no, s.department, avg(r.marks) AS average_marks
		 FROM result r
		 JOIN student s ON s.id = r.student_id
		 GROUP BY r.student_id, s.name, s.roll_no, s.department
		 ORDER BY average_marks DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "querying top performers")
	}
	performers := make([]stats.TopPerformer, 0, len(rows))
	for _, row := range rows {
		performers = append(performers, stats.TopPerformer{
			StudentID:    row.StudentID,
			Name:         row.Name,
			RollNo:       row.RollNo,
			Department:   row.Department,
			AverageMarks: row.AverageMarks,
		})
	}
	return performers, nil
}

func (repo *statsRepository) MonthlyTrends() ([]stats.MonthlyTrend, error) {
	var rows []struct {
		Month        int     `db:"month"`
		AverageMarks float64 `db:"average_marks"`
		Exams        int     `db:"exams"`
	}
	err := repo.db.Select(&rows,
		`SELECT extract(month FROM created_at)::int AS month,
		        avg(marks) AS average_marks,
		        count(*) AS exams
		 FROM result
		 GROUP BY month
		 ORDER BY month`)
	if err != nil {
		return nil, errors.Wrap(err, "querying monthly trends")
	}
	trends := make([]stats.MonthlyTrend, 0, len(rows))
	for _, row := range rows {
		trends = append(trends, stats.MonthlyTrend{Month: row.Month, AverageMarks: row.AverageMarks, Exams: row.Exams})
	}
	return trends, nil
}

func (repo *statsRepository) RecentExams(limit int) ([]exam.Exam, error) {
	var rows []struct {
		ID        string    `db:"id"`
		Title     string    `db:"title"`
		Subject   string    `db:"subject"`
		Date      null.Time `db:"date"`
		CreatedAt time.Time `db:"created_at"`
	}
	err := repo.db.Select(&rows,
		"SELECT id, title, subject, date, created_at FROM exam ORDER BY created_at DESC LIMIT $1", limit)
	if err != nil {
		return nil, errors.Wrap(err, "querying recent exams")
	}
	exams := make([]exam.Exam, 0, len(rows))
	for _, row := range rows {
		exams = append(exams, exam.Exam{
			ID:        row.ID,
			Title:     row.Title,
			Subject:   row.Subject,
			Date:      row.Date.Time,
			CreatedAt: row.CreatedAt,
		})
	}
	return exams, nil
}

func (repo *statsRepository) RecentResults(limit int) ([]exam.Result, error) {
	var rows []resultRow
	err := repo.db.Select(&rows, "SELECT * FROM result ORDER BY created_at DESC LIMIT $1", limit)
	if err != nil {
		return nil, errors.Wrap(err, "querying recent results")
	}
	results := make([]exam.Result, 0, len(rows))
	for _, row := range rows {
		results = append(results, row.domain())
	}
	return results, nil
}
