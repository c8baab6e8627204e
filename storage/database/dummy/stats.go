package dummydb

import (
	"sort"

	"github.com/JUSAIR-JSR/MEA-Student-portal/core/exam"
	"github.com/JUSAIR-JSR/MEA-Student-portal/core/stats"
)

type statsRepository struct {
	db *DB
}

var _ stats.Repository = (*statsRepository)(nil) // interface compliance check

func NewStatsRepository(db *DB) *statsRepository {
	return &statsRepository{db: db}
}

func (repo *statsRepository) CountStudents() (int, error) {
	repo.db.student.RLock()
	defer repo.db.student.RUnlock()
	return len(repo.db.student.table), nil
}

func (repo *statsRepository) CountTeachers() (int, error) {
	repo.db.teacher.RLock()
	defer repo.db.teacher.RUnlock()
	return len(repo.db.teacher.table), nil
}

func (repo *statsRepository) CountExams() (int, error) {
	repo.db.exam.RLock()
	defer repo.db.exam.RUnlock()
	return len(repo.db.exam.table), nil
}

func (repo *statsRepository) CountResults() (int, error) {
	repo.db.result.RLock()
	defer repo.db.result.RUnlock()
	return len(repo.db.result.table), nil
}

func (repo *statsRepository) PassFailCounts(passMark float64) (stats.PassFailCounts, error) {
	repo.db.result.RLock()
	defer repo.db.result.RUnlock()

	var counts stats.PassFailCounts
	for _, res := range repo.db.result.table {
		counts.Total++
		if res.Marks >= passMark {
			counts.Passed++
		} else {
			counts.Failed++
		}
	}
	return counts, nil
}

func (repo *statsRepository) SubjectAverages() ([]stats.SubjectAverage, error) {
	repo.db.result.RLock()
	defer repo.db.result.RUnlock()

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, res := range repo.db.result.table {
		sums[res.Subject] += res.Marks
		counts[res.Subject]++
	}

	rows := make([]stats.SubjectAverage, 0, len(sums))
	for subject, sum := range sums {
		rows = append(rows, stats.SubjectAverage{
			Subject:  subject,
			AvgMarks: sum / float64(counts[subject]),
			Count:    counts[subject],
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].AvgMarks > rows[j].AvgMarks })
	return rows, nil
}

func (repo *statsRepository) DepartmentPerformances() ([]stats.DepartmentPerformance, error) {
	repo.db.result.RLock()
	defer repo.db.result.RUnlock()
	repo.db.student.RLock()
	defer repo.db.student.RUnlock()

	type group struct {
		sum      float64
		count    int
		students map[string]struct{}
	}
	groups := make(map[string]*group)
	for _, res := range repo.db.result.table {
		stu, ok := repo.db.student.table[res.StudentID]
		if !ok {
			continue // dangling student reference
		}
		g, ok := groups[stu.Department]
		if !ok {
			g = &group{students: make(map[string]struct{})}
			groups[stu.Department] = g
		}
		g.sum += res.Marks
		g.count++
		g.students[res.StudentID] = struct{}{}
	}

	rows := make([]stats.DepartmentPerformance, 0, len(groups))
	for department, g := range groups {
		rows = append(rows, stats.DepartmentPerformance{
			Department:   department,
			AverageMarks: g.sum / float64(g.count),
			Students:     len(g.students),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].AverageMarks > rows[j].AverageMarks })
	return rows, nil
}

func (repo *statsRepository) TopPerformers(limit int) ([]stats.TopPerformer, error) {
	repo.db.result.RLock()
	defer repo.db.result.RUnlock()
	repo.db.student.RLock()
	defer repo.db.student.RUnlock()

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, res := range repo.db.result.table {
		sums[res.StudentID] += res.Marks
		counts[res.StudentID]++
	}

	rows := make([]stats.TopPerformer, 0, len(sums))
	for studentID, sum := range sums {
		stu, ok := repo.db.student.table[studentID]
		if !ok {
			continue // dangling student reference
		}
		rows = append(rows, stats.TopPerformer{
			StudentID:    studentID,
			Name:         stu.Name,
			RollNo:       stu.RollNo,
			Department:   stu.Department,
			AverageMarks: sum / float64(counts[studentID]),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].AverageMarks > rows[j].AverageMarks })
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (repo *statsRepository) MonthlyTrends() ([]stats.MonthlyTrend, error) {
	repo.db.result.RLock()
	defer repo.db.result.RUnlock()

	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, res := range repo.db.result.table {
		month := int(res.CreatedAt.Month())
		sums[month] += res.Marks
		counts[month]++
	}

	rows := make([]stats.MonthlyTrend, 0, len(sums))
	for month, sum := range sums {
		rows = append(rows, stats.MonthlyTrend{
			Month:        month,
			AverageMarks: sum / float64(counts[month]),
			Exams:        counts[month],
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Month < rows[j].Month })
	return rows, nil
}

func (repo *statsRepository) RecentExams(limit int) ([]exam.Exam, error) {
	repo.db.exam.RLock()
	defer repo.db.exam.RUnlock()

	exams := make([]exam.Exam, 0, len(repo.db.exam.table))
	for _, exm := range repo.db.exam.table {
		exams = append(exams, *exm)
	}
	sort.Slice(exams, func(i, j int) bool { return exams[i].CreatedAt.After(exams[j].CreatedAt) })
	if len(exams) > limit {
		exams = exams[:limit]
	}
	return exams, nil
}

func (repo *statsRepository) RecentResults(limit int) ([]exam.Result, error) {
	repo.db.result.RLock()
	defer repo.db.result.RUnlock()

	results := make([]exam.Result, 0, len(repo.db.result.table))
	for _, res := range repo.db.result.table {
		results = append(results, *res)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].CreatedAt.After(results[j].CreatedAt) })
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
