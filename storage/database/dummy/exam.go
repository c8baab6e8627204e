package dummydb

import (
	"sort"

	"github.com/google/uuid"

	"github.com/JUSAIR-JSR/MEA-Student-portal/core/exam"
)

type examRepository struct {
	exams   *examTable
	results *resultTable
}

var _ exam.Repository = (*examRepository)(nil) // interface compliance check

func NewExamRepository(db *DB) *examRepository {
	return &examRepository{exams: db.exam, results: db.result}
}

// Exams

func (repo *examRepository) CreateExam(exm exam.Exam) (exam.Exam, error) {
	repo.exams.Lock()
	defer repo.exams.Unlock()

	exm.ID = uuid.New().String()
	repo.exams.table[exm.ID] = &exm
	return exm, nil
}

func (repo *examRepository) GetExamByID(id string) (exam.Exam, error) {
	repo.exams.RLock()
	defer repo.exams.RUnlock()

	if exm, ok := repo.exams.table[id]; ok {
		return *exm, nil
	}
	return exam.Exam{}, exam.ErrNotFound
}

func (repo *examRepository) QueryAllExams() ([]exam.Exam, error) {
	repo.exams.RLock()
	defer repo.exams.RUnlock()
	return sortExamsByDateDesc(repo.queryExams()), nil
}

func (repo *examRepository) FilterExamsByTeacher(teacherID string) ([]exam.Exam, error) {
	repo.exams.RLock()
	defer repo.exams.RUnlock()

	var exams []exam.Exam
	for _, exm := range repo.queryExams() {
		if exm.HasTeacher(teacherID) {
			exams = append(exams, exm)
		}
	}
	return sortExamsByDateDesc(exams), nil
}

func (repo *examRepository) FilterExamsByStudent(studentID string, publishedOnly bool) ([]exam.Exam, error) {
	repo.exams.RLock()
	defer repo.exams.RUnlock()

	var exams []exam.Exam
	for _, exm := range repo.queryExams() {
		if !exm.HasStudent(studentID) {
			continue
		}
		if publishedOnly && !exm.IsPublished {
			continue
		}
		exams = append(exams, exm)
	}
	return sortExamsByDateDesc(exams), nil
}

func (repo *examRepository) UpdateExam(exm exam.Exam) (exam.Exam, error) {
	repo.exams.Lock()
	defer repo.exams.Unlock()

	cur, ok := repo.exams.table[exm.ID]
	if !ok {
		return exam.Exam{}, exam.ErrNotFound
	}
	// assignments are only changed through SetAssignments
	exm.TeacherIDs = cur.TeacherIDs
	exm.StudentIDs = cur.StudentIDs
	exm.CreatedAt = cur.CreatedAt
	repo.exams.table[exm.ID] = &exm
	return exm, nil
}

func (repo *examRepository) SetAssignments(examID string, teacherIDs, studentIDs []string) (exam.Exam, error) {
	repo.exams.Lock()
	defer repo.exams.Unlock()

	exm, ok := repo.exams.table[examID]
	if !ok {
		return exam.Exam{}, exam.ErrNotFound
	}
	exm.TeacherIDs = append([]string(nil), teacherIDs...)
	exm.StudentIDs = append([]string(nil), studentIDs...)
	return *exm, nil
}

func (repo *examRepository) DeleteExam(id string) error {
	repo.exams.Lock()
	defer repo.exams.Unlock()

	if _, ok := repo.exams.table[id]; !ok {
		return exam.ErrNotFound
	}
	delete(repo.exams.table, id)
	return nil
}

func (repo *examRepository) queryExams() []exam.Exam {
	exams := make([]exam.Exam, 0, len(repo.exams.table))
	for _, exm := range repo.exams.table {
		exams = append(exams, *exm)
	}
	return exams
}

func sortExamsByDateDesc(exams []exam.Exam) []exam.Exam {
	sort.Slice(exams, func(i, j int) bool { return exams[i].Date.After(exams[j].Date) })
	return exams
}

// Results

func (repo *examRepository) CreateResult(res exam.Result) (exam.Result, error) {
	repo.results.Lock()
	defer repo.results.Unlock()

	res.ID = uuid.New().String()
	repo.results.table[res.ID] = &res
	return res, nil
}

func (repo *examRepository) GetResultByID(id string) (exam.Result, error) {
	repo.results.RLock()
	defer repo.results.RUnlock()

	if res, ok := repo.results.table[id]; ok {
		return *res, nil
	}
	return exam.Result{}, exam.ErrResultNotFound
}

func (repo *examRepository) GetResultByExamAndStudent(examID, studentID string) (exam.Result, error) {
	repo.results.RLock()
	defer repo.results.RUnlock()

	for _, res := range repo.results.table {
		if res.ExamID == examID && res.StudentID == studentID {
			return *res, nil
		}
	}
	return exam.Result{}, exam.ErrResultNotFound
}

func (repo *examRepository) QueryAllResults() ([]exam.Result, error) {
	repo.results.RLock()
	defer repo.results.RUnlock()
	return repo.queryResults(), nil
}

func (repo *examRepository) QueryResultsByExam(examID string) ([]exam.Result, error) {
	repo.results.RLock()
	defer repo.results.RUnlock()

	var results []exam.Result
	for _, res := range repo.queryResults() {
		if res.ExamID == examID {
			results = append(results, res)
		}
	}
	return results, nil
}

func (repo *examRepository) FilterResultsByStudent(studentID string) ([]exam.Result, error) {
	repo.results.RLock()
	defer repo.results.RUnlock()

	var results []exam.Result
	for _, res := range repo.queryResults() {
		if res.StudentID == studentID {
			results = append(results, res)
		}
	}
	return results, nil
}

func (repo *examRepository) FilterResultsByTeacher(teacherID string) ([]exam.Result, error) {
	repo.results.RLock()
	defer repo.results.RUnlock()

	var results []exam.Result
	for _, res := range repo.queryResults() {
		if res.TeacherID == teacherID {
			results = append(results, res)
		}
	}
	return results, nil
}

func (repo *examRepository) UpdateResult(res exam.Result) (exam.Result, error) {
	repo.results.Lock()
	defer repo.results.Unlock()

	cur, ok := repo.results.table[res.ID]
	if !ok {
		return exam.Result{}, exam.ErrResultNotFound
	}
	res.CreatedAt = cur.CreatedAt
	repo.results.table[res.ID] = &res
	return res, nil
}

func (repo *examRepository) DeleteResult(id string) error {
	repo.results.Lock()
	defer repo.results.Unlock()

	if _, ok := repo.results.table[id]; !ok {
		return exam.ErrResultNotFound
	}
	delete(repo.results.table, id)
	return nil
}

func (repo *examRepository) queryResults() []exam.Result {
	results := make([]exam.Result, 0, len(repo.results.table))
	for _, res := range repo.results.table {
		results = append(results, *res)
	}
	return results
}
