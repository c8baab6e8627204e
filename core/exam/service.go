package exam

import (
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/JUSAIR-JSR/MEA-Student-portal/core"
	"github.com/JUSAIR-JSR/MEA-Student-portal/core/account"
)

var (
	// errors
	ErrNotFound        = errors.New("exam not found")
	ErrResultNotFound  = errors.New("result not found")
	ErrNotAssigned     = errors.New("not assigned to this exam")
	ErrNotOwner        = errors.New("unauthorized to modify this result")
	ErrMarksOutOfRange = errors.New("marks must be between 0 and 100")
)

type (
	Repository interface {
		CreateExam(exm Exam) (Exam, error)
		GetExamByID(id string) (Exam, error)
		QueryAllExams() ([]Exam, error)
		// FilterExamsByTeacher returns the exams a teacher is assigned to, newest date first.
		FilterExamsByTeacher(teacherID string) ([]Exam, error)
		// FilterExamsByStudent returns the exams a student is assigned to,
		// optionally restricted to published ones, newest date first.
		FilterExamsByStudent(studentID string, publishedOnly bool) ([]Exam, error)
		UpdateExam(exm Exam) (Exam, error)
		SetAssignments(examID string, teacherIDs, studentIDs []string) (Exam, error)
		DeleteExam(id string) error

		CreateResult(res Result) (Result, error)
		GetResultByID(id string) (Result, error)
		GetResultByExamAndStudent(examID, studentID string) (Result, error)
		QueryAllResults() ([]Result, error)
		QueryResultsByExam(examID string) ([]Result, error)
		FilterResultsByStudent(studentID string) ([]Result, error)
		FilterResultsByTeacher(teacherID string) ([]Result, error)
		UpdateResult(res Result) (Result, error)
		DeleteResult(id string) error
	}

	// Directory resolves weak account references for joined views.
	// Lookups may legitimately fail: deletes do not cascade.
	Directory interface {
		GetStudentByID(id string) (account.Student, error)
		GetTeacherByID(id string) (account.Teacher, error)
	}

	Service struct {
		repo Repository
		dir  Directory
	}
)

func NewService(repo Repository, dir Directory) *Service {
	return &Service{repo: repo, dir: dir}
}

func (svc *Service) Create(createdBy string, ne NewExam) (Exam, error) {
	now := time.Now().UTC()
	exm := Exam{
		Title:       ne.Title,
		Description: ne.Description,
		Subject:     ne.Subject,
		Date:        ne.Date,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateExam(exm)
}

func (svc *Service) Get(id string) (Exam, error) {
	return svc.repo.GetExamByID(id)
}

// QueryForIdentity lists exams visible to the caller: admins see everything,
// teachers their assigned exams, students only assigned AND published ones.
func (svc *Service) QueryForIdentity(ident account.Identity) ([]Exam, error) {
	switch ident.Role {
	case account.RoleAdmin:
		return svc.repo.QueryAllExams()
	case account.RoleTeacher:
		return svc.repo.FilterExamsByTeacher(ident.ID)
	case account.RoleStudent:
		return svc.repo.FilterExamsByStudent(ident.ID, true /* publishedOnly */)
	}
	return nil, nil
}

func (svc *Service) Update(id string, ue UpdateExam) (Exam, error) {
	exm, err := svc.repo.GetExamByID(id)
	if err != nil {
		return Exam{}, err
	}
	if ue.Title != "" {
		exm.Title = ue.Title
	}
	if ue.Description != "" {
		exm.Description = ue.Description
	}
	if ue.Subject != "" {
		exm.Subject = ue.Subject
	}
	if !ue.Date.IsZero() {
		exm.Date = ue.Date
	}
	exm.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateExam(exm)
}

func (svc *Service) Delete(id string) error {
	// results of a deleted exam are kept; references go dangling on purpose
	return svc.repo.DeleteExam(id)
}

// Assign replaces the entire teacher/student membership of an exam.
// Callers must submit the full desired sets.
func (svc *Service) Assign(examID string, ae AssignExam) (Exam, error) {
	if _, err := svc.repo.GetExamByID(examID); err != nil {
		return Exam{}, err
	}
	return svc.repo.SetAssignments(examID, ae.TeacherIDs, ae.StudentIDs)
}

// RemoveAssignment drops a single id from the matching set; it no-ops when
// the id is not currently present.
func (svc *Service) RemoveAssignment(ra RemoveAssignment) (Exam, error) {
	exm, err := svc.repo.GetExamByID(ra.ExamID)
	if err != nil {
		return Exam{}, err
	}
	switch ra.Role {
	case account.RoleTeacher:
		exm.TeacherIDs = removeID(exm.TeacherIDs, ra.UserID)
	case account.RoleStudent:
		exm.StudentIDs = removeID(exm.StudentIDs, ra.UserID)
	}
	return svc.repo.SetAssignments(exm.ID, exm.TeacherIDs, exm.StudentIDs)
}

func removeID(ids []string, id string) []string {
	kept := make([]string, 0, len(ids))
	for _, cur := range ids {
		if cur != id {
			kept = append(kept, cur)
		}
	}
	return kept
}

func (svc *Service) TogglePublish(id string) (Exam, error) {
	exm, err := svc.repo.GetExamByID(id)
	if err != nil {
		return Exam{}, err
	}
	exm.IsPublished = !exm.IsPublished
	exm.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateExam(exm)
}

// AssignedExams lists a teacher's exams, newest date first.
func (svc *Service) AssignedExams(teacherID string) ([]Exam, error) {
	return svc.repo.FilterExamsByTeacher(teacherID)
}

// Roster returns an exam's students merged with any results already entered.
// Only teachers assigned to the exam may see it.
func (svc *Service) Roster(examID, teacherID string) (Roster, error) {
	exm, err := svc.repo.GetExamByID(examID)
	if err != nil {
		return Roster{}, err
	}
	if !exm.HasTeacher(teacherID) {
		return Roster{}, ErrNotFound
	}

	results, err := svc.repo.QueryResultsByExam(examID)
	if err != nil {
		return Roster{}, errors.Wrap(err, "querying exam results")
	}
	byStudent := make(map[string]Result, len(results))
	for _, res := range results {
		byStudent[res.StudentID] = res
	}

	roster := Roster{ExamTitle: exm.Title, Students: make([]ExamStudent, 0, len(exm.StudentIDs))}
	for _, studentID := range exm.StudentIDs {
		stu, err := svc.dir.GetStudentByID(studentID)
		if err != nil {
			if errors.Cause(err) == account.ErrNotFound {
				continue // deleted student, dangling id
			}
			return Roster{}, errors.Wrap(err, "finding student by ID")
		}
		row := ExamStudent{
			StudentRef: StudentRef{ID: stu.ID, Name: stu.Name, RollNo: stu.RollNo, Department: stu.Department},
		}
		if res, ok := byStudent[studentID]; ok {
			marks := res.Marks
			row.Marks = &marks
			row.Grade = res.Grade
			row.ResultID = res.ID
		}
		roster.Students = append(roster.Students, row)
	}
	return roster, nil
}

// SaveResult upserts the result keyed on (examID, studentID). The caller
// must be a teacher assigned to the exam. Subject is always overwritten from
// the exam's current title; a blank grade becomes DefaultGrade.
func validateMarks(marks float64) error {
	if marks < 0 || marks > MaxMarks {
		return core.NewValidationError(ErrMarksOutOfRange,
			core.FieldError{Field: "marks", Error: ErrMarksOutOfRange.Error()})
	}
	return nil
}

func (svc *Service) SaveResult(teacherID, examID string, sr SaveResult) (Result, error) {
	if err := validateMarks(sr.Marks); err != nil {
		return Result{}, err
	}
	exm, err := svc.repo.GetExamByID(examID)
	if err != nil {
		return Result{}, err
	}
	if !exm.HasTeacher(teacherID) {
		return Result{}, ErrNotAssigned
	}

	subject := exm.Title
	if subject == "" {
		subject = "General"
	}
	grade := sr.Grade
	if grade == "" {
		grade = DefaultGrade
	}
	now := time.Now().UTC()

	res, err := svc.repo.GetResultByExamAndStudent(examID, sr.StudentID)
	if err == nil {
		res.Marks = sr.Marks
		res.Grade = grade
		res.Subject = subject
		res.UpdatedAt = now
		return svc.repo.UpdateResult(res)
	}
	if errors.Cause(err) != ErrResultNotFound {
		return Result{}, errors.Wrap(err, "finding result")
	}

	return svc.repo.CreateResult(Result{
		ExamID:    examID,
		StudentID: sr.StudentID,
		TeacherID: teacherID,
		Subject:   subject,
		Marks:     sr.Marks,
		Grade:     grade,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// DeleteResult removes a single result. Teachers may only delete results they
// graded themselves; admins may delete any.
func (svc *Service) DeleteResult(ident account.Identity, resultID string) error {
	res, err := svc.repo.GetResultByID(resultID)
	if err != nil {
		return err
	}
	if ident.Role == account.RoleTeacher && res.TeacherID != ident.ID {
		return ErrNotOwner
	}
	return svc.repo.DeleteResult(resultID)
}

// UpdateResultMarks lets the grading teacher adjust marks/grade by result id.
func (svc *Service) UpdateResultMarks(teacherID, resultID string, marks float64, grade string) (Result, error) {
	if err := validateMarks(marks); err != nil {
		return Result{}, err
	}
	res, err := svc.repo.GetResultByID(resultID)
	if err != nil {
		return Result{}, err
	}
	if res.TeacherID != teacherID {
		return Result{}, ErrNotOwner
	}
	res.Marks = marks
	if grade != "" {
		res.Grade = grade
	}
	res.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateResult(res)
}

// MyResults lists a student's results whose exams are published, newest first.
// Results pointing at deleted exams are dropped, matching the weak-link model.
func (svc *Service) MyResults(studentID string) ([]DetailedResult, error) {
	results, err := svc.repo.FilterResultsByStudent(studentID)
	if err != nil {
		return nil, err
	}
	detailed := make([]DetailedResult, 0, len(results))
	for _, res := range results {
		dr := svc.detail(res)
		if dr.Exam == nil || !dr.Exam.IsPublished {
			continue
		}
		detailed = append(detailed, dr)
	}
	sortByCreatedDesc(detailed)
	return detailed, nil
}

// TeacherResults lists every result graded by the given teacher.
func (svc *Service) TeacherResults(teacherID string) ([]DetailedResult, error) {
	results, err := svc.repo.FilterResultsByTeacher(teacherID)
	if err != nil {
		return nil, err
	}
	detailed := make([]DetailedResult, 0, len(results))
	for _, res := range results {
		detailed = append(detailed, svc.detail(res))
	}
	sortByCreatedDesc(detailed)
	return detailed, nil
}

// AllResults is the admin view: every result with joined display fields,
// dangling references surfaced as nulls.
func (svc *Service) AllResults() ([]DetailedResult, error) {
	results, err := svc.repo.QueryAllResults()
	if err != nil {
		return nil, err
	}
	detailed := make([]DetailedResult, 0, len(results))
	for _, res := range results {
		detailed = append(detailed, svc.detail(res))
	}
	sortByCreatedDesc(detailed)
	return detailed, nil
}

// UpcomingExams lists a student's published exams dated today or later,
// soonest first (used for the student notification feed).
func (svc *Service) UpcomingExams(studentID string, now time.Time) ([]Exam, error) {
	exams, err := svc.repo.FilterExamsByStudent(studentID, true /* publishedOnly */)
	if err != nil {
		return nil, err
	}
	upcoming := make([]Exam, 0, len(exams))
	for _, exm := range exams {
		if !exm.Date.Before(now) {
			upcoming = append(upcoming, exm)
		}
	}
	sort.Slice(upcoming, func(i, j int) bool { return upcoming[i].Date.Before(upcoming[j].Date) })
	return upcoming, nil
}

func (svc *Service) detail(res Result) DetailedResult {
	dr := DetailedResult{Result: res}
	if exm, err := svc.repo.GetExamByID(res.ExamID); err == nil {
		dr.Exam = &ExamRef{ID: exm.ID, Title: exm.Title, Date: exm.Date, IsPublished: exm.IsPublished}
	}
	if stu, err := svc.dir.GetStudentByID(res.StudentID); err == nil {
		dr.Student = &StudentRef{ID: stu.ID, Name: stu.Name, RollNo: stu.RollNo, Department: stu.Department, Email: stu.Email}
	}
	if tch, err := svc.dir.GetTeacherByID(res.TeacherID); err == nil {
		dr.Teacher = &TeacherRef{ID: tch.ID, Name: tch.Name, Email: tch.Email, Subject: tch.Subject}
	}
	return dr
}

func sortByCreatedDesc(results []DetailedResult) {
	sort.Slice(results, func(i, j int) bool { return results[i].CreatedAt.After(results[j].CreatedAt) })
}
