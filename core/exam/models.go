package exam

import (
	"time"

	"github.com/JUSAIR-JSR/MEA-Student-portal/core"
)

// DefaultGrade is stored when a submitted grade is blank.
const DefaultGrade = "N/A"

// MaxMarks is the grading scale; marks are recorded out of 100.
const MaxMarks = 100

type Exam struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Subject     string    `json:"subject"`
	Date        time.Time `json:"date"`
	TeacherIDs  []string  `json:"teacherIds"`
	StudentIDs  []string  `json:"studentIds"`
	IsPublished bool      `json:"isPublished"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"` // UTC
	UpdatedAt   time.Time `json:"updatedAt"` // UTC
}

// HasTeacher reports whether the given teacher is assigned to the exam.
func (e *Exam) HasTeacher(teacherID string) bool {
	for _, id := range e.TeacherIDs {
		if id == teacherID {
			return true
		}
	}
	return false
}

// HasStudent reports whether the given student is assigned to the exam.
func (e *Exam) HasStudent(studentID string) bool {
	for _, id := range e.StudentIDs {
		if id == studentID {
			return true
		}
	}
	return false
}

// Result holds one graded entry; at most one exists per (ExamID, StudentID).
// Subject is snapshotted from the exam title at write time and is not
// re-derived if the exam is later renamed.
type Result struct {
	ID        string    `json:"id"`
	ExamID    string    `json:"examId"`
	StudentID string    `json:"studentId"`
	TeacherID string    `json:"teacherId"`
	Subject   string    `json:"subject"`
	Marks     float64   `json:"marks"`
	Grade     string    `json:"grade"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Reference views joined onto results; a nil ref marks a dangling id
// (the referenced record was deleted, deletes do not cascade).
type (
	ExamRef struct {
		ID          string    `json:"id"`
		Title       string    `json:"title"`
		Date        time.Time `json:"date"`
		IsPublished bool      `json:"isPublished"`
	}

	StudentRef struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		RollNo     string `json:"rollNo"`
		Department string `json:"department"`
		Email      string `json:"email,omitempty"`
	}

	TeacherRef struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Email   string `json:"email,omitempty"`
		Subject string `json:"subject,omitempty"`
	}

	DetailedResult struct {
		Result
		Exam    *ExamRef    `json:"exam"`
		Student *StudentRef `json:"student"`
		Teacher *TeacherRef `json:"teacher"`
	}
)

// ExamStudent is a student row of an exam roster merged with any existing result.
type ExamStudent struct {
	StudentRef
	Marks    *float64 `json:"marks"`
	Grade    string   `json:"grade,omitempty"`
	ResultID string   `json:"resultId,omitempty"`
}

type Roster struct {
	ExamTitle string        `json:"examTitle"`
	Students  []ExamStudent `json:"students"`
}

// NewExam contains information needed to create a new Exam.
type NewExam struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	Subject     string    `json:"subject" validate:"required"`
	Date        time.Time `json:"date"`
}

func (ne *NewExam) Validate() error {
	ne.Title = core.CleanString(ne.Title)
	ne.Description = core.CleanString(ne.Description)
	ne.Subject = core.CleanString(ne.Subject)
	return core.Validate.Struct(ne)
}

// UpdateExam enumerates the Exam fields that may be modified.
type UpdateExam struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Subject     string    `json:"subject"`
	Date        time.Time `json:"date"`
}

func (ue *UpdateExam) Validate() error {
	ue.Title = core.CleanString(ue.Title)
	ue.Description = core.CleanString(ue.Description)
	ue.Subject = core.CleanString(ue.Subject)
	return core.Validate.Struct(ue)
}

// AssignExam replaces the full teacher and student membership of an exam.
type AssignExam struct {
	TeacherIDs []string `json:"teacherIds"`
	StudentIDs []string `json:"studentIds"`
}

// RemoveAssignment drops a single teacher or student from an exam.
type RemoveAssignment struct {
	ExamID string `json:"examId" validate:"required"`
	UserID string `json:"userId" validate:"required"`
	Role   string `json:"role" validate:"required,oneof=teacher student"`
}

func (ra *RemoveAssignment) Validate() error {
	ra.Role = core.CleanString(ra.Role, true /* lower */)
	return core.Validate.Struct(ra)
}

// SaveResult is the grading payload; the upsert key is (examID, studentID).
type SaveResult struct {
	StudentID string  `json:"studentId" validate:"required"`
	Marks     float64 `json:"marks"`
	Grade     string  `json:"grade"`
}

func (sr *SaveResult) Validate() error {
	sr.Grade = core.CleanString(sr.Grade)
	return core.Validate.Struct(sr)
}
