package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/JUSAIR-JSR/MEA-Student-portal/core/exam"
)

type examRepository struct {
	db *sqlx.DB
}

var _ exam.Repository = (*examRepository)(nil) // interface compliance check

func NewExamRepository(db *sqlx.DB) *examRepository {
	return &examRepository{db: db}
}

type examRow struct {
	ID          string      `db:"id"`
	Title       string      `db:"title"`
	Description string      `db:"description"`
	Subject     string      `db:"subject"`
	Date        null.Time   `db:"date"`
	IsPublished bool        `db:"is_published"`
	CreatedBy   null.String `db:"created_by"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

func (row examRow) domain() exam.Exam {
	return exam.Exam{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		Subject:     row.Subject,
		Date:        row.Date.Time,
		IsPublished: row.IsPublished,
		CreatedBy:   row.CreatedBy.String,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

type resultRow struct {
	ID        string    `db:"id"`
	ExamID    string    `db:"exam_id"`
	StudentID string    `db:"student_id"`
	TeacherID string    `db:"teacher_id"`
	Subject   string    `db:"subject"`
	Marks     float64   `db:"marks"`
	Grade     string    `db:"grade"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row resultRow) domain() exam.Result {
	return exam.Result(row)
}

// Exams

func (repo *examRepository) CreateExam(exm exam.Exam) (exam.Exam, error) {
	exm.ID = uuid.New().String()
	_, err := repo.db.Exec(
		`INSERT INTO exam (id, title, description, subject, date, is_published, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		exm.ID, exm.Title, exm.Description, exm.Subject, null.NewTime(exm.Date, !exm.Date.IsZero()),
		exm.IsPublished, null.NewString(exm.CreatedBy, exm.CreatedBy != ""), exm.CreatedAt, exm.UpdatedAt,
	)
	if err != nil {
		return exam.Exam{}, errors.Wrap(err, "inserting exam")
	}
	return exm, nil
}

func (repo *examRepository) GetExamByID(id string) (exam.Exam, error) {
	var row examRow
	err := repo.db.Get(&row, "SELECT * FROM exam WHERE id = $1", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return exam.Exam{}, exam.ErrNotFound
		}
		return exam.Exam{}, errors.Wrap(err, "getting exam by ID")
	}
	return repo.withAssignments(row.domain())
}

func (repo *examRepository) QueryAllExams() ([]exam.Exam, error) {
	var rows []examRow
	if err := repo.db.Select(&rows, "SELECT * FROM exam ORDER BY date DESC NULLS LAST"); err != nil {
		return nil, errors.Wrap(err, "querying exams")
	}
	return repo.collectWithAssignments(rows)
}

func (repo *examRepository) FilterExamsByTeacher(teacherID string) ([]exam.Exam, error) {
	var rows []examRow
	err := repo.db.Select(&rows,
		`SELECT e.* FROM exam e
		 JOIN exam_teacher et ON et.exam_id = e.id
		 WHERE et.teacher_id = $1
		 ORDER BY e.date DESC NULLS LAST`, teacherID)
	if err != nil {
		return nil, errors.Wrap(err, "querying exams by teacher")
	}
	return repo.collectWithAssignments(rows)
}

func (repo *examRepository) FilterExamsByStudent(studentID string, publishedOnly bool) ([]exam.Exam, error) {
	query := `SELECT e.* FROM exam e
		 JOIN exam_student es ON es.exam_id = e.id
		 WHERE es.student_id = $1`
	if publishedOnly {
		query += " AND e.is_published"
	}
	query += " ORDER BY e.date DESC NULLS LAST"

	var rows []examRow
	if err := repo.db.Select(&rows, query, studentID); err != nil {
		return nil, errors.Wrap(err, "querying exams by student")
	}
	return repo.collectWithAssignments(rows)
}

func (repo *examRepository) UpdateExam(exm exam.Exam) (exam.Exam, error) {
	res, err := repo.db.Exec(
		`UPDATE exam SET title = $2, description = $3, subject = $4, date = $5, is_published = $6, updated_at = $7
		 WHERE id = $1`,
		exm.ID, exm.Title, exm.Description, exm.Subject, null.NewTime(exm.Date, !exm.Date.IsZero()),
		exm.IsPublished, exm.UpdatedAt,
	)
	if err != nil {
		return exam.Exam{}, errors.Wrap(err, "updating exam")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return exam.Exam{}, exam.ErrNotFound
	}
	return repo.GetExamByID(exm.ID)
}

// SetAssignments replaces an exam's membership sets inside one transaction.
func (repo *examRepository) SetAssignments(examID string, teacherIDs, studentIDs []string) (exam.Exam, error) {
	tx, err := repo.db.Beginx()
	if err != nil {
		return exam.Exam{}, errors.Wrap(err, "beginning transaction")
	}
	defer tx.Rollback() // nolint:errcheck

	if _, err = tx.Exec("DELETE FROM exam_teacher WHERE exam_id = $1", examID); err != nil {
		return exam.Exam{}, errors.Wrap(err, "clearing exam teachers")
	}
	if _, err = tx.Exec("DELETE FROM exam_student WHERE exam_id = $1", examID); err != nil {
		return exam.Exam{}, errors.Wrap(err, "clearing exam students")
	}
	for _, id := range teacherIDs {
		if _, err = tx.Exec(
			"INSERT INTO exam_teacher (exam_id, teacher_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
			examID, id,
		); err != nil {
			return exam.Exam{}, errors.Wrap(err, "assigning teacher")
		}
	}
	for _, id := range studentIDs {
		if _, err = tx.Exec(
			"INSERT INTO exam_student (exam_id, student_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
			examID, id,
		); err != nil {
			return exam.Exam{}, errors.Wrap(err, "assigning student")
		}
	}
	if _, err = tx.Exec("UPDATE exam SET updated_at = now() WHERE id = $1", examID); err != nil {
		return exam.Exam{}, errors.Wrap(err, "touching exam")
	}
	if err = tx.Commit(); err != nil {
		return exam.Exam{}, errors.Wrap(err, "committing assignments")
	}
	return repo.GetExamByID(examID)
}

func (repo *examRepository) DeleteExam(id string) error {
	res, err := repo.db.Exec("DELETE FROM exam WHERE id = $1", id)
	if err != nil {
		return errors.Wrap(err, "deleting exam")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return exam.ErrNotFound
	}
	// membership rows go with the exam; results stay behind as dangling refs
	if _, err = repo.db.Exec("DELETE FROM exam_teacher WHERE exam_id = $1", id); err != nil {
		return errors.Wrap(err, "clearing exam teachers")
	}
	if _, err = repo.db.Exec("DELETE FROM exam_student WHERE exam_id = $1", id); err != nil {
		return errors.Wrap(err, "clearing exam students")
	}
	return nil
}

func (repo *examRepository) withAssignments(exm exam.Exam) (exam.Exam, error) {
	exm.TeacherIDs = []string{}
	exm.StudentIDs = []string{}
	err := repo.db.Select(&exm.TeacherIDs, "SELECT teacher_id FROM exam_teacher WHERE exam_id = $1", exm.ID)
	if err != nil {
		return exam.Exam{}, errors.Wrap(err, "querying exam teachers")
	}
	err = repo.db.Select(&exm.StudentIDs, "SELECT student_id FROM exam_student WHERE exam_id = $1", exm.ID)
	if err != nil {
		return exam.Exam{}, errors.Wrap(err, "querying exam students")
	}
	return exm, nil
}

func (repo *examRepository) collectWithAssignments(rows []examRow) ([]exam.Exam, error) {
	exams := make([]exam.Exam, 0, len(rows))
	for _, row := range rows {
		exm, err := repo.withAssignments(row.domain())
		if err != nil {
			return nil, err
		}
		exams = append(exams, exm)
	}
	return exams, nil
}

// Results

func (repo *examRepository) CreateResult(res exam.Result) (exam.Result, error) {
	res.ID = uuid.New().String()
	_, err := repo.db.Exec(
		`INSERT INTO result (id, exam_id, student_id, teacher_id, subject, marks, grade, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		res.ID, res.ExamID, res.StudentID, res.TeacherID, res.Subject, res.Marks, res.Grade,
		res.CreatedAt, res.UpdatedAt,
	)
	if err != nil {
		return exam.Result{}, errors.Wrap(err, "inserting result")
	}
	return res, nil
}

func (repo *examRepository) GetResultByID(id string) (exam.Result, error) {
	var row resultRow
	err := repo.db.Get(&row, "SELECT * FROM result WHERE id = $1", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return exam.Result{}, exam.ErrResultNotFound
		}
		return exam.Result{}, errors.Wrap(err, "getting result by ID")
	}
	return row.domain(), nil
}

func (repo *examRepository) GetResultByExamAndStudent(examID, studentID string) (exam.Result, error) {
	var row resultRow
	err := repo.db.Get(&row, "SELECT * FROM result WHERE exam_id = $1 AND student_id = $2", examID, studentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return exam.Result{}, exam.ErrResultNotFound
		}
		return exam.Result{}, errors.Wrap(err, "getting result by exam and student")
	}
	return row.domain(), nil
}

func (repo *examRepository) QueryAllResults() ([]exam.Result, error) {
	return repo.selectResults("SELECT * FROM result ORDER BY created_at DESC")
}

func (repo *examRepository) QueryResultsByExam(examID string) ([]exam.Result, error) {
	return repo.selectResults("SELECT * FROM result WHERE exam_id = $1 ORDER BY created_at DESC", examID)
}

func (repo *examRepository) FilterResultsByStudent(studentID string) ([]exam.Result, error) {
	return repo.selectResults("SELECT * FROM result WHERE student_id = $1 ORDER BY created_at DESC", studentID)
}

func (repo *examRepository) FilterResultsByTeacher(teacherID string) ([]exam.Result, error) {
	return repo.selectResults("SELECT * FROM result WHERE teacher_id = $1 ORDER BY created_at DESC", teacherID)
}

func (repo *examRepository) selectResults(query string, args ...interface{}) ([]exam.Result, error) {
	var rows []resultRow
	if err := repo.db.Select(&rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying results")
	}
	results := make([]exam.Result, 0, len(rows))
	for _, row := range rows {
		results = append(results, row.domain())
	}
	return results, nil
}

func (repo *examRepository) UpdateResult(res exam.Result) (exam.Result, error) {
	out, err := repo.db.Exec(
		"UPDATE result SET subject = $2, marks = $3, grade = $4, updated_at = $5 WHERE id = $1",
		res.ID, res.Subject, res.Marks, res.Grade, res.UpdatedAt,
	)
	if err != nil {
		return exam.Result{}, errors.Wrap(err, "updating result")
	}
	if n, _ := out.RowsAffected(); n == 0 {
		return exam.Result{}, exam.ErrResultNotFound
	}
	return repo.GetResultByID(res.ID)
}

func (repo *examRepository) DeleteResult(id string) error {
	res, err := repo.db.Exec("DELETE FROM result WHERE id = $1", id)
	if err != nil {
		return errors.Wrap(err, "deleting result")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return exam.ErrResultNotFound
	}
	return nil
}
