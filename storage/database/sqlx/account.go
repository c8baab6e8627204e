package sqlxrepos

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/JUSAIR-JSR/MEA-Student-portal/core/account"
)

type accountRepository struct {
	db *sqlx.DB
}

var _ account.Repository = (*accountRepository)(nil) // interface compliance check

func NewAccountRepository(db *sqlx.DB) *accountRepository {
	return &accountRepository{db: db}
}

// uniqueViolation maps a pq unique-constraint error onto a domain sentinel.
func uniqueViolation(err error) error {
	pqErr, ok := err.(*pq.Error)
	if !ok || pqErr.Code != "23505" {
		return nil
	}
	if strings.Contains(pqErr.Constraint, "roll_no") {
		return account.ErrRollNoExists
	}
	return account.ErrEmailExists
}

type adminRow struct {
	ID           string      `db:"id"`
	Name         string      `db:"name"`
	Email        string      `db:"email"`
	PasswordHash null.Bytes  `db:"password_hash"`
	GoogleID     null.String `db:"google_id"`
	AuthType     string      `db:"auth_type"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
}

func (row adminRow) domain() account.Admin {
	return account.Admin{
		ID:           row.ID,
		Name:         row.Name,
		Email:        row.Email,
		PasswordHash: row.PasswordHash.Bytes,
		GoogleID:     row.GoogleID.String,
		AuthType:     row.AuthType,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

type teacherRow struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash []byte    `db:"password_hash"`
	Subject      string    `db:"subject"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (row teacherRow) domain() account.Teacher {
	return account.Teacher{
		ID:           row.ID,
		Name:         row.Name,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		Subject:      row.Subject,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

type studentRow struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash []byte    `db:"password_hash"`
	RollNo       string    `db:"roll_no"`
	Department   string    `db:"department"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (row studentRow) domain() account.Student {
	return account.Student{
		ID:           row.ID,
		Name:         row.Name,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		RollNo:       row.RollNo,
		Department:   row.Department,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

// Admins

func (repo *accountRepository) CreateAdmin(adm account.Admin) (account.Admin, error) {
	adm.ID = uuid.New().String()
	_, err := repo.db.Exec(
		`INSERT INTO admin (id, name, email, password_hash, google_id, auth_type, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		adm.ID, adm.Name, adm.Email, null.BytesFrom(adm.PasswordHash),
		null.NewString(adm.GoogleID, adm.GoogleID != ""), adm.AuthType, adm.CreatedAt, adm.UpdatedAt,
	)
	if err != nil {
		if uerr := uniqueViolation(err); uerr != nil {
			return account.Admin{}, uerr
		}
		return account.Admin{}, errors.Wrap(err, "inserting admin")
	}
	return adm, nil
}

func (repo *accountRepository) GetAdminByID(id string) (account.Admin, error) {
	var row adminRow
	err := repo.db.Get(&row, "SELECT * FROM admin WHERE id = $1", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return account.Admin{}, account.ErrNotFound
		}
		return account.Admin{}, errors.Wrap(err, "getting admin by ID")
	}
	return row.domain(), nil
}

func (repo *accountRepository) GetAdminByEmail(email string) (account.Admin, error) {
	var row adminRow
	err := repo.db.Get(&row, "SELECT * FROM admin WHERE email = $1", email)
	if err != nil {
		if err == sql.ErrNoRows {
			return account.Admin{}, account.ErrNotFound
		}
		return account.Admin{}, errors.Wrap(err, "getting admin by email")
	}
	return row.domain(), nil
}

// Teachers

func (repo *accountRepository) CreateTeacher(tch account.Teacher) (account.Teacher, error) {
	tch.ID = uuid.New().String()
	_, err := repo.db.Exec(
		`INSERT INTO teacher (id, name, email, password_hash, subject, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		tch.ID, tch.Name, tch.Email, tch.PasswordHash, tch.Subject, tch.CreatedAt, tch.UpdatedAt,
	)
	if err != nil {
		if uerr := uniqueViolation(err); uerr != nil {
			return account.Teacher{}, uerr
		}
		return account.Teacher{}, errors.Wrap(err, "inserting teacher")
	}
	return tch, nil
}

func (repo *accountRepository) QueryAllTeachers() ([]account.Teacher, error) {
	var rows []teacherRow
	if err := repo.db.Select(&rows, "SELECT * FROM teacher ORDER BY created_at DESC"); err != nil {
		return nil, errors.Wrap(err, "querying teachers")
	}
	teachers := make([]account.Teacher, 0, len(rows))
	for _, row := range rows {
		teachers = append(teachers, row.domain())
	}
	return teachers, nil
}

func (repo *accountRepository) GetTeacherByID(id string) (account.Teacher, error) {
	var row teacherRow
	err := repo.db.Get(&row, "SELECT * FROM teacher WHERE id = $1", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return account.Teacher{}, account.ErrNotFound
		}
		return account.Teacher{}, errors.Wrap(err, "getting teacher by ID")
	}
	return row.domain(), nil
}

func (repo *accountRepository) GetTeacherByEmail(email string) (account.Teacher, error) {
	var row teacherRow
	err := repo.db.Get(&row, "SELECT * FROM teacher WHERE email = $1", email)
	if err != nil {
		if err == sql.ErrNoRows {
			return account.Teacher{}, account.ErrNotFound
		}
		return account.Teacher{}, errors.Wrap(err, "getting teacher by email")
	}
	return row.domain(), nil
}

func (repo *accountRepository) UpdateTeacher(tch account.Teacher) (account.Teacher, error) {
	res, err := repo.db.Exec(
		"UPDATE teacher SET name = $2, email = $3, subject = $4, updated_at = $5 WHERE id = $1",
		tch.ID, tch.Name, tch.Email, tch.Subject, tch.UpdatedAt,
	)
	if err != nil {
		if uerr := uniqueViolation(err); uerr != nil {
			return account.Teacher{}, uerr
		}
		return account.Teacher{}, errors.Wrap(err, "updating teacher")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return account.Teacher{}, account.ErrNotFound
	}
	return repo.GetTeacherByID(tch.ID)
}

func (repo *accountRepository) DeleteTeacher(id string) error {
	res, err := repo.db.Exec("DELETE FROM teacher WHERE id = $1", id)
	if err != nil {
		return errors.Wrap(err, "deleting teacher")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return account.ErrNotFound
	}
	return nil
}

func (repo *accountRepository) SetTeacherPassword(id string, hash []byte) error {
	res, err := repo.db.Exec("UPDATE teacher SET password_hash = $2, updated_at = now() WHERE id = $1", id, hash)
	if err != nil {
		return errors.Wrap(err, "setting teacher password")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return account.ErrNotFound
	}
	return nil
}

// Students

func (repo *accountRepository) CreateStudent(stu account.Student) (account.Student, error) {
	stu.ID = uuid.New().String()
	_, err := repo.db.Exec(
		`INSERT INTO student (id, name, email, password_hash, roll_no, department, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		stu.ID, stu.Name, stu.Email, stu.PasswordHash, stu.RollNo, stu.Department, stu.CreatedAt, stu.UpdatedAt,
	)
	if err != nil {
		if uerr := uniqueViolation(err); uerr != nil {
			return account.Student{}, uerr
		}
		return account.Student{}, errors.Wrap(err, "inserting student")
	}
	return stu, nil
}

func (repo *accountRepository) QueryAllStudents() ([]account.Student, error) {
	var rows []studentRow
	if err := repo.db.Select(&rows, "SELECT * FROM student ORDER BY created_at DESC"); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]account.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.domain())
	}
	return students, nil
}

func (repo *accountRepository) GetStudentByID(id string) (account.Student, error) {
	var row studentRow
	err := repo.db.Get(&row, "SELECT * FROM student WHERE id = $1", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return account.Student{}, account.ErrNotFound
		}
		return account.Student{}, errors.Wrap(err, "getting student by ID")
	}
	return row.domain(), nil
}

func (repo *accountRepository) GetStudentByEmail(email string) (account.Student, error) {
	var row studentRow
	err := repo.db.Get(&row, "SELECT * FROM student WHERE email = $1", email)
	if err != nil {
		if err == sql.ErrNoRows {
			return account.Student{}, account.ErrNotFound
		}
		return account.Student{}, errors.Wrap(err, "getting student by email")
	}
	return row.domain(), nil
}

func (repo *accountRepository) GetStudentByRollNo(rollNo string) (account.Student, error) {
	var row studentRow
	err := repo.db.Get(&row, "SELECT * FROM student WHERE roll_no = $1", rollNo)
	if err != nil {
		if err == sql.ErrNoRows {
			return account.Student{}, account.ErrNotFound
		}
		return account.Student{}, errors.Wrap(err, "getting student by roll number")
	}
	return row.domain(), nil
}

func (repo *accountRepository) UpdateStudent(stu account.Student) (account.Student, error) {
	res, err := repo.db.Exec(
		"UPDATE student SET name = $2, email = $3, roll_no = $4, department = $5, updated_at = $6 WHERE id = $1",
		stu.ID, stu.Name, stu.Email, stu.RollNo, stu.Department, stu.UpdatedAt,
	)
	if err != nil {
		if uerr := uniqueViolation(err); uerr != nil {
			return account.Student{}, uerr
		}
		return account.Student{}, errors.Wrap(err, "updating student")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return account.Student{}, account.ErrNotFound
	}
	return repo.GetStudentByID(stu.ID)
}

func (repo *accountRepository) DeleteStudent(id string) error {
	res, err := repo.db.Exec("DELETE FROM student WHERE id = $1", id)
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return account.ErrNotFound
	}
	return nil
}

func (repo *accountRepository) SetStudentPassword(id string, hash []byte) error {
	res, err := repo.db.Exec("UPDATE student SET password_hash = $2, updated_at = now() WHERE id = $1", id, hash)
	if err != nil {
		return errors.Wrap(err, "setting student password")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return account.ErrNotFound
	}
	return nil
}
