package dummydb

import (
	"github.com/google/uuid"

	"github.com/JUSAIR-JSR/MEA-Student-portal/core/account"
)

type accountRepository struct {
	admins   *adminTable
	teachers *teacherTable
	students *studentTable
}

var _ account.Repository = (*accountRepository)(nil) // interface compliance check

func NewAccountRepository(db *DB) *accountRepository {
	return &accountRepository{admins: db.admin, teachers: db.teacher, students: db.student}
}

// Admins

func (repo *accountRepository) CreateAdmin(adm account.Admin) (account.Admin, error) {
	repo.admins.Lock()
	defer repo.admins.Unlock()

	for _, cur := range repo.admins.table {
		if cur.Email == adm.Email {
			return account.Admin{}, account.ErrEmailExists
		}
	}
	adm.ID = uuid.New().String()
	repo.admins.table[adm.ID] = &adm
	return adm, nil
}

func (repo *accountRepository) GetAdminByID(id string) (account.Admin, error) {
	repo.admins.RLock()
	defer repo.admins.RUnlock()

	if adm, ok := repo.admins.table[id]; ok {
		return *adm, nil
	}
	return account.Admin{}, account.ErrNotFound
}

func (repo *accountRepository) GetAdminByEmail(email string) (account.Admin, error) {
	repo.admins.RLock()
	defer repo.admins.RUnlock()

	for _, adm := range repo.admins.table {
		if adm.Email == email {
			return *adm, nil
		}
	}
	return account.Admin{}, account.ErrNotFound
}

// Teachers

func (repo *accountRepository) CreateTeacher(tch account.Teacher) (account.Teacher, error) {
	repo.teachers.Lock()
	defer repo.teachers.Unlock()

	for _, cur := range repo.teachers.table {
		if cur.Email == tch.Email {
			return account.Teacher{}, account.ErrEmailExists
		}
	}
	tch.ID = uuid.New().String()
	repo.teachers.table[tch.ID] = &tch
	return tch, nil
}

func (repo *accountRepository) QueryAllTeachers() ([]account.Teacher, error) {
	repo.teachers.RLock()
	defer repo.teachers.RUnlock()

	teachers := make([]account.Teacher, 0, len(repo.teachers.table))
	for _, tch := range repo.teachers.table {
		teachers = append(teachers, *tch)
	}
	return teachers, nil
}

func (repo *accountRepository) GetTeacherByID(id string) (account.Teacher, error) {
	repo.teachers.RLock()
	defer repo.teachers.RUnlock()

	if tch, ok := repo.teachers.table[id]; ok {
		return *tch, nil
	}
	return account.Teacher{}, account.ErrNotFound
}

func (repo *accountRepository) GetTeacherByEmail(email string) (account.Teacher, error) {
	repo.teachers.RLock()
	defer repo.teachers.RUnlock()

	for _, tch := range repo.teachers.table {
		if tch.Email == email {
			return *tch, nil
		}
	}
	return account.Teacher{}, account.ErrNotFound
}

func (repo *accountRepository) UpdateTeacher(tch account.Teacher) (account.Teacher, error) {
	repo.teachers.Lock()
	defer repo.teachers.Unlock()

	cur, ok := repo.teachers.table[tch.ID]
	if !ok {
		return account.Teacher{}, account.ErrNotFound
	}
	for id, other := range repo.teachers.table {
		if id != tch.ID && other.Email == tch.Email {
			return account.Teacher{}, account.ErrEmailExists
		}
	}
	tch.PasswordHash = cur.PasswordHash
	tch.CreatedAt = cur.CreatedAt
	repo.teachers.table[tch.ID] = &tch
	return tch, nil
}

func (repo *accountRepository) DeleteTeacher(id string) error {
	repo.teachers.Lock()
	defer repo.teachers.Unlock()

	if _, ok := repo.teachers.table[id]; !ok {
		return account.ErrNotFound
	}
	delete(repo.teachers.table, id)
	return nil
}

func (repo *accountRepository) SetTeacherPassword(id string, hash []byte) error {
	repo.teachers.Lock()
	defer repo.teachers.Unlock()

	tch, ok := repo.teachers.table[id]
	if !ok {
		return account.ErrNotFound
	}
	tch.PasswordHash = hash
	return nil
}

// Students

func (repo *accountRepository) CreateStudent(stu account.Student) (account.Student, error) {
	repo.students.Lock()
	defer repo.students.Unlock()

	for _, cur := range repo.students.table {
		if cur.RollNo == stu.RollNo {
			return account.Student{}, account.ErrRollNoExists
		}
		if cur.Email == stu.Email {
			return account.Student{}, account.ErrEmailExists
		}
	}
	stu.ID = uuid.New().String()
	repo.students.table[stu.ID] = &stu
	return stu, nil
}

func (repo *accountRepository) QueryAllStudents() ([]account.Student, error) {
	repo.students.RLock()
	defer repo.students.RUnlock()

	students := make([]account.Student, 0, len(repo.students.table))
	for _, stu := range repo.students.table {
		students = append(students, *stu)
	}
	return students, nil
}

func (repo *accountRepository) GetStudentByID(id string) (account.Student, error) {
	repo.students.RLock()
	defer repo.students.RUnlock()

	if stu, ok := repo.students.table[id]; ok {
		return *stu, nil
	}
	return account.Student{}, account.ErrNotFound
}

func (repo *accountRepository) GetStudentByEmail(email string) (account.Student, error) {
	repo.students.RLock()
	defer repo.students.RUnlock()

	for _, stu := range repo.students.table {
		if stu.Email == email {
			return *stu, nil
		}
	}
	return account.Student{}, account.ErrNotFound
}

func (repo *accountRepository) GetStudentByRollNo(rollNo string) (account.Student, error) {
	repo.students.RLock()
	defer repo.students.RUnlock()

	for _, stu := range repo.students.table {
		if stu.RollNo == rollNo {
			return *stu, nil
		}
	}
	return account.Student{}, account.ErrNotFound
}

func (repo *accountRepository) UpdateStudent(stu account.Student) (account.Student, error) {
	repo.students.Lock()
	defer repo.students.Unlock()

	cur, ok := repo.students.table[stu.ID]
	if !ok {
		return account.Student{}, account.ErrNotFound
	}
	for id, other := range repo.students.table {
		if id == stu.ID {
			continue
		}
		if other.RollNo == stu.RollNo {
			return account.Student{}, account.ErrRollNoExists
		}
		if other.Email == stu.Email {
			return account.Student{}, account.ErrEmailExists
		}
	}
	stu.PasswordHash = cur.PasswordHash
	stu.CreatedAt = cur.CreatedAt
	repo.students.table[stu.ID] = &stu
	return stu, nil
}

func (repo *accountRepository) DeleteStudent(id string) error {
	repo.students.Lock()
	defer repo.students.Unlock()

	if _, ok := repo.students.table[id]; !ok {
		return account.ErrNotFound
	}
	delete(repo.students.table, id)
	return nil
}

func (repo *accountRepository) SetStudentPassword(id string, hash []byte) error {
	repo.students.Lock()
	defer repo.students.Unlock()

	stu, ok := repo.students.table[id]
	if !ok {
		return account.ErrNotFound
	}
	stu.PasswordHash = hash
	return nil
}
