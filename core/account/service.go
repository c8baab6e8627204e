package account

import (
	"time"

	"github.com/pkg/errors"

	"github.com/JUSAIR-JSR/MEA-Student-portal/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrRollNoExists       = errors.New("a student with this roll number already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWrongLoginMethod   = errors.New("google admins must log in using google sign-in")
	ErrNotAuthorized      = errors.New("not authorized as admin")
	ErrInvalidRole        = errors.New("invalid role")
)

type (
	Repository interface {
		CreateAdmin(adm Admin) (Admin, error)
		GetAdminByID(id string) (Admin, error)
		GetAdminByEmail(email string) (Admin, error)

		CreateTeacher(tch Teacher) (Teacher, error)
		QueryAllTeachers() ([]Teacher, error)
		GetTeacherByID(id string) (Teacher, error)
		GetTeacherByEmail(email string) (Teacher, error)
		UpdateTeacher(tch Teacher) (Teacher, error)
		DeleteTeacher(id string) error
		SetTeacherPassword(id string, hash []byte) error

		CreateStudent(stu Student) (Student, error)
		QueryAllStudents() ([]Student, error)
		GetStudentByID(id string) (Student, error)
		GetStudentByEmail(email string) (Student, error)
		GetStudentByRollNo(rollNo string) (Student, error)
		UpdateStudent(stu Student) (Student, error)
		DeleteStudent(id string) error
		SetStudentPassword(id string, hash []byte) error
	}

	// Profile is the whoami payload; User marshals without its password hash.
	Profile struct {
		Role string      `json:"role"`
		User interface{} `json:"user"`
	}

	Service struct {
		repo          Repository
		allowedAdmins []string
	}
)

func NewService(repo Repository, allowedAdmins []string) *Service {
	allowed := make([]string, 0, len(allowedAdmins))
	for _, email := range allowedAdmins {
		allowed = append(allowed, core.CleanString(email, true /* lower */))
	}
	return &Service{repo: repo, allowedAdmins: allowed}
}

// Authenticate resolves the login discriminant and verifies the password.
// A roll number only ever hits the Student bucket; an email is tried against
// Admin first, then Teacher. Google-provisioned admins never accept passwords.
func (svc *Service) Authenticate(lr LoginRequest) (Identity, error) {
	if lr.RollNo != "" {
		stu, err := svc.repo.GetStudentByRollNo(lr.RollNo)
		if err != nil {
			return Identity{}, err
		}
		if err = stu.CheckPassword(lr.Password); err != nil {
			return Identity{}, ErrInvalidCredentials
		}
		return Identity{ID: stu.ID, Role: RoleStudent}, nil
	}

	adm, err := svc.repo.GetAdminByEmail(lr.Email)
	if err == nil {
		if adm.AuthType == AuthTypeGoogle {
			return Identity{}, ErrWrongLoginMethod
		}
		if err = adm.CheckPassword(lr.Password); err != nil {
			return Identity{}, ErrInvalidCredentials
		}
		return Identity{ID: adm.ID, Role: RoleAdmin}, nil
	}
	if errors.Cause(err) != ErrNotFound {
		return Identity{}, errors.Wrap(err, "finding admin by email")
	}

	tch, err := svc.repo.GetTeacherByEmail(lr.Email)
	if err != nil {
		return Identity{}, err
	}
	if err = tch.CheckPassword(lr.Password); err != nil {
		return Identity{}, ErrInvalidCredentials
	}
	return Identity{ID: tch.ID, Role: RoleTeacher}, nil
}

// GoogleAuthenticate logs in an admin whose identity was already verified by
// the identity provider. The email must be on the configured allow-list and
// must resolve to an existing Admin record. No password is ever checked here.
func (svc *Service) GoogleAuthenticate(email string) (Identity, error) {
	email = core.CleanString(email, true /* lower */)
	if !svc.isAllowedAdmin(email) {
		return Identity{}, ErrNotAuthorized
	}
	adm, err := svc.repo.GetAdminByEmail(email)
	if err != nil {
		return Identity{}, err
	}
	return Identity{ID: adm.ID, Role: RoleAdmin}, nil
}

func (svc *Service) isAllowedAdmin(email string) bool {
	for _, allowed := range svc.allowedAdmins {
		if allowed == email {
			return true
		}
	}
	return false
}

// Me loads the record behind a decoded identity, password hash excluded.
func (svc *Service) Me(ident Identity) (Profile, error) {
	switch ident.Role {
	case RoleAdmin:
		adm, err := svc.repo.GetAdminByID(ident.ID)
		if err != nil {
			return Profile{}, err
		}
		return Profile{Role: RoleAdmin, User: adm}, nil
	case RoleTeacher:
		tch, err := svc.repo.GetTeacherByID(ident.ID)
		if err != nil {
			return Profile{}, err
		}
		return Profile{Role: RoleTeacher, User: tch}, nil
	case RoleStudent:
		stu, err := svc.repo.GetStudentByID(ident.ID)
		if err != nil {
			return Profile{}, err
		}
		return Profile{Role: RoleStudent, User: stu}, nil
	}
	return Profile{}, ErrNotFound
}

func (svc *Service) CreateAdmin(adm Admin) (Admin, error) {
	now := time.Now().UTC()
	adm.Email = core.CleanString(adm.Email, true /* lower */)
	if adm.AuthType == "" {
		adm.AuthType = AuthTypeLocal
	}
	adm.CreatedAt = now
	adm.UpdatedAt = now
	return svc.repo.CreateAdmin(adm)
}

func (svc *Service) CreateTeacher(nt NewTeacher) (Teacher, error) {
	now := time.Now().UTC()
	tch := Teacher{
		Name:      nt.Name,
		Email:     nt.Email,
		Subject:   nt.Subject,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tch.SetPassword(nt.Password); err != nil {
		return Teacher{}, err
	}
	return svc.repo.CreateTeacher(tch)
}

func (svc *Service) QueryTeachers() ([]Teacher, error) {
	return svc.repo.QueryAllTeachers()
}

func (svc *Service) GetTeacher(id string) (Teacher, error) {
	return svc.repo.GetTeacherByID(id)
}

func (svc *Service) UpdateTeacher(id string, ut UpdateTeacher) (Teacher, error) {
	tch, err := svc.repo.GetTeacherByID(id)
	if err != nil {
		return Teacher{}, err
	}
	if ut.Name != "" {
		tch.Name = ut.Name
	}
	if ut.Email != "" {
		tch.Email = ut.Email
	}
	if ut.Subject != "" {
		tch.Subject = ut.Subject
	}
	tch.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateTeacher(tch)
}

func (svc *Service) DeleteTeacher(id string) error {
	return svc.repo.DeleteTeacher(id)
}

func (svc *Service) CreateStudent(ns NewStudent) (Student, error) {
	now := time.Now().UTC()
	stu := Student{
		Name:       ns.Name,
		Email:      ns.Email,
		RollNo:     ns.RollNo,
		Department: ns.Department,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := stu.SetPassword(ns.Password); err != nil {
		return Student{}, err
	}
	return svc.repo.CreateStudent(stu)
}

func (svc *Service) QueryStudents() ([]Student, error) {
	return svc.repo.QueryAllStudents()
}

func (svc *Service) GetStudent(id string) (Student, error) {
	return svc.repo.GetStudentByID(id)
}

func (svc *Service) UpdateStudent(id string, us UpdateStudent) (Student, error) {
	stu, err := svc.repo.GetStudentByID(id)
	if err != nil {
		return Student{}, err
	}
	if us.Name != "" {
		stu.Name = us.Name
	}
	if us.Email != "" {
		stu.Email = us.Email
	}
	if us.RollNo != "" {
		stu.RollNo = us.RollNo
	}
	if us.Department != "" {
		stu.Department = us.Department
	}
	stu.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(stu)
}

func (svc *Service) DeleteStudent(id string) error {
	return svc.repo.DeleteStudent(id)
}

// ResetPassword overwrites the stored hash for a teacher or student.
// Previously issued session tokens remain valid until their expiry.
func (svc *Service) ResetPassword(rp ResetPassword) error {
	hash, err := HashPassword(rp.NewPassword)
	if err != nil {
		return err
	}
	switch rp.Role {
	case RoleTeacher:
		return svc.repo.SetTeacherPassword(rp.ID, hash)
	case RoleStudent:
		return svc.repo.SetStudentPassword(rp.ID, hash)
	}
	return ErrInvalidRole
}
