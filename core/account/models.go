package account

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/JUSAIR-JSR/MEA-Student-portal/core"
)

// Roles
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// Admin auth modes
const (
	AuthTypeLocal  = "local"
	AuthTypeGoogle = "google"
)

// Identity is the request-scoped principal decoded from the session cookie.
type Identity struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

type Admin struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	GoogleID     string    `json:"-"`
	AuthType     string    `json:"authType"`
	CreatedAt    time.Time `json:"createdAt"` // UTC
	UpdatedAt    time.Time `json:"updatedAt"` // UTC
}

type Teacher struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	Subject      string    `json:"subject"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Student struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	RollNo       string    `json:"rollNo"`
	Department   string    `json:"department"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HashPassword bcrypt-hashes a clear text password.
func HashPassword(pwd string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
}

func checkPassword(hash []byte, pwd string) error {
	return bcrypt.CompareHashAndPassword(hash, []byte(pwd))
}

func (a *Admin) SetPassword(pwd string) error {
	hash, err := HashPassword(pwd)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return nil
}

func (a *Admin) CheckPassword(pwd string) error { return checkPassword(a.PasswordHash, pwd) }

func (t *Teacher) SetPassword(pwd string) error {
	hash, err := HashPassword(pwd)
	if err != nil {
		return err
	}
	t.PasswordHash = hash
	return nil
}

func (t *Teacher) CheckPassword(pwd string) error { return checkPassword(t.PasswordHash, pwd) }

func (s *Student) SetPassword(pwd string) error {
	hash, err := HashPassword(pwd)
	if err != nil {
		return err
	}
	s.PasswordHash = hash
	return nil
}

func (s *Student) CheckPassword(pwd string) error { return checkPassword(s.PasswordHash, pwd) }

// LoginRequest is the tagged login payload: a roll number routes to the
// Student bucket, an email is tried against Admin then Teacher.
type LoginRequest struct {
	Email    string `json:"email" validate:"omitempty,email"`
	RollNo   string `json:"rollNo"`
	Password string `json:"password" validate:"required"`
}

func (lr *LoginRequest) Validate() error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	lr.RollNo = core.CleanString(lr.RollNo)
	return core.Validate.Struct(lr)
}

// NewTeacher contains information needed to create a new Teacher.
type NewTeacher struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Subject  string `json:"subject" validate:"required"`
}

func (nt *NewTeacher) Validate() error {
	nt.Name = core.CleanString(nt.Name)
	nt.Email = core.CleanString(nt.Email, true /* lower */)
	nt.Subject = core.CleanString(nt.Subject)
	return core.Validate.Struct(nt)
}

// UpdateTeacher enumerates the Teacher fields that may be modified.
// Empty fields keep their current value.
type UpdateTeacher struct {
	Name    string `json:"name"`
	Email   string `json:"email" validate:"omitempty,email"`
	Subject string `json:"subject"`
}

func (ut *UpdateTeacher) Validate() error {
	ut.Name = core.CleanString(ut.Name)
	ut.Email = core.CleanString(ut.Email, true /* lower */)
	ut.Subject = core.CleanString(ut.Subject)
	return core.Validate.Struct(ut)
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RollNo     string `json:"rollNo" validate:"required"`
	Department string `json:"department" validate:"required"`
}

func (ns *NewStudent) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.RollNo = core.CleanString(ns.RollNo)
	ns.Department = core.CleanString(ns.Department)
	return core.Validate.Struct(ns)
}

// UpdateStudent enumerates the Student fields that may be modified.
type UpdateStudent struct {
	Name       string `json:"name"`
	Email      string `json:"email" validate:"omitempty,email"`
	RollNo     string `json:"rollNo"`
	Department string `json:"department"`
}

func (us *UpdateStudent) Validate() error {
	us.Name = core.CleanString(us.Name)
	us.Email = core.CleanString(us.Email, true /* lower */)
	us.RollNo = core.CleanString(us.RollNo)
	us.Department = core.CleanString(us.Department)
	return core.Validate.Struct(us)
}

// ResetPassword overwrites a teacher's or student's password hash.
// Existing session tokens stay valid until their expiry.
type ResetPassword struct {
	Role        string `json:"role" validate:"required,resettablerole"`
	ID          string `json:"id" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

func (rp *ResetPassword) Validate() error {
	rp.Role = core.CleanString(rp.Role, true /* lower */)
	return core.Validate.Struct(rp)
}
