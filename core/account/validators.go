package account

import (
	"github.com/go-playground/validator/v10"

	"github.com/JUSAIR-JSR/MEA-Student-portal/core"
)

var (
	resettableRoleTag  = "resettablerole"
	resettableRoleText = "role must be teacher or student"

	emailOrRollNoTag  = "email_or_rollno"
	emailOrRollNoText = "one of email or rollNo is required"
)

// register custom validators
func init() {
	_ = core.Validate.RegisterValidation(resettableRoleTag, resettableRoleValidation)
	core.RegisterCustomTranslation(resettableRoleTag, resettableRoleText)

	core.Validate.RegisterStructValidation(loginRequestStructValidation, LoginRequest{})
	core.RegisterCustomTranslation(emailOrRollNoTag, emailOrRollNoText)
}

// resettableRoleValidation only allows password resets for teachers and students.
func resettableRoleValidation(fl validator.FieldLevel) bool {
	role := fl.Field().String()
	return role == RoleTeacher || role == RoleStudent
}

// loginRequestStructValidation requires exactly one login discriminant.
func loginRequestStructValidation(sl validator.StructLevel) {
	if lr, ok := sl.Current().Interface().(LoginRequest); ok {
		if len(lr.Email) == 0 && len(lr.RollNo) == 0 {
			sl.ReportError(lr.Email, "email", "Email", emailOrRollNoTag, "")
			sl.ReportError(lr.RollNo, "rollNo", "RollNo", emailOrRollNoTag, "")
		}
	}
}
