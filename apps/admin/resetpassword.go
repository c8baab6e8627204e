package main

import (
	"github.com/JUSAIR-JSR/MEA-Student-portal/core"
	"github.com/JUSAIR-JSR/MEA-Student-portal/core/account"
)

func (cli *commandLine) resetPassword(role, email, pwd string) error {
	role = core.CleanString(role, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	rp := account.ResetPassword{Role: role, NewPassword: pwd}
	switch role {
	case account.RoleTeacher:
		tch, err := cli.repo.GetTeacherByEmail(email)
		if err != nil {
			return err
		}
		rp.ID = tch.ID
	case account.RoleStudent:
		stu, err := cli.repo.GetStudentByEmail(email)
		if err != nil {
			return err
		}
		rp.ID = stu.ID
	default:
		return account.ErrInvalidRole
	}

	if err := cli.svc.ResetPassword(rp); err != nil {
		return err
	}
	logger.Printf("password reset for %s %s", role, email)
	return nil
}
