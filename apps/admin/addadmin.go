package main

import (
	"github.com/pkg/errors"

	"github.com/JUSAIR-JSR/MEA-Student-portal/core"
	"github.com/JUSAIR-JSR/MEA-Student-portal/core/account"
)

// addAdmin creates an Admin account. Google-provisioned admins carry no
// password hash and may only log in through google sign-in.
func (cli *commandLine) addAdmin(name, email, pwd string, google bool) error {
	email = core.CleanString(email, true /* lower */)

	if _, err := cli.repo.GetAdminByEmail(email); err == nil {
		return errors.New("an admin with this email already exists")
	} else if errors.Cause(err) != account.ErrNotFound {
		return err
	}

	adm := account.Admin{
		Name:     core.CleanString(name),
		Email:    email,
		AuthType: account.AuthTypeLocal,
	}
	if google {
		adm.AuthType = account.AuthTypeGoogle
	} else if err := adm.SetPassword(pwd); err != nil {
		return err
	}

	if _, err := cli.svc.CreateAdmin(adm); err != nil {
		return err
	}
	logger.Printf("admin %s created", email)
	return nil
}
