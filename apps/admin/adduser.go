package main

import (
	"context"
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(name, email, pwd string, isTeacher bool) error {
	var usr user.User
	var err error
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)

	now := time.Now().UTC()
	if usr, err = cli.usrRepo.GetUserByEmail(ctx, email); err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Name:      name,
			Email:     email,
			CreatedAt: now,
		}
	}
	usr.Role = user.RoleStudent
	if isTeacher {
		usr.Role = user.RoleTeacher
	}
	usr.IsActive = true
	usr.UpdatedAt = now
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.usrRepo.UpdateOrCreateUser(ctx, usr); err != nil {
		return err
	}
	return nil
}
