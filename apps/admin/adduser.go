package main

import (
	"context"
	"time"

	"github.com/bouncearound/daycare/core"
	"github.com/bouncearound/daycare/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(email, first, last, role, pwd string) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Email:     email,
			CreatedAt: time.Now().UTC(),
		}
	}
	usr.FirstName = core.CleanString(first)
	usr.LastName = core.CleanString(last)
	usr.Role = core.CleanString(role, true /* lower */)
	usr.IsActive = true
	usr.UpdatedAt = time.Now().UTC()
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}

	if usr.ID == "" {
		_, err = cli.usrRepo.CreateUser(ctx, usr)
	} else {
		_, err = cli.usrRepo.UpdateUser(ctx, usr)
	}
	return err
}
