package main

import (
	"github.com/bouncearound/daycare/storage/database"
)

// migrate applies all pending database migrations.
func (cli *commandLine) migrate() error {
	return database.Migrate(cli.db)
}
