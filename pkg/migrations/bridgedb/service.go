// Package bridgedb holds all the migrations for the bridge coordinator database
package bridgedb

import (
	"github.com/uptrace/bun/migrate"
)

// Migrations is the collection of all migrations for the coordinator database
var Migrations = migrate.NewMigrations()
