package main

import (
	"flag"
	"log"

	"github.com/uptrace/bun/migrate"

	"github.com/propchain-labs/bridge-coordinator/pkg/config"
	"github.com/propchain-labs/bridge-coordinator/pkg/migrations/bridgedb"
	"github.com/propchain-labs/bridge-coordinator/pkg/pgutil"
	mghelper "github.com/propchain-labs/bridge-coordinator/pkg/pgutil/migrations"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Usage = mghelper.Usage
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("error reading configuration file: %s", err.Error())
	}

	db, err := pgutil.ConnectDB(&cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %s", err.Error())
	}
	defer db.Close()

	log.Printf("Running migrations for coordinator database (%s)...\n", cfg.Database.Database)

	migrator := migrate.NewMigrator(db, bridgedb.Migrations)
	if err := mghelper.RunMigrations(migrator, flag.Args()...); err != nil {
		mghelper.Exitf(err.Error())
	}
}
