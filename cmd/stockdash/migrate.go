package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/SultanAlanazie/stock-market-dashboard/internal/config"
	"github.com/SultanAlanazie/stock-market-dashboard/internal/database"
	"github.com/SultanAlanazie/stock-market-dashboard/internal/slogx"
)

// migrateCmd implements the "migrate" command.
type migrateCmd struct {
	down bool
}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "applies the database migrations" }
func (*migrateCmd) Usage() string {
	return `migrate [-down]

Applies every pending migration to the configured database, or rolls all of
them back with -down.
`
}

func (c *migrateCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.down, "down", false, "roll back all migrations")
}

func (c *migrateCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg := config.Load()
	log := slogx.NewDefault(cfg.LogLevel)

	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	if c.down {
		err = db.MigrateDown()
	} else {
		err = db.Migrate()
	}
	if err != nil {
		log.Error("Migration failed", "error", err)
		return subcommands.ExitFailure
	}

	version, dirty, err := db.MigrationVersion()
	if err != nil {
		log.Error("Failed to read migration version", "error", err)
		return subcommands.ExitFailure
	}
	log.Info("Migrations applied", "version", version, "dirty", dirty)
	return subcommands.ExitSuccess
}
