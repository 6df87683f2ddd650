// Package main inspects and migrates the schema of a SQLite cleaning-run database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/chrissnell/turbineclean/internal/log"
	"github.com/chrissnell/turbineclean/internal/storage/sqlite"
	"github.com/chrissnell/turbineclean/pkg/migrate"
)

func main() {
	var (
		dbPath        = flag.String("db", "", "Path to the SQLite database written by the sqlite sink")
		command       = flag.String("command", "status", "Migration command: up, to, version, status")
		targetVersion = flag.Int("target", -1, "Target version for the to command")
		debug         = flag.Bool("debug", false, "Turn on debugging output")
	)
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintf(os.Stderr, "Error: -db flag is required\n")
		flag.Usage()
		os.Exit(1)
	}

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()
	db, err := sqlite.OpenDB(ctx, *dbPath)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer db.Close()

	migrator := sqlite.SchemaMigrator(db, log.GetSugaredLogger())

	switch *command {
	case "up":
		err = migrator.MigrateUp(ctx)
	case "to":
		if *targetVersion < 0 {
			fmt.Fprintf(os.Stderr, "Error: -target flag is required for the to command\n")
			os.Exit(1)
		}
		err = migrator.MigrateTo(ctx, *targetVersion)
	case "version":
		var version int
		version, err = migrator.CurrentVersion(ctx)
		if err == nil {
			fmt.Printf("Current version: %d\n", version)
		}
	case "status":
		err = showStatus(ctx, migrator)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n", *command)
		flag.Usage()
		os.Exit(1)
	}

	if err != nil {
		log.Fatalf("migration command %s failed: %v", *command, err)
	}
}

func showStatus(ctx context.Context, m *migrate.Migrator) error {
	version, err := m.CurrentVersion(ctx)
	if err != nil {
		return err
	}
	pending, err := m.Pending(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Current version: %d\n", version)
	if len(pending) == 0 {
		fmt.Println("Schema is up to date")
		return nil
	}
	fmt.Printf("Pending migrations: %d\n", len(pending))
	for _, mig := range pending {
		fmt.Printf("  %03d %s\n", mig.Version, mig.Name)
	}
	return nil
}
