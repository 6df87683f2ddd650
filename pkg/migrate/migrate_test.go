package migrate

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

var testMigrations = fstest.MapFS{
	"001_create_runs.up.sql":    {Data: []byte("CREATE TABLE runs (id TEXT PRIMARY KEY);")},
	"001_create_runs.down.sql":  {Data: []byte("DROP TABLE runs;")},
	"002_add_readings.up.sql":   {Data: []byte("CREATE TABLE readings (run_id TEXT, value REAL);")},
	"002_add_readings.down.sql": {Data: []byte("DROP TABLE readings;")},
	"README.md":                 {Data: []byte("not a migration")},
	"nested/003_index.up.sql":   {Data: []byte("CREATE INDEX readings_run ON readings (run_id);")},
	"nested/003_index.down.sql": {Data: []byte("DROP INDEX readings_run;")},
}

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migrate.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&n)
	if err != nil {
		t.Fatal(err)
	}
	return n == 1
}

func TestGetMigrations(t *testing.T) {
	migrations, err := NewFSProvider(testMigrations, "").GetMigrations()
	if err != nil {
		t.Fatalf("GetMigrations: %v", err)
	}
	if len(migrations) != 3 {
		t.Fatalf("got %d migrations, expected 3", len(migrations))
	}

	for _, m := range migrations {
		if m.Up == "" || m.Down == "" {
			t.Errorf("migration %d is missing a direction", m.Version)
		}
		if m.Version == 1 && m.Name != "create runs" {
			t.Errorf("migration 1 name = %q", m.Name)
		}
	}
}

func TestMigrateUpAndDown(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	m := NewMigrator(db, NewFSProvider(testMigrations, ""), nil)

	if err := m.MigrateUp(ctx); err != nil {
		t.Fatalf("MigrateUp: %v", err)
	}
	version, err := m.CurrentVersion(ctx)
	if err != nil || version != 3 {
		t.Fatalf("CurrentVersion() = %d, %v; expected 3", version, err)
	}
	if !tableExists(t, db, "runs") || !tableExists(t, db, "readings") {
		t.Fatal("expected both tables after migrating up")
	}

	// A second run is a no-op
	if err := m.MigrateUp(ctx); err != nil {
		t.Fatalf("repeated MigrateUp: %v", err)
	}

	if err := m.MigrateTo(ctx, 1); err != nil {
		t.Fatalf("MigrateTo(1): %v", err)
	}
	version, _ = m.CurrentVersion(ctx)
	if version != 1 {
		t.Errorf("CurrentVersion() = %d after rollback, expected 1", version)
	}
	if tableExists(t, db, "readings") {
		t.Error("readings should be dropped after rolling back to 1")
	}

	pending, err := m.Pending(ctx)
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(pending) != 2 || pending[0].Version != 2 {
		t.Errorf("Pending() = %+v, expected versions 2 and 3", pending)
	}
}

func TestMigrateMissingDown(t *testing.T) {
	ctx := context.Background()
	fsys := fstest.MapFS{
		"001_only_up.up.sql": {Data: []byte("CREATE TABLE only_up (id INTEGER);")},
	}
	m := NewMigrator(openDB(t), NewFSProvider(fsys, "versions"), nil)

	if err := m.MigrateUp(ctx); err != nil {
		t.Fatalf("MigrateUp: %v", err)
	}
	if err := m.MigrateTo(ctx, 0); err == nil {
		t.Error("expected error rolling back a migration without down SQL")
	}
}
