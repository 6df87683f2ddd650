package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/chrissnell/turbineclean/internal/cleaning"
	"github.com/chrissnell/turbineclean/internal/storage"
	"github.com/chrissnell/turbineclean/internal/table"
)

func testRun(t *testing.T) *storage.Run {
	t.Helper()

	base := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	index := []time.Time{base, base.Add(10 * time.Minute), base.Add(20 * time.Minute)}
	tbl := table.New(index)

	columns := map[string][]float64{
		table.WindSpeedColumn(1): {1.0, 6.0, 8.0},
		table.PowerColumn(1):     {0.3, 0.25, 0.5},
		table.WindSpeedColumn(2): {5.0, 6.5, 45.0},
		table.PowerColumn(2):     {0.1, 0.3, 1.5},
	}
	for _, name := range []string{table.WindSpeedColumn(1), table.PowerColumn(1), table.WindSpeedColumn(2), table.PowerColumn(2)} {
		if err := tbl.SetFloat(name, columns[name]); err != nil {
			t.Fatal(err)
		}
	}

	res, err := cleaning.Clean(tbl, cleaning.DefaultParams(2, 2.0, 11.5, 22.0))
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	return storage.NewRun("hill", "scada.csv", base, res)
}

func TestStoreRun(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs", "clean.db")

	s, err := New(ctx, path, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	run := testRun(t)
	if err := s.StoreRun(ctx, run); err != nil {
		t.Fatalf("StoreRun: %v", err)
	}

	var farm string
	var turbines, rows int
	err = s.db.QueryRowContext(ctx, "SELECT farm, turbines, row_count FROM cleaning_runs WHERE id = ?", run.ID.String()).
		Scan(&farm, &turbines, &rows)
	if err != nil {
		t.Fatalf("querying run: %v", err)
	}
	if farm != "hill" || turbines != 2 || rows != 3 {
		t.Errorf("run row = (%s, %d, %d), expected (hill, 2, 3)", farm, turbines, rows)
	}

	counts := []struct {
		query    string
		expected int
	}{
		{"SELECT COUNT(*) FROM turbine_readings WHERE run_id = ?", 6},
		{"SELECT COUNT(*) FROM farm_aggregates WHERE run_id = ?", 3},
		{"SELECT COUNT(*) FROM completeness WHERE run_id = ?", 2},
		{"SELECT COUNT(*) FROM stage_stats WHERE run_id = ?", 2 * len(run.Result.Stages)},
		// turbine 1 below cut-in and turbine 2 past the range limit
		{"SELECT COUNT(*) FROM turbine_readings WHERE run_id = ? AND power IS NULL", 2},
	}
	for _, c := range counts {
		var n int
		if err := s.db.QueryRowContext(ctx, c.query, run.ID.String()).Scan(&n); err != nil {
			t.Fatalf("%s: %v", c.query, err)
		}
		if n != c.expected {
			t.Errorf("%s = %d, expected %d", c.query, n, c.expected)
		}
	}

	var ws sql.NullFloat64
	err = s.db.QueryRowContext(ctx,
		"SELECT wind_speed FROM turbine_readings WHERE run_id = ? AND row_num = 2 AND turbine = 2", run.ID.String()).Scan(&ws)
	if err != nil {
		t.Fatal(err)
	}
	if ws.Valid {
		t.Errorf("out-of-range wind speed stored as %v, expected NULL", ws.Float64)
	}

	var erased int
	err = s.db.QueryRowContext(ctx,
		"SELECT erased FROM stage_stats WHERE run_id = ? AND stage = ? AND turbine = 1",
		run.ID.String(), cleaning.StageLowWindPower).Scan(&erased)
	if err != nil {
		t.Fatal(err)
	}
	if erased != 1 {
		t.Errorf("low wind power erased %d readings on turbine 1, expected 1", erased)
	}
}

func TestReopenKeepsRuns(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "clean.db")

	first, err := New(ctx, path, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := first.StoreRun(ctx, testRun(t)); err != nil {
		t.Fatalf("StoreRun: %v", err)
	}
	first.Close()

	second, err := New(ctx, path, nil)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	defer second.Close()
	if err := second.StoreRun(ctx, testRun(t)); err != nil {
		t.Fatalf("StoreRun: %v", err)
	}

	var n int
	if err := second.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM cleaning_runs").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("found %d runs, expected 2", n)
	}
}

func TestSchemaMigrations(t *testing.T) {
	ctx := context.Background()
	db, err := OpenDB(ctx, filepath.Join(t.TempDir(), "nested", "clean.db"))
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	defer db.Close()

	m := SchemaMigrator(db, nil)
	pending, err := m.Pending(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 2 {
		t.Fatalf("fresh database has %d pending migrations, expected 2", len(pending))
	}

	if err := m.MigrateUp(ctx); err != nil {
		t.Fatalf("MigrateUp: %v", err)
	}
	if err := m.MigrateTo(ctx, 1); err != nil {
		t.Fatalf("MigrateTo(1): %v", err)
	}

	version, err := m.CurrentVersion(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if version != 1 {
		t.Errorf("version = %d after rolling back, expected 1", version)
	}
	if tableExists(t, db, "stage_stats") {
		t.Error("stage_stats survived the rollback")
	}
	if !tableExists(t, db, "turbine_readings") {
		t.Error("turbine_readings dropped by the rollback")
	}

	if err := m.MigrateUp(ctx); err != nil {
		t.Fatalf("MigrateUp after rollback: %v", err)
	}
	if !tableExists(t, db, "stage_stats") {
		t.Error("stage_stats not restored")
	}
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
