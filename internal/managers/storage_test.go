package managers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/chrissnell/turbineclean/internal/cleaning"
	"github.com/chrissnell/turbineclean/internal/storage"
	"github.com/chrissnell/turbineclean/internal/table"
	"github.com/chrissnell/turbineclean/pkg/config"
	"go.uber.org/zap"
)

type fakeSink struct {
	name   string
	err    error
	stored int
	closed bool
}

func (f *fakeSink) Name() string { return f.name }

func (f *fakeSink) StoreRun(ctx context.Context, run *storage.Run) error {
	if f.err != nil {
		return f.err
	}
	f.stored++
	return nil
}

func (f *fakeSink) Close() error {
	f.closed = true
	return nil
}

func smallRun(t *testing.T) *storage.Run {
	t.Helper()
	base := time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC)
	tbl := table.New([]time.Time{base})
	if err := tbl.SetFloat(table.WindSpeedColumn(1), []float64{6}); err != nil {
		t.Fatal(err)
	}
	if err := tbl.SetFloat(table.PowerColumn(1), []float64{0.3}); err != nil {
		t.Fatal(err)
	}
	res, err := cleaning.Clean(tbl, cleaning.DefaultParams(1, 2.0, 11.5, 22.0))
	if err != nil {
		t.Fatal(err)
	}
	return storage.NewRun("", "memory", base, res)
}

func TestNewStorageManagerFileSinks(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cfg := &config.StorageData{
		CSV:    &config.CSVData{Path: filepath.Join(dir, "clean.csv")},
		XLSX:   &config.XLSXData{Path: filepath.Join(dir, "clean.xlsx")},
		SQLite: &config.SQLiteData{Path: filepath.Join(dir, "clean.db")},
	}

	sm, err := NewStorageManager(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("NewStorageManager: %v", err)
	}
	defer sm.Close()

	if len(sm.Sinks) != 3 {
		t.Fatalf("got %d sinks, expected 3", len(sm.Sinks))
	}

	if err := sm.StoreRun(ctx, smallRun(t)); err != nil {
		t.Fatalf("StoreRun: %v", err)
	}
	for _, name := range []string{"clean.csv", "clean.xlsx", "clean.db"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
}

func TestStoreRunCollectsFailures(t *testing.T) {
	good := &fakeSink{name: "good"}
	bad := &fakeSink{name: "bad", err: errors.New("disk full")}
	sm := &StorageManager{Sinks: []storage.Sink{bad, good}, logger: zap.NewNop().Sugar()}

	err := sm.StoreRun(context.Background(), smallRun(t))
	if err == nil || !strings.Contains(err.Error(), "bad sink: disk full") {
		t.Fatalf("StoreRun error = %v, expected the bad sink failure", err)
	}
	if good.stored != 1 {
		t.Error("a failing sink must not keep the others from storing")
	}

	if err := sm.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !good.closed || !bad.closed {
		t.Error("Close should close every sink")
	}
}

func TestStoreRunWithoutSinks(t *testing.T) {
	sm, err := NewStorageManager(context.Background(), &config.StorageData{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := sm.StoreRun(context.Background(), smallRun(t)); err != nil {
		t.Errorf("StoreRun without sinks: %v", err)
	}
}
