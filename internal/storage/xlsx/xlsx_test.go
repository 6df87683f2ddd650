package xlsx

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/chrissnell/turbineclean/internal/cleaning"
	"github.com/chrissnell/turbineclean/internal/ingest"
	"github.com/chrissnell/turbineclean/internal/storage"
	"github.com/chrissnell/turbineclean/internal/table"
	"github.com/xuri/excelize/v2"
)

func TestStoreRunRoundTrip(t *testing.T) {
	base := time.Date(2023, 3, 1, 12, 0, 0, 0, time.UTC)
	tbl := table.New([]time.Time{base, base.Add(10 * time.Minute)})
	if err := tbl.SetFloat(table.WindSpeedColumn(1), []float64{1.0, 7.5}); err != nil {
		t.Fatal(err)
	}
	if err := tbl.SetFloat(table.PowerColumn(1), []float64{0.3, 0.45}); err != nil {
		t.Fatal(err)
	}
	res, err := cleaning.Clean(tbl, cleaning.DefaultParams(1, 2.0, 11.5, 22.0))
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}

	path := filepath.Join(t.TempDir(), "cleaned.xlsx")
	sink, err := New(path, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := sink.StoreRun(context.Background(), storage.NewRun("test", "memory", base, res)); err != nil {
		t.Fatalf("StoreRun: %v", err)
	}

	back, err := ingest.Load(path, ingest.Options{Sheet: DefaultSheet})
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if back.Nrow() != 2 {
		t.Fatalf("read back %d rows, expected 2", back.Nrow())
	}
	if d := back.Index[1].Sub(base.Add(10 * time.Minute)); d < -time.Second || d > time.Second {
		t.Errorf("time = %v, expected %v", back.Index[1], base.Add(10*time.Minute))
	}

	power, _ := back.Float(table.PowerColumn(1))
	if !math.IsNaN(power[0]) || power[1] != 0.45 {
		t.Errorf("power = %v, expected [NaN 0.45]", power)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := f.GetRows(stagesSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	// header plus one row per stage for the single turbine
	if len(rows) != 1+len(res.Stages) {
		t.Fatalf("stages sheet has %d rows, expected %d", len(rows), 1+len(res.Stages))
	}
	if rows[2][0] != cleaning.StageLowWindPower || rows[2][2] != "1" {
		t.Errorf("low wind power row = %v, expected one erased reading", rows[2])
	}
}

func TestNewRejectsReservedSheet(t *testing.T) {
	if _, err := New("out.xlsx", stagesSheet, nil); err == nil {
		t.Error("expected error for reserved sheet name")
	}
	if _, err := New("", "", nil); err == nil {
		t.Error("expected error for empty path")
	}
}
