package timescaledb

import (
	"math"
	"testing"
	"time"

	"github.com/chrissnell/turbineclean/internal/cleaning"
	"github.com/chrissnell/turbineclean/internal/storage"
	"github.com/chrissnell/turbineclean/internal/table"
)

func TestToRecords(t *testing.T) {
	base := time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC)
	tbl := table.New([]time.Time{base, base.Add(10 * time.Minute)})
	if err := tbl.SetFloat(table.WindSpeedColumn(1), []float64{1.0, 9.0}); err != nil {
		t.Fatal(err)
	}
	if err := tbl.SetFloat(table.PowerColumn(1), []float64{0.2, 0.6}); err != nil {
		t.Fatal(err)
	}
	if err := tbl.SetFloat(table.WindSpeedColumn(2), []float64{math.NaN(), 8.0}); err != nil {
		t.Fatal(err)
	}
	if err := tbl.SetFloat(table.PowerColumn(2), []float64{0.1, 0.5}); err != nil {
		t.Fatal(err)
	}

	params := cleaning.DefaultParams(2, 2.0, 11.5, 22.0)
	params.Anomalous = true
	res, err := cleaning.Clean(tbl, params)
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	run := storage.NewRun("coast", "scada.csv", base, res)

	runRecord, readings, aggregates := toRecords(run)

	if runRecord.ID != run.ID || runRecord.Turbines != 2 || !runRecord.Anomalous || runRecord.RowCount != 2 {
		t.Errorf("unexpected run record: %+v", runRecord)
	}
	if runRecord.TableName() != "cleaning_runs" {
		t.Errorf("run table = %s", runRecord.TableName())
	}

	if len(readings) != 4 || len(aggregates) != 2 {
		t.Fatalf("got %d readings and %d aggregates, expected 4 and 2", len(readings), len(aggregates))
	}

	// turbine 1 below cut-in loses its power reading
	if readings[0].Power != nil {
		t.Errorf("erased power stored as %v, expected NULL", *readings[0].Power)
	}
	if readings[1].WindSpeed != nil || readings[1].Turbine != 2 {
		t.Errorf("missing wind speed on turbine 2 = %+v", readings[1])
	}
	if readings[2].Power == nil || *readings[2].Power != 0.6 {
		t.Errorf("kept power = %v, expected 0.6", readings[2].Power)
	}
	for _, r := range readings {
		if r.RunID != run.ID {
			t.Fatalf("reading tagged with run %s, expected %s", r.RunID, run.ID)
		}
	}

	// aggregates need every turbine present
	if aggregates[0].WindSpeedAvg != nil {
		t.Errorf("first row wind speed avg = %v, expected NULL", *aggregates[0].WindSpeedAvg)
	}
	if aggregates[1].PowerAvg == nil || math.Abs(*aggregates[1].PowerAvg-0.55) > 1e-12 {
		t.Errorf("second row power avg = %v, expected 0.55", aggregates[1].PowerAvg)
	}
}
