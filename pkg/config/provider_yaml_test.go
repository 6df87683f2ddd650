package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const fullConfig = `
farm:
  name: ridge
  turbines: 6
  cut-in: 3.0
  rated: 12.5
  cut-out: 25.0
cleaning:
  k-up: 2.0
  k-low: 0
  anomalous: true
  workers: 4
input:
  path: /data/ridge.xlsx
  sheet: scada
  time-column: Timestamp
  timezone: Europe/Paris
storage:
  csv:
    path: /data/out/ridge.csv
  sqlite:
    path: /data/out/ridge.db
  timescaledb:
    connection-string: postgres://localhost/wind
logging:
  file: /var/log/turbineclean.log
  max-backups: 2
`

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(fullConfig), 0644); err != nil {
		t.Fatal(err)
	}

	provider := NewYAMLProvider(path)
	defer provider.Close()

	cfg, err := provider.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Farm.Turbines != 6 || cfg.Farm.CutIn != 3.0 || cfg.Farm.Rated != 12.5 || cfg.Farm.CutOut != 25.0 {
		t.Errorf("unexpected farm: %+v", cfg.Farm)
	}

	tests := []struct {
		name     string
		got      float64
		expected float64
	}{
		{"k-up", cfg.Cleaning.KUp, 2.0},
		{"explicit zero k-low", cfg.Cleaning.KLow, 0},
		{"default bin width", cfg.Cleaning.BinWidth, DefaultBinWidth},
		{"default shutdown margin", cfg.Cleaning.ShutdownMargin, DefaultShutdownMargin},
	}
	for _, tt := range tests {
		if tt.got != tt.expected {
			t.Errorf("%s = %v, expected %v", tt.name, tt.got, tt.expected)
		}
	}

	if !cfg.Cleaning.Anomalous || cfg.Cleaning.Workers != 4 {
		t.Errorf("unexpected cleaning section: %+v", cfg.Cleaning)
	}
	if cfg.Input.Sheet != "scada" || cfg.Input.TimeColumn != "Timestamp" {
		t.Errorf("unexpected input section: %+v", cfg.Input)
	}

	if cfg.Storage.CSV == nil || cfg.Storage.SQLite == nil || cfg.Storage.TimescaleDB == nil {
		t.Fatalf("expected csv, sqlite and timescaledb sinks: %+v", cfg.Storage)
	}
	if cfg.Storage.XLSX != nil {
		t.Error("xlsx sink should be absent")
	}
	if cfg.Storage.TimescaleDB.BatchSize != DefaultBatchSize {
		t.Errorf("batch size = %d, expected %d", cfg.Storage.TimescaleDB.BatchSize, DefaultBatchSize)
	}

	if cfg.Logging.MaxBackups != 2 || cfg.Logging.MaxSizeMB != DefaultLogMaxSizeMB {
		t.Errorf("unexpected logging section: %+v", cfg.Logging)
	}

	farm, err := provider.GetFarm()
	if err != nil || farm.Name != "ridge" {
		t.Errorf("GetFarm() = %+v, %v", farm, err)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestParseYAMLDefaults(t *testing.T) {
	cfg, err := parseYAML([]byte(`
farm:
  turbines: 1
  cut-in: 2
  rated: 11.5
  cut-out: 22
input:
  path: farm.csv
`))
	if err != nil {
		t.Fatalf("parseYAML: %v", err)
	}

	if cfg.Cleaning.KUp != DefaultK || cfg.Cleaning.KLow != DefaultK {
		t.Errorf("k factors = %v/%v, expected %v", cfg.Cleaning.KUp, cfg.Cleaning.KLow, DefaultK)
	}
	if cfg.Cleaning.Anomalous {
		t.Error("anomalous should default to false")
	}

	loc, err := cfg.Input.Location()
	if err != nil || loc.String() != "UTC" {
		t.Errorf("Location() = %v, %v", loc, err)
	}
}

func TestParseYAMLUnknownKey(t *testing.T) {
	_, err := parseYAML([]byte("farm:\n  turbine-count: 3\n"))
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *ConfigData {
		return &ConfigData{
			Farm:  FarmData{Turbines: 2, CutIn: 2, Rated: 11.5, CutOut: 22},
			Input: InputData{Path: "farm.csv"},
		}
	}

	tests := []struct {
		name   string
		mutate func(c *ConfigData)
		errSub string
	}{
		{"no turbines", func(c *ConfigData) { c.Farm.Turbines = 0 }, "turbines"},
		{"no input", func(c *ConfigData) { c.Input.Path = "" }, "path"},
		{"bad format", func(c *ConfigData) { c.Input.Format = "parquet" }, "format"},
		{"bad timezone", func(c *ConfigData) { c.Input.Timezone = "Mars/Olympus" }, "timezone"},
		{"negative workers", func(c *ConfigData) { c.Cleaning.Workers = -1 }, "workers"},
		{"csv without path", func(c *ConfigData) { c.Storage.CSV = &CSVData{} }, "csv"},
		{"timescaledb without dsn", func(c *ConfigData) { c.Storage.TimescaleDB = &TimescaleDBData{} }, "connection-string"},
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("baseline config invalid: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.errSub) {
				t.Errorf("error %q does not mention %q", err, tt.errSub)
			}
		})
	}
}
