package config

import (
	"fmt"
	"time"
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetFarm() (*FarmData, error)
	GetStorageConfig() (*StorageData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Farm     FarmData     `json:"farm"`
	Cleaning CleaningData `json:"cleaning"`
	Input    InputData    `json:"input"`
	Storage  StorageData  `json:"storage,omitempty"`
	Logging  LoggingData  `json:"logging,omitempty"`
}

// FarmData describes the turbines of one farm. All turbines share a model.
type FarmData struct {
	Name     string  `json:"name,omitempty"`
	Turbines int     `json:"turbines"`
	CutIn    float64 `json:"cut_in"`
	Rated    float64 `json:"rated"`
	CutOut   float64 `json:"cut_out"`
}

// CleaningData holds the tunables of the cleaning rules
type CleaningData struct {
	KUp            float64 `json:"k_up"`
	KLow           float64 `json:"k_low"`
	Anomalous      bool    `json:"anomalous"`
	BinWidth       float64 `json:"bin_width"`
	ShutdownMargin float64 `json:"shutdown_margin"`
	Workers        int     `json:"workers,omitempty"`
}

// InputData points at the SCADA export to clean
type InputData struct {
	Path       string `json:"path"`
	Format     string `json:"format,omitempty"`
	Sheet      string `json:"sheet,omitempty"`
	TimeColumn string `json:"time_column,omitempty"`
	TimeLayout string `json:"time_layout,omitempty"`
	Timezone   string `json:"timezone,omitempty"`
}

// StorageData holds the configuration for the output sinks
type StorageData struct {
	CSV         *CSVData         `json:"csv,omitempty"`
	XLSX        *XLSXData        `json:"xlsx,omitempty"`
	SQLite      *SQLiteData      `json:"sqlite,omitempty"`
	TimescaleDB *TimescaleDBData `json:"timescaledb,omitempty"`
}

type CSVData struct {
	Path string `json:"path"`
}

type XLSXData struct {
	Path  string `json:"path"`
	Sheet string `json:"sheet,omitempty"`
}

type SQLiteData struct {
	Path string `json:"path"`
}

type TimescaleDBData struct {
	ConnectionString string `json:"connection_string"`
	BatchSize        int    `json:"batch_size,omitempty"`
}

// LoggingData configures the optional rotated log file
type LoggingData struct {
	File       string `json:"file,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty"`
	MaxAgeDays int    `json:"max_age_days,omitempty"`
}

// Location resolves the input timezone. An empty timezone means UTC.
func (i InputData) Location() (*time.Location, error) {
	if i.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(i.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid input timezone %q: %w", i.Timezone, err)
	}
	return loc, nil
}

// Validate checks the parts of the configuration that are not covered by the
// cleaning parameter validation
func (c *ConfigData) Validate() error {
	if c.Farm.Turbines <= 0 {
		return fmt.Errorf("farm: turbines must be positive, got %d", c.Farm.Turbines)
	}
	if c.Input.Path == "" {
		return fmt.Errorf("input: path is required")
	}
	switch c.Input.Format {
	case "", "csv", "xlsx":
	default:
		return fmt.Errorf("input: unsupported format %q", c.Input.Format)
	}
	if _, err := c.Input.Location(); err != nil {
		return err
	}
	if c.Cleaning.Workers < 0 {
		return fmt.Errorf("cleaning: workers must not be negative")
	}

	if c.Storage.CSV != nil && c.Storage.CSV.Path == "" {
		return fmt.Errorf("storage: csv path is required")
	}
	if c.Storage.XLSX != nil && c.Storage.XLSX.Path == "" {
		return fmt.Errorf("storage: xlsx path is required")
	}
	if c.Storage.SQLite != nil && c.Storage.SQLite.Path == "" {
		return fmt.Errorf("storage: sqlite path is required")
	}
	if c.Storage.TimescaleDB != nil && c.Storage.TimescaleDB.ConnectionString == "" {
		return fmt.Errorf("storage: timescaledb connection-string is required")
	}
	return nil
}
