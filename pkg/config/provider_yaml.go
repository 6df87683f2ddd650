package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// Defaults applied when a key is absent from the YAML file
const (
	DefaultK              = 1.5
	DefaultBinWidth       = 0.05
	DefaultShutdownMargin = 2.0
	DefaultLogMaxSizeMB   = 100
	DefaultLogMaxBackups  = 5
	DefaultLogMaxAgeDays  = 30
	DefaultBatchSize      = 1000
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	config, err := parseYAML(cfgFile)
	if err != nil {
		return nil, err
	}

	y.config = config
	return config, nil
}

func parseYAML(data []byte) (*ConfigData, error) {
	// Load into temporary struct with YAML tags
	var yamlConfig struct {
		Farm     FarmYAML     `yaml:"farm"`
		Cleaning CleaningYAML `yaml:"cleaning,omitempty"`
		Input    InputYAML    `yaml:"input"`
		Storage  StorageYAML  `yaml:"storage,omitempty"`
		Logging  LoggingYAML  `yaml:"logging,omitempty"`
	}

	if err := yaml.UnmarshalStrict(data, &yamlConfig); err != nil {
		return nil, err
	}

	// Convert to our internal format
	config := &ConfigData{
		Farm: FarmData{
			Name:     yamlConfig.Farm.Name,
			Turbines: yamlConfig.Farm.Turbines,
			CutIn:    yamlConfig.Farm.CutIn,
			Rated:    yamlConfig.Farm.Rated,
			CutOut:   yamlConfig.Farm.CutOut,
		},
		Cleaning: CleaningData{
			KUp:            floatOr(yamlConfig.Cleaning.KUp, DefaultK),
			KLow:           floatOr(yamlConfig.Cleaning.KLow, DefaultK),
			Anomalous:      yamlConfig.Cleaning.Anomalous,
			BinWidth:       floatOr(yamlConfig.Cleaning.BinWidth, DefaultBinWidth),
			ShutdownMargin: floatOr(yamlConfig.Cleaning.ShutdownMargin, DefaultShutdownMargin),
			Workers:        yamlConfig.Cleaning.Workers,
		},
		Input: InputData{
			Path:       yamlConfig.Input.Path,
			Format:     yamlConfig.Input.Format,
			Sheet:      yamlConfig.Input.Sheet,
			TimeColumn: yamlConfig.Input.TimeColumn,
			TimeLayout: yamlConfig.Input.TimeLayout,
			Timezone:   yamlConfig.Input.Timezone,
		},
		Logging: LoggingData{
			File:       yamlConfig.Logging.File,
			MaxSizeMB:  intOr(yamlConfig.Logging.MaxSizeMB, DefaultLogMaxSizeMB),
			MaxBackups: intOr(yamlConfig.Logging.MaxBackups, DefaultLogMaxBackups),
			MaxAgeDays: intOr(yamlConfig.Logging.MaxAgeDays, DefaultLogMaxAgeDays),
		},
	}

	// Convert storage
	if yamlConfig.Storage.CSV != nil {
		config.Storage.CSV = &CSVData{
			Path: yamlConfig.Storage.CSV.Path,
		}
	}
	if yamlConfig.Storage.XLSX != nil {
		config.Storage.XLSX = &XLSXData{
			Path:  yamlConfig.Storage.XLSX.Path,
			Sheet: yamlConfig.Storage.XLSX.Sheet,
		}
	}
	if yamlConfig.Storage.SQLite != nil {
		config.Storage.SQLite = &SQLiteData{
			Path: yamlConfig.Storage.SQLite.Path,
		}
	}
	if yamlConfig.Storage.TimescaleDB != nil {
		config.Storage.TimescaleDB = &TimescaleDBData{
			ConnectionString: yamlConfig.Storage.TimescaleDB.ConnectionString,
			BatchSize:        intOr(yamlConfig.Storage.TimescaleDB.BatchSize, DefaultBatchSize),
		}
	}

	return config, nil
}

// GetFarm returns the farm description
func (y *YAMLProvider) GetFarm() (*FarmData, error) {
	if y.config == nil {
		_, err := y.LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	return &y.config.Farm, nil
}

// GetStorageConfig returns storage configuration
func (y *YAMLProvider) GetStorageConfig() (*StorageData, error) {
	if y.config == nil {
		_, err := y.LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	return &y.config.Storage, nil
}

// IsReadOnly returns true since YAML files are read-only through this interface
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

// YAML-specific structs. Pointer fields distinguish an absent key from an
// explicit zero.
type FarmYAML struct {
	Name     string  `yaml:"name,omitempty"`
	Turbines int     `yaml:"turbines"`
	CutIn    float64 `yaml:"cut-in"`
	Rated    float64 `yaml:"rated"`
	CutOut   float64 `yaml:"cut-out"`
}

type CleaningYAML struct {
	KUp            *float64 `yaml:"k-up,omitempty"`
	KLow           *float64 `yaml:"k-low,omitempty"`
	Anomalous      bool     `yaml:"anomalous,omitempty"`
	BinWidth       *float64 `yaml:"bin-width,omitempty"`
	ShutdownMargin *float64 `yaml:"shutdown-margin,omitempty"`
	Workers        int      `yaml:"workers,omitempty"`
}

type InputYAML struct {
	Path       string `yaml:"path"`
	Format     string `yaml:"format,omitempty"`
	Sheet      string `yaml:"sheet,omitempty"`
	TimeColumn string `yaml:"time-column,omitempty"`
	TimeLayout string `yaml:"time-layout,omitempty"`
	Timezone   string `yaml:"timezone,omitempty"`
}

type StorageYAML struct {
	CSV         *CSVYAML         `yaml:"csv,omitempty"`
	XLSX        *XLSXYAML        `yaml:"xlsx,omitempty"`
	SQLite      *SQLiteYAML      `yaml:"sqlite,omitempty"`
	TimescaleDB *TimescaleDBYAML `yaml:"timescaledb,omitempty"`
}

type CSVYAML struct {
	Path string `yaml:"path"`
}

type XLSXYAML struct {
	Path  string `yaml:"path"`
	Sheet string `yaml:"sheet,omitempty"`
}

type SQLiteYAML struct {
	Path string `yaml:"path"`
}

type TimescaleDBYAML struct {
	ConnectionString string `yaml:"connection-string"`
	BatchSize        *int   `yaml:"batch-size,omitempty"`
}

type LoggingYAML struct {
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  *int   `yaml:"max-size-mb,omitempty"`
	MaxBackups *int   `yaml:"max-backups,omitempty"`
	MaxAgeDays *int   `yaml:"max-age-days,omitempty"`
}
