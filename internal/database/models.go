package database

import (
	"time"

	"github.com/google/uuid"
)

// CleaningRun is one invocation of the cleaner
type CleaningRun struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Farm           string    `gorm:"column:farm"`
	Source         string    `gorm:"column:source"`
	StartedAt      time.Time `gorm:"column:started_at"`
	FinishedAt     time.Time `gorm:"column:finished_at"`
	Turbines       int       `gorm:"column:turbines"`
	CutIn          float64   `gorm:"column:cut_in"`
	Rated          float64   `gorm:"column:rated"`
	CutOut         float64   `gorm:"column:cut_out"`
	KUp            float64   `gorm:"column:k_up"`
	KLow           float64   `gorm:"column:k_low"`
	Anomalous      bool      `gorm:"column:anomalous"`
	BinWidth       float64   `gorm:"column:bin_width"`
	RowCount       int       `gorm:"column:row_count"`
	DegenerateBins int       `gorm:"column:degenerate_bins"`
}

// TableName specifies the table name for CleaningRun
func (CleaningRun) TableName() string {
	return "cleaning_runs"
}

// TurbineReading is one cleaned turbine reading. Nil pointers are missing
// values.
type TurbineReading struct {
	Time      time.Time `gorm:"column:time"`
	RunID     uuid.UUID `gorm:"column:run_id;type:uuid"`
	Turbine   int       `gorm:"column:turbine"`
	WindSpeed *float64  `gorm:"column:wind_speed"`
	Power     *float64  `gorm:"column:power"`
	Flag      int       `gorm:"column:flag"`
}

// TableName specifies the table name for TurbineReading
func (TurbineReading) TableName() string {
	return "turbine_readings_clean"
}

// FarmAggregate holds the farm-wide aggregates at one timestamp
type FarmAggregate struct {
	Time         time.Time `gorm:"column:time"`
	RunID        uuid.UUID `gorm:"column:run_id;type:uuid"`
	WindSpeedAvg *float64  `gorm:"column:wind_speed_avg"`
	WindSpeedStd *float64  `gorm:"column:wind_speed_std"`
	PowerAvg     *float64  `gorm:"column:power_avg"`
}

// TableName specifies the table name for FarmAggregate
func (FarmAggregate) TableName() string {
	return "farm_aggregates_clean"
}
