package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DopeSession is the denormalized aggregate of one shooting session:
// a chronograph string joined to cartridge, bullet, rifle and range,
// plus median weather over the session's time window. Display columns
// are flattened in at creation time so the row stands on its own even
// if the referenced catalog rows later change.
type DopeSession struct {
	bun.BaseModel `bun:"table:dope_sessions,alias:ds"`

	ID              int       `bun:"id,pk,autoincrement" json:"id"`
	UserID          uuid.UUID `bun:"user_id,notnull,type:uuid" json:"userID"`
	SessionName     string    `bun:"session_name,notnull" json:"sessionName"`
	ChronoSessionID int       `bun:"chrono_session_id,notnull" json:"chronoSessionID"`
	CartridgeID     int       `bun:"cartridge_id,notnull" json:"cartridgeID"`
	RifleID         int       `bun:"rifle_id,notnull" json:"rifleID"`
	RangeID         *int      `bun:"range_id" json:"rangeID,omitempty"`
	WeatherSourceID *int      `bun:"weather_source_id" json:"weatherSourceID,omitempty"`
	DistanceM       *float64  `bun:"distance_m" json:"distanceM,omitempty"`
	Notes           *string   `bun:"notes" json:"notes,omitempty"`

	// Flattened display columns copied from the referenced rows.
	CartridgeMake  string  `bun:"cartridge_make,notnull" json:"cartridgeMake"`
	CartridgeModel string  `bun:"cartridge_model,notnull" json:"cartridgeModel"`
	CartridgeType  string  `bun:"cartridge_type,notnull" json:"cartridgeType"`
	BulletMake     string  `bun:"bullet_make,notnull" json:"bulletMake"`
	BulletModel    string  `bun:"bullet_model,notnull" json:"bulletModel"`
	BulletWeightGr float64 `bun:"bullet_weight_gr,notnull" json:"bulletWeightGr"`
	RifleName      string  `bun:"rifle_name,notnull" json:"rifleName"`
	RangeName      *string `bun:"range_name" json:"rangeName,omitempty"`

	// Median weather over [first shot - buffer, last shot + buffer].
	MedianTemperatureF *float64 `bun:"median_temperature_f" json:"medianTemperatureF,omitempty"`
	MedianHumidityPct  *float64 `bun:"median_humidity_pct" json:"medianHumidityPct,omitempty"`
	MedianPressureInHg *float64 `bun:"median_pressure_inhg" json:"medianPressureInHg,omitempty"`
	MedianWindSpeedMph *float64 `bun:"median_wind_speed_mph" json:"medianWindSpeedMph,omitempty"`

	StartTime time.Time `bun:"start_time,notnull" json:"startTime"`
	EndTime   time.Time `bun:"end_time,notnull" json:"endTime"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}

// DopeMeasurement is one shot inside a DOPE session: the chronograph
// reading copied at session creation and enriched with the weather row
// nearest in time. Weather fields are nil when no reading fell inside
// the session window.
type DopeMeasurement struct {
	bun.BaseModel `bun:"table:dope_measurements,alias:dm"`

	ID            int       `bun:"id,pk,autoincrement" json:"id"`
	DopeSessionID int       `bun:"dope_session_id,notnull" json:"dopeSessionID"`
	ShotNumber    int       `bun:"shot_number,notnull" json:"shotNumber"`
	SpeedFps      float64   `bun:"speed_fps,notnull" json:"speedFps"`
	KEFtLb        *float64  `bun:"ke_ft_lb" json:"keFtLb,omitempty"`
	PowerFactor   *float64  `bun:"power_factor" json:"powerFactor,omitempty"`
	ShotTime      time.Time `bun:"shot_time,notnull" json:"shotTime"`
	CleanBore     *bool     `bun:"clean_bore" json:"cleanBore,omitempty"`
	ColdBore      *bool     `bun:"cold_bore" json:"coldBore,omitempty"`
	Notes         *string   `bun:"notes" json:"notes,omitempty"`

	WeatherMeasurementID   *int     `bun:"weather_measurement_id" json:"weatherMeasurementID,omitempty"`
	TemperatureF           *float64 `bun:"temperature_f" json:"temperatureF,omitempty"`
	RelativeHumidityPct    *float64 `bun:"relative_humidity_pct" json:"relativeHumidityPct,omitempty"`
	BarometricPressureInHg *float64 `bun:"barometric_pressure_inhg" json:"barometricPressureInHg,omitempty"`
	WindSpeedMph           *float64 `bun:"wind_speed_mph" json:"windSpeedMph,omitempty"`

	Session *DopeSession `bun:"rel:belongs-to,join:dope_session_id=id" json:"-"`
}
