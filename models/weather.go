package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// WeatherSource is a user-owned measuring device, e.g. a Kestrel meter.
// Make/model/serial come from the CSV export header.
type WeatherSource struct {
	bun.BaseModel `bun:"table:weather_source,alias:ws"`

	ID         int       `bun:"id,pk,autoincrement" json:"id"`
	UserID     uuid.UUID `bun:"user_id,notnull,type:uuid" json:"userID"`
	Name       string    `bun:"name,notnull" json:"name"`
	DeviceName *string   `bun:"device_name" json:"deviceName,omitempty"`
	Model      *string   `bun:"model" json:"model,omitempty"`
	Serial     string    `bun:"serial,notnull" json:"serial"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}

// WeatherMeasurement is one timestamped reading from a weather source.
// Field units follow the Kestrel export: Fahrenheit, inHg, mph, feet.
type WeatherMeasurement struct {
	bun.BaseModel `bun:"table:weather_measurements,alias:wm"`

	ID                     int       `bun:"id,pk,autoincrement" json:"id"`
	SourceID               int       `bun:"weather_source_id,notnull" json:"sourceID"`
	MeasurementTimestamp   time.Time `bun:"measurement_timestamp,notnull" json:"measurementTimestamp"`
	TemperatureF           *float64  `bun:"temperature_f" json:"temperatureF,omitempty"`
	RelativeHumidityPct    *float64  `bun:"relative_humidity_pct" json:"relativeHumidityPct,omitempty"`
	BarometricPressureInHg *float64  `bun:"barometric_pressure_inhg" json:"barometricPressureInHg,omitempty"`
	WindSpeedMph           *float64  `bun:"wind_speed_mph" json:"windSpeedMph,omitempty"`
	DirectionDeg           *float64  `bun:"direction_deg" json:"directionDeg,omitempty"`
	DensityAltitudeFt      *float64  `bun:"density_altitude_ft" json:"densityAltitudeFt,omitempty"`
	StationPressureInHg    *float64  `bun:"station_pressure_inhg" json:"stationPressureInHg,omitempty"`
	AltitudeFt             *float64  `bun:"altitude_ft" json:"altitudeFt,omitempty"`
	DewPointF              *float64  `bun:"dew_point_f" json:"dewPointF,omitempty"`
	HeatIndexF             *float64  `bun:"heat_index_f" json:"heatIndexF,omitempty"`
	WindChillF             *float64  `bun:"wind_chill_f" json:"windChillF,omitempty"`

	Source *WeatherSource `bun:"rel:belongs-to,join:weather_source_id=id" json:"-"`
}
