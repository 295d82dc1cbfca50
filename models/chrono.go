package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ChronoSession is one Garmin Xero chronograph string upload.
// TabName is the sheet title from the export, normally the cartridge type.
type ChronoSession struct {
	bun.BaseModel `bun:"table:chrono_sessions,alias:cs"`

	ID            int       `bun:"id,pk,autoincrement" json:"id"`
	UserID        uuid.UUID `bun:"user_id,notnull,type:uuid" json:"userID"`
	TabName       string    `bun:"tab_name,notnull" json:"tabName"`
	SessionName   string    `bun:"session_name,notnull" json:"sessionName"`
	DatetimeLocal time.Time `bun:"datetime_local,notnull" json:"datetimeLocal"`
	FileName      *string   `bun:"file_name" json:"fileName,omitempty"`
	ShotCount     int       `bun:"shot_count,notnull,default:0" json:"shotCount"`
	AvgSpeedFps   *float64  `bun:"avg_speed_fps" json:"avgSpeedFps,omitempty"`
	StdDevFps     *float64  `bun:"std_dev_fps" json:"stdDevFps,omitempty"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}

// ChronoMeasurement is a single shot within a chronograph session.
type ChronoMeasurement struct {
	bun.BaseModel `bun:"table:chrono_measurements,alias:cm"`

	ID            int       `bun:"id,pk,autoincrement" json:"id"`
	SessionID     int       `bun:"session_id,notnull" json:"sessionID"`
	ShotNumber    int       `bun:"shot_number,notnull" json:"shotNumber"`
	SpeedFps      float64   `bun:"speed_fps,notnull" json:"speedFps"`
	DeltaAvgFps   *float64  `bun:"delta_avg_fps" json:"deltaAvgFps,omitempty"`
	KEFtLb        *float64  `bun:"ke_ft_lb" json:"keFtLb,omitempty"`
	PowerFactor   *float64  `bun:"power_factor" json:"powerFactor,omitempty"`
	DatetimeLocal time.Time `bun:"datetime_local,notnull" json:"datetimeLocal"`
	CleanBore     *bool     `bun:"clean_bore" json:"cleanBore,omitempty"`
	ColdBore      *bool     `bun:"cold_bore" json:"coldBore,omitempty"`
	Notes         *string   `bun:"notes" json:"notes,omitempty"`

	Session *ChronoSession `bun:"rel:belongs-to,join:session_id=id" json:"-"`
}
