package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Range submission review statuses.
const (
	RangeStatusPending  = "pending"
	RangeStatusApproved = "approved"
	RangeStatusDenied   = "denied"
)

// RangeSubmission is a user-submitted shooting range awaiting admin review.
// Geometry columns (distance, azimuth, elevation angle) are computed
// server-side from the firing and target positions on every write.
type RangeSubmission struct {
	bun.BaseModel `bun:"table:ranges_submissions,alias:rs"`

	ID                int       `bun:"id,pk,autoincrement" json:"id"`
	UserID            uuid.UUID `bun:"user_id,notnull,type:uuid" json:"userID"`
	RangeName         string    `bun:"range_name,notnull" json:"rangeName"`
	RangeDescription  *string   `bun:"range_description" json:"rangeDescription,omitempty"`
	StartLat          float64   `bun:"start_lat,notnull" json:"startLat"`
	StartLon          float64   `bun:"start_lon,notnull" json:"startLon"`
	StartAltitudeM    *float64  `bun:"start_altitude_m" json:"startAltitudeM,omitempty"`
	EndLat            float64   `bun:"end_lat,notnull" json:"endLat"`
	EndLon            float64   `bun:"end_lon,notnull" json:"endLon"`
	EndAltitudeM      *float64  `bun:"end_altitude_m" json:"endAltitudeM,omitempty"`
	DisplayName       *string   `bun:"display_name" json:"displayName,omitempty"`
	DistanceM         *float64  `bun:"distance_m" json:"distanceM,omitempty"`
	Distance3DM       *float64  `bun:"distance_3d_m" json:"distance3dM,omitempty"`
	AzimuthDeg        *float64  `bun:"azimuth_deg" json:"azimuthDeg,omitempty"`
	ElevationAngleDeg *float64  `bun:"elevation_angle_deg" json:"elevationAngleDeg,omitempty"`
	Status            string    `bun:"status,notnull,default:'pending'" json:"status"`
	ReviewReason      *string   `bun:"review_reason" json:"reviewReason,omitempty"`
	SubmittedAt       time.Time `bun:"submitted_at,notnull,default:current_timestamp" json:"submittedAt"`
}

// Range is an approved, globally readable shooting range. Rows are only
// created by admin approval of a submission.
type Range struct {
	bun.BaseModel `bun:"table:ranges,alias:rg"`

	ID                int       `bun:"id,pk,autoincrement" json:"id"`
	SubmissionID      *int      `bun:"submission_id" json:"submissionID,omitempty"`
	RangeName         string    `bun:"range_name,notnull,unique" json:"rangeName"`
	RangeDescription  *string   `bun:"range_description" json:"rangeDescription,omitempty"`
	StartLat          float64   `bun:"start_lat,notnull" json:"startLat"`
	StartLon          float64   `bun:"start_lon,notnull" json:"startLon"`
	StartAltitudeM    *float64  `bun:"start_altitude_m" json:"startAltitudeM,omitempty"`
	EndLat            float64   `bun:"end_lat,notnull" json:"endLat"`
	EndLon            float64   `bun:"end_lon,notnull" json:"endLon"`
	EndAltitudeM      *float64  `bun:"end_altitude_m" json:"endAltitudeM,omitempty"`
	DisplayName       *string   `bun:"display_name" json:"displayName,omitempty"`
	DistanceM         *float64  `bun:"distance_m" json:"distanceM,omitempty"`
	Distance3DM       *float64  `bun:"distance_3d_m" json:"distance3dM,omitempty"`
	AzimuthDeg        *float64  `bun:"azimuth_deg" json:"azimuthDeg,omitempty"`
	ElevationAngleDeg *float64  `bun:"elevation_angle_deg" json:"elevationAngleDeg,omitempty"`
	ApprovedAt        time.Time `bun:"approved_at,notnull,default:current_timestamp" json:"approvedAt"`
}
