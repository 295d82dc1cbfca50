package models

import (
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Rifle is a user-owned firearm configuration.
type Rifle struct {
	bun.BaseModel `bun:"table:rifles,alias:rf"`

	ID                  int       `bun:"id,pk,autoincrement" json:"id"`
	UserID              uuid.UUID `bun:"user_id,notnull,type:uuid" json:"userID"`
	Name                string    `bun:"name,notnull" json:"name"`
	BarrelTwistInPerRev *float64  `bun:"barrel_twist_in_per_rev" json:"barrelTwistInPerRev,omitempty"`
	BarrelLengthIn      *float64  `bun:"barrel_length_in" json:"barrelLengthIn,omitempty"`
	ScopeOffsetIn       *float64  `bun:"scope_offset_in" json:"scopeOffsetIn,omitempty"`
	ZeroRangeM          *float64  `bun:"zero_range_m" json:"zeroRangeM,omitempty"`
}
