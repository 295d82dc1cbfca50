package models

import "github.com/uptrace/bun"

// Bullet is an admin-curated projectile spec, globally readable.
type Bullet struct {
	bun.BaseModel `bun:"table:bullets,alias:b"`

	ID               int      `bun:"id,pk,autoincrement" json:"id"`
	Manufacturer     string   `bun:"manufacturer,notnull" json:"manufacturer"`
	Model            string   `bun:"model,notnull" json:"model"`
	WeightGr         float64  `bun:"weight_gr,notnull" json:"weightGr"`
	DiameterGrooveIn *float64 `bun:"diameter_groove_in" json:"diameterGrooveIn,omitempty"`
	BoreDiameterIn   *float64 `bun:"bore_diameter_in" json:"boreDiameterIn,omitempty"`
	BCG1             *float64 `bun:"bc_g1" json:"bcG1,omitempty"`
	BCG7             *float64 `bun:"bc_g7" json:"bcG7,omitempty"`
	SectionalDensity *float64 `bun:"sectional_density" json:"sectionalDensity,omitempty"`
	MinReqTwistIn    *float64 `bun:"min_req_twist_in" json:"minReqTwistIn,omitempty"`
	PrefTwistIn      *float64 `bun:"pref_twist_in" json:"prefTwistIn,omitempty"`
}
