package models

import (
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Cartridge is a loaded round referencing a bullet from the catalog.
// OwnerID nil means a global admin-owned row visible to everyone;
// otherwise the row belongs to (and is only editable by) that user.
type Cartridge struct {
	bun.BaseModel `bun:"table:cartridges,alias:ca"`

	ID            int        `bun:"id,pk,autoincrement" json:"id"`
	OwnerID       *uuid.UUID `bun:"owner_id,type:uuid" json:"ownerID,omitempty"`
	Make          string     `bun:"make,notnull" json:"make"`
	Model         string     `bun:"model,notnull" json:"model"`
	CartridgeType string     `bun:"cartridge_type,notnull" json:"cartridgeType"`
	BulletID      int        `bun:"bullet_id,notnull" json:"bulletID"`
	DataSourceURL *string    `bun:"data_source_url" json:"dataSourceURL,omitempty"`

	Bullet *Bullet `bun:"rel:belongs-to,join:bullet_id=id" json:"-"`
}
