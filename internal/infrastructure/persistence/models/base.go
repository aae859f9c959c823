package models

import (
	"time"

	"github.com/google/uuid"
)

// BaseModel provides common persistence fields for uuid-keyed bookkeeping tables.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// CatalogModel provides common persistence fields for catalog tables.
// Catalog records are keyed by a generated numeric identifier.
type CatalogModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
