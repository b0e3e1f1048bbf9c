package model

import (
	"time"
)

// SheetRow is one row of a named sheet. Position is the 0-based row index,
// so the header row of every sheet sits at position 0.
type SheetRow struct {
	ID       uint     `gorm:"primaryKey"`
	Sheet    string   `gorm:"uniqueIndex:idx_sheet_position;not null"`
	Position int      `gorm:"uniqueIndex:idx_sheet_position;not null"`
	Cells    []string `gorm:"serializer:json"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
