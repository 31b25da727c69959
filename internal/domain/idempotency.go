// Package domain – Idempotency.
//
// The only state this service persists locally: a record of a previously
// applied write-back mutation, keyed by (user_id, tab, key). Clients retrying
// a status action with the same Idempotency-Key get the stored outcome
// replayed instead of a second sheet mutation.
package domain

import "time"

// Idempotency records a completed write-back so retries can be deduplicated.
type Idempotency struct {
	ID        string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	UserID    string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_tab_key,priority:1"`
	Tab       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_tab_key,priority:2"`
	Key       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_tab_key,priority:3"`
	RowID     string    `gorm:"type:TEXT NOT NULL"`
	Status    int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
