package model

import "time"

// TreeState is one persisted expansion flag of the tree navigator,
// keyed by device and the derived node key
// (treeview_expanded_{kind}_{id}). Rows are advisory UI state only and
// are never pruned.
type TreeState struct {
	DeviceID  string `gorm:"primaryKey;size:64"`
	Key       string `gorm:"primaryKey;size:191"`
	Expanded  bool   `gorm:"not null"`
	UpdatedAt time.Time
}
