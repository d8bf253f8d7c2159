package treestate

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"inspection-portal/internal/hierarchy"
	"inspection-portal/internal/model"
)

// Store persists per-device tree expansion flags.
type Store interface {
	// Flags loads every expansion flag recorded for a device, keyed by
	// the derived node key.
	Flags(ctx context.Context, deviceID string) (map[string]bool, error)
	// Set records one node's expansion flag.
	Set(ctx context.Context, deviceID string, kind hierarchy.Kind, id string, expanded bool) error
}

// gormStore implements Store on the portal-local database.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Flags(ctx context.Context, deviceID string) (map[string]bool, error) {
	var rows []model.TreeState
	if err := s.db.WithContext(ctx).Where("device_id = ?", deviceID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load tree state for device %s: %w", deviceID, err)
	}
	flags := make(map[string]bool, len(rows))
	for _, r := range rows {
		flags[r.Key] = r.Expanded
	}
	return flags, nil
}

func (s *gormStore) Set(ctx context.Context, deviceID string, kind hierarchy.Kind, id string, expanded bool) error {
	row := model.TreeState{
		DeviceID: deviceID,
		Key:      hierarchy.ExpandKey(kind, id),
		Expanded: expanded,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "device_id"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"expanded", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save tree state %s for device %s: %w", row.Key, deviceID, err)
	}
	return nil
}

// ExpandedFunc adapts a loaded flag map to the renderer's callback.
// Unknown nodes default to collapsed.
func ExpandedFunc(flags map[string]bool) hierarchy.ExpandedFunc {
	return func(kind hierarchy.Kind, id string) bool {
		return flags[hierarchy.ExpandKey(kind, id)]
	}
}
