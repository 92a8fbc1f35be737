package kv

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"liyu1981.xyz/safetrack-monitor-service/pkg/db"
	"liyu1981.xyz/safetrack-monitor-service/pkg/models"
)

// SQLStore keeps entries in the kv_entries table of a gorm database.
type SQLStore struct {
	db *db.DB
}

func NewSQLStore(database *db.DB) *SQLStore {
	return &SQLStore{db: database}
}

func (s *SQLStore) Get(key string) (string, bool, error) {
	var entry models.KVEntry
	err := s.db.Conn.First(&entry, "entry_key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	return entry.Value, true, nil
}

func (s *SQLStore) Set(key, value string) error {
	entry := models.KVEntry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}

	err := s.db.Conn.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		UpdateAll: true,
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Remove(key string) error {
	if err := s.db.Conn.Delete(&models.KVEntry{}, "entry_key = ?", key).Error; err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}
