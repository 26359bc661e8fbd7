package db

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/balkashynov/slate/internal/models"
)

// PreferenceStore is a key/value store for local user settings
type PreferenceStore struct {
	db *gorm.DB
}

// NewPreferenceStore returns a PreferenceStore backed by db
func NewPreferenceStore(db *gorm.DB) *PreferenceStore {
	return &PreferenceStore{db: db}
}

// Get returns the stored value and whether the key exists
func (s *PreferenceStore) Get(key string) (string, bool, error) {
	var pref models.Preference
	err := s.db.First(&pref, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read preference %s: %w", key, err)
	}
	return pref.Value, true, nil
}

// Set inserts or replaces the value for key
func (s *PreferenceStore) Set(key, value string) error {
	pref := models.Preference{Key: key, Value: value}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&pref).Error
	if err != nil {
		return fmt.Errorf("write preference %s: %w", key, err)
	}
	return nil
}

// All returns every stored preference ordered by key
func (s *PreferenceStore) All() ([]models.Preference, error) {
	var prefs []models.Preference
	if err := s.db.Order("key ASC").Find(&prefs).Error; err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}
	return prefs, nil
}
