package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/balkashynov/slate/internal/models"
)

var (
	// ErrEntryNotFound is returned when no entry has the requested ID
	ErrEntryNotFound = errors.New("entry not found")
	// ErrAmbiguousID is returned when an ID prefix matches several entries
	ErrAmbiguousID = errors.New("entry id prefix is ambiguous")
)

// editableColumns are the entry columns that Update may change
var editableColumns = map[string]bool{
	"production": true,
	"roll":       true,
	"scene":      true,
	"take":       true,
	"director":   true,
	"dop":        true,
	"date":       true,
	"timecode":   true,
	"note":       true,
}

// EntryLog stores logged takes
type EntryLog struct {
	db *gorm.DB
}

// NewEntryLog returns an EntryLog backed by db
func NewEntryLog(db *gorm.DB) *EntryLog {
	return &EntryLog{db: db}
}

// recent orders entries newest first: by date, then by creation order
func (l *EntryLog) recent(ctx context.Context) *gorm.DB {
	return l.db.WithContext(ctx).Order("date DESC").Order("created_at DESC")
}

// Create inserts a new entry
func (l *EntryLog) Create(ctx context.Context, entry *models.Entry) error {
	if err := l.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("create entry: %w", err)
	}
	return nil
}

// Latest returns the most recent entry, or nil when the log is empty
func (l *EntryLog) Latest(ctx context.Context) (*models.Entry, error) {
	var entry models.Entry
	err := l.recent(ctx).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // An empty log is not an error
	}
	if err != nil {
		return nil, fmt.Errorf("latest entry: %w", err)
	}
	return &entry, nil
}

// List returns up to limit entries, newest first. A limit <= 0 returns all
func (l *EntryLog) List(ctx context.Context, limit int) ([]models.Entry, error) {
	var entries []models.Entry
	q := l.recent(ctx)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

// Get retrieves an entry by ID
func (l *EntryLog) Get(ctx context.Context, id string) (*models.Entry, error) {
	var entry models.Entry
	err := l.db.WithContext(ctx).First(&entry, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return &entry, nil
}

// Find retrieves an entry by its full ID or a unique prefix of it
func (l *EntryLog) Find(ctx context.Context, prefix string) (*models.Entry, error) {
	prefix = strings.NewReplacer("%", "", "_", "").Replace(strings.ToLower(strings.TrimSpace(prefix)))
	if prefix == "" {
		return nil, fmt.Errorf("%w: empty id", ErrEntryNotFound)
	}

	var matches []models.Entry
	err := l.db.WithContext(ctx).
		Where("id LIKE ?", prefix+"%").
		Limit(2).
		Find(&matches).Error
	if err != nil {
		return nil, fmt.Errorf("find entry: %w", err)
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, prefix)
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousID, prefix)
	}
}

// Update applies a partial update keyed by column name and returns the
// updated entry
func (l *EntryLog) Update(ctx context.Context, id string, changes map[string]any) (*models.Entry, error) {
	for column := range changes {
		if !editableColumns[column] {
			return nil, fmt.Errorf("update entry: column %q is not editable", column)
		}
	}
	if len(changes) > 0 {
		res := l.db.WithContext(ctx).Model(&models.Entry{}).Where("id = ?", id).Updates(changes)
		if res.Error != nil {
			return nil, fmt.Errorf("update entry: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
		}
	}
	return l.Get(ctx, id)
}

// Delete removes an entry
func (l *EntryLog) Delete(ctx context.Context, id string) error {
	res := l.db.WithContext(ctx).Delete(&models.Entry{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete entry: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	return nil
}
