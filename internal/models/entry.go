package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Entry is one logged take
type Entry struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Production string    `gorm:"not null" json:"production"`
	Roll       string    `gorm:"not null" json:"roll"`
	Scene      string    `gorm:"not null" json:"scene"`
	Take       int       `gorm:"not null" json:"take"`
	Director   string    `gorm:"not null" json:"director"`
	DOP        string    `gorm:"column:dop;not null" json:"dop"`
	Date       time.Time `gorm:"index;not null" json:"date"`
	Timecode   string    `gorm:"not null" json:"timecode"`
	Note       string    `json:"note,omitempty"`
}

// BeforeCreate assigns a UUID when the caller did not set one
func (e *Entry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
