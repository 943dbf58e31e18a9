package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Upload kinds.
const (
	UploadBios = "bios"
	UploadRom  = "rom"
)

// UploadRecord is the history entry written for every stored upload.
type UploadRecord struct {
	ID        string `gorm:"primaryKey;size:36"`
	Kind      string `gorm:"size:8;index"`
	System    string `gorm:"size:64;index"`
	FileName  string `gorm:"size:255;not null"`
	Size      int64
	MD5       string `gorm:"size:32"`
	Valid     bool
	CreatedAt time.Time `gorm:"index"`
}

// BeforeCreate assigns a random ID when none is set.
func (u *UploadRecord) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
