package db

import (
	"fmt"
	"time"

	"github.com/zulandar/retromgr/internal/models"
	"gorm.io/gorm"
)

// RecordUpload stores an upload history entry.
func RecordUpload(db *gorm.DB, rec *models.UploadRecord) error {
	if err := db.Create(rec).Error; err != nil {
		return fmt.Errorf("db: record upload %s: %w", rec.FileName, err)
	}
	return nil
}

// RecentUploads returns the latest uploads, newest first.
func RecentUploads(db *gorm.DB, limit int) ([]models.UploadRecord, error) {
	var out []models.UploadRecord
	if err := db.Order("created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("db: recent uploads: %w", err)
	}
	return out, nil
}

// RecordSample stores a monitoring snapshot.
func RecordSample(db *gorm.DB, s *models.MonitorSample) error {
	if err := db.Create(s).Error; err != nil {
		return fmt.Errorf("db: record sample: %w", err)
	}
	return nil
}

// SamplesSince returns the snapshots taken at or after since, oldest first.
func SamplesSince(db *gorm.DB, since time.Time) ([]models.MonitorSample, error) {
	var out []models.MonitorSample
	if err := db.Where("taken_at >= ?", since).Order("taken_at ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("db: samples since %s: %w", since.Format(time.RFC3339), err)
	}
	return out, nil
}

// LatestSample returns the most recent snapshot, or nil when none exist.
func LatestSample(db *gorm.DB) (*models.MonitorSample, error) {
	var out []models.MonitorSample
	if err := db.Order("taken_at DESC").Limit(1).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("db: latest sample: %w", err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

// PruneSamples deletes snapshots older than before and returns how many
// rows were removed.
func PruneSamples(db *gorm.DB, before time.Time) (int64, error) {
	res := db.Where("taken_at < ?", before).Delete(&models.MonitorSample{})
	if res.Error != nil {
		return 0, fmt.Errorf("db: prune samples: %w", res.Error)
	}
	return res.RowsAffected, nil
}
