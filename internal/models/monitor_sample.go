package models

import "time"

// MonitorSample is one periodic health snapshot of the appliance.
type MonitorSample struct {
	ID             uint      `gorm:"primaryKey;autoIncrement"`
	TakenAt        time.Time `gorm:"index;not null"`
	CPUTempC       float64
	Load1          float64
	Load5          float64
	Load15         float64
	MemTotalKB     uint64
	MemAvailableKB uint64
	DiskTotalBytes uint64
	DiskFreeBytes  uint64
	UptimeSeconds  float64
}
