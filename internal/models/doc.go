// Package models defines the GORM models persisted by retromgr.
package models
