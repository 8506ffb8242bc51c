package model

import "time"

// RunRecord is the persisted trace of one finished pipeline run. Rate limit
// state deliberately stays out of here: the limiter is in-memory only.
type RunRecord struct {
	ID         string `gorm:"primaryKey"`
	Pipeline   string `gorm:"index"`
	ClientKey  string
	Status     string
	Error      string
	DurationMs int64
	CreatedAt  time.Time
}
