package models

import "time"

// APIUsage is the per-calendar-month counter of Watchmode requests. Rows
// are created lazily on the first request of a month, only ever
// incremented, and kept forever for audit.
type APIUsage struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Month        string    `gorm:"uniqueIndex;size:7;not null" json:"month" example:"2026-08"`
	RequestCount int       `gorm:"not null;default:0" json:"request_count" example:"412"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (APIUsage) TableName() string {
	return "api_usages"
}

// MonthKey formats a point in time as the usage row key, e.g. "2026-08".
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}
