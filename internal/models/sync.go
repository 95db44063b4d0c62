package models

import "time"

// Per-title outcome statuses recorded during a sync run.
const (
	OutcomeAdded           = "added"
	OutcomeSkippedExisting = "skipped_existing"
	OutcomeFilteredOut     = "filtered_out"
	OutcomeError           = "error"
)

// Sync run statuses recorded on the audit log.
const (
	SyncStatusSuccess = "success"
	SyncStatusPartial = "partial"
	SyncStatusAborted = "aborted"
)

// SyncOptions parametrizes one sync run. Zero values fall back to the
// configured defaults.
type SyncOptions struct {
	TitlesToSync int     `json:"titles_to_sync" example:"10"`
	SourceIDs    []int   `json:"source_ids" example:"203,157"`
	MinRating    float64 `json:"min_rating" example:"6.5"`
	ContentType  string  `json:"content_type,omitempty" example:"movie"`
}

// TitleOutcome is one entry in the ordered per-title log of a run.
type TitleOutcome struct {
	WatchmodeID int    `json:"watchmode_id"`
	Title       string `json:"title"`
	Status      string `json:"status"`
	Reason      string `json:"reason,omitempty"`
}

// SearchStats aggregates what the search phase saw.
type SearchStats struct {
	TitlesFound       int `json:"titles_found"`
	PagesSearched     int `json:"pages_searched"`
	DuplicatesSkipped int `json:"duplicates_skipped"`
	FilteredOut       int `json:"filtered_out"`
}

// SyncResult is the immutable report of one sync run.
type SyncResult struct {
	RunID           string         `json:"run_id"`
	Added           int            `json:"added"`
	Unchanged       int            `json:"unchanged"`
	Removed         int            `json:"removed"`
	RequestsUsed    int            `json:"requests_used"`
	TitlesProcessed []TitleOutcome `json:"titles_processed"`
	SearchStats     SearchStats    `json:"search_stats"`
	Errors          []string       `json:"errors,omitempty"`
	Summary         string         `json:"summary"`
}

// SyncLog is the persisted audit row for a sync run.
type SyncLog struct {
	ID             uint      `gorm:"primaryKey" json:"id" example:"1"`
	RunID          string    `gorm:"index;size:36" json:"run_id"`
	SyncType       string    `gorm:"index" json:"sync_type" example:"manual"`
	Status         string    `gorm:"index" json:"status" example:"success"`
	TitlesAdded    int       `json:"titles_added" example:"8"`
	TitlesSkipped  int       `json:"titles_skipped" example:"2"`
	TitlesFiltered int       `json:"titles_filtered" example:"1"`
	TitlesFailed   int       `json:"titles_failed" example:"0"`
	RequestsUsed   int       `json:"requests_used" example:"19"`
	ErrorMessage   string    `gorm:"type:text" json:"error_message,omitempty"`
	SyncedAt       time.Time `gorm:"index" json:"synced_at"`
	CreatedAt      time.Time `json:"created_at"`
}

func (SyncLog) TableName() string {
	return "sync_logs"
}
