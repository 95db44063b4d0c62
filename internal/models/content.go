package models

import (
	"time"
)

const (
	ContentTypeMovie  = "movie"
	ContentTypeSeries = "series"
)

// Content is the canonical internal representation of a title. A row is
// uniquely identified by its Watchmode id; that id is the dedup key for
// the sync pipeline.
type Content struct {
	ID                uint      `gorm:"primaryKey" json:"id" example:"1"`
	WatchmodeID       int       `gorm:"uniqueIndex;not null" json:"watchmode_id" example:"3173903"`
	IMDBID            string    `gorm:"column:imdb_id;index" json:"imdb_id,omitempty" example:"tt0137523"`
	TMDBID            *int      `gorm:"column:tmdb_id" json:"tmdb_id,omitempty" example:"550"`
	Title             string    `gorm:"not null;index" json:"title" example:"Fight Club"`
	OriginalTitle     *string   `json:"original_title,omitempty"`
	Type              string    `gorm:"index;size:10" json:"type" example:"movie"`
	Year              int       `gorm:"index" json:"year" example:"1999"`
	EndYear           *int      `json:"end_year,omitempty"`
	Runtime           *int      `json:"runtime,omitempty" example:"139"`
	Description       string    `gorm:"type:text" json:"description"`
	PosterURL         string    `json:"poster_url"`
	AvgRating         *float64  `gorm:"index" json:"avg_rating,omitempty" example:"8.4"`
	CriticsRating     *float64  `json:"critics_rating,omitempty" example:"7.9"`
	UsersRating       *float64  `json:"users_rating,omitempty" example:"8.8"`
	ReleaseDate       string    `gorm:"index" json:"release_date" example:"1999-10-15"`
	SourceReleaseDate *string   `json:"source_release_date,omitempty"`
	ContentRating     string    `json:"content_rating,omitempty" example:"R"`
	LanguageCode      string    `gorm:"size:10" json:"language_code" example:"en"`
	LanguageID        *uint     `gorm:"index" json:"language_id,omitempty"`
	Language          *Language `gorm:"foreignKey:LanguageID" json:"language,omitempty"`
	Genres            []Genre   `gorm:"many2many:content_genres;" json:"genres,omitempty"`
	RawData           string    `gorm:"type:jsonb" json:"-"`
	CreatedAt         time.Time `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time `gorm:"index" json:"updated_at"`
}

func (Content) TableName() string {
	return "contents"
}
