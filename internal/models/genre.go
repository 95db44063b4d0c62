package models

import "time"

type Genre struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	WatchmodeID int       `gorm:"uniqueIndex;not null" json:"watchmode_id"`
	Name        string    `gorm:"not null;index" json:"name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Genre) TableName() string {
	return "genres"
}

type ContentGenre struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ContentID uint      `gorm:"index;not null" json:"content_id"`
	GenreID   uint      `gorm:"index;not null" json:"genre_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (ContentGenre) TableName() string {
	return "content_genres"
}
