package handlers

type ContentRequest struct {
	WatchmodeID   int      `json:"watchmode_id"`
	IMDBID        string   `json:"imdb_id"`
	TMDBID        *int     `json:"tmdb_id"`
	Title         string   `json:"title"`
	OriginalTitle *string  `json:"original_title"`
	Type          string   `json:"type"`
	Year          int      `json:"year"`
	EndYear       *int     `json:"end_year"`
	Runtime       *int     `json:"runtime"`
	Description   string   `json:"description"`
	PosterURL     string   `json:"poster_url"`
	UsersRating   *float64 `json:"users_rating"`
	CriticsRating *float64 `json:"critics_rating"`
	ReleaseDate   string   `json:"release_date"`
	ContentRating string   `json:"content_rating"`
	LanguageCode  string   `json:"language_code"`
}

type SyncRunRequest struct {
	TitlesToSync int     `json:"titles_to_sync"`
	SourceIDs    []int   `json:"source_ids"`
	MinRating    float64 `json:"min_rating"`
	ContentType  string  `json:"content_type"`
}

type ReleaseSyncRequest struct {
	DaysBack int `json:"days_back"`
}
