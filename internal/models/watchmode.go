package models

import "encoding/json"

// RawTitle is a title record as returned by the Watchmode API. The Raw
// field keeps the untouched provider payload so rows can be re-derived
// later without spending another request.
type RawTitle struct {
	ID               int      `json:"id"`
	Title            string   `json:"title"`
	OriginalTitle    string   `json:"original_title"`
	Year             int      `json:"year"`
	EndYear          *int     `json:"end_year"`
	IMDBID           string   `json:"imdb_id"`
	TMDBID           *int     `json:"tmdb_id"`
	TMDBType         string   `json:"tmdb_type"`
	Type             string   `json:"type"`
	RuntimeMinutes   *int     `json:"runtime_minutes"`
	PlotOverview     string   `json:"plot_overview"`
	Poster           string   `json:"poster"`
	CriticScore      *float64 `json:"critic_score"` // 0-100 scale
	UserRating       *float64 `json:"user_rating"`  // 0-10 scale
	GenreIDs         []int    `json:"genre_ids"`
	GenreNames       []string `json:"genre_names"`
	OriginalLanguage string   `json:"original_language"`
	USRating         string   `json:"us_rating"`
	ReleaseDate      string   `json:"release_date"`

	Raw json.RawMessage `json:"-"`
}

// RawRelease is a title that became available on a platform on a date.
type RawRelease struct {
	RawTitle
	SourceID          int    `json:"source_id"`
	SourceName        string `json:"source_name"`
	SourceReleaseDate string `json:"source_release_date"`
	IsOriginal        int    `json:"is_original"`
}

// WatchmodeTitlesPage is one page of the list-titles endpoint. Titles are
// kept as raw JSON so each element's payload can be retained verbatim.
type WatchmodeTitlesPage struct {
	Titles       []RawTitle
	Page         int
	TotalPages   int
	TotalResults int
}

type WatchmodeListTitlesResponse struct {
	Titles       []json.RawMessage `json:"titles"`
	Page         int               `json:"page"`
	TotalPages   int               `json:"total_pages"`
	TotalResults int               `json:"total_results"`
}

type WatchmodeSearchResponse struct {
	TitleResults []json.RawMessage `json:"title_results"`
}

type WatchmodeReleasesResponse struct {
	Releases []json.RawMessage `json:"releases"`
}
