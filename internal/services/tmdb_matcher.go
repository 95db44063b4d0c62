package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"streamfinder-backend/internal/config"
	"streamfinder-backend/internal/models"

	"github.com/sirupsen/logrus"
)

// PosterMatcher is the best-effort artwork lookup against TMDB. It never
// returns an error: any failure, including network trouble or malformed
// responses, degrades to "no poster found".
type PosterMatcher interface {
	FindPosterURL(ctx context.Context, title *models.RawTitle) (string, bool)
}

type tmdbMatcher struct {
	cfg        *config.TMDBConfig
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewTMDBMatcher(cfg *config.TMDBConfig, logger *logrus.Logger) (PosterMatcher, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("tmdb api key is required")
	}

	return &tmdbMatcher{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		logger: logger,
	}, nil
}

type tmdbCandidate struct {
	Title        string `json:"title"`
	Name         string `json:"name"`
	ReleaseDate  string `json:"release_date"`
	FirstAirDate string `json:"first_air_date"`
	PosterPath   string `json:"poster_path"`
}

type tmdbFindResponse struct {
	MovieResults []tmdbCandidate `json:"movie_results"`
	TVResults    []tmdbCandidate `json:"tv_results"`
}

type tmdbSearchResponse struct {
	Results []tmdbCandidate `json:"results"`
}

// FindPosterURL tries a direct IMDB-id lookup first, then falls back to a
// fuzzy name search. Fuzzy acceptance requires the candidate year within
// one year of the title's and a case-insensitive substring match in
// either direction between the names.
func (m *tmdbMatcher) FindPosterURL(ctx context.Context, title *models.RawTitle) (string, bool) {
	if title.IMDBID != "" {
		if posterURL, ok := m.findByImdbID(ctx, title); ok {
			return posterURL, true
		}
	}
	return m.findByNameAndYear(ctx, title)
}

func (m *tmdbMatcher) findByImdbID(ctx context.Context, title *models.RawTitle) (string, bool) {
	endpoint := fmt.Sprintf("/find/%s", url.PathEscape(title.IMDBID))
	params := url.Values{}
	params.Set("external_source", "imdb_id")

	var resp tmdbFindResponse
	if err := m.doGet(ctx, endpoint, params, &resp); err != nil {
		m.logger.WithError(err).WithField("imdb_id", title.IMDBID).Debug("TMDB find lookup failed")
		return "", false
	}

	results := resp.MovieResults
	if title.Type == "tv_series" {
		results = resp.TVResults
	}
	if len(results) == 0 || results[0].PosterPath == "" {
		return "", false
	}
	return m.imageURL(results[0].PosterPath), true
}

func (m *tmdbMatcher) findByNameAndYear(ctx context.Context, title *models.RawTitle) (string, bool) {
	endpoint := "/search/movie"
	if title.Type == "tv_series" {
		endpoint = "/search/tv"
	}
	params := url.Values{}
	params.Set("query", title.Title)

	var resp tmdbSearchResponse
	if err := m.doGet(ctx, endpoint, params, &resp); err != nil {
		m.logger.WithError(err).WithField("title", title.Title).Debug("TMDB search lookup failed")
		return "", false
	}

	// First acceptable candidate wins, in TMDB's response order; no
	// scoring and no preference for exact-name matches over substring
	// matches.
	for _, candidate := range resp.Results {
		if candidate.PosterPath == "" {
			continue
		}
		if !yearWithinTolerance(candidateYear(candidate), title.Year) {
			continue
		}
		if !namesMatch(candidateName(candidate), title.Title) {
			continue
		}
		return m.imageURL(candidate.PosterPath), true
	}
	return "", false
}

func (m *tmdbMatcher) doGet(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	params.Set("api_key", m.cfg.APIKey)
	reqURL := fmt.Sprintf("%s%s?%s", m.cfg.BaseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch from tmdb: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tmdb api returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode tmdb response: %w", err)
	}
	return nil
}

func (m *tmdbMatcher) imageURL(posterPath string) string {
	return m.cfg.ImageBaseURL + "/w342" + posterPath
}

func candidateName(c tmdbCandidate) string {
	if c.Title != "" {
		return c.Title
	}
	return c.Name
}

func candidateYear(c tmdbCandidate) int {
	date := c.ReleaseDate
	if date == "" {
		date = c.FirstAirDate
	}
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

func yearWithinTolerance(candidateYear, titleYear int) bool {
	if candidateYear == 0 || titleYear == 0 {
		return false
	}
	diff := candidateYear - titleYear
	return diff >= -1 && diff <= 1
}

func namesMatch(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}
