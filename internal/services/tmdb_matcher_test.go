package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"streamfinder-backend/internal/config"
	"streamfinder-backend/internal/models"

	"github.com/stretchr/testify/require"
)

func newTestMatcher(t *testing.T, serverURL string) PosterMatcher {
	t.Helper()
	matcher, err := NewTMDBMatcher(&config.TMDBConfig{
		APIKey:       "test-key",
		BaseURL:      serverURL,
		ImageBaseURL: "https://image.tmdb.org/t/p",
		HTTPTimeout:  5 * time.Second,
	}, testLogger())
	require.NoError(t, err)
	return matcher
}

func TestNewTMDBMatcher_RequiresAPIKey(t *testing.T) {
	_, err := NewTMDBMatcher(&config.TMDBConfig{}, testLogger())
	require.Error(t, err)
}

func TestTMDBMatcher_ImdbLookupFirst(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/find/tt0137523", r.URL.Path)
		require.Equal(t, "imdb_id", r.URL.Query().Get("external_source"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"movie_results": [{"title": "Fight Club", "release_date": "1999-10-15", "poster_path": "/abc.jpg"}], "tv_results": []}`))
	}))
	defer server.Close()

	matcher := newTestMatcher(t, server.URL)

	posterURL, ok := matcher.FindPosterURL(context.Background(), &models.RawTitle{
		IMDBID: "tt0137523",
		Title:  "Fight Club",
		Year:   1999,
		Type:   "movie",
	})
	require.True(t, ok)
	require.Equal(t, "https://image.tmdb.org/t/p/w342/abc.jpg", posterURL)
}

func TestTMDBMatcher_SeriesUsesTVResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"movie_results": [], "tv_results": [{"name": "Breaking Bad", "first_air_date": "2008-01-20", "poster_path": "/bb.jpg"}]}`))
	}))
	defer server.Close()

	matcher := newTestMatcher(t, server.URL)

	posterURL, ok := matcher.FindPosterURL(context.Background(), &models.RawTitle{
		IMDBID: "tt0903747",
		Title:  "Breaking Bad",
		Year:   2008,
		Type:   "tv_series",
	})
	require.True(t, ok)
	require.Equal(t, "https://image.tmdb.org/t/p/w342/bb.jpg", posterURL)
}

func TestTMDBMatcher_FuzzyYearTolerance(t *testing.T) {
	tests := []struct {
		name          string
		candidateDate string
		want          bool
	}{
		{"exact year", "1985-05-01", true},
		{"one year earlier", "1984-12-20", true},
		{"one year later", "1986-01-03", true},
		{"two years off rejected", "1983-05-01", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/search/movie", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"results": [{"title": "brazil", "release_date": "` + tt.candidateDate + `", "poster_path": "/br.jpg"}]}`))
			}))
			defer server.Close()

			matcher := newTestMatcher(t, server.URL)

			// No IMDB id, so the fuzzy name search is the only path.
			posterURL, ok := matcher.FindPosterURL(context.Background(), &models.RawTitle{
				Title: "Brazil",
				Year:  1985,
				Type:  "movie",
			})
			require.Equal(t, tt.want, ok)
			if tt.want {
				require.Equal(t, "https://image.tmdb.org/t/p/w342/br.jpg", posterURL)
			}
		})
	}
}

func TestTMDBMatcher_FuzzyNameMatching(t *testing.T) {
	tests := []struct {
		name          string
		candidateName string
		titleName     string
		want          bool
	}{
		{"exact case-insensitive", "HEAT", "heat", true},
		{"candidate contains title", "Heat: Director's Cut", "Heat", true},
		{"title contains candidate", "Heat", "Heat: Director's Cut", true},
		{"unrelated names", "Speed", "Heat", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"results": [{"title": "` + tt.candidateName + `", "release_date": "1995-12-15", "poster_path": "/h.jpg"}]}`))
			}))
			defer server.Close()

			matcher := newTestMatcher(t, server.URL)

			_, ok := matcher.FindPosterURL(context.Background(), &models.RawTitle{
				Title: tt.titleName,
				Year:  1995,
				Type:  "movie",
			})
			require.Equal(t, tt.want, ok)
		})
	}
}

func TestTMDBMatcher_FirstAcceptableCandidateWins(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results": [
			{"title": "Heat Wave", "release_date": "1995-03-01", "poster_path": "/first.jpg"},
			{"title": "Heat", "release_date": "1995-12-15", "poster_path": "/exact.jpg"}
		]}`))
	}))
	defer server.Close()

	matcher := newTestMatcher(t, server.URL)

	posterURL, ok := matcher.FindPosterURL(context.Background(), &models.RawTitle{
		Title: "Heat",
		Year:  1995,
		Type:  "movie",
	})
	require.True(t, ok)
	// Response order decides; the later exact match does not outrank it.
	require.Equal(t, "https://image.tmdb.org/t/p/w342/first.jpg", posterURL)
}

func TestTMDBMatcher_ImdbMissThenSearchFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/find/tt0000001" {
			_, _ = w.Write([]byte(`{"movie_results": [], "tv_results": []}`))
			return
		}
		require.Equal(t, "/search/movie", r.URL.Path)
		_, _ = w.Write([]byte(`{"results": [{"title": "Heat", "release_date": "1995-12-15", "poster_path": "/h.jpg"}]}`))
	}))
	defer server.Close()

	matcher := newTestMatcher(t, server.URL)

	posterURL, ok := matcher.FindPosterURL(context.Background(), &models.RawTitle{
		IMDBID: "tt0000001",
		Title:  "Heat",
		Year:   1995,
		Type:   "movie",
	})
	require.True(t, ok)
	require.Equal(t, "https://image.tmdb.org/t/p/w342/h.jpg", posterURL)
}

func TestTMDBMatcher_ErrorsDegradeToNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	matcher := newTestMatcher(t, server.URL)

	posterURL, ok := matcher.FindPosterURL(context.Background(), &models.RawTitle{
		IMDBID: "tt0137523",
		Title:  "Fight Club",
		Year:   1999,
		Type:   "movie",
	})
	require.False(t, ok)
	require.Empty(t, posterURL)
}
