package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"streamfinder-backend/internal/config"
	"streamfinder-backend/internal/models"

	"github.com/sirupsen/logrus"
)

// ProviderError is a non-2xx response from the primary provider. It does
// not abort a sync run; the orchestrator records it against the title
// being processed.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("watchmode api returned status %d: %s", e.Status, e.Message)
}

// TitleSearchOptions filters the paginated list-titles endpoint.
type TitleSearchOptions struct {
	Page          int
	SourceIDs     []int
	Types         []string
	MinUserRating float64
	SortBy        string
}

// ReleaseSearchOptions filters the recent-releases endpoint.
type ReleaseSearchOptions struct {
	SourceIDs  []int
	ChangeType string
	Types      []string
	DaysBack   int
}

// CatalogClient is the typed wrapper over the Watchmode API. Every method
// reserves quota before touching the network and propagates
// ErrQuotaExceeded unchanged. No retries; transient failures are the
// caller's concern.
type CatalogClient interface {
	SearchTitles(ctx context.Context, opts TitleSearchOptions) (*models.WatchmodeTitlesPage, error)
	GetTitleDetails(ctx context.Context, id int) (*models.RawTitle, error)
	GetRecentReleases(ctx context.Context, opts ReleaseSearchOptions) ([]models.RawRelease, error)
	SearchByImdbID(ctx context.Context, imdbID string) ([]models.RawTitle, error)
	SearchByName(ctx context.Context, name, titleType string) ([]models.RawTitle, error)
}

type watchmodeClient struct {
	cfg        *config.WatchmodeConfig
	quota      QuotaTracker
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewWatchmodeClient(cfg *config.WatchmodeConfig, quota QuotaTracker, logger *logrus.Logger) (CatalogClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("watchmode api key is required")
	}

	return &watchmodeClient{
		cfg:   cfg,
		quota: quota,
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		logger: logger,
	}, nil
}

func (c *watchmodeClient) SearchTitles(ctx context.Context, opts TitleSearchOptions) (*models.WatchmodeTitlesPage, error) {
	params := url.Values{}
	if opts.Page > 0 {
		params.Set("page", strconv.Itoa(opts.Page))
	}
	if len(opts.SourceIDs) > 0 {
		params.Set("source_ids", joinInts(opts.SourceIDs))
	}
	if len(opts.Types) > 0 {
		params.Set("types", strings.Join(opts.Types, ","))
	}
	if opts.MinUserRating > 0 {
		params.Set("user_rating_low", strconv.FormatFloat(opts.MinUserRating, 'f', 1, 64))
	}
	sortBy := opts.SortBy
	if sortBy == "" {
		sortBy = "popularity_desc"
	}
	params.Set("sort_by", sortBy)

	body, err := c.doGet(ctx, "/list-titles/", params)
	if err != nil {
		return nil, err
	}

	var resp models.WatchmodeListTitlesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode list-titles response: %w", err)
	}

	page := &models.WatchmodeTitlesPage{
		Page:         resp.Page,
		TotalPages:   resp.TotalPages,
		TotalResults: resp.TotalResults,
	}
	titles, err := decodeRawTitles(resp.Titles)
	if err != nil {
		return nil, err
	}
	page.Titles = titles
	return page, nil
}

func (c *watchmodeClient) GetTitleDetails(ctx context.Context, id int) (*models.RawTitle, error) {
	body, err := c.doGet(ctx, fmt.Sprintf("/title/%d/details/", id), url.Values{})
	if err != nil {
		return nil, err
	}

	var title models.RawTitle
	if err := json.Unmarshal(body, &title); err != nil {
		return nil, fmt.Errorf("failed to decode title details: %w", err)
	}
	title.Raw = json.RawMessage(body)
	return &title, nil
}

func (c *watchmodeClient) GetRecentReleases(ctx context.Context, opts ReleaseSearchOptions) ([]models.RawRelease, error) {
	params := url.Values{}
	if len(opts.SourceIDs) > 0 {
		params.Set("source_ids", joinInts(opts.SourceIDs))
	}
	if opts.ChangeType != "" {
		params.Set("change_type", opts.ChangeType)
	}
	if len(opts.Types) > 0 {
		params.Set("types", strings.Join(opts.Types, ","))
	}
	if opts.DaysBack > 0 {
		params.Set("days_back", strconv.Itoa(opts.DaysBack))
	}

	body, err := c.doGet(ctx, "/releases/", params)
	if err != nil {
		return nil, err
	}

	var resp models.WatchmodeReleasesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode releases response: %w", err)
	}

	releases := make([]models.RawRelease, 0, len(resp.Releases))
	for _, raw := range resp.Releases {
		var release models.RawRelease
		if err := json.Unmarshal(raw, &release); err != nil {
			return nil, fmt.Errorf("failed to decode release entry: %w", err)
		}
		release.Raw = raw
		releases = append(releases, release)
	}
	return releases, nil
}

func (c *watchmodeClient) SearchByImdbID(ctx context.Context, imdbID string) ([]models.RawTitle, error) {
	return c.search(ctx, "imdb_id", imdbID, "")
}

func (c *watchmodeClient) SearchByName(ctx context.Context, name, titleType string) ([]models.RawTitle, error) {
	return c.search(ctx, "name", name, titleType)
}

func (c *watchmodeClient) search(ctx context.Context, field, value, titleType string) ([]models.RawTitle, error) {
	params := url.Values{}
	params.Set("search_field", field)
	params.Set("search_value", value)
	if titleType != "" {
		params.Set("types", titleType)
	}

	body, err := c.doGet(ctx, "/search/", params)
	if err != nil {
		return nil, err
	}

	var resp models.WatchmodeSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	return decodeRawTitles(resp.TitleResults)
}

// doGet reserves one quota unit, then performs the request. The raw body
// is returned so callers can retain provider payloads verbatim.
func (c *watchmodeClient) doGet(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if err := c.quota.Reserve(ctx, 1); err != nil {
		return nil, err
	}

	params.Set("apiKey", c.cfg.APIKey)
	reqURL := fmt.Sprintf("%s%s?%s", c.cfg.BaseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from watchmode: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read watchmode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.WithFields(logrus.Fields{
			"endpoint": endpoint,
			"status":   resp.StatusCode,
		}).Error("Watchmode request failed")
		return nil, &ProviderError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	return body, nil
}

func decodeRawTitles(raws []json.RawMessage) ([]models.RawTitle, error) {
	titles := make([]models.RawTitle, 0, len(raws))
	for _, raw := range raws {
		var title models.RawTitle
		if err := json.Unmarshal(raw, &title); err != nil {
			return nil, fmt.Errorf("failed to decode title entry: %w", err)
		}
		title.Raw = raw
		titles = append(titles, title)
	}
	return titles, nil
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
