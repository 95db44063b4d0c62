package services

import (
	"context"
	"fmt"
	"testing"

	"streamfinder-backend/internal/config"
	"streamfinder-backend/internal/models"

	"github.com/stretchr/testify/require"
)

// fakeContentRepo is an in-memory stand-in for the storage collaborator.
type fakeContentRepo struct {
	byWatchmodeID map[int]*models.Content
	upsertErr     map[int]error
	nextID        uint
	syncLogs      []*models.SyncLog
}

func newFakeContentRepo() *fakeContentRepo {
	return &fakeContentRepo{byWatchmodeID: map[int]*models.Content{}, upsertErr: map[int]error{}}
}

func (f *fakeContentRepo) Create(ctx context.Context, content *models.Content) error {
	f.nextID++
	content.ID = f.nextID
	f.byWatchmodeID[content.WatchmodeID] = content
	return nil
}

func (f *fakeContentRepo) Update(ctx context.Context, content *models.Content) error {
	f.byWatchmodeID[content.WatchmodeID] = content
	return nil
}

func (f *fakeContentRepo) Delete(ctx context.Context, id uint) error { return nil }

func (f *fakeContentRepo) FindByID(ctx context.Context, id uint) (*models.Content, error) {
	for _, c := range f.byWatchmodeID {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeContentRepo) FindByWatchmodeID(ctx context.Context, watchmodeID int) (*models.Content, error) {
	return f.byWatchmodeID[watchmodeID], nil
}

func (f *fakeContentRepo) FindAll(ctx context.Context, page, limit int, search, sortBy, order, contentType, decade string) ([]models.Content, int64, error) {
	return nil, 0, nil
}

func (f *fakeContentRepo) Upsert(ctx context.Context, content *models.Content) (*models.Content, error) {
	if err := f.upsertErr[content.WatchmodeID]; err != nil {
		return nil, err
	}
	if existing := f.byWatchmodeID[content.WatchmodeID]; existing != nil {
		content.ID = existing.ID
	} else {
		f.nextID++
		content.ID = f.nextID
	}
	f.byWatchmodeID[content.WatchmodeID] = content
	return content, nil
}

func (f *fakeContentRepo) CreateSyncLog(ctx context.Context, log *models.SyncLog) error {
	f.syncLogs = append(f.syncLogs, log)
	return nil
}

func (f *fakeContentRepo) GetLastSyncLog(ctx context.Context) (*models.SyncLog, error) {
	if len(f.syncLogs) == 0 {
		return nil, nil
	}
	return f.syncLogs[len(f.syncLogs)-1], nil
}

type fakeGenreRepo struct{}

func (f *fakeGenreRepo) Create(ctx context.Context, genre *models.Genre) error { return nil }
func (f *fakeGenreRepo) FindByWatchmodeID(ctx context.Context, watchmodeID int) (*models.Genre, error) {
	return nil, nil
}
func (f *fakeGenreRepo) FindOrCreate(ctx context.Context, watchmodeID int, name string) (*models.Genre, error) {
	return &models.Genre{ID: uint(watchmodeID), WatchmodeID: watchmodeID, Name: name}, nil
}
func (f *fakeGenreRepo) FindAll(ctx context.Context) ([]models.Genre, error) { return nil, nil }

type fakeLangRepo struct{}

func (f *fakeLangRepo) Create(ctx context.Context, language *models.Language) error { return nil }
func (f *fakeLangRepo) FindByCode(ctx context.Context, code string) (*models.Language, error) {
	return nil, nil
}
func (f *fakeLangRepo) FindOrCreate(ctx context.Context, code, name string) (*models.Language, error) {
	return &models.Language{ID: 1, Code: code, Name: name}, nil
}
func (f *fakeLangRepo) FindAll(ctx context.Context) ([]models.Language, error) { return nil, nil }

// fakeCatalog spends units from a shared fakeUsageRepo the same way the
// real client reserves quota, so RequestsUsed comes out of the counter.
type fakeCatalog struct {
	usage      *fakeUsageRepo
	limit      int
	pages      []models.WatchmodeTitlesPage
	details    map[int]*models.RawTitle
	detailsErr map[int]error
	releases   []models.RawRelease
}

func (f *fakeCatalog) reserve(ctx context.Context) error {
	granted, err := f.usage.IncrementIfUnderLimit(ctx, 1, f.limit)
	if err != nil {
		return err
	}
	if !granted {
		return ErrQuotaExceeded
	}
	return nil
}

func (f *fakeCatalog) SearchTitles(ctx context.Context, opts TitleSearchOptions) (*models.WatchmodeTitlesPage, error) {
	if err := f.reserve(ctx); err != nil {
		return nil, err
	}
	if opts.Page < 1 || opts.Page > len(f.pages) {
		return &models.WatchmodeTitlesPage{Page: opts.Page, TotalPages: len(f.pages)}, nil
	}
	page := f.pages[opts.Page-1]
	page.Page = opts.Page
	page.TotalPages = len(f.pages)
	return &page, nil
}

func (f *fakeCatalog) GetTitleDetails(ctx context.Context, id int) (*models.RawTitle, error) {
	if err := f.reserve(ctx); err != nil {
		return nil, err
	}
	if err := f.detailsErr[id]; err != nil {
		return nil, err
	}
	if details := f.details[id]; details != nil {
		return details, nil
	}
	return nil, fmt.Errorf("no details for title %d", id)
}

func (f *fakeCatalog) GetRecentReleases(ctx context.Context, opts ReleaseSearchOptions) ([]models.RawRelease, error) {
	if err := f.reserve(ctx); err != nil {
		return nil, err
	}
	return f.releases, nil
}

func (f *fakeCatalog) SearchByImdbID(ctx context.Context, imdbID string) ([]models.RawTitle, error) {
	if err := f.reserve(ctx); err != nil {
		return nil, err
	}
	return nil, nil
}

func (f *fakeCatalog) SearchByName(ctx context.Context, name, titleType string) ([]models.RawTitle, error) {
	if err := f.reserve(ctx); err != nil {
		return nil, err
	}
	return nil, nil
}

type fakePosters struct {
	byID map[int]string
}

func (f *fakePosters) FindPosterURL(ctx context.Context, title *models.RawTitle) (string, bool) {
	url, ok := f.byID[title.ID]
	return url, ok
}

func testConfig() *config.Config {
	return &config.Config{
		Sync: config.SyncConfig{
			TitlesPerRun:      10,
			SourceIDs:         "203,157",
			MinUserRating:     6.0,
			PosterPlaceholder: testPlaceholder,
		},
	}
}

func rawTitle(id int, title string, userRating float64) models.RawTitle {
	return models.RawTitle{
		ID:         id,
		Title:      title,
		Year:       2020,
		Type:       "movie",
		UserRating: floatPtr(userRating),
	}
}

type syncFixture struct {
	repo    *fakeContentRepo
	usage   *fakeUsageRepo
	catalog *fakeCatalog
	posters *fakePosters
	service SyncService
}

func newSyncFixture(limit int) *syncFixture {
	repo := newFakeContentRepo()
	usage := &fakeUsageRepo{}
	catalog := &fakeCatalog{
		usage:      usage,
		limit:      limit,
		details:    map[int]*models.RawTitle{},
		detailsErr: map[int]error{},
	}
	posters := &fakePosters{byID: map[int]string{}}
	service := NewSyncService(repo, &fakeGenreRepo{}, &fakeLangRepo{}, usage, catalog, posters, testConfig(), testLogger())
	return &syncFixture{repo: repo, usage: usage, catalog: catalog, posters: posters, service: service}
}

func (fx *syncFixture) addDetails(titles ...models.RawTitle) {
	for i := range titles {
		title := titles[i]
		fx.catalog.details[title.ID] = &title
	}
}

func outcomeStatuses(result *models.SyncResult) []string {
	statuses := make([]string, len(result.TitlesProcessed))
	for i, outcome := range result.TitlesProcessed {
		statuses[i] = outcome.Status
	}
	return statuses
}

func TestSyncRun_EndToEndScenario(t *testing.T) {
	fx := newSyncFixture(1000)

	existing := rawTitle(1, "Already Stored", 8.0)
	lowRated := rawTitle(2, "Low Rated", 3.0)
	newA := rawTitle(3, "New A", 8.0)
	newB := rawTitle(4, "New B", 7.5)
	newC := rawTitle(5, "New C", 9.0)

	// One page of 5 distinct titles plus an in-page repeat of New A.
	fx.catalog.pages = []models.WatchmodeTitlesPage{
		{Titles: []models.RawTitle{existing, lowRated, newA, newB, newC, newA}},
	}
	fx.addDetails(newA, newB, newC)
	fx.repo.byWatchmodeID[1] = &models.Content{ID: 99, WatchmodeID: 1, Title: "Already Stored"}
	fx.posters.byID[3] = "https://image.tmdb.org/t/p/w342/a.jpg"

	result, err := fx.service.Run(context.Background(), models.SyncOptions{
		TitlesToSync: 3,
		MinRating:    6.0,
	})
	require.NoError(t, err)

	// Budget of 3 is filled by 1 validated + 2 added; New C is never
	// reached, the low-rated title does not consume budget.
	require.Equal(t, 2, result.Added)
	require.Equal(t, 1, result.Unchanged)
	require.Equal(t, 0, result.Removed)
	require.Equal(t, []string{
		models.OutcomeSkippedExisting,
		models.OutcomeFilteredOut,
		models.OutcomeAdded,
		models.OutcomeAdded,
	}, outcomeStatuses(result))

	require.Equal(t, 5, result.SearchStats.TitlesFound)
	require.Equal(t, 1, result.SearchStats.PagesSearched)
	require.Equal(t, 1, result.SearchStats.DuplicatesSkipped)
	require.Equal(t, 1, result.SearchStats.FilteredOut)

	// 1 search page + 2 detail fetches.
	require.Equal(t, 3, result.RequestsUsed)
	require.Empty(t, result.Errors)

	// Poster override applied to New A, placeholder for New B (no
	// provider poster and no match).
	require.Equal(t, "https://image.tmdb.org/t/p/w342/a.jpg", fx.repo.byWatchmodeID[3].PosterURL)
	require.Equal(t, testPlaceholder, fx.repo.byWatchmodeID[4].PosterURL)

	// Audit log written.
	require.Len(t, fx.repo.syncLogs, 1)
	log := fx.repo.syncLogs[0]
	require.Equal(t, models.SyncStatusSuccess, log.Status)
	require.Equal(t, 2, log.TitlesAdded)
	require.Equal(t, 1, log.TitlesSkipped)
	require.Equal(t, 1, log.TitlesFiltered)
	require.Equal(t, result.RunID, log.RunID)
}

func TestSyncRun_SecondRunSkipsExisting(t *testing.T) {
	fx := newSyncFixture(1000)
	title := rawTitle(10, "Once Only", 8.0)
	fx.catalog.pages = []models.WatchmodeTitlesPage{{Titles: []models.RawTitle{title}}}
	fx.addDetails(title)

	first, err := fx.service.Run(context.Background(), models.SyncOptions{TitlesToSync: 5})
	require.NoError(t, err)
	require.Equal(t, 1, first.Added)

	second, err := fx.service.Run(context.Background(), models.SyncOptions{TitlesToSync: 5})
	require.NoError(t, err)
	require.Equal(t, 0, second.Added)
	require.Equal(t, 1, second.Unchanged)
	require.Equal(t, []string{models.OutcomeSkippedExisting}, outcomeStatuses(second))

	// Still exactly one row for the Watchmode id.
	require.Len(t, fx.repo.byWatchmodeID, 1)
}

func TestSyncRun_QuotaExhaustionAbortsWithPartialResult(t *testing.T) {
	// Two units: enough for the search page and one detail fetch.
	fx := newSyncFixture(2)
	titleA := rawTitle(20, "Fits In Budget", 8.0)
	titleB := rawTitle(21, "Starves", 8.0)
	fx.catalog.pages = []models.WatchmodeTitlesPage{{Titles: []models.RawTitle{titleA, titleB}}}
	fx.addDetails(titleA, titleB)

	result, err := fx.service.Run(context.Background(), models.SyncOptions{TitlesToSync: 5})
	require.NoError(t, err)

	require.Equal(t, 1, result.Added)
	require.Equal(t, []string{models.OutcomeAdded}, outcomeStatuses(result))
	require.Len(t, result.Errors, 1)
	require.Contains(t, result.Errors[0], "quota exhausted")
	require.Equal(t, 2, result.RequestsUsed)

	require.Len(t, fx.repo.syncLogs, 1)
	require.Equal(t, models.SyncStatusAborted, fx.repo.syncLogs[0].Status)
}

func TestSyncRun_PerTitleFailuresDoNotAbort(t *testing.T) {
	fx := newSyncFixture(1000)
	broken := rawTitle(30, "Broken Details", 8.0)
	failing := rawTitle(31, "Failing Upsert", 8.0)
	healthy := rawTitle(32, "Healthy", 8.0)
	fx.catalog.pages = []models.WatchmodeTitlesPage{{Titles: []models.RawTitle{broken, failing, healthy}}}
	fx.addDetails(failing, healthy)
	fx.catalog.detailsErr[30] = &ProviderError{Status: 503, Message: "upstream down"}
	fx.repo.upsertErr[31] = fmt.Errorf("connection reset")

	result, err := fx.service.Run(context.Background(), models.SyncOptions{TitlesToSync: 5})
	require.NoError(t, err)

	require.Equal(t, 1, result.Added)
	require.Equal(t, []string{
		models.OutcomeError,
		models.OutcomeError,
		models.OutcomeAdded,
	}, outcomeStatuses(result))
	require.Contains(t, result.TitlesProcessed[0].Reason, "upstream down")
	require.Contains(t, result.TitlesProcessed[1].Reason, "connection reset")

	require.Len(t, fx.repo.syncLogs, 1)
	require.Equal(t, models.SyncStatusPartial, fx.repo.syncLogs[0].Status)
	require.Equal(t, 2, fx.repo.syncLogs[0].TitlesFailed)
}

func TestSyncRun_PaginatesUntilEnoughCandidates(t *testing.T) {
	fx := newSyncFixture(1000)
	pageOne := []models.RawTitle{rawTitle(40, "Page One A", 8.0), rawTitle(41, "Page One B", 8.0)}
	pageTwo := []models.RawTitle{rawTitle(42, "Page Two A", 8.0)}
	fx.catalog.pages = []models.WatchmodeTitlesPage{{Titles: pageOne}, {Titles: pageTwo}}
	fx.addDetails(append(pageOne, pageTwo...)...)

	result, err := fx.service.Run(context.Background(), models.SyncOptions{TitlesToSync: 3})
	require.NoError(t, err)

	require.Equal(t, 3, result.Added)
	require.Equal(t, 2, result.SearchStats.PagesSearched)
	require.Equal(t, 3, result.SearchStats.TitlesFound)
	// 2 search pages + 3 detail fetches.
	require.Equal(t, 5, result.RequestsUsed)
}

func TestRunReleases_CarriesAvailabilityDate(t *testing.T) {
	fx := newSyncFixture(1000)
	fresh := rawTitle(50, "Fresh Release", 8.0)
	known := rawTitle(51, "Known Release", 8.0)
	fx.addDetails(fresh)
	fx.catalog.releases = []models.RawRelease{
		{RawTitle: fresh, SourceID: 203, SourceReleaseDate: "2026-08-28"},
		{RawTitle: known, SourceID: 203, SourceReleaseDate: "2026-08-29"},
	}
	fx.repo.byWatchmodeID[51] = &models.Content{ID: 7, WatchmodeID: 51, Title: "Known Release"}

	result, err := fx.service.RunReleases(context.Background(), 7)
	require.NoError(t, err)

	require.Equal(t, 1, result.Added)
	require.Equal(t, 1, result.Unchanged)
	require.Equal(t, []string{models.OutcomeAdded, models.OutcomeSkippedExisting}, outcomeStatuses(result))

	stored := fx.repo.byWatchmodeID[50]
	require.NotNil(t, stored)
	require.NotNil(t, stored.SourceReleaseDate)
	require.Equal(t, "2026-08-28", *stored.SourceReleaseDate)

	require.Len(t, fx.repo.syncLogs, 1)
	require.Equal(t, "releases", fx.repo.syncLogs[0].SyncType)
}

func TestGetLastSyncLog(t *testing.T) {
	fx := newSyncFixture(1000)
	title := rawTitle(60, "Logged", 8.0)
	fx.catalog.pages = []models.WatchmodeTitlesPage{{Titles: []models.RawTitle{title}}}
	fx.addDetails(title)

	result, err := fx.service.Run(context.Background(), models.SyncOptions{TitlesToSync: 1})
	require.NoError(t, err)

	log, err := fx.service.GetLastSyncLog(context.Background())
	require.NoError(t, err)
	require.NotNil(t, log)
	require.Equal(t, result.RunID, log.RunID)
}
