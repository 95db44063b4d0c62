package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"streamfinder-backend/internal/config"
	"streamfinder-backend/internal/models"
	"streamfinder-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SyncService drives one end-to-end catalog synchronization run:
// search the primary provider, enrich and normalize new titles, upsert
// them, and report everything that happened. A run never raises for
// per-title failures; only quota exhaustion cuts it short, and even then
// the partial result is returned.
type SyncService interface {
	Run(ctx context.Context, opts models.SyncOptions) (*models.SyncResult, error)
	RunReleases(ctx context.Context, daysBack int) (*models.SyncResult, error)
	GetLastSyncLog(ctx context.Context) (*models.SyncLog, error)
}

type syncService struct {
	contentRepo repository.ContentRepository
	genreRepo   repository.GenreRepository
	langRepo    repository.LanguageRepository
	usageRepo   repository.UsageRepository
	catalog     CatalogClient
	posters     PosterMatcher
	cfg         *config.Config
	logger      *logrus.Logger
}

func NewSyncService(
	contentRepo repository.ContentRepository,
	genreRepo repository.GenreRepository,
	langRepo repository.LanguageRepository,
	usageRepo repository.UsageRepository,
	catalog CatalogClient,
	posters PosterMatcher,
	cfg *config.Config,
	logger *logrus.Logger,
) SyncService {
	return &syncService{
		contentRepo: contentRepo,
		genreRepo:   genreRepo,
		langRepo:    langRepo,
		usageRepo:   usageRepo,
		catalog:     catalog,
		posters:     posters,
		cfg:         cfg,
		logger:      logger,
	}
}

func (s *syncService) Run(ctx context.Context, opts models.SyncOptions) (*models.SyncResult, error) {
	opts = s.applyDefaults(opts)

	result := &models.SyncResult{
		RunID:           uuid.New().String(),
		TitlesProcessed: []models.TitleOutcome{},
	}

	s.logger.WithFields(logrus.Fields{
		"run_id":         result.RunID,
		"titles_to_sync": opts.TitlesToSync,
		"source_ids":     opts.SourceIDs,
		"min_rating":     opts.MinRating,
	}).Info("Starting catalog sync run")

	startUsage := s.currentUsage(ctx)

	candidates, aborted := s.searchCandidates(ctx, opts, result)
	if !aborted {
		aborted = s.processCandidates(ctx, opts, candidates, result)
	}

	result.RequestsUsed = s.currentUsage(ctx) - startUsage
	s.finalize(ctx, "titles", aborted, result)
	return result, nil
}

// RunReleases syncs titles that recently became available on the
// configured platforms, carrying the availability date onto each row.
func (s *syncService) RunReleases(ctx context.Context, daysBack int) (*models.SyncResult, error) {
	if daysBack <= 0 {
		daysBack = 7
	}

	result := &models.SyncResult{
		RunID:           uuid.New().String(),
		TitlesProcessed: []models.TitleOutcome{},
	}

	s.logger.WithFields(logrus.Fields{
		"run_id":    result.RunID,
		"days_back": daysBack,
	}).Info("Starting release sync run")

	startUsage := s.currentUsage(ctx)
	aborted := false

	releases, err := s.catalog.GetRecentReleases(ctx, ReleaseSearchOptions{
		SourceIDs:  s.defaultSourceIDs(),
		ChangeType: "new",
		DaysBack:   daysBack,
	})
	switch {
	case errors.Is(err, ErrQuotaExceeded):
		result.Errors = append(result.Errors, "monthly request quota exhausted while fetching releases; run aborted")
		aborted = true
	case err != nil:
		result.Errors = append(result.Errors, fmt.Sprintf("failed to fetch recent releases: %v", err))
	default:
		result.SearchStats.TitlesFound = len(releases)
		result.SearchStats.PagesSearched = 1
		for _, release := range releases {
			if s.upsertFromRelease(ctx, &release, result) {
				aborted = true
				break
			}
		}
	}

	result.RequestsUsed = s.currentUsage(ctx) - startUsage
	s.finalize(ctx, "releases", aborted, result)
	return result, nil
}

func (s *syncService) GetLastSyncLog(ctx context.Context) (*models.SyncLog, error) {
	return s.contentRepo.GetLastSyncLog(ctx)
}

func (s *syncService) applyDefaults(opts models.SyncOptions) models.SyncOptions {
	if opts.TitlesToSync <= 0 {
		opts.TitlesToSync = s.cfg.Sync.TitlesPerRun
	}
	if opts.TitlesToSync > 100 {
		opts.TitlesToSync = 100
	}
	if len(opts.SourceIDs) == 0 {
		opts.SourceIDs = s.defaultSourceIDs()
	}
	if opts.MinRating <= 0 {
		opts.MinRating = s.cfg.Sync.MinUserRating
	}
	return opts
}

func (s *syncService) defaultSourceIDs() []int {
	var ids []int
	for _, part := range strings.Split(s.cfg.Sync.SourceIDs, ",") {
		if id, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// searchCandidates paginates the list-titles endpoint until enough
// distinct titles are collected or pages run out. Duplicates within the
// search results themselves are dropped and counted. Returns true when
// the run must abort on quota exhaustion.
func (s *syncService) searchCandidates(ctx context.Context, opts models.SyncOptions, result *models.SyncResult) ([]models.RawTitle, bool) {
	var candidates []models.RawTitle
	seen := make(map[int]bool)

	var types []string
	if opts.ContentType == models.ContentTypeSeries {
		types = []string{"tv_series"}
	} else if opts.ContentType == models.ContentTypeMovie {
		types = []string{"movie"}
	}

	for page := 1; ; page++ {
		titlesPage, err := s.catalog.SearchTitles(ctx, TitleSearchOptions{
			Page:          page,
			SourceIDs:     opts.SourceIDs,
			Types:         types,
			MinUserRating: opts.MinRating,
		})
		if errors.Is(err, ErrQuotaExceeded) {
			result.Errors = append(result.Errors, "monthly request quota exhausted while searching; run aborted")
			return candidates, true
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("search page %d failed: %v", page, err))
			break
		}

		result.SearchStats.PagesSearched++
		for _, title := range titlesPage.Titles {
			if seen[title.ID] {
				result.SearchStats.DuplicatesSkipped++
				continue
			}
			seen[title.ID] = true
			candidates = append(candidates, title)
		}

		if len(candidates) >= opts.TitlesToSync || len(titlesPage.Titles) == 0 || titlesPage.Page >= titlesPage.TotalPages {
			break
		}
	}

	result.SearchStats.TitlesFound = len(candidates)
	return candidates, false
}

// processCandidates walks the candidate list in order: dedup against
// storage, filter on the computed average rating, enrich, normalize,
// upsert. Each candidate yields exactly one outcome; one candidate's
// failure never stops the others. Returns true on quota exhaustion.
func (s *syncService) processCandidates(ctx context.Context, opts models.SyncOptions, candidates []models.RawTitle, result *models.SyncResult) bool {
	for i := range candidates {
		// Additions and validated existing rows both count toward the
		// per-run title budget; filtered and failed titles do not.
		if result.Added+result.Unchanged >= opts.TitlesToSync {
			break
		}

		candidate := &candidates[i]

		existing, err := s.contentRepo.FindByWatchmodeID(ctx, candidate.ID)
		if err != nil {
			s.record(result, candidate, models.OutcomeError, fmt.Sprintf("storage lookup failed: %v", err))
			continue
		}
		if existing != nil {
			result.Unchanged++
			s.record(result, candidate, models.OutcomeSkippedExisting, "")
			continue
		}

		if avg := AverageRating(candidate.CriticScore, candidate.UserRating); avg != nil && *avg < opts.MinRating {
			result.SearchStats.FilteredOut++
			s.record(result, candidate, models.OutcomeFilteredOut,
				fmt.Sprintf("average rating %.1f below threshold %.1f", *avg, opts.MinRating))
			continue
		}

		if s.enrichAndUpsert(ctx, candidate, "", result) {
			return true
		}
	}
	return false
}

// enrichAndUpsert fetches full details, finds artwork, normalizes and
// persists one title. Returns true only on quota exhaustion.
func (s *syncService) enrichAndUpsert(ctx context.Context, candidate *models.RawTitle, sourceReleaseDate string, result *models.SyncResult) bool {
	details, err := s.catalog.GetTitleDetails(ctx, candidate.ID)
	if errors.Is(err, ErrQuotaExceeded) {
		result.Errors = append(result.Errors, "monthly request quota exhausted while enriching; run aborted")
		return true
	}
	if err != nil {
		s.record(result, candidate, models.OutcomeError, fmt.Sprintf("details fetch failed: %v", err))
		return false
	}

	posterURL, _ := s.posters.FindPosterURL(ctx, details)

	content := NormalizeTitle(details, posterURL, sourceReleaseDate, s.cfg.Sync.PosterPlaceholder)
	s.attachDimensions(ctx, details, content)

	if _, err := s.contentRepo.Upsert(ctx, content); err != nil {
		s.record(result, candidate, models.OutcomeError, fmt.Sprintf("upsert failed: %v", err))
		return false
	}

	result.Added++
	s.record(result, candidate, models.OutcomeAdded, "")
	return false
}

// upsertFromRelease handles one availability event during a release run.
// Returns true only on quota exhaustion.
func (s *syncService) upsertFromRelease(ctx context.Context, release *models.RawRelease, result *models.SyncResult) bool {
	existing, err := s.contentRepo.FindByWatchmodeID(ctx, release.ID)
	if err != nil {
		s.record(result, &release.RawTitle, models.OutcomeError, fmt.Sprintf("storage lookup failed: %v", err))
		return false
	}
	if existing != nil {
		result.Unchanged++
		s.record(result, &release.RawTitle, models.OutcomeSkippedExisting, "")
		return false
	}
	return s.enrichAndUpsert(ctx, &release.RawTitle, release.SourceReleaseDate, result)
}

// attachDimensions resolves the language and genre rows for a title.
// Best effort: dimension failures are logged and the row is saved
// without the association.
func (s *syncService) attachDimensions(ctx context.Context, raw *models.RawTitle, content *models.Content) {
	if raw.OriginalLanguage != "" {
		language, err := s.langRepo.FindOrCreate(ctx, raw.OriginalLanguage, languageName(raw.OriginalLanguage))
		if err != nil {
			s.logger.WithError(err).WithField("lang_code", raw.OriginalLanguage).Error("Error creating language")
		} else {
			content.LanguageID = &language.ID
		}
	}

	var genres []models.Genre
	for i, genreID := range raw.GenreIDs {
		name := fmt.Sprintf("Genre %d", genreID)
		if i < len(raw.GenreNames) {
			name = raw.GenreNames[i]
		}
		genre, err := s.genreRepo.FindOrCreate(ctx, genreID, name)
		if err != nil {
			s.logger.WithError(err).WithField("genre_id", genreID).Error("Error creating genre")
			continue
		}
		genres = append(genres, *genre)
	}
	content.Genres = genres
}

func (s *syncService) record(result *models.SyncResult, title *models.RawTitle, status, reason string) {
	result.TitlesProcessed = append(result.TitlesProcessed, models.TitleOutcome{
		WatchmodeID: title.ID,
		Title:       title.Title,
		Status:      status,
		Reason:      reason,
	})
}

func (s *syncService) currentUsage(ctx context.Context) int {
	used, err := s.usageRepo.GetCurrentMonthUsage(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to read monthly usage counter")
		return 0
	}
	return used
}

func (s *syncService) finalize(ctx context.Context, syncType string, aborted bool, result *models.SyncResult) {
	var failed, filtered, skipped int
	for _, outcome := range result.TitlesProcessed {
		switch outcome.Status {
		case models.OutcomeError:
			failed++
		case models.OutcomeFilteredOut:
			filtered++
		case models.OutcomeSkippedExisting:
			skipped++
		}
	}

	status := models.SyncStatusSuccess
	if aborted {
		status = models.SyncStatusAborted
	} else if len(result.Errors) > 0 || failed > 0 {
		status = models.SyncStatusPartial
	}

	result.Summary = fmt.Sprintf(
		"%s sync %s: %d added, %d unchanged, %d filtered out, %d failed across %d pages (%d requests used)",
		syncType, status, result.Added, result.Unchanged, filtered, failed,
		result.SearchStats.PagesSearched, result.RequestsUsed,
	)

	log := &models.SyncLog{
		RunID:          result.RunID,
		SyncType:       syncType,
		Status:         status,
		TitlesAdded:    result.Added,
		TitlesSkipped:  skipped,
		TitlesFiltered: filtered,
		TitlesFailed:   failed,
		RequestsUsed:   result.RequestsUsed,
		ErrorMessage:   strings.Join(result.Errors, "; "),
		SyncedAt:       time.Now().UTC(),
	}
	if err := s.contentRepo.CreateSyncLog(ctx, log); err != nil {
		s.logger.WithError(err).Error("Failed to persist sync log")
	}

	s.logger.WithFields(logrus.Fields{
		"run_id":    result.RunID,
		"status":    status,
		"added":     result.Added,
		"unchanged": result.Unchanged,
		"filtered":  filtered,
		"failed":    failed,
		"requests":  result.RequestsUsed,
	}).Info("Sync run finished")
}

// languageName maps common ISO 639-1 codes to display names; unknown
// codes fall back to the code itself.
func languageName(code string) string {
	langMap := map[string]string{
		"en": "English", "ja": "Japanese", "ko": "Korean", "zh": "Chinese",
		"es": "Spanish", "fr": "French", "de": "German", "it": "Italian",
		"pt": "Portuguese", "ru": "Russian", "hi": "Hindi", "th": "Thai",
		"id": "Indonesian", "tr": "Turkish", "ar": "Arabic", "pl": "Polish",
		"nl": "Dutch", "sv": "Swedish", "no": "Norwegian", "da": "Danish",
		"fi": "Finnish", "cs": "Czech", "hu": "Hungarian", "ro": "Romanian",
	}
	if name, ok := langMap[code]; ok {
		return name
	}
	return code
}
