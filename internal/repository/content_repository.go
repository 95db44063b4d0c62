package repository

import (
	"context"
	"errors"
	"time"

	"streamfinder-backend/internal/database"
	"streamfinder-backend/internal/models"

	"gorm.io/gorm"
)

type ContentRepository interface {
	// CRUD operations
	Create(ctx context.Context, content *models.Content) error
	Update(ctx context.Context, content *models.Content) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*models.Content, error)
	FindByWatchmodeID(ctx context.Context, watchmodeID int) (*models.Content, error)
	FindAll(ctx context.Context, page, limit int, search, sortBy, order, contentType, decade string) ([]models.Content, int64, error)

	// Upsert keyed by Watchmode id; each call is its own transaction.
	Upsert(ctx context.Context, content *models.Content) (*models.Content, error)

	// Sync log operations
	CreateSyncLog(ctx context.Context, log *models.SyncLog) error
	GetLastSyncLog(ctx context.Context) (*models.SyncLog, error)
}

type contentRepository struct {
	db      *database.Database
	timeout time.Duration
}

func NewContentRepository(db *database.Database) ContentRepository {
	return &contentRepository{
		db:      db,
		timeout: db.GetQueryTimeout(),
	}
}

func (r *contentRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *contentRepository) Create(ctx context.Context, content *models.Content) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.db.WithContext(ctx).Create(content).Error
}

func (r *contentRepository) Update(ctx context.Context, content *models.Content) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.db.WithContext(ctx).Save(content).Error
}

func (r *contentRepository) Delete(ctx context.Context, id uint) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.db.WithContext(ctx).Delete(&models.Content{}, id).Error
}

func (r *contentRepository) FindByID(ctx context.Context, id uint) (*models.Content, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var content models.Content
	err := r.db.WithContext(ctx).Preload("Language").Preload("Genres").First(&content, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("content not found")
		}
		return nil, err
	}
	return &content, nil
}

func (r *contentRepository) FindByWatchmodeID(ctx context.Context, watchmodeID int) (*models.Content, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var content models.Content
	err := r.db.WithContext(ctx).Where("watchmode_id = ?", watchmodeID).First(&content).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &content, nil
}

func (r *contentRepository) FindAll(ctx context.Context, page, limit int, search, sortBy, order, contentType, decade string) ([]models.Content, int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var contents []models.Content
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Content{})

	// Apply search filter
	if search != "" {
		searchPattern := "%" + search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ? OR original_title ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	if contentType == models.ContentTypeMovie || contentType == models.ContentTypeSeries {
		query = query.Where("type = ?", contentType)
	}

	// Decade facet, e.g. "1950s" covers years 1950-1959
	if decade != "" {
		if start, end, ok := models.DecadeRange(decade); ok {
			query = query.Where("year >= ? AND year < ?", start, end)
		} else {
			return []models.Content{}, 0, nil
		}
	}

	// Count total records
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Apply sorting with validation
	validSortFields := map[string]bool{
		"id": true, "title": true, "year": true, "release_date": true,
		"avg_rating": true, "created_at": true, "updated_at": true,
	}
	if !validSortFields[sortBy] {
		sortBy = "updated_at"
	}
	if order != "ASC" && order != "asc" {
		order = "DESC"
	}
	query = query.Order(sortBy + " " + order)

	// Apply pagination
	offset := (page - 1) * limit
	if err := query.Preload("Language").Preload("Genres").Offset(offset).Limit(limit).Find(&contents).Error; err != nil {
		return nil, 0, err
	}

	return contents, total, nil
}

func (r *contentRepository) Upsert(ctx context.Context, content *models.Content) (*models.Content, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	existing, err := r.FindByWatchmodeID(ctx, content.WatchmodeID)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		if err := r.db.WithContext(ctx).Create(content).Error; err != nil {
			return nil, err
		}
		return content, nil
	}

	content.ID = existing.ID
	content.CreatedAt = existing.CreatedAt
	if err := r.db.WithContext(ctx).Save(content).Error; err != nil {
		return nil, err
	}
	return content, nil
}

func (r *contentRepository) CreateSyncLog(ctx context.Context, log *models.SyncLog) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.db.WithContext(ctx).Create(log).Error
}

func (r *contentRepository) GetLastSyncLog(ctx context.Context) (*models.SyncLog, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var log models.SyncLog
	err := r.db.WithContext(ctx).Order("synced_at DESC").First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &log, nil
}
