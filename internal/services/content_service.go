package services

import (
	"context"
	"fmt"
	"strings"

	"streamfinder-backend/internal/config"
	"streamfinder-backend/internal/models"
	"streamfinder-backend/internal/repository"

	"github.com/sirupsen/logrus"
)

// ContentService is the admin-facing CRUD surface over canonical content
// rows. The sync pipeline does not go through it; it writes via the
// repository directly.
type ContentService interface {
	CreateContent(ctx context.Context, content *models.Content) error
	UpdateContent(ctx context.Context, id uint, content *models.Content) error
	DeleteContent(ctx context.Context, id uint) error
	GetContentByID(ctx context.Context, id uint) (*models.Content, error)
	GetAllContent(ctx context.Context, page, limit int, search, sortBy, order, contentType, decade string) ([]models.Content, int64, error)
}

type contentService struct {
	repo         repository.ContentRepository
	config       *config.Config
	logger       *logrus.Logger
	minioService *MinIOService
}

func NewContentService(repo repository.ContentRepository, cfg *config.Config, logger *logrus.Logger) ContentService {
	return &contentService{
		repo:   repo,
		config: cfg,
		logger: logger,
	}
}

func (s *contentService) SetMinIOService(minioSvc *MinIOService) {
	s.minioService = minioSvc
}

func (s *contentService) CreateContent(ctx context.Context, content *models.Content) error {
	if content.Title == "" {
		return fmt.Errorf("content title is required")
	}

	if content.WatchmodeID > 0 {
		existing, err := s.repo.FindByWatchmodeID(ctx, content.WatchmodeID)
		if err != nil {
			return fmt.Errorf("failed to check existing content: %w", err)
		}
		if existing != nil {
			return fmt.Errorf("content with Watchmode ID %d already exists", content.WatchmodeID)
		}
	}

	return s.repo.Create(ctx, content)
}

func (s *contentService) UpdateContent(ctx context.Context, id uint, content *models.Content) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("content with ID %d not found", id)
	}

	// A replaced admin-uploaded poster leaves an orphan object behind;
	// clean it up before the row forgets the old URL.
	if content.PosterURL != "" && content.PosterURL != existing.PosterURL {
		s.cleanupStoredPoster(existing.PosterURL)
	}

	content.ID = id
	content.CreatedAt = existing.CreatedAt
	content.WatchmodeID = existing.WatchmodeID // Don't allow changing the dedup key

	return s.repo.Update(ctx, content)
}

func (s *contentService) DeleteContent(ctx context.Context, id uint) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("content with ID %d not found", id)
	}

	s.cleanupStoredPoster(existing.PosterURL)

	return s.repo.Delete(ctx, id)
}

// cleanupStoredPoster deletes a poster object when the URL points into
// our own bucket; provider-hosted posters are left alone.
func (s *contentService) cleanupStoredPoster(posterURL string) {
	if s.minioService == nil || posterURL == "" {
		return
	}
	if !strings.Contains(posterURL, "http") || !strings.Contains(posterURL, s.config.MinIO.BucketName) {
		return
	}

	if err := s.minioService.DeleteFile(posterURL); err != nil {
		s.logger.WithError(err).Warn("Failed to delete poster from MinIO")
	}
}

func (s *contentService) GetContentByID(ctx context.Context, id uint) (*models.Content, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *contentService) GetAllContent(ctx context.Context, page, limit int, search, sortBy, order, contentType, decade string) ([]models.Content, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return s.repo.FindAll(ctx, page, limit, search, sortBy, order, contentType, decade)
}
