package handlers

import (
	"streamfinder-backend/internal/models"
	"streamfinder-backend/internal/services"
	"streamfinder-backend/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type SyncHandler struct {
	syncService services.SyncService
	quota       services.QuotaTracker
	logger      *logrus.Logger
}

func NewSyncHandler(syncService services.SyncService, quota services.QuotaTracker, logger *logrus.Logger) *SyncHandler {
	return &SyncHandler{
		syncService: syncService,
		quota:       quota,
		logger:      logger,
	}
}

// RunSync godoc
// @Summary Run a catalog sync
// @Description Pull titles from Watchmode, enrich with TMDB artwork, and store new content. Always returns a complete result report, even when the run was cut short by the monthly quota.
// @Tags sync
// @Accept json
// @Produce json
// @Param options body SyncRunRequest false "Sync options"
// @Success 200 {object} utils.StandardResponse "Sync result"
// @Failure 400 {object} utils.StandardResponse "Invalid request body"
// @Failure 500 {object} utils.StandardResponse "Internal server error"
// @Router /sync/run [post]
func (h *SyncHandler) RunSync(c *fiber.Ctx) error {
	ctx := c.Context()

	var req SyncRunRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
		}
	}

	result, err := h.syncService.Run(ctx, models.SyncOptions{
		TitlesToSync: req.TitlesToSync,
		SourceIDs:    req.SourceIDs,
		MinRating:    req.MinRating,
		ContentType:  req.ContentType,
	})
	if err != nil {
		h.logger.WithError(err).Error("Sync run failed")
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Sync run failed")
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Sync run completed", result)
}

// RunReleaseSync godoc
// @Summary Run a recent-releases sync
// @Description Pull recently released titles from the configured platforms and store new content with their availability dates
// @Tags sync
// @Accept json
// @Produce json
// @Param options body ReleaseSyncRequest false "Release sync options"
// @Success 200 {object} utils.StandardResponse "Sync result"
// @Failure 400 {object} utils.StandardResponse "Invalid request body"
// @Failure 500 {object} utils.StandardResponse "Internal server error"
// @Router /sync/releases [post]
func (h *SyncHandler) RunReleaseSync(c *fiber.Ctx) error {
	ctx := c.Context()

	var req ReleaseSyncRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
		}
	}

	result, err := h.syncService.RunReleases(ctx, req.DaysBack)
	if err != nil {
		h.logger.WithError(err).Error("Release sync run failed")
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Release sync run failed")
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Release sync run completed", result)
}

// GetLastSyncLog godoc
// @Summary Get the last sync log
// @Description Get the audit record of the most recent sync run
// @Tags sync
// @Accept json
// @Produce json
// @Success 200 {object} utils.StandardResponse "Last sync log"
// @Failure 500 {object} utils.StandardResponse "Internal server error"
// @Router /sync/last-log [get]
func (h *SyncHandler) GetLastSyncLog(c *fiber.Ctx) error {
	ctx := c.Context()

	log, err := h.syncService.GetLastSyncLog(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get last sync log")
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve last sync log")
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Last sync log retrieved successfully", log)
}

// GetQuotaUsage godoc
// @Summary Get monthly quota usage
// @Description Get the Watchmode request counter for the current month
// @Tags sync
// @Accept json
// @Produce json
// @Success 200 {object} utils.StandardResponse "Quota usage"
// @Failure 500 {object} utils.StandardResponse "Internal server error"
// @Router /sync/usage [get]
func (h *SyncHandler) GetQuotaUsage(c *fiber.Ctx) error {
	ctx := c.Context()

	used, limit, err := h.quota.Usage(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get quota usage")
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve quota usage")
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Quota usage retrieved successfully", fiber.Map{
		"used":      used,
		"limit":     limit,
		"remaining": limit - used,
	})
}
