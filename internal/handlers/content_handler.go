package handlers

import (
	"strconv"

	"streamfinder-backend/internal/models"
	"streamfinder-backend/internal/services"
	"streamfinder-backend/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ContentHandler struct {
	service services.ContentService
	logger  *logrus.Logger
}

func NewContentHandler(service services.ContentService, logger *logrus.Logger) *ContentHandler {
	return &ContentHandler{
		service: service,
		logger:  logger,
	}
}

// GetAllContent godoc
// @Summary List content
// @Description Get content with pagination, search, sorting, type and decade filters
// @Tags content
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param search query string false "Search by title or description"
// @Param sort_by query string false "Sort by field (id, title, year, release_date, avg_rating, created_at, updated_at)" default(updated_at)
// @Param order query string false "Sort order (ASC/DESC)" default(DESC)
// @Param type query string false "Content type (movie/series)"
// @Param decade query string false "Decade label, e.g. 1990s"
// @Success 200 {object} utils.StandardResponse "List of content"
// @Failure 500 {object} utils.StandardResponse "Internal server error"
// @Router /content [get]
func (h *ContentHandler) GetAllContent(c *fiber.Ctx) error {
	ctx := c.Context()

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	search := c.Query("search", "")
	sortBy := c.Query("sort_by", "updated_at")
	order := c.Query("order", "DESC")
	contentType := c.Query("type", "")
	decade := c.Query("decade", "")

	contents, total, err := h.service.GetAllContent(ctx, page, limit, search, sortBy, order, contentType, decade)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get content")
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve content")
	}

	meta := utils.CreatePaginationMeta(page, limit, total)
	return utils.SuccessWithMetaResponse(c, fiber.StatusOK, "Content retrieved successfully", contents, meta)
}

// GetContentByID godoc
// @Summary Get content by ID
// @Description Get a single content row by its ID
// @Tags content
// @Accept json
// @Produce json
// @Param id path int true "Content ID"
// @Success 200 {object} utils.StandardResponse "Content details"
// @Failure 400 {object} utils.StandardResponse "Invalid content ID"
// @Failure 404 {object} utils.StandardResponse "Content not found"
// @Router /content/{id} [get]
func (h *ContentHandler) GetContentByID(c *fiber.Ctx) error {
	ctx := c.Context()

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid content ID")
	}

	content, err := h.service.GetContentByID(ctx, uint(id))
	if err != nil {
		h.logger.WithError(err).WithField("id", id).Error("Failed to get content")
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Content not found")
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Content retrieved successfully", content)
}

// CreateContent godoc
// @Summary Create content
// @Description Create a new content row
// @Tags content
// @Accept json
// @Produce json
// @Param content body ContentRequest true "Content request object"
// @Success 201 {object} utils.StandardResponse "Content created successfully"
// @Failure 400 {object} utils.StandardResponse "Invalid request body"
// @Failure 500 {object} utils.StandardResponse "Internal server error"
// @Router /content [post]
func (h *ContentHandler) CreateContent(c *fiber.Ctx) error {
	ctx := c.Context()

	var req ContentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}

	content := requestToContent(&req)
	if err := h.service.CreateContent(ctx, content); err != nil {
		h.logger.WithError(err).Error("Failed to create content")
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, err.Error())
	}

	return utils.SuccessResponse(c, fiber.StatusCreated, "Content created successfully", content)
}

// UpdateContent godoc
// @Summary Update content
// @Description Update an existing content row
// @Tags content
// @Accept json
// @Produce json
// @Param id path int true "Content ID"
// @Param content body ContentRequest true "Content request object"
// @Success 200 {object} utils.StandardResponse "Content updated successfully"
// @Failure 400 {object} utils.StandardResponse "Invalid request"
// @Failure 500 {object} utils.StandardResponse "Internal server error"
// @Router /content/{id} [put]
func (h *ContentHandler) UpdateContent(c *fiber.Ctx) error {
	ctx := c.Context()

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid content ID")
	}

	var req ContentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}

	content := requestToContent(&req)
	if err := h.service.UpdateContent(ctx, uint(id), content); err != nil {
		h.logger.WithError(err).WithField("id", id).Error("Failed to update content")
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, err.Error())
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Content updated successfully", content)
}

// DeleteContent godoc
// @Summary Delete content
// @Description Delete a content row by ID
// @Tags content
// @Accept json
// @Produce json
// @Param id path int true "Content ID"
// @Success 200 {object} utils.StandardResponse "Content deleted successfully"
// @Failure 400 {object} utils.StandardResponse "Invalid content ID"
// @Failure 500 {object} utils.StandardResponse "Internal server error"
// @Router /content/{id} [delete]
func (h *ContentHandler) DeleteContent(c *fiber.Ctx) error {
	ctx := c.Context()

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid content ID")
	}

	if err := h.service.DeleteContent(ctx, uint(id)); err != nil {
		h.logger.WithError(err).WithField("id", id).Error("Failed to delete content")
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, err.Error())
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Content deleted successfully", nil)
}

func requestToContent(req *ContentRequest) *models.Content {
	return &models.Content{
		WatchmodeID:   req.WatchmodeID,
		IMDBID:        req.IMDBID,
		TMDBID:        req.TMDBID,
		Title:         req.Title,
		OriginalTitle: req.OriginalTitle,
		Type:          req.Type,
		Year:          req.Year,
		EndYear:       req.EndYear,
		Runtime:       req.Runtime,
		Description:   req.Description,
		PosterURL:     req.PosterURL,
		UsersRating:   req.UsersRating,
		CriticsRating: req.CriticsRating,
		ReleaseDate:   req.ReleaseDate,
		ContentRating: req.ContentRating,
		LanguageCode:  req.LanguageCode,
	}
}
