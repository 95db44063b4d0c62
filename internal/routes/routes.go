package routes

import (
	"streamfinder-backend/internal/handlers"

	"github.com/gofiber/fiber/v2"
)

func Setup(app *fiber.App, contentHandler *handlers.ContentHandler, syncHandler *handlers.SyncHandler, uploadHandler *handlers.UploadHandler) {
	// API versioning
	api := app.Group("/api")
	v1 := api.Group("/v1")

	// Content routes - CRUD operations
	content := v1.Group("/content")
	{
		content.Get("/", contentHandler.GetAllContent)
		content.Get("/:id", contentHandler.GetContentByID)
		content.Post("/", contentHandler.CreateContent)
		content.Put("/:id", contentHandler.UpdateContent)
		content.Delete("/:id", contentHandler.DeleteContent)
	}

	// Sync routes - Watchmode synchronization
	sync := v1.Group("/sync")
	{
		sync.Post("/run", syncHandler.RunSync)
		sync.Post("/releases", syncHandler.RunReleaseSync)
		sync.Get("/last-log", syncHandler.GetLastSyncLog)
		sync.Get("/usage", syncHandler.GetQuotaUsage)
	}

	upload := v1.Group("/upload")
	{
		upload.Get("/presign", uploadHandler.GetPresignedURL)
	}
}
