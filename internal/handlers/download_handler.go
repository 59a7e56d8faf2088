package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-structurer/internal/services"
)

type DownloadHandler struct {
	storage services.StorageService
}

func NewDownloadHandler(storage services.StorageService) *DownloadHandler {
	return &DownloadHandler{storage: storage}
}

// HandleDownload handles GET /download/:filename
func (h *DownloadHandler) HandleDownload(c *fiber.Ctx) error {
	filename := c.Params("filename")

	path, err := h.storage.GetOutputPath(filename)
	if err != nil {
		return respondError(c, err)
	}

	return c.Download(path, filename)
}
