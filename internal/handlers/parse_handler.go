package handlers

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"alfredoptarigan/resume-structurer/internal/docgen"
	"alfredoptarigan/resume-structurer/internal/models"
	"alfredoptarigan/resume-structurer/internal/services"
)

const downloadPrefix = "/api/v1/download/"

type ParseHandler struct {
	parser      services.ParseService
	maxFileSize int64
	log         *logrus.Logger
}

func NewParseHandler(parser services.ParseService, maxFileSize int64, log *logrus.Logger) *ParseHandler {
	return &ParseHandler{
		parser:      parser,
		maxFileSize: maxFileSize,
		log:         log,
	}
}

// HandleParse handles POST /parse with a multipart "file" field and optional
// "formats" (comma separated, query or form).
func (h *ParseHandler) HandleParse(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "missing 'file' in multipart form",
		})
	}

	if file.Size > h.maxFileSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(models.ErrorResponse{
			Error: fmt.Sprintf("file too large. Max size: %d bytes", h.maxFileSize),
		})
	}
	if file.Size == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "uploaded file is empty",
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "failed to open uploaded file",
		})
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, h.maxFileSize+1))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "failed to read uploaded file",
		})
	}
	if int64(len(data)) > h.maxFileSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(models.ErrorResponse{
			Error: fmt.Sprintf("file too large. Max size: %d bytes", h.maxFileSize),
		})
	}

	formats := c.Query("formats")
	if formats == "" {
		formats = c.FormValue("formats")
	}

	outcome, err := h.parser.Parse(c.UserContext(), services.ParseInput{
		Filename: file.Filename,
		Data:     data,
		Formats:  parseFormats(formats),
	})
	if err != nil && !errors.Is(err, services.ErrAllRendersFailed) {
		h.log.WithError(err).WithField("file", file.Filename).Warn("⚠️ Parse failed")
		return respondError(c, err)
	}

	resp := models.ParseResponse{
		ID:       outcome.ID.String(),
		Record:   outcome.Record,
		Warnings: outcome.Warnings,
		Renders:  withDownloadURLs(outcome.Renders),
	}
	if resp.Warnings == nil {
		resp.Warnings = []models.Warning{}
	}

	status := fiber.StatusOK
	if err != nil {
		status = fiber.StatusInternalServerError
	}
	return c.Status(status).JSON(resp)
}

// parseFormats splits a comma separated list, normalizing names and
// dropping repeats.
func parseFormats(s string) []docgen.Format {
	var out []docgen.Format
	seen := make(map[docgen.Format]bool)
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part == "" {
			continue
		}
		f := docgen.ParseFormat(part)
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

func withDownloadURLs(renders []models.RenderInfo) []models.RenderInfo {
	out := make([]models.RenderInfo, len(renders))
	for i, r := range renders {
		if r.Filename != "" {
			r.DownloadURL = downloadPrefix + r.Filename
		}
		out[i] = r
	}
	return out
}
