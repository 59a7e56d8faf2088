package handlers

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-structurer/internal/docgen"
	"alfredoptarigan/resume-structurer/internal/models"
	"alfredoptarigan/resume-structurer/internal/services"
)

// StructureHandler exposes the structurer and the document generator without
// the extraction gateway, for callers that extract text themselves.
type StructureHandler struct {
	parser    services.ParseService
	generator *docgen.Generator
}

func NewStructureHandler(parser services.ParseService, generator *docgen.Generator) *StructureHandler {
	return &StructureHandler{
		parser:    parser,
		generator: generator,
	}
}

// HandleStructure handles POST /structure
func (h *StructureHandler) HandleStructure(c *fiber.Ctx) error {
	var req models.StructureRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Invalid request payload",
		})
	}

	if strings.TrimSpace(req.Payload) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "payload is required",
		})
	}

	record, warnings, err := h.parser.Structure(req.Payload)
	if err != nil {
		return respondError(c, err)
	}

	if warnings == nil {
		warnings = []models.Warning{}
	}
	return c.JSON(models.StructureResponse{Record: record, Warnings: warnings})
}

// HandleRender handles POST /render?format=pdf with a résumé record body.
func (h *StructureHandler) HandleRender(c *fiber.Ctx) error {
	format := docgen.ParseFormat(c.Query("format", string(docgen.FormatPDF)))

	var record models.ResumeRecord
	if err := c.BodyParser(&record); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Invalid record payload",
		})
	}

	data, err := h.parser.Render(c.UserContext(), &record, format)
	if err != nil {
		return respondError(c, err)
	}

	contentType, _ := h.generator.ContentType(format)
	ext, _ := h.generator.Extension(format)
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="resume%s"`, ext))
	return c.Send(data)
}

// HandleFormats handles GET /formats
func (h *StructureHandler) HandleFormats(c *fiber.Ctx) error {
	formats := h.generator.Formats()
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return c.JSON(fiber.Map{"formats": names})
}
