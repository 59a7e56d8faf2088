package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/resume-structurer/internal/models"
	"alfredoptarigan/resume-structurer/internal/repositories"
)

const maxListedResults = 50

type ResultHandler struct {
	resultRepo repositories.ParseResultRepository
	docRepo    repositories.DocumentRepository
}

func NewResultHandler(resultRepo repositories.ParseResultRepository, docRepo repositories.DocumentRepository) *ResultHandler {
	return &ResultHandler{
		resultRepo: resultRepo,
		docRepo:    docRepo,
	}
}

func (h *ResultHandler) HandleGetResult(c *fiber.Ctx) error {
	resultID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Invalid parse result ID format",
		})
	}

	result, err := h.resultRepo.FindByID(resultID)
	if err != nil {
		return respondError(c, err)
	}

	response := toResultResponse(result)
	response.Document = h.documentInfo(result.DocumentID)

	return c.JSON(response)
}

// documentInfo looks up the upload behind a result. A result whose document
// row is missing is still returned, without the document.
func (h *ResultHandler) documentInfo(id *uuid.UUID) *models.DocumentInfo {
	if h.docRepo == nil || id == nil {
		return nil
	}

	doc, err := h.docRepo.FindByID(*id)
	if err != nil {
		return nil
	}

	return &models.DocumentInfo{
		ID:               doc.ID.String(),
		OriginalFileName: doc.OriginalFileName,
		ContentType:      doc.ContentType,
		Size:             doc.Size,
		UploadedAt:       doc.CreatedAt,
	}
}

// HandleListResults returns the most recent parse results, newest first.
func (h *ResultHandler) HandleListResults(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit <= 0 || limit > maxListedResults {
		limit = maxListedResults
	}

	results, err := h.resultRepo.FindRecent(limit)
	if err != nil {
		return respondError(c, err)
	}

	out := make([]models.ResultResponse, len(results))
	for i := range results {
		out[i] = toResultResponse(&results[i])
	}
	return c.JSON(fiber.Map{"results": out})
}

func toResultResponse(result *models.ParseResult) models.ResultResponse {
	response := models.ResultResponse{
		ID:           result.ID.String(),
		Status:       string(result.Status),
		ErrorMessage: result.ErrorMessage,
	}

	// stored columns were written by the parse service; bad JSON leaves the field empty
	if len(result.Record) > 0 {
		var rec models.ResumeRecord
		if json.Unmarshal(result.Record, &rec) == nil {
			response.Record = &rec
		}
	}
	if len(result.Warnings) > 0 {
		_ = json.Unmarshal(result.Warnings, &response.Warnings)
	}
	if len(result.Renders) > 0 && json.Unmarshal(result.Renders, &response.Renders) == nil {
		response.Renders = withDownloadURLs(response.Renders)
	}
	if len(result.InvalidField) > 0 {
		_ = json.Unmarshal(result.InvalidField, &response.Fields)
	}

	return response
}
