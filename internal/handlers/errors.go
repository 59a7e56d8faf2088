package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-structurer/internal/docgen"
	"alfredoptarigan/resume-structurer/internal/models"
	"alfredoptarigan/resume-structurer/internal/repositories"
	"alfredoptarigan/resume-structurer/internal/services"
	"alfredoptarigan/resume-structurer/internal/structurer"
)

// errorStatus maps a pipeline error to its HTTP status and body.
func errorStatus(err error) (int, models.ErrorResponse) {
	var invalid *structurer.InvalidError

	switch {
	case errors.As(err, &invalid):
		return fiber.StatusUnprocessableEntity, models.ErrorResponse{Error: "invalid", Fields: invalid.Fields}
	case errors.Is(err, structurer.ErrUnparseable), errors.Is(err, services.ErrNoText):
		return fiber.StatusUnprocessableEntity, models.ErrorResponse{Error: "unparseable"}
	case errors.Is(err, services.ErrUnsupportedFileType):
		return fiber.StatusUnsupportedMediaType, models.ErrorResponse{Error: err.Error()}
	case errors.Is(err, docgen.ErrUnsupportedFormat):
		return fiber.StatusBadRequest, models.ErrorResponse{Error: err.Error()}
	case errors.Is(err, services.ErrGatewayTimeout):
		return fiber.StatusGatewayTimeout, models.ErrorResponse{Error: "extraction gateway timed out"}
	case errors.Is(err, services.ErrGatewayQuotaExceeded):
		return fiber.StatusTooManyRequests, models.ErrorResponse{Error: "extraction gateway quota exceeded"}
	case errors.Is(err, services.ErrGatewayUnavailable), errors.Is(err, services.ErrGateway):
		return fiber.StatusBadGateway, models.ErrorResponse{Error: "extraction gateway unavailable"}
	case errors.Is(err, services.ErrFileNotFound), errors.Is(err, repositories.ErrNotFound):
		return fiber.StatusNotFound, models.ErrorResponse{Error: "not found"}
	case errors.Is(err, docgen.ErrSerializationFailed), errors.Is(err, services.ErrAllRendersFailed):
		return fiber.StatusInternalServerError, models.ErrorResponse{Error: err.Error()}
	}
	return fiber.StatusInternalServerError, models.ErrorResponse{Error: "internal server error"}
}

func respondError(c *fiber.Ctx, err error) error {
	status, body := errorStatus(err)
	return c.Status(status).JSON(body)
}

// ErrorHandler is the fiber fallback for errors no handler answered.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
