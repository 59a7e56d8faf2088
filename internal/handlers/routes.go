package handlers

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// formOverhead is body room left for multipart boundaries and headers.
const formOverhead = 1 << 20

type Handlers struct {
	Parse     *ParseHandler
	Structure *StructureHandler
	Download  *DownloadHandler
	// Result is nil when parse history is not persisted.
	Result *ResultHandler
}

// NewApp builds the fiber app with the shared middleware stack. Request
// lines go to accessLog.
func NewApp(maxFileSize int64, accessLog io.Writer) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Resume Structurer API",
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		BodyLimit:    int(maxFileSize) + formOverhead,
		ErrorHandler: ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
		Output:     accessLog,
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	return app
}

func RegisterRoutes(app *fiber.App, h Handlers) {
	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Post("/parse", h.Parse.HandleParse)
	api.Post("/structure", h.Structure.HandleStructure)
	api.Post("/render", h.Structure.HandleRender)
	api.Get("/formats", h.Structure.HandleFormats)
	api.Get("/download/:filename", h.Download.HandleDownload)

	endpoints := []string{
		"POST /api/parse",
		"POST /api/v1/parse",
		"POST /api/v1/structure",
		"POST /api/v1/render?format=pdf",
		"GET /api/v1/formats",
		"GET /api/v1/download/:filename",
	}

	if h.Result != nil {
		api.Get("/results", h.Result.HandleListResults)
		api.Get("/result/:id", h.Result.HandleGetResult)
		endpoints = append(endpoints, "GET /api/v1/results", "GET /api/v1/result/:id")
	}

	app.Post("/api/parse", h.Parse.HandleParse)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message":   "Resume Structurer API",
			"version":   "1.0.0",
			"endpoints": endpoints,
		})
	})
}
