package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"alfredoptarigan/resume-structurer/internal/config"
	"alfredoptarigan/resume-structurer/internal/docgen"
	"alfredoptarigan/resume-structurer/internal/handlers"
	"alfredoptarigan/resume-structurer/internal/logging"
	"alfredoptarigan/resume-structurer/internal/repositories"
	"alfredoptarigan/resume-structurer/internal/services"
	"alfredoptarigan/resume-structurer/internal/structurer"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(cfg.Log.Level, cfg.Log.Format)
	log.WithField("env", cfg.Server.Env).Info("✅ Config loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("❌ Failed to initialize database")
	}

	var (
		docRepo    repositories.DocumentRepository
		resultRepo repositories.ParseResultRepository
	)
	if db != nil {
		docRepo = repositories.NewDocumentRepository(db)
		resultRepo = repositories.NewParseResultRepository(db)
		log.Info("✅ Repositories initialized successfully")
	}

	// Initialize services
	storageService := services.NewStorageService(cfg.Storage.UploadPath, cfg.Storage.OutputPath)
	if err := storageService.EnsureDirs(); err != nil {
		log.WithError(err).Fatal("❌ Failed to create storage directories")
	}

	st, err := structurer.New(structurer.Config{
		DateLayouts:   cfg.Structurer.DateLayouts,
		PresentTokens: cfg.Structurer.PresentTokens,
		Repairs:       structurer.DefaultRepairs,
	})
	if err != nil {
		log.WithError(err).Fatal("❌ Failed to initialize structurer")
	}

	generator, err := newGenerator(cfg)
	if err != nil {
		log.WithError(err).Fatal("❌ Failed to initialize document generator")
	}
	log.WithField("formats", generator.Formats()).Info("✅ Document generator initialized")

	gateway, err := services.NewExtractionGateway(ctx, cfg.Gateway, log)
	if err != nil {
		log.WithError(err).Fatal("❌ Failed to initialize extraction gateway")
	}
	log.WithFields(logrus.Fields{
		"provider": gateway.Name(),
		"timeout":  cfg.Gateway.Timeout.String(),
	}).Info("✅ Extraction gateway initialized")

	parser := services.NewParseService(
		services.NewTextExtractor(),
		gateway,
		st,
		generator,
		storageService,
		docRepo,
		resultRepo,
		log,
	)

	sweeper := services.NewSweeper(storageService, cfg.Storage.Retention, cfg.Storage.SweepInterval, log)
	sweeper.Start(ctx)

	// Initialize Handlers
	h := handlers.Handlers{
		Parse:     handlers.NewParseHandler(parser, cfg.Storage.MaxFileSize, log),
		Structure: handlers.NewStructureHandler(parser, generator),
		Download:  handlers.NewDownloadHandler(storageService),
	}
	if resultRepo != nil {
		h.Result = handlers.NewResultHandler(resultRepo, docRepo)
	}
	log.Info("✅ Handlers initialized")

	app := handlers.NewApp(cfg.Storage.MaxFileSize, log.Writer())
	handlers.RegisterRoutes(app, h)

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		log.Info("🛑 Shutting down server...")
		sweeper.Stop()
		if err := app.Shutdown(); err != nil {
			log.WithError(err).Error("❌ Server forced to shutdown")
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Infof("🚀 Server starting on %s", addr)

	if err := app.Listen(addr); err != nil {
		log.WithError(err).Fatal("❌ Failed to start server")
	}
}

func newGenerator(cfg *config.Config) (*docgen.Generator, error) {
	enabled := make([]docgen.Format, len(cfg.Render.Formats))
	for i, f := range cfg.Render.Formats {
		enabled[i] = docgen.ParseFormat(f)
	}

	return docgen.NewGenerator(
		docgen.DefaultRegistry(docgen.RegistryOptions{ChromePath: cfg.Render.ChromePath}),
		docgen.Geometry{Width: cfg.Render.PageWidth, Height: cfg.Render.PageHeight, Margin: cfg.Render.Margin},
		enabled,
	)
}
