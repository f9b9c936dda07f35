package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "dyd/internal/adapter/http"
	repo "dyd/internal/adapter/repository"
	"dyd/internal/config"
	"dyd/internal/infrastructure/migration"
	"dyd/internal/usecase"
	"dyd/pkg/automation"
	infra "dyd/pkg/infrastructure"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// store is everything the usecases persist through.
type store interface {
	usecase.CVRepo
	usecase.JobsRepo
	usecase.EntitlementRepo
	usecase.ApplicationRepo
	usecase.ExportRepo
	usecase.DashboardReader
}

func main() {
	cfg := config.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// infra setup
	var db store
	pool, err := infra.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Warn("database not available, using in-memory store", "error", err)
		db = repo.NewMemory()
	} else {
		defer pool.Close()
		if err := migration.RunMigrations(ctx, pool); err != nil {
			log.Error("migrations failed", "error", err)
			os.Exit(1)
		}
		db = repo.NewPostgres(pool)
	}

	var objects usecase.ObjectStore
	var local *infra.LocalStorage
	if cfg.SupabaseURL != "" {
		objects = infra.NewSupabaseStorage(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.StorageBucket)
	} else {
		local = infra.NewLocalStorage(cfg.LocalStorageDir, cfg.PublicBaseURL+"/files")
		objects = local
		log.Warn("SUPABASE_URL not set, exports are stored on disk", "dir", cfg.LocalStorageDir)
	}

	forwarder := automation.NewClient(map[automation.Kind]string{
		automation.Analyze:  cfg.AutomationAnalyzeURL,
		automation.Generate: cfg.AutomationGenerateURL,
		automation.Optimize: cfg.AutomationOptimizeURL,
	}, automation.WithAPIKey(cfg.AutomationAPIKey))
	for _, k := range []automation.Kind{automation.Analyze, automation.Generate, automation.Optimize} {
		if !forwarder.Supports(k) {
			log.Warn("no automation scenario configured", "kind", k)
		}
	}

	renderer := infra.NewChromedpRenderer(cfg.ChromePath)

	h := httpadapter.NewHandler(httpadapter.Services{
		CVs: usecase.NewCVService(db),
		Processor: usecase.NewProcessor(db, db, db, forwarder, usecase.AnalysisConfig{
			CallbackURL:  cfg.CallbackURL(),
			Secret:       cfg.AutomationSecret,
			PollInterval: cfg.PollInterval,
			MaxWait:      cfg.WaitTimeout,
		}, log),
		Payments:  usecase.NewPaymentService(db, cfg.StripeWebhookSecret, log),
		Exports:   usecase.NewExportService(db, db, renderer, objects, cfg.PageWidth, log),
		Board:     usecase.NewBoardService(db, db),
		Dashboard: usecase.NewDashboardService(db),
	})
	if cfg.StripeWebhookSecret == "" {
		log.Warn("STRIPE_WEBHOOK_SECRET not set, payment webhooks will be rejected")
	}

	app := fiber.New(fiber.Config{
		AppName:      "dyd",
		ErrorHandler: httpadapter.NewErrorHandler(log),
		// long-poll requests stay open up to WAIT_TIMEOUT
		WriteTimeout: cfg.WaitTimeout + 10*time.Second,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	if local != nil {
		app.Static("/files", local.Dir())
	}
	h.Register(app, httpadapter.NewAuthenticator(cfg.JWTSecret).Middleware())

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("server failed", "error", err)
			stop()
		}
	}()
	log.Info("server started", "port", cfg.Port, "callback_url", cfg.CallbackURL())

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
	log.Info("server stopped")
}
