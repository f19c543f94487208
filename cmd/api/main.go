package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/ecs-receipts/internal/application/service"
	"github.com/sangkips/ecs-receipts/internal/config"
	"github.com/sangkips/ecs-receipts/internal/directory"
	"github.com/sangkips/ecs-receipts/internal/infrastructure/database"
	"github.com/sangkips/ecs-receipts/internal/infrastructure/jobs"
	"github.com/sangkips/ecs-receipts/internal/infrastructure/repository"
	"github.com/sangkips/ecs-receipts/internal/presentation/http/handler"
	"github.com/sangkips/ecs-receipts/internal/presentation/http/middleware"
	"github.com/sangkips/ecs-receipts/internal/presentation/http/routes"
	"github.com/sangkips/ecs-receipts/internal/presentation/http/validation"
	"github.com/sangkips/ecs-receipts/internal/preview"
	"github.com/sangkips/ecs-receipts/pkg/email"
	"github.com/sangkips/ecs-receipts/pkg/logger"
	"github.com/sangkips/ecs-receipts/pkg/printer"
	"github.com/sangkips/ecs-receipts/pkg/utils"
	"github.com/shopspring/decimal"
)

func main() {
	// Amounts travel as JSON numbers, as the portal has always posted them.
	decimal.MarshalJSONWithoutQuotes = true

	// Load configuration
	cfg := config.Load()
	logger.Init(cfg.App.Env, cfg.App.Debug)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := validation.Register(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validators")
	}

	// Connect to database
	db, err := database.Open(&cfg.Database, cfg.App.Debug)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	if err := database.SeedDefaultData(db, cfg.Admin); err != nil {
		log.Warn().Err(err).Msg("failed to seed default data")
	}

	// Reference data
	dir, err := directory.Load(directory.DefaultFiles(cfg.Catalog.Dir))
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.Catalog.Dir).Msg("failed to load catalog")
	}

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	receiptRepo := repository.NewReceiptRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	investorRepo := repository.NewInvestorRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	var notifier service.Notifier
	if cfg.Email.Enabled {
		notifier = email.NewEmailService(email.EmailConfig{
			SMTPHost:     cfg.Email.SMTPHost,
			SMTPPort:     cfg.Email.SMTPPort,
			SMTPUsername: cfg.Email.SMTPUsername,
			SMTPPassword: cfg.Email.SMTPPassword,
			FromName:     cfg.Email.FromName,
			FromEmail:    cfg.Email.FromEmail,
		})
	}

	// Initialize thermal printer
	thermalPrinter, err := printer.NewPrinterFromConfig(cfg.Printer.Type, cfg.Printer.USBPath, cfg.Printer.Address)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize printer, printing disabled")
		thermalPrinter = printer.NewNullPrinter()
	}

	pdf := preview.NewPDFRenderer(cfg.Preview.LogoPath)
	previewStore, err := preview.NewFileStore(filepath.Join(cfg.Storage.Path, "previews"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open preview storage")
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager)
	userService := service.NewUserService(userRepo, roleRepo)
	receiptService := service.NewReceiptService(receiptRepo, pdf, notifier)
	exportService := service.NewExportService(receiptService)
	statsService := service.NewStatsService(statsRepo)
	investorService := service.NewInvestorService(investorRepo, dir)
	printerService := service.NewPrinterService(thermalPrinter, receiptService, cfg.Printer.Width)
	wizardService := service.NewWizardService(service.WizardDeps{
		Directory: dir,
		Receipts:  receiptService,
		PDF:       pdf,
		Store:     previewStore,
		Debounce:  cfg.Preview.Debounce,
		IdleTTL:   cfg.Wizard.IdleTTL,
		Users:     authService,
	})

	if err := investorService.Sync(context.Background()); err != nil {
		log.Warn().Err(err).Msg("failed to load stored investors")
	}

	rateLimiter := middleware.NewUserRateLimiter(cfg.RateLimit.Requests, time.Duration(cfg.RateLimit.Duration)*time.Second)

	scheduler := jobs.NewScheduler(time.Minute)
	mustAdd := func(name, schedule string, job jobs.Job) {
		if err := scheduler.Add(name, schedule, job); err != nil {
			log.Fatal().Err(err).Str("job", name).Msg("failed to schedule job")
		}
	}
	mustAdd("idempotency-cleanup", cfg.Jobs.IdempotencyCleanup, func(ctx context.Context) (int, error) {
		n, err := idempotencyRepo.DeleteExpired(ctx)
		return int(n), err
	})
	mustAdd("token-prune", cfg.Jobs.IdempotencyCleanup, func(context.Context) (int, error) {
		return jwtManager.PruneRevoked(), nil
	})
	mustAdd("wizard-cleanup", cfg.Jobs.WizardCleanup, func(context.Context) (int, error) {
		return wizardService.Evict(), nil
	})
	mustAdd("rate-limit-prune", cfg.Jobs.WizardCleanup, func(context.Context) (int, error) {
		return rateLimiter.Prune(), nil
	})
	scheduler.Start()

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:     handler.NewAuthHandler(authService, wizardService),
		User:     handler.NewUserHandler(userService),
		Receipt:  handler.NewReceiptHandler(receiptService, exportService),
		Stats:    handler.NewStatsHandler(statsService),
		Customer: handler.NewCustomerHandler(investorService),
		Catalog:  handler.NewCatalogHandler(dir),
		Wizard:   handler.NewWizardHandler(wizardService),
		Printer:  handler.NewPrinterHandler(printerService),
	}

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		RateLimiter:     rateLimiter,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("port", port).Str("env", cfg.App.Env).Msgf("starting %s", cfg.App.Name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	scheduler.Stop()
}
