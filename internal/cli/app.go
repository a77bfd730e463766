package cli

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/JustJay7/court-fetcher/internal/cache"
	"github.com/JustJay7/court-fetcher/internal/config"
	"github.com/JustJay7/court-fetcher/internal/database"
	"github.com/JustJay7/court-fetcher/internal/fetcher"
	"github.com/JustJay7/court-fetcher/internal/service"
	"github.com/JustJay7/court-fetcher/pkg/logger"
)

// app is the fully wired application shared by the commands.
type app struct {
	cfg    *config.Config
	logger *logger.Logger
	db     *gorm.DB
	svc    *service.Service
}

func dbOptions(cfg *config.Config) database.Options {
	return database.Options{
		Driver: cfg.DatabaseDriver,
		Path:   cfg.DatabasePath,
		DSN:    cfg.DatabaseDSN,
		Debug:  cfg.LogLevel == "debug",
	}
}

// loadApp reads configuration and wires storage, fetchers, cache and service.
func loadApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return newApp(cfg)
}

func newApp(cfg *config.Config) (*app, error) {
	log, err := logger.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Initialize(dbOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	files, err := fetcher.NewFileStore(cfg.UploadsDir, log)
	if err != nil {
		_ = database.Close(db)
		return nil, err
	}

	registry := fetcher.NewRegistry(
		fetcher.NewDelhiHC(files, log),
	)

	svc := service.New(
		database.NewStore(db),
		registry,
		cache.NewCache(cfg.CacheSize, cfg.CacheTTL),
		files,
		log,
		service.Options{
			FetchTimeout:        cfg.FetchTimeout,
			DocumentMaxAge:      cfg.DocumentMaxAge,
			HistoryDefaultLimit: cfg.HistoryDefaultLimit,
			HistoryMaxLimit:     cfg.HistoryMaxLimit,
		},
	)

	return &app{
		cfg:    cfg,
		logger: log,
		db:     db,
		svc:    svc,
	}, nil
}

func (a *app) Close() {
	if err := database.Close(a.db); err != nil {
		a.logger.Error("Failed to close database", "error", err)
	}
	a.logger.Sync()
}
