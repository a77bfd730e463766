package service

import (
	"time"

	"github.com/JustJay7/court-fetcher/internal/cache"
	"github.com/JustJay7/court-fetcher/internal/database"
	"github.com/JustJay7/court-fetcher/internal/fetcher"
	"github.com/JustJay7/court-fetcher/internal/observability"
	"github.com/JustJay7/court-fetcher/pkg/logger"
)

var tracer = observability.Tracer("service")

type Options struct {
	FetchTimeout time.Duration
	// DocumentMaxAge bounds how long a downloaded document is served from
	// disk. Zero keeps it forever.
	DocumentMaxAge      time.Duration
	HistoryDefaultLimit int
	HistoryMaxLimit     int
}

// Service coordinates court fetchers, the result cache and the store.
type Service struct {
	store    *database.Store
	fetchers *fetcher.Registry
	cache    cache.Cache
	files    *fetcher.FileStore
	logger   *logger.Logger
	opts     Options
	now      func() time.Time
}

func New(store *database.Store, fetchers *fetcher.Registry, cache cache.Cache, files *fetcher.FileStore, logger *logger.Logger, opts Options) *Service {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 30 * time.Second
	}
	if opts.HistoryDefaultLimit <= 0 {
		opts.HistoryDefaultLimit = 50
	}
	if opts.HistoryMaxLimit < opts.HistoryDefaultLimit {
		opts.HistoryMaxLimit = opts.HistoryDefaultLimit
	}

	return &Service{
		store:    store,
		fetchers: fetchers,
		cache:    cache,
		files:    files,
		logger:   logger,
		opts:     opts,
		now:      time.Now,
	}
}

func (s *Service) Courts() []fetcher.CourtInfo {
	return s.fetchers.Courts()
}

func (s *Service) CacheStats() cache.CacheStats {
	return s.cache.Stats()
}

// Healthy reports whether the database answers.
func (s *Service) Healthy() bool {
	return s.store.Ping() == nil
}
