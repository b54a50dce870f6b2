// Package services wires the pipeline components into one container.
package services

import (
	"github.com/amaumene/gosubfetch/internal/acquire"
	"github.com/amaumene/gosubfetch/internal/cache"
	"github.com/amaumene/gosubfetch/internal/catalog"
	"github.com/amaumene/gosubfetch/internal/config"
	"github.com/amaumene/gosubfetch/internal/constants"
	"github.com/amaumene/gosubfetch/internal/database"
	"github.com/amaumene/gosubfetch/internal/pipeline"
	"github.com/amaumene/gosubfetch/internal/subhost"
	"github.com/amaumene/gosubfetch/pkg/httputil"
	"github.com/amaumene/gosubfetch/pkg/logger"
	"github.com/amaumene/gosubfetch/pkg/ratelimiter"
)

// Container holds all application services for dependency injection.
type Container struct {
	Resolver *catalog.Resolver
	Host     *subhost.OpenSubtitles
	Acquirer *acquire.Acquirer
	Pipeline *pipeline.Pipeline
	Cache    *cache.LRUCache[string]
	DB       database.Database
	Logger   logger.Logger
	Cleanup  *CleanupService
}

// NewContainer builds every service from cfg. db may be nil, in which case
// catalog ids are only cached in memory and nothing is purged from storage.
func NewContainer(cfg *config.Config, db database.Database, log logger.Logger) *Container {
	client := httputil.NewHTTPClient(cfg.HTTPTimeout)
	catalogCache := cache.New[string](cfg.CacheSize, cfg.CacheTTL)

	google := catalog.NewGoogle(
		cfg.SearchURL,
		cfg.UserAgent,
		client,
		ratelimiter.NewTokenBucket(constants.SearchRateBurst, int64(cfg.SearchRateLimit)),
		log,
	)
	resolver := catalog.NewResolver(google, catalogCache, db, log)

	host := subhost.NewOpenSubtitles(
		cfg.SubtitleHostURL,
		cfg.SubtitleLanguage,
		cfg.UserAgent,
		client,
		ratelimiter.NewTokenBucket(constants.SubtitleHostRateBurst, constants.SubtitleHostRateLimit),
		log,
	)
	acquirer := acquire.NewAcquirer(client, cfg.UserAgent, log)

	return &Container{
		Resolver: resolver,
		Host:     host,
		Acquirer: acquirer,
		Pipeline: pipeline.New(resolver, host, acquirer, log),
		Cache:    catalogCache,
		DB:       db,
		Logger:   log,
		Cleanup:  NewCleanupService(db, catalogCache, cfg.SubtitlesDir, cfg.CacheTTL, log),
	}
}
