// Package app assembles the stores and use cases shared by the API server and the explorer.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jobscout/internal/config"
	"github.com/kailas-cloud/jobscout/internal/db/postgres"
	dbRedis "github.com/kailas-cloud/jobscout/internal/db/redis"
	"github.com/kailas-cloud/jobscout/internal/domain/search/request"
	"github.com/kailas-cloud/jobscout/internal/metrics"
	listingrepo "github.com/kailas-cloud/jobscout/internal/repository/listing"
	"github.com/kailas-cloud/jobscout/internal/repository/loccache"
	locrepo "github.com/kailas-cloud/jobscout/internal/repository/location"
	"github.com/kailas-cloud/jobscout/internal/transport/ipgeo"
	"github.com/kailas-cloud/jobscout/internal/usecase/geolocate"
	healthuc "github.com/kailas-cloud/jobscout/internal/usecase/health"
	searchuc "github.com/kailas-cloud/jobscout/internal/usecase/search"
	"github.com/kailas-cloud/jobscout/internal/usecase/slug"
	"github.com/kailas-cloud/jobscout/internal/usecase/taxonomy"
)

// Deps are the wired services. Cache and LocationCache are nil when caching is disabled;
// IPGeo is nil unless the ipapi provider is configured.
type Deps struct {
	DB            *postgres.DB
	Cache         *dbRedis.Store
	LocationCache *loccache.CachedCatalog
	Taxonomy      *taxonomy.Service
	Resolver      *slug.Resolver
	Search        *searchuc.Service
	Health        *healthuc.Service
	Locator       *geolocate.Locator
	IPGeo         *ipgeo.Client
	Limits        request.Limits
}

// Build connects to the stores and wires the use cases. Callers must Close the result.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Deps, error) {
	d := &Deps{
		Limits: request.Limits{
			DefaultPageSize: cfg.Search.DefaultPageSize,
			MaxPageSize:     cfg.Search.MaxPageSize,
		},
	}

	pg, err := postgres.Connect(ctx, postgres.Config{
		DSN:      cfg.Database.DSN,
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	d.DB = pg
	readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
	if err := pg.WaitForReady(ctx, readiness); err != nil {
		d.Close()
		return nil, fmt.Errorf("postgres not ready: %w", err)
	}
	logger.Info("Connected to postgres")

	var catalog taxonomy.Catalog
	switch cfg.Taxonomy.Source {
	case config.TaxonomySourceSeed:
		seed, err := locrepo.LoadSeed(cfg.Taxonomy.SeedFile)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("load location seed: %w", err)
		}
		catalog = seed
		logger.Info("Location catalog loaded from seed", zap.String("file", cfg.Taxonomy.SeedFile))
	default:
		catalog = locrepo.New(pg.Pool())
	}

	if cfg.Cache.Enabled() {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:         cfg.Cache.Addrs,
			Password:      cfg.Cache.Password,
			LocalCacheTTL: time.Duration(cfg.Cache.LocalTTLSec) * time.Second,
		})
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("create cache store: %w", err)
		}
		d.Cache = store
		if err := store.WaitForReady(ctx, readiness); err != nil {
			d.Close()
			return nil, fmt.Errorf("cache not ready: %w", err)
		}
		d.LocationCache = loccache.New(catalog, store, metrics.LocationCacheTotal, logger).
			WithKeyPrefix(cfg.Cache.KeyPrefix).
			WithTTL(time.Duration(cfg.Cache.TTLSec) * time.Second)
		catalog = d.LocationCache
		logger.Info("Location cache enabled", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	d.Taxonomy = taxonomy.New(catalog, logger).
		WithLimits(cfg.Taxonomy.PageLimit, cfg.Taxonomy.MaxChildren).
		WithErrorCounter(metrics.TaxonomyErrorsTotal)
	d.Resolver = slug.New(d.Taxonomy, logger).WithCounter(metrics.SlugResolutionsTotal)

	listings := listingrepo.New(pg.Pool(), cfg.Database.ListingsTable)
	d.Search = searchuc.New(listings, logger).
		WithBatchSize(cfg.Search.CandidateBatchSize).
		WithCounter(metrics.SearchesTotal)

	// Pass a nil interface, not a typed nil pointer, when the cache is off.
	var cachePinger healthuc.Pinger
	if d.Cache != nil {
		cachePinger = d.Cache
	}
	d.Health = healthuc.New(pg, cachePinger)

	d.Locator = geolocate.New(time.Duration(cfg.Geolocation.TimeoutMS)*time.Millisecond, logger)
	if cfg.Geolocation.Provider == config.GeolocationIPAPI {
		d.IPGeo = ipgeo.NewClient(&ipgeo.Config{
			BaseURL:       cfg.Geolocation.BaseURL,
			Timeout:       time.Duration(cfg.Geolocation.TimeoutMS) * time.Millisecond,
			RatePerMinute: cfg.Geolocation.RatePerMinute,
			Logger:        logger,
		})
	}

	return d, nil
}

// Close releases the store connections.
func (d *Deps) Close() {
	if d.Cache != nil {
		d.Cache.Close()
	}
	if d.DB != nil {
		d.DB.Close()
	}
}
