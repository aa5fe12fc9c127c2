package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Csp-Ai/ResearchBets-sub001/internal/config"
	"github.com/Csp-Ai/ResearchBets-sub001/internal/database"
	"github.com/Csp-Ai/ResearchBets-sub001/internal/enrichment"
	"github.com/Csp-Ai/ResearchBets-sub001/internal/repository"
)

// openRunStore returns the configured run store and a function releasing it
func openRunStore(ctx context.Context, cfg *config.Config, log *logrus.Logger) (repository.RunRepository, func(), error) {
	switch cfg.Storage.Backend {
	case config.StoragePostgres:
		db, err := database.Initialize(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		log.WithField("host", cfg.Database.Host).Info("Using postgres run store")
		return repository.NewPostgresRunRepository(db), db.Close, nil

	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{
			Addr:        cfg.Redis.Address,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			DialTimeout: time.Duration(cfg.Redis.DialTimeout) * time.Second,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.WithField("address", cfg.Redis.Address).Info("Using redis run store")
		ttl := time.Duration(cfg.Redis.TTLHours) * time.Hour
		return repository.NewRedisRunRepository(client, cfg.Redis.KeyPrefix, ttl), func() { client.Close() }, nil

	default:
		log.Info("Using in-memory run store")
		return repository.NewMemoryRunRepository(), func() {}, nil
	}
}

// buildEnricher wires the stats cache and the optional injury feed. The feed's
// client is returned so its breaker can be checked; it is nil when the feed is off.
func buildEnricher(cfg *config.Config, log *logrus.Logger) (*enrichment.Enricher, *enrichment.HTTPClient) {
	opts := []enrichment.Option{
		enrichment.WithConcurrency(cfg.Enrichment.Concurrency),
		enrichment.WithLogger(log),
	}

	if ttl := cfg.StatsCacheTTL(); ttl > 0 {
		opts = append(opts, enrichment.WithStatsProvider(enrichment.NewCachedStatsProvider(enrichment.HeuristicStats{}, ttl)))
	}

	var client *enrichment.HTTPClient
	feed := cfg.Enrichment.InjuryFeed
	if feed.Enabled {
		clientCfg := enrichment.DefaultHTTPClientConfig()
		if feed.TimeoutMillis > 0 {
			clientCfg.Timeout = time.Duration(feed.TimeoutMillis) * time.Millisecond
		}
		clientCfg.MaxRetries = feed.MaxRetries
		if feed.RateLimit > 0 {
			clientCfg.RateLimit = feed.RateLimit
		}
		if feed.CircuitBreakerMax > 0 {
			clientCfg.CircuitBreakerMax = feed.CircuitBreakerMax
		}
		client = enrichment.NewHTTPClient(clientCfg, log)
		opts = append(opts, enrichment.WithInjuryProvider(enrichment.NewHTTPInjuryProvider(client, feed.BaseURL, feed.APIKey)))
		log.WithField("base_url", feed.BaseURL).Info("Injury feed enabled")
	}

	return enrichment.NewEnricher(opts...), client
}
