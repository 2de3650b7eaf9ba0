package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"

	"lifedash/internal/catalog"
	"lifedash/internal/command/adapters/fallback"
	"lifedash/internal/command/adapters/gemini"
	"lifedash/internal/command/adapters/rules"
	commandmetrics "lifedash/internal/command/metrics"
	"lifedash/internal/command/ports"
	commandservice "lifedash/internal/command/service"
	entrymetrics "lifedash/internal/entries/metrics"
	entrypublisher "lifedash/internal/entries/publisher"
	entryservice "lifedash/internal/entries/service"
	entrymemory "lifedash/internal/entries/store/memory"
	entrypostgres "lifedash/internal/entries/store/postgres"
	entryredis "lifedash/internal/entries/store/redis"
	jwttoken "lifedash/internal/jwt_token"
	"lifedash/internal/platform/config"
	"lifedash/internal/platform/kafka"
	redisclient "lifedash/internal/platform/redis"
	ratelimitmetrics "lifedash/internal/ratelimit/metrics"
	ratelimitmw "lifedash/internal/ratelimit/middleware"
	ratelimitmemory "lifedash/internal/ratelimit/store/memory"
	ratelimitredis "lifedash/internal/ratelimit/store/redis"
	audit "lifedash/pkg/platform/audit"
	auditpublisher "lifedash/pkg/platform/audit/publisher"
	auditmemory "lifedash/pkg/platform/audit/store/memory"
	auditpostgres "lifedash/pkg/platform/audit/store/postgres"
	"lifedash/pkg/platform/circuit"
	authmw "lifedash/pkg/platform/middleware/auth"
)

type probe func(ctx context.Context) error

// app holds the wired services and the resources main must release.
type app struct {
	commands   *commandservice.Service
	entries    *entryservice.Service
	auditStore audit.Store
	limiter    *ratelimitmw.Middleware
	tokens     authmw.JWTValidator
	producer   *kafka.Producer
	redis      *redisclient.Client
	probes     map[string]probe
	closers    []func()
}

func (a *app) onClose(fn func()) {
	a.closers = append(a.closers, fn)
}

// redisClient connects on first use so the entry store and the limiter share
// one pool.
func (a *app) redisClient(ctx context.Context, cfg config.RedisConfig) (*redisclient.Client, error) {
	if a.redis != nil {
		return a.redis, nil
	}
	client, err := redisclient.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.redis = client
	a.onClose(func() { _ = client.Close() })
	a.probes["redis"] = client.Health
	return client, nil
}

// close releases resources in reverse order of acquisition.
func (a *app) close(log *slog.Logger) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	log.Info("resources released")
}

func buildApp(ctx context.Context, cfg *config.Config, cat *catalog.Catalog, log *slog.Logger) (_ *app, err error) {
	a := &app{probes: map[string]probe{}}
	defer func() {
		if err != nil {
			a.close(log)
		}
	}()

	language, err := buildLanguage(ctx, cfg.Language, cat, log)
	if err != nil {
		return nil, err
	}

	store, err := buildEntryStore(ctx, cfg, a)
	if err != nil {
		return nil, err
	}

	entryOpts := []entryservice.Option{
		entryservice.WithLogger(log),
		entryservice.WithMetrics(entrymetrics.New()),
	}
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewProducer(kafka.Config{
			Brokers:  cfg.Kafka.Brokers,
			Topic:    cfg.Kafka.Topic,
			ClientID: "lifedash",
		})
		if err != nil {
			return nil, err
		}
		a.producer = producer
		a.onClose(func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			producer.Close(flushCtx)
		})
		if err := producer.EnsureTopic(ctx, 3, 1); err != nil {
			log.Warn("could not ensure entry topic", "topic", producer.Topic(), "error", err)
		}
		a.probes["kafka"] = producer.Health
		entryOpts = append(entryOpts, entryservice.WithPublisher(entrypublisher.New(producer)))
	}

	a.entries, err = entryservice.New(store, cat, entryOpts...)
	if err != nil {
		return nil, err
	}

	auditor, err := buildAudit(ctx, cfg.Audit, log, a)
	if err != nil {
		return nil, err
	}

	if err := buildLimiter(ctx, cfg, log, a); err != nil {
		return nil, err
	}

	pipeline := commandservice.NewPipeline(cat, language, commandservice.PipelineConfig{
		MaxInputRunes:  cfg.Command.MaxInputRunes,
		MaxEntities:    cfg.Command.MaxEntities,
		MinConfidence:  cfg.Command.MinConfidence,
		ExtractTimeout: cfg.Command.ExtractTimeout,
	})
	a.commands, err = commandservice.New(pipeline, a.entries,
		commandservice.WithLogger(log),
		commandservice.WithMetrics(commandmetrics.New()),
		commandservice.WithAuditPublisher(auditor),
		commandservice.WithValidationWorkers(cfg.Command.ValidationWorkers),
	)
	if err != nil {
		return nil, err
	}

	if cfg.Auth.SigningKey != "" {
		jwt := jwttoken.NewJWTService(cfg.Auth.SigningKey, cfg.Auth.Issuer, cfg.Auth.Audience)
		a.tokens = jwttoken.NewJWTServiceAdapter(jwt)
	}
	return a, nil
}

func buildLanguage(ctx context.Context, cfg config.LanguageConfig, cat *catalog.Catalog, log *slog.Logger) (ports.LanguageService, error) {
	local := rules.New(cat)
	if cfg.Backend != "gemini" {
		return local, nil
	}

	client, err := gemini.NewClient(ctx, cfg.APIKey)
	if err != nil {
		return nil, err
	}
	remote := gemini.New(client.Models, cat,
		gemini.WithModel(cfg.Model),
		gemini.WithRateLimit(cfg.RequestsPerSec, cfg.Burst),
	)
	breaker := circuit.New("gemini",
		circuit.WithFailureThreshold(cfg.BreakerFailures),
		circuit.WithProbeInterval(cfg.BreakerProbe),
	)
	return fallback.New(remote, local, breaker, log), nil
}

func buildEntryStore(ctx context.Context, cfg *config.Config, a *app) (entryservice.Store, error) {
	switch cfg.Storage.Backend {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connect entry database: %w", err)
		}
		a.onClose(pool.Close)
		a.probes["postgres"] = pool.Ping
		store := entrypostgres.New(pool)
		if err := store.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate entry database: %w", err)
		}
		return store, nil
	case "redis":
		client, err := a.redisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return entryredis.New(client.Client), nil
	default:
		return entrymemory.New(), nil
	}
}

func buildAudit(ctx context.Context, cfg config.AuditConfig, log *slog.Logger, a *app) (*auditpublisher.Publisher, error) {
	var store audit.Store
	switch cfg.Backend {
	case "postgres":
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open audit database: %w", err)
		}
		a.onClose(func() { _ = db.Close() })
		a.probes["audit"] = db.PingContext
		pg := auditpostgres.New(db)
		if err := pg.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate audit database: %w", err)
		}
		store = pg
	default:
		store = auditmemory.NewInMemoryStore()
	}
	a.auditStore = store

	pub := auditpublisher.NewPublisher(store,
		auditpublisher.WithAsyncBuffer(cfg.BufferSize),
		auditpublisher.WithLogger(log),
		auditpublisher.WithMetrics(auditpublisher.NewMetrics()),
		auditpublisher.WithSampler(auditpublisher.NewSampler(cfg.SampleRate)),
	)
	a.onClose(pub.Close)
	return pub, nil
}

func buildLimiter(ctx context.Context, cfg *config.Config, log *slog.Logger, a *app) error {
	if cfg.RateLimit.Limit == 0 {
		log.Info("command rate limiting disabled")
		return nil
	}

	var store ratelimitmw.Store
	switch cfg.RateLimit.Backend {
	case "redis":
		client, err := a.redisClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		store = ratelimitredis.New(client.Client)
	default:
		store = ratelimitmemory.New()
	}
	a.limiter = ratelimitmw.New(store, cfg.RateLimit.Limit, cfg.RateLimit.Window, log,
		ratelimitmw.WithMetrics(ratelimitmetrics.New()),
	)
	return nil
}
