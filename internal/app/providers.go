package app

import (
	"context"
	"fmt"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	// Domains
	"github.com/agora/server/internal/domain/feed"

	// Inbound adapters
	feedhttp "github.com/agora/server/internal/adapter/inbound/http/feed"

	// Ports
	"github.com/agora/server/internal/port/outbound"

	// Outbound adapters
	"github.com/agora/server/internal/adapter/outbound/memory"
	"github.com/agora/server/internal/adapter/outbound/postgres"
	redisadapter "github.com/agora/server/internal/adapter/outbound/redis"

	// Infrastructure
	"github.com/agora/server/internal/infra/cache"
	"github.com/agora/server/internal/infra/config"
	"github.com/agora/server/internal/infra/database"
	"github.com/agora/server/internal/infra/tracing"

	// Utils
	"github.com/agora/server/internal/utils/logger"
	"github.com/agora/server/internal/utils/metrics"
)

// ===== Infrastructure Providers =====

// InfraSet provides infrastructure dependencies.
var InfraSet = wire.NewSet(
	ProvideLogger,
	ProvideZapLogger,
	ProvideRegistry,
	ProvideMetrics,
	ProvideTracerProvider,
	ProvideDatabase,
	ProvideRedisClient,
	ProvideCacheStore,
	ProvideCacheService,
)

// ProvideLogger creates a logger instance.
func ProvideLogger(cfg *config.Config) *logger.Logger {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
}

// ProvideZapLogger creates a zap logger instance.
func ProvideZapLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.NewZapLogger(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
}

// ProvideRegistry creates the Prometheus registry served at the metrics path.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates a metrics instance.
func ProvideMetrics(cfg *config.Config, reg *prometheus.Registry) *metrics.Metrics {
	return metrics.NewWithRegisterer(cfg.Metrics.Namespace, reg)
}

// ProvideTracerProvider creates the tracer provider. Spans are exported only
// when tracing is enabled.
func ProvideTracerProvider(cfg *config.Config, zapLog *zap.Logger) (trace.TracerProvider, func(), error) {
	tp, shutdown, err := tracing.New(context.Background(), &cfg.Tracing)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			zapLog.Warn("shutdown tracer provider", zap.Error(err))
		}
	}
	return tp, cleanup, nil
}

// ProvideDatabase creates a database connection. The memory driver needs
// none and yields a nil *gorm.DB.
func ProvideDatabase(cfg *config.Config, zapLog *zap.Logger) (*gorm.DB, func(), error) {
	if cfg.Database.Driver == "memory" {
		return nil, func() {}, nil
	}

	db, err := database.New(&cfg.Database, zapLog.Named("gorm"))
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := database.Close(db); err != nil {
			zapLog.Warn("close database", zap.Error(err))
		}
	}

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			cleanup()
			return nil, nil, err
		}
	}
	return db, cleanup, nil
}

// ProvideRedisClient creates a Redis client. It returns nil when the cache
// backend is not redis or Redis cannot be reached.
func ProvideRedisClient(cfg *config.Config, zapLog *zap.Logger) (goredis.UniversalClient, func()) {
	if cfg.Cache.Backend != "redis" || cfg.Redis.Address == "" {
		return nil, func() {}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Redis.DialTimeout+cfg.Redis.ReadTimeout)
	defer cancel()

	client, err := cache.NewRedisClient(ctx, &cfg.Redis)
	if err != nil {
		zapLog.Warn("Redis connection failed, continuing with in-process cache", zap.Error(err))
		return nil, func() {}
	}
	return client, func() { _ = client.Close() }
}

// ProvideCacheStore selects the cache store backing the cache service.
func ProvideCacheStore(
	cfg *config.Config,
	client goredis.UniversalClient,
	m *metrics.Metrics,
	zapLog *zap.Logger,
) outbound.CacheStorePort {
	if client == nil {
		return memory.NewCacheStore()
	}

	var store outbound.CacheStorePort = redisadapter.NewCacheStore(client, cfg.Cache.KeyPrefix)
	if cfg.Breaker.Enabled {
		store = redisadapter.NewBreakerCacheStore(store, redisadapter.BreakerOptions{
			Name:             "redis",
			MaxRequests:      cfg.Breaker.MaxRequests,
			Interval:         cfg.Breaker.Interval,
			Timeout:          cfg.Breaker.Timeout,
			FailureThreshold: cfg.Breaker.FailureThreshold,
		}, zapLog, m)
	}
	return store
}

// ProvideCacheService creates the cache-aside service.
func ProvideCacheService(
	cfg *config.Config,
	store outbound.CacheStorePort,
	m *metrics.Metrics,
	tp trace.TracerProvider,
	zapLog *zap.Logger,
) *cache.Service {
	return cache.NewService(store,
		cache.WithDefaultTTL(cfg.Cache.DefaultTTL),
		cache.WithRecorder(m),
		cache.WithTracer(tp.Tracer(cache.TracerName)),
		cache.WithLogger(zapLog),
	)
}

// ===== Feed Domain Providers =====

// FeedSet provides feed domain dependencies.
var FeedSet = wire.NewSet(
	ProvideFeedRepositories,
	wire.FieldsOf(new(*FeedRepositories), "Posts", "Comments", "Tx"),
	ProvideFeedDomain,
)

// FeedRepositories groups the feed persistence ports of one driver so the
// transaction port covers the same stores as the repositories.
type FeedRepositories struct {
	Posts    outbound.PostDatabasePort
	Comments outbound.CommentDatabasePort
	Tx       outbound.FeedTransactionPort
}

// ProvideFeedRepositories creates the feed repositories for the configured driver.
func ProvideFeedRepositories(db *gorm.DB) *FeedRepositories {
	if db == nil {
		posts := memory.NewPostRepository()
		comments := memory.NewCommentRepository()
		return &FeedRepositories{
			Posts:    posts,
			Comments: comments,
			Tx:       memory.NewTransactor(posts, comments),
		}
	}
	return &FeedRepositories{
		Posts:    postgres.NewPostAdapter(db),
		Comments: postgres.NewCommentAdapter(db),
		Tx:       postgres.NewTransactionAdapter(db),
	}
}

// ProvideFeedDomain creates the feed domain.
func ProvideFeedDomain(
	cfg *config.Config,
	postDB outbound.PostDatabasePort,
	commentDB outbound.CommentDatabasePort,
	tx outbound.FeedTransactionPort,
	cacheSvc *cache.Service,
	m *metrics.Metrics,
	zapLog *zap.Logger,
) feed.FeedDomain {
	return feed.NewFeedDomain(
		postDB,
		commentDB,
		tx,
		cacheSvc,
		&feed.Config{
			DefaultPageSize: cfg.Pagination.DefaultPageSize,
			MaxPageSize:     cfg.Pagination.MaxPageSize,
			FirstPageTTL:    cfg.Feed.FirstPageTTL,
			MaxBodyLength:   cfg.Feed.MaxBodyLength,
			MaxTags:         cfg.Feed.MaxTags,
		},
		m,
		zapLog,
	)
}

// ===== HTTP Handler Providers =====

// HandlerSet provides all HTTP handlers.
var HandlerSet = wire.NewSet(
	feedhttp.NewFeedHandler,
	feedhttp.NewAdminHandler,
)

// ===== Master Set =====

// AppSet is the master provider set that includes all dependencies.
var AppSet = wire.NewSet(
	InfraSet,
	FeedSet,
	HandlerSet,
)

func describeStore(store outbound.CacheStorePort) string {
	switch store.(type) {
	case *redisadapter.BreakerCacheStore:
		return "redis+breaker"
	case *redisadapter.CacheStore:
		return "redis"
	case *memory.CacheStore:
		return "memory"
	default:
		return fmt.Sprintf("%T", store)
	}
}
