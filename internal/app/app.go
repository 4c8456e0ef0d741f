package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/agora/server/cmd/server/docs" // swagger docs
	"github.com/agora/server/internal/infra/config"
	"github.com/agora/server/internal/utils/middleware"
)

const healthTimeout = 2 * time.Second

// App represents the application.
type App struct {
	config  *config.Config
	deps    *Dependencies
	router  *gin.Engine
	cleanup func()
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	deps, cleanup, err := InitializeDependencies(cfg)
	if err != nil {
		return nil, fmt.Errorf("init dependencies: %w", err)
	}

	app := &App{
		config:  cfg,
		deps:    deps,
		cleanup: cleanup,
	}
	app.router = app.setupRouter()
	app.registerRoutes()

	deps.ZapLogger.Info("application initialized",
		zap.String("database", cfg.Database.Driver),
		zap.String("cache", describeStore(deps.CacheStore)),
	)
	return app, nil
}

func (a *App) setupRouter() *gin.Engine {
	switch a.config.Server.Mode {
	case gin.DebugMode, gin.TestMode:
		gin.SetMode(a.config.Server.Mode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Apply global middleware
	r.Use(middleware.Recovery(a.deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.ContextLogger(a.deps.Logger))
	r.Use(middleware.Logging(a.deps.Logger))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowOrigins:     a.config.CORS.AllowOrigins,
		AllowCredentials: a.config.CORS.AllowCredentials,
		MaxAge:           a.config.CORS.MaxAge,
	}))
	if a.config.Metrics.Enabled {
		r.Use(middleware.Metrics(a.deps.Metrics))
		r.GET(a.config.Metrics.Path, gin.WrapH(promhttp.HandlerFor(a.deps.Registry, promhttp.HandlerOpts{})))
	}

	r.GET("/health", a.health)
	if a.config.Swagger.Enabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
	}

	return r
}

func (a *App) registerRoutes() {
	v1 := a.router.Group("/api/v1")

	if a.config.Idempotency.Required {
		v1.Use(middleware.IdempotencyRequired())
	}
	if a.config.Idempotency.Enabled {
		v1.Use(middleware.Idempotency(a.deps.Cache, middleware.IdempotencyConfig{
			TTL:    a.config.Idempotency.TTL,
			Logger: a.deps.ZapLogger,
		}))
	}

	a.deps.FeedHandler.RegisterRoutes(v1)
	a.deps.AdminHandler.RegisterRoutes(v1)
}

// health reports database reachability and cache state. A cache outage
// degrades the service without failing it.
func (a *App) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	status := http.StatusOK
	resp := gin.H{"status": "ok"}

	if a.deps.DB != nil {
		sqlDB, err := a.deps.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			status = http.StatusServiceUnavailable
			resp["status"] = "unavailable"
			resp["database"] = "unreachable"
		}
	}

	if b, ok := a.deps.CacheStore.(interface{ State() string }); ok {
		state := b.State()
		resp["cache_breaker"] = state
		if state != "closed" && status == http.StatusOK {
			resp["status"] = "degraded"
		}
	}
	if p, ok := a.deps.CacheStore.(interface{ Ping(context.Context) error }); ok {
		if err := p.Ping(ctx); err != nil {
			resp["cache"] = "unreachable"
			if status == http.StatusOK {
				resp["status"] = "degraded"
			}
		}
	}

	c.JSON(status, resp)
}

// Router returns the HTTP handler.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Stop releases connections held by the application.
func (a *App) Stop() {
	if a.cleanup != nil {
		a.cleanup()
	}

	if a.deps.ZapLogger != nil {
		_ = a.deps.ZapLogger.Sync()
	}
}
