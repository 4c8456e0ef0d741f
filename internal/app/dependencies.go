package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	feedhttp "github.com/agora/server/internal/adapter/inbound/http/feed"
	"github.com/agora/server/internal/domain/feed"
	"github.com/agora/server/internal/infra/cache"
	"github.com/agora/server/internal/infra/config"
	"github.com/agora/server/internal/port/outbound"
	"github.com/agora/server/internal/utils/logger"
	"github.com/agora/server/internal/utils/metrics"
)

// Dependencies holds all injected dependencies.
type Dependencies struct {
	Config     *config.Config
	DB         *gorm.DB
	Logger     *logger.Logger
	ZapLogger  *zap.Logger
	Registry   *prometheus.Registry
	Metrics    *metrics.Metrics
	Tracer     trace.TracerProvider
	CacheStore outbound.CacheStorePort
	Cache      *cache.Service

	// Domains
	FeedDomain feed.FeedDomain

	// HTTP Handlers
	FeedHandler  *feedhttp.FeedHandler
	AdminHandler *feedhttp.AdminHandler
}
