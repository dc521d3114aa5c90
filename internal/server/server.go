// Package server exposes the HTTP intake surface: gateway webhooks,
// batch reconciliation, and audit listing.
package server

import (
	"context"
	"errors"
	"net/http"

	auditdomain "github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/audit/domain"
	"github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/config"
	"github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/observability/logger"
	"github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/observability/metrics"
	"github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/observability/tracing"
	"github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/payment/adapters"
	paymentdomain "github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/payment/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("server",
	fx.Provide(NewHTTPMetrics),
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(engine *gin.Engine, s *Server) {
		s.RegisterRoutes(engine)
	}),
	fx.Invoke(RunHTTP),
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Cfg        config.Config
	PaymentSvc paymentdomain.Service
	AuditSvc   auditdomain.Service
	Adapters   *adapters.Registry
}

type Server struct {
	db             *gorm.DB
	log            *zap.Logger
	cfg            config.Config
	paymentSvc     paymentdomain.Service
	auditSvc       auditdomain.Service
	adapters       *adapters.Registry
	webhookLimiter *webhookLimiter
}

func NewServer(p Params) *Server {
	return &Server{
		db:             p.DB,
		log:            p.Log.Named("server"),
		cfg:            p.Cfg,
		paymentSvc:     p.PaymentSvc,
		auditSvc:       p.AuditSvc,
		adapters:       p.Adapters,
		webhookLimiter: newWebhookLimiter(p.Cfg.WebhookRateLimit, p.Cfg.WebhookRateWindow),
	}
}

func NewHTTPMetrics(cfg config.Config) *metrics.HTTPMetrics {
	return metrics.NewHTTPMetrics(prometheus.DefaultRegisterer, metrics.Config{
		ServiceName: tracing.ServiceName,
		Environment: cfg.Environment,
	})
}

func NewEngine(cfg config.Config, httpMetrics *metrics.HTTPMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	// Tracing runs first so the request logger and handlers see the span.
	engine.Use(tracing.GinMiddleware())
	engine.Use(metrics.GinMiddleware(httpMetrics))
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	return engine
}

func (s *Server) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/healthz", s.Health)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api")
	api.POST("/webhooks/:provider", s.IngestWebhook)
	api.POST("/reconciliations/batch", s.ReconcileBatch)
	api.GET("/audit-logs", s.ListAuditLogs)
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func RunHTTP(lc fx.Lifecycle, engine *gin.Engine, log *zap.Logger, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
