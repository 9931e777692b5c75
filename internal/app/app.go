package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	invitehttp "github.com/romitgit/tc-project-service/internal/adapter/inbound/http/invite"
	"github.com/romitgit/tc-project-service/internal/adapter/outbound/postgres"
	natsadapter "github.com/romitgit/tc-project-service/internal/adapter/outbound/nats"
	"github.com/romitgit/tc-project-service/internal/infra/config"
	"github.com/romitgit/tc-project-service/internal/infra/database"
	"github.com/romitgit/tc-project-service/internal/infra/task"
	"github.com/romitgit/tc-project-service/internal/port/outbound"
	"github.com/romitgit/tc-project-service/internal/utils/metrics"
	"github.com/romitgit/tc-project-service/internal/utils/middleware"
)

// App represents the application.
type App struct {
	config    *config.Config
	db        *gorm.DB
	redis     *goredis.Client
	publisher *natsadapter.Publisher
	runner    *task.Runner
	router    *gin.Engine
	logger    *zap.Logger
}

// NewApp assembles the application from its dependencies and builds the router.
func NewApp(
	cfg *config.Config,
	log *zap.Logger,
	m *metrics.Metrics,
	db *gorm.DB,
	redis *goredis.Client,
	publisher *natsadapter.Publisher,
	runner *task.Runner,
	validator middleware.TokenValidator,
	limiter outbound.RateLimiterPort,
	inviteHandler *invitehttp.Handler,
) *App {
	a := &App{
		config:    cfg,
		db:        db,
		redis:     redis,
		publisher: publisher,
		runner:    runner,
		logger:    log,
	}
	a.router = a.setupRouter(m, validator, limiter, inviteHandler)
	return a
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	log := ProvideLogger(cfg)
	m := ProvideMetrics()

	db, err := ProvideDatabase(cfg)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	publisher, err := ProvideEventPublisher(cfg, log)
	if err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("init event publisher: %w", err)
	}

	redis := ProvideRedisClient(cfg, log)
	runner := ProvideTaskRunner(cfg, m, log)
	bus := ProvideEventBus(m, log)

	inviteDomain := ProvideInviteDomain(
		cfg,
		postgres.NewInviteAdapter(db),
		postgres.NewMemberAdapter(db),
		ProvideIdentity(cfg, ProvideHTTPClient(cfg), redis, m, log),
		publisher,
		ProvideMailer(cfg, publisher),
		runner,
		bus,
		log,
	)

	return NewApp(
		cfg,
		log,
		m,
		db,
		redis,
		publisher,
		runner,
		ProvideTokenValidator(cfg),
		ProvideRateLimiter(cfg, redis),
		invitehttp.NewHandler(inviteDomain),
	), nil
}

// setupRouter creates and configures the Gin router.
func (a *App) setupRouter(m *metrics.Metrics, validator middleware.TokenValidator, limiter outbound.RateLimiterPort, inviteHandler *invitehttp.Handler) *gin.Engine {
	if a.config.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(middleware.Recovery(a.logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(a.logger))
	r.Use(middleware.Metrics(m))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(a.config.Server.AllowedOrigins...)))

	r.GET("/health", a.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v5 := r.Group("/v5")
	v5.Use(middleware.RequireAuth(validator))

	var throttle []gin.HandlerFunc
	if limiter != nil {
		throttle = append(throttle, middleware.RateLimit(limiter, middleware.RateLimitConfig{
			Limit:  a.config.RateLimit.Limit,
			Window: a.config.RateLimit.Window,
		}, a.logger))
	}
	inviteHandler.RegisterRoutes(v5, throttle...)

	return r
}

func (a *App) health(c *gin.Context) {
	if a.db != nil {
		if err := database.Ping(c.Request.Context(), a.db); err != nil {
			a.logger.Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Router returns the HTTP router.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Stop drains detached tasks and releases resources. Tasks still running when
// ctx expires are canceled.
func (a *App) Stop(ctx context.Context) error {
	var errs []error

	if a.runner != nil {
		if err := a.runner.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop task runner: %w", err))
		}
	}

	if a.publisher != nil {
		a.publisher.Close()
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}

	if a.db != nil {
		if err := database.Close(a.db); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}

	_ = a.logger.Sync()

	return errors.Join(errs...)
}
