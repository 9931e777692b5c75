package app

import (
	"net/http"

	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	// Domains
	"github.com/romitgit/tc-project-service/internal/domain/invite"

	// Inbound adapters
	invitehttp "github.com/romitgit/tc-project-service/internal/adapter/inbound/http/invite"

	// Ports
	"github.com/romitgit/tc-project-service/internal/port/inbound"
	"github.com/romitgit/tc-project-service/internal/port/outbound"

	// Outbound adapters
	"github.com/romitgit/tc-project-service/internal/adapter/outbound/authtoken"
	"github.com/romitgit/tc-project-service/internal/adapter/outbound/identity"
	"github.com/romitgit/tc-project-service/internal/adapter/outbound/mailer"
	natsadapter "github.com/romitgit/tc-project-service/internal/adapter/outbound/nats"
	"github.com/romitgit/tc-project-service/internal/adapter/outbound/postgres"
	redisadapter "github.com/romitgit/tc-project-service/internal/adapter/outbound/redis"

	// Infrastructure
	"github.com/romitgit/tc-project-service/internal/infra/cache"
	"github.com/romitgit/tc-project-service/internal/infra/config"
	"github.com/romitgit/tc-project-service/internal/infra/database"
	"github.com/romitgit/tc-project-service/internal/infra/events"
	"github.com/romitgit/tc-project-service/internal/infra/httpclient"
	"github.com/romitgit/tc-project-service/internal/infra/task"

	// Utils
	"github.com/romitgit/tc-project-service/internal/shared/logger"
	"github.com/romitgit/tc-project-service/internal/utils/metrics"
	"github.com/romitgit/tc-project-service/internal/utils/middleware"
)

// ===== Infrastructure Providers =====

// InfraSet provides infrastructure dependencies.
var InfraSet = wire.NewSet(
	ProvideLogger,
	ProvideMetrics,
	ProvideDatabase,
	ProvideRedisClient,
	ProvideHTTPClient,
	ProvideRateLimiter,
	ProvideEventPublisher,
	ProvideTaskRunner,
	ProvideEventBus,
	wire.Bind(new(outbound.EventPublisherPort), new(*natsadapter.Publisher)),
	wire.Bind(new(invite.TaskRunner), new(*task.Runner)),
)

// ProvideLogger creates the process logger.
func ProvideLogger(cfg *config.Config) *zap.Logger {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
}

// ProvideMetrics creates a metrics instance.
func ProvideMetrics() *metrics.Metrics {
	return metrics.New("projects")
}

// ProvideDatabase creates a database connection and migrates the invite tables.
func ProvideDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		_ = database.Close(db)
		return nil, err
	}
	return db, nil
}

// ProvideRedisClient creates a Redis client. Redis is optional: without it
// role lookups are not cached and invite creation is not throttled.
func ProvideRedisClient(cfg *config.Config, log *zap.Logger) *goredis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}
	client, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Warn("Redis connection failed, continuing without cache", zap.Error(err))
		return nil
	}
	return client
}

// ProvideHTTPClient creates a shared HTTP client with connection pooling.
func ProvideHTTPClient(cfg *config.Config) *http.Client {
	return httpclient.New(cfg.HTTPClient)
}

// ProvideRateLimiter creates a rate limiter, or nil when throttling is off.
func ProvideRateLimiter(cfg *config.Config, redis *goredis.Client) outbound.RateLimiterPort {
	if redis == nil || !cfg.RateLimit.Enabled {
		return nil
	}
	return redisadapter.NewRateLimiter(redis)
}

// ProvideEventPublisher connects to the message bus.
func ProvideEventPublisher(cfg *config.Config, log *zap.Logger) (*natsadapter.Publisher, error) {
	return natsadapter.Connect(&natsadapter.Config{
		URL:            cfg.NATS.URL,
		Name:           cfg.NATS.Name,
		Originator:     cfg.NATS.Originator,
		JetStream:      cfg.NATS.JetStream,
		PublishTimeout: cfg.NATS.PublishTimeout,
	}, log)
}

// ProvideTaskRunner creates the detached task runner.
func ProvideTaskRunner(cfg *config.Config, m *metrics.Metrics, log *zap.Logger) *task.Runner {
	runner := task.NewRunner(log, &task.Config{
		MaxConcurrent: cfg.Task.MaxConcurrent,
		Timeout:       cfg.Task.Timeout,
	})
	runner.SetObserver(m.RecordTask)
	return runner
}

// ProvideEventBus creates the in-process event bus with invite handlers registered.
func ProvideEventBus(m *metrics.Metrics, log *zap.Logger) *events.Bus {
	bus := events.NewBus(log.Named("events"))
	bus.Register(invite.NewMetricsHandler(m))
	bus.Register(invite.NewLoggingHandler(log))
	return bus
}

// ===== Invite Domain Providers =====

// InviteSet provides invite domain dependencies.
var InviteSet = wire.NewSet(
	postgres.NewInviteAdapter,
	postgres.NewMemberAdapter,
	wire.Bind(new(outbound.InviteDatabasePort), new(*postgres.InviteAdapter)),
	wire.Bind(new(outbound.MemberDatabasePort), new(*postgres.MemberAdapter)),
	ProvideIdentity,
	ProvideMailer,
	ProvideInviteDomain,
)

// ProvideIdentity creates the identity port: a circuit-broken REST client,
// timed, then fronted by the Redis role cache when one is configured.
func ProvideIdentity(cfg *config.Config, httpClient *http.Client, redis *goredis.Client, m *metrics.Metrics, log *zap.Logger) outbound.IdentityPort {
	client := identity.NewClient(httpClient, &identity.Config{
		BaseURL:          cfg.Identity.BaseURL,
		Token:            cfg.Identity.Token,
		FailureThreshold: cfg.Identity.FailureThreshold,
		CircuitTimeout:   cfg.Identity.CircuitTimeout,
		MaxEmailResults:  cfg.Invite.EmailLookupMaxResults,
	}, log)

	var port outbound.IdentityPort = identity.NewInstrumentedIdentity(client, m)
	if redis != nil && cfg.Redis.RoleCacheTTL > 0 {
		port = identity.NewCachedIdentity(port, redisadapter.NewRoleCache(redis, cfg.Redis.RoleCacheTTL), m, log)
	}
	return port
}

// ProvideMailer creates the invitation mailer.
func ProvideMailer(cfg *config.Config, publisher outbound.EventPublisherPort) outbound.InvitationMailerPort {
	return mailer.NewInvitationMailer(publisher, &mailer.Config{
		Topic:      cfg.NATS.EmailTopic,
		TemplateID: cfg.Mailer.TemplateID,
		AppURL:     cfg.Mailer.AppURL,
	})
}

// ProvideInviteDomain creates the invite domain.
func ProvideInviteDomain(
	cfg *config.Config,
	inviteDB outbound.InviteDatabasePort,
	memberDB outbound.MemberDatabasePort,
	identityPort outbound.IdentityPort,
	publisher outbound.EventPublisherPort,
	invitationMailer outbound.InvitationMailerPort,
	runner invite.TaskRunner,
	bus *events.Bus,
	log *zap.Logger,
) inbound.InviteDomain {
	return invite.NewDomain(
		inviteDB,
		memberDB,
		identityPort,
		publisher,
		invitationMailer,
		runner,
		bus,
		&invite.Config{
			CanonicalizeUnregisteredEmailAliases: cfg.Invite.CanonicalizeUnregisteredEmailAliases,
			CanonicalizeRegisteredEmailAliases:   cfg.Invite.CanonicalizeRegisteredEmailAliases,
			LookupConcurrency:                    cfg.Invite.LookupConcurrency,
			PersistConcurrency:                   cfg.Invite.PersistConcurrency,
			EmailLookupMaxResults:                cfg.Invite.EmailLookupMaxResults,
			EmailDispatchTimeout:                 cfg.Invite.EmailDispatchTimeout,
		},
		log,
	)
}

// ===== HTTP Providers =====

// HTTPSet provides HTTP handlers and middleware dependencies.
var HTTPSet = wire.NewSet(
	ProvideTokenValidator,
	wire.Bind(new(middleware.TokenValidator), new(*authtoken.Validator)),
	invitehttp.NewHandler,
)

// ProvideTokenValidator creates the bearer token validator.
func ProvideTokenValidator(cfg *config.Config) *authtoken.Validator {
	return authtoken.NewValidator(&authtoken.Config{
		Secret: cfg.Auth.JWTSecret,
		Issuer: cfg.Auth.Issuer,
	})
}

// AppSet is the complete provider set for the application.
var AppSet = wire.NewSet(
	InfraSet,
	InviteSet,
	HTTPSet,
	NewApp,
)
