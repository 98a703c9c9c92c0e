// Package container wires the application together with samber/do provider
// packages. Each *Package function registers one concern; binaries compose
// the packages they need.
package container

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jaevor/go-nanoid"
	"github.com/linkcut/linkcut/internal/analytics"
	analyticsstore "github.com/linkcut/linkcut/internal/analytics/store"
	"github.com/linkcut/linkcut/internal/auth"
	"github.com/linkcut/linkcut/internal/handlers"
	"github.com/linkcut/linkcut/internal/health"
	"github.com/linkcut/linkcut/internal/messaging"
	"github.com/linkcut/linkcut/internal/middleware"
	"github.com/linkcut/linkcut/internal/ratelimit"
	"github.com/linkcut/linkcut/internal/shortlink"
	"github.com/linkcut/linkcut/internal/store"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
)

// Options holds the service configuration, populated by humacli from flags
// and environment variables.
type Options struct {
	Port          int    `default:"8888"           help:"Port to listen on"                                          short:"p"`
	PublicBaseURL string `default:""               help:"Public base URL for short links (default http://localhost:<port>)"`
	CodeLength    int    `default:"6"              help:"Length of generated short codes"                            short:"c"`
	DatabaseURL   string `default:""               help:"PostgreSQL connection string; in-memory store when empty"`
	RedisAddr     string `default:"localhost:6379" help:"Redis server address"                                       short:"r"`
	AdminSecret   string `default:"admin123"       help:"Shared admin secret for stats and analytics"`
	QRSize        int    `default:"220"            help:"QR code render size in pixels"`
	LogFormat     string `default:"console"        help:"Log format: console or json"`
}

// cacheTTL bounds how long resolved URLs live in the Redis cache. Links are
// immutable, so the TTL only caps memory, not staleness.
const cacheTTL = time.Hour

const analyticsConsumerGroup = "linkcut-analytics"

// LoggerPackage provides the zap logger.
func LoggerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*zap.Logger, error) {
		options := do.MustInvoke[*Options](i)

		if options.LogFormat == "json" {
			return zap.NewProduction()
		}

		return zap.NewDevelopment()
	})
}

// RedisPackage provides the shared Redis client.
func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*redis.Client, error) {
		options := do.MustInvoke[*Options](i)

		return redis.NewClient(&redis.Options{Addr: options.RedisAddr}), nil
	})
}

// PostgresPackage provides the pgx pool, or nil when no database is
// configured; consumers fall back to in-memory implementations.
func PostgresPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*pgxpool.Pool, error) {
		options := do.MustInvoke[*Options](i)
		if options.DatabaseURL == "" {
			return nil, nil
		}

		return pgxpool.New(context.Background(), options.DatabaseURL)
	})
}

// RepositoryPackage provides the short link repository: postgres when
// configured, in-memory otherwise, wrapped in the Redis resolve cache.
// It also provides the registry built on top.
func RepositoryPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (shortlink.Repository, error) {
		pool := do.MustInvoke[*pgxpool.Pool](i)

		var repo shortlink.Repository

		if pool != nil {
			pgStore := store.NewPostgresStore(pool)
			if err := pgStore.EnsureSchema(context.Background()); err != nil {
				return nil, fmt.Errorf("ensure schema: %w", err)
			}

			repo = pgStore
		} else {
			repo = store.NewMemoryStore()
		}

		redisClient := do.MustInvoke[*redis.Client](i)

		return store.NewRedisCacheRepository(repo, redisClient, cacheTTL), nil
	})

	do.Provide(injector, func(i *do.Injector) (*shortlink.Registry, error) {
		options := do.MustInvoke[*Options](i)
		repo := do.MustInvoke[shortlink.Repository](i)

		generator, err := nanoid.Standard(options.CodeLength)
		if err != nil {
			return nil, fmt.Errorf("code generator: %w", err)
		}

		return shortlink.NewRegistry(repo, generator), nil
	})
}

// RateLimitPackage provides the rate limit store and the default limiter.
func RateLimitPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (ratelimit.Store, error) {
		redisClient := do.MustInvoke[*redis.Client](i)

		return store.NewRateLimitRedisStore(redisClient), nil
	})

	do.Provide(injector, func(i *do.Injector) (ratelimit.Limiter, error) {
		limitStore := do.MustInvoke[ratelimit.Store](i)

		// Default for endpoints without their own limit metadata
		return ratelimit.NewSlidingWindowLimiter(limitStore, 60, time.Minute), nil
	})
}

// PublisherGroupPackage provides the watermill publisher and the typed
// publish functions for analytics events.
func PublisherGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		redisClient := do.MustInvoke[*redis.Client](i)

		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: redisClient},
			watermill.NopLogger{},
		)
		if err != nil {
			return nil, err
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[analytics.LinkCreatedEvent], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[analytics.LinkCreatedEvent](group.Publisher(), analytics.TopicLinkCreated), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[analytics.LinkVisitedEvent], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[analytics.LinkVisitedEvent](group.Publisher(), analytics.TopicLinkVisited), nil
	})
}

// HTTPPackage provides the router and the API with all routes registered.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		options := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)

		api := humachi.New(router, huma.DefaultConfig("linkcut", "1.0.0"))

		limiter := do.MustInvoke[ratelimit.Limiter](i)
		limitStore := do.MustInvoke[ratelimit.Store](i)
		api.UseMiddleware(middleware.RequestMeta(api))
		api.UseMiddleware(middleware.RateLimiter(api, limiter, limitStore, logger))

		baseURL := options.PublicBaseURL
		if baseURL == "" {
			baseURL = fmt.Sprintf("http://localhost:%d", options.Port)
		}

		verifier := auth.NewStaticVerifier(options.AdminSecret)

		linkHandler := handlers.NewLinkHandler(
			do.MustInvoke[*shortlink.Registry](i),
			do.MustInvoke[shortlink.Repository](i),
			verifier,
			baseURL,
			options.QRSize,
			do.MustInvoke[messaging.Publish[analytics.LinkCreatedEvent]](i),
			do.MustInvoke[messaging.Publish[analytics.LinkVisitedEvent]](i),
			logger,
		)

		redisClient := do.MustInvoke[*redis.Client](i)
		pool := do.MustInvoke[*pgxpool.Pool](i)

		var dbChecker health.Checker
		if pool != nil {
			dbChecker = health.NewPostgresChecker(pool)
		}

		health.RegisterRoutes(api, health.NewHandler(health.NewRedisChecker(redisClient), dbChecker))
		handlers.RegisterRoutes(api, linkHandler, auth.AdminGuard(api, verifier))

		return api, nil
	})
}

// ConsumerGroupPackage provides the analytics consumer group for the
// consumer binary.
func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (analytics.Store, error) {
		pool := do.MustInvoke[*pgxpool.Pool](i)
		logger := do.MustInvoke[*zap.Logger](i)

		if pool == nil {
			return analyticsstore.NewNoop(logger), nil
		}

		eventStore := analyticsstore.NewPostgres(pool)
		if err := eventStore.EnsureSchema(context.Background()); err != nil {
			return nil, fmt.Errorf("ensure event schema: %w", err)
		}

		return eventStore, nil
	})

	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		redisClient := do.MustInvoke[*redis.Client](i)
		logger := do.MustInvoke[*zap.Logger](i)
		eventStore := do.MustInvoke[analytics.Store](i)

		subscriber, err := redisstream.NewSubscriber(
			redisstream.SubscriberConfig{
				Client:        redisClient,
				ConsumerGroup: analyticsConsumerGroup,
			},
			watermill.NopLogger{},
		)
		if err != nil {
			return nil, err
		}

		group := messaging.NewConsumerGroup(subscriber, logger)

		group.Add(messaging.NewConsumer(
			subscriber,
			analytics.TopicLinkCreated,
			func(ctx context.Context, event *analytics.LinkCreatedEvent) error {
				return eventStore.SaveLinkCreated(ctx, event)
			},
			logger,
		))

		group.Add(messaging.NewConsumer(
			subscriber,
			analytics.TopicLinkVisited,
			func(ctx context.Context, event *analytics.LinkVisitedEvent) error {
				return eventStore.SaveLinkVisited(ctx, event)
			},
			logger,
		))

		return group, nil
	})
}
