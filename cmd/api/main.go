package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/accounts-backend/api/controllers"
	"github.com/angelmondragon/accounts-backend/api/routes"
	"github.com/angelmondragon/accounts-backend/internal/audit"
	"github.com/angelmondragon/accounts-backend/internal/notifications"
	"github.com/angelmondragon/accounts-backend/internal/users"
	"github.com/angelmondragon/accounts-backend/pkg/config"
	"github.com/angelmondragon/accounts-backend/pkg/db"
	"github.com/angelmondragon/accounts-backend/pkg/instance"
	"github.com/angelmondragon/accounts-backend/pkg/logger"
	"github.com/angelmondragon/accounts-backend/pkg/mailer"
	"github.com/angelmondragon/accounts-backend/pkg/metrics"
	"github.com/angelmondragon/accounts-backend/pkg/migrate"
	mongostore "github.com/angelmondragon/accounts-backend/pkg/mongo"
	"github.com/angelmondragon/accounts-backend/pkg/pubsub"
	"github.com/angelmondragon/accounts-backend/pkg/redis"
	"github.com/angelmondragon/accounts-backend/pkg/security"
)

// closers run in reverse order on shutdown.
type closers []func(context.Context) error

func (c *closers) add(fn func(context.Context) error) {
	*c = append(*c, fn)
}

func (c closers) closeAll(ctx context.Context) error {
	var errs error
	for i := len(c) - 1; i >= 0; i-- {
		errs = multierr.Append(errs, c[i](ctx))
	}
	return errs
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "accounts-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "accounts-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	var cleanup closers
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()
		if closeErr := cleanup.closeAll(shutdownCtx); closeErr != nil {
			logg.Error(shutdownCtx, "error releasing resources", closeErr)
		}
	}()

	ready := map[string]controllers.Pinger{}

	repo, err := openRepository(ctx, cfg, logg, &cleanup, ready)
	if err != nil {
		return err
	}

	var limiter routes.RateLimiter
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		cleanup.add(func(context.Context) error { return redisClient.Close() })
		limiter = redisClient
		ready["redis"] = redisClient
	} else {
		logg.Warn(ctx, "redis not configured, registration rate limiting disabled")
	}

	var psClient *pubsub.Client
	if cfg.Notify.DriverName() == config.NotifyDriverPubSub || cfg.PubSub.AuditEnabled() {
		psClient, err = pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			return err
		}
		cleanup.add(func(context.Context) error { return psClient.Close() })
		ready["pubsub"] = psClient
	}

	sender, err := newSender(cfg, logg, psClient)
	if err != nil {
		return err
	}
	dispatcher, err := notifications.NewDispatcher(sender, cfg.Notify.Timeout, logg)
	if err != nil {
		return err
	}
	// Registered after the clients so it runs first: in-flight sends finish
	// before their transports close.
	cleanup.add(func(context.Context) error {
		dispatcher.Wait()
		return nil
	})

	sinks := audit.Multi{audit.NewLogSink(logg)}
	if cfg.PubSub.AuditEnabled() {
		sinks = append(sinks, audit.NewPubSubSink(psClient.Topic(cfg.PubSub.AuditTopic)))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc, err := users.NewService(users.ServiceParams{
		Repo:           repo,
		Hasher:         security.NewHasher(cfg.Password),
		PasswordPolicy: cfg.PasswordPolicy,
		Audit:          sinks,
		Notifier:       dispatcher,
		Logger:         logg,
		Metrics:        metrics.NewOperationMetrics(reg),
	})
	if err != nil {
		return err
	}

	addr := ":" + cfg.App.Port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
		"store":    cfg.Store.DriverName(),
		"notify":   cfg.Notify.DriverName(),
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			Users:       svc,
			RateLimiter: limiter,
			Ready:       ready,
			Gatherer:    reg,
			Metrics:     metrics.NewHTTPMetrics(reg),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openRepository(ctx context.Context, cfg *config.Config, logg *logger.Logger, cleanup *closers, ready map[string]controllers.Pinger) (users.Repository, error) {
	if cfg.Store.DriverName() == config.StoreDriverMongo {
		client, err := mongostore.New(ctx, cfg.Mongo, logg)
		if err != nil {
			return nil, err
		}
		cleanup.add(client.Close)
		ready["store"] = client

		repo := users.NewMongoRepository(client.UsersCollection())
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		return repo, nil
	}

	client, err := db.New(ctx, cfg.Store.DriverName(), cfg.DB, logg)
	if err != nil {
		return nil, err
	}
	cleanup.add(func(context.Context) error { return client.Close() })
	ready["store"] = client

	if err := migrate.MaybeRunDev(ctx, cfg, logg, client); err != nil {
		return nil, err
	}
	return users.NewGormRepository(client.DB()), nil
}

func newSender(cfg *config.Config, logg *logger.Logger, psClient *pubsub.Client) (notifications.Sender, error) {
	switch cfg.Notify.DriverName() {
	case config.NotifyDriverSMTP:
		smtp, err := mailer.NewSMTP(cfg.SMTP)
		if err != nil {
			return nil, err
		}
		return notifications.NewEmailSender(smtp), nil
	case config.NotifyDriverPubSub:
		return notifications.NewPubSubSender(psClient.Topic(cfg.PubSub.NotificationTopic)), nil
	default:
		return notifications.NewLogSender(logg), nil
	}
}
