package padayon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/streadway/amqp"

	"github.com/Eka2r/Padayon/internal/cache"
	"github.com/Eka2r/Padayon/internal/config"
	"github.com/Eka2r/Padayon/internal/generative"
	"github.com/Eka2r/Padayon/internal/lib/sl"
	"github.com/Eka2r/Padayon/internal/migrations"
	"github.com/Eka2r/Padayon/internal/rabbitmq"
	"github.com/Eka2r/Padayon/internal/storage"
)

const shutdownTimeout = 15 * time.Second

// App владеет ресурсами процесса и HTTP-сервером.
type App struct {
	server *http.Server
	logger *slog.Logger
	cfg    *config.Config
	core   *Core
	db     *storage.Storage
	cache  *cache.Cache

	conn      *amqp.Connection
	publishCh *amqp.Channel
	consumeCh *amqp.Channel
}

type brokerPinger struct {
	conn *amqp.Connection
}

func (b brokerPinger) Ping(_ context.Context) error {
	if b.conn.IsClosed() {
		return amqp.ErrClosed
	}
	return nil
}

// New connects storage, cache and, when configured, the broker, then wires
// the core.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "padayon.New"

	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a := &App{
		logger: logger,
		cfg:    cfg,
		db:     db,
		cache:  cacheRedis,
	}

	health := map[string]Pinger{"postgres": db, "redis": cacheRedis}
	deps := CoreDeps{
		Repo:      db,
		Cache:     cacheRedis,
		Generator: newGenerator(cfg.Generative),
		Registry:  newRegistry(),
		Health:    health,
	}

	if cfg.BrokerEnabled() {
		if err := a.connectBroker(ctx); err != nil {
			a.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		deps.Events = rabbitmq.NewPublisher(a.publishCh, cfg.RabbitMQ.Exchange)
		health["rabbitmq"] = brokerPinger{conn: a.conn}
	} else {
		logger.Info("rabbitmq disabled, mutations refresh live feeds directly")
	}

	a.core, err = NewCore(cfg, deps, logger)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      a.core.Handler,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return a, nil
}

func newGenerator(cfg config.Generative) *generative.Client {
	return generative.New(cfg.APIKey).
		WithBaseURL(cfg.BaseURL).
		WithModel(cfg.Model).
		WithTimeout(cfg.Timeout)
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func (a *App) connectBroker(ctx context.Context) error {
	cfg := a.cfg.RabbitMQ
	conn, err := rabbitmq.Connect(ctx, cfg.URL, cfg.Retries, cfg.Delay)
	if err != nil {
		return err
	}
	a.conn = conn

	queues := rabbitmq.EventQueues(cfg.Queue)
	if a.publishCh, err = rabbitmq.SetupChannel(conn, cfg.Exchange, queues); err != nil {
		return err
	}
	if a.consumeCh, err = rabbitmq.SetupChannel(conn, cfg.Exchange, queues); err != nil {
		return err
	}
	return nil
}

// Run serves HTTP, projects broker events into live feeds and runs the
// janitor until ctx is done.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var consumerDone <-chan struct{}
	if a.consumeCh != nil {
		done, err := rabbitmq.Consume(ctx, a.consumeCh, a.cfg.RabbitMQ.Queue, a.cfg.RabbitMQ.Workers, a.core.Hub.Project, a.logger)
		if err != nil {
			a.close()
			return fmt.Errorf("padayon.Run: %w", err)
		}
		consumerDone = done
	}

	go a.core.Janitor.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case runErr = <-errCh:
	case <-ctx.Done():
		timeoutCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()
		a.logger.Info("shutting down HTTP server gracefully")
		runErr = a.server.Shutdown(timeoutCtx)
	}

	cancel()
	if consumerDone != nil {
		<-consumerDone
	}
	a.close()
	return runErr
}

func (a *App) close() {
	for _, ch := range []*amqp.Channel{a.publishCh, a.consumeCh} {
		if ch == nil {
			continue
		}
		if err := ch.Close(); err != nil {
			a.logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close redis", sl.Err(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("failed to close storage", sl.Err(err))
		}
	}
}
