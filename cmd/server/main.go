package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/unclebandit/customer-service/internal/cache"
	"github.com/unclebandit/customer-service/internal/config"
	"github.com/unclebandit/customer-service/internal/controller"
	"github.com/unclebandit/customer-service/internal/db"
	"github.com/unclebandit/customer-service/internal/handler"
	"github.com/unclebandit/customer-service/internal/logger"
	"github.com/unclebandit/customer-service/internal/metrics"
	"github.com/unclebandit/customer-service/internal/queue"
	"github.com/unclebandit/customer-service/internal/repository"
	"github.com/unclebandit/customer-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		ServiceName: cfg.AppName,
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	conn, err := db.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer conn.Close()

	if cfg.DBAutoMigrate {
		if err := db.Migrate(conn); err != nil {
			return err
		}
		log.Info("migrations applied")
	}

	q, closeQueue, err := buildQueue(cfg, log)
	if err != nil {
		return err
	}
	defer closeQueue()

	var customerRepo repository.CustomerRepositoryInterface = &repository.CustomerRepository{DB: conn}
	if cfg.CacheEnabled() {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, reads go straight to the database", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		customerRepo = cache.NewCustomerRepository(customerRepo, client, cfg.CacheTTL, log)
	}

	m := metrics.New()
	customerService := service.NewCustomerService(customerRepo, q, m, log)

	router := handler.NewRouter(handler.RouterDeps{
		Customers: &controller.CustomerController{CustomerService: customerService, Log: log},
		Metrics:   m,
		Log:       log,
		DB:        conn,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return serve(ctx, srv, cfg.ShutdownTimeout, log)
}

// buildQueue picks RabbitMQ when AMQP_URL is set. Without a broker, events go
// to an in-process queue whose only subscriber logs them.
func buildQueue(cfg config.Config, log *zap.Logger) (queue.Queue, func(), error) {
	if cfg.AMQPURL != "" {
		q, err := queue.DialAMQP(cfg.AMQPURL, log)
		if err != nil {
			return nil, nil, err
		}
		return q, func() { _ = q.Close() }, nil
	}

	q := queue.NewInMemoryQueue(log)
	if err := q.Subscribe(queue.CustomerEventsTopic, service.NewEventLogger(log)); err != nil {
		return nil, nil, err
	}
	return q, q.Wait, nil
}

// serve runs srv until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, srv *http.Server, timeout time.Duration, log *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", zap.Duration("timeout", timeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
