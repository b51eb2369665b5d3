package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/unclebandit/customer-service/internal/config"
	"github.com/unclebandit/customer-service/internal/db"
	"github.com/unclebandit/customer-service/internal/logger"
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
		ServiceName: cfg.AppName + "-worker",
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
		log.Error("worker stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	if cfg.AMQPURL == "" {
		return errors.New("AMQP_URL is required for the worker")
	}

	conn, err := db.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer conn.Close()

	if cfg.DBAutoMigrate {
		if err := db.Migrate(conn); err != nil {
			return err
		}
	}

	q, err := queue.DialAMQP(cfg.AMQPURL, log)
	if err != nil {
		return err
	}
	defer q.Close()

	recorder := service.NewEventRecorder(&repository.CustomerEventRepository{DB: conn}, log)
	if err := q.Subscribe(queue.CustomerEventsTopic, recorder.Handle); err != nil {
		return err
	}

	log.Info("worker running, waiting for customer events", zap.String("topic", queue.CustomerEventsTopic))
	return waitForShutdown(ctx, q.NotifyClose())
}

// waitForShutdown blocks until ctx is cancelled or the broker connection drops.
func waitForShutdown(ctx context.Context, closed <-chan *amqp.Error) error {
	select {
	case <-ctx.Done():
		return nil
	case err, ok := <-closed:
		if !ok || err == nil {
			return errors.New("broker connection closed")
		}
		return fmt.Errorf("broker connection lost: %w", err)
	}
}
