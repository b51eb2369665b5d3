package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/unclebandit/customer-service/internal/config"
	"github.com/unclebandit/customer-service/internal/db"
	"github.com/unclebandit/customer-service/internal/logger"
)

var seedFiles = []string{
	"customers.sql",
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		ServiceName: cfg.AppName + "-seeder",
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	conn, err := db.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer conn.Close()

	if err := db.Migrate(conn); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}

	if err := seed(ctx, conn, cfg.SeedDir, seedFiles, log); err != nil {
		log.Fatal("seed", zap.Error(err))
	}
	log.Info("database seeding completed")
}

// seed executes each file under dir in order, stopping at the first failure.
func seed(ctx context.Context, conn *sql.DB, dir string, files []string, log *zap.Logger) error {
	for _, name := range files {
		path := filepath.Join(dir, name)
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if _, err := conn.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("execute %s: %w", path, err)
		}
		log.Info("seeded", zap.String("file", path))
	}
	return nil
}
