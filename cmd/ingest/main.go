package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"fundholdings/internal/config"
	"fundholdings/internal/db"
	"fundholdings/internal/logger"
	gormrepository "fundholdings/internal/repository/gorm"
	"fundholdings/internal/service"
)

// One-shot ingestion batch for external schedulers (cron, systemd timers).
func main() {
	cfgPath := os.Getenv("FH_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("FH_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.Ping(dbConn); err != nil {
		logger.Fatal("db unreachable", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ingest := &service.IngestService{
		Repo:   gormrepository.New(dbConn.Gorm),
		Config: cfg.Ingest,
		Logger: logger,
	}
	if _, err := ingest.Run(ctx); err != nil {
		logger.Fatal("ingest batch failed", zap.Error(err))
	}
}
