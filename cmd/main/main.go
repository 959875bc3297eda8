package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orders_etl/internal/config"
	"orders_etl/internal/database"
	"orders_etl/internal/etl"
	"orders_etl/internal/kafka"
	"orders_etl/internal/logger"
	"orders_etl/internal/metrics"
	"orders_etl/internal/tracing"

	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ETL завершился с ошибкой: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	lg, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer lg.Sync()

	shutdownTracing, err := tracing.InitTracerProvider(cfg.Tracing.ServiceName, cfg.Tracing.JaegerURL)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			lg.Warn("ошибка остановки трейсинга", zap.Error(err))
		}
	}()

	// Инициализация хранилища
	storage, err := database.New(cfg.Postgres.DSN(), cfg.ETL.MigrationsPath, lg)
	if err != nil {
		return err
	}
	defer storage.Close()

	var publisher kafka.Publisher
	if cfg.Kafka.Enabled() {
		publisher = kafka.NewPublisher(cfg.Kafka)
		defer func() {
			if err := publisher.Close(); err != nil {
				lg.Warn("ошибка закрытия Kafka writer", zap.Error(err))
			}
		}()
	}

	// SIGINT/SIGTERM отменяют контекст, и незакоммиченная транзакция откатывается
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, runErr := etl.NewRunner(cfg, storage, publisher, lg).Run(ctx)

	if cfg.Metrics.PushgatewayURL != "" {
		if err := metrics.Push(cfg.Metrics.PushgatewayURL, cfg.Metrics.Job); err != nil {
			lg.Warn("метрики не отправлены", zap.Error(err))
		}
	}

	if runErr != nil {
		lg.Error("загрузка не выполнена", zap.Error(runErr))
		return runErr
	}

	fmt.Println(summary.String())
	return nil
}
