package etl

import (
	"context"
	"fmt"
	"time"

	"orders_etl/internal/config"
	"orders_etl/internal/database"
	"orders_etl/internal/input"
	"orders_etl/internal/kafka"
	"orders_etl/internal/mapper"
	"orders_etl/internal/metrics"
	"orders_etl/internal/quality"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Runner выполняет один прогон: чтение файла, проверки качества,
// загрузка в одной транзакции и отчет.
type Runner struct {
	inputPath string
	storage   database.Storage
	loader    *Loader
	publisher kafka.Publisher // nil - отчет не отправляется
	logger    *zap.Logger
}

func NewRunner(cfg *config.Config, storage database.Storage, publisher kafka.Publisher, logger *zap.Logger) *Runner {
	loader := NewLoader(
		database.NewUpserter(cfg.ETL.BatchSize),
		mapper.Options{LinkAddresses: cfg.ETL.LinkAddresses},
		logger,
	)
	return &Runner{
		inputPath: cfg.ETL.InputPath,
		storage:   storage,
		loader:    loader,
		publisher: publisher,
		logger:    logger,
	}
}

// Run возвращает итог загрузки. При любой ошибке транзакция откатывается,
// и в БД не остается ни одной строки из этого прогона.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := r.logger.With(zap.String("run_id", runID), zap.String("input", r.inputPath))

	summary, warnings, err := r.run(ctx, log)
	metrics.RunDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RunsTotal.WithLabelValues("failed").Inc()
		return Summary{}, err
	}
	metrics.RunsTotal.WithLabelValues("success").Inc()
	log.Info("загрузка завершена", zap.Stringer("summary", summary), zap.Duration("duration", time.Since(start)))

	if r.publisher != nil {
		report := kafka.Report{
			RunID:      runID,
			InputPath:  r.inputPath,
			Counts:     summary.Counts(),
			Warnings:   warnings,
			FinishedAt: time.Now().UTC(),
		}
		// Ошибка отправки не отменяет закоммиченную загрузку
		if err := r.publisher.Publish(ctx, report); err != nil {
			log.Error("не удалось отправить отчет о загрузке", zap.Error(err))
		}
	}
	return summary, nil
}

func (r *Runner) run(ctx context.Context, log *zap.Logger) (Summary, int, error) {
	records, err := input.Load(r.inputPath)
	if err != nil {
		return Summary{}, 0, err
	}
	log.Info("прочитан входной файл", zap.Int("records", len(records)))

	violations := quality.Check(records)
	for _, v := range violations {
		metrics.QualityViolations.WithLabelValues(v.Check).Inc()
		log.Warn("проверка качества данных", zap.Stringer("violation", v))
	}

	var summary Summary
	err = r.storage.WithTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		var loadErr error
		summary, loadErr = r.loader.Load(ctx, tx, records)
		return loadErr
	})
	if err != nil {
		return Summary{}, 0, fmt.Errorf("загрузка отменена: %w", err)
	}
	return summary, len(violations), nil
}
