package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"orders_etl/internal/metrics"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// TxFunc выполняется внутри транзакции. Ошибка откатывает транзакцию.
type TxFunc func(ctx context.Context, tx *sqlx.Tx) error

// Storage владеет подключением к БД и границами транзакций.
type Storage interface {
	WithTx(ctx context.Context, fn TxFunc) error
	Close() error
}

// postgresStorage - реализация Storage для PostgreSQL.
type postgresStorage struct {
	db     *sqlx.DB
	logger *zap.Logger
	tracer trace.Tracer
}

// New подключается к БД и, если задан migrationsPath, применяет миграции.
func New(dbURL, migrationsPath string, logger *zap.Logger) (Storage, error) {
	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к БД: %w", err)
	}

	if migrationsPath != "" {
		if err := runMigrations(dbURL, migrationsPath, logger); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ошибка применения миграций: %w", err)
		}
	}

	return NewWithDB(db, logger), nil
}

// NewWithDB оборачивает уже открытое подключение.
func NewWithDB(db *sqlx.DB, logger *zap.Logger) Storage {
	return &postgresStorage{
		db:     db,
		logger: logger,
		tracer: otel.Tracer("postgres-storage"),
	}
}

// runMigrations выполняет миграции БД до последней версии.
func runMigrations(dbURL, migrationsPath string, logger *zap.Logger) error {
	logger.Info("применение миграций", zap.String("path", migrationsPath))

	m, err := migrate.New(fmt.Sprintf("file://%s", migrationsPath), dbURL)
	if err != nil {
		return fmt.Errorf("не удалось создать экземпляр миграции: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("не удалось выполнить миграции: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("не удалось получить версию миграции: %w", err)
	}
	if dirty {
		logger.Warn("БД в состоянии dirty, рекомендуется проверка", zap.Uint("version", version))
	}

	logger.Info("миграции применены", zap.Uint("version", version))
	return nil
}

// WithTx открывает транзакцию, выполняет fn и коммитит.
// При ошибке или панике внутри fn транзакция откатывается.
func (s *postgresStorage) WithTx(ctx context.Context, fn TxFunc) (err error) {
	ctx, span := s.tracer.Start(ctx, "DB.WithTx")
	defer span.End()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		metrics.DBErrors.WithLabelValues("begin").Inc()
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				s.logger.Error("ошибка отката транзакции", zap.NamedError("cause", err), zap.Error(rbErr))
			}
		}
	}()

	if err = fn(ctx, tx); err != nil {
		metrics.DBErrors.WithLabelValues("load").Inc()
		return err
	}

	if err = tx.Commit(); err != nil {
		metrics.DBErrors.WithLabelValues("commit").Inc()
		return fmt.Errorf("ошибка коммита транзакции: %w", err)
	}
	return nil
}

// Close закрывает соединение с БД.
func (s *postgresStorage) Close() error {
	return s.db.Close()
}
