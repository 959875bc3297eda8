package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

// setupStorageWithMock настраивает postgresStorage с моком sqlx.DB
func setupStorageWithMock(t *testing.T) (Storage, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err, "не удалось создать sqlmock")
	sqlxDB := sqlx.NewDb(db, "postgres")

	storage := &postgresStorage{
		db:     sqlxDB,
		logger: zap.NewNop(),
		tracer: otel.Tracer("postgres-storage-test"),
	}
	return storage, mock
}

func TestPostgresStorage_Close(t *testing.T) {
	storage, mock := setupStorageWithMock(t)

	mock.ExpectClose()

	err := storage.Close()
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_Close_Error(t *testing.T) {
	storage, mock := setupStorageWithMock(t)
	mockErr := errors.New("close error")

	mock.ExpectClose().WillReturnError(mockErr)

	err := storage.Close()
	assert.Error(t, err)
	assert.Equal(t, mockErr, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_WithTx_Commit(t *testing.T) {
	storage, mock := setupStorageWithMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO customers`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := storage.WithTx(context.Background(), func(ctx context.Context, tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO customers (internal_customer_id) VALUES (1)")
		return err
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_WithTx_RollbackOnError(t *testing.T) {
	storage, mock := setupStorageWithMock(t)
	loadErr := errors.New("order: ошибка upsert в orders: fk violation")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := storage.WithTx(context.Background(), func(ctx context.Context, tx *sqlx.Tx) error {
		return loadErr
	})

	assert.ErrorIs(t, err, loadErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_WithTx_BeginError(t *testing.T) {
	storage, mock := setupStorageWithMock(t)

	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	called := false
	err := storage.WithTx(context.Background(), func(ctx context.Context, tx *sqlx.Tx) error {
		called = true
		return nil
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ошибка начала транзакции")
	assert.False(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_WithTx_CommitError(t *testing.T) {
	storage, mock := setupStorageWithMock(t)

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

	err := storage.WithTx(context.Background(), func(ctx context.Context, tx *sqlx.Tx) error {
		return nil
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ошибка коммита транзакции")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_WithTx_RollbackOnPanic(t *testing.T) {
	storage, mock := setupStorageWithMock(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.PanicsWithValue(t, "boom", func() {
		_ = storage.WithTx(context.Background(), func(ctx context.Context, tx *sqlx.Tx) error {
			panic("boom")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}
