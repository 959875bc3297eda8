package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"strings"
	"testing"

	"orders_etl/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingExecer запоминает запросы вместо выполнения.
type recordingExecer struct {
	queries []string
	args    [][]any
}

func (r *recordingExecer) ExecContext(_ context.Context, query string, args ...any) (sql.Result, error) {
	r.queries = append(r.queries, query)
	r.args = append(r.args, args)
	return sqlmock.NewResult(0, 1), nil
}

func customer(id int64, email string) model.CustomerRow {
	return model.CustomerRow{
		InternalCustomerID: id,
		EmailAddress:       sql.NullString{String: email, Valid: email != ""},
	}
}

func anyArgs(n int) []driver.Value {
	args := make([]driver.Value, n)
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	return args
}

func TestUpsert_EmptyInput(t *testing.T) {
	ex := &recordingExecer{}

	n, err := Upsert(context.Background(), ex, CustomersTable, []model.CustomerRow{}, 10)

	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, ex.queries, "пустой вход не должен обращаться к БД")
}

func TestUpsert_BuildsOnConflictUpdate(t *testing.T) {
	ex := &recordingExecer{}

	n, err := Upsert(context.Background(), ex, CustomersTable, []model.CustomerRow{
		customer(1, "a@example.com"),
		customer(2, "b@example.com"),
	}, 10)

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, ex.queries, 1)

	q := ex.queries[0]
	assert.True(t, strings.HasPrefix(q, "INSERT INTO customers (internal_customer_id, external_customer_id, user_id, first_name, last_name, email_address) VALUES"), q)
	assert.Contains(t, q, "($1, $2, $3, $4, $5, $6), ($7, $8, $9, $10, $11, $12)")
	assert.True(t, strings.HasSuffix(q, "ON CONFLICT (internal_customer_id) DO UPDATE SET first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name, email_address = EXCLUDED.email_address"), q)
	assert.NotContains(t, q, "user_id = EXCLUDED")
	assert.Len(t, ex.args[0], 12)
	assert.Equal(t, int64(1), ex.args[0][0])
	assert.Equal(t, int64(2), ex.args[0][6])
}

func TestUpsert_CompositeKey(t *testing.T) {
	ex := &recordingExecer{}

	_, err := Upsert(context.Background(), ex, OrderTaxesTable, []model.OrderTaxRow{
		{InternalOrderID: 42, InternalTaxRateID: 7},
		{InternalOrderID: 43, InternalTaxRateID: 7},
	}, 10)

	require.NoError(t, err)
	require.Len(t, ex.queries, 1)
	assert.Contains(t, ex.queries[0], "ON CONFLICT (internal_order_id, internal_tax_rate_id) DO UPDATE SET tax_amount = EXCLUDED.tax_amount")
	assert.Len(t, ex.args[0], 14, "две разные пары ключей не схлопываются")
}

func TestUpsert_OrdersKeepFinancialColumns(t *testing.T) {
	clause := onConflict(OrdersTable)

	assert.Equal(t, "ON CONFLICT (internal_order_id) DO UPDATE SET order_status = EXCLUDED.order_status, shipment_status = EXCLUDED.shipment_status, last_updated_utc = EXCLUDED.last_updated_utc", clause)
	for _, col := range []string{"subtotal", "order_total", "raw", "invoice_status", "billing_customer_id"} {
		assert.NotContains(t, clause, col+" = EXCLUDED")
	}
}

func TestUpsert_EveryTableUpdatesOnConflict(t *testing.T) {
	for _, spec := range []TableSpec{CustomersTable, AddressesTable, OrdersTable, LineItemsTable, OrderTaxesTable} {
		assert.NotEmpty(t, spec.UpdateColumns, spec.Table)
		assert.Contains(t, onConflict(spec), "DO UPDATE SET", spec.Table)
	}
}

func TestUpsert_CollapsesDuplicateKeys(t *testing.T) {
	ex := &recordingExecer{}

	n, err := Upsert(context.Background(), ex, CustomersTable, []model.CustomerRow{
		customer(1, "old@example.com"),
		customer(2, "b@example.com"),
		customer(1, "new@example.com"),
	}, 10)

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, ex.queries, 1)
	args := ex.args[0]
	require.Len(t, args, 12)
	// Место первого вхождения, значение последнего
	assert.Equal(t, int64(1), args[0])
	assert.Equal(t, sql.NullString{String: "new@example.com", Valid: true}, args[5])
	assert.Equal(t, int64(2), args[6])
}

func TestUpsert_Chunks(t *testing.T) {
	ex := &recordingExecer{}
	rows := make([]model.CustomerRow, 5)
	for i := range rows {
		rows[i] = customer(int64(i+1), "")
	}

	n, err := Upsert(context.Background(), ex, CustomersTable, rows, 2)

	require.NoError(t, err)
	assert.Equal(t, 5, n)
	require.Len(t, ex.queries, 3)
	assert.Len(t, ex.args[0], 12)
	assert.Len(t, ex.args[1], 12)
	assert.Len(t, ex.args[2], 6)
}

func TestUpsert_DefaultBatchSize(t *testing.T) {
	ex := &recordingExecer{}
	rows := make([]model.AddressRow, DefaultBatchSize+1)
	for i := range rows {
		rows[i] = model.AddressRow{AddressID: int64(i + 1)}
	}

	n, err := Upsert(context.Background(), ex, AddressesTable, rows, 0)

	require.NoError(t, err)
	assert.Equal(t, DefaultBatchSize+1, n)
	assert.Len(t, ex.queries, 2)
}

func TestUpsert_BatchCappedByBindParams(t *testing.T) {
	ex := &recordingExecer{}
	rows := make([]model.OrderRow, 3500)
	for i := range rows {
		rows[i] = model.OrderRow{InternalOrderID: int64(i + 1)}
	}

	n, err := Upsert(context.Background(), ex, OrdersTable, rows, 5000)

	require.NoError(t, err)
	assert.Equal(t, 3500, n)
	require.Len(t, ex.queries, 2)
	assert.Len(t, ex.args[0], (MaxBindParams/19)*19)
	assert.Len(t, ex.args[1], (3500-MaxBindParams/19)*19)
	for _, args := range ex.args {
		assert.LessOrEqual(t, len(args), MaxBindParams)
	}
}

func TestChunkSize(t *testing.T) {
	assert.Equal(t, 3449, chunkSize[model.OrderRow](5000))
	assert.Equal(t, 3855, chunkSize[model.LineItemRow](1_000_000))
	assert.Equal(t, 200, chunkSize[model.OrderRow](200))
	assert.Equal(t, DefaultBatchSize, chunkSize[model.CustomerRow](0))
}

func TestUpsert_ExecError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dbErr := errors.New(`insert or update on table "orders" violates foreign key constraint`)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders (")).
		WithArgs(anyArgs(19)...).
		WillReturnError(dbErr)

	n, err := Upsert(context.Background(), db, OrdersTable, []model.OrderRow{{InternalOrderID: 42}}, 10)

	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, dbErr)
	assert.Contains(t, err.Error(), "ошибка upsert в orders")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpserter_LineItems(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_line_items (")).
		WithArgs(anyArgs(17)...).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := NewUpserter(100).UpsertLineItems(context.Background(), db, []model.LineItemRow{
		{InternalLineItemID: 5001, InternalOrderID: 42},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
