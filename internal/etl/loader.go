// Package etl связывает маппинг и upsert в один прогон загрузки.
package etl

import (
	"context"
	"errors"
	"fmt"

	"orders_etl/internal/database"
	"orders_etl/internal/mapper"
	"orders_etl/internal/metrics"
	"orders_etl/internal/model"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Summary - число строк, отправленных в каждую таблицу.
type Summary struct {
	Customers  int
	Addresses  int
	Orders     int
	LineItems  int
	OrderTaxes int
}

func (s Summary) String() string {
	return fmt.Sprintf("customers=%d, addresses=%d, orders=%d, line_items=%d, order_taxes=%d",
		s.Customers, s.Addresses, s.Orders, s.LineItems, s.OrderTaxes)
}

// Counts возвращает те же числа с именами таблиц в качестве ключей.
func (s Summary) Counts() map[string]int {
	return map[string]int{
		database.CustomersTable.Table:  s.Customers,
		database.AddressesTable.Table:  s.Addresses,
		database.OrdersTable.Table:     s.Orders,
		database.LineItemsTable.Table:  s.LineItems,
		database.OrderTaxesTable.Table: s.OrderTaxes,
	}
}

// Loader записывает пакет в уже открытую транзакцию.
type Loader struct {
	upserter *database.Upserter
	opts     mapper.Options
	logger   *zap.Logger
	tracer   trace.Tracer
}

func NewLoader(upserter *database.Upserter, opts mapper.Options, logger *zap.Logger) *Loader {
	return &Loader{
		upserter: upserter,
		opts:     opts,
		logger:   logger,
		tracer:   otel.Tracer("etl-loader"),
	}
}

// Load маппит пакет и выполняет upsert в порядке customers, addresses,
// orders, order_line_items, order_taxes. Порядок обязателен: внешние ключи
// схемы проверяются сразу. Ошибки не перехватываются и не повторяются;
// коммит и откат остаются за владельцем транзакции.
func (l *Loader) Load(ctx context.Context, ex database.Execer, records []model.Record) (Summary, error) {
	ctx, span := l.tracer.Start(ctx, "Loader.Load", trace.WithAttributes(attribute.Int("records", len(records))))
	defer span.End()

	rows, err := mapper.MapBatch(records, l.opts)
	if err != nil {
		var me *mapper.MappingError
		if errors.As(err, &me) {
			metrics.MappingErrors.WithLabelValues(string(me.Entity)).Inc()
		}
		span.RecordError(err)
		return Summary{}, err
	}

	var s Summary
	steps := []struct {
		entity mapper.Entity
		count  *int
		run    func(context.Context) (int, error)
	}{
		{mapper.EntityCustomer, &s.Customers, func(ctx context.Context) (int, error) {
			return l.upserter.UpsertCustomers(ctx, ex, rows.Customers)
		}},
		{mapper.EntityAddress, &s.Addresses, func(ctx context.Context) (int, error) {
			return l.upserter.UpsertAddresses(ctx, ex, rows.Addresses)
		}},
		{mapper.EntityOrder, &s.Orders, func(ctx context.Context) (int, error) {
			return l.upserter.UpsertOrders(ctx, ex, rows.Orders)
		}},
		{mapper.EntityLineItem, &s.LineItems, func(ctx context.Context) (int, error) {
			return l.upserter.UpsertLineItems(ctx, ex, rows.LineItems)
		}},
		{mapper.EntityOrderTax, &s.OrderTaxes, func(ctx context.Context) (int, error) {
			return l.upserter.UpsertOrderTaxes(ctx, ex, rows.Taxes)
		}},
	}

	for _, step := range steps {
		n, err := l.runStep(ctx, step.entity, step.run)
		if err != nil {
			span.RecordError(err)
			return Summary{}, err
		}
		*step.count = n
	}

	return s, nil
}

func (l *Loader) runStep(ctx context.Context, entity mapper.Entity, run func(context.Context) (int, error)) (int, error) {
	ctx, span := l.tracer.Start(ctx, "Loader.upsert", trace.WithAttributes(attribute.String("entity", string(entity))))
	defer span.End()

	n, err := run(ctx)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("%s: %w", entity, err)
	}

	span.SetAttributes(attribute.Int("rows", n))
	metrics.RowsUpserted.WithLabelValues(string(entity)).Add(float64(n))
	l.logger.Debug("upsert выполнен", zap.String("entity", string(entity)), zap.Int("rows", n))
	return n, nil
}
