package database

import (
	"context"

	"orders_etl/internal/model"
)

// Политика перезаписи при повторной загрузке.
// Колонки вне UpdateColumns пишутся один раз - при вставке.
var (
	CustomersTable = TableSpec{
		Table:         "customers",
		ConflictKeys:  []string{"internal_customer_id"},
		UpdateColumns: []string{"first_name", "last_name", "email_address"},
	}

	// Адрес обновляется целиком.
	AddressesTable = TableSpec{
		Table:        "addresses",
		ConflictKeys: []string{"address_id"},
		UpdateColumns: []string{
			"external_address_id", "first_name", "last_name", "address_line1",
			"city", "state", "postal_code", "country_code",
		},
	}

	// У заказа меняются только статусы и время обновления;
	// суммы и raw остаются такими, какими были при первой вставке.
	OrdersTable = TableSpec{
		Table:         "orders",
		ConflictKeys:  []string{"internal_order_id"},
		UpdateColumns: []string{"order_status", "shipment_status", "last_updated_utc"},
	}

	// Позиция обновляется целиком, включая перенос в другой заказ.
	LineItemsTable = TableSpec{
		Table:        "order_line_items",
		ConflictKeys: []string{"internal_line_item_id"},
		UpdateColumns: []string{
			"internal_order_id", "sku", "product_name", "item_name", "description",
			"quantity_ordered", "quantity_invoiced", "quantity_shipped",
			"quantity_cancelled", "quantity_returned",
			"unit_price", "unit_discount", "subtotal", "total_tax", "total", "is_preorder",
		},
	}

	OrderTaxesTable = TableSpec{
		Table:         "order_taxes",
		ConflictKeys:  []string{"internal_order_id", "internal_tax_rate_id"},
		UpdateColumns: []string{"tax_amount", "tax_rate", "tax_type", "backend_name", "public_tax_name"},
	}
)

// Upserter применяет политику каждой таблицы внутри транзакции вызывающего.
// Сам он ничего не коммитит.
type Upserter struct {
	batchSize int
}

func NewUpserter(batchSize int) *Upserter {
	return &Upserter{batchSize: batchSize}
}

func (u *Upserter) UpsertCustomers(ctx context.Context, ex Execer, rows []model.CustomerRow) (int, error) {
	return Upsert(ctx, ex, CustomersTable, rows, u.batchSize)
}

func (u *Upserter) UpsertAddresses(ctx context.Context, ex Execer, rows []model.AddressRow) (int, error) {
	return Upsert(ctx, ex, AddressesTable, rows, u.batchSize)
}

func (u *Upserter) UpsertOrders(ctx context.Context, ex Execer, rows []model.OrderRow) (int, error) {
	return Upsert(ctx, ex, OrdersTable, rows, u.batchSize)
}

func (u *Upserter) UpsertLineItems(ctx context.Context, ex Execer, rows []model.LineItemRow) (int, error) {
	return Upsert(ctx, ex, LineItemsTable, rows, u.batchSize)
}

func (u *Upserter) UpsertOrderTaxes(ctx context.Context, ex Execer, rows []model.OrderTaxRow) (int, error) {
	return Upsert(ctx, ex, OrderTaxesTable, rows, u.batchSize)
}
