package model

import (
	"database/sql"
	"database/sql/driver"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Строки таблиц в нормализованном виде. Порядок полей задает порядок
// колонок в INSERT, теги db - имена колонок.

type CustomerRow struct {
	InternalCustomerID int64          `db:"internal_customer_id"`
	ExternalCustomerID sql.NullString `db:"external_customer_id"`
	UserID             sql.NullString `db:"user_id"`
	FirstName          sql.NullString `db:"first_name"`
	LastName           sql.NullString `db:"last_name"`
	EmailAddress       sql.NullString `db:"email_address"`
}

func (r CustomerRow) Key() string {
	return strconv.FormatInt(r.InternalCustomerID, 10)
}

type AddressRow struct {
	AddressID         int64          `db:"address_id"`
	ExternalAddressID sql.NullString `db:"external_address_id"`
	FirstName         sql.NullString `db:"first_name"`
	LastName          sql.NullString `db:"last_name"`
	AddressLine1      sql.NullString `db:"address_line1"`
	City              sql.NullString `db:"city"`
	State             sql.NullString `db:"state"`
	PostalCode        sql.NullString `db:"postal_code"`
	CountryCode       sql.NullString `db:"country_code"`
}

func (r AddressRow) Key() string {
	return strconv.FormatInt(r.AddressID, 10)
}

type OrderRow struct {
	InternalOrderID   int64               `db:"internal_order_id"`
	ExternalOrderID   sql.NullString      `db:"external_order_id"`
	OrderDateUTC      time.Time           `db:"order_date_utc"`
	LastUpdatedUTC    time.Time           `db:"last_updated_utc"`
	DeadlineUTC       sql.NullTime        `db:"deadline_utc"`
	OrderStatus       sql.NullString      `db:"order_status"`
	InvoiceStatus     sql.NullString      `db:"invoice_status"`
	ShipmentStatus    sql.NullString      `db:"shipment_status"`
	BillingCustomerID sql.NullInt64       `db:"billing_customer_id"`
	BillingAddressID  sql.NullInt64       `db:"billing_address_id"`
	ShippingAddressID sql.NullInt64       `db:"shipping_address_id"`
	SubTotal          decimal.NullDecimal `db:"subtotal"`
	ShippingTotal     decimal.NullDecimal `db:"shipping_total"`
	DiscountTotal     decimal.NullDecimal `db:"discount_total"`
	OrderTotal        decimal.NullDecimal `db:"order_total"`
	CurrencyCode      sql.NullString      `db:"currency_code"`
	Channel           sql.NullString      `db:"channel"`
	Comments          sql.NullString      `db:"comments"`
	Raw               RawDocument         `db:"raw"`
}

func (r OrderRow) Key() string {
	return strconv.FormatInt(r.InternalOrderID, 10)
}

type LineItemRow struct {
	InternalLineItemID int64               `db:"internal_line_item_id"`
	InternalOrderID    int64               `db:"internal_order_id"`
	SKU                sql.NullString      `db:"sku"`
	ProductName        sql.NullString      `db:"product_name"`
	ItemName           sql.NullString      `db:"item_name"`
	Description        sql.NullString      `db:"description"`
	QuantityOrdered    decimal.NullDecimal `db:"quantity_ordered"`
	QuantityInvoiced   decimal.NullDecimal `db:"quantity_invoiced"`
	QuantityShipped    decimal.NullDecimal `db:"quantity_shipped"`
	QuantityCancelled  decimal.NullDecimal `db:"quantity_cancelled"`
	QuantityReturned   decimal.NullDecimal `db:"quantity_returned"`
	UnitPrice          decimal.NullDecimal `db:"unit_price"`
	UnitDiscount       decimal.NullDecimal `db:"unit_discount"`
	SubTotal           decimal.NullDecimal `db:"subtotal"`
	TotalTax           decimal.NullDecimal `db:"total_tax"`
	Total              decimal.NullDecimal `db:"total"`
	IsPreOrder         sql.NullBool        `db:"is_preorder"`
}

func (r LineItemRow) Key() string {
	return strconv.FormatInt(r.InternalLineItemID, 10)
}

type OrderTaxRow struct {
	InternalOrderID   int64               `db:"internal_order_id"`
	InternalTaxRateID int64               `db:"internal_tax_rate_id"`
	TaxAmount         decimal.NullDecimal `db:"tax_amount"`
	TaxRate           decimal.NullDecimal `db:"tax_rate"`
	TaxType           sql.NullString      `db:"tax_type"`
	BackendName       sql.NullString      `db:"backend_name"`
	PublicTaxName     sql.NullString      `db:"public_tax_name"`
}

func (r OrderTaxRow) Key() string {
	return strconv.FormatInt(r.InternalOrderID, 10) + "/" + strconv.FormatInt(r.InternalTaxRateID, 10)
}

// RawDocument - исходный JSON заказа для колонки jsonb.
// lib/pq передает []byte как bytea, поэтому значение отдается строкой.
type RawDocument []byte

func (d RawDocument) Value() (driver.Value, error) {
	if len(d) == 0 {
		return nil, nil
	}
	return string(d), nil
}
