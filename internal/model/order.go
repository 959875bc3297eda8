package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Record - один заказ из входного файла в исходной (вложенной) форме.
// Обязательные поля помечены тегом validate:"required", остальные опциональны.
// Вложенные сущности проверяются отдельно, поэтому у них validate:"-".
type Record struct {
	InternalOrderID    *int64              `json:"InternalOrderId" validate:"required"`
	ExternalOrderID    FlexString          `json:"ExternalOrderId"`
	OrderDateUTC       *Timestamp          `json:"OrderDateUtc" validate:"required"`
	LastUpdatedDateUTC *Timestamp          `json:"LastUpdatedDateUtc" validate:"required"`
	DeadlineDateUTC    *Timestamp          `json:"DeadlineDateUtc,omitempty"`
	OrderStatus        *string             `json:"OrderStatus,omitempty"`
	InvoiceStatus      *string             `json:"InvoiceStatus,omitempty"`
	ShipmentStatus     *string             `json:"ShipmentStatus,omitempty"`
	BillingCustomer    *Customer           `json:"BillingCustomer,omitempty" validate:"-"`
	BillingAddress     *Address            `json:"BillingAddress,omitempty" validate:"-"`
	ShippingAddress    *Address            `json:"ShippingAddress,omitempty" validate:"-"`
	SubTotal           decimal.NullDecimal `json:"SubTotal"`
	ShippingTotal      decimal.NullDecimal `json:"ShippingTotal"`
	DiscountTotal      decimal.NullDecimal `json:"DiscountTotal"`
	OrderTotal         decimal.NullDecimal `json:"OrderTotal"`
	CurrencyCode       *string             `json:"CurrencyCode,omitempty"`
	Channel            *string             `json:"Channel,omitempty"`
	Comments           *string             `json:"Comments,omitempty"`
	LineItems          []LineItem          `json:"LineItems,omitempty" validate:"-"`
	Taxes              []Tax               `json:"Taxes,omitempty" validate:"-"`

	// Raw - исходный документ без изменений (для аудита и отладки).
	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON декодирует запись и сохраняет копию исходных байтов в Raw.
func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Record(p)
	r.Raw = append(json.RawMessage(nil), data...)
	return nil
}

type Customer struct {
	InternalCustomerID *int64     `json:"InternalCustomerId" validate:"required"`
	ExternalCustomerID FlexString `json:"ExternalCustomerId"`
	UserID             FlexString `json:"UserId"`
	FirstName          *string    `json:"FirstName,omitempty"`
	LastName           *string    `json:"LastName,omitempty"`
	EmailAddress       *string    `json:"EmailAddress,omitempty"`

	// empty - во входе был пустой объект {}.
	empty bool
}

// UnmarshalJSON запоминает, был ли объект пустым. Объект с ключами,
// даже если все значения null, считается заданным покупателем.
func (c *Customer) UnmarshalJSON(data []byte) error {
	type plain Customer
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	*c = Customer(p)
	c.empty = len(keys) == 0
	return nil
}

// IsEmpty сообщает, что покупатель пришел пустым объектом {}.
func (c *Customer) IsEmpty() bool {
	return c.empty
}

// Address используется и для платежного, и для адреса доставки.
// Роль адреса не хранится: она определяется полем заказа, в котором он встретился.
type Address struct {
	ID                *int64     `json:"Id"`
	ExternalAddressID FlexString `json:"ExternalAddressId"`
	FirstName         *string    `json:"FirstName,omitempty"`
	LastName          *string    `json:"LastName,omitempty"`
	AddressLine1      *string    `json:"AddressLine1,omitempty"`
	City              *string    `json:"City,omitempty"`
	State             *string    `json:"State,omitempty"`
	ZipCode           *string    `json:"ZipCode,omitempty"`
	CountryCode       *string    `json:"CountryCode,omitempty"`
}

type LineItem struct {
	InternalLineItemID *int64              `json:"InternalLineItemId" validate:"required"`
	SKU                *string             `json:"SKU,omitempty"`
	ProductName        *string             `json:"ProductName,omitempty"`
	ItemName           *string             `json:"ItemName,omitempty"`
	Description        *string             `json:"Description,omitempty"`
	QuantityOrdered    decimal.NullDecimal `json:"QuantityOrdered"`
	QuantityInvoiced   decimal.NullDecimal `json:"QuantityInvoiced"`
	QuantityShipped    decimal.NullDecimal `json:"QuantityShipped"`
	QuantityCancelled  decimal.NullDecimal `json:"QuantityCancelled"`
	QuantityReturned   decimal.NullDecimal `json:"QuantityReturned"`
	UnitPrice          decimal.NullDecimal `json:"UnitPrice"`
	UnitDiscount       decimal.NullDecimal `json:"UnitDiscount"`
	SubTotal           decimal.NullDecimal `json:"SubTotal"`
	TotalTax           decimal.NullDecimal `json:"TotalTax"`
	Total              decimal.NullDecimal `json:"Total"`
	IsPreOrder         *bool               `json:"IsPreOrder,omitempty"`
}

type Tax struct {
	InternalTaxRateID *int64              `json:"InternalTaxRateId" validate:"required"`
	Amount            decimal.NullDecimal `json:"Amount"`
	Rate              decimal.NullDecimal `json:"Rate"`
	TaxType           *string             `json:"TaxType,omitempty"`
	BackendName       *string             `json:"BackendName,omitempty"`
	PublicTaxName     *string             `json:"PublicTaxName,omitempty"`
}
