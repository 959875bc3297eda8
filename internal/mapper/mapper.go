// Package mapper превращает вложенные записи заказов в строки пяти таблиц.
// Все функции чистые: БД не трогают, входные данные не изменяют.
package mapper

import (
	"database/sql"
	"encoding/json"

	"orders_etl/internal/model"
	"orders_etl/internal/validator"
)

// Options управляет необязательным поведением маппинга.
type Options struct {
	// LinkAddresses заполняет billing_address_id и shipping_address_id заказа
	// из вложенных адресов. По умолчанию выключено: колонки остаются NULL.
	LinkAddresses bool
}

// Rows - результат маппинга всего пакета.
type Rows struct {
	Customers []model.CustomerRow
	Addresses []model.AddressRow
	Orders    []model.OrderRow
	LineItems []model.LineItemRow
	Taxes     []model.OrderTaxRow
}

// MapBatch строит строки всех сущностей. Первая некорректная запись
// прерывает маппинг, частичный результат не возвращается.
func MapBatch(records []model.Record, opts Options) (*Rows, error) {
	customers, err := Customers(records)
	if err != nil {
		return nil, err
	}
	orders, err := Orders(records, opts)
	if err != nil {
		return nil, err
	}
	items, err := LineItems(records)
	if err != nil {
		return nil, err
	}
	taxes, err := OrderTaxes(records)
	if err != nil {
		return nil, err
	}

	return &Rows{
		Customers: customers,
		Addresses: Addresses(records),
		Orders:    orders,
		LineItems: items,
		Taxes:     taxes,
	}, nil
}

// Customers возвращает по строке на каждую запись с BillingCustomer.
// Записи без покупателя (или с пустым объектом) пропускаются.
func Customers(records []model.Record) ([]model.CustomerRow, error) {
	var rows []model.CustomerRow
	for i := range records {
		cust := billingCustomer(&records[i])
		if cust == nil {
			continue
		}
		if err := checkRequired(EntityCustomer, &records[i], i, cust); err != nil {
			return nil, err
		}
		rows = append(rows, model.CustomerRow{
			InternalCustomerID: *cust.InternalCustomerID,
			ExternalCustomerID: cust.ExternalCustomerID.NullString,
			UserID:             cust.UserID.NullString,
			FirstName:          nullString(cust.FirstName),
			LastName:           nullString(cust.LastName),
			EmailAddress:       nullString(cust.EmailAddress),
		})
	}
	return rows, nil
}

// Addresses собирает уникальные по Id адреса всего пакета: сначала платежный,
// затем адрес доставки каждой записи. Адрес без Id пропускается,
// повторный Id тоже (остается первое вхождение).
func Addresses(records []model.Record) []model.AddressRow {
	var rows []model.AddressRow
	seen := make(map[int64]struct{})
	for i := range records {
		for _, a := range []*model.Address{records[i].BillingAddress, records[i].ShippingAddress} {
			if a == nil || a.ID == nil {
				continue
			}
			if _, dup := seen[*a.ID]; dup {
				continue
			}
			seen[*a.ID] = struct{}{}
			rows = append(rows, model.AddressRow{
				AddressID:         *a.ID,
				ExternalAddressID: a.ExternalAddressID.NullString,
				FirstName:         nullString(a.FirstName),
				LastName:          nullString(a.LastName),
				AddressLine1:      nullString(a.AddressLine1),
				City:              nullString(a.City),
				State:             nullString(a.State),
				PostalCode:        nullString(a.ZipCode),
				CountryCode:       nullString(a.CountryCode),
			})
		}
	}
	return rows
}

// Orders строит по строке на запись. InternalOrderId, OrderDateUtc и
// LastUpdatedDateUtc обязательны.
func Orders(records []model.Record, opts Options) ([]model.OrderRow, error) {
	rows := make([]model.OrderRow, 0, len(records))
	for i := range records {
		r := &records[i]
		if err := checkRequired(EntityOrder, r, i, r); err != nil {
			return nil, err
		}

		raw, err := rawDocument(r)
		if err != nil {
			return nil, &MappingError{Entity: EntityOrder, OrderID: r.InternalOrderID, Index: i, Err: err}
		}

		row := model.OrderRow{
			InternalOrderID: *r.InternalOrderID,
			ExternalOrderID: r.ExternalOrderID.NullString,
			OrderDateUTC:    r.OrderDateUTC.UTC(),
			LastUpdatedUTC:  r.LastUpdatedDateUTC.UTC(),
			DeadlineUTC:     deadline(r),
			OrderStatus:     nullString(r.OrderStatus),
			InvoiceStatus:   nullString(r.InvoiceStatus),
			ShipmentStatus:  nullString(r.ShipmentStatus),
			SubTotal:        r.SubTotal,
			ShippingTotal:   r.ShippingTotal,
			DiscountTotal:   r.DiscountTotal,
			OrderTotal:      r.OrderTotal,
			CurrencyCode:    nullString(r.CurrencyCode),
			Channel:         nullString(r.Channel),
			Comments:        nullString(r.Comments),
			Raw:             raw,
		}
		if cust := billingCustomer(r); cust != nil && cust.InternalCustomerID != nil {
			row.BillingCustomerID = sql.NullInt64{Int64: *cust.InternalCustomerID, Valid: true}
		}
		if opts.LinkAddresses {
			row.BillingAddressID = addressID(r.BillingAddress)
			row.ShippingAddressID = addressID(r.ShippingAddress)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LineItems разворачивает LineItems каждой записи; у каждой позиции
// обязателен InternalLineItemId.
func LineItems(records []model.Record) ([]model.LineItemRow, error) {
	var rows []model.LineItemRow
	for i := range records {
		r := &records[i]
		for j := range r.LineItems {
			li := &r.LineItems[j]
			if err := checkRequired(EntityLineItem, r, i, li); err != nil {
				return nil, err
			}
			orderID, err := parentOrderID(EntityLineItem, r, i)
			if err != nil {
				return nil, err
			}
			rows = append(rows, model.LineItemRow{
				InternalLineItemID: *li.InternalLineItemID,
				InternalOrderID:    orderID,
				SKU:                nullString(li.SKU),
				ProductName:        nullString(li.ProductName),
				ItemName:           nullString(li.ItemName),
				Description:        nullString(li.Description),
				QuantityOrdered:    li.QuantityOrdered,
				QuantityInvoiced:   li.QuantityInvoiced,
				QuantityShipped:    li.QuantityShipped,
				QuantityCancelled:  li.QuantityCancelled,
				QuantityReturned:   li.QuantityReturned,
				UnitPrice:          li.UnitPrice,
				UnitDiscount:       li.UnitDiscount,
				SubTotal:           li.SubTotal,
				TotalTax:           li.TotalTax,
				Total:              li.Total,
				IsPreOrder:         nullBool(li.IsPreOrder),
			})
		}
	}
	return rows, nil
}

// OrderTaxes разворачивает Taxes каждой записи; ключ - пара
// (InternalOrderId, InternalTaxRateId).
func OrderTaxes(records []model.Record) ([]model.OrderTaxRow, error) {
	var rows []model.OrderTaxRow
	for i := range records {
		r := &records[i]
		for j := range r.Taxes {
			t := &r.Taxes[j]
			if err := checkRequired(EntityOrderTax, r, i, t); err != nil {
				return nil, err
			}
			orderID, err := parentOrderID(EntityOrderTax, r, i)
			if err != nil {
				return nil, err
			}
			rows = append(rows, model.OrderTaxRow{
				InternalOrderID:   orderID,
				InternalTaxRateID: *t.InternalTaxRateID,
				TaxAmount:         t.Amount,
				TaxRate:           t.Rate,
				TaxType:           nullString(t.TaxType),
				BackendName:       nullString(t.BackendName),
				PublicTaxName:     nullString(t.PublicTaxName),
			})
		}
	}
	return rows, nil
}

// checkRequired - единая точка проверки обязательных полей для всех сущностей.
func checkRequired(entity Entity, r *model.Record, index int, v interface{}) error {
	err := validator.ValidateStruct(v)
	if err == nil {
		return nil
	}
	return &MappingError{
		Entity:  entity,
		OrderID: r.InternalOrderID,
		Index:   index,
		Fields:  validator.MissingFields(err),
		Err:     err,
	}
}

// parentOrderID возвращает id родительского заказа для дочерних строк.
func parentOrderID(entity Entity, r *model.Record, index int) (int64, error) {
	if r.InternalOrderID == nil {
		return 0, &MappingError{Entity: entity, Index: index, Fields: []string{"InternalOrderId"}}
	}
	return *r.InternalOrderID, nil
}

func billingCustomer(r *model.Record) *model.Customer {
	if r.BillingCustomer == nil || r.BillingCustomer.IsEmpty() {
		return nil
	}
	return r.BillingCustomer
}

func rawDocument(r *model.Record) (model.RawDocument, error) {
	if len(r.Raw) > 0 {
		return model.RawDocument(r.Raw), nil
	}
	// Запись собрана в коде, а не прочитана из файла.
	b, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return model.RawDocument(b), nil
}

func addressID(a *model.Address) sql.NullInt64 {
	if a == nil || a.ID == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *a.ID, Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

func deadline(r *model.Record) sql.NullTime {
	if r.DeadlineDateUTC == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: r.DeadlineDateUTC.UTC(), Valid: true}
}
