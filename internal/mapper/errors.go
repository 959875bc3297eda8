package mapper

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedRecord - в записи нет обязательного поля. Прогон целиком прерывается.
var ErrMalformedRecord = errors.New("некорректная запись заказа")

// Entity - тип сущности, которую не удалось построить.
type Entity string

const (
	EntityCustomer Entity = "customer"
	EntityAddress  Entity = "address"
	EntityOrder    Entity = "order"
	EntityLineItem Entity = "line_item"
	EntityOrderTax Entity = "order_tax"
)

// MappingError описывает запись, в которой не хватает обязательных полей.
type MappingError struct {
	Entity Entity
	// OrderID - InternalOrderId исходной записи, если он есть.
	OrderID *int64
	// Index - позиция записи в пакете.
	Index  int
	Fields []string
	Err    error
}

func (e *MappingError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", ErrMalformedRecord.Error(), e.Entity)
	if e.OrderID != nil {
		fmt.Fprintf(&b, " (заказ %d)", *e.OrderID)
	} else {
		fmt.Fprintf(&b, " (запись #%d)", e.Index)
	}
	if len(e.Fields) > 0 {
		fmt.Fprintf(&b, ": нет поля %s", strings.Join(e.Fields, ", "))
	} else if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *MappingError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedRecord}
	}
	return []error{ErrMalformedRecord, e.Err}
}
