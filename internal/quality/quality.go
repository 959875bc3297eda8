// Package quality проверяет качество финансовых данных пакета.
// Проверки информативные: загрузку они не останавливают.
package quality

import (
	"fmt"

	"orders_etl/internal/model"

	"github.com/shopspring/decimal"
)

const (
	CheckReconciliation = "reconciliation"
	CheckNonNegative    = "non_negative"
)

// Tolerance - допустимое расхождение при сверке сумм заказа.
var Tolerance = decimal.RequireFromString("0.02")

// Violation - заказ, не прошедший одну из проверок.
type Violation struct {
	OrderID *int64
	Check   string
	Detail  string
}

func (v Violation) String() string {
	if v.OrderID == nil {
		return fmt.Sprintf("%s: %s", v.Check, v.Detail)
	}
	return fmt.Sprintf("заказ %d: %s: %s", *v.OrderID, v.Check, v.Detail)
}

// Check прогоняет все проверки по пакету.
func Check(records []model.Record) []Violation {
	var out []Violation
	for i := range records {
		out = append(out, nonNegative(&records[i])...)
		if v, ok := reconcile(&records[i]); !ok {
			out = append(out, v)
		}
	}
	return out
}

// reconcile сверяет subtotal - discount_total + shipping_total с order_total.
// Заказы без какой-либо из сумм не проверяются.
func reconcile(r *model.Record) (Violation, bool) {
	if !r.SubTotal.Valid || !r.DiscountTotal.Valid || !r.ShippingTotal.Valid || !r.OrderTotal.Valid {
		return Violation{}, true
	}

	expected := r.SubTotal.Decimal.Sub(r.DiscountTotal.Decimal).Add(r.ShippingTotal.Decimal)
	diff := expected.Sub(r.OrderTotal.Decimal).Abs()
	if diff.LessThanOrEqual(Tolerance) {
		return Violation{}, true
	}

	return Violation{
		OrderID: r.InternalOrderID,
		Check:   CheckReconciliation,
		Detail: fmt.Sprintf("subtotal - discount + shipping = %s, order_total = %s",
			expected.String(), r.OrderTotal.Decimal.String()),
	}, false
}

func nonNegative(r *model.Record) []Violation {
	amounts := []struct {
		name  string
		value decimal.NullDecimal
	}{
		{"subtotal", r.SubTotal},
		{"shipping_total", r.ShippingTotal},
		{"discount_total", r.DiscountTotal},
		{"order_total", r.OrderTotal},
	}

	var out []Violation
	for _, a := range amounts {
		if a.value.Valid && a.value.Decimal.IsNegative() {
			out = append(out, Violation{
				OrderID: r.InternalOrderID,
				Check:   CheckNonNegative,
				Detail:  fmt.Sprintf("%s = %s", a.name, a.value.Decimal.String()),
			})
		}
	}
	return out
}
