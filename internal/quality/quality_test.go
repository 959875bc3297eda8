package quality

import (
	"testing"

	"orders_etl/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amount(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(s), Valid: true}
}

func record(id int64, sub, discount, shipping, total string) model.Record {
	return model.Record{
		InternalOrderID: &id,
		SubTotal:        amount(sub),
		DiscountTotal:   amount(discount),
		ShippingTotal:   amount(shipping),
		OrderTotal:      amount(total),
	}
}

func TestCheck_Reconciles(t *testing.T) {
	violations := Check([]model.Record{
		record(1, "100.00", "5.00", "10.00", "105.00"),
		record(2, "100.00", "5.00", "10.00", "105.02"),
	})

	assert.Empty(t, violations)
}

func TestCheck_ReconciliationMismatch(t *testing.T) {
	violations := Check([]model.Record{record(42, "100.00", "5.00", "10.00", "110.00")})

	require.Len(t, violations, 1)
	v := violations[0]
	assert.Equal(t, CheckReconciliation, v.Check)
	assert.Equal(t, int64(42), *v.OrderID)
	assert.Contains(t, v.String(), "заказ 42")
	assert.Contains(t, v.Detail, "order_total = 110")
}

func TestCheck_SkipsIncompleteTotals(t *testing.T) {
	r := record(1, "100.00", "0", "0", "1.00")
	r.DiscountTotal = decimal.NullDecimal{}

	assert.Empty(t, Check([]model.Record{r}))
}

func TestCheck_NegativeAmounts(t *testing.T) {
	violations := Check([]model.Record{record(7, "-10.00", "0", "0", "-10.00")})

	require.Len(t, violations, 2)
	for _, v := range violations {
		assert.Equal(t, CheckNonNegative, v.Check)
	}
	assert.Contains(t, violations[0].Detail, "subtotal = -10")
}

func TestViolation_StringWithoutOrder(t *testing.T) {
	v := Violation{Check: CheckNonNegative, Detail: "subtotal = -1"}

	assert.Equal(t, "non_negative: subtotal = -1", v.String())
}
