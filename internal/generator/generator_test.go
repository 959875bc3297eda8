package generator

import (
	"encoding/json"
	"testing"

	"orders_etl/internal/input"
	"orders_etl/internal/mapper"
	"orders_etl/internal/quality"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatch_LoadsWithoutErrors(t *testing.T) {
	records := New(1).Batch(30)
	require.Len(t, records, 30)

	data, err := json.Marshal(records)
	require.NoError(t, err)

	parsed, err := input.Parse(data)
	require.NoError(t, err)

	rows, err := mapper.MapBatch(parsed, mapper.Options{LinkAddresses: true})
	require.NoError(t, err)
	assert.Len(t, rows.Orders, 30)
	assert.Less(t, len(rows.Customers), 30, "часть заказов без покупателя")
	assert.Less(t, len(rows.Addresses), 60, "часть адресов общая")
	assert.Empty(t, quality.Check(parsed))
}

func TestBatch_EdgeCases(t *testing.T) {
	records := New(7).Batch(8)

	assert.Nil(t, records[6].BillingCustomer)
	assert.Same(t, records[3].BillingAddress, records[3].ShippingAddress)
	assert.Equal(t, *records[3].ShippingAddress.ID, *records[4].ShippingAddress.ID)
}

func TestNew_Deterministic(t *testing.T) {
	a := New(42).Order()
	b := New(42).Order()

	assert.Equal(t, *a.InternalOrderID, *b.InternalOrderID)
	assert.Equal(t, *a.BillingCustomer.EmailAddress, *b.BillingCustomer.EmailAddress)
	assert.True(t, a.OrderTotal.Decimal.Equal(b.OrderTotal.Decimal))
}
