package generator

import (
	"fmt"
	"time"

	"orders_etl/internal/model"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Generator создает правдоподобные пакеты заказов для ручных прогонов и тестов.
// Суммы каждого заказа сходятся: subtotal - discount + shipping = order_total.
type Generator struct {
	faker  *gofakeit.Faker
	nextID int64
}

// New создает генератор; одинаковый seed дает одинаковые заказы
// (кроме ExternalOrderId, это случайный UUID).
func New(seed int64) *Generator {
	return &Generator{faker: gofakeit.New(seed), nextID: 1000}
}

// Batch создает n заказов. Часть заказов специально повторяет
// граничные случаи загрузки:
//   - каждый 7-й без BillingCustomer;
//   - каждый 4-й с одинаковым платежным адресом и адресом доставки;
//   - каждый 5-й отправляется на адрес доставки предыдущего заказа.
func (g *Generator) Batch(n int) []model.Record {
	records := make([]model.Record, 0, n)
	for i := 0; i < n; i++ {
		rec := g.Order()
		switch {
		case i%4 == 3:
			rec.ShippingAddress = rec.BillingAddress
		case i%5 == 4 && i > 0:
			rec.ShippingAddress = records[i-1].ShippingAddress
		}
		if i%7 == 6 {
			rec.BillingCustomer = nil
		}
		records = append(records, rec)
	}
	return records
}

// Order создает один заказ с покупателем, двумя адресами,
// 1-4 позициями и одним налогом.
func (g *Generator) Order() model.Record {
	f := g.faker
	orderID := g.id()

	created := time.Now().UTC().Add(-time.Duration(f.Number(60, 72*60)) * time.Minute).Truncate(time.Second)
	updated := created.Add(time.Duration(f.Number(1, 120)) * time.Minute)
	deadline := created.Add(72 * time.Hour)

	taxRate := decimal.RequireFromString(f.RandomString([]string{"0.25", "0.20", "0.12"}))
	subTotal := decimal.Zero
	totalTax := decimal.Zero

	n := f.Number(1, 4)
	items := make([]model.LineItem, 0, n)
	for i := 0; i < n; i++ {
		qty := decimal.NewFromInt(int64(f.Number(1, 5)))
		price := decimal.NewFromFloat(f.Price(5, 500)).Round(2)
		lineTotal := price.Mul(qty)
		// Цены включают НДС
		lineTax := lineTotal.Sub(lineTotal.Div(decimal.NewFromInt(1).Add(taxRate))).Round(2)
		subTotal = subTotal.Add(lineTotal)
		totalTax = totalTax.Add(lineTax)

		product := f.ProductName()
		items = append(items, model.LineItem{
			InternalLineItemID: ptr(orderID*1000 + int64(i+1)),
			SKU:                ptr(fmt.Sprintf("SKU-%s", f.LetterN(6))),
			ProductName:        ptr(product),
			ItemName:           ptr(product),
			Description:        ptr(f.Sentence(6)),
			QuantityOrdered:    nullDec(qty),
			QuantityInvoiced:   nullDec(qty),
			QuantityShipped:    nullDec(qty),
			QuantityCancelled:  nullDec(decimal.Zero),
			QuantityReturned:   nullDec(decimal.Zero),
			UnitPrice:          nullDec(price),
			UnitDiscount:       nullDec(decimal.Zero),
			SubTotal:           nullDec(lineTotal),
			TotalTax:           nullDec(lineTax),
			Total:              nullDec(lineTotal),
			IsPreOrder:         ptr(f.Number(1, 10) == 1),
		})
	}

	shipping := decimal.NewFromInt(int64(f.Number(0, 50)))
	discount := subTotal.Mul(decimal.NewFromInt(int64(f.Number(0, 15)))).Div(decimal.NewFromInt(100)).Round(2)
	first, last := f.FirstName(), f.LastName()
	currency := f.RandomString([]string{"DKK", "EUR", "SEK"})

	return model.Record{
		InternalOrderID:    ptr(orderID),
		ExternalOrderID:    model.Text(uuid.NewString()),
		OrderDateUTC:       model.At(created),
		LastUpdatedDateUTC: model.At(updated),
		DeadlineDateUTC:    model.At(deadline),
		OrderStatus:        ptr(f.RandomString([]string{"Paid", "Pending", "Completed"})),
		InvoiceStatus:      ptr(f.RandomString([]string{"FullyInvoiced", "NotInvoiced"})),
		ShipmentStatus:     ptr(f.RandomString([]string{"FullyShipped", "PartiallyShipped", "NotShipped"})),
		BillingCustomer: &model.Customer{
			InternalCustomerID: ptr(int64(f.Number(10000, 99999))),
			ExternalCustomerID: model.Text(fmt.Sprintf("C-%d", f.Number(100000, 999999))),
			UserID:             model.Text(f.Username()),
			FirstName:          ptr(first),
			LastName:           ptr(last),
			EmailAddress:       ptr(f.Email()),
		},
		BillingAddress:  g.address(first, last),
		ShippingAddress: g.address(first, last),
		SubTotal:        nullDec(subTotal),
		ShippingTotal:   nullDec(shipping),
		DiscountTotal:   nullDec(discount),
		OrderTotal:      nullDec(subTotal.Sub(discount).Add(shipping)),
		CurrencyCode:    ptr(currency),
		Channel:         ptr(f.RandomString([]string{"WEB", "POS", "APP"})),
		LineItems:       items,
		Taxes: []model.Tax{{
			InternalTaxRateID: ptr(int64(f.Number(1, 20))),
			Amount:            nullDec(totalTax),
			Rate:              nullDec(taxRate),
			TaxType:           ptr("Net"),
			BackendName:       ptr(fmt.Sprintf("VAT %s %s", currency, taxRate.String())),
			PublicTaxName:     ptr(fmt.Sprintf("VAT %s%%", taxRate.Mul(decimal.NewFromInt(100)).String())),
		}},
	}
}

func (g *Generator) address(first, last string) *model.Address {
	addr := g.faker.Address()
	return &model.Address{
		ID:                ptr(g.id()),
		ExternalAddressID: model.Text(uuid.NewString()),
		FirstName:         ptr(first),
		LastName:          ptr(last),
		AddressLine1:      ptr(addr.Street),
		City:              ptr(addr.City),
		State:             ptr(addr.State),
		ZipCode:           ptr(addr.Zip),
		CountryCode:       ptr(g.faker.CountryAbr()),
	}
}

func (g *Generator) id() int64 {
	g.nextID++
	return g.nextID
}

func ptr[T any](v T) *T {
	return &v
}

func nullDec(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}
