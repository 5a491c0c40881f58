package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentaflow/internal/models"
)

func wellFormedOrder() *models.Order {
	return &models.Order{
		CustomerInfo: models.CustomerInfo{
			Name:  "Somchai Jaidee",
			Email: "somchai@example.com",
			Phone: "+66812345678",
		},
		Items: []models.OrderItem{
			{ID: "TL-101", Name: "Rotary Hammer Drill", Brand: "Makita", Price: 100, Quantity: 2, Days: 1},
		},
		TotalAmount:     200,
		DeliveryAddress: "99/1 Sukhumvit Rd, Bangkok",
		PaymentMethod:   "cod",
	}
}

func TestOrderWellFormed(t *testing.T) {
	result := Order(wellFormedOrder())
	require.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
}

func TestOrderAccumulatesAllFailures(t *testing.T) {
	o := &models.Order{} // everything missing
	result := Order(o)

	require.False(t, result.IsValid)
	assert.True(t, result.HasCode(CodeMissingCustomerInfo))
	assert.True(t, result.HasCode(CodeEmptyItems))
	assert.True(t, result.HasCode(CodeMissingDeliveryAddress))
	assert.True(t, result.HasCode(CodeMissingPaymentMethod))
	assert.True(t, result.HasCode(CodeInvalidTotalAmount))
}

func TestOrderCustomerFieldChecks(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.Order)
		code   string
	}{
		{"blank name", func(o *models.Order) { o.CustomerInfo.Name = "  " }, CodeMissingCustomerName},
		{"bad email", func(o *models.Order) { o.CustomerInfo.Email = "not-an-email" }, CodeInvalidCustomerEmail},
		{"empty email", func(o *models.Order) { o.CustomerInfo.Email = "" }, CodeInvalidCustomerEmail},
		{"bad phone", func(o *models.Order) { o.CustomerInfo.Phone = "call me" }, CodeInvalidCustomerPhone},
		{"short phone", func(o *models.Order) { o.CustomerInfo.Phone = "12345" }, CodeInvalidCustomerPhone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := wellFormedOrder()
			tt.mutate(o)
			result := Order(o)
			require.False(t, result.IsValid)
			assert.True(t, result.HasCode(tt.code))
		})
	}
}

func TestOrderItemChecks(t *testing.T) {
	o := wellFormedOrder()
	o.Items = []models.OrderItem{
		{ID: "", Name: "", Price: 0, Quantity: 0},
	}
	o.TotalAmount = 1 // keep the total check out of the way

	result := Order(o)
	require.False(t, result.IsValid)
	assert.True(t, result.HasCode(CodeMissingItemID))
	assert.True(t, result.HasCode(CodeMissingItemName))
	assert.True(t, result.HasCode(CodeInvalidItemPrice))
	assert.True(t, result.HasCode(CodeInvalidItemQuantity))

	for _, e := range result.Errors {
		if e.Code == CodeInvalidItemPrice {
			assert.Equal(t, "items[0].price", e.Field)
		}
	}
}

func TestOrderTotalTolerance(t *testing.T) {
	o := wellFormedOrder()
	o.TotalAmount = 200.5 // half a unit off, inside the +-1 tolerance
	result := Order(o)
	assert.False(t, result.HasCode(CodeTotalAmountMismatch))
	assert.True(t, result.IsValid)

	o.TotalAmount = 202 // two units off
	result = Order(o)
	require.False(t, result.IsValid)
	assert.True(t, result.HasCode(CodeTotalAmountMismatch))
}

func TestOrderTotalUsesRentalDays(t *testing.T) {
	o := wellFormedOrder()
	o.Items[0].Days = 3
	o.TotalAmount = 600
	result := Order(o)
	assert.True(t, result.IsValid)

	// Days unset defaults to 1
	o.Items[0].Days = 0
	o.TotalAmount = 200
	result = Order(o)
	assert.True(t, result.IsValid)
}
