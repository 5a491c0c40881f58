package telemetry

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentaflow/internal/models"
)

func TestLogNewestFirstAndCapped(t *testing.T) {
	l := NewLog(5)
	for i := 0; i < 8; i++ {
		l.Info("ORD-1", fmt.Sprintf("event %d", i))
	}

	entries := l.Entries()
	require.Len(t, entries, 5)
	assert.Equal(t, "event 7", entries[0].Message, "newest entry should be first")
	assert.Equal(t, "event 3", entries[4].Message, "oldest surviving entry last")
}

func TestLogForOrder(t *testing.T) {
	l := NewLog(0) // default capacity
	l.Info("ORD-1", "created")
	l.Warning("ORD-2", "retried")
	l.Error("ORD-1", "webhook failed")

	entries := l.ForOrder("ORD-1")
	require.Len(t, entries, 2)
	assert.Equal(t, LevelError, entries[0].Level)
	assert.Equal(t, "created", entries[1].Message)

	l.Clear()
	assert.Zero(t, l.Len())
}

func orderAt(hour int, status models.OrderStatus, payment string) *models.Order {
	return &models.Order{
		Status:        status,
		PaymentMethod: payment,
		OrderDate:     time.Date(2026, 3, 14, hour, 0, 0, 0, time.UTC),
	}
}

func TestMetricsOrderCreated(t *testing.T) {
	m := NewMetrics()
	m.OrderCreated(orderAt(9, models.StatusProcessing, "cod"), true, 10*time.Millisecond)
	m.OrderCreated(orderAt(9, models.StatusPaymentVerification, "bank"), true, 30*time.Millisecond)
	m.OrderCreated(orderAt(21, models.StatusValidationFailed, "cod"), false, 20*time.Millisecond)

	s := m.Snapshot()
	assert.Equal(t, 3, s.TotalOrders)
	assert.Equal(t, 2, s.SuccessfulOrders)
	assert.Equal(t, 1, s.FailedOrders)
	assert.Equal(t, 2, s.HourlyOrders[9])
	assert.Equal(t, 1, s.HourlyOrders[21])
	assert.Equal(t, 2, s.PaymentMethods["cod"])
	assert.Equal(t, 1, s.StatusCounts[models.StatusProcessing])
	// running average of 10, 30, 20 ms
	assert.InDelta(t, float64(20*time.Millisecond), float64(s.AvgProcessingTime), float64(5*time.Millisecond))
}

func TestMetricsStatusChanged(t *testing.T) {
	m := NewMetrics()
	m.OrderCreated(orderAt(12, models.StatusProcessing, "cod"), true, time.Millisecond)
	m.StatusChanged(models.StatusProcessing, models.StatusOnOurWay)

	s := m.Snapshot()
	assert.Equal(t, 0, s.StatusCounts[models.StatusProcessing])
	assert.Equal(t, 1, s.StatusCounts[models.StatusOnOurWay])
}

func TestMetricsValidationAndWebhookCounts(t *testing.T) {
	m := NewMetrics()
	m.ValidationFailed([]models.ValidationError{
		{Code: "EMPTY_ITEMS"},
		{Code: "TOTAL_AMOUNT_MISMATCH"},
		{Code: "EMPTY_ITEMS"},
	})
	m.WebhookFailure()

	s := m.Snapshot()
	assert.Equal(t, 2, s.ErrorCodes["EMPTY_ITEMS"])
	assert.Equal(t, 1, s.ErrorCodes["TOTAL_AMOUNT_MISMATCH"])
	assert.Equal(t, 1, s.WebhookFailures)
}

func TestMetricsReset(t *testing.T) {
	m := NewMetrics()
	m.OrderCreated(orderAt(8, models.StatusProcessing, "card"), true, time.Millisecond)
	m.Reset()

	s := m.Snapshot()
	assert.Zero(t, s.TotalOrders)
	assert.Empty(t, s.StatusCounts)
	assert.Zero(t, s.HourlyOrders[8])
}
