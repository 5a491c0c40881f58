package telemetry

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rentaflow/internal/models"
)

// Snapshot is a point-in-time copy of the aggregate order metrics.
type Snapshot struct {
	TotalOrders       int                        `json:"total_orders"`
	SuccessfulOrders  int                        `json:"successful_orders"`
	FailedOrders      int                        `json:"failed_orders"`
	AvgProcessingTime time.Duration              `json:"avg_processing_time"`
	StatusCounts      map[models.OrderStatus]int `json:"status_counts"`
	PaymentMethods    map[string]int             `json:"payment_methods"`
	ErrorCodes        map[string]int             `json:"error_codes"`
	HourlyOrders      [24]int                    `json:"hourly_orders"`
	WebhookFailures   int                        `json:"webhook_failures"`
}

// Metrics aggregates order lifecycle counters for the running process and
// mirrors them to a per-instance Prometheus registry.
type Metrics struct {
	mu                sync.Mutex
	totalOrders       int
	successfulOrders  int
	failedOrders      int
	avgProcessingTime time.Duration
	statusCounts      map[models.OrderStatus]int
	paymentMethods    map[string]int
	errorCodes        map[string]int
	hourlyOrders      [24]int
	webhookFailures   int

	registry         *prometheus.Registry
	ordersTotal      *prometheus.CounterVec
	statusChanges    *prometheus.CounterVec
	validationErrors *prometheus.CounterVec
	webhookFaults    prometheus.Counter
	processingTime   prometheus.Histogram
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		statusCounts:   make(map[models.OrderStatus]int),
		paymentMethods: make(map[string]int),
		errorCodes:     make(map[string]int),
		registry:       reg,
		ordersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rentaflow_orders_total",
			Help: "The total number of orders created, by validation result.",
		}, []string{"result"}),
		statusChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rentaflow_order_status_changes_total",
			Help: "The total number of order status transitions, by target status.",
		}, []string{"status"}),
		validationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rentaflow_validation_errors_total",
			Help: "The total number of validation failures, by error code.",
		}, []string{"code"}),
		webhookFaults: factory.NewCounter(prometheus.CounterOpts{
			Name: "rentaflow_webhook_failures_total",
			Help: "The total number of webhook deliveries that failed.",
		}),
		processingTime: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "rentaflow_order_processing_seconds",
			Help:    "Time spent validating and admitting an order.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// OrderCreated records a new order: its validation outcome, payment method,
// processing duration and creation hour.
func (m *Metrics) OrderCreated(o *models.Order, valid bool, processing time.Duration) {
	m.mu.Lock()
	m.totalOrders++
	if valid {
		m.successfulOrders++
	} else {
		m.failedOrders++
	}
	// running average over all created orders
	m.avgProcessingTime += (processing - m.avgProcessingTime) / time.Duration(m.totalOrders)
	m.statusCounts[o.Status]++
	if o.PaymentMethod != "" {
		m.paymentMethods[o.PaymentMethod]++
	}
	m.hourlyOrders[o.OrderDate.Hour()]++
	m.mu.Unlock()

	result := "success"
	if !valid {
		result = "failed"
	}
	m.ordersTotal.WithLabelValues(result).Inc()
	m.processingTime.Observe(processing.Seconds())
}

// StatusChanged moves one order between status buckets.
func (m *Metrics) StatusChanged(from, to models.OrderStatus) {
	m.mu.Lock()
	if m.statusCounts[from] > 0 {
		m.statusCounts[from]--
	}
	m.statusCounts[to]++
	m.mu.Unlock()

	m.statusChanges.WithLabelValues(string(to)).Inc()
}

// ValidationFailed tallies each error code from a failed validation pass.
func (m *Metrics) ValidationFailed(errs []models.ValidationError) {
	m.mu.Lock()
	for _, e := range errs {
		m.errorCodes[e.Code]++
	}
	m.mu.Unlock()

	for _, e := range errs {
		m.validationErrors.WithLabelValues(e.Code).Inc()
	}
}

// WebhookFailure records one failed outbound notification.
func (m *Metrics) WebhookFailure() {
	m.mu.Lock()
	m.webhookFailures++
	m.mu.Unlock()
	m.webhookFaults.Inc()
}

// Snapshot returns a copy of the current aggregates.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{
		TotalOrders:       m.totalOrders,
		SuccessfulOrders:  m.successfulOrders,
		FailedOrders:      m.failedOrders,
		AvgProcessingTime: m.avgProcessingTime,
		StatusCounts:      make(map[models.OrderStatus]int, len(m.statusCounts)),
		PaymentMethods:    make(map[string]int, len(m.paymentMethods)),
		ErrorCodes:        make(map[string]int, len(m.errorCodes)),
		HourlyOrders:      m.hourlyOrders,
		WebhookFailures:   m.webhookFailures,
	}
	for k, v := range m.statusCounts {
		s.StatusCounts[k] = v
	}
	for k, v := range m.paymentMethods {
		s.PaymentMethods[k] = v
	}
	for k, v := range m.errorCodes {
		s.ErrorCodes[k] = v
	}
	return s
}

// Reset zeroes the in-memory aggregates. The Prometheus counters are
// monotonic by contract and are left alone.
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalOrders = 0
	m.successfulOrders = 0
	m.failedOrders = 0
	m.avgProcessingTime = 0
	m.statusCounts = make(map[models.OrderStatus]int)
	m.paymentMethods = make(map[string]int)
	m.errorCodes = make(map[string]int)
	m.hourlyOrders = [24]int{}
	m.webhookFailures = 0
}

// Handler exposes the Prometheus registry for an optional /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
