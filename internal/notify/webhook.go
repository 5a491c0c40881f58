// Package notify delivers order lifecycle notifications to the third-party
// automation webhooks (Make.com scenarios in production). Senders return real
// errors on transport failure or non-2xx responses; deciding whether a failure
// blocks anything is the caller's business, and for the order flow it never
// does.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/lucsky/cuid"

	"rentaflow/internal/models"
)

const (
	EventOrderCreated      = "order_created"
	EventOrderUpdated      = "order_updated"
	EventOnOurWay          = "on_our_way"
	EventDriverApproaching = "driver_approaching"
	EventDelivered         = "delivered"
	EventTest              = "test_notification"
)

// ItemSummary is the per-line view sent to the automation endpoints.
type ItemSummary struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Brand    string  `json:"brand,omitempty"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Days     int     `json:"days"`
	Subtotal float64 `json:"subtotal"`
}

// OrderPayload is the ad hoc JSON body shared by all order-scoped events.
type OrderPayload struct {
	EventID          string                 `json:"event_id"`
	EventType        string                 `json:"event_type"`
	Timestamp        string                 `json:"timestamp"` // ISO-8601
	OrderID          string                 `json:"order_id"`
	CustomerName     string                 `json:"customer_name"`
	CustomerEmail    string                 `json:"customer_email"`
	CustomerPhone    string                 `json:"customer_phone"`
	DeliveryAddress  string                 `json:"delivery_address"`
	Items            []ItemSummary          `json:"items"`
	TotalAmount      float64                `json:"total_amount"`
	DeliveryFee      float64                `json:"delivery_fee"`
	DistanceKm       float64                `json:"distance_km,omitempty"`
	Status           string                 `json:"status"`
	PaymentMethod    string                 `json:"payment_method"`
	OrderDate        string                 `json:"order_date"`
	DriverLocation   *models.DriverLocation `json:"driver_location,omitempty"`
	DriverDistanceKm float64                `json:"driver_distance_km,omitempty"`
}

// WebhookSender posts JSON events to the configured endpoints.
type WebhookSender struct {
	client      *http.Client
	orderURL    string
	onOurWayURL string
	deliveryURL string
}

// NewWebhookSender wires the sender from config. A nil client gets a default
// with the configured timeout.
func NewWebhookSender(cfg *models.Config, client *http.Client) *WebhookSender {
	if client == nil {
		client = &http.Client{Timeout: cfg.WebhookTimeout}
	}
	return &WebhookSender{
		client:      client,
		orderURL:    cfg.OrderWebhookURL,
		onOurWayURL: cfg.OnOurWayWebhookURL,
		deliveryURL: cfg.DeliveryWebhookURL,
	}
}

// SendOrder posts the full order snapshot; eventType distinguishes creation
// from subsequent status updates.
func (w *WebhookSender) SendOrder(ctx context.Context, o *models.Order, eventType string) error {
	return w.post(ctx, w.orderURL, buildOrderPayload(o, eventType))
}

// SendOnOurWay announces that the driver has departed with the order.
func (w *WebhookSender) SendOnOurWay(ctx context.Context, o *models.Order) error {
	return w.post(ctx, w.onOurWayURL, buildOrderPayload(o, EventOnOurWay))
}

// SendArrival announces that the driver is within the proximity threshold of
// the drop-off point.
func (w *WebhookSender) SendArrival(ctx context.Context, o *models.Order, driverDistanceKm float64) error {
	p := buildOrderPayload(o, EventDriverApproaching)
	p.DriverDistanceKm = driverDistanceKm
	return w.post(ctx, w.onOurWayURL, p)
}

// SendDelivered announces delivery completion.
func (w *WebhookSender) SendDelivered(ctx context.Context, o *models.Order) error {
	return w.post(ctx, w.deliveryURL, buildOrderPayload(o, EventDelivered))
}

// SendTest fires a synthetic event so a new scenario can be verified end to end.
func (w *WebhookSender) SendTest(ctx context.Context) error {
	payload := map[string]string{
		"event_id":   cuid.New(),
		"event_type": EventTest,
		"timestamp":  time.Now().Format(time.RFC3339),
		"message":    "rentaflow webhook connectivity check",
	}
	return w.post(ctx, w.orderURL, payload)
}

func (w *WebhookSender) post(ctx context.Context, url string, payload any) error {
	if url == "" {
		return fmt.Errorf("webhook endpoint not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook %s returned status %d", url, resp.StatusCode)
	}
	return nil
}

func buildOrderPayload(o *models.Order, eventType string) *OrderPayload {
	items := make([]ItemSummary, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, ItemSummary{
			ID:       it.ID,
			Name:     it.Name,
			Brand:    it.Brand,
			Price:    it.Price,
			Quantity: it.Quantity,
			Days:     it.RentalDays(),
			Subtotal: it.LineTotal(),
		})
	}

	return &OrderPayload{
		EventID:         cuid.New(),
		EventType:       eventType,
		Timestamp:       time.Now().Format(time.RFC3339),
		OrderID:         o.ID,
		CustomerName:    o.CustomerInfo.Name,
		CustomerEmail:   o.CustomerInfo.Email,
		CustomerPhone:   o.CustomerInfo.Phone,
		DeliveryAddress: o.DeliveryAddress,
		Items:           items,
		TotalAmount:     o.TotalAmount,
		DeliveryFee:     o.DeliveryFee,
		DistanceKm:      o.Distance,
		Status:          string(o.Status),
		PaymentMethod:   o.PaymentMethod,
		OrderDate:       o.OrderDate.Format(time.RFC3339),
		DriverLocation:  o.DriverLocation,
	}
}

// Noop discards every notification; used when webhooks are disabled.
type Noop struct{}

func (Noop) SendOrder(context.Context, *models.Order, string) error    { return nil }
func (Noop) SendOnOurWay(context.Context, *models.Order) error         { return nil }
func (Noop) SendArrival(context.Context, *models.Order, float64) error { return nil }
func (Noop) SendDelivered(context.Context, *models.Order) error        { return nil }
func (Noop) SendTest(context.Context) error                            { return nil }
