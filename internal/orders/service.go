// Package orders owns the in-memory order list and orchestrates the rental
// order lifecycle: creation and validation, status transitions, driver
// proximity alerts, payment verification and validation retries. State changes
// are serialized by a mutex; webhook and event side effects run in goroutines
// and never block or roll back an order.
package orders

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"rentaflow/internal/events"
	"rentaflow/internal/geo"
	"rentaflow/internal/models"
	"rentaflow/internal/notify"
	"rentaflow/internal/telemetry"
	"rentaflow/internal/validate"
)

// ErrOrderNotFound marks a lookup for an id the service has never seen.
var ErrOrderNotFound = errors.New("order not found")

// Notifier delivers customer-facing notifications for lifecycle events.
type Notifier interface {
	SendOrder(ctx context.Context, o *models.Order, eventType string) error
	SendOnOurWay(ctx context.Context, o *models.Order) error
	SendArrival(ctx context.Context, o *models.Order, driverDistanceKm float64) error
	SendDelivered(ctx context.Context, o *models.Order) error
}

// Service is the order lifecycle orchestrator.
type Service struct {
	mu     sync.Mutex
	orders []*models.Order
	index  map[string]*models.Order

	cfg       *models.Config
	tel       *telemetry.Telemetry
	notifier  Notifier
	publisher *events.Publisher
	origin    geo.Origin

	sideEffects sync.WaitGroup
}

// NewService wires the orchestrator. notifier may be nil to disable
// notifications; publisher may be nil to disable the event stream.
func NewService(cfg *models.Config, tel *telemetry.Telemetry, notifier Notifier, publisher *events.Publisher) *Service {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &Service{
		index:     make(map[string]*models.Order),
		cfg:       cfg,
		tel:       tel,
		notifier:  notifier,
		publisher: publisher,
		origin:    geo.Origin{Lat: cfg.BusinessLat, Lon: cfg.BusinessLon},
	}
}

// AddOrder merges defaults into the partial order, validates it and admits it
// into the order list. Invalid orders are admitted too, flagged with
// validation_failed; the customer fixes and retries. Never returns an error:
// validation failures are data.
func (s *Service) AddOrder(input models.Order) *models.Order {
	started := time.Now()

	o := input
	o.ID = GenerateOrderID()
	if o.OrderDate.IsZero() {
		o.OrderDate = started
	}
	if o.GPSCoordinates != nil {
		if o.Distance == 0 {
			o.Distance = s.origin.DistanceTo(o.GPSCoordinates.Lat, o.GPSCoordinates.Lon)
		}
		if o.DeliveryFee == 0 {
			o.DeliveryFee = geo.DeliveryFee(o.Distance)
		}
	}

	result := validate.Order(&o)
	o.ValidationResult = &result
	if result.IsValid {
		o.Status = statusForPayment(o.PaymentMethod)
	} else {
		o.Status = models.StatusValidationFailed
	}

	completed := time.Now()
	o.ProcessingTime = completed.Sub(started)
	o.Metrics = &models.ValidationMetrics{
		StartedAt:   started,
		CompletedAt: completed,
		Duration:    o.ProcessingTime,
		ErrorCount:  len(result.Errors),
	}

	s.mu.Lock()
	s.orders = append(s.orders, &o)
	s.index[o.ID] = &o
	s.mu.Unlock()

	s.tel.Metrics.OrderCreated(&o, result.IsValid, o.ProcessingTime)
	if result.IsValid {
		s.tel.Log.Info(o.ID, fmt.Sprintf("order created with status %s (%s)", o.Status, o.PaymentMethod))
	} else {
		s.tel.Metrics.ValidationFailed(result.Errors)
		s.tel.Log.Warning(o.ID, fmt.Sprintf("order failed validation with %d errors", len(result.Errors)))
	}

	snapshot := o
	s.publish(events.TopicOrderCreated, events.OrderCreatedEvent{
		BaseEvent:     events.NewBaseEvent("order_created", o.ID, o.OrderDate),
		Status:        string(o.Status),
		PaymentMethod: o.PaymentMethod,
		TotalAmount:   o.TotalAmount,
		DeliveryFee:   o.DeliveryFee,
		ItemCount:     len(o.Items),
		IsValid:       result.IsValid,
	})
	if result.IsValid {
		s.async(func() { s.notifyOrder(snapshot, notify.EventOrderCreated) })
	}

	return &snapshot
}

// UpdateOrderStatus moves an order to the given status, rejecting transitions
// the lifecycle table does not allow. On success the matching notification
// fires (at most once for on-our-way) and the full order snapshot is re-sent.
func (s *Service) UpdateOrderStatus(id string, status models.OrderStatus) error {
	if !status.Known() {
		return fmt.Errorf("unknown order status %q", status)
	}

	s.mu.Lock()
	o, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		s.tel.Log.Error(id, "status update for unknown order")
		return fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}

	from := o.Status
	if err := CanTransition(from, status); err != nil {
		s.mu.Unlock()
		s.tel.Log.Error(id, fmt.Sprintf("rejected status change %s -> %s", from, status))
		return err
	}

	o.Status = status
	sendOnOurWay := status == models.StatusOnOurWay && !o.OnOurWayNotificationSent
	if sendOnOurWay {
		o.OnOurWayNotificationSent = true // flag set under the lock, fires at most once
	}
	snapshot := *o
	s.mu.Unlock()

	s.tel.Metrics.StatusChanged(from, status)
	s.tel.Log.Info(id, fmt.Sprintf("status changed %s -> %s", from, status))

	s.publish(events.TopicOrderStatus, events.OrderStatusEvent{
		BaseEvent:  events.NewBaseEvent("order_status_changed", id, time.Now()),
		FromStatus: string(from),
		ToStatus:   string(status),
	})

	if sendOnOurWay {
		s.async(func() {
			if err := s.notifier.SendOnOurWay(s.ctx(), &snapshot); err != nil {
				s.recordWebhookFailure(id, "on-our-way notification", err)
			}
		})
	}
	if status == models.StatusDelivered {
		s.publish(events.TopicOrderDelivered, events.OrderDeliveredEvent{
			BaseEvent:   events.NewBaseEvent("order_delivered", id, time.Now()),
			DeliveredAt: time.Now().Unix(),
		})
		s.async(func() {
			if err := s.notifier.SendDelivered(s.ctx(), &snapshot); err != nil {
				s.recordWebhookFailure(id, "delivery notification", err)
			}
		})
	}

	// every status change re-sends the full order snapshot
	s.async(func() { s.notifyOrder(snapshot, notify.EventOrderUpdated) })
	return nil
}

// UpdateDriverLocation stamps the driver position on the order and, when the
// driver first comes within the proximity threshold of the customer's pin,
// fires the arrival notification exactly once for the order's lifetime.
func (s *Service) UpdateDriverLocation(id string, lat, lon float64) error {
	s.mu.Lock()
	o, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		s.tel.Log.Error(id, "driver location update for unknown order")
		return fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}

	o.DriverLocation = &models.DriverLocation{
		Location:  models.Location{Lat: lat, Lon: lon},
		UpdatedAt: time.Now(),
	}

	var driverDistance float64
	sendArrival := false
	if o.GPSCoordinates != nil && !o.NotificationSent {
		driverDistance = geo.Distance(lat, lon, o.GPSCoordinates.Lat, o.GPSCoordinates.Lon)
		if driverDistance <= s.cfg.NearLocationThreshold {
			// guard flips under the lock so a lingering driver can't flood
			// the customer with arrival alerts
			o.NotificationSent = true
			sendArrival = true
		}
	}
	snapshot := *o
	s.mu.Unlock()

	s.publish(events.TopicDriverLocation, events.DriverLocationEvent{
		BaseEvent:          events.NewBaseEvent("driver_location_updated", id, time.Now()),
		Location:           models.Location{Lat: lat, Lon: lon},
		DistanceToCustomer: driverDistance,
	})

	if sendArrival {
		s.tel.Log.Info(id, fmt.Sprintf("driver within %.2f km, sending arrival notification", driverDistance))
		s.async(func() {
			if err := s.notifier.SendArrival(s.ctx(), &snapshot, driverDistance); err != nil {
				s.recordWebhookFailure(id, "arrival notification", err)
			}
		})
	}

	s.async(func() { s.notifyOrder(snapshot, notify.EventOrderUpdated) })
	return nil
}

// VerifyPayment confirms a bank or PromptPay transfer, moving the order from
// payment_verification to processing. Any other starting status is an invalid
// transition, reported rather than silently dropped.
func (s *Service) VerifyPayment(id string) error {
	s.mu.Lock()
	o, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		s.tel.Log.Error(id, "payment verification for unknown order")
		return fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	if o.Status != models.StatusPaymentVerification {
		from := o.Status
		s.mu.Unlock()
		s.tel.Log.Error(id, fmt.Sprintf("payment verification rejected in status %s", from))
		return fmt.Errorf("%w: %s -> %s (verify payment requires %s)",
			ErrInvalidTransition, from, models.StatusProcessing, models.StatusPaymentVerification)
	}

	o.Status = models.StatusProcessing
	snapshot := *o
	s.mu.Unlock()

	s.tel.Metrics.StatusChanged(models.StatusPaymentVerification, models.StatusProcessing)
	s.tel.Log.Info(id, "payment verified, order moved to processing")

	s.publish(events.TopicOrderStatus, events.OrderStatusEvent{
		BaseEvent:  events.NewBaseEvent("payment_verified", id, time.Now()),
		FromStatus: string(models.StatusPaymentVerification),
		ToStatus:   string(models.StatusProcessing),
	})
	s.async(func() { s.notifyOrder(snapshot, notify.EventOrderUpdated) })
	return nil
}

// RetryOrderProcessing re-runs validation on a validation_failed order. On
// success the order returns to pending and the creation webhook fires; on
// repeated failure the fresh errors replace the previous attempt's and the
// status stays put. Returns false for orders not in validation_failed.
func (s *Service) RetryOrderProcessing(id string) (bool, error) {
	s.mu.Lock()
	o, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		s.tel.Log.Error(id, "retry requested for unknown order")
		return false, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	if o.Status != models.StatusValidationFailed {
		s.mu.Unlock()
		s.tel.Log.Warning(id, fmt.Sprintf("retry ignored in status %s", o.Status))
		return false, nil
	}

	o.RetryCount++
	result := validate.Order(o)
	o.ValidationResult = &result
	if o.Metrics != nil {
		o.Metrics.RetryCount = o.RetryCount
		o.Metrics.ErrorCount = len(result.Errors)
	}

	if !result.IsValid {
		s.mu.Unlock()
		s.tel.Metrics.ValidationFailed(result.Errors)
		s.tel.Log.Warning(id, fmt.Sprintf("retry %d failed with %d errors", o.RetryCount, len(result.Errors)))
		return false, nil
	}

	o.Status = models.StatusPending
	snapshot := *o
	s.mu.Unlock()

	s.tel.Metrics.StatusChanged(models.StatusValidationFailed, models.StatusPending)
	s.tel.Log.Info(id, fmt.Sprintf("retry %d succeeded, order back to pending", snapshot.RetryCount))

	s.publish(events.TopicOrderStatus, events.OrderStatusEvent{
		BaseEvent:  events.NewBaseEvent("order_retry_succeeded", id, time.Now()),
		FromStatus: string(models.StatusValidationFailed),
		ToStatus:   string(models.StatusPending),
	})
	s.async(func() { s.notifyOrder(snapshot, notify.EventOrderUpdated) })
	return true, nil
}

// AmendOrder applies a correction to a stored order under the service lock,
// typically to fix the fields a failed validation flagged before retrying.
// The id, status and notification flags are owned by the service and survive
// the mutation untouched.
func (s *Service) AmendOrder(id string, mutate func(*models.Order)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.index[id]
	if !ok {
		s.tel.Log.Error(id, "amendment for unknown order")
		return fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}

	id, status := o.ID, o.Status
	sent, onOurWaySent := o.NotificationSent, o.OnOurWayNotificationSent
	mutate(o)
	o.ID, o.Status = id, status
	o.NotificationSent, o.OnOurWayNotificationSent = sent, onOurWaySent

	s.tel.Log.Info(id, "order amended")
	return nil
}

// GetOrderByID returns a copy of the order, or ErrOrderNotFound.
func (s *Service) GetOrderByID(id string) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.index[id]
	if !ok {
		return models.Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	return *o, nil
}

// GetOrderValidationErrors returns the latest validation errors for an order.
func (s *Service) GetOrderValidationErrors(id string) ([]models.ValidationError, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	if o.ValidationResult == nil {
		return nil, nil
	}
	return append([]models.ValidationError(nil), o.ValidationResult.Errors...), nil
}

// Orders returns a snapshot copy of every order, in creation order.
func (s *Service) Orders() []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Order, len(s.orders))
	for i, o := range s.orders {
		out[i] = *o
	}
	return out
}

// Wait blocks until all in-flight notification side effects have finished.
func (s *Service) Wait() {
	s.sideEffects.Wait()
}

func statusForPayment(method string) models.OrderStatus {
	switch method {
	case "bank", "promptpay":
		return models.StatusPaymentVerification
	default:
		// cod, card and anything else goes straight to fulfilment
		return models.StatusProcessing
	}
}

func (s *Service) notifyOrder(o models.Order, eventType string) {
	if err := s.notifier.SendOrder(s.ctx(), &o, eventType); err != nil {
		s.recordWebhookFailure(o.ID, "order webhook", err)
	}
}

func (s *Service) recordWebhookFailure(id, what string, err error) {
	s.tel.Metrics.WebhookFailure()
	s.tel.Log.Error(id, fmt.Sprintf("%s failed: %v", what, err))
}

func (s *Service) publish(topic string, event any) {
	if err := s.publisher.Publish(topic, event); err != nil {
		s.tel.Log.Error("", fmt.Sprintf("event publish to %s failed: %v", topic, err))
	}
}

func (s *Service) async(fn func()) {
	s.sideEffects.Add(1)
	go func() {
		defer s.sideEffects.Done()
		fn()
	}()
}

func (s *Service) ctx() context.Context {
	return context.Background()
}
