package events

import (
	"encoding/json"
	"fmt"
	"time"

	"rentaflow/internal/models"
)

// BaseEvent is the common structure for all lifecycle events.
type BaseEvent struct {
	Timestamp int64  `json:"timestamp"`
	EventType string `json:"eventType"`
	OrderID   string `json:"orderId"`
}

type OrderCreatedEvent struct {
	BaseEvent
	Status        string  `json:"status"`
	PaymentMethod string  `json:"paymentMethod"`
	TotalAmount   float64 `json:"totalAmount"`
	DeliveryFee   float64 `json:"deliveryFee"`
	ItemCount     int     `json:"itemCount"`
	IsValid       bool    `json:"isValid"`
}

type OrderStatusEvent struct {
	BaseEvent
	FromStatus string `json:"fromStatus"`
	ToStatus   string `json:"toStatus"`
}

type DriverLocationEvent struct {
	BaseEvent
	Location           models.Location `json:"location"`
	DistanceToCustomer float64         `json:"distanceToCustomerKm,omitempty"`
}

type OrderDeliveredEvent struct {
	BaseEvent
	DeliveredAt int64 `json:"deliveredAt"`
}

func NewBaseEvent(eventType, orderID string, at time.Time) BaseEvent {
	return BaseEvent{Timestamp: at.Unix(), EventType: eventType, OrderID: orderID}
}

// Publisher serializes events onto an output destination. A nil Publisher or
// nil destination discards everything, so callers don't guard every publish.
type Publisher struct {
	dest OutputDestination
}

func NewPublisher(dest OutputDestination) *Publisher {
	return &Publisher{dest: dest}
}

func (p *Publisher) Publish(topic string, event any) error {
	if p == nil || p.dest == nil {
		return nil
	}
	msg, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to serialize event for topic %s: %w", topic, err)
	}
	return p.dest.WriteMessage(topic, msg)
}

func (p *Publisher) Close() error {
	if p == nil || p.dest == nil {
		return nil
	}
	return p.dest.Close()
}
