package models

import "time"

// Order is the central entity of the rental order lifecycle.
type Order struct {
	ID                       string             `json:"id"`
	CustomerInfo             CustomerInfo       `json:"customer_info"`
	Items                    []OrderItem        `json:"items"`
	TotalAmount              float64            `json:"total_amount"`
	DeliveryAddress          string             `json:"delivery_address"`
	GPSCoordinates           *Location          `json:"gps_coordinates,omitempty"`
	Distance                 float64            `json:"distance,omitempty"` // km from the business origin
	DeliveryFee              float64            `json:"delivery_fee"`
	Status                   OrderStatus        `json:"status"`
	PaymentMethod            string             `json:"payment_method"` // "bank", "promptpay", "cod", "card", ...
	OrderDate                time.Time          `json:"order_date"`
	DriverLocation           *DriverLocation    `json:"driver_location,omitempty"`
	NotificationSent         bool               `json:"notification_sent"` // arrival alert fired, at most once
	OnOurWayNotificationSent bool               `json:"on_our_way_notification_sent"`
	ValidationResult         *ValidationResult  `json:"validation_result,omitempty"`
	Metrics                  *ValidationMetrics `json:"metrics,omitempty"`
	RetryCount               int                `json:"retry_count"`
	ProcessingTime           time.Duration      `json:"processing_time"`
}

// OrderItem is a single rental line: a tool hired for a number of days.
type OrderItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Brand    string  `json:"brand,omitempty"`
	Price    float64 `json:"price"` // per day
	Quantity int     `json:"quantity"`
	Days     int     `json:"days,omitempty"` // rental days, treated as 1 when unset
	Image    string  `json:"image,omitempty"`
}

// RentalDays returns the rental day count, defaulting to 1.
func (it OrderItem) RentalDays() int {
	if it.Days <= 0 {
		return 1
	}
	return it.Days
}

// LineTotal is price x quantity x rental days.
func (it OrderItem) LineTotal() float64 {
	return it.Price * float64(it.Quantity) * float64(it.RentalDays())
}

type CustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// DriverLocation is the last reported driver position for an order.
type DriverLocation struct {
	Location
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidationError is a single structured validation failure.
type ValidationError struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult is recomputed from scratch on every validation pass.
type ValidationResult struct {
	IsValid bool              `json:"is_valid"`
	Errors  []ValidationError `json:"errors"`
}

// HasCode reports whether the result contains a failure with the given code.
func (r ValidationResult) HasCode(code string) bool {
	for _, e := range r.Errors {
		if e.Code == code {
			return true
		}
	}
	return false
}

// ValidationMetrics is the per-order timing and retry record.
type ValidationMetrics struct {
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt time.Time     `json:"completed_at"`
	Duration    time.Duration `json:"duration"`
	ErrorCount  int           `json:"error_count"`
	RetryCount  int           `json:"retry_count"`
}
