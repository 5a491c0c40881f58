package models

// OrderStatus is the closed set of lifecycle states an order can be in.
// The wire values match what the webhook consumers already expect, including
// the space-separated "on our way".
type OrderStatus string

const (
	StatusPending             OrderStatus = "pending"
	StatusProcessing          OrderStatus = "processing"
	StatusPaymentVerification OrderStatus = "payment_verification"
	StatusOnOurWay            OrderStatus = "on our way"
	StatusDelivered           OrderStatus = "delivered"
	StatusCompleted           OrderStatus = "completed"
	StatusValidationFailed    OrderStatus = "validation_failed"
)

// Known reports whether s is one of the defined lifecycle states.
func (s OrderStatus) Known() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusPaymentVerification,
		StatusOnOurWay, StatusDelivered, StatusCompleted, StatusValidationFailed:
		return true
	}
	return false
}

// Terminal reports whether no further transitions leave s. delivered is the
// driver-side end of the road; completed is the distinct back-office
// confirmation reached only from delivered.
func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted
}

func (s OrderStatus) String() string { return string(s) }
