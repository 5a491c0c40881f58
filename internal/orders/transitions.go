package orders

import (
	"errors"
	"fmt"
	"strings"

	"rentaflow/internal/models"
)

// ErrInvalidTransition marks a status change the lifecycle does not allow.
var ErrInvalidTransition = errors.New("invalid status transition")

// validTransitions is the authoritative lifecycle definition. The legacy
// storefront let any status move to any other; here illegal moves are
// rejected with ErrInvalidTransition.
var validTransitions = []struct {
	From models.OrderStatus
	To   models.OrderStatus
}{
	// a retried order re-enters at pending and is re-routed by payment method
	{From: models.StatusPending, To: models.StatusProcessing},
	{From: models.StatusPending, To: models.StatusPaymentVerification},
	// bank/promptpay orders wait for payment confirmation
	{From: models.StatusPaymentVerification, To: models.StatusProcessing},
	// dispatch; a same-day drop-off may skip the on-our-way announcement
	{From: models.StatusProcessing, To: models.StatusOnOurWay},
	{From: models.StatusProcessing, To: models.StatusDelivered},
	{From: models.StatusOnOurWay, To: models.StatusDelivered},
	// completed is the back-office confirmation after delivery
	{From: models.StatusDelivered, To: models.StatusCompleted},
	// the one recovery edge: a successful retry returns the order to pending
	{From: models.StatusValidationFailed, To: models.StatusPending},
}

type transitionKey struct {
	From models.OrderStatus
	To   models.OrderStatus
}

var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To}] = true
	}
	return m
}()

// ValidTransitionsFrom returns all statuses reachable in one step from status.
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	for _, t := range validTransitions {
		if t.From == status {
			nexts = append(nexts, t.To)
		}
	}
	return nexts
}

// CanTransition reports whether from -> to is a legal lifecycle move.
func CanTransition(from, to models.OrderStatus) error {
	if transitionMap[transitionKey{from, to}] {
		return nil
	}
	return fmt.Errorf("%w: %s -> %s (valid from %s: %s)",
		ErrInvalidTransition, from, to, from, describeValidFrom(from))
}

func describeValidFrom(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none, terminal state"
	}
	parts := make([]string, len(nexts))
	for i, s := range nexts {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}
