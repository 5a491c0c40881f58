// Package validate checks rental orders against the required-field and
// cross-field consistency rules. Every check runs; failures accumulate into a
// ValidationResult instead of short-circuiting, so the storefront can show the
// customer the full list at once.
package validate

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"rentaflow/internal/models"
)

// Stable failure codes callers branch on.
const (
	CodeMissingCustomerInfo    = "MISSING_CUSTOMER_INFO"
	CodeMissingCustomerName    = "MISSING_CUSTOMER_NAME"
	CodeInvalidCustomerEmail   = "INVALID_CUSTOMER_EMAIL"
	CodeInvalidCustomerPhone   = "INVALID_CUSTOMER_PHONE"
	CodeEmptyItems             = "EMPTY_ITEMS"
	CodeMissingItemID          = "MISSING_ITEM_ID"
	CodeMissingItemName        = "MISSING_ITEM_NAME"
	CodeInvalidItemPrice       = "INVALID_ITEM_PRICE"
	CodeInvalidItemQuantity    = "INVALID_ITEM_QUANTITY"
	CodeMissingDeliveryAddress = "MISSING_DELIVERY_ADDRESS"
	CodeMissingPaymentMethod   = "MISSING_PAYMENT_METHOD"
	CodeInvalidTotalAmount     = "INVALID_TOTAL_AMOUNT"
	CodeTotalAmountMismatch    = "TOTAL_AMOUNT_MISMATCH"
)

// TotalTolerance is the absolute drift allowed between the stated total and
// the recomputed sum of line items. Absolute, not percentage: it absorbs
// floating-point rounding, not discounting.
const TotalTolerance = 1.0

var (
	validate = validator.New()

	// loose international phone: optional +, then 7-15 digits with common
	// separators allowed
	phoneRegex = regexp.MustCompile(`^\+?[0-9][0-9\s\-()]{5,18}[0-9]$`)
)

// Order runs every check against o and returns the accumulated result.
// It never panics and never returns an error: invalid orders are data,
// not failures.
func Order(o *models.Order) models.ValidationResult {
	var errs []models.ValidationError

	add := func(code, field, message string) {
		errs = append(errs, models.ValidationError{Code: code, Field: field, Message: message})
	}

	// customer info
	ci := o.CustomerInfo
	if ci == (models.CustomerInfo{}) {
		add(CodeMissingCustomerInfo, "customer_info", "customer information is required")
	} else {
		if strings.TrimSpace(ci.Name) == "" {
			add(CodeMissingCustomerName, "customer_info.name", "customer name is required")
		}
		if err := validate.Var(ci.Email, "required,email"); err != nil {
			add(CodeInvalidCustomerEmail, "customer_info.email", "a valid email address is required")
		}
		if !phoneRegex.MatchString(strings.TrimSpace(ci.Phone)) {
			add(CodeInvalidCustomerPhone, "customer_info.phone", "a valid phone number is required")
		}
	}

	// line items
	if len(o.Items) == 0 {
		add(CodeEmptyItems, "items", "order must contain at least one item")
	}
	for i, it := range o.Items {
		if strings.TrimSpace(it.ID) == "" {
			add(CodeMissingItemID, fmt.Sprintf("items[%d].id", i), "item id is required")
		}
		if strings.TrimSpace(it.Name) == "" {
			add(CodeMissingItemName, fmt.Sprintf("items[%d].name", i), "item name is required")
		}
		if it.Price <= 0 {
			add(CodeInvalidItemPrice, fmt.Sprintf("items[%d].price", i), "item price must be positive")
		}
		if it.Quantity <= 0 {
			add(CodeInvalidItemQuantity, fmt.Sprintf("items[%d].quantity", i), "item quantity must be positive")
		}
	}

	if strings.TrimSpace(o.DeliveryAddress) == "" {
		add(CodeMissingDeliveryAddress, "delivery_address", "delivery address is required")
	}
	if strings.TrimSpace(o.PaymentMethod) == "" {
		add(CodeMissingPaymentMethod, "payment_method", "payment method is required")
	}

	// total consistency
	if o.TotalAmount <= 0 || math.IsNaN(o.TotalAmount) || math.IsInf(o.TotalAmount, 0) {
		add(CodeInvalidTotalAmount, "total_amount", "total amount must be a positive number")
	} else if len(o.Items) > 0 {
		var sum float64
		for _, it := range o.Items {
			sum += it.LineTotal()
		}
		if math.Abs(sum-o.TotalAmount) > TotalTolerance {
			add(CodeTotalAmountMismatch, "total_amount",
				fmt.Sprintf("total amount %.2f does not match item sum %.2f", o.TotalAmount, sum))
		}
	}

	return models.ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}
