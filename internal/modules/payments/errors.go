package payments

import (
	"errors"
	"strings"
)

var (
	ErrIntentNotFound   = errors.New("payment intent not found")
	ErrBadSignature     = errors.New("webhook signature verification failed")
	ErrUnknownEventType = errors.New("unknown webhook event type")
	ErrBadClientSecret  = errors.New("malformed client secret")
)

// Confirmation error types. Only card and validation errors carry a message
// that is safe to show to the customer.
const (
	ErrorTypeCard           = "card_error"
	ErrorTypeValidation     = "validation_error"
	ErrorTypeInvalidRequest = "invalid_request_error"
)

// ConfirmError is a structured failure returned by ConfirmIntent.
type ConfirmError struct {
	Type    string
	Code    string
	Message string
}

func (e *ConfirmError) Error() string {
	if e.Code != "" {
		return e.Type + " (" + e.Code + "): " + e.Message
	}
	return e.Type + ": " + e.Message
}

// CustomerFacing reports whether Message may be shown verbatim.
func (e *ConfirmError) CustomerFacing() bool {
	return e.Type == ErrorTypeCard || e.Type == ErrorTypeValidation
}

// IntentIDFromSecret extracts "pi_123" from "pi_123_secret_abc".
func IntentIDFromSecret(clientSecret string) (string, error) {
	i := strings.Index(clientSecret, "_secret")
	if i <= 0 {
		return "", ErrBadClientSecret
	}
	return clientSecret[:i], nil
}
