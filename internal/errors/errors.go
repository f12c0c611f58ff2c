// Package errors defines application-specific error types and sentinel errors.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	ErrProducerClosed   = errors.New("producer is closed")
	ErrNilEvent         = errors.New("event is nil")
	ErrMissingEventType = errors.New("event_type is required")
	ErrMissingIdentity  = errors.New("either user_id or device_id is required")
)

// ValidationError represents an analytics event that cannot be published.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field=%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// PublishError represents a failure to deliver an event to Kafka.
type PublishError struct {
	Topic   string
	EventID string
	Err     error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish error: topic=%s event_id=%s: %v", e.Topic, e.EventID, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
