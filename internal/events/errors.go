package events

import "errors"

var (
	// ErrBusClosed rejects subscriptions on a closed bus.
	ErrBusClosed = errors.New("event bus closed")

	// ErrTooManySubscriptions rejects registrations past the configured cap.
	ErrTooManySubscriptions = errors.New("subscription limit reached")

	// ErrSubscriptionClosed reports a receive on a cancelled subscription.
	ErrSubscriptionClosed = errors.New("subscription closed")
)
