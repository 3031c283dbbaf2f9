package notify

import "errors"

// Sentinel errors for the notification bus and codec.
var (
	// ErrMissingState is returned when a notification has no state name.
	ErrMissingState = errors.New("notification has no state name")

	// ErrInvalidJSON is returned when notification data is not valid JSON.
	ErrInvalidJSON = errors.New("notification is not valid JSON")

	// ErrNilHandler is returned when a nil handler is subscribed.
	ErrNilHandler = errors.New("handler cannot be nil")

	// ErrInvalidSubscription is returned when a subscription is invalid.
	ErrInvalidSubscription = errors.New("invalid subscription")

	// ErrSubscriptionNotFound is returned when unsubscribing an unknown subscription.
	ErrSubscriptionNotFound = errors.New("subscription not found")
)
