package notify

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a state-change notification.
// Notifications are immutable once created.
type Notification struct {
	// State is the state name this notification announces. Never empty.
	State string

	// Params is the optional payload attached to the state change.
	Params any

	// Meta contains standard notification information.
	Meta Meta
}

// Meta contains standard information attached to every notification.
type Meta struct {
	// ID is a unique identifier for this notification instance.
	ID string

	// Timestamp is when the notification was created.
	Timestamp time.Time

	// Source identifies who published the notification.
	Source string
}

// New creates a notification for the given state.
func New(state string, params any, source string) Notification {
	return Notification{
		State:  state,
		Params: params,
		Meta: Meta{
			ID:        uuid.NewString(),
			Timestamp: time.Now(),
			Source:    source,
		},
	}
}

// HasParams reports whether the notification carries a payload.
func (n Notification) HasParams() bool {
	return n.Params != nil
}
