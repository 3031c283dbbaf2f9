package notify

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/statewire/internal/route/dispatch"
)

// Handler receives notifications delivered by a Source.
type Handler interface {
	// HandleNotification processes one notification.
	HandleNotification(ctx context.Context, n Notification) error
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(ctx context.Context, n Notification) error

// HandleNotification implements the Handler interface.
func (f HandlerFunc) HandleNotification(ctx context.Context, n Notification) error {
	return f(ctx, n)
}

// Source is the subscription side of a notification channel.
// It is what notification consumers depend on; the concrete Bus is injected.
type Source interface {
	Subscribe(h Handler) (Subscription, error)
	Unsubscribe(sub Subscription) error
}

// Subscription represents an active bus subscription.
type Subscription interface {
	// ID returns the unique subscription identifier.
	ID() string

	// IsActive reports whether the subscription still receives notifications.
	IsActive() bool

	// Cancel permanently stops delivery to this subscription.
	Cancel()
}

// Stats contains bus delivery statistics.
type Stats struct {
	// Published is the total number of notifications published.
	Published uint64

	// Delivered is the total number of handler deliveries.
	Delivered uint64

	// HandlerErrors is the number of deliveries where the handler errored
	// or panicked.
	HandlerErrors uint64

	// Subscribers is the current number of active subscriptions.
	Subscribers int
}

// Bus is a synchronous in-process notification channel.
// Publish delivers to every active subscriber in subscription order, in the
// publisher's goroutine. Delivery runs through a dispatch.SyncDispatcher, so
// a subscriber error or panic does not stop delivery to later subscribers.
type Bus struct {
	mu   sync.RWMutex
	subs []*busSubscription

	disp      *dispatch.SyncDispatcher
	published atomic.Uint64
}

// NewBus creates a new notification bus.
func NewBus() *Bus {
	return &Bus{disp: dispatch.NewSyncDispatcher()}
}

// Subscribe registers a handler for all notifications on the bus.
func (b *Bus) Subscribe(h Handler) (Subscription, error) {
	if h == nil {
		return nil, ErrNilHandler
	}

	sub := &busSubscription{id: uuid.NewString(), handler: h}
	sub.active.Store(true)

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	return sub, nil
}

// Unsubscribe removes a subscription from the bus.
func (b *Bus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return ErrInvalidSubscription
	}
	sub.Cancel()

	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == sub.ID() {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return nil
		}
	}
	return ErrSubscriptionNotFound
}

// Publish delivers a notification to all active subscribers.
// The subscriber list is snapshotted first, so handlers may subscribe or
// unsubscribe during delivery without affecting the in-flight publish.
func (b *Bus) Publish(ctx context.Context, n Notification) error {
	if n.State == "" {
		return ErrMissingState
	}

	b.mu.RLock()
	snapshot := make([]*busSubscription, len(b.subs))
	copy(snapshot, b.subs)
	b.mu.RUnlock()

	b.published.Add(1)

	handlers := make([]dispatch.Handler, 0, len(snapshot))
	for _, sub := range snapshot {
		if !sub.active.Load() {
			continue
		}
		h := sub.handler
		handlers = append(handlers, dispatch.HandlerFunc(func(ctx context.Context, notification any) error {
			nn, ok := notification.(Notification)
			if !ok {
				return nil
			}
			return h.HandleNotification(ctx, nn)
		}))
	}

	b.disp.DispatchAll(ctx, n, handlers)
	return nil
}

// Stats returns current bus statistics.
func (b *Bus) Stats() Stats {
	b.mu.RLock()
	subscribers := len(b.subs)
	b.mu.RUnlock()

	ds := b.disp.Stats()
	return Stats{
		Published:     b.published.Load(),
		Delivered:     ds.Succeeded + ds.Failed + ds.Panicked,
		HandlerErrors: ds.Failed + ds.Panicked,
		Subscribers:   subscribers,
	}
}

// busSubscription is the internal Subscription implementation.
type busSubscription struct {
	id      string
	handler Handler
	active  atomic.Bool
}

// ID returns the subscription ID.
func (s *busSubscription) ID() string { return s.id }

// IsActive reports whether the subscription still receives notifications.
func (s *busSubscription) IsActive() bool { return s.active.Load() }

// Cancel permanently stops delivery.
func (s *busSubscription) Cancel() { s.active.Store(false) }
