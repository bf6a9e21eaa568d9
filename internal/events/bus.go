// Package events implements the subscription bus for ledger events.
//
// Subscriptions are long-lived registrations identified by an opaque
// SubscriptionID. Publish fans an event out to every subscription whose
// filter matches, without ever blocking the publisher: a subscriber that
// falls behind loses events rather than stalling the ledger. Unsubscribe is
// explicit and idempotent; cancelling an unknown or already-cancelled
// subscription reports false instead of failing.
package events

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/lagoonledger/lagoon/internal/infrastructure/logging"
	"github.com/lagoonledger/lagoon/internal/infrastructure/monitoring"
	"github.com/lagoonledger/lagoon/internal/shared/id"
	"github.com/lagoonledger/lagoon/internal/shared/types"
)

// Options tunes bus behavior.
type Options struct {
	// BufferSize is the per-subscription channel capacity.
	BufferSize int
	// MaxSubscriptions caps concurrent registrations; 0 means unlimited.
	MaxSubscriptions int
	// RateLimitPerSec throttles delivery per subscription; 0 disables.
	RateLimitPerSec float64
}

// DefaultOptions returns the bus defaults.
func DefaultOptions() Options {
	return Options{BufferSize: 128, MaxSubscriptions: 1024}
}

// Subscription is a live event registration. Events arrive on C until
// Unsubscribe (or Close) closes it.
type Subscription struct {
	ID     id.SubscriptionID
	C      <-chan types.Event
	filter *types.EventFilter

	ch      chan types.Event
	limiter *rate.Limiter
}

// Bus is the event fan-out hub. Safe for concurrent use.
type Bus struct {
	mu     sync.RWMutex
	subs   map[id.SubscriptionID]*Subscription
	closed bool

	opts    Options
	log     *logging.Logger
	metrics *monitoring.Metrics
}

// NewBus creates a bus. log and metrics may be nil.
func NewBus(opts Options, log *logging.Logger, metrics *monitoring.Metrics) *Bus {
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultOptions().BufferSize
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &Bus{
		subs:    make(map[id.SubscriptionID]*Subscription),
		opts:    opts,
		log:     log.Named("events"),
		metrics: metrics,
	}
}

// Subscribe registers a filter and returns the live subscription. A nil
// filter matches every event.
func (b *Bus) Subscribe(filter *types.EventFilter) (*Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrBusClosed
	}
	if b.opts.MaxSubscriptions > 0 && len(b.subs) >= b.opts.MaxSubscriptions {
		return nil, ErrTooManySubscriptions
	}

	ch := make(chan types.Event, b.opts.BufferSize)
	sub := &Subscription{
		ID:     id.NewSubscriptionID(),
		C:      ch,
		filter: filter,
		ch:     ch,
	}
	if b.opts.RateLimitPerSec > 0 {
		sub.limiter = rate.NewLimiter(rate.Limit(b.opts.RateLimitPerSec), b.opts.BufferSize)
	}
	b.subs[sub.ID] = sub

	if b.metrics != nil {
		b.metrics.SubscriptionsActive.Set(float64(len(b.subs)))
	}
	b.log.Debug("subscription registered", zap.String("id", string(sub.ID)))
	return sub, nil
}

// Unsubscribe cancels a registration and closes its channel. Idempotent:
// unknown or already-cancelled IDs report false.
func (b *Bus) Unsubscribe(subID id.SubscriptionID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	sub, ok := b.subs[subID]
	if !ok {
		return false
	}
	delete(b.subs, subID)
	close(sub.ch)

	if b.metrics != nil {
		b.metrics.SubscriptionsActive.Set(float64(len(b.subs)))
	}
	b.log.Debug("subscription cancelled", zap.String("id", string(subID)))
	return true
}

// Publish fans the event out to matching subscriptions. Never blocks: if a
// subscriber's buffer is full (or its rate limit exhausted), the event is
// dropped for that subscriber and counted.
func (b *Bus) Publish(ev types.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	if b.metrics != nil {
		b.metrics.EventsPublished.Inc()
	}

	for _, sub := range b.subs {
		if !sub.filter.Matches(&ev) {
			continue
		}
		if sub.limiter != nil && !sub.limiter.Allow() {
			b.drop(sub.ID)
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			b.drop(sub.ID)
		}
	}
}

// Next waits for the subscription's next event or the context's end.
func (s *Subscription) Next(ctx context.Context) (types.Event, error) {
	select {
	case ev, ok := <-s.C:
		if !ok {
			return types.Event{}, ErrSubscriptionClosed
		}
		return ev, nil
	case <-ctx.Done():
		return types.Event{}, ctx.Err()
	}
}

// Len returns the number of live subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close cancels every subscription and rejects further use.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for subID, sub := range b.subs {
		delete(b.subs, subID)
		close(sub.ch)
	}
	if b.metrics != nil {
		b.metrics.SubscriptionsActive.Set(0)
	}
}

func (b *Bus) drop(subID id.SubscriptionID) {
	if b.metrics != nil {
		b.metrics.EventsDropped.Inc()
	}
	b.log.Warn("event dropped: subscriber not keeping up", zap.String("id", string(subID)))
}
