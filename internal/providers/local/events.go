package local

import (
	"context"
	"fmt"
	"time"

	"github.com/lagoonledger/lagoon/internal/events"
	"github.com/lagoonledger/lagoon/internal/provider"
	"github.com/lagoonledger/lagoon/internal/shared/errs"
	"github.com/lagoonledger/lagoon/internal/shared/id"
	"github.com/lagoonledger/lagoon/internal/shared/types"
)

// QueryEvents pages through the committed event log in the caller's order.
// The cursor is the global sequence of the last event of the previous page.
func (p *Provider) QueryEvents(ctx context.Context, filter *types.EventFilter, cursor *types.Cursor, limit *int, order types.Order) (page *types.Page[types.Event], err error) {
	start := time.Now()
	defer func() { p.metrics.ObserveProviderCall("QueryEvents", start, err) }()
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	max := provider.ClampLimit(limit, p.cfg.Pagination.DefaultLimit, p.cfg.Pagination.MaxLimit)
	pos, err := resolveCursor(cursor)
	if err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if pos > uint64(len(p.eventLog)) {
		return nil, fmt.Errorf("malformed cursor: position %d beyond log of %d", pos, len(p.eventLog))
	}

	page = &types.Page[types.Event]{Items: make([]types.Event, 0, max)}
	walkLog(len(p.eventLog), pos, order, func(idx int) bool {
		ev := p.eventLog[idx]
		if !filter.Matches(&ev) {
			return true
		}
		page.Items = append(page.Items, ev)
		if len(page.Items) == max {
			next := provider.EncodeCursor(ev.Seq)
			page.NextCursor = &next
			return false
		}
		return true
	})
	return page, nil
}

// GetEventsByTransaction returns the events a committed transaction
// emitted, in emission order. Unknown digests fail with a not-found error.
func (p *Provider) GetEventsByTransaction(ctx context.Context, digest types.TransactionDigest) (evs []types.Event, err error) {
	start := time.Now()
	defer func() { p.metrics.ObserveProviderCall("GetEventsByTransaction", start, err) }()
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if _, ok := p.txIndex[digest]; !ok {
		return nil, errs.NotFound(string(digest))
	}
	for _, ev := range p.eventLog {
		if ev.ID.TxDigest == digest {
			evs = append(evs, ev)
		}
	}
	return evs, nil
}

// SubscribeEvent registers a live event subscription. Events committed
// after this call that match the filter arrive on the subscription channel.
func (p *Provider) SubscribeEvent(ctx context.Context, filter *types.EventFilter) (sub *events.Subscription, err error) {
	start := time.Now()
	defer func() { p.metrics.ObserveProviderCall("SubscribeEvent", start, err) }()
	if err = ctx.Err(); err != nil {
		return nil, err
	}
	return p.bus.Subscribe(filter)
}

// UnsubscribeEvent cancels a subscription. Unknown or already-cancelled IDs
// return false without error.
func (p *Provider) UnsubscribeEvent(ctx context.Context, subID id.SubscriptionID) (ok bool, err error) {
	start := time.Now()
	defer func() { p.metrics.ObserveProviderCall("UnsubscribeEvent", start, err) }()
	if err = ctx.Err(); err != nil {
		return false, err
	}
	return p.bus.Unsubscribe(subID), nil
}
