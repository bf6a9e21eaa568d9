package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lagoonledger/lagoon/internal/shared/id"
	"github.com/lagoonledger/lagoon/internal/shared/types"
)

func testEvent(evType types.EventType, sender types.Address) types.Event {
	return types.Event{
		ID:        types.EventID{TxDigest: "0xtx", EventSeq: 0},
		Type:      evType,
		Sender:    sender,
		Timestamp: time.Now(),
	}
}

func TestSubscribeReceives(t *testing.T) {
	bus := NewBus(DefaultOptions(), nil, nil)
	defer bus.Close()

	sub, err := bus.Subscribe(nil)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	bus.Publish(testEvent(types.EventObjectCreated, "0xa"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	ev, err := sub.Next(ctx)
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if ev.Type != types.EventObjectCreated {
		t.Errorf("unexpected event: %+v", ev)
	}
}

func TestFilterSelectsEvents(t *testing.T) {
	bus := NewBus(DefaultOptions(), nil, nil)
	defer bus.Close()

	wantType := types.EventObjectDeleted
	sub, err := bus.Subscribe(&types.EventFilter{Type: &wantType})
	if err != nil {
		t.Fatal(err)
	}

	bus.Publish(testEvent(types.EventObjectCreated, "0xa"))
	bus.Publish(testEvent(types.EventObjectDeleted, "0xa"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	ev, err := sub.Next(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if ev.Type != types.EventObjectDeleted {
		t.Errorf("filter should have skipped the create event, got %s", ev.Type)
	}

	select {
	case ev := <-sub.C:
		t.Errorf("no further events should arrive, got %+v", ev)
	default:
	}
}

func TestUnsubscribeIdempotent(t *testing.T) {
	bus := NewBus(DefaultOptions(), nil, nil)
	defer bus.Close()

	sub, err := bus.Subscribe(nil)
	if err != nil {
		t.Fatal(err)
	}

	if !bus.Unsubscribe(sub.ID) {
		t.Error("first unsubscribe should report true")
	}
	if bus.Unsubscribe(sub.ID) {
		t.Error("second unsubscribe should report false")
	}
	if bus.Unsubscribe(id.SubscriptionID("sub_unknown")) {
		t.Error("unknown ID should report false")
	}

	// Channel is closed, not left dangling.
	if _, ok := <-sub.C; ok {
		t.Error("cancelled subscription channel should be closed")
	}
}

func TestPublishNeverBlocks(t *testing.T) {
	bus := NewBus(Options{BufferSize: 2}, nil, nil)
	defer bus.Close()

	sub, err := bus.Subscribe(nil)
	if err != nil {
		t.Fatal(err)
	}

	// Nobody reads; publishing past the buffer must not stall.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			bus.Publish(testEvent(types.EventObjectMutated, "0xa"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}

	// The buffered events are still deliverable.
	if len(sub.C) != 2 {
		t.Errorf("expected full buffer of 2, got %d", len(sub.C))
	}
}

func TestSubscriptionLimit(t *testing.T) {
	bus := NewBus(Options{BufferSize: 1, MaxSubscriptions: 2}, nil, nil)
	defer bus.Close()

	for i := 0; i < 2; i++ {
		if _, err := bus.Subscribe(nil); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := bus.Subscribe(nil); !errors.Is(err, ErrTooManySubscriptions) {
		t.Errorf("expected subscription limit error, got %v", err)
	}
}

func TestCloseTerminatesAll(t *testing.T) {
	bus := NewBus(DefaultOptions(), nil, nil)
	a, _ := bus.Subscribe(nil)
	b, _ := bus.Subscribe(nil)

	bus.Close()

	for _, sub := range []*Subscription{a, b} {
		if _, ok := <-sub.C; ok {
			t.Error("Close should close all subscription channels")
		}
	}
	if bus.Len() != 0 {
		t.Errorf("no subscriptions should remain, got %d", bus.Len())
	}
	if _, err := bus.Subscribe(nil); !errors.Is(err, ErrBusClosed) {
		t.Errorf("closed bus should reject subscriptions, got %v", err)
	}
	bus.Close() // second close is a no-op
}

func TestNextContextCancel(t *testing.T) {
	bus := NewBus(DefaultOptions(), nil, nil)
	defer bus.Close()
	sub, _ := bus.Subscribe(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := sub.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
