package dispatcher

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/quotient-crm/approval-engine/internal/domain/event"
)

func testEvent(t event.Type) *event.Event {
	return event.New(t, "appr-1", "quot-1", "user-1", nil)
}

func TestDispatcher_Dispatch(t *testing.T) {
	d := NewDispatcher()

	var called int32
	d.Subscribe(event.TypeRequested, func(ctx context.Context, evt *event.Event) error {
		atomic.AddInt32(&called, 1)
		return nil
	})

	if err := d.Dispatch(context.Background(), testEvent(event.TypeRequested)); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if called != 1 {
		t.Errorf("handler called %d times, want 1", called)
	}
}

func TestDispatcher_DispatchNoHandlers(t *testing.T) {
	d := NewDispatcher()

	if err := d.Dispatch(context.Background(), testEvent(event.TypeApproved)); err != nil {
		t.Errorf("Dispatch() with no handlers error = %v", err)
	}
}

func TestDispatcher_DispatchHandlerError(t *testing.T) {
	d := NewDispatcher()

	wantErr := errors.New("sink unavailable")
	d.SubscribeNamed(event.TypeRequested, "failing", func(ctx context.Context, evt *event.Event) error {
		return wantErr
	})

	err := d.Dispatch(context.Background(), testEvent(event.TypeRequested))
	if !errors.Is(err, wantErr) {
		t.Errorf("Dispatch() error = %v, want wrapped %v", err, wantErr)
	}
}

func TestDispatcher_DispatchRecoverFromPanic(t *testing.T) {
	d := NewDispatcher()

	d.Subscribe(event.TypeRequested, func(ctx context.Context, evt *event.Event) error {
		panic("handler exploded")
	})

	err := d.Dispatch(context.Background(), testEvent(event.TypeRequested))
	if err == nil {
		t.Error("Dispatch() should surface handler panic as error")
	}
}

func TestDispatcher_DispatchAsync(t *testing.T) {
	d := NewDispatcher()

	var wg sync.WaitGroup
	wg.Add(2)
	handler := func(ctx context.Context, evt *event.Event) error {
		wg.Done()
		return nil
	}

	d.SubscribeNamed(event.TypeRequested, "first", handler)
	d.SubscribeNamed(event.TypeRequested, "second", handler)

	d.DispatchAsync(context.Background(), testEvent(event.TypeRequested))
	wg.Wait()
}

func TestDispatcher_Unsubscribe(t *testing.T) {
	d := NewDispatcher()

	var called int32
	d.SubscribeNamed(event.TypeRequested, "target", func(ctx context.Context, evt *event.Event) error {
		atomic.AddInt32(&called, 1)
		return nil
	})

	d.Unsubscribe(event.TypeRequested, "target")

	if err := d.Dispatch(context.Background(), testEvent(event.TypeRequested)); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if called != 0 {
		t.Errorf("unsubscribed handler called %d times", called)
	}
}

func TestDispatcher_ListHandlers(t *testing.T) {
	d := NewDispatcher()

	d.SubscribeNamed(event.TypeEscalated, "audit", func(ctx context.Context, evt *event.Event) error {
		return nil
	})

	handlers := d.ListHandlers(event.TypeEscalated)
	if len(handlers) != 1 || handlers[0].Name != "audit" {
		t.Errorf("ListHandlers() = %+v", handlers)
	}
}

func TestDispatcher_Close(t *testing.T) {
	d := NewDispatcher()

	if err := d.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if err := d.Close(); err == nil {
		t.Error("second Close() should fail")
	}

	if err := d.Dispatch(context.Background(), testEvent(event.TypeRequested)); err == nil {
		t.Error("Dispatch() after Close() should fail")
	}
}

func TestDispatcher_DispatchAsyncPreservesOrder(t *testing.T) {
	d := NewDispatcher()

	var mu sync.Mutex
	var observed []event.Type
	record := func(ctx context.Context, evt *event.Event) error {
		mu.Lock()
		observed = append(observed, evt.Type)
		mu.Unlock()
		return nil
	}

	// A slow consumer of the first event must not let the terminal event
	// overtake it
	d.SubscribeNamed(event.TypeRequested, "recorder", func(ctx context.Context, evt *event.Event) error {
		time.Sleep(30 * time.Millisecond)
		return record(ctx, evt)
	})
	d.SubscribeNamed(event.TypeApproved, "recorder", record)

	d.DispatchAsync(context.Background(), testEvent(event.TypeRequested))
	d.DispatchAsync(context.Background(), testEvent(event.TypeApproved))

	if err := d.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	want := []event.Type{event.TypeRequested, event.TypeApproved}
	if len(observed) != len(want) || observed[0] != want[0] || observed[1] != want[1] {
		t.Errorf("observed order = %v, want %v", observed, want)
	}
}
