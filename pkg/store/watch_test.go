package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"tableflip.dev/diary/pkg/entry"
)

func TestLocalWatchReportsRewrites(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := newTestLocal(t)
	events, err := p.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	writer, err := NewLocal(p.basePath, nil)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	if _, err := writer.Create(ctx, testEntry("a", entry.Note, 1)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	select {
	case ev := <-events:
		if ev.Type != EventEntriesChanged {
			t.Fatalf("unexpected event type %v", ev.Type)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for change event")
	}

	cancel()
	for range events {
	}
}

func TestLocalWatchRequiresBasePath(t *testing.T) {
	p := &Local{}
	if _, err := p.Watch(context.Background()); err == nil {
		t.Fatalf("expected error for empty base path")
	}
}

func TestEventThrottleCoalesces(t *testing.T) {
	throttle := newEventThrottle(20 * time.Millisecond)
	defer throttle.Stop()

	var (
		mu  sync.Mutex
		got []Event
	)
	done := make(chan struct{}, 1)
	send := func(ev Event) {
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
		select {
		case done <- struct{}{}:
		default:
		}
	}

	for i := 0; i < 5; i++ {
		throttle.Enqueue(Event{Type: EventEntriesChanged}, send)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("throttle never flushed")
	}
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 {
		t.Fatalf("expected one coalesced event, got %d", len(got))
	}
}

func TestThrottleStopWaitsForInFlightFlush(t *testing.T) {
	th := newEventThrottle(time.Millisecond)
	entered := make(chan struct{}, 4)
	release := make(chan struct{})
	send := func(Event) {
		entered <- struct{}{}
		<-release
	}

	th.Enqueue(Event{Type: EventEntriesChanged}, send)
	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("flush never started")
	}

	stopped := make(chan struct{})
	go func() {
		th.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
		t.Fatal("Stop returned while a flush was still sending")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop never returned")
	}

	th.Enqueue(Event{Type: EventInvalidated}, send)
	select {
	case <-entered:
		t.Fatal("flush ran after Stop")
	case <-time.After(20 * time.Millisecond):
	}
}
