package events_test

import (
	"testing"
	"time"

	"github.com/darlyn-ai/darlyn/backend/internal/events"
)

func TestBroadcastReachesSubscribers(t *testing.T) {
	hub := events.NewHub()
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	hub.LoadingChanged(true)

	select {
	case ev := <-ch:
		if ev.Type != "loading" || !ev.Value {
			t.Fatalf("unexpected event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
}

func TestNoticeCarriesMessage(t *testing.T) {
	hub := events.NewHub()
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	hub.Notice("something went wrong")

	select {
	case ev := <-ch:
		if ev.Type != "notice" || ev.Level != "error" || ev.Message != "something went wrong" {
			t.Fatalf("unexpected event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
}

func TestSlowClientDoesNotBlockBroadcast(t *testing.T) {
	hub := events.NewHub()
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	// Overflow the client buffer; Broadcast must never block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.LoadingChanged(i%2 == 0)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked on a slow client")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	hub := events.NewHub()
	ch := hub.Subscribe()

	hub.Unsubscribe(ch)

	if _, ok := <-ch; ok {
		t.Fatal("expected closed channel after unsubscribe")
	}
}
