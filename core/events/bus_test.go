package events

import "testing"

func TestBusFanOut(t *testing.T) {
	bus := NewBus()
	ch1, cancel1 := bus.Subscribe(4)
	ch2, cancel2 := bus.Subscribe(4)
	defer cancel1()
	defer cancel2()

	bus.Emit(TierPromoted{From: "bronze", To: "silver"})

	for _, ch := range []<-chan Event{ch1, ch2} {
		select {
		case evt := <-ch:
			if evt.EventType() != TypeTierPromoted {
				t.Fatalf("unexpected event type %q", evt.EventType())
			}
		default:
			t.Fatalf("expected event to be delivered")
		}
	}
}

func TestBusEmitNeverBlocks(t *testing.T) {
	bus := NewBus()
	_, cancel := bus.Subscribe(1)
	defer cancel()

	// The second emit overflows the buffer and must be dropped, not block.
	bus.Emit(BadgeIssued{})
	bus.Emit(BadgeIssued{})
}

func TestBusCancelDetaches(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe(1)
	cancel()

	bus.Emit(BadgeIssued{})
	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel after cancel")
	}
}
