package events

import "testing"

func TestPublishDeliversToSubscriber(t *testing.T) {
	b := NewBus()
	ch, unsubscribe := b.Subscribe(1)
	defer unsubscribe()

	b.Publish(Event{Kind: PortBlocked, Port: 2})

	select {
	case ev := <-ch:
		if ev.Kind != PortBlocked || ev.Port != 2 {
			t.Fatalf("got %+v", ev)
		}
	default:
		t.Fatal("expected an event to be waiting on the subscriber channel")
	}
}

func TestPublishWithNoSubscribersDoesNotBlock(t *testing.T) {
	b := NewBus()
	b.Publish(Event{Kind: RootChanged})
}

func TestPublishToFullChannelDoesNotBlock(t *testing.T) {
	b := NewBus()
	ch, unsubscribe := b.Subscribe(1)
	defer unsubscribe()

	b.Publish(Event{Kind: FrameDropped})
	b.Publish(Event{Kind: FrameDropped}) // channel already full, must not block

	if len(ch) != 1 {
		t.Fatalf("len(ch) = %d, want 1", len(ch))
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := NewBus()
	ch, unsubscribe := b.Subscribe(1)
	unsubscribe()

	b.Publish(Event{Kind: BPDUDropped})

	select {
	case ev, ok := <-ch:
		if ok {
			t.Fatalf("expected no delivery after unsubscribe, got %+v", ev)
		}
	default:
	}
}
