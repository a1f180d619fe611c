package eventbus

import "testing"

func TestBusPublishSubscribe(t *testing.T) {
	bus := New()
	ch := bus.Subscribe()
	bus.Publish("hello")
	v := <-ch
	if v != "hello" {
		t.Fatalf("expected hello got %v", v)
	}
	bus.Unsubscribe(ch)
}

func TestBusClose(t *testing.T) {
	bus := New()
	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()
	bus.Close()
	if _, ok := <-ch1; ok {
		t.Fatalf("expected ch1 closed")
	}
	if _, ok := <-ch2; ok {
		t.Fatalf("expected ch2 closed")
	}
}

func TestBusNonBlockingPublish(t *testing.T) {
	bus := New()
	ch := bus.Subscribe()
	// Overflow the subscriber buffer; publish must never block the producer.
	for i := 0; i < 100; i++ {
		bus.Publish(OrderCancelled{OrderID: "o"})
	}
	n := 0
	for range len(ch) {
		<-ch
		n++
	}
	if n == 0 || n > 16 {
		t.Fatalf("buffered events = %d, want between 1 and the channel capacity", n)
	}
	bus.Unsubscribe(ch)
}

func TestBusUnsubscribeAfterClose(t *testing.T) {
	bus := New()
	ch := bus.Subscribe()
	bus.Close()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("panic on Unsubscribe after Close: %v", r)
		}
	}()
	bus.Unsubscribe(ch)
}
