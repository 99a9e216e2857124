package stream

import (
	"encoding/json"
	"testing"
	"time"
)

func TestPublishReachesSubscriber(t *testing.T) {
	h := NewHub()
	ch := h.subscribe("job-1")
	defer h.unsubscribe("job-1", ch)

	h.Publish("job-1", map[string]int{"percent": 40})

	select {
	case data := <-ch:
		var got map[string]int
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("bad payload: %v", err)
		}
		if got["percent"] != 40 {
			t.Errorf("percent = %d, want 40", got["percent"])
		}
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}

func TestPublishIgnoresOtherTopics(t *testing.T) {
	h := NewHub()
	ch := h.subscribe("job-1")
	defer h.unsubscribe("job-1", ch)

	h.Publish("job-2", "noise")

	select {
	case data := <-ch:
		t.Fatalf("unexpected event: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSlowSubscriberDropsEventsNotConnection(t *testing.T) {
	h := NewHub()
	ch := h.subscribe("job-1")
	defer h.unsubscribe("job-1", ch)

	// channel buffer is 16; overflow must not block Publish
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			h.Publish("job-1", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on slow subscriber")
	}
	if len(ch) != 16 {
		t.Errorf("buffered events = %d, want 16", len(ch))
	}
}

func TestUnsubscribeRemovesTopic(t *testing.T) {
	h := NewHub()
	ch := h.subscribe("job-1")
	h.unsubscribe("job-1", ch)

	h.mu.RLock()
	_, exists := h.topics["job-1"]
	h.mu.RUnlock()
	if exists {
		t.Error("empty topic should be removed")
	}
}

func TestCloseClosesSubscribers(t *testing.T) {
	h := NewHub()
	ch := h.subscribe("job-1")
	h.Close()

	if _, ok := <-ch; ok {
		t.Error("channel should be closed")
	}
	// subscribing after Close yields a closed channel
	ch2 := h.subscribe("job-2")
	if _, ok := <-ch2; ok {
		t.Error("post-close subscription should be closed")
	}
}
