package events

import (
	"testing"
	"time"
)

func TestEmitReachesAllHandlers(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	got := make(chan interface{}, 2)
	On("properties.created", func(payload interface{}) { got <- payload })
	On("properties.created", func(payload interface{}) { got <- payload })

	Emit("properties.created", "prop-1")

	for i := 0; i < 2; i++ {
		select {
		case payload := <-got:
			if payload != "prop-1" {
				t.Errorf("payload = %v, want prop-1", payload)
			}
		case <-time.After(time.Second):
			t.Fatal("handler was not invoked")
		}
	}
}

func TestEmitUnknownEventIsNoop(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	// Must not panic or block
	Emit("properties.deleted", nil)
}
