package events

import "sync"

// Handler receives the payload of an emitted event.
type Handler func(payload interface{})

var (
	mu       sync.RWMutex
	handlers = make(map[string][]Handler)
)

// On registers a handler for an event name, e.g. "properties.created".
func On(event string, h Handler) {
	mu.Lock()
	defer mu.Unlock()
	handlers[event] = append(handlers[event], h)
}

// Emit fires an event. Handlers run on their own goroutines so slow
// subscribers cannot block the request path.
func Emit(event string, payload interface{}) {
	mu.RLock()
	hs := handlers[event]
	mu.RUnlock()

	for _, h := range hs {
		go h(payload)
	}
}

// Reset drops all handlers. Test helper only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	handlers = make(map[string][]Handler)
}
