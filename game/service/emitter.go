package service

import "sync"

// Emitter is the local event bus between the service and the UI layer.
// Handlers run synchronously on the emitting goroutine, mirroring how
// broadcast handlers run on the guest transport's read loop, so a UI
// subscriber sees host-local and remote events with the same ordering
// guarantees.
type Emitter struct {
	mu       sync.RWMutex
	handlers map[string][]func(data any)
}

// NewEmitter creates an empty event bus.
func NewEmitter() *Emitter {
	return &Emitter{handlers: make(map[string][]func(data any))}
}

// On subscribes a handler to an event.
func (e *Emitter) On(event string, fn func(data any)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[event] = append(e.handlers[event], fn)
}

// Off removes every handler subscribed to an event.
func (e *Emitter) Off(event string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.handlers, event)
}

// Clear removes all handlers for all events.
func (e *Emitter) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = make(map[string][]func(data any))
}

// Emit invokes every handler for the event with the payload.
func (e *Emitter) Emit(event string, data any) {
	e.mu.RLock()
	handlers := append([]func(data any){}, e.handlers[event]...)
	e.mu.RUnlock()

	for _, fn := range handlers {
		fn(data)
	}
}
