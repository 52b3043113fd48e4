// Package events is the in-process signal bus that tells the router when a
// session is established or cleared.
package events

import (
	"context"
	"errors"
	"sync"
)

// Kind names an event. The set is closed.
type Kind int

const (
	// SessionEstablished fires after a successful login has been persisted.
	// Event.RedirectPath carries the suggested landing route.
	SessionEstablished Kind = iota + 1
	// SessionCleared fires after the session record has been removed.
	SessionCleared
)

func (k Kind) String() string {
	switch k {
	case SessionEstablished:
		return "session-established"
	case SessionCleared:
		return "session-cleared"
	}
	return "unknown"
}

// Event is a single signal.
type Event struct {
	Kind         Kind
	RedirectPath string
}

// Established builds a SessionEstablished event.
func Established(redirect string) Event {
	return Event{Kind: SessionEstablished, RedirectPath: redirect}
}

// Cleared builds a SessionCleared event.
func Cleared() Event {
	return Event{Kind: SessionCleared}
}

// Handler receives events. It runs on the emitting goroutine.
type Handler func(Event)

// Subscription identifies a registered handler.
type Subscription struct {
	id   uint64
	kind Kind
}

// Bus is a publish/subscribe hub. The zero value is ready to use.
type Bus struct {
	mu       sync.Mutex
	nextID   uint64
	handlers map[Kind]map[uint64]Handler
}

// New returns an empty bus.
func New() *Bus {
	return &Bus{}
}

// On registers h for kind.
func (b *Bus) On(kind Kind, h Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handlers == nil {
		b.handlers = make(map[Kind]map[uint64]Handler)
	}
	if b.handlers[kind] == nil {
		b.handlers[kind] = make(map[uint64]Handler)
	}
	b.nextID++
	b.handlers[kind][b.nextID] = h
	return &Subscription{id: b.nextID, kind: kind}
}

// Off removes a subscription. Removing twice, or removing nil, is a no-op.
func (b *Bus) Off(sub *Subscription) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers[sub.kind], sub.id)
}

// Emit delivers e to every handler registered for e.Kind. Handlers are called
// outside the lock so they may subscribe or unsubscribe.
func (b *Bus) Emit(e Event) {
	b.mu.Lock()
	hs := make([]Handler, 0, len(b.handlers[e.Kind]))
	for _, h := range b.handlers[e.Kind] {
		hs = append(hs, h)
	}
	b.mu.Unlock()

	for _, h := range hs {
		h(e)
	}
}

// Count returns the number of handlers registered for kind.
func (b *Bus) Count(kind Kind) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers[kind])
}

// ErrClosed is returned by Wait once the mailbox is closed.
var ErrClosed = errors.New("events: mailbox closed")

// Mailbox is a one-slot subscription: a newer event replaces an undelivered
// older one, so a slow consumer only ever sees the latest state change.
type Mailbox struct {
	bus  *Bus
	subs []*Subscription
	ch   chan Event
	done chan struct{}
	once sync.Once
	mu   sync.Mutex
}

// Listen opens a mailbox for kinds. Close it when done.
func (b *Bus) Listen(kinds ...Kind) *Mailbox {
	m := &Mailbox{bus: b, ch: make(chan Event, 1), done: make(chan struct{})}
	for _, k := range kinds {
		m.subs = append(m.subs, b.On(k, m.put))
	}
	return m
}

func (m *Mailbox) put(e Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	select {
	case <-m.ch:
	default:
	}
	m.ch <- e
}

// Wait blocks until an event arrives, the mailbox is closed, or ctx is done.
func (m *Mailbox) Wait(ctx context.Context) (Event, error) {
	select {
	case e := <-m.ch:
		return e, nil
	case <-m.done:
		return Event{}, ErrClosed
	case <-ctx.Done():
		return Event{}, ctx.Err()
	}
}

// Close unsubscribes the mailbox. It is safe to call more than once.
func (m *Mailbox) Close() {
	m.once.Do(func() {
		for _, s := range m.subs {
			m.bus.Off(s)
		}
		close(m.done)
	})
}
