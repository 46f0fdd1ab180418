package game

import (
	"sync"
	"time"
)

// EventEntry is one line of the game log: a named event plus
// human-readable payload text.
type EventEntry struct {
	Turn uint64    `json:"turn"`
	At   time.Time `json:"at"`
	Name string    `json:"name"`
	Text string    `json:"text"`
}

// EventLog is a bounded FIFO of game events with synchronous listener
// broadcast. Listeners are invoked on the emitting goroutine, at the
// turn boundary; a handler must not re-enter the turn engine.
type EventLog struct {
	mu        sync.Mutex
	cap       int
	entries   []EventEntry
	listeners map[int]func(EventEntry)
	nextID    int
}

func NewEventLog(capacity int) *EventLog {
	if capacity <= 0 {
		capacity = 100
	}
	return &EventLog{
		cap:       capacity,
		listeners: map[int]func(EventEntry){},
	}
}

// Subscribe registers a listener and returns its handle. Safe to call
// from any goroutine at any time.
func (e *EventLog) Subscribe(fn func(EventEntry)) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextID++
	e.listeners[e.nextID] = fn
	return e.nextID
}

func (e *EventLog) Unsubscribe(id int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.listeners, id)
}

// Emit appends an entry, evicting the oldest past capacity, and
// broadcasts it to all current listeners.
func (e *EventLog) Emit(turn uint64, name, text string) {
	entry := EventEntry{Turn: turn, At: time.Now().UTC(), Name: name, Text: text}

	e.mu.Lock()
	e.entries = append(e.entries, entry)
	if len(e.entries) > e.cap {
		e.entries = e.entries[len(e.entries)-e.cap:]
	}
	fns := make([]func(EventEntry), 0, len(e.listeners))
	for _, fn := range e.listeners {
		fns = append(fns, fn)
	}
	e.mu.Unlock()

	for _, fn := range fns {
		fn(entry)
	}
}

// Entries returns a copy of the retained log, oldest first.
func (e *EventLog) Entries() []EventEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]EventEntry, len(e.entries))
	copy(out, e.entries)
	return out
}

func (e *EventLog) restore(entries []EventEntry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(entries) > e.cap {
		entries = entries[len(entries)-e.cap:]
	}
	e.entries = append(e.entries[:0], entries...)
}
