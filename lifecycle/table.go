package lifecycle

import (
	"sync"

	"github.com/wippyai/rescue/errors"
)

// Table tracks live instances through the Live -> Cleaning -> terminal
// state machine and notifies observers of transitions.
//
// The table is the runtime witness for the drop-then-rescue contract:
// Begin and Finish refuse out-of-order transitions, so a rescue can
// happen at most once per handle and never before cleanup.
type Table struct {
	entries   []entry
	freeList  []Handle
	observers []Observer
	mu        sync.RWMutex
	obsMu     sync.RWMutex
	closed    bool
}

type entry struct {
	value any
	state State
	valid bool
}

// NewTable creates an empty instance table.
func NewTable() *Table {
	return &Table{
		entries:  make([]entry, 0, 64),
		freeList: make([]Handle, 0, 16),
	}
}

// Insert registers a live instance and returns its handle.
// Returns 0 if the table is closed.
func (t *Table) Insert(value any) Handle {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return 0
	}

	e := entry{value: value, state: StateLive, valid: true}

	var handle Handle
	if len(t.freeList) > 0 {
		handle = t.freeList[len(t.freeList)-1]
		t.freeList = t.freeList[:len(t.freeList)-1]
		t.entries[handle-1] = e
	} else {
		t.entries = append(t.entries, e)
		handle = Handle(len(t.entries))
	}
	t.mu.Unlock()

	t.notify(Event{Type: EventCreated, Handle: handle, Value: value})
	return handle
}

// Get retrieves an instance by handle. Terminal instances are gone.
func (t *Table) Get(handle Handle) (any, bool) {
	if handle == 0 {
		return nil, false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	idx := handle - 1
	if int(idx) >= len(t.entries) {
		return nil, false
	}

	e := t.entries[idx]
	if !e.valid {
		return nil, false
	}
	return e.value, true
}

// State returns the current state of a handle.
func (t *Table) State(handle Handle) (State, bool) {
	if handle == 0 {
		return 0, false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	idx := handle - 1
	if int(idx) >= len(t.entries) || !t.entries[idx].valid {
		return 0, false
	}
	return t.entries[idx].state, true
}

// Begin transitions Live -> Cleaning and returns the instance so the
// cleanup routine keeps full access to every field.
func (t *Table) Begin(handle Handle) (any, error) {
	t.mu.Lock()

	if t.closed {
		t.mu.Unlock()
		return nil, errors.Closed()
	}

	e, err := t.lookup(handle)
	if err != nil {
		t.mu.Unlock()
		return nil, err
	}
	if e.state != StateLive {
		got := e.state.String()
		t.mu.Unlock()
		return nil, errors.State(nil, got, StateLive.String())
	}

	e.state = StateCleaning
	value := e.value
	t.mu.Unlock()

	t.notify(Event{Type: EventCleaning, Handle: handle, Value: value})
	return value, nil
}

// Finish completes the Cleaning -> Rescued (or Cleaning -> Dropped)
// transition and removes the instance from the table. The extraction is
// atomic with respect to the rest of the drop sequence: the entry is
// invalidated under the table lock, so no intermediate state is
// observable through the table.
func (t *Table) Finish(handle Handle, rescued bool) (any, error) {
	t.mu.Lock()

	e, err := t.lookup(handle)
	if err != nil {
		t.mu.Unlock()
		return nil, err
	}
	if e.state != StateCleaning {
		got := e.state.String()
		t.mu.Unlock()
		return nil, errors.State(nil, got, StateCleaning.String())
	}

	value := e.value
	if rescued {
		e.state = StateRescued
	} else {
		e.state = StateDropped
	}
	e.valid = false
	e.value = nil
	t.freeList = append(t.freeList, handle)
	t.mu.Unlock()

	evt := EventDropped
	if rescued {
		evt = EventRescued
	}
	t.notify(Event{Type: evt, Handle: handle, Value: value})
	return value, nil
}

// Subscribe adds an observer for lifecycle events.
func (t *Table) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer.
func (t *Table) Unsubscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

// Len returns the number of tracked (non-terminal) instances.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	count := 0
	for _, e := range t.entries {
		if e.valid {
			count++
		}
	}
	return count
}

// Each iterates over all tracked instances.
func (t *Table) Each(fn func(Handle, State, any) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for i, e := range t.entries {
		if e.valid {
			if !fn(Handle(i+1), e.state, e.value) {
				break
			}
		}
	}
}

// Clear drops all live instances in place, without rescue.
func (t *Table) Clear() {
	// Collect handles first to avoid holding the lock during transitions
	var handles []Handle
	t.Each(func(h Handle, s State, _ any) bool {
		if s == StateLive {
			handles = append(handles, h)
		}
		return true
	})
	for _, h := range handles {
		if _, err := t.Begin(h); err != nil {
			continue
		}
		if value, err := t.Finish(h, false); err == nil {
			Release(value)
		}
	}
}

// Close releases all instances and stops accepting operations.
func (t *Table) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true

	for i := range t.entries {
		if t.entries[i].valid {
			Release(t.entries[i].value)
			t.entries[i].valid = false
			t.entries[i].value = nil
			t.entries[i].state = StateDropped
		}
	}

	t.entries = nil
	t.freeList = nil
	t.mu.Unlock()
	return nil
}

// lookup must be called with t.mu held.
func (t *Table) lookup(handle Handle) (*entry, error) {
	if handle == 0 {
		return nil, errors.NotFound(errors.PhaseRuntime, "handle", "0")
	}
	idx := handle - 1
	if int(idx) >= len(t.entries) || !t.entries[idx].valid {
		return nil, errors.New(errors.PhaseRuntime, errors.KindNotFound).
			Detail("handle %d not tracked", handle).Build()
	}
	return &t.entries[idx], nil
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnLifecycleEvent(e)
	}
}
