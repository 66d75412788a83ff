package resource

import (
	"errors"
	"sync"
)

var ErrClosed = errors.New("resource table closed")

// Table owns private values attached to script objects.
//
// A value is dropped exactly once: through Release, or through Close for
// whatever is still live. Release while the handle is borrowed is deferred
// until the last borrow is returned; a handle pending release cannot be
// borrowed again.
type Table struct {
	entries   []entry
	freeList  []Handle
	observers []Observer
	mu        sync.Mutex
	closed    bool
}

type entry struct {
	value       any
	typeID      TypeID
	borrowCount uint32
	valid       bool
	releasing   bool
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		entries:  make([]entry, 0, 64),
		freeList: make([]Handle, 0, 16),
	}
}

// Insert stores a value and returns its handle.
func (t *Table) Insert(typeID TypeID, value any) (Handle, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return 0, ErrClosed
	}

	e := entry{
		typeID: typeID,
		value:  value,
		valid:  true,
	}

	var handle Handle
	if n := len(t.freeList); n > 0 {
		handle = t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
		t.entries[handle-1] = e
	} else {
		t.entries = append(t.entries, e)
		handle = Handle(len(t.entries))
	}
	t.mu.Unlock()

	t.notify(Event{Type: EventCreated, Handle: handle, TypeID: typeID, Value: value})
	return handle, nil
}

// Get retrieves a live value by handle.
func (t *Table) Get(handle Handle) (any, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.lookup(handle)
	if e == nil || e.releasing {
		return nil, false
	}
	return e.value, true
}

// Borrow pins a value for the duration of a call and returns it.
// Borrow fails once release has been requested.
func (t *Table) Borrow(handle Handle) (any, bool) {
	t.mu.Lock()
	e := t.lookup(handle)
	if e == nil || e.releasing {
		t.mu.Unlock()
		return nil, false
	}
	e.borrowCount++
	value, typeID := e.value, e.typeID
	t.mu.Unlock()

	t.notify(Event{Type: EventBorrowed, Handle: handle, TypeID: typeID, Value: value})
	return value, true
}

// ReturnBorrow unpins a value. When it was the last borrow of a value
// pending release, the value is dropped now.
func (t *Table) ReturnBorrow(handle Handle) bool {
	t.mu.Lock()
	e := t.lookup(handle)
	if e == nil || e.borrowCount == 0 {
		t.mu.Unlock()
		return false
	}
	e.borrowCount--
	value, typeID := e.value, e.typeID
	dropNow := e.releasing && e.borrowCount == 0
	if dropNow {
		t.clear(handle)
	}
	t.mu.Unlock()

	t.notify(Event{Type: EventBorrowReturned, Handle: handle, TypeID: typeID, Value: value})
	if dropNow {
		t.dropped(handle, typeID, value)
	}
	return true
}

// Release requests that the value be dropped. It reports whether the value
// was dropped immediately; a borrowed value is dropped by the final ReturnBorrow.
func (t *Table) Release(handle Handle) bool {
	t.mu.Lock()
	e := t.lookup(handle)
	if e == nil || e.releasing {
		t.mu.Unlock()
		return false
	}
	if e.borrowCount > 0 {
		e.releasing = true
		t.mu.Unlock()
		return false
	}
	value, typeID := e.value, e.typeID
	t.clear(handle)
	t.mu.Unlock()

	t.dropped(handle, typeID, value)
	return true
}

// Subscribe adds an observer for lifecycle events.
func (t *Table) Subscribe(o Observer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observers = append(t.observers, o)
}

// Len returns the number of values not yet dropped.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	count := 0
	for _, e := range t.entries {
		if e.valid {
			count++
		}
	}
	return count
}

// Close drops every remaining value and stops accepting inserts.
func (t *Table) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true

	type pending struct {
		value  any
		handle Handle
		typeID TypeID
	}
	var live []pending
	for i := range t.entries {
		if t.entries[i].valid {
			live = append(live, pending{t.entries[i].value, Handle(i + 1), t.entries[i].typeID})
		}
	}
	t.entries = nil
	t.freeList = nil
	t.mu.Unlock()

	for _, p := range live {
		t.dropped(p.handle, p.typeID, p.value)
	}
	return nil
}

// lookup must be called with t.mu held.
func (t *Table) lookup(handle Handle) *entry {
	if handle == 0 || int(handle) > len(t.entries) {
		return nil
	}
	e := &t.entries[handle-1]
	if !e.valid {
		return nil
	}
	return e
}

// clear must be called with t.mu held.
func (t *Table) clear(handle Handle) {
	t.entries[handle-1] = entry{}
	t.freeList = append(t.freeList, handle)
}

func (t *Table) dropped(handle Handle, typeID TypeID, value any) {
	if d, ok := value.(Dropper); ok {
		d.Drop()
	}
	t.notify(Event{Type: EventDropped, Handle: handle, TypeID: typeID, Value: value})
}

func (t *Table) notify(e Event) {
	t.mu.Lock()
	observers := make([]Observer, len(t.observers))
	copy(observers, t.observers)
	t.mu.Unlock()

	for _, o := range observers {
		o.OnResourceEvent(e)
	}
}
