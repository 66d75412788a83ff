package resource

// Handle is an opaque reference to a private value in a table.
// Handle 0 is reserved and always invalid.
type Handle uint32

// TypeID tags what a private value is used for.
type TypeID uint32

const (
	// TypeFunction marks the boxed Go closure behind a wrapped function object.
	TypeFunction TypeID = iota + 1
	// TypeProxy marks host state behind a proxy object.
	TypeProxy
)

// Event types for private value lifecycle notifications.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDropped
	EventBorrowed
	EventBorrowReturned
)

// Event represents a lifecycle event.
type Event struct {
	Value  any
	Handle Handle
	TypeID TypeID
	Type   EventType
}

// Observer receives notifications about lifecycle events.
type Observer interface {
	OnResourceEvent(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// OnResourceEvent calls f(e).
func (f ObserverFunc) OnResourceEvent(e Event) { f(e) }

// Dropper is optionally implemented by values that need cleanup when dropped.
type Dropper interface {
	Drop()
}
