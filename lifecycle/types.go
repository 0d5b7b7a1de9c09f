package lifecycle

// Handle is an opaque reference to an instance in a table.
// Handle 0 is reserved and always invalid.
type Handle uint32

// State tracks where an instance is in its lifecycle.
type State uint8

const (
	// StateLive means the instance is constructed and in ordinary use.
	StateLive State = iota
	// StateCleaning means the cleanup routine is running with full access.
	StateCleaning
	// StateRescued is terminal: rescuable fields were handed off.
	StateRescued
	// StateDropped is terminal: the instance was destroyed with nothing rescued.
	StateDropped
)

func (s State) String() string {
	switch s {
	case StateLive:
		return "live"
	case StateCleaning:
		return "cleaning"
	case StateRescued:
		return "rescued"
	case StateDropped:
		return "dropped"
	}
	return "unknown"
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateRescued || s == StateDropped
}

// Event types for instance lifecycle notifications.
type EventType uint8

const (
	EventCreated EventType = iota
	EventCleaning
	EventRescued
	EventDropped
)

// Event represents an instance lifecycle event.
type Event struct {
	Value  any
	Handle Handle
	Type   EventType
}

// Observer receives notifications about instance lifecycle events.
type Observer interface {
	OnLifecycleEvent(Event)
}

// Dropper is optionally implemented by values that need cleanup when
// destroyed in place.
type Dropper interface {
	Drop()
}
