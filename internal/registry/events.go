package registry

import "github.com/lox/pokey/internal/game"

// EventType names a notification pushed to table members
type EventType string

const (
	EventTableState    EventType = "table_state"
	EventHandStarted   EventType = "hand_started"
	EventStateUpdate   EventType = "state_update"
	EventShowdown      EventType = "showdown"
	EventPlayerTimeout EventType = "player_timeout"
	EventTableLeft     EventType = "table_left"
)

// Event is a notification for one client
type Event interface {
	EventType() EventType
}

// StateEvent carries the table as seen by its recipient
type StateEvent struct {
	Type     EventType
	Snapshot game.Snapshot
}

func (e StateEvent) EventType() EventType { return e.Type }

// ShowdownEvent carries the result of a finished hand
type ShowdownEvent struct {
	TableID  string
	Showdown *game.Showdown
}

func (e ShowdownEvent) EventType() EventType { return EventShowdown }

// TimeoutEvent reports a player folded for running out of time
type TimeoutEvent struct {
	TableID string
	Seat    int
	Name    string
}

func (e TimeoutEvent) EventType() EventType { return EventPlayerTimeout }

// LeftEvent confirms a client left its table
type LeftEvent struct {
	TableID string
}

func (e LeftEvent) EventType() EventType { return EventTableLeft }

// Publisher delivers events to clients. Publish is called while a table is
// locked, so it must not block and must not call back into the Registry.
type Publisher interface {
	Publish(clientID string, event Event)
}

// PublisherFunc adapts a function to a Publisher
type PublisherFunc func(clientID string, event Event)

// Publish calls f
func (f PublisherFunc) Publish(clientID string, event Event) {
	f(clientID, event)
}

var discard = PublisherFunc(func(string, Event) {})
