package registry

import (
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/pokey/internal/game"
)

var errStaleTimer = errors.New("stale turn timer")

// change describes what a successful command did, for publishing
type change struct {
	kind     EventType
	outcome  game.Outcome
	departed string  // client that left and gets a table_left
	notices  []Event // broadcast before anything else
	acted    bool    // a player decision was applied
}

// turnKey identifies one pending decision
type turnKey struct {
	hand      int
	seat      int
	decisions int
}

// room owns one table. Every command for the table runs through apply.
type room struct {
	mu      sync.Mutex
	table   *game.Table
	logger  *log.Logger
	pub     Publisher
	clock   quartz.Clock
	timeout time.Duration
	closed  bool

	decisions int
	timer     *quartz.Timer
	timerKey  turnKey
}

// apply runs cmd with the table locked. On success the new state is
// published to every member and the turn timer is rearmed.
func (rm *room) apply(cmd func(*game.Table) (change, error)) error {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	ch, err := cmd(rm.table)
	if err != nil {
		return err
	}
	if ch.acted {
		rm.decisions++
	}
	rm.publish(ch)
	rm.rearm()
	return nil
}

// view runs fn with the table locked, for reads
func (rm *room) view(fn func(*game.Table)) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	fn(rm.table)
}

type member struct {
	clientID string
	seat     int
}

func (rm *room) members() []member {
	var out []member
	for i := 0; i < rm.table.SeatCount(); i++ {
		if s, _ := rm.table.Seat(i); s.Occupied() {
			out = append(out, member{clientID: s.ClientID, seat: i})
		}
	}
	return out
}

func (rm *room) publish(ch change) {
	if ch.kind == "" {
		return
	}
	members := rm.members()
	for _, ev := range ch.notices {
		for _, m := range members {
			rm.pub.Publish(m.clientID, ev)
		}
	}
	for _, m := range members {
		rm.pub.Publish(m.clientID, StateEvent{Type: ch.kind, Snapshot: rm.table.Snapshot(m.seat)})
	}
	if sd := ch.outcome.Showdown; sd != nil {
		ev := ShowdownEvent{TableID: rm.table.ID(), Showdown: sd}
		for _, m := range members {
			rm.pub.Publish(m.clientID, ev)
		}
	}
	if ch.departed != "" {
		rm.pub.Publish(ch.departed, LeftEvent{TableID: rm.table.ID()})
	}
}

func (rm *room) currentKey() turnKey {
	seat := -1
	if rm.table.Phase().Betting() {
		seat = rm.table.Turn()
	}
	return turnKey{hand: rm.table.HandNumber(), seat: seat, decisions: rm.decisions}
}

// rearm keeps the running timer while the same decision is pending and
// starts a fresh one when the turn moved.
func (rm *room) rearm() {
	if rm.timeout <= 0 || rm.closed {
		return
	}
	key := rm.currentKey()
	if rm.timer != nil {
		if key == rm.timerKey {
			return
		}
		rm.timer.Stop()
		rm.timer = nil
	}
	if key.seat < 0 {
		return
	}
	rm.timerKey = key
	rm.timer = rm.clock.AfterFunc(rm.timeout, func() {
		rm.expire(key)
	}, "room", "turn")
}

// expire folds the seat that let its turn run out
func (rm *room) expire(key turnKey) {
	var name string
	err := rm.apply(func(t *game.Table) (change, error) {
		if rm.closed || rm.currentKey() != key {
			return change{}, errStaleTimer
		}
		seat, _ := t.Seat(key.seat)
		name = seat.Name
		out, err := t.ApplyAction(key.seat, game.Fold, 0)
		if err != nil {
			return change{}, err
		}
		return change{
			kind:    EventStateUpdate,
			outcome: out,
			acted:   true,
			notices: []Event{TimeoutEvent{TableID: t.ID(), Seat: key.seat, Name: name}},
		}, nil
	})
	switch {
	case errors.Is(err, errStaleTimer):
	case err != nil:
		rm.logger.Warn("Failed to fold timed out player", "seat", key.seat, "error", err)
	default:
		rm.logger.Info("Player timed out", "seat", key.seat, "player", name, "hand", key.hand)
	}
}

func (rm *room) close() {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.closed = true
	if rm.timer != nil {
		rm.timer.Stop()
		rm.timer = nil
	}
}

// seatOf returns the seat held by clientID, or -1
func seatOf(t *game.Table, clientID string) int {
	for i := 0; i < t.SeatCount(); i++ {
		if s, _ := t.Seat(i); s.Occupied() && s.ClientID == clientID {
			return i
		}
	}
	return -1
}
