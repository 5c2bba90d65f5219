// Package registry owns the live tables and tracks which client sits where.
// It serializes every command for a table, publishes the resulting state to
// the table's members and folds players who let their turn time out.
package registry

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/pokey/internal/game"
	"github.com/lox/pokey/internal/gameid"
	"github.com/lox/pokey/internal/randutil"
)

// ErrTableNotFound is returned for an unknown table id
var ErrTableNotFound = errors.New("table not found")

// DefaultPlayerName is used when a client joins without a name
const DefaultPlayerName = "Guest"

// Option configures a Registry
type Option func(*Registry)

// WithClock sets the clock driving turn timers
func WithClock(clock quartz.Clock) Option {
	return func(r *Registry) {
		r.clock = clock
	}
}

// WithTurnTimeout folds a player who has not acted within d. Zero disables
// the timer.
func WithTurnTimeout(d time.Duration) Option {
	return func(r *Registry) {
		r.turnTimeout = d
	}
}

// WithSeed makes every table's shuffles reproducible
func WithSeed(seed int64) Option {
	return func(r *Registry) {
		r.seed = &seed
	}
}

// WithIDGenerator sets the source of table ids
func WithIDGenerator(g *gameid.Generator) Option {
	return func(r *Registry) {
		r.ids = g
	}
}

// Registry is the set of open tables and client seat assignments
type Registry struct {
	mu      sync.RWMutex
	rooms   map[string]*room
	order   []string
	clients map[string]string // client id -> table id

	publisher   Publisher
	logger      *log.Logger
	clock       quartz.Clock
	turnTimeout time.Duration
	ids         *gameid.Generator
	seed        *int64
	seeds       *rand.Rand // guarded by mu
}

// New creates an empty registry publishing through publisher
func New(publisher Publisher, logger *log.Logger, opts ...Option) *Registry {
	if publisher == nil {
		publisher = discard
	}
	r := &Registry{
		rooms:     make(map[string]*room),
		clients:   make(map[string]string),
		publisher: publisher,
		logger:    logger.WithPrefix("registry"),
		clock:     quartz.NewReal(),
		ids:       gameid.NewGenerator(nil),
	}
	for _, opt := range opts {
		opt(r)
	}

	var seed int64
	r.seeds, seed = randutil.FromOptionalSeed(r.seed)
	r.logger.Debug("Registry created", "seed", seed, "turnTimeout", r.turnTimeout)
	return r
}

// CreateTable opens a table with default stakes
func (r *Registry) CreateTable(name string) game.Summary {
	summary, err := r.CreateTableWithConfig(game.Config{Name: name})
	if err != nil {
		// the defaults always validate
		panic(err)
	}
	return summary
}

// CreateTableWithConfig opens a table with the given stakes. Zero fields take
// their defaults.
func (r *Registry) CreateTableWithConfig(cfg game.Config) (game.Summary, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return game.Summary{}, fmt.Errorf("invalid table config: %w", err)
	}

	id := r.ids.New()
	if cfg.Name == "" {
		cfg.Name = "Table " + gameid.Short(id)
	}

	r.mu.Lock()
	rng := randutil.New(int64(r.seeds.Uint64()))
	rm := &room{
		table:   game.NewTable(id, cfg, game.WithRNG(rng)),
		logger:  r.logger.WithPrefix("room").With("table", id),
		pub:     r.publisher,
		clock:   r.clock,
		timeout: r.turnTimeout,
	}
	r.rooms[id] = rm
	r.order = append(r.order, id)
	r.mu.Unlock()

	r.logger.Info("Table created", "table", id, "name", cfg.Name,
		"seats", cfg.MaxSeats, "blinds", fmt.Sprintf("%d/%d", cfg.SmallBlind, cfg.BigBlind))
	return rm.table.Summary(), nil
}

// ListTables describes every open table in creation order
func (r *Registry) ListTables() []game.Summary {
	r.mu.RLock()
	rooms := make([]*room, 0, len(r.order))
	for _, id := range r.order {
		rooms = append(rooms, r.rooms[id])
	}
	r.mu.RUnlock()

	out := make([]game.Summary, 0, len(rooms))
	for _, rm := range rooms {
		rm.view(func(t *game.Table) {
			out = append(out, t.Summary())
		})
	}
	return out
}

// TableView returns the public view of a table, with no private cards
func (r *Registry) TableView(tableID string) (game.Snapshot, error) {
	rm, err := r.room(tableID)
	if err != nil {
		return game.Snapshot{}, err
	}
	var snap game.Snapshot
	rm.view(func(t *game.Table) {
		snap = t.Snapshot(-1)
	})
	return snap, nil
}

// TableOf returns the table a client sits at
func (r *Registry) TableOf(clientID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.clients[clientID]
	return id, ok
}

// Join seats a client at a table, in seat when given and in the lowest free
// seat otherwise. A client seated at another table leaves it once the new
// seat is taken; a failed join leaves the client where it was.
func (r *Registry) Join(clientID, tableID, name string, seat *int) (game.Snapshot, error) {
	rm, err := r.room(tableID)
	if err != nil {
		return game.Snapshot{}, err
	}

	previous, moving := r.TableOf(clientID)
	if moving && previous == tableID {
		if seat != nil {
			return r.Sit(clientID, *seat)
		}
		return r.ViewFor(clientID)
	}

	if name == "" {
		name = DefaultPlayerName
	}

	var snap game.Snapshot
	err = rm.apply(func(t *game.Table) (change, error) {
		idx := t.FirstFreeSeat()
		if seat != nil {
			idx = *seat
		}
		if idx < 0 {
			return change{}, fmt.Errorf("%w: table is full", game.ErrNoSeatAvailable)
		}
		if err := t.Sit(idx, clientID, name); err != nil {
			return change{}, err
		}
		snap = t.Snapshot(idx)
		return change{kind: EventTableState}, nil
	})
	if err != nil {
		return game.Snapshot{}, err
	}

	if moving {
		if err := r.Leave(clientID); err != nil {
			r.logger.Warn("Failed to leave previous table", "table", previous, "client", clientID, "error", err)
		}
	}

	r.mu.Lock()
	r.clients[clientID] = tableID
	r.mu.Unlock()

	r.logger.Info("Player joined", "table", tableID, "client", clientID, "player", name, "seat", *snap.MySeatIndex)
	return snap, nil
}

// Sit moves a seated client to another empty seat at the same table
func (r *Registry) Sit(clientID string, seat int) (game.Snapshot, error) {
	rm, err := r.roomOf(clientID)
	if err != nil {
		return game.Snapshot{}, err
	}

	var snap game.Snapshot
	err = rm.apply(func(t *game.Table) (change, error) {
		from := seatOf(t, clientID)
		if from < 0 {
			return change{}, fmt.Errorf("%w: client %s", game.ErrNotSeated, clientID)
		}
		if err := t.MoveSeat(from, seat); err != nil {
			return change{}, err
		}
		snap = t.Snapshot(seat)
		return change{kind: EventTableState}, nil
	})
	return snap, err
}

// Leave removes a client from its table. Leaving mid-hand folds the
// player's hand. Leaving when not seated is a no-op.
func (r *Registry) Leave(clientID string) error {
	tableID, ok := r.TableOf(clientID)
	if !ok {
		return nil
	}
	rm, err := r.room(tableID)
	if err != nil {
		return err
	}

	err = rm.apply(func(t *game.Table) (change, error) {
		seat := seatOf(t, clientID)
		if seat < 0 {
			return change{}, nil
		}
		out, err := t.Vacate(seat)
		if err != nil {
			return change{}, err
		}
		kind := EventTableState
		if t.Phase() != game.PhaseIdle || out.Showdown != nil {
			kind = EventStateUpdate
		}
		return change{kind: kind, outcome: out, departed: clientID}, nil
	})
	if err != nil {
		return err
	}

	r.mu.Lock()
	delete(r.clients, clientID)
	r.mu.Unlock()

	r.logger.Info("Player left", "table", tableID, "client", clientID)
	return nil
}

// Disconnect handles a client whose connection went away as if it left
func (r *Registry) Disconnect(clientID string) {
	if err := r.Leave(clientID); err != nil {
		r.logger.Warn("Failed to remove disconnected client", "client", clientID, "error", err)
	}
}

// StartHand deals a new hand at the client's table
func (r *Registry) StartHand(clientID string) error {
	rm, err := r.roomOf(clientID)
	if err != nil {
		return err
	}
	return rm.apply(func(t *game.Table) (change, error) {
		if seatOf(t, clientID) < 0 {
			return change{}, fmt.Errorf("%w: client %s", game.ErrNotSeated, clientID)
		}
		out, err := t.StartHand()
		if err != nil {
			return change{}, err
		}
		rm.logger.Debug("Hand started", "hand", t.HandNumber(), "dealer", t.Dealer())
		return change{kind: EventHandStarted, outcome: out}, nil
	})
}

// Act applies a decision for the client's seat
func (r *Registry) Act(clientID string, action game.Action, amount int) error {
	rm, err := r.roomOf(clientID)
	if err != nil {
		return err
	}
	return rm.apply(func(t *game.Table) (change, error) {
		seat := seatOf(t, clientID)
		if seat < 0 {
			return change{}, fmt.Errorf("%w: client %s", game.ErrNotSeated, clientID)
		}
		out, err := t.ApplyAction(seat, action, amount)
		if err != nil {
			return change{}, err
		}
		if sd := out.Showdown; sd != nil {
			rm.logger.Debug("Hand finished", "hand", sd.HandNumber, "winners", len(sd.Winners), "uncontested", sd.Uncontested)
		}
		return change{kind: EventStateUpdate, outcome: out, acted: true}, nil
	})
}

// ViewFor returns the table as seen by a seated client
func (r *Registry) ViewFor(clientID string) (game.Snapshot, error) {
	rm, err := r.roomOf(clientID)
	if err != nil {
		return game.Snapshot{}, err
	}
	var (
		snap game.Snapshot
		seat int
	)
	rm.view(func(t *game.Table) {
		seat = seatOf(t, clientID)
		snap = t.Snapshot(seat)
	})
	if seat < 0 {
		return game.Snapshot{}, fmt.Errorf("%w: client %s", game.ErrNotSeated, clientID)
	}
	return snap, nil
}

// Close stops every turn timer
func (r *Registry) Close() {
	r.mu.RLock()
	rooms := make([]*room, 0, len(r.rooms))
	for _, rm := range r.rooms {
		rooms = append(rooms, rm)
	}
	r.mu.RUnlock()

	for _, rm := range rooms {
		rm.close()
	}
}

func (r *Registry) room(tableID string) (*room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rm, ok := r.rooms[tableID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, tableID)
	}
	return rm, nil
}

func (r *Registry) roomOf(clientID string) (*room, error) {
	tableID, ok := r.TableOf(clientID)
	if !ok {
		return nil, fmt.Errorf("%w: client %s is not at a table", game.ErrNotSeated, clientID)
	}
	return r.room(tableID)
}
