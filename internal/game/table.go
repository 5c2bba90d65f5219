package game

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/pokey/poker"
)

// LastAction records the most recent decision for opponent notification
type LastAction struct {
	Seat   int    `json:"seatIndex"`
	Action Action `json:"action"`
	Amount int    `json:"amount,omitempty"`
}

// Outcome describes what a command did beyond mutating the table
type Outcome struct {
	// Showdown is set when the command concluded the hand
	Showdown *Showdown
	// StreetChanged is set when the command closed a betting round
	StreetChanged bool
}

// Option configures a Table
type Option func(*Table)

// WithRNG sets the random source used to shuffle each hand's deck
func WithRNG(rng *rand.Rand) Option {
	return func(t *Table) {
		t.rng = rng
	}
}

// WithDeckSource overrides deck creation, typically to stack the deck in tests
func WithDeckSource(source func() *poker.Deck) Option {
	return func(t *Table) {
		t.deckSource = source
	}
}

// Table is the authoritative state of one poker table
type Table struct {
	id     string
	config Config

	rng        *rand.Rand
	deckSource func() *poker.Deck

	seats []*Seat

	phase      Phase
	pot        int
	currentBet int
	dealer     int // -1 before the first hand
	turn       int // -1 when nobody is to act
	handNumber int

	deck     *poker.Deck
	board    [5]poker.Card
	revealed int

	// contributed is indexed by seat and survives the occupant leaving, so
	// chips of departed players stay in the pot as dead money
	contributed []int

	lastAction   *LastAction
	lastShowdown *Showdown
}

// NewTable creates a table with every seat empty
func NewTable(id string, cfg Config, opts ...Option) *Table {
	cfg = cfg.WithDefaults()
	if cfg.Name == "" {
		cfg.Name = "Table " + id
	}

	t := &Table{
		id:          id,
		config:      cfg,
		seats:       make([]*Seat, cfg.MaxSeats),
		phase:       PhaseIdle,
		dealer:      -1,
		turn:        -1,
		contributed: make([]int, cfg.MaxSeats),
	}
	for i := range t.seats {
		t.seats[i] = &Seat{Index: i}
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ID returns the table id
func (t *Table) ID() string { return t.id }

// Name returns the display name
func (t *Table) Name() string { return t.config.Name }

// Config returns the table parameters
func (t *Table) Config() Config { return t.config }

// Phase returns the current phase
func (t *Table) Phase() Phase { return t.phase }

// Pot returns the chips in the middle
func (t *Table) Pot() int { return t.pot }

// CurrentBet returns the amount to match this round
func (t *Table) CurrentBet() int { return t.currentBet }

// Turn returns the seat to act, or -1
func (t *Table) Turn() int { return t.turn }

// Dealer returns the dealer seat, or -1 before the first hand
func (t *Table) Dealer() int { return t.dealer }

// HandNumber counts hands started at this table
func (t *Table) HandNumber() int { return t.handNumber }

// CommunityCards returns the revealed community cards
func (t *Table) CommunityCards() []poker.Card {
	cards := make([]poker.Card, t.revealed)
	copy(cards, t.board[:t.revealed])
	return cards
}

// Seat returns a copy of seat i
func (t *Table) Seat(i int) (Seat, bool) {
	if i < 0 || i >= len(t.seats) {
		return Seat{}, false
	}
	s := *t.seats[i]
	s.HoleCards = append([]poker.Card(nil), s.HoleCards...)
	return s, true
}

// SeatCount returns the number of seats at the table
func (t *Table) SeatCount() int { return len(t.seats) }

// PlayerCount returns the number of occupied seats
func (t *Table) PlayerCount() int {
	n := 0
	for _, s := range t.seats {
		if s.Occupied() {
			n++
		}
	}
	return n
}

// TotalChips returns the chips in play: every stack plus the pot
func (t *Table) TotalChips() int {
	total := t.pot
	for _, s := range t.seats {
		total += s.Stack
	}
	return total
}

// FirstFreeSeat returns the lowest empty seat, or -1 when the table is full
func (t *Table) FirstFreeSeat() int {
	for i, s := range t.seats {
		if !s.Occupied() {
			return i
		}
	}
	return -1
}

// Sit places a player in seat i with a fresh starting stack
func (t *Table) Sit(i int, clientID, name string) error {
	if clientID == "" {
		return fmt.Errorf("%w: empty client id", ErrNotSeated)
	}
	if i < 0 || i >= len(t.seats) {
		return fmt.Errorf("%w: seat %d does not exist", ErrNoSeatAvailable, i)
	}
	s := t.seats[i]
	if s.Occupied() {
		return fmt.Errorf("%w: seat %d", ErrSeatTaken, i)
	}

	*s = Seat{
		Index:    i,
		ClientID: clientID,
		Name:     name,
		Stack:    t.config.StartingStack,
	}
	return nil
}

// MoveSeat moves a player and their stack to another empty seat. A player
// dealt into a running hand must wait until it ends.
func (t *Table) MoveSeat(from, to int) error {
	if from < 0 || from >= len(t.seats) || !t.seats[from].Occupied() {
		return fmt.Errorf("%w: seat %d", ErrNotSeated, from)
	}
	if to < 0 || to >= len(t.seats) {
		return fmt.Errorf("%w: seat %d does not exist", ErrNoSeatAvailable, to)
	}
	if from == to {
		return nil
	}
	if t.seats[to].Occupied() {
		return fmt.Errorf("%w: seat %d", ErrSeatTaken, to)
	}
	if t.phase != PhaseIdle && t.seats[from].InHand() {
		return fmt.Errorf("%w: cannot change seats during a hand", ErrInvalidState)
	}

	src := t.seats[from]
	*t.seats[to] = Seat{
		Index:    to,
		ClientID: src.ClientID,
		Name:     src.Name,
		Stack:    src.Stack,
	}
	src.vacate()
	return nil
}

// StartHand shuffles a fresh deck, deals, moves the button and posts blinds.
// It needs an idle table with at least two seated players holding chips.
func (t *Table) StartHand() (Outcome, error) {
	if t.phase != PhaseIdle {
		return Outcome{}, fmt.Errorf("%w: hand already in progress", ErrInvalidState)
	}

	players := 0
	for _, s := range t.seats {
		if s.Occupied() && s.Stack > 0 {
			players++
		}
	}
	if players < 2 {
		return Outcome{}, fmt.Errorf("%w: need at least 2 players with chips", ErrInvalidState)
	}

	deck := t.newDeck()
	holes := make([][]poker.Card, len(t.seats))
	for i, s := range t.seats {
		if s.Occupied() && s.Stack > 0 {
			cards, err := deck.Deal(2)
			if err != nil {
				return Outcome{}, fmt.Errorf("%w: %v", ErrInvalidState, err)
			}
			holes[i] = cards
		}
	}
	var board [5]poker.Card
	for i, street := 0, 0; street < 3; street++ {
		n := 1
		if street == 0 {
			n = 3
		}
		if err := deck.Burn(); err != nil {
			return Outcome{}, fmt.Errorf("%w: %v", ErrInvalidState, err)
		}
		cards, err := deck.Deal(n)
		if err != nil {
			return Outcome{}, fmt.Errorf("%w: %v", ErrInvalidState, err)
		}
		i += copy(board[i:], cards)
	}

	// nothing below can fail, so the table is only mutated from here on
	t.handNumber++
	t.deck = deck
	t.board = board
	t.revealed = 0
	t.pot = 0
	t.currentBet = 0
	t.lastAction = nil
	t.lastShowdown = nil
	for i, s := range t.seats {
		s.resetForHand(holes[i] != nil)
		s.HoleCards = holes[i]
		t.contributed[i] = 0
	}

	t.dealer = t.nextSeat(t.dealer, (*Seat).InHand)
	sb := t.nextSeat(t.dealer, (*Seat).InHand)
	if players == 2 {
		sb = t.dealer
	}
	bb := t.nextSeat(sb, (*Seat).InHand)

	t.post(sb, t.config.SmallBlind)
	t.post(bb, t.config.BigBlind)
	t.currentBet = t.config.BigBlind
	t.phase = PhasePreflop

	out := Outcome{}
	if t.bettingClosed() {
		out.StreetChanged = true
		out.Showdown = t.closeRound()
		return out, nil
	}
	t.turn = t.nextPending(bb)
	return out, nil
}

func (t *Table) newDeck() *poker.Deck {
	if t.deckSource != nil {
		return t.deckSource()
	}
	return poker.NewDeck(t.rng)
}

// post moves up to amount from a seat's stack into the pot
func (t *Table) post(i, amount int) int {
	s := t.seats[i]
	pay := min(amount, s.Stack)
	s.Stack -= pay
	s.Bet += pay
	t.contributed[i] += pay
	t.pot += pay
	return pay
}

// nextSeat returns the first seat after from (wrapping) matching pred, or -1
func (t *Table) nextSeat(from int, pred func(*Seat) bool) int {
	n := len(t.seats)
	for step := 1; step <= n; step++ {
		i := ((from+step)%n + n) % n
		if pred(t.seats[i]) {
			return i
		}
	}
	return -1
}
