package game

import "github.com/lox/pokey/poker"

// Seat is one position at the table. An empty seat has no ClientID.
type Seat struct {
	Index     int
	ClientID  string
	Name      string
	Stack     int
	HoleCards []poker.Card
	Folded    bool
	// Bet is the amount committed in the current betting round
	Bet int

	inHand bool // dealt into the running hand
	acted  bool // acted voluntarily this betting round
}

// Occupied reports whether a player sits here
func (s *Seat) Occupied() bool {
	return s.ClientID != ""
}

// InHand reports whether the occupant was dealt into the current hand
func (s *Seat) InHand() bool {
	return s.inHand
}

// live is a seated player still contesting the pot
func (s *Seat) live() bool {
	return s.Occupied() && s.inHand && !s.Folded
}

// canAct is a live player with chips behind
func (s *Seat) canAct() bool {
	return s.live() && s.Stack > 0
}

func (s *Seat) resetForHand(dealIn bool) {
	s.HoleCards = nil
	s.Folded = false
	s.Bet = 0
	s.acted = false
	s.inHand = dealIn
}

func (s *Seat) vacate() {
	*s = Seat{Index: s.Index}
}
