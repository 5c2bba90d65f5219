package game

import "fmt"

// ApplyAction applies a decision for the seat whose turn it is. A failed
// action leaves the table untouched.
func (t *Table) ApplyAction(seat int, action Action, raiseAmount int) (Outcome, error) {
	if !t.phase.Betting() {
		return Outcome{}, fmt.Errorf("%w: no betting in phase %s", ErrInvalidState, t.phase)
	}
	if seat < 0 || seat >= len(t.seats) || !t.seats[seat].Occupied() {
		return Outcome{}, fmt.Errorf("%w: seat %d", ErrNotSeated, seat)
	}
	if seat != t.turn {
		return Outcome{}, fmt.Errorf("%w: not your turn", ErrIllegalAction)
	}
	s := t.seats[seat]
	if s.Folded {
		return Outcome{}, fmt.Errorf("%w: already folded", ErrIllegalAction)
	}

	shortfall := t.currentBet - s.Bet
	last := LastAction{Seat: seat, Action: action}

	switch action {
	case Fold:
		s.Folded = true
	case Check:
		if shortfall > 0 {
			return Outcome{}, fmt.Errorf("%w: cannot check, must call %d or fold", ErrIllegalAction, shortfall)
		}
	case Call:
		if shortfall <= 0 {
			return Outcome{}, fmt.Errorf("%w: nothing to call", ErrIllegalAction)
		}
		// a short stack calls all-in for less
		last.Amount = t.post(seat, shortfall)
	case Raise:
		if raiseAmount <= 0 {
			raiseAmount = t.config.MinRaise
		}
		// compared without adding so a huge raiseAmount cannot wrap around
		if raiseAmount > s.Stack-shortfall {
			return Outcome{}, fmt.Errorf("%w: raise of %d over a call of %d, stack is %d",
				ErrNotEnoughChips, raiseAmount, shortfall, s.Stack)
		}
		last.Amount = t.post(seat, shortfall+raiseAmount)
		t.currentBet = s.Bet
		for _, other := range t.seats {
			if other != s {
				other.acted = false
			}
		}
	default:
		return Outcome{}, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}

	s.acted = true
	t.lastAction = &last
	return t.proceed(seat), nil
}

// Vacate empties a seat. During a hand the departing player is treated as
// having folded: their chips stay in the pot and play continues without them.
func (t *Table) Vacate(seat int) (Outcome, error) {
	if seat < 0 || seat >= len(t.seats) || !t.seats[seat].Occupied() {
		return Outcome{}, fmt.Errorf("%w: seat %d", ErrNotSeated, seat)
	}
	s := t.seats[seat]
	contesting := t.phase.Betting() && s.live()
	wasTurn := t.turn == seat

	s.vacate()
	if !contesting {
		return Outcome{}, nil
	}

	t.lastAction = &LastAction{Seat: seat, Action: Fold}
	if wasTurn || t.liveCount() < 2 || t.bettingClosed() {
		return t.proceed(seat), nil
	}
	return Outcome{}, nil
}

// proceed runs after seat from acted: it ends the hand when one player is
// left, passes the turn, or closes the betting round.
func (t *Table) proceed(from int) Outcome {
	if t.liveCount() < 2 {
		return Outcome{Showdown: t.awardUncontested()}
	}
	if !t.bettingClosed() {
		t.turn = t.nextPending(from)
		return Outcome{}
	}
	return Outcome{StreetChanged: true, Showdown: t.closeRound()}
}

// closeRound advances streets until a betting round needs decisions or the
// hand reaches showdown. Streets are dealt without betting once fewer than
// two players can still act.
func (t *Table) closeRound() *Showdown {
	for {
		if sd := t.advanceStreet(); sd != nil {
			return sd
		}
		if !t.bettingClosed() {
			t.turn = t.nextPending(t.dealer)
			return nil
		}
	}
}

// advanceStreet reveals the next community cards and starts a new betting
// round, or settles the hand after the river.
func (t *Table) advanceStreet() *Showdown {
	switch t.phase {
	case PhasePreflop:
		t.phase, t.revealed = PhaseFlop, 3
	case PhaseFlop:
		t.phase, t.revealed = PhaseTurn, 4
	case PhaseTurn:
		t.phase, t.revealed = PhaseRiver, 5
	case PhaseRiver:
		t.phase = PhaseShowdown
		return t.showdown()
	}

	t.currentBet = 0
	t.turn = -1
	for _, s := range t.seats {
		s.Bet = 0
		s.acted = false
	}
	return nil
}

// bettingClosed reports whether nobody has a decision left this round. A
// lone player able to act only has one if they still owe chips.
func (t *Table) bettingClosed() bool {
	actors := 0
	for _, s := range t.seats {
		if s.canAct() {
			actors++
		}
	}
	for _, s := range t.seats {
		if !s.canAct() {
			continue
		}
		if s.Bet < t.currentBet {
			return false
		}
		if !s.acted && actors >= 2 {
			return false
		}
	}
	return true
}

// nextPending returns the next seat after from that still has a decision
func (t *Table) nextPending(from int) int {
	return t.nextSeat(from, func(s *Seat) bool {
		return s.canAct() && (!s.acted || s.Bet < t.currentBet)
	})
}

func (t *Table) liveCount() int {
	n := 0
	for _, s := range t.seats {
		if s.live() {
			n++
		}
	}
	return n
}
