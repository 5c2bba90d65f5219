package game

import (
	"slices"

	"github.com/lox/pokey/poker"
)

// HandInfo describes an evaluated hand for display
type HandInfo struct {
	Category  poker.Category `json:"rank"`
	Name      string         `json:"name"`
	HighCards []int          `json:"highCards"`
}

func handInfo(hr poker.HandRank) *HandInfo {
	return &HandInfo{Category: hr.Category, Name: hr.String(), HighCards: hr.Kickers}
}

// Winner is a seat paid at the end of a hand
type Winner struct {
	Seat      int          `json:"seat"`
	Name      string       `json:"name"`
	Amount    int          `json:"amount"`
	Hand      *HandInfo    `json:"hand"`
	HoleCards []poker.Card `json:"holeCards,omitempty"`
}

// Reveal is a hand shown at showdown
type Reveal struct {
	Seat      int          `json:"seat"`
	Name      string       `json:"name"`
	Hand      *HandInfo    `json:"hand"`
	HoleCards []poker.Card `json:"holeCards"`
}

// Showdown is the result of a finished hand
type Showdown struct {
	HandNumber     int          `json:"handNumber"`
	Winners        []Winner     `json:"winners"`
	Revealed       []Reveal     `json:"revealed"`
	Pots           []Pot        `json:"pots"`
	CommunityCards []poker.Card `json:"communityCards"`
	// Uncontested is set when everyone else folded or left
	Uncontested bool `json:"uncontested"`
}

func (sd *Showdown) revealed(seat int) (Reveal, bool) {
	if sd == nil {
		return Reveal{}, false
	}
	for _, r := range sd.Revealed {
		if r.Seat == seat {
			return r, true
		}
	}
	return Reveal{}, false
}

// showdown evaluates every live hand against the board and pays each pot
// to its best hands.
func (t *Table) showdown() *Showdown {
	board := t.board[:5]
	live := make([]bool, len(t.seats))
	ranks := make(map[int]poker.HandRank)
	sd := &Showdown{
		HandNumber:     t.handNumber,
		CommunityCards: slices.Clone(board),
	}

	for i, s := range t.seats {
		if !s.live() {
			continue
		}
		live[i] = true
		cards := append(slices.Clone(s.HoleCards), board...)
		hr, err := poker.Best(cards)
		if err != nil {
			// a live seat always holds two cards
			continue
		}
		ranks[i] = hr
		sd.Revealed = append(sd.Revealed, Reveal{
			Seat:      i,
			Name:      s.Name,
			Hand:      handInfo(hr),
			HoleCards: slices.Clone(s.HoleCards),
		})
	}

	payouts := make(map[int]int)
	pots := buildPots(t.contributed, live)
	for p := range pots {
		var winners []int
		var best poker.HandRank
		for _, seat := range pots[p].Eligible {
			hr := ranks[seat]
			switch c := poker.Compare(hr, best); {
			case len(winners) == 0 || c > 0:
				winners, best = []int{seat}, hr
			case c == 0:
				winners = append(winners, seat)
			}
		}
		pots[p].Winners = winners
		for seat, amount := range splitPot(pots[p].Amount, winners, t.dealer, len(t.seats)) {
			payouts[seat] += amount
		}
	}
	sd.Pots = pots

	for i, s := range t.seats {
		amount, ok := payouts[i]
		if !ok {
			continue
		}
		s.Stack += amount
		sd.Winners = append(sd.Winners, Winner{
			Seat:      i,
			Name:      s.Name,
			Amount:    amount,
			Hand:      handInfo(ranks[i]),
			HoleCards: slices.Clone(s.HoleCards),
		})
	}

	t.finish(sd)
	return sd
}

// awardUncontested pays the whole pot to the last live player
func (t *Table) awardUncontested() *Showdown {
	sd := &Showdown{
		HandNumber:  t.handNumber,
		Uncontested: true,
		Revealed:    []Reveal{},
	}
	survivor := t.nextSeat(-1, (*Seat).live)
	if survivor >= 0 {
		s := t.seats[survivor]
		s.Stack += t.pot
		sd.Winners = []Winner{{Seat: survivor, Name: s.Name, Amount: t.pot}}
		sd.Pots = []Pot{{Amount: t.pot, Eligible: []int{survivor}, Winners: []int{survivor}}}
	}
	t.finish(sd)
	return sd
}

// finish returns the table to idle after the pot has been paid
func (t *Table) finish(sd *Showdown) {
	t.phase = PhaseIdle
	t.pot = 0
	t.currentBet = 0
	t.turn = -1
	t.deck = nil
	for _, s := range t.seats {
		s.Bet = 0
	}
	t.lastShowdown = sd
}
