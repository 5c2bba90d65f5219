package game

import (
	"slices"

	"github.com/lox/pokey/poker"
)

// SeatView is the public view of a seat
type SeatView struct {
	SeatIndex    int     `json:"seatIndex"`
	PlayerName   *string `json:"playerName"`
	Stack        int     `json:"stack"`
	BetThisRound int     `json:"betThisRound"`
	Folded       bool    `json:"folded"`
	InHand       bool    `json:"inHand"`
	// HoleCards is only set for hands shown at the last showdown
	HoleCards []poker.Card `json:"holeCards,omitempty"`
}

// Snapshot is the table state as seen by one recipient
type Snapshot struct {
	TableID        string       `json:"tableId"`
	Name           string       `json:"name"`
	Phase          Phase        `json:"phase"`
	HandNumber     int          `json:"handNumber"`
	Pot            int          `json:"pot"`
	CurrentBet     int          `json:"currentBet"`
	SmallBlind     int          `json:"smallBlind"`
	BigBlind       int          `json:"bigBlind"`
	MaxSeats       int          `json:"maxSeats"`
	CommunityCards []poker.Card `json:"communityCards"`
	Seats          []SeatView   `json:"seats"`
	DealerSeat     *int         `json:"dealerSeat"`
	TurnSeat       *int         `json:"turnSeat"`
	LastAction     *LastAction  `json:"lastAction"`

	MySeatIndex *int         `json:"mySeatIndex,omitempty"`
	MyHoleCards []poker.Card `json:"myHoleCards,omitempty"`
}

// Summary is a table's entry in the lobby listing
type Summary struct {
	TableID     string `json:"tableId"`
	Name        string `json:"name"`
	PlayerCount int    `json:"playerCount"`
	MaxSeats    int    `json:"maxSeats"`
	Phase       Phase  `json:"phase"`
}

// Summary describes the table for listings
func (t *Table) Summary() Summary {
	return Summary{
		TableID:     t.id,
		Name:        t.config.Name,
		PlayerCount: t.PlayerCount(),
		MaxSeats:    len(t.seats),
		Phase:       t.phase,
	}
}

// Snapshot builds the state visible to the player in seat viewer. Pass -1
// for a spectator view. Other players' hole cards are only included when
// they were shown at the last showdown.
func (t *Table) Snapshot(viewer int) Snapshot {
	snap := Snapshot{
		TableID:        t.id,
		Name:           t.config.Name,
		Phase:          t.phase,
		HandNumber:     t.handNumber,
		Pot:            t.pot,
		CurrentBet:     t.currentBet,
		SmallBlind:     t.config.SmallBlind,
		BigBlind:       t.config.BigBlind,
		MaxSeats:       len(t.seats),
		CommunityCards: t.CommunityCards(),
		Seats:          make([]SeatView, len(t.seats)),
		DealerSeat:     seatPtr(t.dealer),
		TurnSeat:       seatPtr(t.turn),
	}
	if t.lastAction != nil {
		la := *t.lastAction
		snap.LastAction = &la
	}

	for i, s := range t.seats {
		view := SeatView{
			SeatIndex:    i,
			Stack:        s.Stack,
			BetThisRound: s.Bet,
			Folded:       s.Folded,
			InHand:       s.inHand,
		}
		if s.Occupied() {
			name := s.Name
			view.PlayerName = &name
		}
		if t.phase == PhaseIdle {
			if r, ok := t.lastShowdown.revealed(i); ok {
				view.HoleCards = slices.Clone(r.HoleCards)
			}
		}
		snap.Seats[i] = view
	}

	if viewer >= 0 && viewer < len(t.seats) && t.seats[viewer].Occupied() {
		snap.MySeatIndex = seatPtr(viewer)
		snap.MyHoleCards = slices.Clone(t.seats[viewer].HoleCards)
	}
	return snap
}

func seatPtr(i int) *int {
	if i < 0 {
		return nil
	}
	return &i
}
