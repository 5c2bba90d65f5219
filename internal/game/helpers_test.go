package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lox/pokey/internal/randutil"
	"github.com/lox/pokey/poker"
)

// stackedDeck deals holes to the dealt-in seats in seat order and then the
// board, burning an unused card before each street.
func stackedDeck(holes []string, board string) func() *poker.Deck {
	var dealt []poker.Card
	for _, h := range holes {
		dealt = append(dealt, poker.MustParseCards(h)...)
	}
	b := poker.MustParseCards(board)

	used := make(map[poker.Card]bool)
	for _, c := range append(append([]poker.Card{}, dealt...), b...) {
		used[c] = true
	}
	var rest []poker.Card
	for _, c := range poker.FullDeck() {
		if !used[c] {
			rest = append(rest, c)
		}
	}

	order := append(dealt, rest[0], b[0], b[1], b[2], rest[1], b[3], rest[2], b[4])
	order = append(order, rest[3:]...)
	return func() *poker.Deck {
		return poker.NewDeckFromCards(order)
	}
}

// newTestTable seats one player per stack in seats 0..n-1
func newTestTable(t *testing.T, cfg Config, stacks []int, opts ...Option) *Table {
	t.Helper()
	opts = append([]Option{WithRNG(randutil.New(1))}, opts...)
	table := NewTable("test", cfg, opts...)
	for i, stack := range stacks {
		require.NoError(t, table.Sit(i, fmt.Sprintf("client-%d", i), fmt.Sprintf("P%d", i)))
		table.seats[i].Stack = stack
	}
	return table
}

func mustAct(t *testing.T, table *Table, seat int, action Action, amount int) Outcome {
	t.Helper()
	out, err := table.ApplyAction(seat, action, amount)
	require.NoError(t, err, "seat %d %s", seat, action)
	return out
}

// checkDown calls or checks for whoever is to act until the hand ends
func checkDown(t *testing.T, table *Table) *Showdown {
	t.Helper()
	for i := 0; i < 100; i++ {
		seat := table.Turn()
		action := Check
		if table.CurrentBet() > table.seats[seat].Bet {
			action = Call
		}
		out := mustAct(t, table, seat, action, 0)
		if out.Showdown != nil {
			return out.Showdown
		}
	}
	t.Fatal("hand did not finish")
	return nil
}

func stacks(table *Table) []int {
	out := make([]int, len(table.seats))
	for i, s := range table.seats {
		out[i] = s.Stack
	}
	return out
}
