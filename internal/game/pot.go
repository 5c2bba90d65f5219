package game

import "slices"

// Pot is the main pot or a side pot and the seats that can win it
type Pot struct {
	Amount   int   `json:"amount"`
	Eligible []int `json:"eligible"`
	Winners  []int `json:"winners,omitempty"`
}

// buildPots layers the hand's contributions into a main pot and side pots.
// Each distinct contribution level of a live player closes a layer that only
// players who reached that level can win. Folded and departed players' chips
// fill the layers as dead money.
func buildPots(contributed []int, live []bool) []Pot {
	var levels []int
	for i, c := range contributed {
		if live[i] && c > 0 && !slices.Contains(levels, c) {
			levels = append(levels, c)
		}
	}
	slices.Sort(levels)

	var pots []Pot
	prev := 0
	for _, level := range levels {
		pot := Pot{}
		for i, c := range contributed {
			pot.Amount += min(c, level) - min(c, prev)
			if live[i] && c >= level {
				pot.Eligible = append(pot.Eligible, i)
			}
		}
		prev = level

		// consecutive layers with the same contestants are one pot
		if n := len(pots); n > 0 && slices.Equal(pots[n-1].Eligible, pot.Eligible) {
			pots[n-1].Amount += pot.Amount
			continue
		}
		pots = append(pots, pot)
	}

	// chips above the highest live contribution belong to the last pot
	dead := 0
	for _, c := range contributed {
		dead += max(c-prev, 0)
	}
	if dead > 0 && len(pots) > 0 {
		pots[len(pots)-1].Amount += dead
	}
	return pots
}

// splitPot divides amount among winners. Odd chips go one at a time to the
// winners closest to the dealer's left.
func splitPot(amount int, winners []int, dealer, seats int) map[int]int {
	if len(winners) == 0 {
		return nil
	}
	order := slices.Clone(winners)
	slices.SortFunc(order, func(a, b int) int {
		return distanceFrom(dealer, a, seats) - distanceFrom(dealer, b, seats)
	})

	shares := make(map[int]int, len(order))
	share, rem := amount/len(order), amount%len(order)
	for i, seat := range order {
		shares[seat] = share
		if i < rem {
			shares[seat]++
		}
	}
	return shares
}

// distanceFrom counts seats clockwise from the dealer, so the seat on the
// dealer's left is 1 and the dealer is seats.
func distanceFrom(dealer, seat, seats int) int {
	d := (seat - dealer + seats) % seats
	if d == 0 {
		return seats
	}
	return d
}
