package poker

import (
	"errors"
	"fmt"
	"slices"
)

// Category enumerates hand categories ordered from weakest to strongest
type Category uint8

const (
	HighCard Category = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

// String returns a human-readable category name
func (c Category) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return "Unknown"
	}
}

var (
	ErrTooFewCards  = errors.New("at least 5 cards required")
	ErrTooManyCards = errors.New("at most 7 cards allowed")
)

// HandRank is the strength of a five-card hand: a category plus tie-break
// values, most significant first. Higher ranks are stronger.
type HandRank struct {
	Category Category `json:"category"`
	Kickers  []int    `json:"kickers"`
}

// String names the hand, distinguishing the royal flush
func (hr HandRank) String() string {
	if hr.IsRoyal() {
		return "Royal Flush"
	}
	return hr.Category.String()
}

// IsRoyal reports whether the hand is an ace-high straight flush
func (hr HandRank) IsRoyal() bool {
	return hr.Category == StraightFlush && len(hr.Kickers) > 0 && hr.Kickers[0] == int(Ace)
}

// Compare returns -1, 0 or 1 as hr is weaker than, equal to or stronger than other
func (hr HandRank) Compare(other HandRank) int {
	return Compare(hr, other)
}

// Less reports whether hr is strictly weaker than other
func (hr HandRank) Less(other HandRank) bool {
	return Compare(hr, other) < 0
}

// Compare orders two hand ranks by category, then kickers lexicographically.
func Compare(a, b HandRank) int {
	if a.Category != b.Category {
		if a.Category < b.Category {
			return -1
		}
		return 1
	}
	n := max(len(a.Kickers), len(b.Kickers))
	for i := 0; i < n; i++ {
		var va, vb int
		if i < len(a.Kickers) {
			va = a.Kickers[i]
		}
		if i < len(b.Kickers) {
			vb = b.Kickers[i]
		}
		if va != vb {
			if va < vb {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Evaluate ranks exactly five cards
func Evaluate(cards []Card) (HandRank, error) {
	if len(cards) != 5 {
		return HandRank{}, fmt.Errorf("evaluate needs 5 cards, got %d", len(cards))
	}
	return evaluate5([5]Card(cards)), nil
}

// Best returns the strongest five-card hand among 5 to 7 cards. Every
// five-card subset is evaluated.
func Best(cards []Card) (HandRank, error) {
	switch {
	case len(cards) < 5:
		return HandRank{}, ErrTooFewCards
	case len(cards) > 7:
		return HandRank{}, ErrTooManyCards
	}

	var best HandRank
	first := true
	forEachFive(cards, func(hand [5]Card) {
		hr := evaluate5(hand)
		if first || Compare(hr, best) > 0 {
			best = hr
			first = false
		}
	})
	return best, nil
}

// forEachFive calls fn with every 5-card combination of cards, walking the
// index combinations in lexicographic order.
func forEachFive(cards []Card, fn func([5]Card)) {
	n := len(cards)
	idx := [5]int{0, 1, 2, 3, 4}
	var hand [5]Card
	for {
		for i, j := range idx {
			hand[i] = cards[j]
		}
		fn(hand)

		// find the rightmost index that can still move right
		i := 4
		for i >= 0 && idx[i] == n-5+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < 5; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

func evaluate5(hand [5]Card) HandRank {
	var counts [15]int
	flush := true
	for i, c := range hand {
		counts[c.Rank]++
		if i > 0 && c.Suit != hand[0].Suit {
			flush = false
		}
	}

	// ranks descending, one entry per card
	values := make([]int, 0, 5)
	for r := int(Ace); r >= int(Two); r-- {
		for k := 0; k < counts[r]; k++ {
			values = append(values, r)
		}
	}

	straightHigh := straightHigh(counts)

	switch {
	case flush && straightHigh > 0:
		return HandRank{Category: StraightFlush, Kickers: []int{straightHigh}}
	case flush:
		return HandRank{Category: Flush, Kickers: values}
	case straightHigh > 0:
		return HandRank{Category: Straight, Kickers: []int{straightHigh}}
	}

	// group ranks by multiplicity, larger groups first, then higher rank
	type group struct{ rank, count int }
	groups := make([]group, 0, 5)
	for r := int(Ace); r >= int(Two); r-- {
		if counts[r] > 0 {
			groups = append(groups, group{rank: r, count: counts[r]})
		}
	}
	slices.SortStableFunc(groups, func(a, b group) int { return b.count - a.count })

	kickers := make([]int, len(groups))
	for i, g := range groups {
		kickers[i] = g.rank
	}

	switch groups[0].count {
	case 4:
		return HandRank{Category: FourOfAKind, Kickers: kickers}
	case 3:
		if groups[1].count == 2 {
			return HandRank{Category: FullHouse, Kickers: kickers}
		}
		return HandRank{Category: ThreeOfAKind, Kickers: kickers}
	case 2:
		if groups[1].count == 2 {
			return HandRank{Category: TwoPair, Kickers: kickers}
		}
		return HandRank{Category: Pair, Kickers: kickers}
	}
	return HandRank{Category: HighCard, Kickers: values}
}

// straightHigh returns the high card of a five-distinct-rank straight, 5 for
// the wheel, or 0 when counts do not form a straight.
func straightHigh(counts [15]int) int {
	run := 0
	for r := int(Ace); r >= int(Two); r-- {
		if counts[r] == 1 {
			run++
			if run == 5 {
				return r + 4
			}
		} else {
			run = 0
		}
	}
	if run == 4 && counts[Ace] == 1 {
		return int(Five)
	}
	return 0
}
