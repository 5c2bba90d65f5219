package poker

import (
	"errors"
	rand "math/rand/v2"
)

// ErrDeckExhausted is returned when drawing from an empty deck
var ErrDeckExhausted = errors.New("deck exhausted")

// Deck is an ordered sequence of cards dealt front to back. A deck is owned
// by a single hand and is not safe for concurrent use.
type Deck struct {
	cards [52]Card
	size  int
	next  int
}

// NewDeck creates a standard 52-card deck shuffled with rng
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{}
	d.size = copy(d.cards[:], FullDeck())
	d.Shuffle(rng)
	return d
}

// NewDeckFromCards creates a deck that deals the given cards in order.
// It is used to stack the deck for deterministic hands.
func NewDeckFromCards(cards []Card) *Deck {
	d := &Deck{}
	d.size = copy(d.cards[:], cards)
	return d
}

// FullDeck returns the 52 distinct cards in suit-major order
func FullDeck() []Card {
	cards := make([]Card, 0, 52)
	for _, suit := range Suits {
		for rank := Two; rank <= Ace; rank++ {
			cards = append(cards, NewCard(rank, suit))
		}
	}
	return cards
}

// Shuffle performs a Fisher-Yates shuffle of the undealt cards and resets
// the deal position. A nil rng uses the global source.
func (d *Deck) Shuffle(rng *rand.Rand) {
	d.next = 0
	for i := d.size - 1; i > 0; i-- {
		var j int
		if rng != nil {
			j = rng.IntN(i + 1)
		} else {
			j = rand.IntN(i + 1)
		}
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Draw removes and returns the next card
func (d *Deck) Draw() (Card, error) {
	if d.next >= d.size {
		return Card{}, ErrDeckExhausted
	}
	c := d.cards[d.next]
	d.next++
	return c, nil
}

// Deal draws n cards
func (d *Deck) Deal(n int) ([]Card, error) {
	if d.next+n > d.size {
		return nil, ErrDeckExhausted
	}
	cards := make([]Card, n)
	copy(cards, d.cards[d.next:d.next+n])
	d.next += n
	return cards, nil
}

// Burn discards the next card
func (d *Deck) Burn() error {
	_, err := d.Draw()
	return err
}

// Remaining returns the number of undealt cards
func (d *Deck) Remaining() int {
	return d.size - d.next
}
