// internal/cards/deck.go
package cards

import (
	"errors"
	"fmt"
	"math/rand"
	randv2 "math/rand/v2"

	"github.com/seehuhn/mt19937"
)

var (
	// ErrEmptyDeck is returned when drawing from a deck with no cards left.
	ErrEmptyDeck = errors.New("deck is empty")

	// ErrNegativeSeed is returned by ShuffleSeed for seeds below zero.
	ErrNegativeSeed = errors.New("seed must be a non-negative integer")

	// ErrInvalidDeal is returned by Deal for non-positive counts or a deck too small to deal from.
	ErrInvalidDeal = errors.New("invalid deal")
)

// Deck is an ordered sequence of cards. The last element is the top of the deck.
type Deck struct {
	cards []Card
}

// NewStandardDeck returns the 36-card deck: Hearts, Diamonds, Spades, Clubs, each 6 through Ace.
func NewStandardDeck() *Deck {
	cs := make([]Card, 0, len(Suits)*len(Ranks))
	for _, s := range Suits {
		for _, r := range Ranks {
			cs = append(cs, Card{Suit: s, Rank: r})
		}
	}
	return &Deck{cards: cs}
}

// NewDeck wraps an explicit card order, mostly useful for tests.
func NewDeck(cs []Card) *Deck {
	cp := make([]Card, len(cs))
	copy(cp, cs)
	return &Deck{cards: cp}
}

// Len returns the number of cards left.
func (d *Deck) Len() int {
	return len(d.cards)
}

// Cards returns a copy of the current order.
func (d *Deck) Cards() []Card {
	cp := make([]Card, len(d.cards))
	copy(cp, d.cards)
	return cp
}

// Shuffle permutes the deck from a non-deterministic source.
func (d *Deck) Shuffle() {
	randv2.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// ShuffleSeed permutes the deck with MT19937-64 seeded by seed. The same seed always yields
// the same order.
func (d *Deck) ShuffleSeed(seed int64) error {
	if seed < 0 {
		return fmt.Errorf("%w: got %d", ErrNegativeSeed, seed)
	}
	src := mt19937.New()
	src.Seed(seed)
	rng := rand.New(src)

	// Fisher-Yates over the explicit source; rand.Rand.Shuffle's algorithm is not
	// something we want the deal order to depend on.
	for i := len(d.cards) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
	return nil
}

// Draw removes and returns the top card.
func (d *Deck) Draw() (Card, error) {
	n := len(d.cards)
	if n == 0 {
		return Card{}, ErrEmptyDeck
	}
	c := d.cards[n-1]
	d.cards = d.cards[:n-1]
	return c, nil
}

// DrawAll empties the deck, returning the cards in draw order.
func (d *Deck) DrawAll() []Card {
	out := make([]Card, 0, len(d.cards))
	for len(d.cards) > 0 {
		c, _ := d.Draw()
		out = append(out, c)
	}
	return out
}

// Remove takes c out of the deck wherever it is. It reports whether the card was present.
func (d *Deck) Remove(c Card) bool {
	for i, dc := range d.cards {
		if dc == c {
			d.cards = append(d.cards[:i], d.cards[i+1:]...)
			return true
		}
	}
	return false
}
