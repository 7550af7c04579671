// internal/rules/trick.go
package rules

import (
	"errors"
	"fmt"

	"github.com/jason-s-yu/rams/internal/cards"
)

// ErrEmptyTrick is returned when resolving a trick without plays.
var ErrEmptyTrick = errors.New("trick must contain at least 1 play")

// Play is one card laid into a trick by a seat.
type Play struct {
	Seat int        `json:"player"`
	Card cards.Card `json:"card"`
}

// LeadingSuit returns the suit of the first play, or nil for an unopened trick.
func LeadingSuit(plays []Play) *cards.Suit {
	if len(plays) == 0 {
		return nil
	}
	s := plays[0].Card.Suit
	return &s
}

// AssertLegalPlay checks card against the hand and the trick so far. A seat holding the
// leading suit must follow it; a seat without it may play anything, trump included.
func AssertLegalPlay(card cards.Card, hand []cards.Card, lead, trump *cards.Suit) error {
	if !cards.Contains(hand, card) {
		return Violation("card %s is not in hand", card.ID())
	}
	if lead == nil {
		return nil
	}

	hasLead := false
	for _, c := range hand {
		if c.Suit == *lead {
			hasLead = true
			break
		}
	}
	if hasLead && card.Suit != *lead {
		return Violation("must follow suit when possible (%s led)", lead.Name())
	}
	return nil
}

// WinnerOfTrick resolves the trick: any trump beats any non-trump, otherwise the highest card of
// the leading suit wins. Off-suit cards never win.
func WinnerOfTrick(plays []Play, trump *cards.Suit) (int, error) {
	if len(plays) == 0 {
		return -1, ErrEmptyTrick
	}
	lead := plays[0].Card.Suit

	isTrump := func(c cards.Card) bool { return trump != nil && c.Suit == *trump }

	best := -1
	for i, p := range plays {
		if !isTrump(p.Card) && p.Card.Suit != lead {
			continue
		}
		if best < 0 {
			best = i
			continue
		}
		cur := plays[best].Card
		switch {
		case isTrump(p.Card) && !isTrump(cur):
			best = i
		case isTrump(p.Card) == isTrump(cur) && p.Card.Rank > cur.Rank:
			best = i
		}
	}
	if best < 0 {
		return -1, fmt.Errorf("no winning card found in trick of %d plays", len(plays))
	}
	return plays[best].Seat, nil
}

// AssertTurnOrder checks that the i-th play came from (leader+i) mod seatCount.
func AssertTurnOrder(plays []Play, leader, seatCount int) error {
	for i, p := range plays {
		expected := (leader + i) % seatCount
		if p.Seat != expected {
			return Violation("invalid turn order: expected player %d, got %d", expected, p.Seat)
		}
	}
	return nil
}
