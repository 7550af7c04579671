package rules

import "github.com/jason-s-yu/rams/internal/cards"

// MaxExchange is the most cards a seat may swap, i.e. its whole hand.
const MaxExchange = 5

// ValidateExchange checks a discard request against the seat's hand and the exchange pool.
// A zero-card exchange is always allowed, even with an empty pool.
func ValidateExchange(seat int, hand, discards []cards.Card, deckRemaining int) error {
	n := len(discards)
	if n > MaxExchange {
		return Invalid("you may discard between 0 and %d cards, got %d", MaxExchange, n)
	}

	seen := make(map[cards.Card]bool, n)
	for _, c := range discards {
		if seen[c] {
			return Invalid("card %s listed twice in discard", c.ID())
		}
		seen[c] = true
	}

	for _, c := range discards {
		if !cards.Contains(hand, c) {
			return Violation("seat %d can only discard cards in hand, %s is not", seat, c.ID())
		}
	}

	if n > 0 && deckRemaining < n {
		return Violation("not enough cards left in the deck to exchange %d (remaining %d)", n, deckRemaining)
	}
	return nil
}

// HasFiveOfOneSuit reports whether hand is exactly five cards of a single suit.
func HasFiveOfOneSuit(hand []cards.Card) (cards.Suit, bool) {
	if len(hand) != 5 {
		return "", false
	}
	s := hand[0].Suit
	for _, c := range hand[1:] {
		if c.Suit != s {
			return "", false
		}
	}
	return s, true
}

// PriorityFiveOfOneSuit scans seats in turn order starting left of the dealer and returns the
// first seat holding five of one suit. Scan order is the whole tie-break.
func PriorityFiveOfOneSuit(hands [][]cards.Card, dealer, seatCount int) (int, bool) {
	for i := 1; i <= seatCount; i++ {
		seat := (dealer + i) % seatCount
		if seat >= len(hands) {
			continue
		}
		if _, ok := HasFiveOfOneSuit(hands[seat]); ok {
			return seat, true
		}
	}
	return -1, false
}
