// internal/ai/strategy.go
package ai

import (
	"sort"

	"github.com/jason-s-yu/rams/internal/cards"
	"github.com/jason-s-yu/rams/internal/rules"
)

// MaxDiscards caps how many cards the basic strategy swaps.
const MaxDiscards = 3

// KeepAtLeast is the number of cards the basic strategy never discards below.
const KeepAtLeast = 2

// Basic is the stock heuristic opponent. It holds no state.
type Basic struct{}

// NewBasic returns the stock strategy.
func NewBasic() *Basic {
	return &Basic{}
}

// ChooseDiscards keeps trumps and aces and swaps up to three of the lowest remaining cards,
// never leaving fewer than two of the original hand.
func (Basic) ChooseDiscards(hand []cards.Card, trump cards.Card, deckRemaining int) []cards.Card {
	candidates := make([]cards.Card, 0, len(hand))
	for _, c := range hand {
		if c.Suit == trump.Suit || c.Rank == cards.Ace {
			continue
		}
		candidates = append(candidates, c)
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Rank < candidates[j].Rank })

	n := min(MaxDiscards, len(candidates), max(0, len(hand)-KeepAtLeast), deckRemaining)
	return candidates[:n]
}

// ChooseToPlay opts in when the hand holds a trump or an ace.
func (Basic) ChooseToPlay(hand []cards.Card, trump cards.Card) bool {
	for _, c := range hand {
		if c.Suit == trump.Suit || c.Rank == cards.Ace {
			return true
		}
	}
	return false
}

// ChooseCard returns a legal card. Leading, it plays aces first (non-trump before trump), then
// its lowest card; following, it wins as cheaply as it can, else sheds its lowest card.
func (Basic) ChooseCard(hand []cards.Card, trick []rules.Play, trump cards.Suit) cards.Card {
	legal := LegalCards(hand, trick, trump)
	if len(legal) == 0 {
		if len(hand) > 0 {
			return hand[0]
		}
		return cards.Card{}
	}

	if len(trick) == 0 {
		sort.SliceStable(legal, func(i, j int) bool {
			a, b := legal[i], legal[j]
			if (a.Rank == cards.Ace) != (b.Rank == cards.Ace) {
				return a.Rank == cards.Ace
			}
			if (a.Suit == trump) != (b.Suit == trump) {
				return a.Suit != trump
			}
			return a.Rank < b.Rank
		})
		return legal[0]
	}

	sort.SliceStable(legal, func(i, j int) bool { return legal[i].Rank < legal[j].Rank })
	for _, c := range legal {
		if wouldWin(c, trick, trump) {
			return c
		}
	}
	return legal[0]
}

// LegalCards filters hand down to the cards AssertLegalPlay accepts for the trick.
func LegalCards(hand []cards.Card, trick []rules.Play, trump cards.Suit) []cards.Card {
	lead := rules.LeadingSuit(trick)
	out := make([]cards.Card, 0, len(hand))
	for _, c := range hand {
		if rules.AssertLegalPlay(c, hand, lead, &trump) == nil {
			out = append(out, c)
		}
	}
	return out
}

func wouldWin(c cards.Card, trick []rules.Play, trump cards.Suit) bool {
	const me = -1
	plays := append(append([]rules.Play(nil), trick...), rules.Play{Seat: me, Card: c})
	winner, err := rules.WinnerOfTrick(plays, &trump)
	return err == nil && winner == me
}
