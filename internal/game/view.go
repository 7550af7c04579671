// internal/game/view.go
package game

import (
	"fmt"
	"strings"

	"github.com/jason-s-yu/rams/internal/cards"
	"github.com/jason-s-yu/rams/internal/rules"
)

// RoundView is the round as clients see it: everything except the exchange pool itself.
type RoundView struct {
	Number               int                            `json:"number"`
	Dealer               int                            `json:"dealer_index"`
	Seed                 int64                          `json:"seed"`
	Hands                [SeatCount][]cards.Card        `json:"hands"`
	Exchanged            [SeatCount]int                 `json:"exchanged"`
	Taken                [SeatCount]int                 `json:"taken"`
	TrickNumber          int                            `json:"trick_number"`
	CurrentTrick         []rules.Play                   `json:"current_trick"`
	Leader               int                            `json:"leader_index"`
	PassedPlayers        []int                          `json:"passed_players"`
	FiveSameSuitDeclared *int                           `json:"five_same_suit_declared"`
	Boys                 map[int]map[JackColor]BoysPair `json:"boys_state"`
	RemainingDeckCount   int                            `json:"remaining_deck_count"`
}

// View is the full snapshot pushed after every committed action.
type View struct {
	Game           Game              `json:"game"`
	Players        [SeatCount]Player `json:"players"`
	Round          RoundView         `json:"round"`
	ExchangeStatus *string           `json:"exchange_status"`

	// MustDeclare flags seats whose pile equals the tricks left in the round.
	MustDeclare [SeatCount]bool `json:"must_declare"`
}

// NewView builds the client snapshot of st. It copies, so later transitions never leak into a
// view already handed out.
func NewView(st *State) View {
	cp := st.Clone()
	v := View{Game: cp.Game, Players: cp.Players}
	r := cp.Round
	if r == nil {
		return v
	}
	v.Round = RoundView{
		Number:               r.Number,
		Dealer:               r.Dealer,
		Seed:                 r.Seed,
		Hands:                r.Hands,
		Exchanged:            r.Exchanged,
		Taken:                r.Taken,
		TrickNumber:          r.TrickNumber,
		CurrentTrick:         r.CurrentTrick,
		Leader:               r.Leader,
		PassedPlayers:        r.PassedPlayers,
		FiveSameSuitDeclared: r.FiveSameSuitDeclared,
		Boys:                 r.Boys,
		RemainingDeckCount:   len(r.RemainingDeck),
	}
	if cp.Game.Status == StatusInProgress && cp.Game.Phase == PhaseExchange {
		status := exchangeStatus(cp)
		v.ExchangeStatus = &status
	}
	if cp.Game.Status == StatusInProgress && cp.Game.Phase == PhasePlay {
		played := r.TotalTaken()
		for seat, p := range cp.Players {
			if r.IsPassed(seat) {
				continue
			}
			v.MustDeclare[seat] = rules.MustDeclareImmediateWin(p.Pile, played, HandSize)
		}
	}
	return v
}

// exchangeStatus renders progress like "P1 changed 2 cards → P2 exchanging...".
func exchangeStatus(st *State) string {
	parts := make([]string, 0, SeatCount)
	for _, seat := range exchangeOrder(st.Game.Dealer) {
		if seat == st.Game.CurrentPlayer {
			parts = append(parts, fmt.Sprintf("P%d exchanging...", seat))
			break
		}
		parts = append(parts, fmt.Sprintf("P%d changed %d cards", seat, st.Round.Exchanged[seat]))
	}
	return strings.Join(parts, " → ")
}
