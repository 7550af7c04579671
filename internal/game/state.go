// internal/game/state.go
package game

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/jason-s-yu/rams/internal/cards"
	"github.com/jason-s-yu/rams/internal/rules"
)

const (
	// SeatCount is the fixed number of seats at a table.
	SeatCount = 4

	// HandSize is the number of cards dealt to every seat.
	HandSize = 5
)

// Phase is the step of the round state machine.
type Phase string

const (
	PhaseExchange     Phase = "exchange"
	PhaseChooseToPlay Phase = "choose_to_play"
	PhasePlay         Phase = "play"
)

// Status is the lifecycle of a whole match.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusFinished   Status = "finished"
)

// PlayerType says who supplies a seat's actions. The engine itself ignores it.
type PlayerType string

const (
	PlayerHuman PlayerType = "human"
	PlayerAI    PlayerType = "ai"
)

// JackColor names a boys pair.
type JackColor string

const (
	JacksRed   JackColor = "red"
	JacksBlack JackColor = "black"
)

// Player is a seat's record that survives across rounds.
type Player struct {
	Seat        int        `json:"seat_index"`
	Type        PlayerType `json:"type"`
	Pile        int        `json:"pile"`
	MaltzyCount int        `json:"maltzy_count"`

	// PileSince is the round in which the current pile value was reached.
	PileSince int `json:"pile_since"`
}

// BoysPair tracks how many jacks of a detected pair have been played.
type BoysPair struct {
	Played int `json:"played"`
}

// Round is the per-round record. It is replaced wholesale when the next round is dealt.
type Round struct {
	Number        int                     `json:"number"`
	Dealer        int                     `json:"dealer_index"`
	Seed          int64                   `json:"seed"`
	Hands         [SeatCount][]cards.Card `json:"hands"`
	Exchanged     [SeatCount]int          `json:"exchanged"`
	RemainingDeck []cards.Card            `json:"remaining_deck"`
	CurrentTrick  []rules.Play            `json:"current_trick"`
	Leader        int                     `json:"leader_index"`
	Taken         [SeatCount]int          `json:"taken"`
	TrickNumber   int                     `json:"trick_number"`
	PassedPlayers []int                   `json:"passed_players"`

	FiveSameSuitDeclared *int                           `json:"five_same_suit_declared"`
	Boys                 map[int]map[JackColor]BoysPair `json:"boys_state"`
}

// Game holds the match-level fields.
type Game struct {
	ID            uuid.UUID  `json:"id"`
	Status        Status     `json:"status"`
	Phase         Phase      `json:"phase"`
	Dealer        int        `json:"dealer_index"`
	CurrentPlayer int        `json:"current_player_index"`
	RoundNumber   int        `json:"round_number"`
	TrumpCard     cards.Card `json:"trump_card_id"`
	Winner        *int       `json:"winner_player_index"`
	Rules         HouseRules `json:"rules"`

	// ActionCount is the number of committed actions, used to index the action log.
	ActionCount int       `json:"action_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// State is the unit loaded, transitioned and saved for one game.
type State struct {
	Game    Game              `json:"game"`
	Round   *Round            `json:"round"`
	Players [SeatCount]Player `json:"players"`
}

// Trump returns the trump suit of the round.
func (s *State) Trump() cards.Suit {
	return s.Game.TrumpCard.Suit
}

// Piles returns every seat's pile in seat order.
func (s *State) Piles() []int {
	out := make([]int, SeatCount)
	for i, p := range s.Players {
		out[i] = p.Pile
	}
	return out
}

// IsPassed reports whether seat declined to play this round.
func (r *Round) IsPassed(seat int) bool {
	for _, p := range r.PassedPlayers {
		if p == seat {
			return true
		}
	}
	return false
}

// ActiveCount is the number of seats taking part in the round.
func (r *Round) ActiveCount() int {
	return SeatCount - len(r.PassedPlayers)
}

// TotalTaken sums tricks taken this round.
func (r *Round) TotalTaken() int {
	n := 0
	for _, t := range r.Taken {
		n += t
	}
	return n
}

// Clone deep-copies the state so a transition can never touch its input.
func (s *State) Clone() *State {
	cp := *s
	if s.Game.Winner != nil {
		w := *s.Game.Winner
		cp.Game.Winner = &w
	}
	if s.Round != nil {
		cp.Round = s.Round.clone()
	}
	return &cp
}

func (r *Round) clone() *Round {
	cp := *r
	for i := range r.Hands {
		cp.Hands[i] = slices.Clone(r.Hands[i])
	}
	cp.RemainingDeck = slices.Clone(r.RemainingDeck)
	cp.CurrentTrick = slices.Clone(r.CurrentTrick)
	cp.PassedPlayers = slices.Clone(r.PassedPlayers)
	if r.FiveSameSuitDeclared != nil {
		v := *r.FiveSameSuitDeclared
		cp.FiveSameSuitDeclared = &v
	}
	if r.Boys != nil {
		cp.Boys = make(map[int]map[JackColor]BoysPair, len(r.Boys))
		for seat, pairs := range r.Boys {
			m := make(map[JackColor]BoysPair, len(pairs))
			for color, p := range pairs {
				m[color] = p
			}
			cp.Boys[seat] = m
		}
	}
	return &cp
}

// validate catches snapshots no sequence of legal actions could produce.
func (s *State) validate() error {
	if s.Round == nil {
		return corrupt("game %s has no active round", s.Game.ID)
	}
	if s.Game.Dealer < 0 || s.Game.Dealer >= SeatCount {
		return corrupt("dealer index %d out of range", s.Game.Dealer)
	}
	if s.Game.CurrentPlayer < 0 || s.Game.CurrentPlayer >= SeatCount {
		return corrupt("current player index %d out of range", s.Game.CurrentPlayer)
	}
	seen := make(map[cards.Card]bool, 36)
	for seat, hand := range s.Round.Hands {
		if len(hand) > HandSize {
			return corrupt("seat %d holds %d cards", seat, len(hand))
		}
		for _, c := range hand {
			if !c.Suit.Valid() || !c.Rank.Valid() || seen[c] {
				return corrupt("seat %d holds a malformed or duplicated card %v", seat, c)
			}
			seen[c] = true
		}
	}
	return nil
}
