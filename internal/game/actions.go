package game

import "github.com/jason-s-yu/rams/internal/cards"

// Action is one discrete move submitted for a seat. The concrete types below are the only
// implementations.
type Action interface {
	ActorSeat() int
	Name() string
}

// Exchange discards 0-5 cards and draws as many from the remaining deck.
type Exchange struct {
	Seat     int
	Discards []cards.Card
}

// Participate opts a seat in or out of the round's play phase.
type Participate struct {
	Seat int
	Play bool
}

// PlayCard lays a card into the current trick.
type PlayCard struct {
	Seat int
	Card cards.Card
}

// DeclareJacks is the voluntary declaration: pile becomes 5 and one maltzy is added.
type DeclareJacks struct {
	Seat int
}

func (a Exchange) ActorSeat() int     { return a.Seat }
func (a Participate) ActorSeat() int  { return a.Seat }
func (a PlayCard) ActorSeat() int     { return a.Seat }
func (a DeclareJacks) ActorSeat() int { return a.Seat }

func (Exchange) Name() string     { return "exchange" }
func (Participate) Name() string  { return "participation" }
func (PlayCard) Name() string     { return "play_card" }
func (DeclareJacks) Name() string { return "declare_jacks" }
