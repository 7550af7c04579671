// internal/cards/card.go
package cards

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidCardID indicates a card id that does not follow the "<suit>-<rank>" format.
var ErrInvalidCardID = errors.New("invalid card id")

// Suit is one of the four French suits, identified by a single-letter code.
type Suit string

const (
	Hearts   Suit = "H"
	Diamonds Suit = "D"
	Spades   Suit = "S"
	Clubs    Suit = "C"
)

// Suits lists the suits in deck enumeration order.
var Suits = []Suit{Hearts, Diamonds, Spades, Clubs}

// Valid reports whether s is one of the four known suit codes.
func (s Suit) Valid() bool {
	switch s {
	case Hearts, Diamonds, Spades, Clubs:
		return true
	}
	return false
}

// Red reports whether the suit is Hearts or Diamonds.
func (s Suit) Red() bool {
	return s == Hearts || s == Diamonds
}

// Name returns the human readable suit name.
func (s Suit) Name() string {
	switch s {
	case Hearts:
		return "Hearts"
	case Diamonds:
		return "Diamonds"
	case Spades:
		return "Spades"
	case Clubs:
		return "Clubs"
	}
	return "Unknown"
}

// ParseSuit converts a suit code into a Suit.
func ParseSuit(code string) (Suit, error) {
	s := Suit(code)
	if !s.Valid() {
		return "", fmt.Errorf("%w: unknown suit %q", ErrInvalidCardID, code)
	}
	return s, nil
}

// Rank is the numeric card value, 6 through 14 (Jack=11 .. Ace=14).
type Rank int

const (
	Six   Rank = 6
	Seven Rank = 7
	Eight Rank = 8
	Nine  Rank = 9
	Ten   Rank = 10
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
	Ace   Rank = 14
)

// Ranks lists the ranks of the 36-card deck, lowest first.
var Ranks = []Rank{Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}

// Valid reports whether r is within 6..14.
func (r Rank) Valid() bool {
	return r >= Six && r <= Ace
}

func (r Rank) String() string {
	switch r {
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	}
	return strconv.Itoa(int(r))
}

// Card is an immutable (suit, rank) pair. Two cards are the same card iff they are ==.
type Card struct {
	Suit Suit
	Rank Rank
}

// New builds a card; it does not validate the inputs, use ParseID for untrusted input.
func New(s Suit, r Rank) Card {
	return Card{Suit: s, Rank: r}
}

// ID returns the stable wire identifier, e.g. "H-12" for the Queen of Hearts.
func (c Card) ID() string {
	return string(c.Suit) + "-" + strconv.Itoa(int(c.Rank))
}

// String renders the card for logs, e.g. "QH".
func (c Card) String() string {
	return c.Rank.String() + string(c.Suit)
}

// IsJack reports whether the card is a jack.
func (c Card) IsJack() bool {
	return c.Rank == Jack
}

// ParseID decodes a wire identifier produced by Card.ID.
func ParseID(id string) (Card, error) {
	suitPart, rankPart, ok := strings.Cut(id, "-")
	if !ok || strings.Contains(rankPart, "-") {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCardID, id)
	}
	s, err := ParseSuit(suitPart)
	if err != nil {
		return Card{}, err
	}
	if rankPart == "" || strings.TrimLeft(rankPart, "0123456789") != "" {
		return Card{}, fmt.Errorf("%w: rank %q is not a number", ErrInvalidCardID, rankPart)
	}
	n, err := strconv.Atoi(rankPart)
	if err != nil {
		return Card{}, fmt.Errorf("%w: %v", ErrInvalidCardID, err)
	}
	r := Rank(n)
	if !r.Valid() {
		return Card{}, fmt.Errorf("%w: rank %d out of range", ErrInvalidCardID, n)
	}
	return Card{Suit: s, Rank: r}, nil
}

// ParseIDs decodes a list of wire identifiers, failing on the first bad one.
func ParseIDs(ids []string) ([]Card, error) {
	out := make([]Card, 0, len(ids))
	for _, id := range ids {
		c, err := ParseID(id)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// IDs encodes cards into their wire identifiers.
func IDs(cs []Card) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID()
	}
	return out
}

// MarshalText encodes the card as its wire id so JSON carries "H-12" instead of an object.
func (c Card) MarshalText() ([]byte, error) {
	if !c.Suit.Valid() || !c.Rank.Valid() {
		return nil, fmt.Errorf("%w: cannot encode suit %q rank %d", ErrInvalidCardID, c.Suit, c.Rank)
	}
	return []byte(c.ID()), nil
}

// UnmarshalText decodes a wire id.
func (c *Card) UnmarshalText(b []byte) error {
	parsed, err := ParseID(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Contains reports whether hand holds c.
func Contains(hand []Card, c Card) bool {
	for _, h := range hand {
		if h == c {
			return true
		}
	}
	return false
}

// Without returns a copy of hand with every card in drop removed, preserving order.
func Without(hand []Card, drop ...Card) []Card {
	out := make([]Card, 0, len(hand))
	for _, h := range hand {
		if !Contains(drop, h) {
			out = append(out, h)
		}
	}
	return out
}
