// internal/game/events.go
package game

// EventType labels why a snapshot changed. Nothing in the engine consumes it.
type EventType string

const (
	EventGameCreated          EventType = "game.created"
	EventExchangeStarted      EventType = "exchange.started"
	EventExchangeCompleted    EventType = "exchange.completed"
	EventParticipationDecided EventType = "participation.decided"
	EventCardPlayed           EventType = "card.played"
	EventBoysAnnouncement     EventType = "boys.announcement"
	EventTrickCompleted       EventType = "trick.completed"
	EventJacksDeclared        EventType = "jacks.declared"
	EventRoundFinished        EventType = "round.finished"
	EventGameFinished         EventType = "game.finished"
)

// Round end reasons carried in EventRoundFinished payloads.
const (
	ReasonTricks       = "tricks"
	ReasonFiveSameSuit = "five_same_suit"
	ReasonAllPassed    = "all_passed"
)

// Event is one labelled step produced by a transition.
type Event struct {
	Type    EventType              `json:"type"`
	Seat    *int                   `json:"seat,omitempty"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

func seatEvent(t EventType, seat int, payload map[string]interface{}) Event {
	s := seat
	return Event{Type: t, Seat: &s, Payload: payload}
}
