// internal/game/service.go
package game

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/rams/internal/cards"
	"github.com/jason-s-yu/rams/internal/rules"
)

// Update is what publishers receive for every event of a committed action.
type Update struct {
	GameID      uuid.UUID `json:"game_id"`
	ActionIndex int       `json:"action_index"`
	Event       Event     `json:"event"`
	State       View      `json:"state"`
}

// Publisher fans committed updates out (websocket clients, the action log). A failing publisher
// never undoes the commit.
type Publisher interface {
	Publish(ctx context.Context, u Update) error
}

// Strategy picks moves for AI seats. Whatever it returns still goes through Engine.Apply.
type Strategy interface {
	ChooseDiscards(hand []cards.Card, trump cards.Card, deckRemaining int) []cards.Card
	ChooseToPlay(hand []cards.Card, trump cards.Card) bool
	ChooseCard(hand []cards.Card, trick []rules.Play, trump cards.Suit) cards.Card
}

// Service serializes actions per game: load, apply, save, then publish.
type Service struct {
	engine     *Engine
	repo       Repository
	strategy   Strategy
	publishers []Publisher
	log        logrus.FieldLogger

	mu    sync.Mutex
	locks map[uuid.UUID]*gameLock
}

// gameLock is held or awaited by refs callers; the entry is dropped when refs reaches zero.
type gameLock struct {
	mu   sync.Mutex
	refs int
}

// NewService wires the engine to its collaborators. strategy may be nil when no seat is AI.
func NewService(engine *Engine, repo Repository, strategy Strategy, logger logrus.FieldLogger, publishers ...Publisher) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		engine:     engine,
		repo:       repo,
		strategy:   strategy,
		publishers: publishers,
		log:        logger,
		locks:      make(map[uuid.UUID]*gameLock),
	}
}

// lock takes the game's mutex and returns its release.
func (s *Service) lock(id uuid.UUID) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &gameLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}
}

// Create starts a new game and stores it.
func (s *Service) Create(ctx context.Context, hr HouseRules, seed *int64) (View, error) {
	id := uuid.New()
	defer s.lock(id)()

	st, events, err := s.engine.NewGame(id, hr, seed)
	if err != nil {
		return View{}, err
	}
	if err := s.repo.Create(ctx, st); err != nil {
		return View{}, fmt.Errorf("storing game %s: %w", id, err)
	}
	view := NewView(st)
	s.publish(ctx, st, events, view)
	return view, nil
}

// Get returns the current snapshot of a game.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (View, error) {
	st, err := s.repo.Load(ctx, id)
	if err != nil {
		return View{}, err
	}
	return NewView(st), nil
}

// Apply runs one action for a game under that game's lock.
func (s *Service) Apply(ctx context.Context, id uuid.UUID, a Action) (View, error) {
	defer s.lock(id)()

	st, err := s.repo.Load(ctx, id)
	if err != nil {
		return View{}, err
	}
	return s.commit(ctx, st, a, nil)
}

// AIMove asks the strategy for one move on behalf of the current seat, which must be an AI seat.
func (s *Service) AIMove(ctx context.Context, id uuid.UUID) (View, error) {
	defer s.lock(id)()

	st, err := s.repo.Load(ctx, id)
	if err != nil {
		return View{}, err
	}
	if err := st.validate(); err != nil {
		return View{}, err
	}
	if st.Game.Status == StatusFinished {
		return View{}, rules.Violation("game is finished")
	}
	seat := st.Game.CurrentPlayer
	if st.Players[seat].Type != PlayerAI {
		return View{}, rules.Violation("player %d is not an AI player", seat)
	}
	if s.strategy == nil {
		return View{}, errors.New("no AI strategy configured")
	}

	r := st.Round
	hand := r.Hands[seat]
	var a Action
	var pre []Event
	switch st.Game.Phase {
	case PhaseExchange:
		pre = append(pre, seatEvent(EventExchangeStarted, seat, nil))
		var discards []cards.Card
		if len(r.RemainingDeck) > 0 {
			discards = s.strategy.ChooseDiscards(hand, st.Game.TrumpCard, len(r.RemainingDeck))
		}
		a = Exchange{Seat: seat, Discards: discards}
	case PhaseChooseToPlay:
		a = Participate{Seat: seat, Play: s.strategy.ChooseToPlay(hand, st.Game.TrumpCard)}
	case PhasePlay:
		a = PlayCard{Seat: seat, Card: s.strategy.ChooseCard(hand, r.CurrentTrick, st.Trump())}
	default:
		return View{}, corrupt("unknown phase %q", st.Game.Phase)
	}
	return s.commit(ctx, st, a, pre)
}

// commit applies a, saves the result and publishes. pre events describe st before the action.
func (s *Service) commit(ctx context.Context, st *State, a Action, pre []Event) (View, error) {
	logger := s.log.WithFields(logrus.Fields{
		"game":   st.Game.ID,
		"seat":   a.ActorSeat(),
		"action": a.Name(),
	})

	next, events, err := s.engine.Apply(st, a)
	if err != nil {
		if errors.Is(err, ErrCorruptState) {
			logger.WithError(err).Error("refusing action on corrupt state")
		} else {
			logger.WithError(err).Debug("action rejected")
		}
		return View{}, err
	}
	if err := s.repo.Save(ctx, next); err != nil {
		logger.WithError(err).Error("failed to save game state")
		return View{}, fmt.Errorf("saving game %s: %w", st.Game.ID, err)
	}

	if len(pre) > 0 {
		s.publish(ctx, st, pre, NewView(st))
	}
	view := NewView(next)
	s.publish(ctx, next, events, view)
	return view, nil
}

func (s *Service) publish(ctx context.Context, st *State, events []Event, view View) {
	for _, ev := range events {
		u := Update{GameID: st.Game.ID, ActionIndex: st.Game.ActionCount, Event: ev, State: view}
		for _, p := range s.publishers {
			if err := p.Publish(ctx, u); err != nil {
				s.log.WithFields(logrus.Fields{"game": st.Game.ID, "event": ev.Type}).
					WithError(err).Warn("failed to publish update")
			}
		}
	}
}
