// internal/game/engine.go
package game

import (
	"math"
	randv2 "math/rand/v2"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/rams/internal/cards"
	"github.com/jason-s-yu/rams/internal/rules"
)

// FiveSameSuitPenalty is taken off the pile of the seat holding five of one suit.
const FiveSameSuitPenalty = 5

// SoloPenalty is taken off the pile of the only seat left when the others pass.
const SoloPenalty = 5

// DeclaredPile is the pile a seat is set to by a voluntary jacks declaration.
const DeclaredPile = 5

// SeedSource supplies the shuffle seed for every round after the first. Values must be
// non-negative.
type SeedSource func() int64

func randomSeed() int64 {
	return randv2.Int64N(math.MaxInt64)
}

// Engine applies actions to game states. It holds no per-game data and is safe for concurrent
// use; serializing actions of one game is the caller's job.
type Engine struct {
	seeds SeedSource
	log   logrus.FieldLogger
	now   func() time.Time
}

// NewEngine builds an engine. A nil logger uses the logrus standard logger; nil seeds draws
// round seeds from math/rand/v2.
func NewEngine(logger logrus.FieldLogger, seeds SeedSource) *Engine {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if seeds == nil {
		seeds = randomSeed
	}
	return &Engine{seeds: seeds, log: logger, now: time.Now}
}

// NewGame seats four players and deals round 1. seed fixes round 1's shuffle when given.
func (e *Engine) NewGame(id uuid.UUID, hr HouseRules, seed *int64) (*State, []Event, error) {
	if err := hr.validate(); err != nil {
		return nil, nil, rules.Invalid("%v", err)
	}
	var s int64
	if seed != nil {
		s = *seed
	} else {
		s = e.seeds()
	}
	if s < 0 {
		return nil, nil, rules.Invalid("seed must be a non-negative integer, got %d", s)
	}

	now := e.now().UTC()
	st := &State{Game: Game{
		ID:        id,
		Status:    StatusInProgress,
		Rules:     hr,
		CreatedAt: now,
		UpdatedAt: now,
	}}
	for i := range st.Players {
		st.Players[i] = Player{Seat: i, Type: hr.seatType(i), Pile: hr.StartingPile}
	}

	events := []Event{{Type: EventGameCreated, Payload: map[string]interface{}{"seed": s}}}
	if err := e.startRound(st, 1, 0, s, &events); err != nil {
		return nil, nil, err
	}
	e.log.WithFields(logrus.Fields{"game": id, "seed": s, "round": st.Game.RoundNumber}).Info("game created")
	return st, events, nil
}

// Apply runs one action against a copy of st. On error st is untouched and no events are
// returned.
func (e *Engine) Apply(st *State, a Action) (*State, []Event, error) {
	if st == nil {
		return nil, nil, corrupt("nil state")
	}
	if err := st.validate(); err != nil {
		return nil, nil, err
	}
	if st.Game.Status == StatusFinished {
		return nil, nil, rules.Violation("game is finished")
	}
	if a == nil {
		return nil, nil, rules.Invalid("missing action")
	}
	if seat := a.ActorSeat(); seat < 0 || seat >= SeatCount {
		return nil, nil, rules.Invalid("player index must be between 0 and %d, got %d", SeatCount-1, seat)
	}

	next := st.Clone()
	var events []Event
	var err error
	switch act := a.(type) {
	case Exchange:
		err = e.exchange(next, act, &events)
	case Participate:
		err = e.participate(next, act, &events)
	case PlayCard:
		err = e.playCard(next, act, &events)
	case DeclareJacks:
		err = e.declareJacks(next, act, &events)
	default:
		err = rules.Invalid("unknown action %T", a)
	}
	if err != nil {
		return nil, nil, err
	}

	next.Game.ActionCount++
	next.Game.UpdatedAt = e.now().UTC()
	e.log.WithFields(logrus.Fields{
		"game":   next.Game.ID,
		"seat":   a.ActorSeat(),
		"action": a.Name(),
		"phase":  next.Game.Phase,
		"round":  next.Game.RoundNumber,
	}).Debug("action applied")
	return next, events, nil
}

func requirePhase(st *State, p Phase) error {
	if st.Game.Phase != p {
		return rules.Violation("game is not in %s phase", p)
	}
	return nil
}

func requireTurn(st *State, seat int) error {
	if st.Game.CurrentPlayer != seat {
		return rules.Violation("not your turn: waiting for player %d", st.Game.CurrentPlayer)
	}
	return nil
}

func (e *Engine) exchange(st *State, a Exchange, events *[]Event) error {
	if err := requirePhase(st, PhaseExchange); err != nil {
		return err
	}
	if err := requireTurn(st, a.Seat); err != nil {
		return err
	}
	r := st.Round

	discards := a.Discards
	if len(r.RemainingDeck) == 0 {
		discards = nil
	}
	hand := r.Hands[a.Seat]
	if err := rules.ValidateExchange(a.Seat, hand, discards, len(r.RemainingDeck)); err != nil {
		return err
	}

	n := len(discards)
	drawn := append([]cards.Card(nil), r.RemainingDeck[:n]...)
	r.Hands[a.Seat] = append(cards.Without(hand, discards...), drawn...)
	r.RemainingDeck = append([]cards.Card(nil), r.RemainingDeck[n:]...)
	r.Exchanged[a.Seat] = n
	*events = append(*events, seatEvent(EventExchangeCompleted, a.Seat, map[string]interface{}{
		"count": n,
	}))

	if seat, ok := rules.PriorityFiveOfOneSuit(r.Hands[:], r.Dealer, SeatCount); ok {
		return e.resolveFiveSameSuit(st, seat, events)
	}

	if a.Seat == st.Game.Dealer {
		st.Game.Phase = PhaseChooseToPlay
		st.Game.CurrentPlayer = leftOfDealer(st.Game.Dealer)
		return nil
	}
	st.Game.CurrentPlayer = nextSeat(a.Seat)
	return nil
}

func (e *Engine) participate(st *State, a Participate, events *[]Event) error {
	if err := requirePhase(st, PhaseChooseToPlay); err != nil {
		return err
	}
	if err := requireTurn(st, a.Seat); err != nil {
		return err
	}
	r := st.Round

	if !a.Play && !r.IsPassed(a.Seat) {
		r.PassedPlayers = append(r.PassedPlayers, a.Seat)
		sort.Ints(r.PassedPlayers)
	}
	*events = append(*events, seatEvent(EventParticipationDecided, a.Seat, map[string]interface{}{
		"play": a.Play,
	}))

	dealer := st.Game.Dealer
	if a.Seat != dealer {
		st.Game.CurrentPlayer = nextSeat(a.Seat)
		return nil
	}

	if r.ActiveCount() <= 1 {
		seat := dealer
		if active := activeSeats(r); len(active) == 1 {
			seat = active[0]
		}
		e.setPile(st, seat, st.Players[seat].Pile-SoloPenalty)
		return e.concludeRound(st, ReasonAllPassed, &seat, events)
	}

	st.Game.Phase = PhasePlay
	lead := firstActiveLeftOfDealer(r, dealer)
	r.Leader = lead
	st.Game.CurrentPlayer = lead
	e.detectBoys(st)
	return nil
}

func jackColor(s cards.Suit) JackColor {
	if s.Red() {
		return JacksRed
	}
	return JacksBlack
}

// detectBoys grants one maltzy per jack pair of a color held by an active seat.
func (e *Engine) detectBoys(st *State) {
	r := st.Round
	pairs := map[JackColor][2]cards.Card{
		JacksRed:   {cards.New(cards.Hearts, cards.Jack), cards.New(cards.Diamonds, cards.Jack)},
		JacksBlack: {cards.New(cards.Spades, cards.Jack), cards.New(cards.Clubs, cards.Jack)},
	}
	if r.Boys == nil {
		r.Boys = make(map[int]map[JackColor]BoysPair)
	}
	for _, seat := range activeSeats(r) {
		hand := r.Hands[seat]
		for _, color := range []JackColor{JacksRed, JacksBlack} {
			pair := pairs[color]
			if !cards.Contains(hand, pair[0]) || !cards.Contains(hand, pair[1]) {
				continue
			}
			if r.Boys[seat] == nil {
				r.Boys[seat] = make(map[JackColor]BoysPair)
			}
			r.Boys[seat][color] = BoysPair{}
			st.Players[seat].MaltzyCount++
			e.log.WithFields(logrus.Fields{"game": st.Game.ID, "seat": seat, "color": color}).Info("boys detected")
		}
	}
}

func (e *Engine) playCard(st *State, a PlayCard, events *[]Event) error {
	if err := requirePhase(st, PhasePlay); err != nil {
		return err
	}
	if err := requireTurn(st, a.Seat); err != nil {
		return err
	}
	r := st.Round
	if r.IsPassed(a.Seat) {
		return corrupt("turn points at seat %d which passed this round", a.Seat)
	}

	trump := st.Trump()
	hand := r.Hands[a.Seat]
	if err := rules.AssertLegalPlay(a.Card, hand, rules.LeadingSuit(r.CurrentTrick), &trump); err != nil {
		return err
	}

	if len(r.CurrentTrick) == 0 {
		r.Leader = a.Seat
	}
	r.CurrentTrick = append(r.CurrentTrick, rules.Play{Seat: a.Seat, Card: a.Card})
	r.Hands[a.Seat] = cards.Without(hand, a.Card)
	*events = append(*events, seatEvent(EventCardPlayed, a.Seat, map[string]interface{}{
		"card":         a.Card.ID(),
		"trick_number": r.TrickNumber,
	}))

	if a.Card.IsJack() {
		color := jackColor(a.Card.Suit)
		if pair, ok := r.Boys[a.Seat][color]; ok {
			pair.Played++
			r.Boys[a.Seat][color] = pair
			message := "first Jack came out"
			if pair.Played > 1 {
				message = "second Jack came out"
			}
			*events = append(*events, seatEvent(EventBoysAnnouncement, a.Seat, map[string]interface{}{
				"color":   color,
				"played":  pair.Played,
				"message": message,
			}))
		}
	}

	if len(r.CurrentTrick) < r.ActiveCount() {
		st.Game.CurrentPlayer = nextActiveSeat(r, a.Seat)
		return nil
	}
	return e.completeTrick(st, events)
}

func (e *Engine) completeTrick(st *State, events *[]Event) error {
	r := st.Round
	if len(r.PassedPlayers) == 0 {
		if err := rules.AssertTurnOrder(r.CurrentTrick, r.Leader, SeatCount); err != nil {
			return corrupt("%v", err)
		}
	}
	trump := st.Trump()
	winner, err := rules.WinnerOfTrick(r.CurrentTrick, &trump)
	if err != nil {
		return corrupt("resolving trick %d: %v", r.TrickNumber, err)
	}

	r.Taken[winner]++
	*events = append(*events, seatEvent(EventTrickCompleted, winner, map[string]interface{}{
		"trick_number": r.TrickNumber,
		"plays":        r.CurrentTrick,
	}))
	r.CurrentTrick = []rules.Play{}
	r.TrickNumber++
	r.Leader = winner
	st.Game.CurrentPlayer = winner

	if r.TotalTaken() < HandSize {
		return nil
	}

	tricks := r.Taken[:]
	maltzy := make([]int, SeatCount)
	for i, p := range st.Players {
		maltzy[i] = p.MaltzyCount
	}
	piles, err := rules.ApplyRoundScoring(tricks, maltzy, st.Piles(), r.PassedPlayers, SeatCount)
	if err != nil {
		return corrupt("scoring round %d: %v", r.Number, err)
	}
	for i, p := range piles {
		e.setPile(st, i, p)
	}
	return e.concludeRound(st, ReasonTricks, nil, events)
}

func (e *Engine) declareJacks(st *State, a DeclareJacks, events *[]Event) error {
	if err := requirePhase(st, PhasePlay); err != nil {
		return err
	}
	if st.Round.IsPassed(a.Seat) {
		return rules.Violation("player %d is not playing this round", a.Seat)
	}
	e.setPile(st, a.Seat, DeclaredPile)
	st.Players[a.Seat].MaltzyCount++
	*events = append(*events, seatEvent(EventJacksDeclared, a.Seat, map[string]interface{}{
		"pile":         st.Players[a.Seat].Pile,
		"maltzy_count": st.Players[a.Seat].MaltzyCount,
	}))
	return nil
}

func (e *Engine) resolveFiveSameSuit(st *State, seat int, events *[]Event) error {
	s := seat
	st.Round.FiveSameSuitDeclared = &s
	e.setPile(st, seat, st.Players[seat].Pile-FiveSameSuitPenalty)
	return e.concludeRound(st, ReasonFiveSameSuit, &seat, events)
}

// setPile clamps at zero and stamps the round a new value was reached in.
func (e *Engine) setPile(st *State, seat, pile int) {
	if pile < 0 {
		pile = 0
	}
	p := &st.Players[seat]
	if p.Pile != pile {
		p.Pile = pile
		p.PileSince = st.Game.RoundNumber
	}
}

// concludeRound runs after a round's pile changes: it resets maltzy, then either finishes the
// game or deals the next round.
func (e *Engine) concludeRound(st *State, reason string, seat *int, events *[]Event) error {
	r := st.Round
	for i := range st.Players {
		st.Players[i].MaltzyCount = 0
	}
	payload := map[string]interface{}{
		"reason": reason,
		"round":  r.Number,
		"piles":  st.Piles(),
		"taken":  r.Taken,
	}
	ev := Event{Type: EventRoundFinished, Payload: payload}
	if seat != nil {
		ev = seatEvent(EventRoundFinished, *seat, payload)
	}
	*events = append(*events, ev)

	e.log.WithFields(logrus.Fields{
		"game":   st.Game.ID,
		"round":  r.Number,
		"reason": reason,
		"piles":  st.Piles(),
	}).Info("round finished")

	piles := st.Piles()
	if rules.IsGameEnd(piles) {
		since := make([]int, SeatCount)
		for i, p := range st.Players {
			since[i] = p.PileSince
		}
		w := rules.WinnerIndex(piles, since)
		st.Game.Status = StatusFinished
		st.Game.Winner = &w
		*events = append(*events, seatEvent(EventGameFinished, w, map[string]interface{}{
			"piles": piles,
		}))
		e.log.WithFields(logrus.Fields{"game": st.Game.ID, "winner": w}).Info("game finished")
		return nil
	}

	seed := e.seeds()
	if seed < 0 {
		return corrupt("seed source produced negative seed %d", seed)
	}
	return e.startRound(st, st.Game.RoundNumber+1, nextSeat(st.Game.Dealer), seed, events)
}

// startRound shuffles, deals, reveals trump and parks the rest as the exchange pool. A dealt
// five-of-one-suit hand resolves at once.
func (e *Engine) startRound(st *State, number, dealer int, seed int64, events *[]Event) error {
	deck := cards.NewStandardDeck()
	if err := deck.ShuffleSeed(seed); err != nil {
		return rules.Invalid("%v", err)
	}
	hands, err := cards.Deal(deck, SeatCount, HandSize)
	if err != nil {
		return corrupt("dealing round %d: %v", number, err)
	}
	trump, err := deck.Draw()
	if err != nil {
		return corrupt("revealing trump for round %d: %v", number, err)
	}

	r := &Round{
		Number:        number,
		Dealer:        dealer,
		Seed:          seed,
		RemainingDeck: deck.DrawAll(),
		CurrentTrick:  []rules.Play{},
		Leader:        leftOfDealer(dealer),
		TrickNumber:   1,
		PassedPlayers: []int{},
		Boys:          map[int]map[JackColor]BoysPair{},
	}
	copy(r.Hands[:], hands)

	st.Round = r
	st.Game.Phase = PhaseExchange
	st.Game.Dealer = dealer
	st.Game.CurrentPlayer = leftOfDealer(dealer)
	st.Game.RoundNumber = number
	st.Game.TrumpCard = trump

	e.log.WithFields(logrus.Fields{
		"game":   st.Game.ID,
		"round":  number,
		"dealer": dealer,
		"seed":   seed,
		"trump":  trump.String(),
	}).Debug("round dealt")

	if seat, ok := rules.PriorityFiveOfOneSuit(r.Hands[:], dealer, SeatCount); ok {
		return e.resolveFiveSameSuit(st, seat, events)
	}
	return nil
}
