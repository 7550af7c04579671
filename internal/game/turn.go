// internal/game/turn.go
package game

// All seat arithmetic lives here so the phase handlers never do their own modular math.

// nextSeat is the seat clockwise of seat.
func nextSeat(seat int) int {
	return (seat + 1) % SeatCount
}

// leftOfDealer is the first seat to act in exchange and choose_to_play.
func leftOfDealer(dealer int) int {
	return nextSeat(dealer)
}

// exchangeOrder lists seats in acting order for a dealer: dealer+1 through dealer.
func exchangeOrder(dealer int) []int {
	order := make([]int, 0, SeatCount)
	for i := 1; i <= SeatCount; i++ {
		order = append(order, (dealer+i)%SeatCount)
	}
	return order
}

// nextActiveSeat is the first seat clockwise of seat that has not passed.
// It returns seat itself when every other seat passed.
func nextActiveSeat(r *Round, seat int) int {
	for i := 1; i <= SeatCount; i++ {
		s := (seat + i) % SeatCount
		if !r.IsPassed(s) {
			return s
		}
	}
	return seat
}

// firstActiveLeftOfDealer opens the first trick of the play phase.
func firstActiveLeftOfDealer(r *Round, dealer int) int {
	return nextActiveSeat(r, dealer)
}

// activeSeats returns seats that did not pass, in seat order.
func activeSeats(r *Round) []int {
	out := make([]int, 0, SeatCount)
	for s := 0; s < SeatCount; s++ {
		if !r.IsPassed(s) {
			out = append(out, s)
		}
	}
	return out
}
