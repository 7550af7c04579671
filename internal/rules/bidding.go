package rules

// Bidding rules are an alternate rule variant kept as a standalone extension. The game engine
// runs the exchange / participation / play machine and never calls these.

const (
	// MaxBid is the highest bid a seat may make.
	MaxBid = 9

	// ForbiddenBidSum is the total that all bids together must not reach.
	ForbiddenBidSum = 9
)

// AssertBidValue checks a single bid is within 0..9.
func AssertBidValue(bid int) error {
	if bid < 0 || bid > MaxBid {
		return Invalid("bid must be between 0 and %d, got %d", MaxBid, bid)
	}
	return nil
}

// AssertCompleteBids checks that every seat bid exactly once with a legal value and that the
// total does not equal ForbiddenBidSum.
func AssertCompleteBids(bidsBySeat map[int]int, seatCount int) error {
	if len(bidsBySeat) != seatCount {
		return Violation("expected %d bids, got %d", seatCount, len(bidsBySeat))
	}
	sum := 0
	for i := 0; i < seatCount; i++ {
		bid, ok := bidsBySeat[i]
		if !ok {
			return Violation("missing bid for player %d", i)
		}
		if err := AssertBidValue(bid); err != nil {
			return err
		}
		sum += bid
	}
	if sum == ForbiddenBidSum {
		return Violation("sum of all bids must not equal %d", ForbiddenBidSum)
	}
	return nil
}

// ForbiddenLastBidValue returns the bid the last seat may not make given the first bids' sum,
// or false when no legal bid would complete the forbidden total.
func ForbiddenLastBidValue(sumOfEarlierBids int) (int, bool) {
	forbidden := ForbiddenBidSum - sumOfEarlierBids
	if forbidden < 0 || forbidden > MaxBid {
		return 0, false
	}
	return forbidden, true
}
