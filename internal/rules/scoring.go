// internal/rules/scoring.go
package rules

const (
	// NoTricksPenalty is added to the pile of a seat that played a round and took nothing.
	NoTricksPenalty = 5

	// MaltzyPoints is the pile reduction per maltzy unit.
	MaltzyPoints = 5

	// ImmediateWinThreshold is the largest pile for which a forced declaration can apply.
	ImmediateWinThreshold = 5
)

// ApplyRoundScoring computes every seat's new pile at round end:
// pile - tricks, +5 for a seat that played and took no trick, -5 per maltzy, never below 0.
func ApplyRoundScoring(tricksWon, maltzyCounts, piles, passedSeats []int, seatCount int) ([]int, error) {
	if len(tricksWon) != seatCount {
		return nil, Invalid("expected %d trick counts, got %d", seatCount, len(tricksWon))
	}
	if len(maltzyCounts) != seatCount {
		return nil, Invalid("expected %d maltzy counts, got %d", seatCount, len(maltzyCounts))
	}
	if len(piles) != seatCount {
		return nil, Invalid("expected %d pile values, got %d", seatCount, len(piles))
	}

	passed := make(map[int]bool, len(passedSeats))
	for _, s := range passedSeats {
		passed[s] = true
	}

	out := make([]int, seatCount)
	for i := 0; i < seatCount; i++ {
		p := piles[i] - tricksWon[i]
		if tricksWon[i] == 0 && !passed[i] {
			p += NoTricksPenalty
		}
		p -= maltzyCounts[i] * MaltzyPoints
		if p < 0 {
			p = 0
		}
		out[i] = p
	}
	return out, nil
}

// IsGameEnd reports whether any pile has reached zero.
func IsGameEnd(piles []int) bool {
	for _, p := range piles {
		if p <= 0 {
			return true
		}
	}
	return false
}

// WinnerIndex returns the seat with the lowest pile. Ties go to the seat that reached the value
// in the later round (reachedRound[i]); remaining ties, or a nil reachedRound, go to the lowest
// seat index. piles must not be empty.
func WinnerIndex(piles []int, reachedRound []int) int {
	winner := 0
	for i := 1; i < len(piles); i++ {
		switch {
		case piles[i] < piles[winner]:
			winner = i
		case piles[i] == piles[winner] && roundAt(reachedRound, i) > roundAt(reachedRound, winner):
			winner = i
		}
	}
	return winner
}

func roundAt(rounds []int, i int) int {
	if i < len(rounds) {
		return rounds[i]
	}
	return -1
}

// MustDeclareImmediateWin reports whether a seat's remaining pile exactly matches the tricks
// left in the round. The engine only surfaces this; it never applies it.
func MustDeclareImmediateWin(pile, tricksSoFar, maxTricks int) bool {
	if pile > ImmediateWinThreshold {
		return false
	}
	return pile == maxTricks-tricksSoFar
}
