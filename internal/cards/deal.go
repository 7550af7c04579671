package cards

import "fmt"

// Deal distributes seats*perSeat cards round-robin, one card per seat per pass.
// Whatever remains stays in the deck for the caller (trump reveal, exchange pool).
func Deal(d *Deck, seats, perSeat int) ([][]Card, error) {
	if seats <= 0 {
		return nil, fmt.Errorf("%w: seat count must be positive, got %d", ErrInvalidDeal, seats)
	}
	if perSeat <= 0 {
		return nil, fmt.Errorf("%w: cards per seat must be positive, got %d", ErrInvalidDeal, perSeat)
	}
	total := seats * perSeat
	if d.Len() < total {
		return nil, fmt.Errorf("%w: deck must contain at least %d cards to deal, has %d", ErrInvalidDeal, total, d.Len())
	}

	hands := make([][]Card, seats)
	for i := range hands {
		hands[i] = make([]Card, 0, perSeat)
	}
	for i := 0; i < total; i++ {
		c, err := d.Draw()
		if err != nil {
			return nil, err
		}
		hands[i%seats] = append(hands[i%seats], c)
	}
	return hands, nil
}
