// internal/game/rules.go
package game

import "fmt"

// HouseRules are the per-game knobs a create request may override.
type HouseRules struct {
	StartingPile int `json:"startingPile"` // pile every seat starts with; default 20
	HumanSeats   int `json:"humanSeats"`   // seats [0, HumanSeats) are human, the rest AI; default 1
}

// DefaultHouseRules mirrors the standard table: one human against three AI seats, piles of 20.
func DefaultHouseRules() HouseRules {
	return HouseRules{
		StartingPile: 20,
		HumanSeats:   1,
	}
}

// Update will update the house rules with the new rules provided.
// If a rule is not set or defined, it will be ignored, and the old value will persist.
func (rules *HouseRules) Update(newRules map[string]interface{}) error {
	assignInt := func(field *int, key string, minVal, maxVal int) error {
		val, exists := newRules[key]
		if !exists || val == nil {
			return nil
		}
		var n int
		switch v := val.(type) {
		case float64:
			// JSON numbers decode as float64
			if v != float64(int(v)) {
				return fmt.Errorf("%s must be a whole number", key)
			}
			n = int(v)
		case int:
			n = v
		default:
			return fmt.Errorf("invalid type for %s", key)
		}
		if n < minVal || n > maxVal {
			return fmt.Errorf("%s must be between %d and %d", key, minVal, maxVal)
		}
		*field = n
		return nil
	}

	if err := assignInt(&rules.StartingPile, "startingPile", 1, 1000); err != nil {
		return err
	}
	if err := assignInt(&rules.HumanSeats, "humanSeats", 0, SeatCount); err != nil {
		return err
	}
	return nil
}

// ParseRules converts a map of rules to a HouseRules struct, starting from current.
func ParseRules(rules map[string]interface{}, current HouseRules) (HouseRules, error) {
	houseRules := current
	err := houseRules.Update(rules)
	return houseRules, err
}

func (rules HouseRules) validate() error {
	if rules.StartingPile < 1 {
		return fmt.Errorf("startingPile must be positive, got %d", rules.StartingPile)
	}
	if rules.HumanSeats < 0 || rules.HumanSeats > SeatCount {
		return fmt.Errorf("humanSeats must be between 0 and %d, got %d", SeatCount, rules.HumanSeats)
	}
	return nil
}

// seatType decides a seat's controller from the rules.
func (rules HouseRules) seatType(seat int) PlayerType {
	if seat < rules.HumanSeats {
		return PlayerHuman
	}
	return PlayerAI
}
