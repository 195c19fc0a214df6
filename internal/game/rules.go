// internal/game/rules.go
package game

import (
	"fmt"

	"github.com/jason-s-yu/skyjo/internal/engine"
)

// HouseRules defines the table options chosen before a game starts.
type HouseRules struct {
	PlayerCount          int  `json:"playerCount"`          // number of seats, 2-8
	ReshuffleOnEmptyDeck bool `json:"reshuffleOnEmptyDeck"` // recycle the discard pile when the draw pile runs out
}

// DefaultHouseRules returns the rules a new game uses.
func DefaultHouseRules() HouseRules {
	return HouseRules{
		PlayerCount:          4,
		ReshuffleOnEmptyDeck: engine.DefaultRules().ReshuffleOnEmptyDeck,
	}
}

// Update will update the house rules with the new rules provided.
// If a rule is not set or defined, it will be ignored, and the old value will persist.
func (rules *HouseRules) Update(newRules map[string]interface{}) error {
	updated := *rules

	if val, exists := newRules["reshuffleOnEmptyDeck"]; exists && val != nil {
		b, ok := val.(bool)
		if !ok {
			return fmt.Errorf("invalid type for reshuffleOnEmptyDeck")
		}
		updated.ReshuffleOnEmptyDeck = b
	}

	if val, exists := newRules["playerCount"]; exists && val != nil {
		// JSON numbers decode as float64
		var n int
		switch v := val.(type) {
		case float64:
			if v != float64(int(v)) {
				return fmt.Errorf("playerCount must be a whole number")
			}
			n = int(v)
		case int:
			n = v
		default:
			return fmt.Errorf("invalid type for playerCount")
		}
		updated.PlayerCount = n
	}

	if err := updated.Validate(); err != nil {
		return err
	}
	*rules = updated
	return nil
}

// Validate checks the ranges of every rule.
func (rules HouseRules) Validate() error {
	if rules.PlayerCount < engine.MinPlayers || rules.PlayerCount > engine.MaxPlayers {
		return fmt.Errorf("playerCount must be between %d and %d", engine.MinPlayers, engine.MaxPlayers)
	}
	return nil
}

// ParseRules converts a map of rules to a HouseRules struct. It will ensure the types are valid.
func ParseRules(rules map[string]interface{}, current HouseRules) (HouseRules, error) {
	houseRules := current
	err := houseRules.Update(rules)
	return houseRules, err
}

func (rules HouseRules) engineRules() engine.Rules {
	return engine.Rules{ReshuffleOnEmptyDeck: rules.ReshuffleOnEmptyDeck}
}
