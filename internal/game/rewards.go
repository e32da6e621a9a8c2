package game

import (
	"fmt"

	"github.com/mitchelldurbincs/GhostChaseRL/internal/common"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/game/states"
)

// RewardConfig defines the reward components of a step
type RewardConfig struct {
	Step   float64 `mapstructure:"step"`
	Food   float64 `mapstructure:"food"`
	Caught float64 `mapstructure:"caught"`
	Win    float64 `mapstructure:"win"`
}

// DefaultRewardConfig returns the stock reward values
func DefaultRewardConfig() RewardConfig {
	return RewardConfig{
		Step:   DefaultStepReward,
		Food:   DefaultFoodReward,
		Caught: DefaultCaughtReward,
		Win:    DefaultWinReward,
	}
}

// Validate rejects NaN and infinite components
func (r RewardConfig) Validate() error {
	components := []struct {
		name  string
		value float64
	}{
		{"step", r.Step},
		{"food", r.Food},
		{"caught", r.Caught},
		{"win", r.Win},
	}
	for _, c := range components {
		if !common.IsFinite(c.value) {
			return fmt.Errorf("reward %s must be finite, got %v", c.name, c.value)
		}
	}
	return nil
}

// StepOutcome records what happened during one step
type StepOutcome struct {
	AteFood  bool
	Caught   bool
	Won      bool
	TimedOut bool
}

// Done reports whether the step ended the episode
func (o StepOutcome) Done() bool {
	return o.Caught || o.Won || o.TimedOut
}

// Label names the terminal cause. Caught takes precedence over won, won over timeout.
func (o StepOutcome) Label() string {
	switch {
	case o.Caught:
		return states.OutcomeCaught
	case o.Won:
		return states.OutcomeWon
	case o.TimedOut:
		return states.OutcomeTimeout
	default:
		return states.OutcomeNone
	}
}

// Reward sums the step cost and every event that fired
func (r RewardConfig) Reward(o StepOutcome) float64 {
	reward := r.Step
	if o.AteFood {
		reward += r.Food
	}
	if o.Caught {
		reward += r.Caught
	}
	if o.Won {
		reward += r.Win
	}
	return reward
}
