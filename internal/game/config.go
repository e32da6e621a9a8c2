package game

import (
	"fmt"

	"github.com/mitchelldurbincs/GhostChaseRL/internal/common"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/game/core"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/game/placement"
)

// Config holds the rules of a single environment
type Config struct {
	GridSize    int
	NumFoods    int
	MinDistance int // Minimum Manhattan distance enforced at placement time
	WinScore    int
	MaxSteps    int

	// MaxPlacementAttempts bounds rejection sampling per placement call
	MaxPlacementAttempts int

	PursuitProbability float64
	AxisProbability    float64

	Rewards RewardConfig
}

// DefaultConfig returns the stock 15x15 game
func DefaultConfig() Config {
	return Config{
		GridSize:             DefaultGridSize,
		NumFoods:             DefaultNumFoods,
		MinDistance:          DefaultMinDistance,
		WinScore:             DefaultWinScore,
		MaxSteps:             DefaultMaxSteps,
		MaxPlacementAttempts: placement.DefaultMaxAttempts,
		PursuitProbability:   DefaultPursuitProbability,
		AxisProbability:      DefaultAxisProbability,
		Rewards:              DefaultRewardConfig(),
	}
}

// Validate checks that the configuration describes a playable game
func (c Config) Validate() error {
	if c.GridSize < 1 {
		return fmt.Errorf("grid size %d: %w", c.GridSize, core.ErrInvalidGridSize)
	}
	if c.NumFoods < 0 {
		return fmt.Errorf("num foods must be non-negative, got %d", c.NumFoods)
	}
	if c.MinDistance < 0 {
		return fmt.Errorf("min distance must be non-negative, got %d", c.MinDistance)
	}
	if c.WinScore < 1 {
		return fmt.Errorf("win score must be positive, got %d", c.WinScore)
	}
	if c.MaxSteps < 1 {
		return fmt.Errorf("max steps must be positive, got %d", c.MaxSteps)
	}
	if !common.InUnitInterval(c.PursuitProbability) {
		return fmt.Errorf("pursuit probability must be in [0,1], got %v", c.PursuitProbability)
	}
	if !common.InUnitInterval(c.AxisProbability) {
		return fmt.Errorf("axis probability must be in [0,1], got %v", c.AxisProbability)
	}
	return c.Rewards.Validate()
}

func (c Config) placementConfig() placement.Config {
	return placement.Config{
		GridSize:    c.GridSize,
		MinDistance: c.MinDistance,
		MaxAttempts: c.MaxPlacementAttempts,
	}
}
