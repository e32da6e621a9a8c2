package game

// Board defaults
const (
	DefaultGridSize    = 15
	DefaultNumFoods    = 3
	DefaultMinDistance = 4
	DefaultWinScore    = 30
	DefaultMaxSteps    = 500
)

// Reward defaults. Rewards of a single step are additive.
const (
	DefaultStepReward   = -0.05
	DefaultFoodReward   = 20.0
	DefaultCaughtReward = -30.0
	DefaultWinReward    = 100.0
)

// Ghost movement
const (
	// DefaultPursuitProbability is the chance per step that the ghost moves toward the player
	DefaultPursuitProbability = 0.3
	// DefaultAxisProbability is the chance a pursuing ghost moves on X when X differs
	DefaultAxisProbability = 0.5
)

// ObservationClip bounds each observation component to [-ObservationClip, ObservationClip]
const ObservationClip = 3

// Entity names used in logs and placement events
const (
	EntityGhost = "ghost"
	EntityFood  = "food"
)
