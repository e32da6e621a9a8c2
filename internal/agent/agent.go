// Package agent implements a tabular epsilon-greedy Q-learning agent.
package agent

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mitchelldurbincs/GhostChaseRL/internal/common"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/game"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/game/core"
)

// Default hyperparameters
const (
	DefaultAlpha        = 0.2
	DefaultGamma        = 0.95
	DefaultEpsilon      = 0.5
	DefaultEpsilonDecay = 0.997
	DefaultMinEpsilon   = 0.05
)

// Config holds the learning hyperparameters
type Config struct {
	Alpha   float64 // Learning rate
	Gamma   float64 // Discount factor
	Epsilon float64 // Initial exploration rate
}

// DefaultConfig returns the stock hyperparameters
func DefaultConfig() Config {
	return Config{
		Alpha:   DefaultAlpha,
		Gamma:   DefaultGamma,
		Epsilon: DefaultEpsilon,
	}
}

// Validate checks that every hyperparameter lies in [0,1]
func (c Config) Validate() error {
	if !common.InUnitInterval(c.Alpha) {
		return fmt.Errorf("alpha must be in [0,1], got %v", c.Alpha)
	}
	if !common.InUnitInterval(c.Gamma) {
		return fmt.Errorf("gamma must be in [0,1], got %v", c.Gamma)
	}
	if !common.InUnitInterval(c.Epsilon) {
		return fmt.Errorf("epsilon must be in [0,1], got %v", c.Epsilon)
	}
	return nil
}

// Agent learns action values over discretized observations
type Agent struct {
	alpha   float64
	gamma   float64
	epsilon float64
	q       *QTable
	rng     *rand.Rand
}

// New creates an agent with an empty Q-table. A nil rng is replaced by a
// time-seeded one.
func New(cfg Config, rng *rand.Rand) (*Agent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid agent config: %w", err)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Agent{
		alpha:   cfg.Alpha,
		gamma:   cfg.Gamma,
		epsilon: cfg.Epsilon,
		q:       NewQTable(),
		rng:     rng,
	}, nil
}

// ChooseAction picks a uniformly random action with probability epsilon and
// the greedy action otherwise.
func (a *Agent) ChooseAction(obs game.Observation) core.Action {
	if a.rng.Float64() < a.epsilon {
		return core.Action(a.rng.Intn(core.NumActions))
	}
	return a.Greedy(obs)
}

// Greedy returns the highest-valued action for obs without exploring.
// Unseen observations get a zero row and yield ActionUp.
func (a *Agent) Greedy(obs game.Observation) core.Action {
	return a.q.Row(obs).Argmax()
}

// Update applies the one-step Q-learning rule
//
//	Q[s][a] += alpha * (r + gamma*max Q[s'] - Q[s][a])
//
// Terminal transitions are not special-cased: the next observation is
// bootstrapped like any other.
func (a *Agent) Update(obs game.Observation, action core.Action, reward float64, next game.Observation) error {
	if err := action.Validate(); err != nil {
		return err
	}
	if !common.IsFinite(reward) {
		return fmt.Errorf("reward %v: %w", reward, core.ErrNonFiniteReward)
	}

	target := reward + a.gamma*a.q.Row(next).Max()

	row := a.q.Row(obs)
	row[action] += a.alpha * (target - row[action])
	return nil
}

// DecayEpsilon multiplies epsilon by rate without going below floor
func (a *Agent) DecayEpsilon(rate, floor float64) {
	a.epsilon = max(floor, a.epsilon*rate)
}

// Epsilon returns the current exploration rate
func (a *Agent) Epsilon() float64 {
	return a.epsilon
}

// Values returns a copy of the Q-row for obs. Unseen observations read as zeros.
func (a *Agent) Values(obs game.Observation) Values {
	values, _ := a.q.Peek(obs)
	return values
}

// Inspect returns the Q-row for obs and whether obs has been visited
func (a *Agent) Inspect(obs game.Observation) ([core.NumActions]float64, bool) {
	values, ok := a.q.Peek(obs)
	return values, ok
}

// Table exposes the underlying Q-table
func (a *Agent) Table() *QTable {
	return a.q
}
