package agent

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/GhostChaseRL/internal/game"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/game/core"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/testutil"
)

func newTestAgent(t *testing.T, cfg Config, seed int64) *Agent {
	t.Helper()
	a, err := New(cfg, testutil.NewTestRNG(seed))
	require.NoError(t, err)
	return a
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"Defaults", DefaultConfig(), true},
		{"Bounds", Config{Alpha: 1, Gamma: 0, Epsilon: 1}, true},
		{"NegativeAlpha", Config{Alpha: -0.1, Gamma: 0.9, Epsilon: 0.1}, false},
		{"GammaAboveOne", Config{Alpha: 0.1, Gamma: 1.1, Epsilon: 0.1}, false},
		{"NaNEpsilon", Config{Alpha: 0.1, Gamma: 0.9, Epsilon: math.NaN()}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := New(tt.cfg, nil)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.cfg.Epsilon, a.Epsilon())
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestChooseAction_UniformWhenExploring(t *testing.T) {
	a := newTestAgent(t, Config{Alpha: 0.2, Gamma: 0.95, Epsilon: 1}, 42)
	obs := game.Observation{GhostDX: 1}

	// Bias the table so a greedy pick would always be "right"
	a.Table().Row(obs)[core.ActionRight] = 10

	const draws = 10000
	counts := make(map[core.Action]int)
	for i := 0; i < draws; i++ {
		action := a.ChooseAction(obs)
		require.NoError(t, action.Validate())
		counts[action]++
	}

	for _, action := range core.AllActions {
		freq := float64(counts[action]) / draws
		assert.InDelta(t, 0.25, freq, 0.03, "action %s frequency %.3f", action, freq)
	}
}

func TestChooseAction_GreedyWhenNotExploring(t *testing.T) {
	a := newTestAgent(t, Config{Alpha: 0.2, Gamma: 0.95, Epsilon: 0}, 1)
	obs := game.Observation{FoodDX: 2}
	a.Table().Row(obs)[core.ActionLeft] = 3

	for i := 0; i < 100; i++ {
		assert.Equal(t, core.ActionLeft, a.ChooseAction(obs))
	}
}

func TestGreedy_TieBreak(t *testing.T) {
	a := newTestAgent(t, DefaultConfig(), 1)

	assert.Equal(t, core.ActionUp, a.Greedy(game.Observation{}), "unseen observation picks lowest index")
	assert.Equal(t, 1, a.Table().Len(), "Greedy materializes the zero row")

	obs := game.Observation{GhostDY: -1}
	row := a.Table().Row(obs)
	row[core.ActionDown] = 5
	row[core.ActionRight] = 5
	assert.Equal(t, core.ActionDown, a.Greedy(obs))
}

func TestUpdate(t *testing.T) {
	a := newTestAgent(t, Config{Alpha: 0.5, Gamma: 0.9, Epsilon: 0}, 1)
	s := game.Observation{GhostDX: 1, FoodDX: 1}
	next := game.Observation{GhostDX: 2, FoodDX: 0}

	require.NoError(t, a.Update(s, core.ActionRight, 20, next))
	// 0 + 0.5*(20 + 0.9*0 - 0)
	assert.InDelta(t, 10.0, a.Values(s)[core.ActionRight], 1e-12)
	nextRow, seen := a.Table().Peek(next)
	assert.True(t, seen, "next observation gets a zero row")
	assert.Equal(t, Values{}, nextRow)

	a.Table().Row(next)[core.ActionUp] = 4
	require.NoError(t, a.Update(s, core.ActionRight, -1, next))
	// 10 + 0.5*(-1 + 0.9*4 - 10)
	assert.InDelta(t, 6.3, a.Values(s)[core.ActionRight], 1e-12)

	for _, other := range []core.Action{core.ActionUp, core.ActionDown, core.ActionLeft} {
		assert.Zero(t, a.Values(s)[other])
	}
}

func TestRowsMaterializeLazily(t *testing.T) {
	a := newTestAgent(t, Config{Alpha: 0.5, Gamma: 0.9, Epsilon: 0}, 1)
	s := game.Observation{GhostDX: -1}
	next := game.Observation{GhostDX: -2}
	unseen := game.Observation{FoodDY: 3}

	require.NoError(t, a.Update(s, core.ActionUp, 1, next))
	assert.Equal(t, 2, a.Table().Len())

	a.ChooseAction(unseen)
	assert.Equal(t, 3, a.Table().Len())

	a.Values(game.Observation{FoodDX: -3})
	a.Inspect(game.Observation{FoodDX: -3})
	assert.Equal(t, 3, a.Table().Len(), "read-only views do not insert")
}

func TestInspect(t *testing.T) {
	a := newTestAgent(t, Config{Alpha: 0.5, Gamma: 0.9, Epsilon: 0}, 1)
	s := game.Observation{FoodDY: -2}

	_, known := a.Inspect(s)
	assert.False(t, known)
	assert.Equal(t, 0, a.Table().Len(), "inspecting does not insert")

	require.NoError(t, a.Update(s, core.ActionLeft, 4, s))
	values, known := a.Inspect(s)
	assert.True(t, known)
	assert.InDelta(t, 2.0, values[core.ActionLeft], 1e-12)
}

func TestUpdate_Rejects(t *testing.T) {
	a := newTestAgent(t, DefaultConfig(), 1)
	obs := game.Observation{}

	err := a.Update(obs, core.Action(9), 1, obs)
	assert.True(t, errors.Is(err, core.ErrInvalidAction))

	for _, r := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		err := a.Update(obs, core.ActionUp, r, obs)
		assert.True(t, errors.Is(err, core.ErrNonFiniteReward))
	}

	assert.Equal(t, 0, a.Table().Len())
}

func TestUpdate_ValuesStayFinite(t *testing.T) {
	cfg := game.DefaultConfig()
	cfg.MaxSteps = 100
	env, err := game.New(cfg, testutil.NewTestRNG(5), testutil.NopLogger(), nil)
	require.NoError(t, err)
	a := newTestAgent(t, DefaultConfig(), 6)

	for episode := 0; episode < 200; episode++ {
		obs := env.Reset()
		for {
			action := a.ChooseAction(obs)
			next, reward, done, err := env.Step(action)
			require.NoError(t, err)
			require.NoError(t, a.Update(obs, action, reward, next))
			obs = next
			if done {
				break
			}
		}
		a.DecayEpsilon(DefaultEpsilonDecay, DefaultMinEpsilon)
	}

	require.Positive(t, a.Table().Len())
	a.Table().Range(func(obs game.Observation, values Values) bool {
		for _, q := range values {
			assert.False(t, math.IsNaN(q) || math.IsInf(q, 0), "obs %s has non-finite value", obs)
		}
		return true
	})
}

func TestDecayEpsilon(t *testing.T) {
	a := newTestAgent(t, Config{Alpha: 0.2, Gamma: 0.95, Epsilon: 0.5}, 1)

	a.DecayEpsilon(0.5, 0.05)
	assert.InDelta(t, 0.25, a.Epsilon(), 1e-12)

	for i := 0; i < 100; i++ {
		a.DecayEpsilon(0.5, 0.05)
		assert.GreaterOrEqual(t, a.Epsilon(), 0.05)
	}
	assert.Equal(t, 0.05, a.Epsilon())
}

func TestValues_MaxArgmax(t *testing.T) {
	tests := []struct {
		name   string
		values Values
		max    float64
		argmax core.Action
	}{
		{"Zeros", Values{}, 0, core.ActionUp},
		{"Single", Values{0, 0, 3, 0}, 3, core.ActionLeft},
		{"Negative", Values{-4, -1, -2, -1}, -1, core.ActionDown},
		{"Last", Values{1, 2, 3, 4}, 4, core.ActionRight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.max, tt.values.Max())
			assert.Equal(t, tt.argmax, tt.values.Argmax())
		})
	}
}
