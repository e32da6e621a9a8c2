package training

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/GhostChaseRL/internal/agent"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/experience"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/game"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/game/core"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/game/states"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/testutil"
)

func newTestPair(t *testing.T, seed int64) (*game.Environment, *agent.Agent) {
	t.Helper()
	cfg := game.DefaultConfig()
	cfg.MaxSteps = 80

	env, err := game.New(cfg, testutil.NewTestRNG(seed), zerolog.Nop(), nil)
	require.NoError(t, err)
	ag, err := agent.New(agent.DefaultConfig(), testutil.NewTestRNG(seed+1))
	require.NoError(t, err)
	return env, ag
}

type countingRecorder struct {
	transitions []experience.Transition
	ended       []string
}

func (r *countingRecorder) Record(t experience.Transition) { r.transitions = append(r.transitions, t) }
func (r *countingRecorder) EndEpisode(id string)           { r.ended = append(r.ended, id) }

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"Defaults", func(*Config) {}, true},
		{"NegativeEpisodes", func(c *Config) { c.Episodes = -1 }, false},
		{"NegativeLogEvery", func(c *Config) { c.LogEvery = -5 }, false},
		{"ZeroDecay", func(c *Config) { c.EpsilonDecay = 0 }, false},
		{"MinEpsilonAboveOne", func(c *Config) { c.MinEpsilon = 2 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if tt.ok {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}

func TestTrainer_Run(t *testing.T) {
	env, ag := newTestPair(t, 10)
	recorder := &countingRecorder{}

	cfg := DefaultConfig()
	cfg.Episodes = 30
	cfg.LogEvery = 10
	trainer, err := NewTrainer(cfg, env, ag, recorder, zerolog.Nop())
	require.NoError(t, err)
	assert.NotEmpty(t, trainer.RunID())

	history, err := trainer.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, history, cfg.Episodes)

	totalSteps := 0
	prevEpsilon := agent.DefaultEpsilon
	for i, stats := range history {
		assert.Equal(t, i, stats.Episode)
		assert.NotEmpty(t, stats.EpisodeID)
		assert.Contains(t, []string{states.OutcomeWon, states.OutcomeCaught, states.OutcomeTimeout}, stats.Outcome)
		assert.False(t, math.IsNaN(stats.TotalReward))
		assert.LessOrEqual(t, stats.Steps, 80)
		assert.Less(t, stats.Epsilon, prevEpsilon)
		prevEpsilon = stats.Epsilon
		totalSteps += stats.Steps
	}
	assert.InDelta(t, agent.DefaultEpsilon*math.Pow(agent.DefaultEpsilonDecay, 30), ag.Epsilon(), 1e-12)

	require.Len(t, recorder.transitions, totalSteps)
	require.Len(t, recorder.ended, cfg.Episodes)
	last := recorder.transitions[len(recorder.transitions)-1]
	assert.True(t, last.Done)
	assert.Equal(t, trainer.RunID(), last.RunID)
	assert.Equal(t, history[len(history)-1].EpisodeID, last.EpisodeID)

	snap := trainer.Snapshot()
	assert.Equal(t, cfg.Episodes, snap.EpisodesCompleted)
	assert.Equal(t, 1.0, snap.Fraction())
	outcomes := 0
	for _, n := range snap.Outcomes {
		outcomes += n
	}
	assert.Equal(t, cfg.Episodes, outcomes)
}

func TestTrainer_ProgressLog(t *testing.T) {
	env, ag := newTestPair(t, 12)
	var buf bytes.Buffer

	cfg := DefaultConfig()
	cfg.Episodes = 5
	cfg.LogEvery = 2
	trainer, err := NewTrainer(cfg, env, ag, nil, zerolog.New(&buf))
	require.NoError(t, err)
	history, err := trainer.Run(context.Background())
	require.NoError(t, err)

	var progress []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		if _, ok := entry["episode"]; ok {
			progress = append(progress, entry)
		}
	}

	require.Len(t, progress, 3, "episodes 0, 2 and 4")
	for i, entry := range progress {
		ep := i * 2
		assert.Equal(t, float64(ep), entry["episode"])
		msg, _ := entry["message"].(string)
		assert.True(t, strings.HasPrefix(msg, "Episode 000"+string(rune('0'+ep))+" | Score: "), "got %q", msg)
		assert.Contains(t, msg, "| Epsilon: ")
		assert.Equal(t, float64(history[ep].Score), entry["score"])
	}
}

func TestTrainer_Cancelled(t *testing.T) {
	env, ag := newTestPair(t, 1)
	trainer, err := NewTrainer(DefaultConfig(), env, ag, nil, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	history, err := trainer.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, history)
	assert.Equal(t, agent.DefaultEpsilon, ag.Epsilon())
}

func TestTrainer_Deterministic(t *testing.T) {
	run := func() []EpisodeStats {
		env, ag := newTestPair(t, 33)
		cfg := DefaultConfig()
		cfg.Episodes = 25
		trainer, err := NewTrainer(cfg, env, ag, nil, zerolog.Nop())
		require.NoError(t, err)
		history, err := trainer.Run(context.Background())
		require.NoError(t, err)
		return history
	}

	a, b := run(), run()
	require.Len(t, b, len(a))
	for i := range a {
		assert.Equal(t, a[i].Score, b[i].Score, "episode %d", i)
		assert.Equal(t, a[i].Steps, b[i].Steps, "episode %d", i)
		assert.Equal(t, a[i].TotalReward, b[i].TotalReward, "episode %d", i)
		assert.Equal(t, a[i].Outcome, b[i].Outcome, "episode %d", i)
	}
}

type failingEnv struct{}

func (f *failingEnv) Reset() game.Observation { return game.Observation{} }
func (f *failingEnv) Step(core.Action) (game.Observation, float64, bool, error) {
	return game.Observation{}, 0, false, core.ErrNotReset
}
func (f *failingEnv) Score() int        { return 0 }
func (f *failingEnv) Steps() int        { return 0 }
func (f *failingEnv) EpisodeID() string { return "broken" }
func (f *failingEnv) Outcome() string   { return "" }

func TestTrainer_StepError(t *testing.T) {
	_, ag := newTestPair(t, 1)
	trainer, err := NewTrainer(DefaultConfig(), &failingEnv{}, ag, nil, zerolog.Nop())
	require.NoError(t, err)

	_, err = trainer.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrNotReset))
}

func TestNewTrainer_InvalidConfig(t *testing.T) {
	env, ag := newTestPair(t, 1)
	cfg := DefaultConfig()
	cfg.EpsilonDecay = 1.5
	_, err := NewTrainer(cfg, env, ag, nil, zerolog.Nop())
	assert.Error(t, err)
}

func TestEvaluate(t *testing.T) {
	env, ag := newTestPair(t, 21)
	cfg := DefaultConfig()
	cfg.Episodes = 50
	trainer, err := NewTrainer(cfg, env, ag, nil, zerolog.Nop())
	require.NoError(t, err)
	_, err = trainer.Run(context.Background())
	require.NoError(t, err)

	epsilon := ag.Epsilon()
	result, err := Evaluate(context.Background(), env, ag, 10)
	require.NoError(t, err)

	assert.Equal(t, 10, result.Episodes)
	assert.Len(t, result.FinalScores, 10)
	assert.Equal(t, 10, result.Wins+result.Catches+result.Timeouts)
	assert.GreaterOrEqual(t, result.MeanScore, 0.0)
	assert.LessOrEqual(t, result.MeanSteps, 80.0)
	assert.Equal(t, epsilon, ag.Epsilon(), "evaluation must not decay epsilon")
	assert.GreaterOrEqual(t, result.WinRate(), 0.0)

	empty, err := Evaluate(context.Background(), env, ag, 0)
	require.NoError(t, err)
	assert.Zero(t, empty.Episodes)
	assert.Zero(t, empty.WinRate())
}

func TestProgress_Window(t *testing.T) {
	p := Progress{TotalEpisodes: 200, Outcomes: map[string]int{}}
	for i := 0; i < 150; i++ {
		p.observe(EpisodeStats{Score: i % 2, TotalReward: 1, Outcome: states.OutcomeTimeout})
	}

	assert.Equal(t, 150, p.EpisodesCompleted)
	assert.Len(t, p.recentScores, recentWindow)
	assert.InDelta(t, 0.5, p.RecentMeanScore, 1e-9)
	assert.InDelta(t, 1.0, p.RecentMeanReward, 1e-9)
	assert.Equal(t, 1, p.BestScore)
	assert.InDelta(t, 0.75, p.Fraction(), 1e-9)

	c := p.clone()
	c.Outcomes[states.OutcomeWon] = 3
	assert.NotContains(t, p.Outcomes, states.OutcomeWon)
}
