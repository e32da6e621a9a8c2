// Package training drives episodes of the ghost chase environment through a
// learning agent and keeps per-episode statistics.
package training

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/GhostChaseRL/internal/agent"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/experience"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/game"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/game/core"
)

// Environment is the part of game.Environment the trainer drives
type Environment interface {
	Reset() game.Observation
	Step(action core.Action) (game.Observation, float64, bool, error)
	Score() int
	Steps() int
	EpisodeID() string
	Outcome() string
}

// Learner is the part of agent.Agent the trainer drives
type Learner interface {
	ChooseAction(obs game.Observation) core.Action
	Greedy(obs game.Observation) core.Action
	Update(obs game.Observation, action core.Action, reward float64, next game.Observation) error
	DecayEpsilon(rate, floor float64)
	Epsilon() float64
}

// Default training settings
const (
	DefaultEpisodes = 3000
	DefaultLogEvery = 200
)

// Config controls a training run
type Config struct {
	Episodes     int
	LogEvery     int // Log progress every LogEvery episodes; 0 disables
	EpsilonDecay float64
	MinEpsilon   float64
}

// DefaultConfig returns the stock training settings
func DefaultConfig() Config {
	return Config{
		Episodes:     DefaultEpisodes,
		LogEvery:     DefaultLogEvery,
		EpsilonDecay: agent.DefaultEpsilonDecay,
		MinEpsilon:   agent.DefaultMinEpsilon,
	}
}

// Validate checks the training settings
func (c Config) Validate() error {
	if c.Episodes < 0 {
		return fmt.Errorf("episodes must be non-negative, got %d", c.Episodes)
	}
	if c.LogEvery < 0 {
		return fmt.Errorf("log every must be non-negative, got %d", c.LogEvery)
	}
	if c.EpsilonDecay <= 0 || c.EpsilonDecay > 1 {
		return fmt.Errorf("epsilon decay must be in (0,1], got %v", c.EpsilonDecay)
	}
	if c.MinEpsilon < 0 || c.MinEpsilon > 1 {
		return fmt.Errorf("min epsilon must be in [0,1], got %v", c.MinEpsilon)
	}
	return nil
}

// EpisodeStats summarizes one finished episode
type EpisodeStats struct {
	Episode     int
	EpisodeID   string
	Score       int
	Steps       int
	TotalReward float64
	Epsilon     float64 // Exploration rate after decay
	Outcome     string
	Duration    time.Duration
}

// Trainer runs Q-learning episodes and records their statistics
type Trainer struct {
	cfg      Config
	env      Environment
	learner  Learner
	recorder experience.Recorder
	logger   zerolog.Logger
	runID    string

	mu       sync.RWMutex
	history  []EpisodeStats
	progress Progress
}

// NewTrainer creates a trainer. recorder may be nil.
func NewTrainer(cfg Config, env Environment, learner Learner, recorder experience.Recorder, logger zerolog.Logger) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid training config: %w", err)
	}

	runID := uuid.NewString()
	return &Trainer{
		cfg:      cfg,
		env:      env,
		learner:  learner,
		recorder: recorder,
		logger:   logger.With().Str("component", "Trainer").Str("run_id", runID).Logger(),
		runID:    runID,
		history:  make([]EpisodeStats, 0, cfg.Episodes),
		progress: Progress{RunID: runID, TotalEpisodes: cfg.Episodes, Outcomes: make(map[string]int)},
	}, nil
}

// RunID identifies this trainer in logs and recorded transitions
func (t *Trainer) RunID() string {
	return t.runID
}

// Run plays cfg.Episodes episodes. Cancellation is checked between episodes;
// the statistics gathered so far are returned with ctx.Err().
func (t *Trainer) Run(ctx context.Context) ([]EpisodeStats, error) {
	start := time.Now()
	t.mu.Lock()
	t.progress.StartedAt = start
	t.mu.Unlock()

	t.logger.Info().
		Int("episodes", t.cfg.Episodes).
		Float64("epsilon", t.learner.Epsilon()).
		Msg("Training started")

	for ep := 0; ep < t.cfg.Episodes; ep++ {
		if err := ctx.Err(); err != nil {
			t.logger.Warn().Err(err).Int("completed", ep).Msg("Training cancelled")
			return t.History(), err
		}

		stats, err := t.RunEpisode(ep)
		if err != nil {
			return t.History(), fmt.Errorf("episode %d: %w", ep, err)
		}

		if t.cfg.LogEvery > 0 && ep%t.cfg.LogEvery == 0 {
			t.logger.Info().
				Int("episode", ep).
				Int("score", stats.Score).
				Float64("total_reward", stats.TotalReward).
				Float64("epsilon", stats.Epsilon).
				Str("outcome", stats.Outcome).
				Msgf("Episode %04d | Score: %03d | Total Reward: %6.1f | Epsilon: %.2f",
					ep, stats.Score, stats.TotalReward, stats.Epsilon)
		}
	}

	t.logger.Info().
		Int("episodes", t.cfg.Episodes).
		Dur("elapsed", time.Since(start)).
		Msg("Training complete")

	return t.History(), nil
}

// RunEpisode plays one learning episode, decays epsilon and records the result
func (t *Trainer) RunEpisode(episode int) (EpisodeStats, error) {
	start := time.Now()
	obs := t.env.Reset()
	episodeID := t.env.EpisodeID()
	total := 0.0

	for {
		action := t.learner.ChooseAction(obs)
		next, reward, done, err := t.env.Step(action)
		if err != nil {
			return EpisodeStats{}, err
		}
		if err := t.learner.Update(obs, action, reward, next); err != nil {
			return EpisodeStats{}, err
		}

		if t.recorder != nil {
			t.recorder.Record(experience.Transition{
				RunID:       t.runID,
				EpisodeID:   episodeID,
				Episode:     episode,
				Step:        t.env.Steps(),
				Observation: obs,
				Action:      action,
				Reward:      reward,
				Next:        next,
				Done:        done,
			})
		}

		obs = next
		total += reward
		if done {
			break
		}
	}

	if t.recorder != nil {
		t.recorder.EndEpisode(episodeID)
	}

	t.learner.DecayEpsilon(t.cfg.EpsilonDecay, t.cfg.MinEpsilon)

	stats := EpisodeStats{
		Episode:     episode,
		EpisodeID:   episodeID,
		Score:       t.env.Score(),
		Steps:       t.env.Steps(),
		TotalReward: total,
		Epsilon:     t.learner.Epsilon(),
		Outcome:     t.env.Outcome(),
		Duration:    time.Since(start),
	}
	t.record(stats)
	return stats, nil
}

func (t *Trainer) record(stats EpisodeStats) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.history = append(t.history, stats)
	t.progress.observe(stats)
}

// History returns a copy of every finished episode
func (t *Trainer) History() []EpisodeStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]EpisodeStats, len(t.history))
	copy(result, t.history)
	return result
}

// Snapshot returns the current progress. It is safe to call from other goroutines.
func (t *Trainer) Snapshot() Progress {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.progress.clone()
}
