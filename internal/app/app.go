// Package app wires configuration into a ready-to-run training session for
// the command line tools.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/GhostChaseRL/internal/agent"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/config"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/experience"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/game"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/game/events"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/game/events/subscribers"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/training"
)

// ParseLevel maps a config level name to a zerolog level, defaulting to info
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger builds the process logger. format is console or json.
func NewLogger(w io.Writer, level, format string) zerolog.Logger {
	zerolog.SetGlobalLevel(ParseLevel(level))
	if format == "json" {
		return zerolog.New(w).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
}

// Session bundles one environment, agent and trainer
type Session struct {
	Seed      int64
	Env       *game.Environment
	Agent     *agent.Agent
	Trainer   *training.Trainer
	Collector *experience.Collector // nil when experience collection is disabled
	Bus       *events.EventBus
}

// NewSession builds a session from cfg. A zero training seed is replaced by
// the clock; the agent draws from seed+1.
func NewSession(cfg *config.Config, logger zerolog.Logger) (*Session, error) {
	seed := cfg.Training.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	bus := events.NewEventBusWithLogger(logger)
	eventLogger := subscribers.NewLoggerSubscriber("event_logger", logger, zerolog.DebugLevel)
	eventLogger.SetEventFilter([]string{
		events.TypeEpisodeEnded,
		events.TypePlacementExhausted,
	})
	bus.Subscribe(eventLogger)

	env, err := game.New(cfg.GameConfig(), rand.New(rand.NewSource(seed)), logger, bus)
	if err != nil {
		return nil, fmt.Errorf("create environment: %w", err)
	}
	ag, err := agent.New(cfg.AgentConfig(), rand.New(rand.NewSource(seed+1)))
	if err != nil {
		return nil, fmt.Errorf("create agent: %w", err)
	}

	s := &Session{Seed: seed, Env: env, Agent: ag, Bus: bus}

	var recorder experience.Recorder
	if cfg.Experience.Enabled {
		pc := cfg.PersistenceConfig()
		persistence, err := experience.NewPersistenceLayer(pc, logger)
		if err != nil {
			return nil, fmt.Errorf("create experience persistence: %w", err)
		}
		s.Collector = experience.NewCollector(pc.BatchSize, persistence, logger)
		recorder = s.Collector
	}

	trainer, err := training.NewTrainer(cfg.TrainingConfig(), env, ag, recorder, logger)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("create trainer: %w", err), s.Close(context.Background()))
	}
	s.Trainer = trainer
	return s, nil
}

// Close flushes and closes the experience collector, if any
func (s *Session) Close(ctx context.Context) error {
	if s.Collector == nil {
		return nil
	}
	return s.Collector.Close(ctx)
}
