package states

import (
	"time"

	"github.com/rs/zerolog"
)

// Episode outcomes recorded when an episode becomes terminal
const (
	OutcomeNone    = ""
	OutcomeCaught  = "caught"
	OutcomeWon     = "won"
	OutcomeTimeout = "timeout"
)

// EpisodeContext provides episode information to states
type EpisodeContext struct {
	// EpisodeID uniquely identifies the current episode
	EpisodeID string

	// Logger for state-specific logging
	Logger zerolog.Logger

	// Episodes counts resets on this environment
	Episodes int

	// StartTime is when the current episode entered PhaseRunning
	StartTime time.Time

	// EndTime is when the current episode entered PhaseTerminal
	EndTime time.Time

	// Outcome is set before entering PhaseTerminal
	Outcome string
}

// NewEpisodeContext creates a new episode context
func NewEpisodeContext(logger zerolog.Logger) *EpisodeContext {
	return &EpisodeContext{Logger: logger}
}

// GetElapsedTime returns the wall time the current episode has been running
func (ec *EpisodeContext) GetElapsedTime() time.Duration {
	if ec.StartTime.IsZero() {
		return 0
	}
	if !ec.EndTime.IsZero() {
		return ec.EndTime.Sub(ec.StartTime)
	}
	return time.Since(ec.StartTime)
}
