package states

import (
	"fmt"
	"time"
)

// FreshState is the phase of an environment that has never been reset
type FreshState struct{}

func NewFreshState() State {
	return &FreshState{}
}

func (s *FreshState) Phase() EpisodePhase {
	return PhaseFresh
}

func (s *FreshState) Enter(ctx *EpisodeContext) error {
	ctx.Logger.Debug().Msg("Environment created")
	return nil
}

func (s *FreshState) Exit(ctx *EpisodeContext) error {
	return nil
}

func (s *FreshState) Validate(ctx *EpisodeContext) error {
	return nil
}

// RunningState represents an episode in progress
type RunningState struct{}

func NewRunningState() State {
	return &RunningState{}
}

func (s *RunningState) Phase() EpisodePhase {
	return PhaseRunning
}

func (s *RunningState) Enter(ctx *EpisodeContext) error {
	ctx.Episodes++
	ctx.StartTime = time.Now()
	ctx.EndTime = time.Time{}
	ctx.Outcome = OutcomeNone
	ctx.Logger.Debug().
		Str("episode_id", ctx.EpisodeID).
		Int("episode", ctx.Episodes).
		Msg("Episode started")
	return nil
}

func (s *RunningState) Exit(ctx *EpisodeContext) error {
	return nil
}

func (s *RunningState) Validate(ctx *EpisodeContext) error {
	if ctx.EpisodeID == "" {
		return fmt.Errorf("running state requires an episode id")
	}
	return nil
}

// TerminalState represents a finished episode
type TerminalState struct{}

func NewTerminalState() State {
	return &TerminalState{}
}

func (s *TerminalState) Phase() EpisodePhase {
	return PhaseTerminal
}

func (s *TerminalState) Enter(ctx *EpisodeContext) error {
	ctx.EndTime = time.Now()
	ctx.Logger.Debug().
		Str("episode_id", ctx.EpisodeID).
		Str("outcome", ctx.Outcome).
		Dur("elapsed", ctx.GetElapsedTime()).
		Msg("Episode ended")
	return nil
}

func (s *TerminalState) Exit(ctx *EpisodeContext) error {
	return nil
}

func (s *TerminalState) Validate(ctx *EpisodeContext) error {
	if ctx.Outcome == OutcomeNone {
		return fmt.Errorf("terminal state requires an outcome")
	}
	return nil
}
