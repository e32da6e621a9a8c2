package states

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestStateImplementations(t *testing.T) {
	tests := []struct {
		state State
		phase EpisodePhase
	}{
		{NewFreshState(), PhaseFresh},
		{NewRunningState(), PhaseRunning},
		{NewTerminalState(), PhaseTerminal},
	}

	for _, tt := range tests {
		t.Run(tt.phase.String(), func(t *testing.T) {
			ctx := NewEpisodeContext(zerolog.Nop())
			ctx.EpisodeID = "ep"
			ctx.Outcome = OutcomeTimeout

			assert.Equal(t, tt.phase, tt.state.Phase())
			assert.NoError(t, tt.state.Validate(ctx))
			assert.NoError(t, tt.state.Enter(ctx))
			assert.NoError(t, tt.state.Exit(ctx))
		})
	}
}

func TestRunningStateClearsEpisodeData(t *testing.T) {
	ctx := NewEpisodeContext(zerolog.Nop())
	ctx.EpisodeID = "ep"
	ctx.Outcome = OutcomeWon
	ctx.EndTime = time.Now()

	assert.NoError(t, NewRunningState().Enter(ctx))

	assert.Equal(t, OutcomeNone, ctx.Outcome)
	assert.True(t, ctx.EndTime.IsZero())
	assert.False(t, ctx.StartTime.IsZero())
	assert.Equal(t, 1, ctx.Episodes)
}
