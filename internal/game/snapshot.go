package game

import (
	"slices"

	"github.com/mitchelldurbincs/GhostChaseRL/internal/game/core"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/game/states"
)

// Snapshot is a read-only copy of the environment for renderers
type Snapshot struct {
	GridSize int
	WinScore int
	MaxSteps int

	Player   core.Coordinate
	Ghost    core.Coordinate
	HasGhost bool
	Foods    []core.Coordinate

	Score   int
	Steps   int
	Phase   states.EpisodePhase
	Outcome string
}

// Snapshot copies the current state
func (e *Environment) Snapshot() Snapshot {
	return Snapshot{
		GridSize: e.cfg.GridSize,
		WinScore: e.cfg.WinScore,
		MaxSteps: e.cfg.MaxSteps,
		Player:   e.player,
		Ghost:    e.ghost,
		HasGhost: e.hasGhost,
		Foods:    slices.Clone(e.foods),
		Score:    e.score,
		Steps:    e.steps,
		Phase:    e.machine.CurrentPhase(),
		Outcome:  e.episode.Outcome,
	}
}
