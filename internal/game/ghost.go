package game

import (
	"github.com/mitchelldurbincs/GhostChaseRL/internal/common"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/game/core"
)

// moveGhost advances the ghost by one stochastic step.
//
// With PursuitProbability the ghost closes in on the player: if the X
// coordinates differ it moves on X with AxisProbability, otherwise it moves
// on Y. A Y move when only X differs leaves the ghost in place. The rest of
// the time it takes a random step with each axis drawn from {-1, 0, 1}.
// The result is clamped to the grid.
func (e *Environment) moveGhost() {
	next := e.ghost

	if e.rng.Float64() < e.cfg.PursuitProbability {
		dx := common.Sign(e.player.X - e.ghost.X)
		dy := common.Sign(e.player.Y - e.ghost.Y)
		if dx != 0 && e.rng.Float64() < e.cfg.AxisProbability {
			next.X += dx
		} else {
			next.Y += dy
		}
	} else {
		next = next.Add(core.Coordinate{
			X: e.rng.Intn(3) - 1,
			Y: e.rng.Intn(3) - 1,
		})
	}

	e.ghost = next.Clamp(e.cfg.GridSize)
}
