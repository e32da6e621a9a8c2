package game

import (
	"fmt"

	"github.com/mitchelldurbincs/GhostChaseRL/internal/common"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/game/core"
)

// Observation is the discretized relative view the agent learns from.
// It is comparable and can be used directly as a map key.
type Observation struct {
	GhostDX int
	GhostDY int
	FoodDX  int
	FoodDY  int
}

func (o Observation) String() string {
	return fmt.Sprintf("ghost(%d,%d) food(%d,%d)", o.GhostDX, o.GhostDY, o.FoodDX, o.FoodDY)
}

// Discretize clips v to [-ObservationClip, ObservationClip]
func Discretize(v int) int {
	return common.Clamp(v, -ObservationClip, ObservationClip)
}

// NearestFood returns the food closest to from by Manhattan distance.
// Ties go to the earliest entry. ok is false when foods is empty.
func NearestFood(from core.Coordinate, foods []core.Coordinate) (nearest core.Coordinate, ok bool) {
	best := -1
	for _, f := range foods {
		d := from.DistanceTo(f)
		if best < 0 || d < best {
			best = d
			nearest = f
		}
	}
	return nearest, best >= 0
}

// Observe builds the observation for a player. With no food on the board the
// zero observation is returned regardless of the ghost position.
func Observe(player, ghost core.Coordinate, foods []core.Coordinate) Observation {
	food, ok := NearestFood(player, foods)
	if !ok {
		return Observation{}
	}

	g := ghost.Sub(player)
	f := food.Sub(player)
	return Observation{
		GhostDX: Discretize(g.X),
		GhostDY: Discretize(g.Y),
		FoodDX:  Discretize(f.X),
		FoodDY:  Discretize(f.Y),
	}
}
