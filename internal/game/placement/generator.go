package placement

import (
	"errors"
	"math/rand"

	"github.com/mitchelldurbincs/GhostChaseRL/internal/game/core"
)

// DefaultMaxAttempts bounds the rejection-sampling loop of a single Place call
const DefaultMaxAttempts = 1000

// ErrExhausted is returned alongside a partial placement when the attempt budget ran out
var ErrExhausted = errors.New("placement attempts exhausted")

// Config holds configuration for entity placement
type Config struct {
	GridSize    int
	MinDistance int // Minimum Manhattan distance between any two placed entities
	MaxAttempts int // Random draws per Place call
}

// DefaultConfig returns the placement settings used by the stock game
func DefaultConfig(gridSize, minDistance int) Config {
	return Config{
		GridSize:    gridSize,
		MinDistance: minDistance,
		MaxAttempts: DefaultMaxAttempts,
	}
}

// Generator places entities on the grid with a caller-supplied RNG
type Generator struct {
	config Config
	rng    *rand.Rand
}

// NewGenerator creates a new placement generator
func NewGenerator(config Config, rng *rand.Rand) *Generator {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultMaxAttempts
	}
	return &Generator{
		config: config,
		rng:    rng,
	}
}

// Config returns the generator's configuration
func (g *Generator) Config() Config {
	return g.config
}

// RandomCell draws a uniformly random cell with no constraints
func (g *Generator) RandomCell() core.Coordinate {
	return core.Coordinate{
		X: g.rng.Intn(g.config.GridSize),
		Y: g.rng.Intn(g.config.GridSize),
	}
}

// Place draws up to n cells by rejection sampling. A candidate is rejected when it
// coincides with an excluded cell or sits closer than MinDistance to an excluded
// cell or to a cell accepted earlier in this call. When the attempt budget runs
// out the cells found so far are returned together with ErrExhausted.
//
// exclude is only read.
func (g *Generator) Place(n int, exclude []core.Coordinate) ([]core.Coordinate, error) {
	positions := make([]core.Coordinate, 0, n)
	if n <= 0 {
		return positions, nil
	}

	for attempts := 0; len(positions) < n && attempts < g.config.MaxAttempts; attempts++ {
		candidate := g.RandomCell()

		if core.Contains(exclude, candidate) || core.Contains(positions, candidate) {
			continue
		}
		if !g.farEnough(candidate, exclude) || !g.farEnough(candidate, positions) {
			continue
		}

		positions = append(positions, candidate)
	}

	if len(positions) < n {
		return positions, ErrExhausted
	}
	return positions, nil
}

func (g *Generator) farEnough(candidate core.Coordinate, existing []core.Coordinate) bool {
	for _, other := range existing {
		if candidate.DistanceTo(other) < g.config.MinDistance {
			return false
		}
	}
	return true
}
