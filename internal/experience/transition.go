package experience

import (
	"time"

	"github.com/mitchelldurbincs/GhostChaseRL/internal/game"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/game/core"
)

// Transition is one (s, a, r, s', done) tuple produced by a training step
type Transition struct {
	ID          string
	RunID       string
	EpisodeID   string
	Episode     int
	Step        int
	Observation game.Observation
	Action      core.Action
	Reward      float64
	Next        game.Observation
	Done        bool
	CollectedAt time.Time
}

// Recorder receives transitions as they are produced
type Recorder interface {
	Record(t Transition)
	// EndEpisode is called once after the final transition of an episode
	EndEpisode(episodeID string)
}
