package game

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/GhostChaseRL/internal/game/core"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/game/events"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/game/placement"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/game/states"
)

// Environment is a single-agent grid pursuit game. It is not safe for
// concurrent use; run one Environment per goroutine.
type Environment struct {
	cfg     Config
	rng     *rand.Rand
	placer  *placement.Generator
	logger  zerolog.Logger
	bus     *events.EventBus
	machine *states.StateMachine
	episode *states.EpisodeContext

	player   core.Coordinate
	ghost    core.Coordinate
	hasGhost bool
	foods    []core.Coordinate
	score    int
	steps    int
}

// New creates an environment in the fresh phase. A nil rng is replaced by a
// time-seeded one. bus may be nil.
func New(cfg Config, rng *rand.Rand, logger zerolog.Logger, bus *events.EventBus) (*Environment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid game config: %w", err)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	logger = logger.With().Str("component", "Environment").Logger()
	episode := states.NewEpisodeContext(logger)

	return &Environment{
		cfg:     cfg,
		rng:     rng,
		placer:  placement.NewGenerator(cfg.placementConfig(), rng),
		logger:  logger,
		bus:     bus,
		machine: states.NewStateMachine(episode, bus),
		episode: episode,
	}, nil
}

// Reset starts a new episode and returns its initial observation.
//
// The player lands on a uniformly random cell. The ghost and then the foods
// are rejection-sampled so that no two entities are closer than MinDistance.
// If the attempt budget runs out the episode starts with fewer entities;
// without a ghost the player can never be caught.
func (e *Environment) Reset() Observation {
	e.episode.EpisodeID = uuid.NewString()
	e.score = 0
	e.steps = 0

	e.player = e.placer.RandomCell()

	ghosts, err := e.placer.Place(1, []core.Coordinate{e.player})
	e.notePlacement(EntityGhost, 1, len(ghosts), err)
	e.hasGhost = len(ghosts) == 1
	if e.hasGhost {
		e.ghost = ghosts[0]
	} else {
		e.ghost = e.player
	}

	foods, err := e.placer.Place(e.cfg.NumFoods, e.occupied())
	e.notePlacement(EntityFood, e.cfg.NumFoods, len(foods), err)
	e.foods = foods

	if err := e.machine.TransitionTo(states.PhaseRunning, "reset"); err != nil {
		e.logger.Error().Err(err).Str("episode_id", e.episode.EpisodeID).Msg("Failed to enter running phase")
	}

	e.logger.Debug().
		Str("episode_id", e.episode.EpisodeID).
		Str("player", e.player.String()).
		Str("ghost", e.ghost.String()).
		Bool("has_ghost", e.hasGhost).
		Int("foods", len(e.foods)).
		Msg("Episode reset")

	e.publish(events.NewEpisodeStartedEvent(e.episode.EpisodeID, e.player, e.ghost, e.foods))

	return e.observe()
}

// Step applies one action and returns the next observation, the reward and
// whether the step ended the episode.
//
// An invalid action returns core.ErrInvalidAction and leaves the state
// untouched. Stepping before the first Reset returns core.ErrNotReset.
// Stepping after a terminal step is allowed: the counters keep advancing and
// the terminal conditions are evaluated again, but the phase stays terminal
// until the next Reset.
func (e *Environment) Step(action core.Action) (Observation, float64, bool, error) {
	if err := action.Validate(); err != nil {
		return e.observe(), 0, false, err
	}
	phase := e.machine.CurrentPhase()
	if !phase.CanStep() {
		return Observation{}, 0, false, core.ErrNotReset
	}

	e.player = e.player.Move(action).Clamp(e.cfg.GridSize)
	e.steps++

	if e.hasGhost {
		e.moveGhost()
	}

	var outcome StepOutcome

	if idx := slices.Index(e.foods, e.player); idx >= 0 {
		outcome.AteFood = true
		e.score++
		e.eatFood(idx)
	}

	if e.hasGhost && e.player == e.ghost {
		outcome.Caught = true
		e.publish(events.NewPlayerCaughtEvent(e.episode.EpisodeID, e.player, e.steps))
	}

	if e.score >= e.cfg.WinScore {
		outcome.Won = true
		e.publish(events.NewEpisodeWonEvent(e.episode.EpisodeID, e.score, e.steps))
	}

	if e.steps >= e.cfg.MaxSteps {
		outcome.TimedOut = true
	}

	reward := e.cfg.Rewards.Reward(outcome)
	done := outcome.Done()

	if done && !phase.IsTerminal() {
		e.finish(outcome)
	}

	return e.observe(), reward, done, nil
}

// eatFood removes the food at idx and tries to place one replacement
func (e *Environment) eatFood(idx int) {
	eaten := e.foods[idx]
	e.foods = slices.Delete(e.foods, idx, idx+1)

	replacement, err := e.placer.Place(1, e.occupied())
	e.notePlacement(EntityFood, 1, len(replacement), err)

	var placed *core.Coordinate
	if len(replacement) == 1 {
		e.foods = append(e.foods, replacement[0])
		placed = &replacement[0]
	}

	e.publish(events.NewFoodEatenEvent(e.episode.EpisodeID, eaten, placed, e.score, e.steps))
}

func (e *Environment) finish(outcome StepOutcome) {
	e.episode.Outcome = outcome.Label()
	if err := e.machine.TransitionTo(states.PhaseTerminal, outcome.Label()); err != nil {
		e.logger.Error().Err(err).Str("episode_id", e.episode.EpisodeID).Msg("Failed to enter terminal phase")
	}

	e.logger.Debug().
		Str("episode_id", e.episode.EpisodeID).
		Str("outcome", outcome.Label()).
		Int("score", e.score).
		Int("steps", e.steps).
		Msg("Episode finished")

	e.publish(events.NewEpisodeEndedEvent(e.episode.EpisodeID, outcome.Label(), e.score, e.steps))
}

// occupied returns a fresh list of every cell holding an entity
func (e *Environment) occupied() []core.Coordinate {
	cells := make([]core.Coordinate, 0, len(e.foods)+2)
	cells = append(cells, e.player)
	if e.hasGhost {
		cells = append(cells, e.ghost)
	}
	return append(cells, e.foods...)
}

func (e *Environment) notePlacement(entity string, requested, placed int, err error) {
	if err == nil {
		return
	}
	if !errors.Is(err, placement.ErrExhausted) {
		e.logger.Error().Err(err).Str("entity", entity).Msg("Placement failed")
		return
	}

	e.logger.Warn().
		Str("episode_id", e.episode.EpisodeID).
		Str("entity", entity).
		Int("requested", requested).
		Int("placed", placed).
		Msg("Placement attempts exhausted")
	e.publish(events.NewPlacementExhaustedEvent(e.episode.EpisodeID, entity, requested, placed))
}

func (e *Environment) publish(event events.Event) {
	if e.bus != nil {
		e.bus.Publish(event)
	}
}

func (e *Environment) observe() Observation {
	ghost := e.ghost
	if !e.hasGhost {
		ghost = e.player
	}
	return Observe(e.player, ghost, e.foods)
}

// Observation returns the observation of the current state
func (e *Environment) Observation() Observation { return e.observe() }

// Config returns the rules the environment was built with
func (e *Environment) Config() Config { return e.cfg }

// Player returns the player position
func (e *Environment) Player() core.Coordinate { return e.player }

// Ghost returns the ghost position. It is only meaningful when HasGhost is true.
func (e *Environment) Ghost() core.Coordinate { return e.ghost }

// HasGhost reports whether the ghost was placed this episode
func (e *Environment) HasGhost() bool { return e.hasGhost }

// Foods returns a copy of the food positions
func (e *Environment) Foods() []core.Coordinate { return slices.Clone(e.foods) }

// Score returns the number of foods eaten this episode
func (e *Environment) Score() int { return e.score }

// Steps returns the number of steps taken this episode
func (e *Environment) Steps() int { return e.steps }

// Phase returns the current episode phase
func (e *Environment) Phase() states.EpisodePhase { return e.machine.CurrentPhase() }

// PhaseHistory returns the recent phase transitions, oldest first
func (e *Environment) PhaseHistory() []states.Transition { return e.machine.GetHistory() }

// EpisodeID returns the identifier assigned by the last Reset
func (e *Environment) EpisodeID() string { return e.episode.EpisodeID }

// Outcome returns the terminal cause of the current episode, or "" while running
func (e *Environment) Outcome() string { return e.episode.Outcome }
