package events

import (
	"github.com/mitchelldurbincs/GhostChaseRL/internal/game/core"
)

// Event type constants
const (
	TypeEpisodeStarted     = "episode.started"
	TypeEpisodeEnded       = "episode.ended"
	TypeFoodEaten          = "food.eaten"
	TypePlayerCaught       = "player.caught"
	TypeEpisodeWon         = "episode.won"
	TypePlacementExhausted = "placement.exhausted"
	TypeStateTransition    = "state.transition"
)

// EpisodeStartedEvent is published by every reset
type EpisodeStartedEvent struct {
	BaseEvent
	Player core.Coordinate
	Ghost  core.Coordinate
	Foods  []core.Coordinate
}

// NewEpisodeStartedEvent creates a new EpisodeStartedEvent
func NewEpisodeStartedEvent(episodeID string, player, ghost core.Coordinate, foods []core.Coordinate) *EpisodeStartedEvent {
	return &EpisodeStartedEvent{
		BaseEvent: newBase(TypeEpisodeStarted, episodeID),
		Player:    player,
		Ghost:     ghost,
		Foods:     append([]core.Coordinate(nil), foods...),
	}
}

// EpisodeEndedEvent is published on the step that first makes an episode terminal
type EpisodeEndedEvent struct {
	BaseEvent
	Outcome string
	Score   int
	Steps   int
}

// NewEpisodeEndedEvent creates a new EpisodeEndedEvent
func NewEpisodeEndedEvent(episodeID, outcome string, score, steps int) *EpisodeEndedEvent {
	return &EpisodeEndedEvent{
		BaseEvent: newBase(TypeEpisodeEnded, episodeID),
		Outcome:   outcome,
		Score:     score,
		Steps:     steps,
	}
}

// FoodEatenEvent is published when the player lands on a food
type FoodEatenEvent struct {
	BaseEvent
	Location    core.Coordinate
	Replacement *core.Coordinate // nil when no replacement could be placed
	Score       int
	Step        int
}

// NewFoodEatenEvent creates a new FoodEatenEvent
func NewFoodEatenEvent(episodeID string, location core.Coordinate, replacement *core.Coordinate, score, step int) *FoodEatenEvent {
	return &FoodEatenEvent{
		BaseEvent:   newBase(TypeFoodEaten, episodeID),
		Location:    location,
		Replacement: replacement,
		Score:       score,
		Step:        step,
	}
}

// PlayerCaughtEvent is published when the ghost and player share a cell
type PlayerCaughtEvent struct {
	BaseEvent
	Location core.Coordinate
	Step     int
}

// NewPlayerCaughtEvent creates a new PlayerCaughtEvent
func NewPlayerCaughtEvent(episodeID string, location core.Coordinate, step int) *PlayerCaughtEvent {
	return &PlayerCaughtEvent{
		BaseEvent: newBase(TypePlayerCaught, episodeID),
		Location:  location,
		Step:      step,
	}
}

// EpisodeWonEvent is published when the score reaches the win threshold
type EpisodeWonEvent struct {
	BaseEvent
	Score int
	Step  int
}

// NewEpisodeWonEvent creates a new EpisodeWonEvent
func NewEpisodeWonEvent(episodeID string, score, step int) *EpisodeWonEvent {
	return &EpisodeWonEvent{
		BaseEvent: newBase(TypeEpisodeWon, episodeID),
		Score:     score,
		Step:      step,
	}
}

// PlacementExhaustedEvent reports that fewer entities were placed than requested
type PlacementExhaustedEvent struct {
	BaseEvent
	Entity    string
	Requested int
	Placed    int
}

// NewPlacementExhaustedEvent creates a new PlacementExhaustedEvent
func NewPlacementExhaustedEvent(episodeID, entity string, requested, placed int) *PlacementExhaustedEvent {
	return &PlacementExhaustedEvent{
		BaseEvent: newBase(TypePlacementExhausted, episodeID),
		Entity:    entity,
		Requested: requested,
		Placed:    placed,
	}
}

// StateTransitionEvent is published on every environment phase change
type StateTransitionEvent struct {
	BaseEvent
	FromPhase string
	ToPhase   string
	Reason    string
}

// NewStateTransitionEvent creates a new StateTransitionEvent
func NewStateTransitionEvent(episodeID, fromPhase, toPhase, reason string) *StateTransitionEvent {
	return &StateTransitionEvent{
		BaseEvent: newBase(TypeStateTransition, episodeID),
		FromPhase: fromPhase,
		ToPhase:   toPhase,
		Reason:    reason,
	}
}
