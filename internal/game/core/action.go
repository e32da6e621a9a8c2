package core

import "fmt"

// Action is a player move on the grid
type Action int

const (
	ActionUp Action = iota
	ActionDown
	ActionLeft
	ActionRight
)

// NumActions is the size of the action space
const NumActions = 4

// AllActions lists every valid action in index order
var AllActions = [NumActions]Action{ActionUp, ActionDown, ActionLeft, ActionRight}

// ActionVectors provides coordinate offsets for each action. Up decreases Y.
var ActionVectors = map[Action]Coordinate{
	ActionUp:    {X: 0, Y: -1},
	ActionDown:  {X: 0, Y: 1},
	ActionLeft:  {X: -1, Y: 0},
	ActionRight: {X: 1, Y: 0},
}

// Validate returns ErrInvalidAction for anything outside the four moves
func (a Action) Validate() error {
	if a < ActionUp || a > ActionRight {
		return fmt.Errorf("action %d: %w", int(a), ErrInvalidAction)
	}
	return nil
}

// Index returns the action as a Q-row index
func (a Action) Index() int {
	return int(a)
}

func (a Action) String() string {
	switch a {
	case ActionUp:
		return "up"
	case ActionDown:
		return "down"
	case ActionLeft:
		return "left"
	case ActionRight:
		return "right"
	default:
		return fmt.Sprintf("Unknown(%d)", int(a))
	}
}

// Move returns the coordinate one step from c in the action's direction.
// The result is not clamped.
func (c Coordinate) Move(a Action) Coordinate {
	if offset, ok := ActionVectors[a]; ok {
		return c.Add(offset)
	}
	return c
}
