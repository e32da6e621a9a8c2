package core

import "errors"

var (
	ErrInvalidAction   = errors.New("invalid action")
	ErrNotReset        = errors.New("environment has not been reset")
	ErrInvalidGridSize = errors.New("invalid grid size")
	ErrNonFiniteReward = errors.New("reward is not finite")
)
