package states

import "fmt"

// EpisodePhase represents where an environment is in its episode lifecycle
type EpisodePhase int

const (
	// PhaseFresh - Environment constructed, never reset
	PhaseFresh EpisodePhase = iota

	// PhaseRunning - Episode in progress
	PhaseRunning

	// PhaseTerminal - Caught, won or out of steps
	PhaseTerminal
)

// String returns the string representation of an EpisodePhase
func (p EpisodePhase) String() string {
	switch p {
	case PhaseFresh:
		return "Fresh"
	case PhaseRunning:
		return "Running"
	case PhaseTerminal:
		return "Terminal"
	default:
		return fmt.Sprintf("Unknown(%d)", p)
	}
}

// IsTerminal returns true if the episode has finished
func (p EpisodePhase) IsTerminal() bool {
	return p == PhaseTerminal
}

// CanStep returns true if Step has a meaningful episode to advance.
// Terminal environments may still be stepped; the episode just stays terminal.
func (p EpisodePhase) CanStep() bool {
	return p == PhaseRunning || p == PhaseTerminal
}

// AllowedTransitions returns the valid phases this phase can transition to
func (p EpisodePhase) AllowedTransitions() []EpisodePhase {
	switch p {
	case PhaseFresh:
		return []EpisodePhase{PhaseRunning}
	case PhaseRunning:
		return []EpisodePhase{PhaseRunning, PhaseTerminal}
	case PhaseTerminal:
		return []EpisodePhase{PhaseRunning}
	default:
		return []EpisodePhase{}
	}
}

// CanTransitionTo checks if a transition from this phase to the target phase is allowed
func (p EpisodePhase) CanTransitionTo(target EpisodePhase) bool {
	for _, phase := range p.AllowedTransitions() {
		if phase == target {
			return true
		}
	}
	return false
}

// ParsePhase converts a string to an EpisodePhase
func ParsePhase(s string) EpisodePhase {
	switch s {
	case "Running":
		return PhaseRunning
	case "Terminal":
		return PhaseTerminal
	default:
		return PhaseFresh
	}
}
