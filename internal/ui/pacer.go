package ui

// TickResult tells the viewer what to do on one Ebiten update
type TickResult int

const (
	TickWait TickResult = iota
	TickStep
	TickReset
)

// Pacer spaces environment steps across Ebiten ticks and holds the final
// frame of an episode before asking for a reset.
type Pacer struct {
	stepTicks  int
	pauseTicks int

	timer   int
	pausing bool
}

// NewPacer converts steps per second and an end pause in milliseconds into
// tick counts at tps updates per second.
func NewPacer(tps, stepsPerSecond, endPauseMs int) *Pacer {
	if tps <= 0 {
		tps = 1
	}
	return &Pacer{
		stepTicks:  max(1, tps/max(1, stepsPerSecond)),
		pauseTicks: max(0, endPauseMs*tps/1000),
	}
}

func (p *Pacer) StepTicks() int  { return p.stepTicks }
func (p *Pacer) PauseTicks() int { return p.pauseTicks }

// Tick advances one update. terminal reports whether the episode has ended.
func (p *Pacer) Tick(terminal bool) TickResult {
	if terminal {
		if !p.pausing {
			p.pausing = true
			p.timer = 0
		}
		p.timer++
		if p.timer < p.pauseTicks {
			return TickWait
		}
		p.Restart()
		return TickReset
	}

	if p.pausing {
		// Reset happened outside the pacer
		p.Restart()
	}
	p.timer++
	if p.timer < p.stepTicks {
		return TickWait
	}
	p.timer = 0
	return TickStep
}

// Restart clears the timer, e.g. after a manual reset
func (p *Pacer) Restart() {
	p.timer = 0
	p.pausing = false
}
