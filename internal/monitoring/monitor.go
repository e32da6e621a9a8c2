package monitoring

import (
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/GhostChaseRL/internal/training"
)

// DefaultInterval is how often the monitor logs when no interval is given
const DefaultInterval = 10 * time.Second

// ProgressSource reports the state of a training run
type ProgressSource interface {
	Snapshot() training.Progress
}

// ProgressMonitor periodically logs training progress together with
// goroutine metrics until stopped
type ProgressMonitor struct {
	source   ProgressSource
	interval time.Duration
	logger   zerolog.Logger

	mu       sync.RWMutex
	baseline int
	peak     int
	checks   int
	last     training.Progress

	stopChan chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewProgressMonitor creates a monitor. A non-positive interval uses DefaultInterval.
func NewProgressMonitor(source ProgressSource, interval time.Duration, logger zerolog.Logger) *ProgressMonitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	baseline := runtime.NumGoroutine()
	return &ProgressMonitor{
		source:   source,
		interval: interval,
		logger:   logger.With().Str("component", "ProgressMonitor").Logger(),
		baseline: baseline,
		peak:     baseline,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins monitoring in a new goroutine
func (pm *ProgressMonitor) Start() {
	go pm.monitor()
	pm.logger.Debug().
		Int("baseline_goroutines", pm.baseline).
		Dur("interval", pm.interval).
		Msg("Started progress monitoring")
}

// Stop stops the monitor, logs a final check and waits for the loop to exit.
// It is safe to call more than once.
func (pm *ProgressMonitor) Stop() {
	pm.stopOnce.Do(func() {
		close(pm.stopChan)
		<-pm.done
		pm.check()
	})
}

func (pm *ProgressMonitor) monitor() {
	defer close(pm.done)

	ticker := time.NewTicker(pm.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pm.check()
		case <-pm.stopChan:
			return
		}
	}
}

// check records one sample and logs it
func (pm *ProgressMonitor) check() {
	progress := pm.source.Snapshot()
	current := runtime.NumGoroutine()

	pm.mu.Lock()
	pm.checks++
	pm.last = progress
	if current > pm.peak {
		pm.peak = current
	}
	peak := pm.peak
	pm.mu.Unlock()

	pm.logger.Info().
		Str("run_id", progress.RunID).
		Int("episodes", progress.EpisodesCompleted).
		Int("total", progress.TotalEpisodes).
		Float64("fraction", progress.Fraction()).
		Float64("recent_mean_score", progress.RecentMeanScore).
		Float64("recent_mean_reward", progress.RecentMeanReward).
		Int("best_score", progress.BestScore).
		Float64("epsilon", progress.Epsilon).
		Int("goroutines", current).
		Int("goroutines_peak", peak).
		Msg("Training progress")
}

// GetMetrics returns what the monitor has observed so far
func (pm *ProgressMonitor) GetMetrics() Metrics {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	return Metrics{
		Checks:             pm.checks,
		Last:               pm.last,
		BaselineGoroutines: pm.baseline,
		PeakGoroutines:     pm.peak,
	}
}

// Metrics contains monitor statistics
type Metrics struct {
	Checks             int               `json:"checks"`
	Last               training.Progress `json:"last"`
	BaselineGoroutines int               `json:"baseline_goroutines"`
	PeakGoroutines     int               `json:"peak_goroutines"`
}
