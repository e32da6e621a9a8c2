// Package report renders training curves as a standalone HTML page.
package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/mitchelldurbincs/GhostChaseRL/internal/training"
)

// DefaultSmoothing is the moving-average window applied to the curves
const DefaultSmoothing = 100

// ErrNoEpisodes is returned when there is nothing to plot
var ErrNoEpisodes = errors.New("no episodes to plot")

// Options configures the rendered page
type Options struct {
	Title     string
	Smoothing int // Moving-average window; values below 2 disable smoothing
}

// DefaultOptions returns the stock page settings
func DefaultOptions() Options {
	return Options{
		Title:     "Ghost chase training",
		Smoothing: DefaultSmoothing,
	}
}

// Write renders reward, score and epsilon curves for history to w
func Write(w io.Writer, history []training.EpisodeStats, o Options) error {
	if len(history) == 0 {
		return ErrNoEpisodes
	}

	episodes := make([]string, len(history))
	rewards := make([]float64, len(history))
	scores := make([]float64, len(history))
	epsilons := make([]float64, len(history))
	for i, s := range history {
		episodes[i] = strconv.Itoa(s.Episode)
		rewards[i] = s.TotalReward
		scores[i] = float64(s.Score)
		epsilons[i] = s.Epsilon
	}

	page := components.NewPage()
	page.PageTitle = o.Title
	page.AddCharts(
		curve(o.Title+": total reward", episodes, "reward", rewards, o.Smoothing),
		curve(o.Title+": score", episodes, "score", scores, o.Smoothing),
		curve(o.Title+": epsilon", episodes, "epsilon", epsilons, 0),
	)

	return page.Render(w)
}

// WriteFile renders the page to path, creating parent directories
func WriteFile(path string, history []training.EpisodeStats, o Options) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	return Write(f, history, o)
}

func curve(title string, xAxis []string, name string, values []float64, window int) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(opts.Initialization{Theme: "shine"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)

	line.SetXAxis(xAxis).AddSeries(name, lineData(values))
	if window > 1 {
		line.AddSeries(fmt.Sprintf("%s (mean of %d)", name, window), lineData(MovingAverage(values, window)))
	}
	return line
}

func lineData(values []float64) []opts.LineData {
	items := make([]opts.LineData, len(values))
	for i, v := range values {
		items[i] = opts.LineData{Value: v}
	}
	return items
}

// MovingAverage returns the trailing mean of values over window entries.
// Early entries average over what is available.
func MovingAverage(values []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		out[i] = sum / float64(min(i+1, window))
	}
	return out
}
