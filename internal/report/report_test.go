package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/GhostChaseRL/internal/training"
)

func sampleHistory(n int) []training.EpisodeStats {
	history := make([]training.EpisodeStats, n)
	for i := range history {
		history[i] = training.EpisodeStats{
			Episode:     i,
			Score:       i % 5,
			TotalReward: float64(i) - 10,
			Epsilon:     0.5,
			Outcome:     "timeout",
		}
	}
	return history
}

func TestMovingAverage(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		window int
		want   []float64
	}{
		{"Empty", nil, 3, []float64{}},
		{"WindowOne", []float64{1, 2, 3}, 1, []float64{1, 2, 3}},
		{"Warmup", []float64{2, 4, 6, 8}, 2, []float64{2, 3, 5, 7}},
		{"WindowLargerThanInput", []float64{3, 6}, 10, []float64{3, 4.5}},
		{"NonPositiveWindow", []float64{5, 7}, 0, []float64{5, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MovingAverage(tt.values, tt.window)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-9)
			}
		})
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Smoothing = 10

	require.NoError(t, Write(&buf, sampleHistory(50), opts))

	html := buf.String()
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "echarts")
	assert.Contains(t, html, "total reward")
	assert.Contains(t, html, "mean of 10")
}

func TestWrite_Empty(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, Write(&buf, nil, DefaultOptions()), ErrNoEpisodes)
	assert.Zero(t, buf.Len())
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "report.html")
	require.NoError(t, WriteFile(path, sampleHistory(5), DefaultOptions()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "epsilon")
}
