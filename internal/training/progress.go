package training

import (
	"maps"
	"time"
)

// recentWindow is how many episodes the moving averages cover
const recentWindow = 100

// Progress is a point-in-time view of a training run
type Progress struct {
	RunID             string         `json:"run_id"`
	TotalEpisodes     int            `json:"total_episodes"`
	EpisodesCompleted int            `json:"episodes_completed"`
	LastScore         int            `json:"last_score"`
	BestScore         int            `json:"best_score"`
	RecentMeanScore   float64        `json:"recent_mean_score"`
	RecentMeanReward  float64        `json:"recent_mean_reward"`
	Epsilon           float64        `json:"epsilon"`
	Outcomes          map[string]int `json:"outcomes"`
	StartedAt         time.Time      `json:"started_at"`

	recentScores  []int
	recentRewards []float64
}

func (p *Progress) observe(stats EpisodeStats) {
	p.EpisodesCompleted++
	p.LastScore = stats.Score
	p.BestScore = max(p.BestScore, stats.Score)
	p.Epsilon = stats.Epsilon
	p.Outcomes[stats.Outcome]++

	p.recentScores = appendWindow(p.recentScores, stats.Score)
	p.recentRewards = appendWindow(p.recentRewards, stats.TotalReward)
	p.RecentMeanScore = mean(p.recentScores)
	p.RecentMeanReward = mean(p.recentRewards)
}

func (p *Progress) clone() Progress {
	c := *p
	c.Outcomes = maps.Clone(p.Outcomes)
	c.recentScores = nil
	c.recentRewards = nil
	return c
}

// Fraction returns the completed share of the run in [0,1]
func (p Progress) Fraction() float64 {
	if p.TotalEpisodes == 0 {
		return 1
	}
	return float64(p.EpisodesCompleted) / float64(p.TotalEpisodes)
}

func appendWindow[T any](window []T, v T) []T {
	window = append(window, v)
	if len(window) > recentWindow {
		window = window[len(window)-recentWindow:]
	}
	return window
}

func mean[T int | float64](values []T) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += float64(v)
	}
	return sum / float64(len(values))
}
