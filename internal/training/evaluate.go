package training

import (
	"context"
	"fmt"

	"github.com/mitchelldurbincs/GhostChaseRL/internal/game/states"
)

// EvalResult summarizes greedy evaluation episodes
type EvalResult struct {
	Episodes    int
	MeanScore   float64
	MeanReward  float64
	MeanSteps   float64
	Wins        int
	Catches     int
	Timeouts    int
	BestScore   int
	FinalScores []int
}

// WinRate returns the share of evaluation episodes that were won
func (r EvalResult) WinRate() float64 {
	if r.Episodes == 0 {
		return 0
	}
	return float64(r.Wins) / float64(r.Episodes)
}

// Evaluate plays episodes with the greedy policy. The learner is not updated
// and its epsilon is left untouched.
func Evaluate(ctx context.Context, env Environment, learner Learner, episodes int) (EvalResult, error) {
	result := EvalResult{FinalScores: make([]int, 0, max(episodes, 0))}

	var totalScore, totalReward, totalSteps float64
	for ep := 0; ep < episodes; ep++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		obs := env.Reset()
		reward := 0.0
		for {
			next, r, done, err := env.Step(learner.Greedy(obs))
			if err != nil {
				return result, fmt.Errorf("evaluation episode %d: %w", ep, err)
			}
			reward += r
			obs = next
			if done {
				break
			}
		}

		score := env.Score()
		result.Episodes++
		result.FinalScores = append(result.FinalScores, score)
		result.BestScore = max(result.BestScore, score)
		totalScore += float64(score)
		totalReward += reward
		totalSteps += float64(env.Steps())

		switch env.Outcome() {
		case states.OutcomeWon:
			result.Wins++
		case states.OutcomeCaught:
			result.Catches++
		case states.OutcomeTimeout:
			result.Timeouts++
		}
	}

	if result.Episodes > 0 {
		n := float64(result.Episodes)
		result.MeanScore = totalScore / n
		result.MeanReward = totalReward / n
		result.MeanSteps = totalSteps / n
	}
	return result, nil
}
