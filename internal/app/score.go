package app

import (
	"math"
	"time"

	"scramble-game-service/internal/domain"
)

var basePoints = map[domain.Difficulty]int{
	domain.DifficultyEasy:   100,
	domain.DifficultyMedium: 200,
	domain.DifficultyHard:   300,
	domain.DifficultyExpert: 500,
}

var difficultyMultiplier = map[domain.Difficulty]float64{
	domain.DifficultyEasy:   1.0,
	domain.DifficultyMedium: 1.2,
	domain.DifficultyHard:   1.5,
	domain.DifficultyExpert: 2.0,
}

// hintPenalties is the cumulative charge for h hints used. The schedule is
// deliberately non-linear: the per-level charges are 10/20/30.
var hintPenalties = [domain.MaxHintsPerRound + 1]int{0, 10, 30, 60}

// hintLevelPenalties is the charge recorded on the hint itself.
var hintLevelPenalties = map[int]int{1: 10, 2: 20, 3: 30}

// ScoreInput carries the signals for one completed round.
type ScoreInput struct {
	Difficulty   domain.Difficulty
	Mode         domain.Mode
	Elapsed      time.Duration
	Accuracy     float64
	HintsUsed    int
	GrammarScore int
}

// CalculateScore maps a round outcome to an integer score:
// floor((base + timeBonus + accuracyBonus [+ grammarBonus] - hintPenalty) * multiplier),
// floored at zero. The grammar bonus applies to sentence rounds only.
func CalculateScore(in ScoreInput) int {
	raw := basePoints[in.Difficulty]
	raw += timeBonus(in.Elapsed)
	raw += accuracyBonus(in.Accuracy)
	if in.Mode == domain.ModeSentence {
		raw += grammarBonus(in.GrammarScore)
	}
	raw -= hintPenalty(in.HintsUsed)

	score := int(math.Floor(float64(raw) * difficultyMultiplier[in.Difficulty]))
	if score < 0 {
		return 0
	}
	return score
}

func timeBonus(elapsed time.Duration) int {
	switch {
	case elapsed < 30*time.Second:
		return 50
	case elapsed < 60*time.Second:
		return 30
	case elapsed < 90*time.Second:
		return 15
	}
	return 0
}

func accuracyBonus(accuracy float64) int {
	switch {
	case accuracy >= 1.0:
		return 100
	case accuracy >= 0.95:
		return 50
	case accuracy >= 0.90:
		return 25
	}
	return 0
}

func grammarBonus(grammar int) int {
	switch {
	case grammar >= 95:
		return 50
	case grammar >= 85:
		return 25
	case grammar >= 75:
		return 10
	}
	return 0
}

func hintPenalty(hints int) int {
	if hints < 0 {
		return 0
	}
	if hints > domain.MaxHintsPerRound {
		hints = domain.MaxHintsPerRound
	}
	return hintPenalties[hints]
}
