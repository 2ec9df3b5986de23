package domain

import "time"

// Mode selects the challenge style for a round.
type Mode string

const (
	// ModeIdiom scrambles the characters of a fixed idiom; the answer must
	// reproduce the exact character order.
	ModeIdiom Mode = "idiom"
	// ModeSentence scrambles the words of a sentence; the answer is scored
	// on token set and word order.
	ModeSentence Mode = "sentence"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeIdiom || m == ModeSentence
}

// Difficulty tiers a question and scales its scoring.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
	DifficultyExpert Difficulty = "EXPERT"
)

// Valid reports whether d is a known difficulty.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyExpert:
		return true
	}
	return false
}

// Difficulties lists all tiers, ordered easiest first.
func Difficulties() []Difficulty {
	return []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyExpert}
}

// RoundStatus is the lifecycle state of a round. Active is the only
// non-terminal state.
type RoundStatus string

const (
	RoundActive    RoundStatus = "ACTIVE"
	RoundCompleted RoundStatus = "COMPLETED"
	RoundAbandoned RoundStatus = "ABANDONED"
	RoundExpired   RoundStatus = "EXPIRED"
)

// Terminal reports whether the status admits no further transitions.
func (s RoundStatus) Terminal() bool {
	return s != RoundActive
}

// MaxHintsPerRound caps the hint records on one round.
const MaxHintsPerRound = 3

// HintRecord is one hint served during a round. Levels are 1-3 and
// strictly increasing within a round.
type HintRecord struct {
	Level     int       `json:"level"`
	Penalty   int       `json:"penalty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// QuestionMeta is the hint-bearing metadata carried alongside a question's
// target content.
type QuestionMeta struct {
	Definition  string `json:"definition,omitempty"`
	Pinyin      string `json:"pinyin,omitempty"`
	GrammarNote string `json:"grammarNote,omitempty"`
	Example     string `json:"example,omitempty"`
}

// Question is one catalog entry served by the content provider.
type Question struct {
	ID         string       `json:"id"`
	Mode       Mode         `json:"mode"`
	Difficulty Difficulty   `json:"difficulty"`
	Text       string       `json:"text"`
	Tokens     []string     `json:"tokens,omitempty"`
	Meta       QuestionMeta `json:"meta"`
}

// Round is one player's attempt at a single challenge.
type Round struct {
	ID            string
	PlayerID      string
	Mode          Mode
	Difficulty    Difficulty
	QuestionID    string
	Target        string
	TargetTokens  []string
	Scrambled     []string
	AllowedTokens []string
	Meta          QuestionMeta
	Status        RoundStatus
	StartedAt     time.Time
	CompletedAt   time.Time
	Duration      time.Duration
	Score         int
	Hints         []HintRecord
}

// HintCount returns the number of hints already served.
func (r *Round) HintCount() int {
	return len(r.Hints)
}

// HighestHintLevel returns the last served hint level, or 0.
func (r *Round) HighestHintLevel() int {
	if len(r.Hints) == 0 {
		return 0
	}
	return r.Hints[len(r.Hints)-1].Level
}

// ScoreRecord is the immutable outcome of one completed round.
type ScoreRecord struct {
	ID           string        `json:"id"`
	PlayerID     string        `json:"playerId"`
	Mode         Mode          `json:"mode"`
	Difficulty   Difficulty    `json:"difficulty"`
	QuestionID   string        `json:"questionId"`
	Score        int           `json:"score"`
	Elapsed      time.Duration `json:"elapsed"`
	Accuracy     float64       `json:"accuracy"`
	GrammarScore int           `json:"grammarScore"`
	HintsUsed    int           `json:"hintsUsed"`
	Correct      bool          `json:"correct"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// LeaderboardEntry aggregates one player's results on a single
// (mode, difficulty) board. Rank is a dense competition rank: tied totals
// share a rank and the next distinct total takes its 1-based position.
type LeaderboardEntry struct {
	PlayerID        string     `json:"playerId"`
	Mode            Mode       `json:"mode"`
	Difficulty      Difficulty `json:"difficulty"`
	TotalScore      int        `json:"totalScore"`
	GamesPlayed     int        `json:"gamesPlayed"`
	AverageScore    float64    `json:"averageScore"`
	AverageAccuracy float64    `json:"averageAccuracy"`
	Rank            int        `json:"rank"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// AchievementEvent is handed to the achievement hook after every completed
// round. Consumers must treat it as fire-and-forget input.
type AchievementEvent struct {
	PlayerID   string        `json:"playerId"`
	Mode       Mode          `json:"mode"`
	Difficulty Difficulty    `json:"difficulty"`
	Score      int           `json:"score"`
	Elapsed    time.Duration `json:"elapsed"`
	Accuracy   float64       `json:"accuracy"`
	HintsUsed  int           `json:"hintsUsed"`
	Correct    bool          `json:"correct"`
}
