package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"scramble-game-service/internal/domain"
)

// RoundStore owns the lifecycle of each player's single active round.
// Implementations must make Create's implicit abandonment of a prior
// active round atomic with respect to AddHint/Complete on that round, and
// must treat every status change as a compare-and-swap on Active.
type RoundStore interface {
	Create(ctx context.Context, round domain.Round) (domain.Round, error)
	Get(ctx context.Context, roundID string) (domain.Round, error)
	ActiveFor(ctx context.Context, playerID string) (domain.Round, error)
	AddHint(ctx context.Context, roundID string, hint domain.HintRecord) (int, error)
	Complete(ctx context.Context, roundID string, score int) (domain.Round, error)
	Abandon(ctx context.Context, roundID string) error
	Expire(ctx context.Context, roundID string) error
	SweepStale(ctx context.Context, cutoff time.Time) (int, error)
}

// ScoreLog appends immutable score records.
type ScoreLog interface {
	Append(ctx context.Context, record domain.ScoreRecord) error
}

// AchievementNotifier receives completed-round outcomes. Calls are
// fire-and-forget; errors are swallowed by the orchestrator.
type AchievementNotifier interface {
	RoundCompleted(ctx context.Context, event domain.AchievementEvent) error
}

// RoundService is the façade coordinating selection, scrambling, the round
// store, validation, scoring and ranking.
type RoundService struct {
	rounds       RoundStore
	selector     *ContentSelector
	scrambler    *ScrambleEngine
	validator    AnswerValidator
	ranking      *RankingEngine
	scores       ScoreLog
	achievements AchievementNotifier
	clock        func() time.Time
}

func NewRoundService(rounds RoundStore, selector *ContentSelector, scrambler *ScrambleEngine, ranking *RankingEngine, scores ScoreLog) *RoundService {
	return &RoundService{
		rounds:    rounds,
		selector:  selector,
		scrambler: scrambler,
		ranking:   ranking,
		scores:    scores,
		clock:     time.Now,
	}
}

// WithAchievements attaches the optional achievement hook.
func (s *RoundService) WithAchievements(notifier AchievementNotifier) *RoundService {
	s.achievements = notifier
	return s
}

// WithClock is test-only for deterministic timestamps.
func (s *RoundService) WithClock(clock func() time.Time) *RoundService {
	s.clock = clock
	return s
}

// StartedRound is the player-facing view of a fresh round. The target is
// deliberately absent.
type StartedRound struct {
	RoundID    string            `json:"roundId"`
	Mode       domain.Mode       `json:"mode"`
	Difficulty domain.Difficulty `json:"difficulty"`
	Scrambled  []string          `json:"scrambled"`
	StartedAt  time.Time         `json:"startedAt"`
}

// StartRound selects and scrambles a question and opens a new active
// round, implicitly abandoning any round the player still has open. An
// exhausted pool surfaces as domain.ErrContentExhausted.
func (s *RoundService) StartRound(ctx context.Context, playerID string, mode domain.Mode, difficulty domain.Difficulty) (StartedRound, error) {
	if playerID == "" || !mode.Valid() || !difficulty.Valid() {
		return StartedRound{}, domain.ErrValidationFailed
	}

	sel, err := s.selector.Select(ctx, playerID, mode, difficulty)
	if err != nil {
		return StartedRound{}, fmt.Errorf("select question: %w", err)
	}
	if sel.Exhausted {
		return StartedRound{}, domain.ErrContentExhausted
	}
	question := sel.Question

	tokens := targetTokens(question)
	round := domain.Round{
		ID:           uuid.NewString(),
		PlayerID:     playerID,
		Mode:         mode,
		Difficulty:   difficulty,
		QuestionID:   question.ID,
		Target:       question.Text,
		TargetTokens: tokens,
		Scrambled:    s.scrambler.Scramble(tokens),
		Meta:         question.Meta,
		Status:       domain.RoundActive,
		StartedAt:    s.clock(),
	}
	if mode == domain.ModeSentence {
		round.AllowedTokens = tokens
	}

	created, err := s.rounds.Create(ctx, round)
	if err != nil {
		return StartedRound{}, fmt.Errorf("create round: %w", err)
	}
	return StartedRound{
		RoundID:    created.ID,
		Mode:       created.Mode,
		Difficulty: created.Difficulty,
		Scrambled:  created.Scrambled,
		StartedAt:  created.StartedAt,
	}, nil
}

// UseHint serves the requested hint level on the player's active round and
// records its penalty. Levels must be 1-3 and strictly increasing.
func (s *RoundService) UseHint(ctx context.Context, playerID string, level int) (domain.HintRecord, int, error) {
	round, err := s.rounds.ActiveFor(ctx, playerID)
	if err != nil {
		return domain.HintRecord{}, 0, err
	}
	// Budget before level validity: a fourth request fails the same way no
	// matter which level it asks for.
	if round.HintCount() >= domain.MaxHintsPerRound {
		return domain.HintRecord{}, 0, domain.ErrHintBudgetExceeded
	}
	penalty, ok := hintLevelPenalties[level]
	if !ok {
		return domain.HintRecord{}, 0, domain.ErrValidationFailed
	}

	hint := domain.HintRecord{
		Level:     level,
		Penalty:   penalty,
		Content:   hintContent(round, level),
		CreatedAt: s.clock(),
	}
	count, err := s.rounds.AddHint(ctx, round.ID, hint)
	if err != nil {
		return domain.HintRecord{}, 0, err
	}
	return hint, count, nil
}

// SubmitResult reports the outcome of a submission.
type SubmitResult struct {
	RoundID      string                  `json:"roundId"`
	Correct      bool                    `json:"correct"`
	Score        int                     `json:"score"`
	Accuracy     float64                 `json:"accuracy"`
	GrammarScore int                     `json:"grammarScore,omitempty"`
	Diagnostics  []string                `json:"diagnostics,omitempty"`
	HintsUsed    int                     `json:"hintsUsed"`
	Entry        domain.LeaderboardEntry `json:"entry"`
}

// SubmitAnswer closes the player's active round, validates and scores the
// answer, appends the score record and folds it into the ranking. The
// elapsed duration is caller-reported; when absent the round's own
// duration is used.
func (s *RoundService) SubmitAnswer(ctx context.Context, playerID, answer string, elapsed time.Duration) (SubmitResult, error) {
	round, err := s.rounds.ActiveFor(ctx, playerID)
	if err != nil {
		return SubmitResult{}, err
	}
	if elapsed <= 0 {
		elapsed = s.clock().Sub(round.StartedAt)
	}

	result := s.validator.Validate(round.Mode, round.Target, round.TargetTokens, answer)
	score := 0
	if result.Correct {
		score = CalculateScore(ScoreInput{
			Difficulty:   round.Difficulty,
			Mode:         round.Mode,
			Elapsed:      elapsed,
			Accuracy:     result.Accuracy,
			HintsUsed:    round.HintCount(),
			GrammarScore: result.GrammarScore,
		})
	}

	// The status swap decides the race against a superseding StartRound: if
	// this round is no longer active the submission fails without touching
	// scores or rankings.
	completed, err := s.rounds.Complete(ctx, round.ID, score)
	if err != nil {
		return SubmitResult{}, err
	}

	record := domain.ScoreRecord{
		ID:           uuid.NewString(),
		PlayerID:     playerID,
		Mode:         round.Mode,
		Difficulty:   round.Difficulty,
		QuestionID:   round.QuestionID,
		Score:        score,
		Elapsed:      elapsed,
		Accuracy:     result.Accuracy,
		GrammarScore: result.GrammarScore,
		HintsUsed:    completed.HintCount(),
		Correct:      result.Correct,
		CreatedAt:    s.clock(),
	}
	if err := s.scores.Append(ctx, record); err != nil {
		return SubmitResult{}, fmt.Errorf("append score record: %w", err)
	}

	if err := s.ranking.Update(ctx, playerID, round.Mode, round.Difficulty, score, result.Accuracy); err != nil {
		return SubmitResult{}, fmt.Errorf("update ranking: %w", err)
	}

	if s.achievements != nil {
		event := domain.AchievementEvent{
			PlayerID:   playerID,
			Mode:       round.Mode,
			Difficulty: round.Difficulty,
			Score:      score,
			Elapsed:    elapsed,
			Accuracy:   result.Accuracy,
			HintsUsed:  completed.HintCount(),
			Correct:    result.Correct,
		}
		go func() {
			// Detached from the request context; hook failures never fail
			// the submission.
			_ = s.achievements.RoundCompleted(context.Background(), event)
		}()
	}

	entry, err := s.ranking.PositionOf(ctx, playerID, round.Mode, round.Difficulty)
	if err != nil {
		return SubmitResult{}, err
	}
	return SubmitResult{
		RoundID:      round.ID,
		Correct:      result.Correct,
		Score:        score,
		Accuracy:     result.Accuracy,
		GrammarScore: result.GrammarScore,
		Diagnostics:  result.Diagnostics,
		HintsUsed:    completed.HintCount(),
		Entry:        entry,
	}, nil
}

// AbandonRound explicitly abandons the player's active round.
func (s *RoundService) AbandonRound(ctx context.Context, playerID string) error {
	round, err := s.rounds.ActiveFor(ctx, playerID)
	if err != nil {
		return err
	}
	return s.rounds.Abandon(ctx, round.ID)
}

// RestartContent clears the player's seen set for a board, recovering from
// an exhausted pool.
func (s *RoundService) RestartContent(ctx context.Context, playerID string, mode domain.Mode, difficulty domain.Difficulty) error {
	if playerID == "" || !mode.Valid() || !difficulty.Valid() {
		return domain.ErrValidationFailed
	}
	return s.selector.Restart(ctx, playerID, mode, difficulty)
}

// TopN exposes the read-only leaderboard query.
func (s *RoundService) TopN(ctx context.Context, mode domain.Mode, difficulty domain.Difficulty, n int) ([]domain.LeaderboardEntry, error) {
	if !mode.Valid() || !difficulty.Valid() {
		return nil, domain.ErrValidationFailed
	}
	return s.ranking.TopN(ctx, mode, difficulty, n)
}

// PositionOf exposes the player's leaderboard entry.
func (s *RoundService) PositionOf(ctx context.Context, playerID string, mode domain.Mode, difficulty domain.Difficulty) (domain.LeaderboardEntry, error) {
	if playerID == "" || !mode.Valid() || !difficulty.Valid() {
		return domain.LeaderboardEntry{}, domain.ErrValidationFailed
	}
	return s.ranking.PositionOf(ctx, playerID, mode, difficulty)
}

// targetTokens derives the ordered token sequence that gets scrambled:
// individual characters for idioms, provided word tokens for sentences.
func targetTokens(q domain.Question) []string {
	if q.Mode == domain.ModeSentence && len(q.Tokens) > 0 {
		tokens := make([]string, len(q.Tokens))
		copy(tokens, q.Tokens)
		return tokens
	}
	runes := []rune(q.Text)
	tokens := make([]string, 0, len(runes))
	for _, r := range runes {
		tokens = append(tokens, string(r))
	}
	return tokens
}

// hintContent synthesizes hint text from the question metadata: the
// definition first, then a first-token reveal, then usage or grammar
// notes with a two-token reveal as last resort.
func hintContent(round domain.Round, level int) string {
	switch level {
	case 1:
		if round.Meta.Definition != "" {
			return round.Meta.Definition
		}
		return firstTokens(round.TargetTokens, 1)
	case 2:
		reveal := firstTokens(round.TargetTokens, 1)
		if round.Meta.Pinyin != "" {
			return reveal + " (" + round.Meta.Pinyin + ")"
		}
		return reveal
	default:
		if round.Meta.Example != "" {
			return round.Meta.Example
		}
		if round.Meta.GrammarNote != "" {
			return round.Meta.GrammarNote
		}
		return firstTokens(round.TargetTokens, 2)
	}
}

func firstTokens(tokens []string, n int) string {
	if n > len(tokens) {
		n = len(tokens)
	}
	return strings.Join(tokens[:n], "")
}
