package app

import (
	"math/rand"
	"sync"
	"time"
)

// maxScrambleRetries bounds the reshuffle attempts when a permutation comes
// back identical to the input. After the last attempt the identical result
// is accepted rather than looping.
const maxScrambleRetries = 3

// ScrambleEngine produces a uniformly random permutation of an ordered
// token sequence. It is pure apart from its random source.
type ScrambleEngine struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewScrambleEngine() *ScrambleEngine {
	return NewScrambleEngineWithSeed(time.Now().UnixNano())
}

// NewScrambleEngineWithSeed allows deterministic shuffles in tests.
func NewScrambleEngineWithSeed(seed int64) *ScrambleEngine {
	return &ScrambleEngine{rnd: rand.New(rand.NewSource(seed))}
}

// Scramble returns a shuffled copy of tokens. Inputs shorter than two
// tokens are returned as-is. The result differs from the input except when
// all retries produce the identical ordering.
func (e *ScrambleEngine) Scramble(tokens []string) []string {
	out := make([]string, len(tokens))
	copy(out, tokens)
	if len(tokens) < 2 {
		return out
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for attempt := 0; attempt < maxScrambleRetries; attempt++ {
		e.shuffleLocked(out)
		if !equalTokens(out, tokens) {
			break
		}
	}
	return out
}

// shuffleLocked is a Fisher-Yates shuffle; caller holds e.mu.
func (e *ScrambleEngine) shuffleLocked(tokens []string) {
	for i := len(tokens) - 1; i > 0; i-- {
		j := e.rnd.Intn(i + 1)
		tokens[i], tokens[j] = tokens[j], tokens[i]
	}
}

func equalTokens(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
