// Package entropy provides pure entropy scoring and zone classification for text
package entropy

import (
	"math"
	"sort"
	"strings"

	"github.com/c360/cogstream/types"
)

// Zone thresholds. Boundaries are inclusive on the lower zone: entropy of
// exactly 0.7 classifies as PATTERN, exactly 0.3 as CRYSTAL.
const (
	// ActiveThreshold is the exclusive lower bound for the ACTIVE zone
	ActiveThreshold = 0.7
	// PatternThreshold is the exclusive lower bound for the PATTERN zone
	PatternThreshold = 0.3
)

// Score computes the normalized Shannon entropy of the token (word)
// frequency distribution of text, scaled to [0,1] by dividing by
// log2(vocabulary size). A single-token vocabulary, empty input, and
// whitespace-only input all score 0.
//
// Score is pure and side-effect free: it is safe to call concurrently
// without locking.
func Score(text string) float64 {
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		return 0
	}

	freq := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		freq[tok]++
	}

	vocab := len(freq)
	if vocab <= 1 {
		return 0
	}

	// Map iteration order varies between runs; summing floats in a
	// fixed order keeps the score bit-identical for identical text.
	counts := make([]int, 0, vocab)
	for _, count := range freq {
		counts = append(counts, count)
	}
	sort.Ints(counts)

	total := float64(len(tokens))
	var h float64
	for _, count := range counts {
		p := float64(count) / total
		h -= p * math.Log2(p)
	}

	normalized := h / math.Log2(float64(vocab))

	// Guard against floating-point drift at the edges
	return math.Min(1, math.Max(0, normalized))
}

// ZoneFor maps an entropy score onto a memory zone. The mapping is a total,
// deterministic function of entropy under the stated thresholds: no gaps,
// no overlaps at the 0.3 and 0.7 boundaries.
func ZoneFor(score float64) types.Zone {
	switch {
	case score > ActiveThreshold:
		return types.ZoneActive
	case score > PatternThreshold:
		return types.ZonePattern
	default:
		return types.ZoneCrystal
	}
}

// Classify scores text and derives its memory zone in one call. It never
// fails: unusable input degrades to entropy 0 and the CRYSTAL zone.
func Classify(text string) (float64, types.Zone) {
	score := Score(text)
	return score, ZoneFor(score)
}
