package entropy

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/cogstream/types"
)

func TestScoreEmptyInput(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty string", ""},
		{"spaces only", "   "},
		{"tabs and newlines", "\t\n  \t"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, 0.0, Score(tt.text))
		})
	}
}

func TestScoreSingleTokenVocabulary(t *testing.T) {
	// A vocabulary of one token carries no information
	assert.Equal(t, 0.0, Score("a a a a"))
	assert.Equal(t, 0.0, Score("word"))
	// Case folding collapses the vocabulary
	assert.Equal(t, 0.0, Score("Echo echo ECHO"))
}

func TestScoreUniformDistribution(t *testing.T) {
	// All-unique tokens maximize entropy: H = log2(n), normalized to 1
	assert.InDelta(t, 1.0, Score("zebra quasar nimbus glyph"), 1e-9)
	assert.InDelta(t, 1.0, Score("one two"), 1e-9)
	assert.InDelta(t, 1.0, Score("a b c d e f g h"), 1e-9)
}

func TestScoreSkewedDistribution(t *testing.T) {
	// "a a a b": p(a)=3/4, p(b)=1/4
	// H = -(0.75*log2(0.75) + 0.25*log2(0.25)), normalized by log2(2)=1
	expected := -(0.75*math.Log2(0.75) + 0.25*math.Log2(0.25))
	assert.InDelta(t, expected, Score("a a a b"), 1e-9)
}

func TestScoreRange(t *testing.T) {
	inputs := []string{
		"",
		"one",
		"the the the a a b",
		"every single token here differs wildly from neighbors",
		strings.Repeat("loop ", 200) + "tail",
	}

	for _, text := range inputs {
		score := Score(text)
		assert.GreaterOrEqual(t, score, 0.0, "input %q", text)
		assert.LessOrEqual(t, score, 1.0, "input %q", text)
	}
}

func TestScoreDeterministic(t *testing.T) {
	text := "pattern emergence beats raw novelty sometimes sometimes"
	first := Score(text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Score(text))
	}
}

func TestScoreDeterministicWideVocabulary(t *testing.T) {
	// A large vocabulary spreads the frequency table across many map
	// buckets; the score must still be bit-identical on every call.
	var b strings.Builder
	for i := 0; i < 200; i++ {
		fmt.Fprintf(&b, "token%03d ", i)
		if i%3 == 0 {
			fmt.Fprintf(&b, "token%03d ", i)
		}
	}
	text := b.String()

	first := Score(text)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, Score(text))
	}

	_, firstZone := Classify(text)
	for i := 0; i < 100; i++ {
		_, zone := Classify(text)
		assert.Equal(t, firstZone, zone)
	}
}

func TestZoneForThresholds(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		expected types.Zone
	}{
		{"zero is crystal", 0.0, types.ZoneCrystal},
		{"low is crystal", 0.15, types.ZoneCrystal},
		{"boundary 0.3 is crystal", 0.3, types.ZoneCrystal},
		{"just above 0.3 is pattern", 0.3000001, types.ZonePattern},
		{"mid is pattern", 0.5, types.ZonePattern},
		{"boundary 0.7 is pattern", 0.7, types.ZonePattern},
		{"just above 0.7 is active", 0.7000001, types.ZoneActive},
		{"high is active", 0.95, types.ZoneActive},
		{"max is active", 1.0, types.ZoneActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ZoneFor(tt.score))
		})
	}
}

func TestClassify(t *testing.T) {
	t.Run("repeated token routes to crystal", func(t *testing.T) {
		score, zone := Classify("a a a a")
		assert.Equal(t, 0.0, score)
		assert.Equal(t, types.ZoneCrystal, zone)
	})

	t.Run("four unique tokens route to active", func(t *testing.T) {
		score, zone := Classify("zebra quasar nimbus glyph")
		assert.InDelta(t, 1.0, score, 1e-9)
		assert.Equal(t, types.ZoneActive, zone)
	})

	t.Run("whitespace routes to crystal", func(t *testing.T) {
		score, zone := Classify("   \t ")
		assert.Equal(t, 0.0, score)
		assert.Equal(t, types.ZoneCrystal, zone)
	})

	t.Run("zone re-derivation is stable", func(t *testing.T) {
		text := "mixed bag of repeated repeated tokens tokens"
		_, first := Classify(text)
		for i := 0; i < 5; i++ {
			_, zone := Classify(text)
			require.Equal(t, first, zone)
		}
	})
}

func TestClassifyConcurrent(t *testing.T) {
	// Classify is pure; hammer it from multiple goroutines under -race
	texts := []string{
		"a a a a",
		"zebra quasar nimbus glyph",
		"the quick brown fox the quick",
	}

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 500; j++ {
				for _, text := range texts {
					score, _ := Classify(text)
					if score < 0 || score > 1 {
						t.Errorf("score out of range: %f", score)
						return
					}
				}
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
