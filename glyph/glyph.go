// Package glyph provides symbolic pattern matching against glyph packs
package glyph

import (
	"regexp"
	"sort"
	"strings"

	"github.com/c360/cogstream/types"
)

// Processor is the symbolic-processing collaborator contract. Match is
// total: it may return an empty result but never fails, for any input.
type Processor interface {
	Match(text string) types.SymbolicMetadata
}

// Shape is a single glyph definition: a semantic topic plus the seed
// tokens whose presence in text indicates the glyph.
type Shape struct {
	Topic string   `json:"topic"`
	Seeds []string `json:"seeds"`
}

// Seed-match confidence weights. An exact word-boundary hit scores higher
// than a bare substring hit; per-glyph confidence is the average over its
// matched seeds, capped at 1.
const (
	exactMatchScore   = 1.0
	partialMatchScore = 0.7
)

// SeedProcessor matches text against a fixed set of glyph shapes using
// seed-token matching. It is immutable after construction and safe for
// concurrent use.
type SeedProcessor struct {
	shapes map[string]compiledShape
}

type compiledShape struct {
	topic string
	seeds []compiledSeed
}

type compiledSeed struct {
	raw   string
	lower string
	word  *regexp.Regexp
}

// NewSeedProcessor builds a processor for the given shapes. Shape and seed
// order do not affect results: matches are ordered by descending confidence
// with shape name as the tiebreaker.
func NewSeedProcessor(shapes map[string]Shape) *SeedProcessor {
	compiled := make(map[string]compiledShape, len(shapes))
	for name, shape := range shapes {
		cs := compiledShape{topic: shape.Topic, seeds: make([]compiledSeed, 0, len(shape.Seeds))}
		for _, seed := range shape.Seeds {
			lower := strings.ToLower(seed)
			cs.seeds = append(cs.seeds, compiledSeed{
				raw:   seed,
				lower: lower,
				word:  regexp.MustCompile(`\b` + regexp.QuoteMeta(lower) + `\b`),
			})
		}
		compiled[name] = cs
	}
	return &SeedProcessor{shapes: compiled}
}

// NewDefaultProcessor builds a processor over the built-in glyph pack
func NewDefaultProcessor() *SeedProcessor {
	return NewSeedProcessor(DefaultPack())
}

// Match runs seed matching for every shape against text and returns the
// ordered symbolic metadata. Empty or whitespace-only input yields the
// empty result.
func (p *SeedProcessor) Match(text string) types.SymbolicMetadata {
	if strings.TrimSpace(text) == "" {
		return types.SymbolicMetadata{}
	}
	textLower := strings.ToLower(text)

	var matches []types.GlyphMatch
	for name, shape := range p.shapes {
		if m, ok := matchShape(textLower, name, shape); ok {
			matches = append(matches, m)
		}
	}

	if len(matches) == 0 {
		return types.SymbolicMetadata{}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Confidence != matches[j].Confidence {
			return matches[i].Confidence > matches[j].Confidence
		}
		return matches[i].Shape < matches[j].Shape
	})

	return types.SymbolicMetadata{
		MatchedGlyphs:        matches,
		DominantTopic:        matches[0].Topic,
		ProcessingConfidence: matches[0].Confidence,
	}
}

// Shapes returns the shape names known to the processor, sorted
func (p *SeedProcessor) Shapes() []string {
	names := make([]string, 0, len(p.shapes))
	for name := range p.shapes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// matchShape scores one glyph against the lowercased text. Exact
// word-boundary hits outweigh substring hits; the glyph matches when at
// least one seed is present.
func matchShape(textLower, name string, shape compiledShape) (types.GlyphMatch, bool) {
	var matchedSeeds []string
	var totalScore float64

	for _, seed := range shape.seeds {
		switch {
		case seed.word.MatchString(textLower):
			matchedSeeds = append(matchedSeeds, seed.raw)
			totalScore += exactMatchScore
		case strings.Contains(textLower, seed.lower):
			matchedSeeds = append(matchedSeeds, seed.raw)
			totalScore += partialMatchScore
		}
	}

	if len(matchedSeeds) == 0 {
		return types.GlyphMatch{}, false
	}

	confidence := totalScore / float64(len(matchedSeeds))
	if confidence > 1 {
		confidence = 1
	}

	return types.GlyphMatch{
		Shape:        name,
		Topic:        shape.topic,
		Confidence:   confidence,
		MatchedSeeds: matchedSeeds,
	}, true
}

// NopProcessor is a Processor that never matches. Useful where symbolic
// processing is disabled by configuration.
type NopProcessor struct{}

// Match always returns the empty result
func (NopProcessor) Match(string) types.SymbolicMetadata {
	return types.SymbolicMetadata{}
}
