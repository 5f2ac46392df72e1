package lens

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/c360/cogstream/types"
)

// neurotypicalLens is the baseline identity transform
type neurotypicalLens struct{}

func (neurotypicalLens) ID() types.LensID { return types.LensNeurotypical }

func (neurotypicalLens) Transform(text string) string { return text }

// adhdBurstLens chunks text into bounded word-count segments formatted as
// scannable bullets and emphasizes action-oriented tokens.
type adhdBurstLens struct{}

// chunkSizeWords bounds the attention-burst segment size
const chunkSizeWords = 50

var (
	sentenceSplit = regexp.MustCompile(`(?:[.!?])\s+`)
	actionPattern = regexp.MustCompile(`(?i)\b(start|begin|launch|create|build|run|execute|activate)\b`)
)

func (adhdBurstLens) ID() types.LensID { return types.LensADHDBurst }

func (adhdBurstLens) Transform(text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	chunks := chunkByWords(splitSentences(text), chunkSizeWords)

	bullets := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		emphasized := actionPattern.ReplaceAllStringFunc(chunk, func(m string) string {
			return "**" + strings.ToUpper(m) + "**"
		})
		bullets = append(bullets, "* "+emphasized)
	}

	return strings.Join(bullets, "\n\n")
}

// autismPrecisionLens injects explicit structural and category markers so
// implicit organization becomes visible.
type autismPrecisionLens struct{}

var (
	sequenceWords = []string{"first", "then", "next", "finally"}
	logicWords    = []string{"because", "therefore", "however"}
	causalPattern = regexp.MustCompile(`(?i)\b(because|since|therefore|thus|hence|consequently)\b`)
)

func (autismPrecisionLens) ID() types.LensID { return types.LensAutismPrecision }

func (autismPrecisionLens) Transform(text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	paragraphs := splitParagraphs(text)

	out := make([]string, 0, len(paragraphs))
	for _, para := range paragraphs {
		lines := strings.Split(para, "\n")
		for i, line := range lines {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || len(trimmed) <= 50 {
				lines[i] = trimmed
				continue
			}
			lower := strings.ToLower(trimmed)
			switch {
			case containsAnyWord(lower, sequenceWords):
				lines[i] = "[sequence] " + trimmed
			case containsAnyWord(lower, logicWords):
				lines[i] = "[logic] " + trimmed
			default:
				lines[i] = "[detail] " + trimmed
			}
		}
		marked := strings.Join(lines, "\n")
		marked = causalPattern.ReplaceAllString(marked, "-> $1")
		out = append(out, marked)
	}

	result := strings.Join(out, "\n\n")
	if len(out) > 1 {
		result = fmt.Sprintf("Structure overview: %d sections\n\n%s", len(out), result)
	}
	return result
}

// dyslexiaSpatialLens injects spatial anchor markers and chunks text by
// visual grouping with navigation hints between chunks.
type dyslexiaSpatialLens struct{}

var spatialAnchors = []string{"[NW]", "[NE]", "[SW]", "[SE]", "[C]"}

func (dyslexiaSpatialLens) ID() types.LensID { return types.LensDyslexiaSpatial }

func (dyslexiaSpatialLens) Transform(text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	chunks := visualChunks(text)

	out := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		anchored := spatialAnchors[i%len(spatialAnchors)] + " " + chunk

		var nav []string
		if i > 0 {
			nav = append(nav, "prev")
		}
		if i < len(chunks)-1 {
			nav = append(nav, "next")
		}
		if len(nav) > 0 {
			anchored += " <" + strings.Join(nav, "|") + ">"
		}

		// Indent alternating chunks for spatial variety in long layouts
		if len(chunks) > 3 && i%2 == 1 {
			anchored = "   -> " + anchored
		}
		out = append(out, anchored)
	}

	result := strings.Join(out, "\n\n")
	if len(chunks) > 1 {
		mapAnchors := make([]string, 0, 5)
		for i := 0; i < len(chunks) && i < 5; i++ {
			mapAnchors = append(mapAnchors, spatialAnchors[i%len(spatialAnchors)])
		}
		if len(chunks) > 5 {
			mapAnchors = append(mapAnchors, "...")
		}
		result = "Content map: " + strings.Join(mapAnchors, " > ") + "\n\n" + result
	}
	return result
}

// splitSentences splits text at sentence-final punctuation
func splitSentences(text string) []string {
	parts := sentenceSplit.Split(strings.TrimSpace(text), -1)
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// splitParagraphs splits text on blank lines
func splitParagraphs(text string) []string {
	parts := strings.Split(text, "\n\n")
	paragraphs := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			paragraphs = append(paragraphs, s)
		}
	}
	return paragraphs
}

// chunkByWords groups sentences into chunks bounded by maxWords. A single
// sentence longer than the bound still forms its own chunk.
func chunkByWords(sentences []string, maxWords int) []string {
	var chunks []string
	var current []string
	wordCount := 0

	for _, sentence := range sentences {
		n := len(strings.Fields(sentence))
		if wordCount+n > maxWords && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
			current = nil
			wordCount = 0
		}
		current = append(current, sentence)
		wordCount += n
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}

// visualChunks splits text into visually sized groups: paragraphs as-is,
// long paragraphs broken into two-sentence groups.
func visualChunks(text string) []string {
	var chunks []string
	for _, para := range splitParagraphs(text) {
		if len(para) <= 200 {
			chunks = append(chunks, para)
			continue
		}
		sentences := splitSentences(para)
		for i := 0; i < len(sentences); i += 2 {
			end := i + 2
			if end > len(sentences) {
				end = len(sentences)
			}
			chunks = append(chunks, strings.Join(sentences[i:end], " "))
		}
	}
	return chunks
}

// containsAnyWord reports whether lower contains any of the given words
func containsAnyWord(lower string, words []string) bool {
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
