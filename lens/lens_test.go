package lens

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/c360/cogstream/errors"
	"github.com/c360/cogstream/types"
)

func TestRegistryResolvesFixedVariantSet(t *testing.T) {
	reg := NewRegistry(types.LensNeurotypical)

	for _, id := range types.LensIDs() {
		l, err := reg.Resolve(id)
		require.NoError(t, err, "lens %s should resolve", id)
		assert.Equal(t, id, l.ID())
	}
}

func TestRegistryUnknownLens(t *testing.T) {
	reg := NewRegistry(types.LensNeurotypical)

	_, err := reg.Resolve(types.LensID("telepathy"))
	require.Error(t, err)
	assert.True(t, cerrors.IsInvalid(err))
	assert.ErrorIs(t, err, cerrors.ErrUnknownLens)
}

func TestRegistryDefault(t *testing.T) {
	t.Run("configured default", func(t *testing.T) {
		reg := NewRegistry(types.LensADHDBurst)
		assert.Equal(t, types.LensADHDBurst, reg.DefaultID())
		assert.Equal(t, types.LensADHDBurst, reg.Default().ID())
	})

	t.Run("invalid default falls back to neurotypical", func(t *testing.T) {
		reg := NewRegistry(types.LensID("bogus"))
		assert.Equal(t, types.LensNeurotypical, reg.DefaultID())
		require.NotNil(t, reg.Default())
	})
}

func TestNeurotypicalIdentity(t *testing.T) {
	reg := NewRegistry(types.LensNeurotypical)
	l, err := reg.Resolve(types.LensNeurotypical)
	require.NoError(t, err)

	inputs := []string{"", "  ", "plain text", "multi\n\nparagraph text."}
	for _, in := range inputs {
		assert.Equal(t, in, l.Transform(in))
	}
}

func TestADHDBurstTransform(t *testing.T) {
	reg := NewRegistry(types.LensNeurotypical)
	l, err := reg.Resolve(types.LensADHDBurst)
	require.NoError(t, err)

	t.Run("empty passes through", func(t *testing.T) {
		assert.Equal(t, "", l.Transform(""))
		assert.Equal(t, "   ", l.Transform("   "))
	})

	t.Run("emphasizes action tokens", func(t *testing.T) {
		out := l.Transform("We should start the job and build the index.")
		assert.Contains(t, out, "**START**")
		assert.Contains(t, out, "**BUILD**")
	})

	t.Run("formats as bullets", func(t *testing.T) {
		out := l.Transform("One sentence here. Another sentence there.")
		assert.True(t, strings.HasPrefix(out, "* "))
	})

	t.Run("bounds chunk size", func(t *testing.T) {
		// 30 sentences of 10 words each must split into multiple chunks
		sentence := "alpha beta gamma delta epsilon zeta eta theta iota kappa. "
		out := l.Transform(strings.Repeat(sentence, 30))
		bullets := strings.Split(out, "\n\n")
		assert.Greater(t, len(bullets), 1)
		for _, b := range bullets {
			// Strip the marker, count words; +2 headroom for the marker itself
			words := len(strings.Fields(b)) - 1
			assert.LessOrEqual(t, words, chunkSizeWords+10, "chunk too large: %q", b)
		}
	})
}

func TestAutismPrecisionTransform(t *testing.T) {
	reg := NewRegistry(types.LensNeurotypical)
	l, err := reg.Resolve(types.LensAutismPrecision)
	require.NoError(t, err)

	t.Run("empty passes through", func(t *testing.T) {
		assert.Equal(t, "", l.Transform(""))
	})

	t.Run("marks long sequential lines", func(t *testing.T) {
		line := "First we gather all the inputs and then we validate every field carefully."
		out := l.Transform(line)
		assert.Contains(t, out, "[sequence]")
	})

	t.Run("marks causal relationships", func(t *testing.T) {
		line := "The cache was dropped because the upstream schema changed during the migration."
		out := l.Transform(line)
		assert.Contains(t, out, "-> because")
	})

	t.Run("adds structure overview for multiple paragraphs", func(t *testing.T) {
		out := l.Transform("Paragraph one stands alone.\n\nParagraph two stands alone as well.")
		assert.Contains(t, out, "Structure overview: 2 sections")
	})

	t.Run("short lines untouched", func(t *testing.T) {
		out := l.Transform("short line")
		assert.Equal(t, "short line", out)
	})
}

func TestDyslexiaSpatialTransform(t *testing.T) {
	reg := NewRegistry(types.LensNeurotypical)
	l, err := reg.Resolve(types.LensDyslexiaSpatial)
	require.NoError(t, err)

	t.Run("empty passes through", func(t *testing.T) {
		assert.Equal(t, "", l.Transform(""))
	})

	t.Run("anchors single chunk without map", func(t *testing.T) {
		out := l.Transform("one small paragraph")
		assert.True(t, strings.HasPrefix(out, "[NW] "))
		assert.NotContains(t, out, "Content map:")
	})

	t.Run("multiple chunks get map and navigation", func(t *testing.T) {
		out := l.Transform("First paragraph.\n\nSecond paragraph.\n\nThird paragraph.")
		assert.Contains(t, out, "Content map:")
		assert.Contains(t, out, "<next>")
		assert.Contains(t, out, "<prev>")
		assert.Contains(t, out, "<prev|next>")
	})

	t.Run("long paragraphs split into sentence groups", func(t *testing.T) {
		long := strings.Repeat("This is a sentence that fills space in the paragraph nicely. ", 8)
		out := l.Transform(long)
		assert.Contains(t, out, "[NE]")
	})
}

func TestTransformsDeterministic(t *testing.T) {
	reg := NewRegistry(types.LensNeurotypical)
	text := "First we start the run. Then we build because the pipeline demands it.\n\nFinally we execute everything."

	for _, id := range types.LensIDs() {
		l, err := reg.Resolve(id)
		require.NoError(t, err)
		first := l.Transform(text)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, l.Transform(text), "lens %s must be deterministic", id)
		}
	}
}
