package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZoneValidate(t *testing.T) {
	tests := []struct {
		name    string
		zone    Zone
		wantErr bool
	}{
		{"active valid", ZoneActive, false},
		{"pattern valid", ZonePattern, false},
		{"crystal valid", ZoneCrystal, false},
		{"empty invalid", Zone(""), true},
		{"unknown invalid", Zone("liminal"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.zone.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestZonesOrder(t *testing.T) {
	zones := Zones()
	require.Len(t, zones, 3)
	assert.Equal(t, ZoneActive, zones[0])
	assert.Equal(t, ZonePattern, zones[1])
	assert.Equal(t, ZoneCrystal, zones[2])
}

func TestLensIDValidate(t *testing.T) {
	for _, id := range LensIDs() {
		assert.NoError(t, id.Validate(), "lens %s should validate", id)
	}
	assert.Error(t, LensID("synesthesia").Validate())
	assert.Error(t, LensID("").Validate())
}

func TestNewNote(t *testing.T) {
	note := NewNote("zebra quasar nimbus", ZoneActive, 1.0, LensNeurotypical, SymbolicMetadata{})

	assert.NotEmpty(t, note.ID)
	assert.Equal(t, "zebra quasar nimbus", note.Text)
	assert.Equal(t, ZoneActive, note.Zone)
	assert.Equal(t, 1.0, note.Entropy)
	assert.False(t, note.CreatedAt.IsZero())
	assert.NoError(t, note.Validate())

	// IDs must be unique across notes
	other := NewNote("zebra quasar nimbus", ZoneActive, 1.0, LensNeurotypical, SymbolicMetadata{})
	assert.NotEqual(t, note.ID, other.ID)
}

func TestNoteValidate(t *testing.T) {
	valid := NewNote("text", ZoneCrystal, 0.0, LensNeurotypical, SymbolicMetadata{})
	require.NoError(t, valid.Validate())

	noID := valid
	noID.ID = ""
	assert.Error(t, noID.Validate())

	badZone := valid
	badZone.Zone = Zone("nowhere")
	assert.Error(t, badZone.Validate())

	badEntropy := valid
	badEntropy.Entropy = 1.5
	assert.Error(t, badEntropy.Validate())
}

func TestSymbolicMetadataIsEmpty(t *testing.T) {
	assert.True(t, SymbolicMetadata{}.IsEmpty())
	assert.False(t, SymbolicMetadata{
		MatchedGlyphs: []GlyphMatch{{Shape: "APEX", Topic: "initiation", Confidence: 0.5}},
	}.IsEmpty())
}

func TestNewZoneTransitionEvent(t *testing.T) {
	note := NewNote("some text", ZonePattern, 0.5, LensADHDBurst, SymbolicMetadata{})
	ev := NewZoneTransitionEvent(note)

	assert.Equal(t, TopicZoneTransition, ev.Topic)
	assert.Equal(t, TopicZoneTransition, ev.Payload["type"])

	data, ok := ev.Payload["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, note.ID, data["note_id"])
	assert.Equal(t, "pattern", data["output_zone"])
	assert.Equal(t, 0.5, data["entropy"])
	assert.NotZero(t, data["timestamp"])
}

func TestNewSymbolicMatchEvent(t *testing.T) {
	note := NewNote("ignite the core", ZoneActive, 0.9, LensNeurotypical, SymbolicMetadata{
		MatchedGlyphs: []GlyphMatch{
			{Shape: "APEX", Topic: "initiation", Confidence: 0.8, MatchedSeeds: []string{"ignite"}},
			{Shape: "CORE", Topic: "process", Confidence: 0.4, MatchedSeeds: []string{"core"}},
		},
		DominantTopic:        "initiation",
		ProcessingConfidence: 0.8,
	})
	ev := NewSymbolicMatchEvent(note)

	assert.Equal(t, TopicSymbolicMatch, ev.Topic)
	data, ok := ev.Payload["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "initiation", data["dominant_topic"])

	glyphs, ok := data["matched_glyphs"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, glyphs, 2)
	assert.Equal(t, "APEX", glyphs[0]["shape"])
}

func TestRoundPercentage(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		total    int
		expected float64
	}{
		{"zero total", 5, 0, 0},
		{"exact third rounds", 1, 3, 33.3},
		{"exact half", 1, 2, 50.0},
		{"thirty of hundred", 30, 100, 30.0},
		{"all", 7, 7, 100.0},
		{"none", 0, 9, 0.0},
		{"two thirds rounds up", 2, 3, 66.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, RoundPercentage(tt.count, tt.total), 0.0001)
		})
	}
}
