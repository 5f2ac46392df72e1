package glyph

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"

	"github.com/c360/cogstream/errors"
)

// packSchema validates glyph pack files before they reach the matcher.
// A pack is a map of shape name to {topic, seeds}; empty seed lists are
// rejected because a seedless glyph can never match.
const packSchema = `{
  "type": "object",
  "required": ["shapes"],
  "properties": {
    "shapes": {
      "type": "object",
      "minProperties": 1,
      "additionalProperties": {
        "type": "object",
        "required": ["topic", "seeds"],
        "properties": {
          "topic": {"type": "string", "minLength": 1},
          "seeds": {
            "type": "array",
            "minItems": 1,
            "items": {"type": "string", "minLength": 1}
          }
        }
      }
    }
  }
}`

// pack is the on-disk glyph pack format
type pack struct {
	Shapes map[string]Shape `json:"shapes"`
}

// LoadPack reads and validates a glyph pack JSON file. The file is checked
// against the pack schema before decoding, so malformed packs fail with a
// classified invalid error instead of producing a half-usable processor.
func LoadPack(path string) (map[string]Shape, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapInvalid(err, "GlyphPack", "LoadPack", "reading pack file")
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(packSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, errors.WrapInvalid(err, "GlyphPack", "LoadPack", "schema validation")
	}
	if !result.Valid() {
		return nil, errors.WrapInvalid(errors.ErrInvalidGlyph, "GlyphPack", "LoadPack",
			fmt.Sprintf("pack %s: %v", path, result.Errors()))
	}

	var p pack
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errors.WrapInvalid(err, "GlyphPack", "LoadPack", "decoding pack")
	}
	return p.Shapes, nil
}

// DefaultPack returns the built-in glyph shapes used when no pack file is
// configured. Topics and seeds mirror the standard five-shape pack.
func DefaultPack() map[string]Shape {
	return map[string]Shape{
		"APEX": {
			Topic: "initiation",
			Seeds: []string{"apex", "ignite", "start", "init", "query"},
		},
		"CORE": {
			Topic: "process",
			Seeds: []string{"core", "resolve", "process", "logic", "reason"},
		},
		"EMIT": {
			Topic: "action",
			Seeds: []string{"emit", "launch", "trigger", "output", "send"},
		},
		"ROOT": {
			Topic: "ethics",
			Seeds: []string{"root", "link", "thread", "memory", "ethics", "bind"},
		},
		"CUBE": {
			Topic: "stability",
			Seeds: []string{"cube", "resonate", "stabilize", "harmonize", "ground"},
		},
	}
}
