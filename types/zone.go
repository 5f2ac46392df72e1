// Package types contains shared domain types used across the CogStream engine
package types

import (
	"fmt"

	"github.com/c360/cogstream/errors"
)

// Zone represents a memory zone in the three-zone classification system.
// A zone is not an independent entity: it is a note attribute and a bucket
// key in the zone memory manager.
type Zone string

// Zone constants, ordered from highest to lowest entropy
const (
	// ZoneActive holds high-entropy content (entropy > 0.7): novel,
	// information-dense input under real-time processing.
	ZoneActive Zone = "active"
	// ZonePattern holds mid-entropy content (0.3 < entropy <= 0.7):
	// semi-stable, emerging patterns.
	ZonePattern Zone = "pattern"
	// ZoneCrystal holds low-entropy content (entropy <= 0.3): stable,
	// well-known patterns.
	ZoneCrystal Zone = "crystal"
)

// Zones returns all memory zones in descending entropy order.
// The order is stable so metric output is deterministic.
func Zones() []Zone {
	return []Zone{ZoneActive, ZonePattern, ZoneCrystal}
}

// Validate ensures the zone is a known variant
func (z Zone) Validate() error {
	switch z {
	case ZoneActive, ZonePattern, ZoneCrystal:
		return nil
	default:
		return errors.WrapInvalid(errors.ErrUnknownZone, "Zone", "Validate",
			fmt.Sprintf("unknown zone: %s", string(z)))
	}
}

// String implements fmt.Stringer for Zone
func (z Zone) String() string {
	return string(z)
}
