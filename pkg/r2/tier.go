package r2

import (
	"fmt"
	"strings"
)

// Tier is the storage tier an object was observed in.
//
// Derived from the object store's per-object storage-class metadata at
// listing time. An object may change tier between two accounting runs
// (lifecycle transition); that is expected and not an error.
type Tier int

const (
	// TierStandard is hot storage (R2 "STANDARD").
	TierStandard Tier = iota

	// TierInfrequentAccess is cold storage (R2 "STANDARD_IA" /
	// "InfrequentAccess").
	TierInfrequentAccess
)

// String returns the tier name used in logs and display output.
func (t Tier) String() string {
	switch t {
	case TierStandard:
		return "Standard"
	case TierInfrequentAccess:
		return "InfrequentAccess"
	default:
		return fmt.Sprintf("Tier(%d)", int(t))
	}
}

// TierFromStorageClass maps a raw storage-class string to a Tier.
//
// Recognized classes (case-insensitive):
//   - "STANDARD" -> TierStandard
//   - "STANDARD_IA", "INFREQUENT_ACCESS", "InfrequentAccess" -> TierInfrequentAccess
//
// An empty or unrecognized class returns (TierStandard, false). Callers
// decide what to do with unknown classes via the configured policy; the
// mapping itself never guesses silently.
func TierFromStorageClass(class string) (Tier, bool) {
	switch strings.ToUpper(class) {
	case "STANDARD":
		return TierStandard, true
	case "STANDARD_IA", "INFREQUENT_ACCESS", "INFREQUENTACCESS":
		return TierInfrequentAccess, true
	default:
		return TierStandard, false
	}
}
