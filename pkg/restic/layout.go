// Package restic reads the on-bucket shape of restic-format backup
// repositories: the namespace layout that assigns every object key an
// accounting role, the encrypted repository config, the scrypt-wrapped
// master key, and snapshot manifests.
//
// Only the pieces needed to account for and inspect a repository are
// implemented. This package never writes to a repository.
package restic

import (
	"fmt"
	"strings"
)

// Role is the accounting role of an object key within a repository
// namespace.
type Role int

const (
	// RolePayload marks pack files holding backed-up content.
	RolePayload Role = iota
	// RoleMetadata marks repository bookkeeping: config, keys, index,
	// snapshots.
	RoleMetadata
	// RoleIgnored marks objects excluded from accounting, such as locks.
	RoleIgnored
	// RoleUnknown marks keys matching no repository namespace. Encountering
	// one during accounting is fatal for the run.
	RoleUnknown
)

// String returns the role name used in logs, metrics and reports.
func (r Role) String() string {
	switch r {
	case RolePayload:
		return "payload"
	case RoleMetadata:
		return "metadata"
	case RoleIgnored:
		return "ignored"
	case RoleUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Layout identifies how a repository fans out its pack files.
type Layout int

const (
	// LayoutDefault stores packs under data/<2-hex>/<64-hex>.
	LayoutDefault Layout = iota
	// LayoutS3Legacy stores packs directly under data/<64-hex>.
	LayoutS3Legacy
)

// String returns the layout name used in configuration and display output.
func (l Layout) String() string {
	switch l {
	case LayoutDefault:
		return "default"
	case LayoutS3Legacy:
		return "s3legacy"
	default:
		return fmt.Sprintf("Layout(%d)", int(l))
	}
}

// ParseLayout parses a layout name. The empty string selects the default
// layout.
func ParseLayout(s string) (Layout, error) {
	switch s {
	case "", "default":
		return LayoutDefault, nil
	case "s3legacy":
		return LayoutS3Legacy, nil
	default:
		return LayoutDefault, fmt.Errorf("unknown repository layout %q (valid: default, s3legacy)", s)
	}
}

// Classifier assigns accounting roles to object keys by their structural
// position in the repository namespace. It is built once per run, holds no
// mutable state, and is safe for concurrent use.
//
// Classification is purely structural: it never reads object contents, so
// it stays cheap at bucket scale. Both pack layouts are recognized, since
// each key shape is unambiguous on its own.
type Classifier struct {
	prefix string
}

// NewClassifier creates a classifier for a repository rooted at prefix.
// A non-empty prefix is normalized to end with a single "/".
func NewClassifier(prefix string) *Classifier {
	return &Classifier{prefix: NormalizePrefix(prefix)}
}

// NormalizePrefix ensures a non-empty object-key prefix ends with exactly
// one "/".
func NormalizePrefix(prefix string) string {
	if prefix == "" {
		return ""
	}
	return strings.TrimRight(prefix, "/") + "/"
}

// Classify returns the accounting role for key.
//
// The repository namespace places every object in one of five top-level
// locations under the prefix:
//
//	config               repository configuration (metadata)
//	keys/<64-hex>        wrapped master keys (metadata)
//	index/<64-hex>       pack indexes (metadata)
//	snapshots/<64-hex>   snapshot manifests (metadata)
//	locks/<64-hex>       coordination locks (ignored)
//	data/<2-hex>/<64-hex> pack files, default layout (payload)
//	data/<64-hex>        pack files, s3legacy layout (payload)
//
// Any other key, including keys outside the prefix and keys with malformed
// identifiers, is RoleUnknown.
func (c *Classifier) Classify(key string) Role {
	rel, ok := strings.CutPrefix(key, c.prefix)
	if !ok {
		return RoleUnknown
	}

	if rel == "config" {
		return RoleMetadata
	}

	dir, name, ok := strings.Cut(rel, "/")
	if !ok {
		return RoleUnknown
	}

	switch dir {
	case "keys", "index", "snapshots":
		if isHexID(name) {
			return RoleMetadata
		}
	case "locks":
		if isHexID(name) {
			return RoleIgnored
		}
	case "data":
		// Either <64-hex> directly or a <2-hex> fan-out directory in
		// front of it.
		if isHexID(name) {
			return RolePayload
		}
		fan, id, ok := strings.Cut(name, "/")
		if ok && len(fan) == 2 && isHexByte(fan[0]) && isHexByte(fan[1]) && isHexID(id) {
			return RolePayload
		}
	}

	return RoleUnknown
}

// isHexID reports whether s is a 64-character lowercase hex identifier.
func isHexID(s string) bool {
	if len(s) != 64 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isHexByte(s[i]) {
			return false
		}
	}
	return true
}

func isHexByte(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')
}
