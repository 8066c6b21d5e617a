package restic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/robinvandernoord/r2-d2/internal/telemetry"
)

// ErrNoPassword is returned by operations that read encrypted objects when
// the repository was opened without a password.
var ErrNoPassword = errors.New("repository password required")

// Snapshot is a decrypted snapshot manifest.
type Snapshot struct {
	// ID is the object ID the manifest is stored under. The lister fills
	// it in after parsing; it is not part of the manifest itself.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	Time     time.Time `json:"time" yaml:"time"`
	Parent   string    `json:"parent,omitempty" yaml:"parent,omitempty"`
	Tree     string    `json:"tree" yaml:"tree"`
	Paths    []string  `json:"paths" yaml:"paths"`
	Hostname string    `json:"hostname" yaml:"hostname"`
	Username string    `json:"username" yaml:"username"`
	Tags     []string  `json:"tags,omitempty" yaml:"tags,omitempty"`

	ProgramVersion string `json:"program_version,omitempty" yaml:"program_version,omitempty"`
}

// ShortID returns the abbreviated snapshot identifier used in display
// output.
func (s Snapshot) ShortID() string {
	if len(s.ID) < 8 {
		return s.ID
	}
	return s.ID[:8]
}

// Snapshots lists and decrypts every snapshot manifest in the repository,
// oldest first. Requires the repository to be open with a password.
func (r *Repository) Snapshots(ctx context.Context) ([]Snapshot, error) {
	if r.key == nil {
		return nil, ErrNoPassword
	}

	ctx, span := telemetry.StartRepoSpan(ctx, "snapshots", r.prefix)
	defer span.End()

	var snapshots []Snapshot

	it := r.store.List(ctx, r.prefix+"snapshots/")
	for it.Next() {
		obs := it.Object()

		id := strings.TrimPrefix(obs.Key, r.prefix+"snapshots/")
		if !isHexID(id) {
			return nil, fmt.Errorf("malformed snapshot key %s", obs.Key)
		}

		raw, err := r.store.Get(ctx, obs.Key)
		if err != nil {
			return nil, fmt.Errorf("reading snapshot %s: %w", id[:8], err)
		}

		plain, err := r.key.Decrypt(raw)
		if err != nil {
			return nil, fmt.Errorf("decrypting snapshot %s: %w", id[:8], err)
		}

		var snap Snapshot
		if err := json.Unmarshal(plain, &snap); err != nil {
			return nil, fmt.Errorf("parsing snapshot %s: %w", id[:8], err)
		}
		snap.ID = id

		snapshots = append(snapshots, snap)
	}
	if err := it.Err(); err != nil {
		return nil, err
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Time.Before(snapshots[j].Time)
	})

	telemetry.SetAttributes(ctx, telemetry.Objects(uint64(len(snapshots))))
	return snapshots, nil
}
