// Package usage computes a tier- and role-aware accounting of the objects
// a repository holds in an object store: bytes and object counts split by
// storage tier (Standard vs InfrequentAccess) and by role (payload pack
// files vs repository metadata).
package usage

import (
	"strconv"
	"time"

	"github.com/robinvandernoord/r2-d2/internal/bytesize"
	"github.com/robinvandernoord/r2-d2/pkg/r2"
	"github.com/robinvandernoord/r2-d2/pkg/restic"
)

// Report is the accounting produced by one computation run. It is a pure
// value: constructed fresh per run, owned by the caller, never shared.
//
// ObjectCount and UploadCount are the Standard-tier payload and metadata
// object counts; the InfrequentAccess fields mirror them for the cold
// tier. Every accounted object lands in exactly one (tier, role) bucket,
// so the four size fields sum to the total accounted bytes and the four
// count fields to the total accounted objects.
type Report struct {
	// End is the wall-clock time the listing began, stamped once by the
	// computation.
	End time.Time `json:"end" yaml:"end"`

	PayloadSize  uint64 `json:"payload_size" yaml:"payload_size"`
	MetadataSize uint64 `json:"metadata_size" yaml:"metadata_size"`
	ObjectCount  uint64 `json:"object_count" yaml:"object_count"`
	UploadCount  uint64 `json:"upload_count" yaml:"upload_count"`

	InfrequentAccessPayloadSize  uint64 `json:"infrequent_access_payload_size" yaml:"infrequent_access_payload_size"`
	InfrequentAccessMetadataSize uint64 `json:"infrequent_access_metadata_size" yaml:"infrequent_access_metadata_size"`
	InfrequentAccessObjectCount  uint64 `json:"infrequent_access_object_count" yaml:"infrequent_access_object_count"`
	InfrequentAccessUploadCount  uint64 `json:"infrequent_access_upload_count" yaml:"infrequent_access_upload_count"`
}

// Add accumulates one classified object into the matching (tier, role)
// bucket. Roles other than payload and metadata are not accounted; the
// reconciler filters them before calling Add.
func (r *Report) Add(size uint64, tier r2.Tier, role restic.Role) {
	switch {
	case tier == r2.TierStandard && role == restic.RolePayload:
		r.PayloadSize += size
		r.ObjectCount++
	case tier == r2.TierStandard && role == restic.RoleMetadata:
		r.MetadataSize += size
		r.UploadCount++
	case tier == r2.TierInfrequentAccess && role == restic.RolePayload:
		r.InfrequentAccessPayloadSize += size
		r.InfrequentAccessObjectCount++
	case tier == r2.TierInfrequentAccess && role == restic.RoleMetadata:
		r.InfrequentAccessMetadataSize += size
		r.InfrequentAccessUploadCount++
	}
}

// Merge folds other's counters into r. Merging is commutative and
// associative, so partial reports accumulated concurrently can be reduced
// in any order. End is not merged; the computation stamps it once on the
// final report.
func (r *Report) Merge(other *Report) {
	r.PayloadSize += other.PayloadSize
	r.MetadataSize += other.MetadataSize
	r.ObjectCount += other.ObjectCount
	r.UploadCount += other.UploadCount

	r.InfrequentAccessPayloadSize += other.InfrequentAccessPayloadSize
	r.InfrequentAccessMetadataSize += other.InfrequentAccessMetadataSize
	r.InfrequentAccessObjectCount += other.InfrequentAccessObjectCount
	r.InfrequentAccessUploadCount += other.InfrequentAccessUploadCount
}

// TotalSize returns the total accounted bytes across all buckets.
func (r *Report) TotalSize() uint64 {
	return r.PayloadSize + r.MetadataSize +
		r.InfrequentAccessPayloadSize + r.InfrequentAccessMetadataSize
}

// TotalObjects returns the total accounted objects across all buckets.
func (r *Report) TotalObjects() uint64 {
	return r.ObjectCount + r.UploadCount +
		r.InfrequentAccessObjectCount + r.InfrequentAccessUploadCount
}

// Headers returns the display column headers.
func (r *Report) Headers() []string {
	return []string{"TIER", "ROLE", "OBJECTS", "SIZE"}
}

// Rows returns one display row per (tier, role) bucket, in a fixed order.
// Both renderings of a report, this one and the JSON form, derive from the
// same counters.
func (r *Report) Rows() [][]string {
	row := func(tier r2.Tier, role restic.Role, objects, size uint64) []string {
		return []string{
			tier.String(),
			role.String(),
			formatCount(objects),
			bytesize.ByteSize(size).String(),
		}
	}

	return [][]string{
		row(r2.TierStandard, restic.RolePayload, r.ObjectCount, r.PayloadSize),
		row(r2.TierStandard, restic.RoleMetadata, r.UploadCount, r.MetadataSize),
		row(r2.TierInfrequentAccess, restic.RolePayload, r.InfrequentAccessObjectCount, r.InfrequentAccessPayloadSize),
		row(r2.TierInfrequentAccess, restic.RoleMetadata, r.InfrequentAccessUploadCount, r.InfrequentAccessMetadataSize),
	}
}

func formatCount(n uint64) string {
	return strconv.FormatUint(n, 10)
}
