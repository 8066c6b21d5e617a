package usage

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/robinvandernoord/r2-d2/pkg/r2"
	"github.com/robinvandernoord/r2-d2/pkg/restic"
)

func TestReportAdd(t *testing.T) {
	var r Report

	r.Add(100, r2.TierStandard, restic.RolePayload)
	r.Add(200, r2.TierStandard, restic.RoleMetadata)
	r.Add(300, r2.TierInfrequentAccess, restic.RolePayload)
	r.Add(400, r2.TierInfrequentAccess, restic.RoleMetadata)

	want := Report{
		PayloadSize:                  100,
		ObjectCount:                  1,
		MetadataSize:                 200,
		UploadCount:                  1,
		InfrequentAccessPayloadSize:  300,
		InfrequentAccessObjectCount:  1,
		InfrequentAccessMetadataSize: 400,
		InfrequentAccessUploadCount:  1,
	}
	if r != want {
		t.Errorf("report = %+v, want %+v", r, want)
	}

	if r.TotalSize() != 1000 {
		t.Errorf("TotalSize = %d, want 1000", r.TotalSize())
	}
	if r.TotalObjects() != 4 {
		t.Errorf("TotalObjects = %d, want 4", r.TotalObjects())
	}
}

func TestReportAddIgnoresNonAccountedRoles(t *testing.T) {
	var r Report

	r.Add(100, r2.TierStandard, restic.RoleIgnored)
	r.Add(100, r2.TierStandard, restic.RoleUnknown)

	if r != (Report{}) {
		t.Errorf("report = %+v, want zero", r)
	}
}

func TestReportMergeCommutes(t *testing.T) {
	a := Report{PayloadSize: 10, ObjectCount: 1, InfrequentAccessMetadataSize: 5, InfrequentAccessUploadCount: 2}
	b := Report{PayloadSize: 3, ObjectCount: 2, MetadataSize: 7, UploadCount: 1}

	ab := a
	ab.Merge(&b)
	ba := b
	ba.Merge(&a)

	if ab != ba {
		t.Errorf("merge is not commutative: %+v vs %+v", ab, ba)
	}
	if ab.PayloadSize != 13 || ab.ObjectCount != 3 {
		t.Errorf("merge sums wrong: %+v", ab)
	}
}

func TestReportMergeAssociates(t *testing.T) {
	a := Report{PayloadSize: 1, ObjectCount: 1}
	b := Report{MetadataSize: 2, UploadCount: 1}
	c := Report{InfrequentAccessPayloadSize: 3, InfrequentAccessObjectCount: 1}

	left := a
	left.Merge(&b)
	left.Merge(&c)

	bc := b
	bc.Merge(&c)
	right := a
	right.Merge(&bc)

	if left != right {
		t.Errorf("merge is not associative: %+v vs %+v", left, right)
	}
}

func TestReportRows(t *testing.T) {
	r := Report{
		MetadataSize:                100,
		UploadCount:                 1,
		InfrequentAccessPayloadSize: 900,
		InfrequentAccessObjectCount: 1,
	}

	rows := r.Rows()
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want 4", len(rows))
	}
	for _, row := range rows {
		if len(row) != len(r.Headers()) {
			t.Fatalf("row %v has %d cells, want %d", row, len(row), len(r.Headers()))
		}
	}

	// Standard metadata row carries the 100 bytes.
	if rows[1][0] != "Standard" || rows[1][1] != "metadata" || rows[1][2] != "1" {
		t.Errorf("standard metadata row = %v", rows[1])
	}
	// Cold payload row carries the 900 bytes.
	if rows[2][0] != "InfrequentAccess" || rows[2][1] != "payload" || rows[2][2] != "1" {
		t.Errorf("cold payload row = %v", rows[2])
	}
	if !strings.Contains(rows[2][3], "900") {
		t.Errorf("cold payload size cell = %q, want it to show 900 bytes", rows[2][3])
	}
}

func TestReportJSONFieldNames(t *testing.T) {
	r := Report{MetadataSize: 100, UploadCount: 1, InfrequentAccessPayloadSize: 900, InfrequentAccessObjectCount: 1}

	raw, err := json.Marshal(&r)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	for _, name := range []string{
		"end",
		"payload_size", "metadata_size", "object_count", "upload_count",
		"infrequent_access_payload_size", "infrequent_access_metadata_size",
		"infrequent_access_object_count", "infrequent_access_upload_count",
	} {
		if _, ok := fields[name]; !ok {
			t.Errorf("marshaled report is missing field %q", name)
		}
	}

	if fields["metadata_size"] != float64(100) {
		t.Errorf("metadata_size = %v, want 100", fields["metadata_size"])
	}
	if fields["infrequent_access_payload_size"] != float64(900) {
		t.Errorf("infrequent_access_payload_size = %v, want 900", fields["infrequent_access_payload_size"])
	}
}
