package restic

import (
	"strings"
	"testing"
)

const testID = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestClassify(t *testing.T) {
	c := NewClassifier("backups")

	tests := []struct {
		name string
		key  string
		want Role
	}{
		{"config", "backups/config", RoleMetadata},
		{"key file", "backups/keys/" + testID, RoleMetadata},
		{"index file", "backups/index/" + testID, RoleMetadata},
		{"snapshot", "backups/snapshots/" + testID, RoleMetadata},
		{"lock", "backups/locks/" + testID, RoleIgnored},
		{"pack default layout", "backups/data/01/" + testID, RolePayload},
		{"pack s3legacy layout", "backups/data/" + testID, RolePayload},

		{"outside prefix", "other/config", RoleUnknown},
		{"bare prefix entry", "backups/stray.txt", RoleUnknown},
		{"uppercase id", "backups/index/" + strings.ToUpper(testID), RoleUnknown},
		{"short id", "backups/index/" + testID[:63], RoleUnknown},
		{"long id", "backups/index/" + testID + "0", RoleUnknown},
		{"non-hex id", "backups/data/zz/" + testID, RoleUnknown},
		{"fan-out too long", "backups/data/012/" + testID, RoleUnknown},
		{"empty namespace entry", "backups/keys/", RoleUnknown},
		{"nested too deep", "backups/data/01/02/" + testID, RoleUnknown},
		{"unknown namespace", "backups/blobs/" + testID, RoleUnknown},
		{"config in subdir", "backups/data/config", RoleUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Classify(tt.key); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestClassifyEmptyPrefix(t *testing.T) {
	c := NewClassifier("")

	if got := c.Classify("config"); got != RoleMetadata {
		t.Errorf("Classify(config) = %v, want metadata", got)
	}
	if got := c.Classify("data/01/" + testID); got != RolePayload {
		t.Errorf("Classify(data pack) = %v, want payload", got)
	}
}

func TestNormalizePrefix(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"backups", "backups/"},
		{"backups/", "backups/"},
		{"backups//", "backups/"},
		{"a/b", "a/b/"},
	}

	for _, tt := range tests {
		if got := NormalizePrefix(tt.in); got != tt.want {
			t.Errorf("NormalizePrefix(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseLayout(t *testing.T) {
	tests := []struct {
		in      string
		want    Layout
		wantErr bool
	}{
		{"", LayoutDefault, false},
		{"default", LayoutDefault, false},
		{"s3legacy", LayoutS3Legacy, false},
		{"bogus", LayoutDefault, true},
	}

	for _, tt := range tests {
		got, err := ParseLayout(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLayout(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseLayout(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRoleString(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RolePayload, "payload"},
		{RoleMetadata, "metadata"},
		{RoleIgnored, "ignored"},
		{RoleUnknown, "unknown"},
	}

	for _, tt := range tests {
		if got := tt.role.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
