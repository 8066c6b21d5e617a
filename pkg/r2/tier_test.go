package r2

import "testing"

func TestTierFromStorageClass(t *testing.T) {
	tests := []struct {
		class    string
		wantTier Tier
		wantOK   bool
	}{
		{"STANDARD", TierStandard, true},
		{"standard", TierStandard, true},
		{"STANDARD_IA", TierInfrequentAccess, true},
		{"standard_ia", TierInfrequentAccess, true},
		{"INFREQUENT_ACCESS", TierInfrequentAccess, true},
		{"InfrequentAccess", TierInfrequentAccess, true},
		{"", TierStandard, false},
		{"GLACIER", TierStandard, false},
		{"REDUCED_REDUNDANCY", TierStandard, false},
	}

	for _, tt := range tests {
		t.Run("class "+tt.class, func(t *testing.T) {
			tier, ok := TierFromStorageClass(tt.class)
			if ok != tt.wantOK {
				t.Errorf("TierFromStorageClass(%q) ok = %v, want %v", tt.class, ok, tt.wantOK)
			}
			if tier != tt.wantTier {
				t.Errorf("TierFromStorageClass(%q) tier = %v, want %v", tt.class, tier, tt.wantTier)
			}
		})
	}
}

func TestTierString(t *testing.T) {
	if got := TierStandard.String(); got != "Standard" {
		t.Errorf("TierStandard.String() = %q", got)
	}
	if got := TierInfrequentAccess.String(); got != "InfrequentAccess" {
		t.Errorf("TierInfrequentAccess.String() = %q", got)
	}
	if got := Tier(7).String(); got != "Tier(7)" {
		t.Errorf("Tier(7).String() = %q", got)
	}
}
