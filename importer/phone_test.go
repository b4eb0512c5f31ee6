package importer

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "", ""},
		{"six digits too short", "555-123", ""},
		{"ten digits gets country code", "512-555-0147", "+15125550147"},
		{"formatted us", "(512) 555-0147", "+15125550147"},
		{"eleven digits kept", "1-512-555-0147", "+15125550147"},
		{"international kept", "+44 20 7946 0958", "+442079460958"},
		{"letters stripped", "call 512.555.0147 cell", "+15125550147"},
		{"seven digits passes", "5550147", "+5550147"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePhone(tt.raw); got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizePhoneDeterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		if got := NormalizePhone("(512) 555-0147"); got != "+15125550147" {
			t.Fatalf("normalization changed across calls: %q", got)
		}
	}
}
