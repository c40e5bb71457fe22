package utils

import "testing"

func TestNormalizePlate(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{" kz 123 abc ", "KZ123ABC"},
		{"kz-123-abc", "KZ123ABC"},
		{"KZ123ABC", "KZ123ABC"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizePlate(tt.raw); got != tt.want {
			t.Fatalf("NormalizePlate(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
