package utils

import "testing"

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name   string
		value  float64
		digits int
		want   string
	}{
		{"plain", 5000, 2, "5,000.00"},
		{"millions", 1234567.891, 2, "1,234,567.89"},
		{"small", 0.2, 4, "0.2000"},
		{"negative", -45000.5, 2, "-45,000.50"},
		{"no decimals", 999, 0, "999"},
		{"zero", 0, 2, "0.00"},
		{"negative digits clamp", 1234.5, -1, "1235"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatAmount(tt.value, tt.digits); got != tt.want {
				t.Errorf("FormatAmount(%v, %d) = %q, want %q", tt.value, tt.digits, got, tt.want)
			}
		})
	}
}
