package version

import (
	"testing"
	"time"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"epoch", time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), "A"},
		{"before epoch", time.Date(1999, 12, 31, 23, 0, 0, 0, time.UTC), "A"},
		{"one second", time.Date(2000, 1, 1, 0, 0, 1, 0, time.UTC), "B"},
		{"twenty-six seconds", time.Date(2000, 1, 1, 0, 0, 26, 0, time.UTC), "BA"},
		{"twenty-seven seconds", time.Date(2000, 1, 1, 0, 0, 27, 0, time.UTC), "BB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compute(tt.at); got != tt.want {
				t.Errorf("Compute(%v) = %q, want %q", tt.at, got, tt.want)
			}
		})
	}
}

func TestComputeSortsLexicallyInTimeOrder(t *testing.T) {
	earlier := Compute(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	later := Compute(time.Date(2024, 6, 1, 12, 0, 5, 0, time.UTC))
	if len(earlier) != len(later) {
		t.Fatalf("expected same-length ids, got %q and %q", earlier, later)
	}
	if !(earlier < later) {
		t.Errorf("expected %q < %q", earlier, later)
	}
}

func TestComputeOnlyUppercaseLetters(t *testing.T) {
	id := Compute(time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC))
	for _, r := range id {
		if r < 'A' || r > 'Z' {
			t.Fatalf("unexpected character %q in version id %q", r, id)
		}
	}
}
