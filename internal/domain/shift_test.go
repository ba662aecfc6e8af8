package domain

import (
	"testing"
	"time"
)

func shiftTime(hour, min int) time.Time {
	return time.Date(2026, 1, 7, hour, min, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		s1, e1, s2, e2 time.Time
		want           bool
	}{
		{"partial overlap", shiftTime(9, 0), shiftTime(11, 0), shiftTime(10, 0), shiftTime(12, 0), true},
		{"back to back", shiftTime(9, 0), shiftTime(10, 0), shiftTime(10, 0), shiftTime(11, 0), false},
		{"back to back reversed", shiftTime(10, 0), shiftTime(11, 0), shiftTime(9, 0), shiftTime(10, 0), false},
		{"containment", shiftTime(8, 0), shiftTime(18, 0), shiftTime(10, 0), shiftTime(12, 0), true},
		{"identical", shiftTime(9, 0), shiftTime(11, 0), shiftTime(9, 0), shiftTime(11, 0), true},
		{"disjoint", shiftTime(6, 0), shiftTime(8, 0), shiftTime(13, 0), shiftTime(15, 0), false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Overlaps(tt.s1, tt.e1, tt.s2, tt.e2); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
			// Overlap is symmetric.
			if got := Overlaps(tt.s2, tt.e2, tt.s1, tt.e1); got != tt.want {
				t.Errorf("Overlaps (swapped) = %v, want %v", got, tt.want)
			}
		})
	}
}
