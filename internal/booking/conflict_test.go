package booking

import (
	"math/rand"
	"testing"
)

func TestOverlapsTable(t *testing.T) {
	base := Window{CourtID: 1, Date: "2025-05-10", StartHour: 10, DurationHours: 2} // 10-12

	cases := []struct {
		name      string
		candidate Window
		want      bool
	}{
		{"identical window", Window{CourtID: 1, Date: "2025-05-10", StartHour: 10, DurationHours: 2}, true},
		{"contained window", Window{CourtID: 1, Date: "2025-05-10", StartHour: 11, DurationHours: 1}, true},
		{"straddles start", Window{CourtID: 1, Date: "2025-05-10", StartHour: 9, DurationHours: 2}, true},
		{"straddles end", Window{CourtID: 1, Date: "2025-05-10", StartHour: 11, DurationHours: 3}, true},
		{"covers whole window", Window{CourtID: 1, Date: "2025-05-10", StartHour: 8, DurationHours: 8}, true},
		{"touches end boundary", Window{CourtID: 1, Date: "2025-05-10", StartHour: 12, DurationHours: 1}, false},
		{"touches start boundary", Window{CourtID: 1, Date: "2025-05-10", StartHour: 8, DurationHours: 2}, false},
		{"disjoint later", Window{CourtID: 1, Date: "2025-05-10", StartHour: 14, DurationHours: 2}, false},
		{"other court", Window{CourtID: 2, Date: "2025-05-10", StartHour: 10, DurationHours: 2}, false},
		{"other date", Window{CourtID: 1, Date: "2025-05-11", StartHour: 10, DurationHours: 2}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Overlaps(base, tc.candidate); got != tc.want {
				t.Fatalf("Overlaps(%+v, %+v) = %v, want %v", base, tc.candidate, got, tc.want)
			}
			if got := Overlaps(tc.candidate, base); got != tc.want {
				t.Fatalf("Overlaps is not symmetric for %+v vs %+v", tc.candidate, base)
			}
		})
	}
}

// TestOverlapLawRandomized checks Overlaps against the interval definition
// for a large batch of random same-court windows: two half-open intervals
// overlap iff each starts before the other ends.
func TestOverlapLawRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	randomWindow := func() Window {
		start := rng.Intn(23)
		maxDur := 24 - start
		return Window{
			CourtID:       1,
			Date:          "2025-05-10",
			StartHour:     start,
			DurationHours: 1 + rng.Intn(maxDur),
		}
	}
	for i := 0; i < 5000; i++ {
		a, b := randomWindow(), randomWindow()
		want := a.StartHour < b.EndHour() && b.StartHour < a.EndHour()
		if got := Overlaps(a, b); got != want {
			t.Fatalf("Overlaps(%+v, %+v) = %v, want %v", a, b, got, want)
		}
	}
}

func TestHasConflictSkipsNonOverlapping(t *testing.T) {
	existing := []Window{
		{CourtID: 1, Date: "2025-05-10", StartHour: 8, DurationHours: 2},
		{CourtID: 1, Date: "2025-05-10", StartHour: 14, DurationHours: 2},
	}
	free := Window{CourtID: 1, Date: "2025-05-10", StartHour: 10, DurationHours: 4}
	if HasConflict(existing, free) {
		t.Fatalf("window %+v should fit between existing bookings", free)
	}
	taken := Window{CourtID: 1, Date: "2025-05-10", StartHour: 13, DurationHours: 2}
	if !HasConflict(existing, taken) {
		t.Fatalf("window %+v overlaps the 14-16 booking and must conflict", taken)
	}
	if HasConflict(nil, free) {
		t.Fatal("no existing windows can never conflict")
	}
}
