package booking

// Overlaps reports whether two windows compete for the same court time.
// Windows are half-open hour intervals, so a booking ending at hour H never
// conflicts with one starting at H. Windows on different courts or dates
// never overlap.
func Overlaps(a, b Window) bool {
	if a.CourtID != b.CourtID || a.Date != b.Date {
		return false
	}
	return a.StartHour < b.EndHour() && a.EndHour() > b.StartHour
}

// HasConflict reports whether the candidate window overlaps any of the
// existing windows. Callers are expected to pass only windows of active
// bookings; cancelled and completed bookings do not hold court time.
func HasConflict(existing []Window, candidate Window) bool {
	for _, w := range existing {
		if Overlaps(w, candidate) {
			return true
		}
	}
	return false
}
