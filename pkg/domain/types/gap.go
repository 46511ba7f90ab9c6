package types

// GapMinutes is the pause between consecutive slots. Only 0, 30 and 60 are
// accepted; anything else falls back to 0.
type GapMinutes int

const (
	GapNone       GapMinutes = 0
	GapHalfHour   GapMinutes = 30
	GapFullHour   GapMinutes = 60
)

// IsValid checks if the gap value is one of the accepted choices
func (g GapMinutes) IsValid() bool {
	switch g {
	case GapNone, GapHalfHour, GapFullHour:
		return true
	default:
		return false
	}
}

// NormalizeGap coerces an arbitrary minute count to an accepted gap,
// falling back to no gap for rejected values.
func NormalizeGap(minutes int) GapMinutes {
	g := GapMinutes(minutes)
	if !g.IsValid() {
		return GapNone
	}
	return g
}
