package timeline

import (
	"math"
	"time"

	"nfestatus/app/internal/models"
)

// Segment is one constant-value stretch of a day's analysis interval.
// Consecutive segments tile the interval exactly: each segment ends where
// the next begins, the first starts at the analysis start and the last ends
// at the analysis end.
type Segment struct {
	Value string
	Start time.Time
	End   time.Time
}

// BuildSegments converts the day's initial state plus its ordered in-day
// events into segments covering [start, end). Events outside the interval
// are clamped to its bounds, so zero-length segments can appear (e.g. the
// seed segment when the first event coincides with the analysis start) but
// gaps and overlaps cannot.
func BuildSegments(initial string, evs []FieldEvent, start, end time.Time) []Segment {
	segs := make([]Segment, 0, len(evs)+1)

	cur := Segment{Value: initial, Start: start}
	for _, ev := range evs {
		when := clamp(ev.When, start, end)
		cur.End = when
		segs = append(segs, cur)
		cur = Segment{Value: ev.Value, Start: when}
	}
	cur.End = end
	segs = append(segs, cur)
	return segs
}

// ComputeSLA sums segment durations by value and reports the fraction of the
// interval spent in the available status. Returns nil for a degenerate
// zero-length interval rather than dividing by zero.
func ComputeSLA(autorizador, dia string, segs []Segment, available string) *models.DailySLA {
	var availMin, totalMin float64
	for _, s := range segs {
		d := s.End.Sub(s.Start).Minutes()
		totalMin += d
		if s.Value == available {
			availMin += d
		}
	}

	if totalMin <= 0 {
		return nil
	}

	return &models.DailySLA{
		Autorizador:  autorizador,
		Dia:          dia,
		MinutosVerde: round2(availMin),
		MinutosTotal: round2(totalMin),
		SLAPercent:   round2(100 * availMin / totalMin),
	}
}

func clamp(t, lo, hi time.Time) time.Time {
	if t.Before(lo) {
		return lo
	}
	if t.After(hi) {
		return hi
	}
	return t
}

// round2 rounds to two decimal places; applied at output only.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
