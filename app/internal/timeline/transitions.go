package timeline

import (
	"time"

	"nfestatus/app/internal/models"
)

// BuildTransitions pairs each in-day event with its predecessor value,
// seeded from the day's initial state, emitting {from, to, when} triples in
// timestamp order. A day with zero events produces zero transitions.
// Timestamps are formatted as UTC RFC3339 regardless of the reporting zone.
func BuildTransitions(evs []FieldEvent, initial string) []models.Transition {
	out := make([]models.Transition, 0, len(evs))

	prev := initial
	for _, ev := range evs {
		out = append(out, models.Transition{
			From: prev,
			To:   ev.Value,
			When: formatUTC(ev.When),
		})
		prev = ev.Value
	}
	return out
}

// formatUTC renders an instant as ISO-8601 with a Z suffix. Days are
// computed in the reporting zone but all output timestamps are UTC.
func formatUTC(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
