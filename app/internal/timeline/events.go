package timeline

import (
	"log"
	"time"

	"nfestatus/app/internal/models"
)

// FieldEvent is one tracked field's value observed at an instant. Derived
// from ChangeRecords during a pass, never stored.
type FieldEvent struct {
	Field string
	When  time.Time
	Value string
}

// ExtractEvents flattens an autorizador's ChangeRecord history into one
// event stream per tracked field. Fields absent from a record's map emit no
// event (no change signal, not "now null"). Input record order is preserved
// for equal timestamps; two events for the same field at the same instant
// with differing values collapse to the later one in source order, logged as
// a warning.
func ExtractEvents(recs []models.ChangeRecord, tracked []string) map[string][]FieldEvent {
	events := make(map[string][]FieldEvent, len(tracked))

	for _, rec := range recs {
		for _, field := range tracked {
			value, ok := rec.Fields[field]
			if !ok {
				continue
			}

			evs := events[field]
			if n := len(evs); n > 0 && evs[n-1].When.Equal(rec.ObservedAt) {
				if evs[n-1].Value != value {
					log.Printf("ambiguous events for %s/%s at %s: %q superseded by %q",
						rec.Autorizador, field, rec.ObservedAt.Format(time.RFC3339), evs[n-1].Value, value)
				}
				evs[n-1].Value = value
				continue
			}

			events[field] = append(evs, FieldEvent{
				Field: field,
				When:  rec.ObservedAt,
				Value: value,
			})
		}
	}
	return events
}

// dayEvents returns the events falling strictly within (dayStart, dayEnd).
// An event at exactly midnight belongs to the day's initial state, not to
// its transition list.
func dayEvents(evs []FieldEvent, dayStart, dayEnd time.Time) []FieldEvent {
	var out []FieldEvent
	for _, ev := range evs {
		if ev.When.After(dayStart) && ev.When.Before(dayEnd) {
			out = append(out, ev)
		}
	}
	return out
}
