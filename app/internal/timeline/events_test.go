package timeline

import (
	"testing"
	"time"

	"nfestatus/app/internal/models"
)

var testTracked = []string{"status_servico4", "autorizacao4"}

func rec(t *testing.T, ts string, fields map[string]string) models.ChangeRecord {
	t.Helper()
	when, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		t.Fatalf("bad timestamp %s: %v", ts, err)
	}
	return models.ChangeRecord{Autorizador: "SVRS", ObservedAt: when, Fields: fields}
}

// --------------- ExtractEvents ---------------

func TestExtractEvents_OnePerTrackedField(t *testing.T) {
	recs := []models.ChangeRecord{
		rec(t, "2024-01-15T08:00:00Z", map[string]string{
			"status_servico4": "verde",
			"autorizacao4":    "verde",
			"tempo_medio":     "1s", // not tracked
		}),
	}

	events := ExtractEvents(recs, testTracked)
	if len(events["status_servico4"]) != 1 {
		t.Errorf("expected 1 status_servico4 event, got %d", len(events["status_servico4"]))
	}
	if len(events["autorizacao4"]) != 1 {
		t.Errorf("expected 1 autorizacao4 event, got %d", len(events["autorizacao4"]))
	}
	if _, ok := events["tempo_medio"]; ok {
		t.Error("untracked field should emit no events")
	}
}

func TestExtractEvents_AbsentFieldIsNoSignal(t *testing.T) {
	recs := []models.ChangeRecord{
		rec(t, "2024-01-15T08:00:00Z", map[string]string{"status_servico4": "verde"}),
		rec(t, "2024-01-15T09:00:00Z", map[string]string{"autorizacao4": "amarelo"}),
	}

	events := ExtractEvents(recs, testTracked)
	if got := len(events["status_servico4"]); got != 1 {
		t.Errorf("status_servico4 events = %d, want 1", got)
	}
	if got := len(events["autorizacao4"]); got != 1 {
		t.Errorf("autorizacao4 events = %d, want 1", got)
	}
}

func TestExtractEvents_PreservesInputOrder(t *testing.T) {
	recs := []models.ChangeRecord{
		rec(t, "2024-01-15T08:00:00Z", map[string]string{"status_servico4": "verde"}),
		rec(t, "2024-01-15T09:00:00Z", map[string]string{"status_servico4": "amarelo"}),
		rec(t, "2024-01-15T10:00:00Z", map[string]string{"status_servico4": "verde"}),
	}

	events := ExtractEvents(recs, testTracked)["status_servico4"]
	want := []string{"verde", "amarelo", "verde"}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(events))
	}
	for i, v := range want {
		if events[i].Value != v {
			t.Errorf("event %d value = %q, want %q", i, events[i].Value, v)
		}
	}
}

func TestExtractEvents_AmbiguousTimestamp_LastWins(t *testing.T) {
	recs := []models.ChangeRecord{
		rec(t, "2024-01-15T08:00:00Z", map[string]string{"status_servico4": "verde"}),
		rec(t, "2024-01-15T08:00:00Z", map[string]string{"status_servico4": "vermelho"}),
	}

	events := ExtractEvents(recs, testTracked)["status_servico4"]
	if len(events) != 1 {
		t.Fatalf("equal timestamps should collapse to one event, got %d", len(events))
	}
	if events[0].Value != "vermelho" {
		t.Errorf("value = %q, want last-in-source-order %q", events[0].Value, "vermelho")
	}
}

// --------------- dayEvents ---------------

func TestDayEvents_MidnightBelongsToInitialState(t *testing.T) {
	dayStart := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	evs := []FieldEvent{
		{Field: "status_servico4", When: dayStart, Value: "verde"},
		{Field: "status_servico4", When: dayStart.Add(8 * time.Hour), Value: "amarelo"},
		{Field: "status_servico4", When: dayEnd, Value: "vermelho"},
	}

	inDay := dayEvents(evs, dayStart, dayEnd)
	if len(inDay) != 1 {
		t.Fatalf("expected 1 in-day event, got %d", len(inDay))
	}
	if inDay[0].Value != "amarelo" {
		t.Errorf("in-day value = %q, want amarelo", inDay[0].Value)
	}
}
