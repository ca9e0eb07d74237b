package timeline

import (
	"sort"
	"time"

	"nfestatus/app/internal/models"
)

// InitialState resolves the value in effect at dayStart: the most recent
// event with When <= dayStart. With no such event the state is explicitly
// desconhecido; it is never forward-filled from another day's computed
// result, so every day resolves independently from the raw history.
func InitialState(evs []FieldEvent, dayStart time.Time) string {
	// First index with When > dayStart; the predecessor carries the state.
	idx := sort.Search(len(evs), func(i int) bool {
		return evs[i].When.After(dayStart)
	})
	if idx == 0 {
		return models.StatusDesconhecido
	}
	return evs[idx-1].Value
}
