package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"nfestatus/app/internal/models"
)

// PersistSnapshot applies SCD2 history tracking for one scraped snapshot:
// an unchanged status is skipped, a changed one closes the current record
// (valid_to, is_current=0) and opens a new one. Returns the number of new
// records inserted.
func PersistSnapshot(snap models.Snapshot) (int, error) {
	if snap.CheckedAt.IsZero() {
		return 0, fmt.Errorf("snapshot has no checked_at timestamp")
	}

	ts := snap.CheckedAt.UTC().Format(time.RFC3339)
	inserted := 0

	for _, row := range snap.Statuses {
		autorizador, _ := row["autorizador"].(string)
		if autorizador == "" {
			log.Printf("skipping status row without autorizador")
			continue
		}

		statusJSON, err := json.Marshal(row)
		if err != nil {
			return inserted, err
		}

		var curID int64
		var curJSON string
		err = DB.QueryRow(`SELECT id, status_json FROM disponibilidade
			WHERE autorizador = ? AND is_current = 1
			ORDER BY valid_from DESC LIMIT 1`, autorizador).Scan(&curID, &curJSON)
		switch {
		case err == sql.ErrNoRows:
			// First record for this autorizador.
		case err != nil:
			return inserted, err
		default:
			if !statusChanged(curJSON, row) {
				continue
			}
			if _, err := DB.Exec(`UPDATE disponibilidade SET valid_to = ?, is_current = 0 WHERE id = ?`,
				ts, curID); err != nil {
				return inserted, err
			}
		}

		if _, err := DB.Exec(`INSERT INTO disponibilidade (autorizador, status_json, valid_from, valid_to, is_current)
			VALUES (?, ?, ?, NULL, 1)`, autorizador, string(statusJSON), ts); err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}

// statusChanged compares a stored status JSON with a freshly scraped row.
// Both sides are reduced to canonical JSON (sorted map keys) so formatting
// differences never register as a change.
func statusChanged(prevJSON string, row map[string]any) bool {
	var prev map[string]any
	if err := json.Unmarshal([]byte(prevJSON), &prev); err != nil {
		return true
	}
	a, _ := json.Marshal(prev)
	b, _ := json.Marshal(row)
	return string(a) != string(b)
}

// Autorizadores lists every entity with recorded history, sorted.
func Autorizadores(ctx context.Context) ([]string, error) {
	rows, err := DB.QueryContext(ctx, `SELECT DISTINCT autorizador FROM disponibilidade`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	sort.Strings(out)
	return out, rows.Err()
}

// History returns an autorizador's change records ordered by observation
// instant, plus its horizon: the latest valid_to across closed records, or
// "now" while the newest record is still open. Only string-valued status
// fields become ChangeRecord fields; enrichment metadata (UF lists) stays in
// the stored JSON.
func History(ctx context.Context, autorizador string) ([]models.ChangeRecord, time.Time, error) {
	rows, err := DB.QueryContext(ctx, `SELECT status_json, valid_from, valid_to FROM disponibilidade
		WHERE autorizador = ? ORDER BY valid_from ASC, id ASC`, autorizador)
	if err != nil {
		return nil, time.Time{}, err
	}
	defer rows.Close()

	var recs []models.ChangeRecord
	var horizon time.Time
	open := false

	for rows.Next() {
		var statusJSON, validFrom string
		var validTo sql.NullString
		if err := rows.Scan(&statusJSON, &validFrom, &validTo); err != nil {
			return nil, time.Time{}, err
		}

		observedAt, err := time.Parse(time.RFC3339, validFrom)
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("bad valid_from %q: %w", validFrom, err)
		}

		var raw map[string]any
		if err := json.Unmarshal([]byte(statusJSON), &raw); err != nil {
			return nil, time.Time{}, fmt.Errorf("bad status_json for %s: %w", autorizador, err)
		}
		fields := make(map[string]string, len(raw))
		for k, v := range raw {
			if s, ok := v.(string); ok {
				fields[k] = s
			}
		}

		recs = append(recs, models.ChangeRecord{
			Autorizador: autorizador,
			ObservedAt:  observedAt,
			Fields:      fields,
		})

		if validTo.Valid {
			closedAt, err := time.Parse(time.RFC3339, validTo.String)
			if err != nil {
				return nil, time.Time{}, fmt.Errorf("bad valid_to %q: %w", validTo.String, err)
			}
			if closedAt.After(horizon) {
				horizon = closedAt
			}
		} else {
			open = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, err
	}

	if open {
		if now := time.Now().UTC(); now.After(horizon) {
			horizon = now
		}
	}
	return recs, horizon, nil
}

// Store adapts the package-level history functions to the engine's Source
// interface.
type Store struct{}

// NewStore returns a Store backed by the global DB.
func NewStore() *Store { return &Store{} }

func (s *Store) Entities(ctx context.Context) ([]string, error) {
	return Autorizadores(ctx)
}

func (s *Store) History(ctx context.Context, autorizador string) ([]models.ChangeRecord, time.Time, error) {
	return History(ctx, autorizador)
}
