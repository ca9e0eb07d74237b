package timeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"nfestatus/app/internal/models"
)

// Source supplies the change-record history the engine consumes. The
// database package implements it over the SCD2 disponibilidade table.
type Source interface {
	// Entities lists every autorizador with recorded history.
	Entities(ctx context.Context) ([]string, error)

	// History returns an autorizador's records ordered by observation
	// instant, plus its horizon: the latest of all closing instants, or
	// "now" while the last record is still open.
	History(ctx context.Context, autorizador string) ([]models.ChangeRecord, time.Time, error)
}

// Result is the output of one full pass: per-entity day reports plus any
// per-entity faults. A fault for one autorizador never aborts the others.
type Result struct {
	RunID       string                        `json:"run_id"`
	GeneratedAt time.Time                     `json:"generated_at"`
	Reports     map[string][]models.DayReport `json:"reports"`
	Faults      map[string]string             `json:"faults,omitempty"`
}

// Engine reconstructs continuous-time status timelines from sparse change
// records and aggregates per-day availability. A single Engine is reusable
// across passes; it holds no per-pass state.
type Engine struct {
	loc       *time.Location
	tracked   []string
	slaField  string
	available string
}

// New creates an engine computing day boundaries in loc, following the given
// tracked-field allow-list, with slaField as the availability dimension.
func New(loc *time.Location, tracked []string, slaField string) *Engine {
	return &Engine{
		loc:       loc,
		tracked:   tracked,
		slaField:  slaField,
		available: models.StatusVerde,
	}
}

// Run processes every entity from src, fanning out across at most workers
// goroutines. Entities are independent, so output is identical for any
// worker count. Only an unreadable source fails the pass as a whole;
// entity-scoped faults are collected in the result.
func (e *Engine) Run(ctx context.Context, src Source, workers int) (*Result, error) {
	entities, err := src.Entities(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing entities: %w", err)
	}

	if workers < 1 {
		workers = 1
	}

	res := &Result{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Reports:     make(map[string][]models.DayReport, len(entities)),
	}
	faults := NewFaultCollector()

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, autorizador := range entities {
		g.Go(func() error {
			recs, horizon, err := src.History(ctx, autorizador)
			if err != nil {
				faults.Record(autorizador, fmt.Errorf("loading history: %w", err))
				return nil
			}

			reports, err := e.ProcessEntity(autorizador, recs, horizon)
			if err != nil {
				faults.Record(autorizador, err)
				return nil
			}

			mu.Lock()
			res.Reports[autorizador] = reports
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if fs := faults.Faults(); len(fs) > 0 {
		res.Faults = make(map[string]string, len(fs))
		for k, v := range fs {
			res.Faults[k] = v.Error()
		}
	}
	return res, nil
}

// ProcessEntity runs the full pipeline for one autorizador: calendar, event
// extraction, per-day initial-state resolution, transition building and SLA
// aggregation. recs must be ordered by observation instant; horizon is the
// entity's last known instant. An empty history yields no reports.
func (e *Engine) ProcessEntity(autorizador string, recs []models.ChangeRecord, horizon time.Time) ([]models.DayReport, error) {
	if len(recs) == 0 {
		return nil, nil
	}

	firstObs := recs[0].ObservedAt
	days, err := DayRange(firstObs, horizon, e.loc)
	if err != nil {
		return nil, err
	}

	events := ExtractEvents(recs, e.tracked)

	reports := make([]models.DayReport, 0, len(days))
	for i, day := range days {
		dayEnd := nextDay(day)

		// Partial first day: analysis begins at the true first
		// observation. The last day is capped at the entity's horizon.
		analysisStart := day
		if i == 0 {
			analysisStart = firstObs
		}
		analysisEnd := dayEnd
		if horizon.Before(dayEnd) {
			analysisEnd = horizon
		}

		rep := models.DayReport{
			Autorizador: autorizador,
			Dia:         day.Format("2006-01-02"),
			StartedAt:   formatUTC(analysisStart),
			Initial:     make(map[string]string, len(e.tracked)),
			Transitions: make(map[string][]models.Transition, len(e.tracked)),
		}

		for _, field := range e.tracked {
			initial := InitialState(events[field], day)
			rep.Initial[field] = initial
			rep.Transitions[field] = BuildTransitions(dayEvents(events[field], day, dayEnd), initial)
		}

		slaEvents := dayEvents(events[e.slaField], day, dayEnd)
		segs := BuildSegments(rep.Initial[e.slaField], slaEvents, analysisStart, analysisEnd)
		rep.SLA = ComputeSLA(autorizador, rep.Dia, segs, e.available)

		reports = append(reports, rep)
	}
	return reports, nil
}
