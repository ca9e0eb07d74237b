package models

import "time"

// Status colors as they appear on the disponibilidade portal.
const (
	StatusVerde        = "verde"
	StatusAmarelo      = "amarelo"
	StatusVermelho     = "vermelho"
	StatusCinza        = "cinza"
	StatusDesconhecido = "desconhecido"
)

// ChangeRecord is one SCD2 history row for an autorizador: the complete
// observed field set at that instant. Records are immutable and ordered by
// ObservedAt per autorizador.
type ChangeRecord struct {
	Autorizador string
	ObservedAt  time.Time
	Fields      map[string]string
}

// Snapshot is one full scrape of the portal: every autorizador row plus the
// portal's own "Última Verificação" timestamp.
type Snapshot struct {
	CheckedAt time.Time        `json:"checked_at"`
	Statuses  []map[string]any `json:"statuses"`
}

// Transition records a status field changing value within a day.
type Transition struct {
	From string `json:"from"`
	To   string `json:"to"`
	When string `json:"when"`
}

// DailySLA is the availability summary for one autorizador on one day.
// Minute fields and the percentage are rounded to two decimal places.
type DailySLA struct {
	Autorizador  string  `json:"autorizador"`
	Dia          string  `json:"dia"`
	MinutosVerde float64 `json:"minutos_verde"`
	MinutosTotal float64 `json:"minutos_total"`
	SLAPercent   float64 `json:"sla_percent"`
}

// DayReport is the full reconstruction output for one (autorizador, day):
// the state in effect at day start per tracked field, every transition
// observed during the day, and the availability summary. SLA is nil when the
// day's analysis interval has zero length.
type DayReport struct {
	Autorizador string                  `json:"autorizador"`
	Dia         string                  `json:"dia"`
	StartedAt   string                  `json:"started_at"`
	Initial     map[string]string       `json:"initial"`
	Transitions map[string][]Transition `json:"transitions"`
	SLA         *DailySLA               `json:"sla"`
}

// LogEntry represents a system log row.
type LogEntry struct {
	ID        int    `json:"id"`
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Category  string `json:"category"`
	Service   string `json:"service"`
	Message   string `json:"message"`
	Details   string `json:"details"`
}
