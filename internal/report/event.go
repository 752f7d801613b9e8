package report

import "github.com/rocjay1/finpulse/internal/models"

// EventKind classifies how a report request settled.
type EventKind string

const (
	EventGenerated EventKind = "report_generated"
	EventFailed    EventKind = "report_failed"
	EventDiscarded EventKind = "report_discarded"
)

// Event is delivered to sinks after every request settles.
type Event struct {
	Kind   EventKind
	Seq    uint64
	Result *models.ReportResult
	Err    error
}

// Sink receives report events. It is called synchronously from the
// goroutine that ran the request.
type Sink func(Event)
