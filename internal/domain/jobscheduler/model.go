package jobscheduler

import "time"

type DispatchStatus string

const (
	StatusSent      DispatchStatus = "sent"
	StatusCompleted DispatchStatus = "completed"
	StatusFailed    DispatchStatus = "failed"
)

const (
	JobWeekLock = "week-lock"
	JobWeekSync = "week-sync"
)

// DispatchEvent is one state change of a queued internal job. Events with
// the same DispatchID collapse into a single row.
type DispatchEvent struct {
	DispatchID   string
	JobName      string
	JobPath      string
	Week         int
	Status       DispatchStatus
	ErrorMessage string
	OccurredAt   time.Time
	TraceID      string
	SpanID       string
}

// Dispatch is the folded view of a job's lifecycle.
type Dispatch struct {
	DispatchID  string
	JobName     string
	JobPath     string
	Week        int
	Status      DispatchStatus
	LastError   string
	SentAt      *time.Time
	CompletedAt *time.Time
	FailedAt    *time.Time
	TraceID     string
	UpdatedAt   time.Time
}

// Apply folds an event into the dispatch record.
func (d Dispatch) Apply(event DispatchEvent) Dispatch {
	d.DispatchID = event.DispatchID
	if event.JobName != "" {
		d.JobName = event.JobName
	}
	if event.JobPath != "" {
		d.JobPath = event.JobPath
	}
	if event.Week != 0 {
		d.Week = event.Week
	}
	if event.TraceID != "" {
		d.TraceID = event.TraceID
	}
	d.Status = event.Status
	at := event.OccurredAt
	switch event.Status {
	case StatusSent:
		d.SentAt = &at
		d.LastError = ""
	case StatusCompleted:
		d.CompletedAt = &at
		d.LastError = ""
	case StatusFailed:
		d.FailedAt = &at
		d.LastError = event.ErrorMessage
	}
	d.UpdatedAt = at
	return d
}
