package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/playoff-pool/internal/domain/jobscheduler"
	qb "github.com/riskibarqy/playoff-pool/internal/platform/querybuilder"
)

type jobDispatchTableModel struct {
	DispatchID  string       `db:"dispatch_id"`
	JobName     string       `db:"job_name"`
	JobPath     string       `db:"job_path"`
	Week        int          `db:"week"`
	Status      string       `db:"status"`
	LastError   string       `db:"last_error"`
	SentAt      sql.NullTime `db:"sent_at"`
	CompletedAt sql.NullTime `db:"completed_at"`
	FailedAt    sql.NullTime `db:"failed_at"`
	TraceID     string       `db:"trace_id"`
	UpdatedAt   time.Time    `db:"updated_at"`
}

// Each status only moves its own timestamp; the others keep their value.
const jobDispatchUpsertSuffix = `ON CONFLICT (dispatch_id) DO UPDATE SET
    job_name = CASE WHEN EXCLUDED.job_name = '' THEN job_dispatches.job_name ELSE EXCLUDED.job_name END,
    job_path = CASE WHEN EXCLUDED.job_path = '' THEN job_dispatches.job_path ELSE EXCLUDED.job_path END,
    week = CASE WHEN EXCLUDED.week = 0 THEN job_dispatches.week ELSE EXCLUDED.week END,
    status = EXCLUDED.status,
    last_error = EXCLUDED.last_error,
    sent_at = COALESCE(EXCLUDED.sent_at, job_dispatches.sent_at),
    completed_at = COALESCE(EXCLUDED.completed_at, job_dispatches.completed_at),
    failed_at = COALESCE(EXCLUDED.failed_at, job_dispatches.failed_at),
    trace_id = CASE WHEN EXCLUDED.trace_id = '' THEN job_dispatches.trace_id ELSE EXCLUDED.trace_id END,
    updated_at = EXCLUDED.updated_at`

type JobDispatchRepository struct {
	db *sqlx.DB
}

func NewJobDispatchRepository(db *sqlx.DB) *JobDispatchRepository {
	return &JobDispatchRepository{db: db}
}

func (r *JobDispatchRepository) UpsertEvent(ctx context.Context, event jobscheduler.DispatchEvent) error {
	dispatchID := strings.TrimSpace(event.DispatchID)
	if dispatchID == "" {
		return fmt.Errorf("dispatch id is required")
	}
	occurredAt := event.OccurredAt.UTC()
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	d := jobscheduler.Dispatch{}.Apply(jobscheduler.DispatchEvent{
		DispatchID:   dispatchID,
		JobName:      strings.TrimSpace(event.JobName),
		JobPath:      strings.TrimSpace(event.JobPath),
		Week:         event.Week,
		Status:       event.Status,
		ErrorMessage: event.ErrorMessage,
		OccurredAt:   occurredAt,
		TraceID:      event.TraceID,
	})

	insert, err := qb.InsertModels("job_dispatches", []jobDispatchTableModel{{
		DispatchID:  d.DispatchID,
		JobName:     d.JobName,
		JobPath:     d.JobPath,
		Week:        d.Week,
		Status:      string(d.Status),
		LastError:   d.LastError,
		SentAt:      nullTime(d.SentAt),
		CompletedAt: nullTime(d.CompletedAt),
		FailedAt:    nullTime(d.FailedAt),
		TraceID:     d.TraceID,
		UpdatedAt:   d.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("build upsert job dispatch query: %w", err)
	}
	query, args, err := insert.Suffix(jobDispatchUpsertSuffix).ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert job dispatch query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert job dispatch id=%s: %w", dispatchID, err)
	}
	return nil
}

func (r *JobDispatchRepository) ListRecent(ctx context.Context, limit int) ([]jobscheduler.Dispatch, error) {
	cols, err := qb.Columns(jobDispatchTableModel{})
	if err != nil {
		return nil, fmt.Errorf("resolve job dispatch columns: %w", err)
	}
	query, args, err := qb.Select(cols...).From("job_dispatches").
		OrderBy("updated_at DESC", "dispatch_id").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list job dispatches query: %w", err)
	}

	var rows []jobDispatchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list job dispatches: %w", err)
	}

	out := make([]jobscheduler.Dispatch, 0, len(rows))
	for _, row := range rows {
		out = append(out, jobscheduler.Dispatch{
			DispatchID:  row.DispatchID,
			JobName:     row.JobName,
			JobPath:     row.JobPath,
			Week:        row.Week,
			Status:      jobscheduler.DispatchStatus(row.Status),
			LastError:   row.LastError,
			SentAt:      timePtr(row.SentAt),
			CompletedAt: timePtr(row.CompletedAt),
			FailedAt:    timePtr(row.FailedAt),
			TraceID:     row.TraceID,
			UpdatedAt:   row.UpdatedAt,
		})
	}
	return out, nil
}
