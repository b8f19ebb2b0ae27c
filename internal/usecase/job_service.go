package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/riskibarqy/playoff-pool/internal/domain/jobscheduler"
	"github.com/riskibarqy/playoff-pool/internal/domain/playoff"
	"github.com/riskibarqy/playoff-pool/internal/platform/logging"
	"go.opentelemetry.io/otel/trace"
)

// JobQueue schedules delayed calls to internal job endpoints.
type JobQueue interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

type noopJobQueue struct{}

func (noopJobQueue) Enqueue(_ context.Context, _ string, _ any, _ time.Duration, _ string) error {
	return nil
}

func NewNoopJobQueue() JobQueue {
	return noopJobQueue{}
}

type weekLocker interface {
	BulkLock(ctx context.Context, week int) (BulkLockResult, error)
}

// JobRunInput identifies one delivery of an internal job. DispatchID is empty
// for manual calls.
type JobRunInput struct {
	Week       int
	DispatchID string
}

// JobService schedules deadline jobs through the queue, runs them when the
// queue calls back, and keeps a dispatch log of both sides.
type JobService struct {
	queue      JobQueue
	dispatches jobscheduler.Repository
	locker     weekLocker
	syncer     weekSyncer
	logger     *logging.Logger
	now        func() time.Time
}

var dispatchUnsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

func NewJobService(queue JobQueue, dispatches jobscheduler.Repository, locker weekLocker, syncer weekSyncer, logger *logging.Logger) *JobService {
	if queue == nil {
		queue = NewNoopJobQueue()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &JobService{
		queue:      queue,
		dispatches: dispatches,
		locker:     locker,
		syncer:     syncer,
		logger:     logger,
		now:        time.Now,
	}
}

func weekLockPath(week int) string {
	return fmt.Sprintf("/v1/internal/jobs/weeks/%d/lock", week)
}

func weekSyncPath(week int) string {
	return fmt.Sprintf("/v1/internal/jobs/weeks/%d/stats/sync", week)
}

// ScheduleWeekLock enqueues the bulk lock for the deadline. The dedup id is
// derived from week and deadline so re-saving the same config is harmless.
func (s *JobService) ScheduleWeekLock(ctx context.Context, week int, at time.Time) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobService.ScheduleWeekLock")
	defer span.End()

	weekName, err := playoff.WeekName(week)
	if err != nil {
		return fmt.Errorf("%w: week=%d", ErrInvalidInput, week)
	}

	now := s.now().UTC()
	delay := max(at.Sub(now), 0)
	dispatchID := fmt.Sprintf("lock-%s-%d", weekName, at.UTC().Unix())
	path := weekLockPath(week)
	payload := map[string]any{"week": week, "dispatch_id": dispatchID}

	event := jobscheduler.DispatchEvent{
		DispatchID: dispatchID,
		JobName:    jobscheduler.JobWeekLock,
		JobPath:    path,
		Week:       week,
		Status:     jobscheduler.StatusSent,
		OccurredAt: now,
	}
	if err := s.queue.Enqueue(ctx, path, payload, delay, dispatchID); err != nil {
		event.Status = jobscheduler.StatusFailed
		event.ErrorMessage = err.Error()
		s.record(ctx, event)
		return fmt.Errorf("enqueue week lock week=%s: %w", weekName, err)
	}
	s.record(ctx, event)

	s.logger.InfoContext(ctx, "week lock scheduled", "week", weekName, "dispatch_id", dispatchID, "delay", delay.String())
	return nil
}

// RunWeekLock is the queue callback for a deadline: it commits every complete
// roster of the week.
func (s *JobService) RunWeekLock(ctx context.Context, input JobRunInput) (BulkLockResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobService.RunWeekLock")
	defer span.End()

	if s.locker == nil {
		return BulkLockResult{}, fmt.Errorf("%w: roster locker is not configured", ErrDependencyUnavailable)
	}
	event := s.runEvent(jobscheduler.JobWeekLock, weekLockPath(input.Week), input)

	result, err := s.locker.BulkLock(ctx, input.Week)
	s.finish(ctx, event, err)
	return result, err
}

func (s *JobService) RunWeekSync(ctx context.Context, input JobRunInput) (StatSyncReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobService.RunWeekSync")
	defer span.End()

	if s.syncer == nil {
		return StatSyncReport{}, fmt.Errorf("%w: stat syncer is not configured", ErrDependencyUnavailable)
	}
	event := s.runEvent(jobscheduler.JobWeekSync, weekSyncPath(input.Week), input)

	report, err := s.syncer.SyncWeek(ctx, input.Week)
	s.finish(ctx, event, err)
	return report, err
}

func (s *JobService) ListDispatches(ctx context.Context, limit int) ([]jobscheduler.Dispatch, error) {
	if s.dispatches == nil {
		return []jobscheduler.Dispatch{}, nil
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	items, err := s.dispatches.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list job dispatches: %w", err)
	}
	return items, nil
}

func (s *JobService) runEvent(jobName, path string, input JobRunInput) jobscheduler.DispatchEvent {
	dispatchID := strings.TrimSpace(input.DispatchID)
	if dispatchID == "" {
		dispatchID = manualDispatchID(jobName, input.Week, s.now())
	}
	return jobscheduler.DispatchEvent{
		DispatchID: dispatchID,
		JobName:    jobName,
		JobPath:    path,
		Week:       input.Week,
	}
}

func (s *JobService) finish(ctx context.Context, event jobscheduler.DispatchEvent, err error) {
	event.OccurredAt = s.now().UTC()
	event.Status = jobscheduler.StatusCompleted
	if err != nil {
		event.Status = jobscheduler.StatusFailed
		event.ErrorMessage = err.Error()
		s.logger.WarnContext(ctx, "internal job failed", "job", event.JobName, "dispatch_id", event.DispatchID, "week", event.Week, "error", err)
	}
	s.record(ctx, event)
}

func (s *JobService) record(ctx context.Context, event jobscheduler.DispatchEvent) {
	if s.dispatches == nil || event.DispatchID == "" {
		return
	}
	event.TraceID, event.SpanID = traceMetaFromContext(ctx)
	if err := s.dispatches.UpsertEvent(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "record job dispatch event failed",
			"dispatch_id", event.DispatchID,
			"status", event.Status,
			"error", err,
		)
	}
}

func manualDispatchID(jobName string, week int, now time.Time) string {
	name := dispatchUnsafeChars.ReplaceAllString(strings.TrimSpace(jobName), "-")
	return fmt.Sprintf("manual-%s-%d-%s", name, week, now.UTC().Format("20060102T150405.000Z"))
}

func traceMetaFromContext(ctx context.Context) (string, string) {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return "", ""
	}
	return sc.TraceID().String(), sc.SpanID().String()
}
