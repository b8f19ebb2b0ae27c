package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/playoff-pool/internal/domain/jobscheduler"
	"github.com/riskibarqy/playoff-pool/internal/infrastructure/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingJobQueue struct{ err error }

func (q failingJobQueue) Enqueue(context.Context, string, any, time.Duration, string) error {
	return q.err
}

type stubWeekLocker struct {
	weeks  []int
	result BulkLockResult
	err    error
}

func (l *stubWeekLocker) BulkLock(_ context.Context, week int) (BulkLockResult, error) {
	l.weeks = append(l.weeks, week)
	return l.result, l.err
}

func newJobServiceForTest(queue JobQueue, locker weekLocker) (*JobService, *memory.JobDispatchRepository, time.Time) {
	dispatches := memory.NewJobDispatchRepository()
	svc := NewJobService(queue, dispatches, locker, nil, nil)
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return svc, dispatches, now
}

func TestJobService_ScheduleThenRunWeekLock(t *testing.T) {
	queue := &recordingJobQueue{}
	locker := &stubWeekLocker{result: BulkLockResult{Week: 1, Total: 3, Succeeded: 2, Failed: 1}}
	svc, dispatches, now := newJobServiceForTest(queue, locker)

	deadline := now.Add(30 * time.Minute)
	require.NoError(t, svc.ScheduleWeekLock(t.Context(), 1, deadline))
	require.Len(t, queue.dedup, 1)

	result, err := svc.RunWeekLock(t.Context(), JobRunInput{Week: 1, DispatchID: queue.dedup[0]})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, []int{1}, locker.weeks)

	items, err := dispatches.ListRecent(t.Context(), 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, jobscheduler.StatusCompleted, items[0].Status)
	assert.Equal(t, jobscheduler.JobWeekLock, items[0].JobName)
	assert.NotNil(t, items[0].SentAt)
	assert.NotNil(t, items[0].CompletedAt)
}

func TestJobService_ScheduleWeekLock_RecordsEnqueueFailure(t *testing.T) {
	svc, dispatches, now := newJobServiceForTest(failingJobQueue{err: errors.New("qstash 500")}, nil)

	err := svc.ScheduleWeekLock(t.Context(), 2, now.Add(time.Hour))
	require.Error(t, err)

	items, _ := dispatches.ListRecent(t.Context(), 10)
	require.Len(t, items, 1)
	assert.Equal(t, jobscheduler.StatusFailed, items[0].Status)
	assert.Contains(t, items[0].LastError, "qstash 500")
}

func TestJobService_RunWeekLock_ManualRunGetsDispatchID(t *testing.T) {
	locker := &stubWeekLocker{err: ErrDependencyUnavailable}
	svc, dispatches, _ := newJobServiceForTest(nil, locker)

	_, err := svc.RunWeekLock(t.Context(), JobRunInput{Week: 3})
	require.ErrorIs(t, err, ErrDependencyUnavailable)

	items, _ := dispatches.ListRecent(t.Context(), 10)
	require.Len(t, items, 1)
	assert.Equal(t, "manual-week-lock-3-20260110T120000.000Z", items[0].DispatchID)
	assert.Equal(t, jobscheduler.StatusFailed, items[0].Status)
}

func TestJobService_ScheduleWeekLock_RejectsUnknownWeek(t *testing.T) {
	svc, _, now := newJobServiceForTest(nil, nil)
	assert.ErrorIs(t, svc.ScheduleWeekLock(t.Context(), 9, now), ErrInvalidInput)
}
