package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/playoff-pool/internal/domain/jobscheduler"
)

type JobDispatchRepository struct {
	mu    sync.RWMutex
	items map[string]jobscheduler.Dispatch
}

func NewJobDispatchRepository() *JobDispatchRepository {
	return &JobDispatchRepository{items: make(map[string]jobscheduler.Dispatch)}
}

func (r *JobDispatchRepository) UpsertEvent(_ context.Context, event jobscheduler.DispatchEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[event.DispatchID] = r.items[event.DispatchID].Apply(event)
	return nil
}

func (r *JobDispatchRepository) ListRecent(_ context.Context, limit int) ([]jobscheduler.Dispatch, error) {
	r.mu.RLock()
	out := make([]jobscheduler.Dispatch, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].DispatchID < out[j].DispatchID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
