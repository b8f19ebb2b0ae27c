package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/playoff-pool/internal/domain/roster"
)

type RosterRepository struct {
	mu    sync.RWMutex
	items map[string]roster.Roster
}

func NewRosterRepository() *RosterRepository {
	return &RosterRepository{items: make(map[string]roster.Roster)}
}

func (r *RosterRepository) Get(_ context.Context, userID string, week int) (roster.Roster, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[rosterKey(userID, week)]
	if !ok {
		return roster.Roster{}, false, nil
	}
	return cloneRoster(item), true, nil
}

func (r *RosterRepository) ListByWeek(_ context.Context, week int) ([]roster.Roster, error) {
	return r.filter(func(item roster.Roster) bool { return item.Week == week }), nil
}

func (r *RosterRepository) ListByUser(_ context.Context, userID string) ([]roster.Roster, error) {
	return r.filter(func(item roster.Roster) bool { return item.UserID == userID }), nil
}

func (r *RosterRepository) Upsert(_ context.Context, item roster.Roster) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[rosterKey(item.UserID, item.Week)] = cloneRoster(item)
	return nil
}

func (r *RosterRepository) filter(keep func(roster.Roster) bool) []roster.Roster {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]roster.Roster, 0)
	for _, item := range r.items {
		if keep(item) {
			out = append(out, cloneRoster(item))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Week != out[j].Week {
			return out[i].Week < out[j].Week
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

func rosterKey(userID string, week int) string {
	return fmt.Sprintf("%s::%d", userID, week)
}

func cloneRoster(item roster.Roster) roster.Roster {
	copied := item
	if item.LockedAt != nil {
		lockedAt := *item.LockedAt
		copied.LockedAt = &lockedAt
	}
	return copied
}
