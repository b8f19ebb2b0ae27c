package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/playoff-pool/internal/domain/user"
)

type UserRepository struct {
	mu    sync.RWMutex
	items map[string]user.User
}

func NewUserRepository(users []user.User) *UserRepository {
	items := make(map[string]user.User, len(users))
	for _, u := range users {
		items[u.UID] = u
	}
	return &UserRepository{items: items}
}

func (r *UserRepository) List(_ context.Context) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]user.User, 0, len(r.items))
	for _, u := range r.items {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UID < out[j].UID })
	return out, nil
}

func (r *UserRepository) Get(_ context.Context, uid string) (user.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[uid]
	return u, ok, nil
}

func (r *UserRepository) Upsert(_ context.Context, u user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.items[u.UID]; ok && u.CreatedAt.IsZero() {
		u.CreatedAt = existing.CreatedAt
	}
	r.items[u.UID] = u
	return nil
}
