package memory

import (
	"context"
	"sync"
	"time"

	"github.com/riskibarqy/playoff-pool/internal/domain/usedplayers"
)

type UsedPlayersRepository struct {
	mu    sync.RWMutex
	items map[string]usedplayers.UsedPlayers
	now   func() time.Time
}

func NewUsedPlayersRepository() *UsedPlayersRepository {
	return &UsedPlayersRepository{
		items: make(map[string]usedplayers.UsedPlayers),
		now:   time.Now,
	}
}

func (r *UsedPlayersRepository) Get(_ context.Context, userID string) (usedplayers.UsedPlayers, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[userID]
	if !ok {
		return usedplayers.UsedPlayers{UserID: userID, PlayerIDs: usedplayers.NewSet()}, nil
	}
	return cloneUsedPlayers(item), nil
}

func (r *UsedPlayersRepository) Union(_ context.Context, userID string, playerIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[userID]
	if !ok {
		item = usedplayers.UsedPlayers{UserID: userID, PlayerIDs: usedplayers.NewSet()}
	}
	item.PlayerIDs.Add(playerIDs...)
	item.UpdatedAt = r.now().UTC()
	r.items[userID] = item
	return nil
}

func (r *UsedPlayersRepository) Replace(_ context.Context, userID string, playerIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[userID] = usedplayers.UsedPlayers{
		UserID:    userID,
		PlayerIDs: usedplayers.NewSet(playerIDs...),
		UpdatedAt: r.now().UTC(),
	}
	return nil
}

func cloneUsedPlayers(item usedplayers.UsedPlayers) usedplayers.UsedPlayers {
	copied := item
	copied.PlayerIDs = usedplayers.NewSet(item.PlayerIDs.Sorted()...)
	return copied
}
