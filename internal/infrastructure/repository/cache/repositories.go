package cache

import (
	"context"
	"sort"
	"strings"

	"github.com/riskibarqy/playoff-pool/internal/domain/player"
	basecache "github.com/riskibarqy/playoff-pool/internal/platform/cache"
)

const playerKeyPrefix = "player:"

// PlayerRepository caches player reads. Any write drops every player key.
type PlayerRepository struct {
	next  player.Repository
	cache *basecache.Store
}

func NewPlayerRepository(next player.Repository, cache *basecache.Store) *PlayerRepository {
	return &PlayerRepository{next: next, cache: cache}
}

func (r *PlayerRepository) List(ctx context.Context) ([]player.Player, error) {
	v, err := r.cache.GetOrLoad(ctx, playerKeyPrefix+"list", func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]player.Player(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]player.Player)
	return append([]player.Player(nil), items...), nil
}

func (r *PlayerRepository) GetByID(ctx context.Context, playerID string) (player.Player, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, playerKeyPrefix+"id:"+playerID, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, playerID)
		if err != nil {
			return nil, err
		}
		return cachedPlayerByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return player.Player{}, false, err
	}

	cached, _ := v.(cachedPlayerByID)
	return cached.value, cached.exists, nil
}

func (r *PlayerRepository) GetByIDs(ctx context.Context, playerIDs []string) ([]player.Player, error) {
	if len(playerIDs) == 0 {
		return nil, nil
	}
	ids := append([]string(nil), playerIDs...)
	sort.Strings(ids)

	key := playerKeyPrefix + "ids:" + strings.Join(ids, ",")
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.GetByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		return append([]player.Player(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]player.Player)
	return append([]player.Player(nil), items...), nil
}

func (r *PlayerRepository) UpsertMany(ctx context.Context, players []player.Player) error {
	if err := r.next.UpsertMany(ctx, players); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, playerKeyPrefix)
	return nil
}

func (r *PlayerRepository) Delete(ctx context.Context, playerID string) error {
	if err := r.next.Delete(ctx, playerID); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, playerKeyPrefix)
	return nil
}

type cachedPlayerByID struct {
	value  player.Player
	exists bool
}
