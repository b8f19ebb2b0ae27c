package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/playoff-pool/internal/domain/usedplayers"
	qb "github.com/riskibarqy/playoff-pool/internal/platform/querybuilder"
)

type usedPlayersTableModel struct {
	UserID    string         `db:"user_id"`
	PlayerIDs pq.StringArray `db:"player_ids"`
	UpdatedAt time.Time      `db:"updated_at"`
}

// usedPlayersUnionSuffix merges in SQL so concurrent unions for one user
// never drop ids.
const usedPlayersUnionSuffix = `ON CONFLICT (user_id) DO UPDATE SET
    player_ids = ARRAY(SELECT DISTINCT unnest(used_players.player_ids || EXCLUDED.player_ids) ORDER BY 1),
    updated_at = EXCLUDED.updated_at`

type UsedPlayersRepository struct {
	db *sqlx.DB
}

func NewUsedPlayersRepository(db *sqlx.DB) *UsedPlayersRepository {
	return &UsedPlayersRepository{db: db}
}

func (r *UsedPlayersRepository) Get(ctx context.Context, userID string) (usedplayers.UsedPlayers, error) {
	query, args, err := qb.Select("user_id", "player_ids", "updated_at").From("used_players").
		Where(qb.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return usedplayers.UsedPlayers{}, fmt.Errorf("build get used players query: %w", err)
	}

	var row usedPlayersTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return usedplayers.UsedPlayers{UserID: userID, PlayerIDs: usedplayers.NewSet()}, nil
		}
		return usedplayers.UsedPlayers{}, fmt.Errorf("get used players user=%s: %w", userID, err)
	}
	return usedplayers.UsedPlayers{
		UserID:    row.UserID,
		PlayerIDs: usedplayers.NewSet(row.PlayerIDs...),
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func (r *UsedPlayersRepository) Union(ctx context.Context, userID string, playerIDs []string) error {
	return r.write(ctx, userID, playerIDs, usedPlayersUnionSuffix, "union")
}

func (r *UsedPlayersRepository) Replace(ctx context.Context, userID string, playerIDs []string) error {
	return r.write(ctx, userID, playerIDs,
		"ON CONFLICT (user_id) DO UPDATE SET player_ids = EXCLUDED.player_ids, updated_at = EXCLUDED.updated_at",
		"replace")
}

func (r *UsedPlayersRepository) write(ctx context.Context, userID string, playerIDs []string, suffix, op string) error {
	query, args, err := qb.InsertInto("used_players").
		Columns("user_id", "player_ids", "updated_at").
		Values(userID, pq.StringArray(usedplayers.NewSet(playerIDs...).Sorted()), time.Now().UTC()).
		Suffix(suffix).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build %s used players query: %w", op, err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%s used players user=%s: %w", op, userID, err)
	}
	return nil
}
