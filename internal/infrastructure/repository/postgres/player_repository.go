package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/playoff-pool/internal/domain/player"
	qb "github.com/riskibarqy/playoff-pool/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db *sqlx.DB
}

var playerSelectColumns = []string{
	"id",
	"name",
	"team",
	"position",
	"image_url",
	"rank",
	"injury_status",
	"created_at",
	"updated_at",
}

// upsert batches stay well under the 65535 bind parameter limit.
const playerUpsertBatch = 500

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) List(ctx context.Context) ([]player.Player, error) {
	query, args, err := qb.Select(playerSelectColumns...).From("players").
		OrderBy("position", "rank = 0", "rank", "name").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list players query: %w", err)
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return playersFromRows(rows), nil
}

func (r *PlayerRepository) GetByID(ctx context.Context, playerID string) (player.Player, bool, error) {
	query, args, err := qb.Select(playerSelectColumns...).From("players").
		Where(qb.Eq("id", playerID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return player.Player{}, false, fmt.Errorf("build get player query: %w", err)
	}

	var row playerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("get player id=%s: %w", playerID, err)
	}
	return playerFromRow(row), true, nil
}

func (r *PlayerRepository) GetByIDs(ctx context.Context, playerIDs []string) ([]player.Player, error) {
	if len(playerIDs) == 0 {
		return []player.Player{}, nil
	}

	query, args, err := qb.Select(playerSelectColumns...).From("players").
		Where(qb.AnyText("id", playerIDs)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players by ids query: %w", err)
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select players by ids: %w", err)
	}
	return playersFromRows(rows), nil
}

func (r *PlayerRepository) UpsertMany(ctx context.Context, players []player.Player) error {
	if len(players) == 0 {
		return nil
	}

	now := time.Now().UTC()
	return withTx(ctx, r.db, "upsert players", func(tx *sqlx.Tx) error {
		for start := 0; start < len(players); start += playerUpsertBatch {
			end := min(start+playerUpsertBatch, len(players))
			rows := make([]playerUpsertModel, 0, end-start)
			for _, p := range players[start:end] {
				rows = append(rows, playerUpsertModel{
					ID:           p.ID,
					Name:         p.Name,
					Team:         p.Team,
					Position:     string(p.Position),
					ImageURL:     p.ImageURL,
					Rank:         p.Rank,
					InjuryStatus: string(p.InjuryStatus),
					UpdatedAt:    now,
				})
			}

			insert, err := qb.InsertModels("players", rows)
			if err != nil {
				return fmt.Errorf("build upsert players query: %w", err)
			}
			query, args, err := insert.
				OnConflictUpdate([]string{"id"}, "name", "team", "position", "image_url", "rank", "injury_status", "updated_at").
				ToSQL()
			if err != nil {
				return fmt.Errorf("build upsert players query: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("upsert players batch=%d: %w", start/playerUpsertBatch, err)
			}
		}
		return nil
	})
}

func (r *PlayerRepository) Delete(ctx context.Context, playerID string) error {
	query, args, err := qb.DeleteFrom("players").Where(qb.Eq("id", playerID)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete player query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete player id=%s: %w", playerID, err)
	}
	return nil
}

func playersFromRows(rows []playerTableModel) []player.Player {
	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, playerFromRow(row))
	}
	return out
}

func playerFromRow(row playerTableModel) player.Player {
	return player.Player{
		ID:           row.ID,
		Name:         row.Name,
		Team:         row.Team,
		Position:     player.Position(row.Position),
		ImageURL:     row.ImageURL,
		Rank:         row.Rank,
		InjuryStatus: player.InjuryStatus(row.InjuryStatus),
	}
}
