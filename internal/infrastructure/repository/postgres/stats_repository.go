package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/playoff-pool/internal/domain/player"
	"github.com/riskibarqy/playoff-pool/internal/domain/stats"
	qb "github.com/riskibarqy/playoff-pool/internal/platform/querybuilder"
)

// 23 columns per line keeps a batch under the bind parameter limit.
const weekLineUpsertBatch = 1000

type StatsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

func weekLineSelect() *qb.SelectBuilder {
	cols, _ := qb.Columns(weekLineTableModel{})
	return qb.Select(cols...).From("week_stat_lines")
}

func (r *StatsRepository) ListByWeek(ctx context.Context, weekName string) ([]stats.WeekLine, error) {
	query, args, err := weekLineSelect().
		Where(qb.Eq("week_name", weekName)).
		OrderBy("player_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list week stat lines query: %w", err)
	}

	var rows []weekLineTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list week stat lines week=%s: %w", weekName, err)
	}

	out := make([]stats.WeekLine, 0, len(rows))
	for _, row := range rows {
		out = append(out, weekLineFromRow(row))
	}
	return out, nil
}

func (r *StatsRepository) Get(ctx context.Context, weekName, playerID string) (stats.WeekLine, bool, error) {
	query, args, err := weekLineSelect().
		Where(qb.Eq("week_name", weekName), qb.Eq("player_id", playerID)).
		ToSQL()
	if err != nil {
		return stats.WeekLine{}, false, fmt.Errorf("build get week stat line query: %w", err)
	}

	var row weekLineTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return stats.WeekLine{}, false, nil
		}
		return stats.WeekLine{}, false, fmt.Errorf("get week stat line week=%s player=%s: %w", weekName, playerID, err)
	}
	return weekLineFromRow(row), true, nil
}

// UpsertMany overwrites each line wholesale; counters are never merged.
func (r *StatsRepository) UpsertMany(ctx context.Context, lines []stats.WeekLine) error {
	if len(lines) == 0 {
		return nil
	}

	cols, err := qb.Columns(weekLineTableModel{})
	if err != nil {
		return fmt.Errorf("resolve week stat line columns: %w", err)
	}
	overwrite := make([]string, 0, len(cols))
	for _, col := range cols {
		if col != "week_name" && col != "player_id" {
			overwrite = append(overwrite, col)
		}
	}

	return withTx(ctx, r.db, "upsert week stat lines", func(tx *sqlx.Tx) error {
		for start := 0; start < len(lines); start += weekLineUpsertBatch {
			end := min(start+weekLineUpsertBatch, len(lines))
			rows := make([]weekLineTableModel, 0, end-start)
			for _, l := range lines[start:end] {
				rows = append(rows, weekLineToRow(l))
			}

			insert, err := qb.InsertModels("week_stat_lines", rows)
			if err != nil {
				return fmt.Errorf("build upsert week stat lines query: %w", err)
			}
			query, args, err := insert.OnConflictUpdate([]string{"week_name", "player_id"}, overwrite...).ToSQL()
			if err != nil {
				return fmt.Errorf("build upsert week stat lines query: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("upsert week stat lines: %w", err)
			}
		}
		return nil
	})
}

func (r *StatsRepository) ReplaceUnmatched(ctx context.Context, weekName string, items []stats.Unmatched) error {
	rows := make([]unmatchedTableModel, 0, len(items))
	for _, item := range items {
		line, err := sonic.MarshalString(weekLineToRow(item.Line))
		if err != nil {
			return fmt.Errorf("encode unmatched line key=%s: %w", item.ExternalKey, err)
		}
		rows = append(rows, unmatchedTableModel{
			WeekName:    weekName,
			ExternalKey: item.ExternalKey,
			Name:        item.Name,
			Team:        item.Team,
			Position:    string(item.Position),
			Line:        line,
			UpdatedAt:   item.UpdatedAt.UTC(),
		})
	}

	return withTx(ctx, r.db, "replace unmatched stats", func(tx *sqlx.Tx) error {
		query, args, err := qb.DeleteFrom("unmatched_stats").Where(qb.Eq("week_name", weekName)).ToSQL()
		if err != nil {
			return fmt.Errorf("build clear unmatched stats query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("clear unmatched stats week=%s: %w", weekName, err)
		}
		if len(rows) == 0 {
			return nil
		}

		insert, err := qb.InsertModels("unmatched_stats", rows)
		if err != nil {
			return fmt.Errorf("build insert unmatched stats query: %w", err)
		}
		query, args, err = insert.ToSQL()
		if err != nil {
			return fmt.Errorf("build insert unmatched stats query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert unmatched stats week=%s: %w", weekName, err)
		}
		return nil
	})
}

func (r *StatsRepository) ListUnmatched(ctx context.Context, weekName string) ([]stats.Unmatched, error) {
	query, args, err := qb.Select("week_name", "external_key", "name", "team", "position", "line::text AS line", "updated_at").
		From("unmatched_stats").
		Where(qb.Eq("week_name", weekName)).
		OrderBy("team", "name", "external_key").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list unmatched stats query: %w", err)
	}

	var rows []unmatchedTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list unmatched stats week=%s: %w", weekName, err)
	}

	out := make([]stats.Unmatched, 0, len(rows))
	for _, row := range rows {
		var line weekLineTableModel
		if err := sonic.UnmarshalString(row.Line, &line); err != nil {
			return nil, fmt.Errorf("decode unmatched line key=%s: %w", row.ExternalKey, err)
		}
		line.WeekName = row.WeekName
		line.UpdatedAt = row.UpdatedAt
		out = append(out, stats.Unmatched{
			WeekName:    row.WeekName,
			ExternalKey: row.ExternalKey,
			Name:        row.Name,
			Team:        row.Team,
			Position:    player.Position(row.Position),
			Line:        weekLineFromRow(line),
			UpdatedAt:   row.UpdatedAt,
		})
	}
	return out, nil
}

func (r *StatsRepository) DeleteUnmatched(ctx context.Context, weekName, externalKey string) error {
	query, args, err := qb.DeleteFrom("unmatched_stats").
		Where(qb.Eq("week_name", weekName), qb.Eq("external_key", externalKey)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete unmatched stat query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete unmatched stat week=%s key=%s: %w", weekName, externalKey, err)
	}
	return nil
}

func (r *StatsRepository) ListAliases(ctx context.Context) ([]stats.Alias, error) {
	query, args, err := qb.Select("external_key", "player_id", "updated_at").
		From("player_aliases").
		OrderBy("external_key").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list player aliases query: %w", err)
	}

	var rows []aliasTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list player aliases: %w", err)
	}

	out := make([]stats.Alias, 0, len(rows))
	for _, row := range rows {
		out = append(out, stats.Alias(row))
	}
	return out, nil
}

func (r *StatsRepository) UpsertAlias(ctx context.Context, alias stats.Alias) error {
	if alias.UpdatedAt.IsZero() {
		alias.UpdatedAt = time.Now()
	}
	insert, err := qb.InsertModels("player_aliases", []aliasTableModel{{
		ExternalKey: alias.ExternalKey,
		PlayerID:    alias.PlayerID,
		UpdatedAt:   alias.UpdatedAt.UTC(),
	}})
	if err != nil {
		return fmt.Errorf("build upsert player alias query: %w", err)
	}
	query, args, err := insert.OnConflictUpdate([]string{"external_key"}, "player_id", "updated_at").ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert player alias query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert player alias key=%s: %w", alias.ExternalKey, err)
	}
	return nil
}
