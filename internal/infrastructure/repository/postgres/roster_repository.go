package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/playoff-pool/internal/domain/roster"
	qb "github.com/riskibarqy/playoff-pool/internal/platform/querybuilder"
)

type rosterTableModel struct {
	UserID      string       `db:"user_id"`
	Week        int          `db:"week"`
	QB          string       `db:"qb"`
	RB1         string       `db:"rb1"`
	RB2         string       `db:"rb2"`
	WR1         string       `db:"wr1"`
	WR2         string       `db:"wr2"`
	WR3         string       `db:"wr3"`
	TE          string       `db:"te"`
	DST         string       `db:"dst"`
	K           string       `db:"k"`
	Locked      bool         `db:"locked"`
	LockedAt    sql.NullTime `db:"locked_at"`
	TotalPoints float64      `db:"total_points"`
	CreatedAt   time.Time    `db:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at"`
}

type RosterRepository struct {
	db *sqlx.DB
}

func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

func rosterSelect() *qb.SelectBuilder {
	cols, _ := qb.Columns(rosterTableModel{})
	return qb.Select(cols...).From("weekly_rosters")
}

func (r *RosterRepository) Get(ctx context.Context, userID string, week int) (roster.Roster, bool, error) {
	query, args, err := rosterSelect().
		Where(qb.Eq("user_id", userID), qb.Eq("week", week)).
		ToSQL()
	if err != nil {
		return roster.Roster{}, false, fmt.Errorf("build get roster query: %w", err)
	}

	var row rosterTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return roster.Roster{}, false, nil
		}
		return roster.Roster{}, false, fmt.Errorf("get roster user=%s week=%d: %w", userID, week, err)
	}
	return rosterFromRow(row), true, nil
}

func (r *RosterRepository) ListByWeek(ctx context.Context, week int) ([]roster.Roster, error) {
	query, args, err := rosterSelect().
		Where(qb.Eq("week", week)).
		OrderBy("user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list rosters by week query: %w", err)
	}
	return r.list(ctx, query, args, fmt.Sprintf("week=%d", week))
}

func (r *RosterRepository) ListByUser(ctx context.Context, userID string) ([]roster.Roster, error) {
	query, args, err := rosterSelect().
		Where(qb.Eq("user_id", userID)).
		OrderBy("week").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list rosters by user query: %w", err)
	}
	return r.list(ctx, query, args, "user="+userID)
}

func (r *RosterRepository) list(ctx context.Context, query string, args []any, scope string) ([]roster.Roster, error) {
	var rows []rosterTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list rosters %s: %w", scope, err)
	}

	out := make([]roster.Roster, 0, len(rows))
	for _, row := range rows {
		out = append(out, rosterFromRow(row))
	}
	return out, nil
}

// Upsert writes the whole roster row. Concurrent writers are last-write-wins.
func (r *RosterRepository) Upsert(ctx context.Context, item roster.Roster) error {
	insert, err := qb.InsertModels("weekly_rosters", []rosterTableModel{rosterToRow(item)})
	if err != nil {
		return fmt.Errorf("build upsert roster query: %w", err)
	}
	query, args, err := insert.OnConflictUpdate([]string{"user_id", "week"},
		"qb", "rb1", "rb2", "wr1", "wr2", "wr3", "te", "dst", "k",
		"locked", "locked_at", "total_points", "updated_at",
	).ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert roster query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert roster user=%s week=%d: %w", item.UserID, item.Week, err)
	}
	return nil
}

func rosterToRow(item roster.Roster) rosterTableModel {
	return rosterTableModel{
		UserID:      item.UserID,
		Week:        item.Week,
		QB:          item.QB,
		RB1:         item.RB1,
		RB2:         item.RB2,
		WR1:         item.WR1,
		WR2:         item.WR2,
		WR3:         item.WR3,
		TE:          item.TE,
		DST:         item.DST,
		K:           item.K,
		Locked:      item.Locked,
		LockedAt:    nullTime(item.LockedAt),
		TotalPoints: item.TotalPoints,
		CreatedAt:   item.CreatedAt.UTC(),
		UpdatedAt:   item.UpdatedAt.UTC(),
	}
}

func rosterFromRow(row rosterTableModel) roster.Roster {
	return roster.Roster{
		UserID:      row.UserID,
		Week:        row.Week,
		QB:          row.QB,
		RB1:         row.RB1,
		RB2:         row.RB2,
		WR1:         row.WR1,
		WR2:         row.WR2,
		WR3:         row.WR3,
		TE:          row.TE,
		DST:         row.DST,
		K:           row.K,
		Locked:      row.Locked,
		LockedAt:    timePtr(row.LockedAt),
		TotalPoints: row.TotalPoints,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
