package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/playoff-pool/internal/domain/playoff"
	qb "github.com/riskibarqy/playoff-pool/internal/platform/querybuilder"
)

type playoffWeekTableModel struct {
	WeekName   string         `db:"week_name"`
	WeekNumber int            `db:"week_number"`
	Teams      pq.StringArray `db:"teams"`
	Deadline   sql.NullTime   `db:"deadline"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

type poolSettingsTableModel struct {
	ID                  int       `db:"id"`
	CurrentWeekOverride int       `db:"current_week_override"`
	UpdatedAt           time.Time `db:"updated_at"`
}

var playoffWeekColumns = []string{"week_name", "week_number", "teams", "deadline", "updated_at"}

// PlayoffRepository stores the per-week team sets and deadlines plus the
// single pool settings row.
type PlayoffRepository struct {
	db *sqlx.DB
}

func NewPlayoffRepository(db *sqlx.DB) *PlayoffRepository {
	return &PlayoffRepository{db: db}
}

func (r *PlayoffRepository) Get(ctx context.Context, weekName string) (playoff.Config, bool, error) {
	query, args, err := qb.Select(playoffWeekColumns...).From("playoff_weeks").
		Where(qb.Eq("week_name", weekName)).
		ToSQL()
	if err != nil {
		return playoff.Config{}, false, fmt.Errorf("build get playoff week query: %w", err)
	}

	var row playoffWeekTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return playoff.Config{}, false, nil
		}
		return playoff.Config{}, false, fmt.Errorf("get playoff week=%s: %w", weekName, err)
	}
	return playoffConfigFromRow(row), true, nil
}

func (r *PlayoffRepository) List(ctx context.Context) ([]playoff.Config, error) {
	query, args, err := qb.Select(playoffWeekColumns...).From("playoff_weeks").
		OrderBy("week_number").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list playoff weeks query: %w", err)
	}

	var rows []playoffWeekTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list playoff weeks: %w", err)
	}

	out := make([]playoff.Config, 0, len(rows))
	for _, row := range rows {
		out = append(out, playoffConfigFromRow(row))
	}
	return out, nil
}

func (r *PlayoffRepository) Upsert(ctx context.Context, cfg playoff.Config) error {
	number, err := playoff.WeekNumber(cfg.WeekName)
	if err != nil {
		return fmt.Errorf("upsert playoff week=%s: %w", cfg.WeekName, err)
	}

	teams := cfg.Teams
	if teams == nil {
		teams = []string{}
	}
	insert, err := qb.InsertModels("playoff_weeks", []playoffWeekTableModel{{
		WeekName:   cfg.WeekName,
		WeekNumber: number,
		Teams:      pq.StringArray(teams),
		Deadline:   nullTime(cfg.Deadline),
		UpdatedAt:  cfg.UpdatedAt.UTC(),
	}})
	if err != nil {
		return fmt.Errorf("build upsert playoff week query: %w", err)
	}
	query, args, err := insert.OnConflictUpdate([]string{"week_name"}, "teams", "deadline", "updated_at").ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert playoff week query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert playoff week=%s: %w", cfg.WeekName, err)
	}
	return nil
}

func (r *PlayoffRepository) GetSettings(ctx context.Context) (playoff.Settings, error) {
	query, args, err := qb.Select("id", "current_week_override", "updated_at").From("pool_settings").
		Where(qb.Eq("id", 1)).
		ToSQL()
	if err != nil {
		return playoff.Settings{}, fmt.Errorf("build get pool settings query: %w", err)
	}

	var row poolSettingsTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return playoff.Settings{}, nil
		}
		return playoff.Settings{}, fmt.Errorf("get pool settings: %w", err)
	}
	return playoff.Settings{CurrentWeekOverride: row.CurrentWeekOverride, UpdatedAt: row.UpdatedAt}, nil
}

func (r *PlayoffRepository) SaveSettings(ctx context.Context, settings playoff.Settings) error {
	insert, err := qb.InsertModels("pool_settings", []poolSettingsTableModel{{
		ID:                  1,
		CurrentWeekOverride: settings.CurrentWeekOverride,
		UpdatedAt:           settings.UpdatedAt.UTC(),
	}})
	if err != nil {
		return fmt.Errorf("build save pool settings query: %w", err)
	}
	query, args, err := insert.OnConflictUpdate([]string{"id"}, "current_week_override", "updated_at").ToSQL()
	if err != nil {
		return fmt.Errorf("build save pool settings query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save pool settings: %w", err)
	}
	return nil
}

func playoffConfigFromRow(row playoffWeekTableModel) playoff.Config {
	return playoff.Config{
		WeekName:  row.WeekName,
		Teams:     []string(row.Teams),
		Deadline:  timePtr(row.Deadline),
		UpdatedAt: row.UpdatedAt,
	}
}
