package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/playoff-pool/internal/domain/scoring"
	qb "github.com/riskibarqy/playoff-pool/internal/platform/querybuilder"
)

type scoringRulesTableModel struct {
	ID                     int       `db:"id"`
	Name                   string    `db:"name"`
	PassingYardsPerPoint   float64   `db:"passing_yards_per_point"`
	PassingTD              float64   `db:"passing_td"`
	Interception           float64   `db:"interception"`
	RushingYardsPerPoint   float64   `db:"rushing_yards_per_point"`
	RushingTD              float64   `db:"rushing_td"`
	ReceivingYardsPerPoint float64   `db:"receiving_yards_per_point"`
	ReceivingTD            float64   `db:"receiving_td"`
	Reception              float64   `db:"reception"`
	FG0To39                float64   `db:"fg_0_39"`
	FG40To49               float64   `db:"fg_40_49"`
	FG50Plus               float64   `db:"fg_50_plus"`
	FGMissed               float64   `db:"fg_missed"`
	ExtraPoint             float64   `db:"extra_point"`
	XPMissed               float64   `db:"xp_missed"`
	PointsAllowed0         float64   `db:"points_allowed_0"`
	PointsAllowed1To6      float64   `db:"points_allowed_1_6"`
	PointsAllowed7To13     float64   `db:"points_allowed_7_13"`
	PointsAllowed14To20    float64   `db:"points_allowed_14_20"`
	PointsAllowed21To27    float64   `db:"points_allowed_21_27"`
	PointsAllowed28To34    float64   `db:"points_allowed_28_34"`
	PointsAllowed35Plus    float64   `db:"points_allowed_35_plus"`
	Sack                   float64   `db:"sack"`
	DefInterception        float64   `db:"def_interception"`
	FumbleRecovery         float64   `db:"fumble_recovery"`
	DefTD                  float64   `db:"def_td"`
	UpdatedAt              time.Time `db:"updated_at"`
}

// ScoringRepository keeps the single active rules row.
type ScoringRepository struct {
	db *sqlx.DB
}

func NewScoringRepository(db *sqlx.DB) *ScoringRepository {
	return &ScoringRepository{db: db}
}

func (r *ScoringRepository) Get(ctx context.Context) (scoring.Rules, bool, error) {
	cols, err := qb.Columns(scoringRulesTableModel{})
	if err != nil {
		return scoring.Rules{}, false, fmt.Errorf("resolve scoring rules columns: %w", err)
	}
	query, args, err := qb.Select(cols...).From("scoring_rules").Where(qb.Eq("id", 1)).ToSQL()
	if err != nil {
		return scoring.Rules{}, false, fmt.Errorf("build get scoring rules query: %w", err)
	}

	var row scoringRulesTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return scoring.Rules{}, false, nil
		}
		return scoring.Rules{}, false, fmt.Errorf("get scoring rules: %w", err)
	}

	return scoring.Rules{
		Name:                   row.Name,
		PassingYardsPerPoint:   row.PassingYardsPerPoint,
		PassingTD:              row.PassingTD,
		Interception:           row.Interception,
		RushingYardsPerPoint:   row.RushingYardsPerPoint,
		RushingTD:              row.RushingTD,
		ReceivingYardsPerPoint: row.ReceivingYardsPerPoint,
		ReceivingTD:            row.ReceivingTD,
		Reception:              row.Reception,
		FG0To39:                row.FG0To39,
		FG40To49:               row.FG40To49,
		FG50Plus:               row.FG50Plus,
		FGMissed:               row.FGMissed,
		ExtraPoint:             row.ExtraPoint,
		XPMissed:               row.XPMissed,
		PointsAllowed0:         row.PointsAllowed0,
		PointsAllowed1To6:      row.PointsAllowed1To6,
		PointsAllowed7To13:     row.PointsAllowed7To13,
		PointsAllowed14To20:    row.PointsAllowed14To20,
		PointsAllowed21To27:    row.PointsAllowed21To27,
		PointsAllowed28To34:    row.PointsAllowed28To34,
		PointsAllowed35Plus:    row.PointsAllowed35Plus,
		Sack:                   row.Sack,
		DefInterception:        row.DefInterception,
		FumbleRecovery:         row.FumbleRecovery,
		DefTD:                  row.DefTD,
	}, true, nil
}

func (r *ScoringRepository) Save(ctx context.Context, rules scoring.Rules) error {
	row := scoringRulesTableModel{
		ID:                     1,
		Name:                   rules.Name,
		PassingYardsPerPoint:   rules.PassingYardsPerPoint,
		PassingTD:              rules.PassingTD,
		Interception:           rules.Interception,
		RushingYardsPerPoint:   rules.RushingYardsPerPoint,
		RushingTD:              rules.RushingTD,
		ReceivingYardsPerPoint: rules.ReceivingYardsPerPoint,
		ReceivingTD:            rules.ReceivingTD,
		Reception:              rules.Reception,
		FG0To39:                rules.FG0To39,
		FG40To49:               rules.FG40To49,
		FG50Plus:               rules.FG50Plus,
		FGMissed:               rules.FGMissed,
		ExtraPoint:             rules.ExtraPoint,
		XPMissed:               rules.XPMissed,
		PointsAllowed0:         rules.PointsAllowed0,
		PointsAllowed1To6:      rules.PointsAllowed1To6,
		PointsAllowed7To13:     rules.PointsAllowed7To13,
		PointsAllowed14To20:    rules.PointsAllowed14To20,
		PointsAllowed21To27:    rules.PointsAllowed21To27,
		PointsAllowed28To34:    rules.PointsAllowed28To34,
		PointsAllowed35Plus:    rules.PointsAllowed35Plus,
		Sack:                   rules.Sack,
		DefInterception:        rules.DefInterception,
		FumbleRecovery:         rules.FumbleRecovery,
		DefTD:                  rules.DefTD,
		UpdatedAt:              time.Now().UTC(),
	}

	cols, err := qb.Columns(row)
	if err != nil {
		return fmt.Errorf("resolve scoring rules columns: %w", err)
	}
	insert, err := qb.InsertModels("scoring_rules", []scoringRulesTableModel{row})
	if err != nil {
		return fmt.Errorf("build save scoring rules query: %w", err)
	}
	query, args, err := insert.OnConflictUpdate([]string{"id"}, cols[1:]...).ToSQL()
	if err != nil {
		return fmt.Errorf("build save scoring rules query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save scoring rules: %w", err)
	}
	return nil
}
