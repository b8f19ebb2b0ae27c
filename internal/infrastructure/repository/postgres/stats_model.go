package postgres

import (
	"time"

	"github.com/riskibarqy/playoff-pool/internal/domain/stats"
)

// weekLineTableModel doubles as the JSON shape of unmatched lines.
type weekLineTableModel struct {
	WeekName         string    `db:"week_name" json:"-"`
	PlayerID         string    `db:"player_id" json:"-"`
	PassingYards     int       `db:"passing_yards" json:"passing_yards"`
	PassingTDs       int       `db:"passing_tds" json:"passing_tds"`
	Interceptions    int       `db:"interceptions" json:"interceptions"`
	RushingYards     int       `db:"rushing_yards" json:"rushing_yards"`
	RushingTDs       int       `db:"rushing_tds" json:"rushing_tds"`
	Receptions       int       `db:"receptions" json:"receptions"`
	ReceivingYards   int       `db:"receiving_yards" json:"receiving_yards"`
	ReceivingTDs     int       `db:"receiving_tds" json:"receiving_tds"`
	FG0To39          int       `db:"fg_0_39" json:"fg_0_39"`
	FG40To49         int       `db:"fg_40_49" json:"fg_40_49"`
	FG50Plus         int       `db:"fg_50_plus" json:"fg_50_plus"`
	FGMissed         int       `db:"fg_missed" json:"fg_missed"`
	XPMade           int       `db:"xp_made" json:"xp_made"`
	XPMissed         int       `db:"xp_missed" json:"xp_missed"`
	PointsAllowed    int       `db:"points_allowed" json:"points_allowed"`
	Sacks            int       `db:"sacks" json:"sacks"`
	DefInterceptions int       `db:"def_interceptions" json:"def_interceptions"`
	FumbleRecoveries int       `db:"fumble_recoveries" json:"fumble_recoveries"`
	DefTDs           int       `db:"def_tds" json:"def_tds"`
	Source           string    `db:"source" json:"source"`
	UpdatedAt        time.Time `db:"updated_at" json:"-"`
}

type unmatchedTableModel struct {
	WeekName    string    `db:"week_name"`
	ExternalKey string    `db:"external_key"`
	Name        string    `db:"name"`
	Team        string    `db:"team"`
	Position    string    `db:"position"`
	Line        string    `db:"line"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type aliasTableModel struct {
	ExternalKey string    `db:"external_key"`
	PlayerID    string    `db:"player_id"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func weekLineToRow(l stats.WeekLine) weekLineTableModel {
	return weekLineTableModel{
		WeekName:         l.WeekName,
		PlayerID:         l.PlayerID,
		PassingYards:     l.PassingYards,
		PassingTDs:       l.PassingTDs,
		Interceptions:    l.Interceptions,
		RushingYards:     l.RushingYards,
		RushingTDs:       l.RushingTDs,
		Receptions:       l.Receptions,
		ReceivingYards:   l.ReceivingYards,
		ReceivingTDs:     l.ReceivingTDs,
		FG0To39:          l.FG0To39,
		FG40To49:         l.FG40To49,
		FG50Plus:         l.FG50Plus,
		FGMissed:         l.FGMissed,
		XPMade:           l.XPMade,
		XPMissed:         l.XPMissed,
		PointsAllowed:    l.PointsAllowed,
		Sacks:            l.Sacks,
		DefInterceptions: l.DefInterceptions,
		FumbleRecoveries: l.FumbleRecoveries,
		DefTDs:           l.DefTDs,
		Source:           l.Source,
		UpdatedAt:        l.UpdatedAt.UTC(),
	}
}

func weekLineFromRow(row weekLineTableModel) stats.WeekLine {
	return stats.WeekLine{
		WeekName:         row.WeekName,
		PlayerID:         row.PlayerID,
		PassingYards:     row.PassingYards,
		PassingTDs:       row.PassingTDs,
		Interceptions:    row.Interceptions,
		RushingYards:     row.RushingYards,
		RushingTDs:       row.RushingTDs,
		Receptions:       row.Receptions,
		ReceivingYards:   row.ReceivingYards,
		ReceivingTDs:     row.ReceivingTDs,
		FG0To39:          row.FG0To39,
		FG40To49:         row.FG40To49,
		FG50Plus:         row.FG50Plus,
		FGMissed:         row.FGMissed,
		XPMade:           row.XPMade,
		XPMissed:         row.XPMissed,
		PointsAllowed:    row.PointsAllowed,
		Sacks:            row.Sacks,
		DefInterceptions: row.DefInterceptions,
		FumbleRecoveries: row.FumbleRecoveries,
		DefTDs:           row.DefTDs,
		Source:           row.Source,
		UpdatedAt:        row.UpdatedAt,
	}
}
