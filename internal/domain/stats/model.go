package stats

import (
	"time"

	"github.com/riskibarqy/playoff-pool/internal/domain/player"
)

const (
	SourceSync   = "sync"
	SourceManual = "manual"
)

// WeekLine is the stored per-player, per-week counter record. Re-syncing a
// week overwrites a line wholesale; counters are never merged.
type WeekLine struct {
	WeekName string
	PlayerID string

	PassingYards  int
	PassingTDs    int
	Interceptions int

	RushingYards int
	RushingTDs   int

	Receptions     int
	ReceivingYards int
	ReceivingTDs   int

	FG0To39  int
	FG40To49 int
	FG50Plus int
	FGMissed int
	XPMade   int
	XPMissed int

	PointsAllowed    int
	Sacks            int
	DefInterceptions int
	FumbleRecoveries int
	DefTDs           int

	Source    string
	UpdatedAt time.Time
}

// Validate rejects negative counters.
func (l WeekLine) Validate() error {
	for name, value := range l.counters() {
		if value < 0 {
			return &NegativeCounterError{Field: name, Value: value}
		}
	}
	return nil
}

func (l WeekLine) counters() map[string]int {
	return map[string]int{
		"passing_yards":     l.PassingYards,
		"passing_tds":       l.PassingTDs,
		"interceptions":     l.Interceptions,
		"rushing_yards":     l.RushingYards,
		"rushing_tds":       l.RushingTDs,
		"receptions":        l.Receptions,
		"receiving_yards":   l.ReceivingYards,
		"receiving_tds":     l.ReceivingTDs,
		"fg_0_39":           l.FG0To39,
		"fg_40_49":          l.FG40To49,
		"fg_50_plus":        l.FG50Plus,
		"fg_missed":         l.FGMissed,
		"xp_made":           l.XPMade,
		"xp_missed":         l.XPMissed,
		"points_allowed":    l.PointsAllowed,
		"sacks":             l.Sacks,
		"def_interceptions": l.DefInterceptions,
		"fumble_recoveries": l.FumbleRecoveries,
		"def_tds":           l.DefTDs,
	}
}

type NegativeCounterError struct {
	Field string
	Value int
}

func (e *NegativeCounterError) Error() string {
	return "stat counter " + e.Field + " must not be negative"
}

// Candidate is one normalized box-score line awaiting storage. Unmatched
// candidates keep the external identity so an admin can map them later.
type Candidate struct {
	ExternalKey string
	Name        string
	Team        string
	Position    player.Position
	PlayerID    string
	Matched     bool
	Tier        string
	Line        WeekLine
}

// Unmatched is a stored candidate no known player could be resolved for.
type Unmatched struct {
	WeekName    string
	ExternalKey string
	Name        string
	Team        string
	Position    player.Position
	Line        WeekLine
	UpdatedAt   time.Time
}

// Alias pins an external box-score identity to a known player so later
// syncs resolve it without fuzzy matching.
type Alias struct {
	ExternalKey string
	PlayerID    string
	UpdatedAt   time.Time
}
