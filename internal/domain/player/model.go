package player

import (
	"fmt"
	"regexp"
	"strings"
)

// Position represents NFL roster position categories used in pool rules.
type Position string

const (
	PositionQuarterback  Position = "QB"
	PositionRunningBack  Position = "RB"
	PositionWideReceiver Position = "WR"
	PositionTightEnd     Position = "TE"
	PositionKicker       Position = "K"
	PositionDefense      Position = "DST"
)

var AllPositions = map[Position]struct{}{
	PositionQuarterback:  {},
	PositionRunningBack:  {},
	PositionWideReceiver: {},
	PositionTightEnd:     {},
	PositionKicker:       {},
	PositionDefense:      {},
}

// ParsePosition maps provider and CSV spellings onto a Position.
// Unknown values return the empty position.
func ParsePosition(raw string) Position {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "QB":
		return PositionQuarterback
	case "RB", "HB", "FB":
		return PositionRunningBack
	case "WR":
		return PositionWideReceiver
	case "TE":
		return PositionTightEnd
	case "K", "PK":
		return PositionKicker
	case "DST", "D/ST", "DEF", "D":
		return PositionDefense
	default:
		return ""
	}
}

type InjuryStatus string

const (
	InjuryNone         InjuryStatus = ""
	InjuryQuestionable InjuryStatus = "questionable"
	InjuryOut          InjuryStatus = "out"
)

func ParseInjuryStatus(raw string) InjuryStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "questionable", "q", "doubtful", "d":
		return InjuryQuestionable
	case "out", "o", "ir", "injured reserve", "suspended", "pup":
		return InjuryOut
	default:
		return InjuryNone
	}
}

// Player is a selectable athlete (or team defense) in the pool.
type Player struct {
	ID           string
	Name         string
	Team         string
	Position     Position
	ImageURL     string
	Rank         int
	InjuryStatus InjuryStatus
}

func (p Player) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("player id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("player name is required")
	}
	if !IsTeam(p.Team) {
		return fmt.Errorf("invalid player team: %s", p.Team)
	}
	if _, ok := AllPositions[p.Position]; !ok {
		return fmt.Errorf("invalid player position: %s", p.Position)
	}
	if p.Rank < 0 {
		return fmt.Errorf("player rank must not be negative")
	}

	return nil
}

var idUnsafeChars = regexp.MustCompile(`[^a-z0-9]+`)

// SyntheticID derives a stable id for players the provider never assigned one to.
func SyntheticID(name string, position Position) string {
	slug := idUnsafeChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	slug = strings.Trim(slug, "-")
	return "local-" + strings.ToLower(string(position)) + "-" + slug
}
