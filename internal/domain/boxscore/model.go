package boxscore

import "strings"

type Status string

const (
	StatusPre  Status = "pre"
	StatusIn   Status = "in"
	StatusPost Status = "post"
)

// ParseStatus maps a provider status state onto the three game phases.
// Unknown values are treated as not started.
func ParseStatus(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "in", "in_progress", "halftime":
		return StatusIn
	case "post", "final", "final_ot", "completed":
		return StatusPost
	default:
		return StatusPre
	}
}

// Started reports whether a game can produce stat lines.
func (s Status) Started() bool {
	return s == StatusIn || s == StatusPost
}

// BoxScore is one game's provider summary reduced to what ingestion reads.
// Values stay as provider strings; parsing happens in Normalize.
type BoxScore struct {
	GameID       string
	Status       Status
	Teams        []TeamBox
	ScoringPlays []ScoringPlay
}

type TeamBox struct {
	Team       string
	Score      int
	Stats      []TeamStat
	Categories []Category
}

type TeamStat struct {
	Name  string
	Value string
}

// Category is one stat table (passing, rushing, kicking, ...) whose athlete
// rows hold values parallel to Keys.
type Category struct {
	Name     string
	Keys     []string
	Athletes []AthleteLine
}

type AthleteLine struct {
	ID       string
	Name     string
	Position string
	Values   []string
}

type ScoringPlay struct {
	Team string
	Type string
	Text string
}

func (t TeamBox) stat(name string) (string, bool) {
	for _, item := range t.Stats {
		if strings.EqualFold(item.Name, name) {
			return item.Value, true
		}
	}
	return "", false
}

func (a AthleteLine) value(keys []string, key string) string {
	for i, k := range keys {
		if k == key && i < len(a.Values) {
			return a.Values[i]
		}
	}
	return ""
}
