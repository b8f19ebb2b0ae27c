package standings

import (
	"sort"

	"github.com/riskibarqy/playoff-pool/internal/domain/roster"
	"github.com/riskibarqy/playoff-pool/internal/domain/scoring"
	"github.com/riskibarqy/playoff-pool/internal/domain/stats"
	"github.com/riskibarqy/playoff-pool/internal/domain/user"
)

// PlayerPoints is one slot's contribution to a roster total.
type PlayerPoints struct {
	Week     int
	Slot     roster.Slot
	PlayerID string
	Points   float64
	HasStats bool
}

type Entry struct {
	UserID      string
	DisplayName string
	Rank        int
	TotalPoints float64
	WeekTotals  map[int]float64
	Players     []PlayerPoints
}

// WeekData bundles the rosters and stat lines of one week. Lines are keyed by
// player id.
type WeekData struct {
	Week    int
	Rosters []roster.Roster
	Lines   map[string]stats.WeekLine
}

// RosterTotal sums every filled slot. A player without a stat line scores zero.
func RosterTotal(r roster.Roster, lines map[string]stats.WeekLine, rules scoring.Rules) (float64, []PlayerPoints) {
	players := make([]PlayerPoints, 0, len(roster.Slots))
	var total float64
	for _, slot := range roster.Slots {
		playerID := r.Get(slot)
		if playerID == "" {
			continue
		}
		item := PlayerPoints{Week: r.Week, Slot: slot, PlayerID: playerID}
		if line, ok := lines[playerID]; ok {
			item.HasStats = true
			item.Points = scoring.CalculatePoints(line.StatLine(), rules, slot.Position())
		}
		total += item.Points
		players = append(players, item)
	}
	return scoring.Round2(total), players
}

// Week ranks users who have a participating roster for the week.
func Week(users []user.User, data WeekData, rules scoring.Rules) []Entry {
	return Cumulative(users, []WeekData{data}, rules)
}

// Cumulative sums weekly totals across the given weeks. Users without a
// participating roster in any of them are left out.
func Cumulative(users []user.User, weeks []WeekData, rules scoring.Rules) []Entry {
	entries := make([]Entry, 0, len(users))
	for _, u := range users {
		entry := Entry{
			UserID:      u.UID,
			DisplayName: u.DisplayName,
			WeekTotals:  make(map[int]float64),
		}
		participating := false
		var total float64
		for _, week := range weeks {
			r, ok := findRoster(week.Rosters, u.UID)
			if !ok || !r.Participating() {
				continue
			}
			participating = true
			weekTotal, players := RosterTotal(r, week.Lines, rules)
			entry.WeekTotals[week.Week] = weekTotal
			entry.Players = append(entry.Players, players...)
			total += weekTotal
		}
		if !participating {
			continue
		}
		entry.TotalPoints = scoring.Round2(total)
		entries = append(entries, entry)
	}

	Rank(entries)
	return entries
}

// Rank orders entries by total descending and assigns dense ranks. Ties keep
// input order.
func Rank(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalPoints > entries[j].TotalPoints
	})

	var lastPoints float64
	rank := 0
	for idx := range entries {
		if idx == 0 || entries[idx].TotalPoints != lastPoints {
			rank++
			lastPoints = entries[idx].TotalPoints
		}
		entries[idx].Rank = rank
	}
}

func findRoster(rosters []roster.Roster, userID string) (roster.Roster, bool) {
	for _, r := range rosters {
		if r.UserID == userID {
			return r, true
		}
	}
	return roster.Roster{}, false
}
