package standings

import (
	"testing"
	"time"

	"github.com/riskibarqy/playoff-pool/internal/domain/roster"
	"github.com/riskibarqy/playoff-pool/internal/domain/scoring"
	"github.com/riskibarqy/playoff-pool/internal/domain/stats"
	"github.com/riskibarqy/playoff-pool/internal/domain/user"
)

func rosterWith(userID string, week int, picks map[roster.Slot]string) roster.Roster {
	now := time.Date(2027, 1, 10, 0, 0, 0, 0, time.UTC)
	r := roster.New(userID, week, now)
	for slot, id := range picks {
		_ = r.SetSlot(slot, id, now)
	}
	return r
}

func TestRosterTotal_MissingStatsScoreZero(t *testing.T) {
	r := rosterWith("u1", 1, map[roster.Slot]string{
		roster.SlotQB:  "qb1",
		roster.SlotDST: "dst1",
		roster.SlotK:   "k1",
	})
	lines := map[string]stats.WeekLine{
		"qb1":  {PassingYards: 300, PassingTDs: 3, Interceptions: 1},
		"dst1": {Sacks: 3, DefInterceptions: 1},
	}

	total, players := RosterTotal(r, lines, scoring.DefaultRules())
	if total != 37 {
		t.Fatalf("unexpected total: %v", total)
	}
	if len(players) != 3 {
		t.Fatalf("unexpected players: %+v", players)
	}
	if players[2].Slot != roster.SlotK || players[2].HasStats || players[2].Points != 0 {
		t.Fatalf("kicker without stats should score zero: %+v", players[2])
	}
}

func TestWeek_RanksDescendingAndSkipsNonParticipants(t *testing.T) {
	users := []user.User{
		{UID: "u1", DisplayName: "Ana"},
		{UID: "u2", DisplayName: "Ben"},
		{UID: "u3", DisplayName: "Cy"},
		{UID: "u4", DisplayName: "Di"},
	}
	data := WeekData{
		Week: 1,
		Rosters: []roster.Roster{
			rosterWith("u1", 1, map[roster.Slot]string{roster.SlotQB: "qb-low"}),
			rosterWith("u2", 1, map[roster.Slot]string{roster.SlotQB: "qb-high"}),
			rosterWith("u3", 1, map[roster.Slot]string{roster.SlotQB: "qb-low"}),
		},
		Lines: map[string]stats.WeekLine{
			"qb-low":  {PassingYards: 100},
			"qb-high": {PassingYards: 250},
		},
	}

	entries := Week(users, data, scoring.DefaultRules())
	if len(entries) != 3 {
		t.Fatalf("expected 3 participants, got %d", len(entries))
	}
	wantOrder := []string{"u2", "u1", "u3"}
	wantRanks := []int{1, 2, 2}
	for i := range entries {
		if entries[i].UserID != wantOrder[i] || entries[i].Rank != wantRanks[i] {
			t.Fatalf("entry %d: got user=%s rank=%d", i, entries[i].UserID, entries[i].Rank)
		}
	}
	if entries[0].TotalPoints != 10 {
		t.Fatalf("unexpected leader total: %v", entries[0].TotalPoints)
	}
}

func TestCumulative_SumsWeeksAndIncludesLateJoiners(t *testing.T) {
	users := []user.User{{UID: "u1"}, {UID: "u2"}, {UID: "u3"}}
	weeks := []WeekData{
		{
			Week:    1,
			Rosters: []roster.Roster{rosterWith("u1", 1, map[roster.Slot]string{roster.SlotK: "k1"})},
			Lines:   map[string]stats.WeekLine{"k1": {FG40To49: 1, XPMissed: 1}},
		},
		{
			Week: 2,
			Rosters: []roster.Roster{
				rosterWith("u1", 2, map[roster.Slot]string{roster.SlotK: "k2"}),
				rosterWith("u2", 2, map[roster.Slot]string{roster.SlotK: "k3"}),
			},
			Lines: map[string]stats.WeekLine{
				"k2": {FG50Plus: 1},
				"k3": {FG0To39: 1, XPMade: 2},
			},
		},
	}

	entries := Cumulative(users, weeks, scoring.DefaultRules())
	if len(entries) != 2 {
		t.Fatalf("expected u3 to be excluded, got %+v", entries)
	}
	if entries[0].UserID != "u1" || entries[0].TotalPoints != 8 {
		t.Fatalf("unexpected leader: %+v", entries[0])
	}
	if entries[0].WeekTotals[1] != 3 || entries[0].WeekTotals[2] != 5 {
		t.Fatalf("unexpected week totals: %+v", entries[0].WeekTotals)
	}
	if entries[1].UserID != "u2" || entries[1].TotalPoints != 5 || entries[1].Rank != 2 {
		t.Fatalf("unexpected second entry: %+v", entries[1])
	}
}

func TestWeek_ExcludesEmptyDrafts(t *testing.T) {
	users := []user.User{{UID: "u1"}, {UID: "u2"}}
	data := WeekData{
		Week: 1,
		Rosters: []roster.Roster{
			rosterWith("u1", 1, map[roster.Slot]string{roster.SlotQB: "qb1"}),
			rosterWith("u2", 1, nil),
		},
		Lines: map[string]stats.WeekLine{},
	}

	entries := Week(users, data, scoring.DefaultRules())
	if len(entries) != 1 || entries[0].UserID != "u1" {
		t.Fatalf("empty draft must not participate, got %+v", entries)
	}
	if entries[0].TotalPoints != 0 || entries[0].Rank != 1 {
		t.Fatalf("picked roster without stats still ranks: %+v", entries[0])
	}
}
