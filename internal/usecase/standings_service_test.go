package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/playoff-pool/internal/domain/playoff"
	"github.com/riskibarqy/playoff-pool/internal/domain/roster"
	"github.com/riskibarqy/playoff-pool/internal/domain/stats"
	"github.com/riskibarqy/playoff-pool/internal/domain/user"
	"github.com/riskibarqy/playoff-pool/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/playoff-pool/internal/platform/cache"
)

func newStandingsFixture(t *testing.T) *StandingsService {
	t.Helper()

	now := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)
	rosterRepo := memory.NewRosterRepository()
	statsRepo := memory.NewStatsRepository()
	userRepo := memory.NewUserRepository([]user.User{
		{UID: "user-1", DisplayName: "One"},
		{UID: "user-2", DisplayName: "Two"},
		{UID: "user-3", DisplayName: "Spectator"},
	})
	playerRepo := memory.NewPlayerRepository(memory.SeedPlayers())
	rules := NewScoringRulesService(memory.NewScoringRepository(), cache.NewStore(time.Minute), nil)
	weeks := NewPlayoffService(memory.NewPlayoffRepository(nil), nil, nil)

	seed := func(userID string, week int, picks map[roster.Slot]string) {
		r := roster.New(userID, week, now)
		for slot, id := range picks {
			if err := r.SetSlot(slot, id, now); err != nil {
				t.Fatalf("set slot: %v", err)
			}
		}
		if err := rosterRepo.Upsert(t.Context(), r); err != nil {
			t.Fatalf("seed roster: %v", err)
		}
	}
	seed("user-1", 1, map[roster.Slot]string{roster.SlotRB1: "bal-rb-henry", roster.SlotK: "bal-k-tucker"})
	seed("user-2", 1, map[roster.Slot]string{roster.SlotQB: "kc-qb-mahomes"})
	seed("user-2", 2, map[roster.Slot]string{roster.SlotQB: "buf-qb-allen"})

	err := statsRepo.UpsertMany(t.Context(), []stats.WeekLine{
		{WeekName: playoff.WeekWildcard, PlayerID: "bal-rb-henry", RushingYards: 150, RushingTDs: 2},
		{WeekName: playoff.WeekWildcard, PlayerID: "bal-k-tucker", FG50Plus: 1, XPMade: 3},
		{WeekName: playoff.WeekWildcard, PlayerID: "kc-qb-mahomes", PassingYards: 300, PassingTDs: 3, Interceptions: 1},
		{WeekName: playoff.WeekDivisional, PlayerID: "buf-qb-allen", PassingYards: 300, PassingTDs: 3, Interceptions: 1},
	})
	if err != nil {
		t.Fatalf("seed stats: %v", err)
	}

	return NewStandingsService(rosterRepo, statsRepo, userRepo, playerRepo, rules, weeks, nil)
}

func TestStandingsService_WeekStandings_RanksParticipantsOnly(t *testing.T) {
	svc := newStandingsFixture(t)

	entries, err := svc.WeekStandings(t.Context(), 1)
	if err != nil {
		t.Fatalf("week standings: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("spectator must be excluded, got %d entries", len(entries))
	}
	if entries[0].UserID != "user-1" || entries[0].TotalPoints != 35 || entries[0].Rank != 1 {
		t.Fatalf("unexpected leader: %+v", entries[0])
	}
	if entries[1].UserID != "user-2" || entries[1].TotalPoints != 22 || entries[1].Rank != 2 {
		t.Fatalf("unexpected runner-up: %+v", entries[1])
	}
}

func TestStandingsService_Cumulative_SumsWeeksThroughTarget(t *testing.T) {
	svc := newStandingsFixture(t)

	entries, err := svc.Cumulative(t.Context(), 2)
	if err != nil {
		t.Fatalf("cumulative: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("unexpected entry count: %d", len(entries))
	}
	if entries[0].UserID != "user-2" || entries[0].TotalPoints != 44 {
		t.Fatalf("unexpected leader: %+v", entries[0])
	}
	if entries[0].WeekTotals[1] != 22 || entries[0].WeekTotals[2] != 22 {
		t.Fatalf("unexpected week totals: %+v", entries[0].WeekTotals)
	}
	if entries[1].UserID != "user-1" || entries[1].TotalPoints != 35 {
		t.Fatalf("user without a week 2 roster keeps week 1 points: %+v", entries[1])
	}
}

func TestStandingsService_Cumulative_DefaultsToCurrentWeek(t *testing.T) {
	svc := newStandingsFixture(t)

	entries, err := svc.Cumulative(t.Context(), 0)
	if err != nil {
		t.Fatalf("cumulative: %v", err)
	}
	for _, entry := range entries {
		if _, ok := entry.WeekTotals[2]; ok {
			t.Fatalf("current week is wildcard, divisional must not be summed: %+v", entry)
		}
	}
}

func TestStandingsService_PlayerBreakdown(t *testing.T) {
	svc := newStandingsFixture(t)

	got, err := svc.PlayerBreakdown(t.Context(), "kc-qb-mahomes", 1)
	if err != nil {
		t.Fatalf("player breakdown: %v", err)
	}
	if !got.HasStats || got.Points != 22 || len(got.Items) != 3 {
		t.Fatalf("unexpected breakdown: %+v", got)
	}

	empty, err := svc.PlayerBreakdown(t.Context(), "phi-dst", 1)
	if err != nil {
		t.Fatalf("player breakdown without stats: %v", err)
	}
	if empty.HasStats || empty.Points != 0 || len(empty.Items) != 0 {
		t.Fatalf("player without stats scores zero: %+v", empty)
	}

	_, err = svc.PlayerBreakdown(t.Context(), "missing", 1)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStandingsService_RecomputeRosterTotals_OnlyWritesChanges(t *testing.T) {
	svc := newStandingsFixture(t)

	updated, err := svc.RecomputeRosterTotals(t.Context(), 1)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if updated != 2 {
		t.Fatalf("expected two rosters updated, got %d", updated)
	}

	updated, err = svc.RecomputeRosterTotals(t.Context(), 1)
	if err != nil {
		t.Fatalf("recompute again: %v", err)
	}
	if updated != 0 {
		t.Fatalf("unchanged totals must not be rewritten, got %d", updated)
	}
}

func TestStandingsService_WeekStandings_IgnoresViewedOnlyRosters(t *testing.T) {
	rosterRepo := memory.NewRosterRepository()
	usedRepo := memory.NewUsedPlayersRepository()
	playerRepo := memory.NewPlayerRepository(memory.SeedPlayers())
	playoffRepo := memory.NewPlayoffRepository(memory.SeedPlayoffConfigs())
	userRepo := memory.NewUserRepository(memory.SeedUsers())

	rosters := NewRosterService(rosterRepo, usedRepo, playerRepo, playoffRepo, userRepo, RosterServiceConfig{BulkWorkers: 1}, nil)
	if _, err := rosters.Get(t.Context(), "demo-user-2", 1); err != nil {
		t.Fatalf("view roster: %v", err)
	}
	if _, err := rosters.SetSlot(t.Context(), SetSlotInput{UserID: "demo-user-1", Week: 1, Slot: "qb", PlayerID: "buf-qb-allen"}); err != nil {
		t.Fatalf("set slot: %v", err)
	}

	rules := NewScoringRulesService(memory.NewScoringRepository(), cache.NewStore(time.Minute), nil)
	weeks := NewPlayoffService(playoffRepo, nil, nil)
	svc := NewStandingsService(rosterRepo, memory.NewStatsRepository(), userRepo, playerRepo, rules, weeks, nil)

	entries, err := svc.WeekStandings(t.Context(), 1)
	if err != nil {
		t.Fatalf("week standings: %v", err)
	}
	if len(entries) != 1 || entries[0].UserID != "demo-user-1" {
		t.Fatalf("viewed-only roster must not be ranked, got %+v", entries)
	}
}
