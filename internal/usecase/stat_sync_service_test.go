package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/playoff-pool/internal/domain/boxscore"
	"github.com/riskibarqy/playoff-pool/internal/domain/playoff"
	"github.com/riskibarqy/playoff-pool/internal/domain/roster"
	"github.com/riskibarqy/playoff-pool/internal/domain/stats"
	"github.com/riskibarqy/playoff-pool/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/playoff-pool/internal/platform/cache"
	"github.com/riskibarqy/playoff-pool/internal/platform/id"
)

type fakeStatsProvider struct {
	games   []ExternalGame
	boxes   map[string]boxscore.BoxScore
	errs    map[string]error
	listErr error
}

func (p *fakeStatsProvider) ListGames(context.Context, int) ([]ExternalGame, error) {
	return p.games, p.listErr
}

func (p *fakeStatsProvider) FetchBoxScore(_ context.Context, gameID string) (boxscore.BoxScore, error) {
	if err := p.errs[gameID]; err != nil {
		return boxscore.BoxScore{}, err
	}
	return p.boxes[gameID], nil
}

func balAtKCBoxScore() boxscore.BoxScore {
	return boxscore.BoxScore{
		GameID: "g1",
		Status: boxscore.StatusPost,
		Teams: []boxscore.TeamBox{
			{
				Team:  "BAL",
				Score: 24,
				Stats: []boxscore.TeamStat{{Name: "sacks", Value: "3"}, {Name: "interceptions", Value: "0"}},
				Categories: []boxscore.Category{
					{
						Name: "rushing",
						Keys: []string{"rushingAttempts", "rushingYards", "rushingTouchdowns"},
						Athletes: []boxscore.AthleteLine{
							{ID: "10", Name: "Derrick Henry", Position: "RB", Values: []string{"25", "150", "2"}},
						},
					},
					{
						Name: "receiving",
						Keys: []string{"receptions", "receivingYards", "receivingTouchdowns"},
						Athletes: []boxscore.AthleteLine{
							{ID: "77", Name: "Practice Squad Callup", Position: "WR", Values: []string{"2", "31", "0"}},
						},
					},
					{
						Name: "kicking",
						Keys: []string{"fieldGoalsMade/fieldGoalAttempts", "extraPointsMade/extraPointAttempts"},
						Athletes: []boxscore.AthleteLine{
							{ID: "11", Name: "Justin Tucker", Position: "K", Values: []string{"1/1", "3/3"}},
						},
					},
				},
			},
			{
				Team:  "KC",
				Score: 17,
				Stats: []boxscore.TeamStat{{Name: "interceptions", Value: "1"}, {Name: "fumblesLost", Value: "1"}},
			},
		},
		ScoringPlays: []boxscore.ScoringPlay{{Team: "BAL", Text: "Justin Tucker 51 Yd Field Goal"}},
	}
}

type statSyncFixture struct {
	svc        *StatSyncService
	statsRepo  *memory.StatsRepository
	rosterRepo *memory.RosterRepository
	provider   *fakeStatsProvider
}

func newStatSyncFixture(t *testing.T) *statSyncFixture {
	t.Helper()

	playerRepo := memory.NewPlayerRepository(memory.SeedPlayers())
	statsRepo := memory.NewStatsRepository()
	rosterRepo := memory.NewRosterRepository()
	userRepo := memory.NewUserRepository(memory.SeedUsers())
	rules := NewScoringRulesService(memory.NewScoringRepository(), cache.NewStore(time.Minute), nil)
	standingsSvc := NewStandingsService(rosterRepo, statsRepo, userRepo, playerRepo, rules, nil, nil)

	provider := &fakeStatsProvider{
		games: []ExternalGame{
			{ID: "g1", Status: boxscore.StatusPost, HomeTeam: "KC", AwayTeam: "BAL"},
			{ID: "g2", Status: boxscore.StatusPre, HomeTeam: "PHI", AwayTeam: "DET"},
		},
		boxes: map[string]boxscore.BoxScore{"g1": balAtKCBoxScore()},
	}

	svc := NewStatSyncService(provider, statsRepo, playerRepo, standingsSvc, StatSyncConfig{Concurrency: 2}, nil)
	svc.ids = &id.Sequence{Prefix: "sync-"}
	return &statSyncFixture{svc: svc, statsRepo: statsRepo, rosterRepo: rosterRepo, provider: provider}
}

func TestStatSyncService_SyncWeek_KeepsStrongestMatchOnCollision(t *testing.T) {
	derrick := boxscore.AthleteLine{ID: "10", Name: "Derrick Henry", Position: "RB", Values: []string{"25", "150", "2"}}
	keaton := boxscore.AthleteLine{ID: "99", Name: "Keaton Henry", Position: "RB", Values: []string{"1", "2", "0"}}

	tests := []struct {
		name     string
		athletes []boxscore.AthleteLine
	}{
		{name: "exact match first", athletes: []boxscore.AthleteLine{derrick, keaton}},
		{name: "last name match first", athletes: []boxscore.AthleteLine{keaton, derrick}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newStatSyncFixture(t)
			box := balAtKCBoxScore()
			box.Teams[0].Categories[0].Athletes = tc.athletes
			f.provider.boxes["g1"] = box

			report, err := f.svc.SyncWeek(t.Context(), 1)
			if err != nil {
				t.Fatalf("sync week: %v", err)
			}

			henry, ok, _ := f.statsRepo.Get(t.Context(), playoff.WeekWildcard, "bal-rb-henry")
			if !ok || henry.RushingYards != 150 || henry.RushingTDs != 2 {
				t.Fatalf("exact match must keep the line, got %+v", henry)
			}

			keys := make(map[string]bool, len(report.Unmatched))
			for _, item := range report.Unmatched {
				keys[item.ExternalKey] = true
			}
			if len(report.Unmatched) != 2 || !keys["espn:99"] || !keys["espn:77"] {
				t.Fatalf("displaced line must be reported unmatched: %+v", report.Unmatched)
			}
		})
	}
}

func TestStatSyncService_SyncWeek_StoresMatchedLinesAndReportsUnmatched(t *testing.T) {
	f := newStatSyncFixture(t)

	report, err := f.svc.SyncWeek(t.Context(), 1)
	if err != nil {
		t.Fatalf("sync week: %v", err)
	}
	if report.RunID != "sync-1" || report.WeekName != playoff.WeekWildcard {
		t.Fatalf("unexpected report identity: %+v", report)
	}
	if report.Games != 2 || report.GamesSkipped != 1 || report.GamesFailed != 0 {
		t.Fatalf("unexpected game counts: %+v", report)
	}
	if report.Lines != 4 {
		t.Fatalf("expected henry, tucker and two defenses, got %d lines", report.Lines)
	}
	if len(report.Unmatched) != 1 || report.Unmatched[0].ExternalKey != "espn:77" {
		t.Fatalf("unexpected unmatched: %+v", report.Unmatched)
	}

	henry, ok, _ := f.statsRepo.Get(t.Context(), playoff.WeekWildcard, "bal-rb-henry")
	if !ok || henry.RushingYards != 150 || henry.RushingTDs != 2 {
		t.Fatalf("unexpected henry line: %+v", henry)
	}
	tucker, _, _ := f.statsRepo.Get(t.Context(), playoff.WeekWildcard, "bal-k-tucker")
	if tucker.FG50Plus != 1 || tucker.XPMade != 3 {
		t.Fatalf("unexpected tucker line: %+v", tucker)
	}
	defense, _, _ := f.statsRepo.Get(t.Context(), playoff.WeekWildcard, "bal-dst")
	if defense.PointsAllowed != 17 || defense.DefInterceptions != 1 || defense.FumbleRecoveries != 1 || defense.Sacks != 3 {
		t.Fatalf("unexpected defense line: %+v", defense)
	}
}

func TestStatSyncService_SyncWeek_IsIdempotent(t *testing.T) {
	f := newStatSyncFixture(t)

	if _, err := f.svc.SyncWeek(t.Context(), 1); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	first, _ := f.statsRepo.ListByWeek(t.Context(), playoff.WeekWildcard)
	if _, err := f.svc.SyncWeek(t.Context(), 1); err != nil {
		t.Fatalf("second sync: %v", err)
	}
	second, _ := f.statsRepo.ListByWeek(t.Context(), playoff.WeekWildcard)

	if len(first) != len(second) {
		t.Fatalf("line count changed: %d vs %d", len(first), len(second))
	}
	for i := range first {
		a, b := first[i], second[i]
		a.UpdatedAt, b.UpdatedAt = time.Time{}, time.Time{}
		if a != b {
			t.Fatalf("line %d changed: %+v vs %+v", i, a, b)
		}
	}
}

func TestStatSyncService_SyncWeek_FailedGameDoesNotAbortRun(t *testing.T) {
	f := newStatSyncFixture(t)
	f.provider.games = append(f.provider.games, ExternalGame{ID: "g3", Status: boxscore.StatusIn})
	f.provider.errs = map[string]error{"g3": errors.New("timeout")}

	report, err := f.svc.SyncWeek(t.Context(), 1)
	if err != nil {
		t.Fatalf("sync week: %v", err)
	}
	if report.GamesFailed != 1 || len(report.Failures) != 1 || report.Failures[0].GameID != "g3" {
		t.Fatalf("unexpected failures: %+v", report)
	}
	if report.Lines == 0 {
		t.Fatalf("expected lines from the healthy game")
	}
}

func TestStatSyncService_SyncWeek_AllGamesFailed(t *testing.T) {
	f := newStatSyncFixture(t)
	f.provider.errs = map[string]error{"g1": errors.New("502")}

	_, err := f.svc.SyncWeek(t.Context(), 1)
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestStatSyncService_SyncWeek_ProviderListFailure(t *testing.T) {
	f := newStatSyncFixture(t)
	f.provider.listErr = errors.New("dns")

	_, err := f.svc.SyncWeek(t.Context(), 1)
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestStatSyncService_MapUnmatched_StoresLineAndAlias(t *testing.T) {
	f := newStatSyncFixture(t)
	if _, err := f.svc.SyncWeek(t.Context(), 1); err != nil {
		t.Fatalf("sync week: %v", err)
	}

	line, err := f.svc.MapUnmatched(t.Context(), 1, "espn:77", "bal-wr-flowers")
	if err != nil {
		t.Fatalf("map unmatched: %v", err)
	}
	if line.PlayerID != "bal-wr-flowers" || line.Receptions != 2 || line.ReceivingYards != 31 {
		t.Fatalf("unexpected mapped line: %+v", line)
	}
	pending, _ := f.svc.ListUnmatched(t.Context(), 1)
	if len(pending) != 0 {
		t.Fatalf("mapped entry must leave the unmatched list: %+v", pending)
	}

	report, err := f.svc.SyncWeek(t.Context(), 1)
	if err != nil {
		t.Fatalf("resync: %v", err)
	}
	if len(report.Unmatched) != 0 {
		t.Fatalf("alias should resolve on resync: %+v", report.Unmatched)
	}

	_, err = f.svc.MapUnmatched(t.Context(), 1, "espn:missing", "bal-wr-flowers")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStatSyncService_UpsertManual(t *testing.T) {
	f := newStatSyncFixture(t)

	line, err := f.svc.UpsertManual(t.Context(), ManualStatInput{
		Week:     2,
		PlayerID: "kc-qb-mahomes",
		Line:     stats.WeekLine{PassingYards: 300, PassingTDs: 3, Interceptions: 1},
	})
	if err != nil {
		t.Fatalf("upsert manual: %v", err)
	}
	if line.Source != stats.SourceManual || line.WeekName != playoff.WeekDivisional {
		t.Fatalf("unexpected manual line: %+v", line)
	}

	_, err = f.svc.UpsertManual(t.Context(), ManualStatInput{Week: 2, PlayerID: "kc-qb-mahomes", Line: stats.WeekLine{Sacks: -1}})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	_, err = f.svc.UpsertManual(t.Context(), ManualStatInput{Week: 2, PlayerID: "nobody"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStatSyncService_SyncWeek_RefreshesRosterTotals(t *testing.T) {
	f := newStatSyncFixture(t)
	now := time.Now()
	r := roster.New("demo-user-1", 1, now)
	_ = r.SetSlot(roster.SlotRB1, "bal-rb-henry", now)
	_ = r.SetSlot(roster.SlotK, "bal-k-tucker", now)
	if err := f.rosterRepo.Upsert(t.Context(), r); err != nil {
		t.Fatalf("seed roster: %v", err)
	}

	if _, err := f.svc.SyncWeek(t.Context(), 1); err != nil {
		t.Fatalf("sync week: %v", err)
	}

	stored, _, _ := f.rosterRepo.Get(t.Context(), "demo-user-1", 1)
	// henry 15 + 12, tucker 5 + 3
	if stored.TotalPoints != 35 {
		t.Fatalf("unexpected cached total: %v", stored.TotalPoints)
	}
}
