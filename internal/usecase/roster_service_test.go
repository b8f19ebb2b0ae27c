package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/playoff-pool/internal/domain/playoff"
	"github.com/riskibarqy/playoff-pool/internal/domain/roster"
	"github.com/riskibarqy/playoff-pool/internal/infrastructure/repository/memory"
	rostermock "github.com/riskibarqy/playoff-pool/internal/mocks/domain/roster"
	usedplayersmock "github.com/riskibarqy/playoff-pool/internal/mocks/domain/usedplayers"
	"github.com/stretchr/testify/mock"
)

var fullWildcardRoster = map[roster.Slot]string{
	roster.SlotQB:  "buf-qb-allen",
	roster.SlotRB1: "phi-rb-barkley",
	roster.SlotRB2: "det-rb-gibbs",
	roster.SlotWR1: "lar-wr-nacua",
	roster.SlotWR2: "det-wr-stbrown",
	roster.SlotWR3: "phi-wr-brown",
	roster.SlotTE:  "kc-te-kelce",
	roster.SlotDST: "phi-dst",
	roster.SlotK:   "bal-k-tucker",
}

type rosterFixture struct {
	svc         *RosterService
	rosterRepo  *memory.RosterRepository
	usedRepo    *memory.UsedPlayersRepository
	playoffRepo *memory.PlayoffRepository
	now         time.Time
}

func newRosterFixture(t *testing.T) *rosterFixture {
	t.Helper()

	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	rosterRepo := memory.NewRosterRepository()
	usedRepo := memory.NewUsedPlayersRepository()
	playoffRepo := memory.NewPlayoffRepository(memory.SeedPlayoffConfigs())

	svc := NewRosterService(
		rosterRepo,
		usedRepo,
		memory.NewPlayerRepository(memory.SeedPlayers()),
		playoffRepo,
		memory.NewUserRepository(memory.SeedUsers()),
		RosterServiceConfig{BulkWorkers: 2},
		nil,
	)
	svc.now = func() time.Time { return now }

	return &rosterFixture{svc: svc, rosterRepo: rosterRepo, usedRepo: usedRepo, playoffRepo: playoffRepo, now: now}
}

func (f *rosterFixture) fill(t *testing.T, userID string, week int, picks map[roster.Slot]string) {
	t.Helper()
	for _, slot := range roster.Slots {
		playerID, ok := picks[slot]
		if !ok {
			continue
		}
		if _, err := f.svc.SetSlot(t.Context(), SetSlotInput{UserID: userID, Week: week, Slot: string(slot), PlayerID: playerID}); err != nil {
			t.Fatalf("set slot %s=%s: %v", slot, playerID, err)
		}
	}
}

func (f *rosterFixture) setDeadline(t *testing.T, weekName string, deadline time.Time) {
	t.Helper()
	cfg, _, err := f.playoffRepo.Get(t.Context(), weekName)
	if err != nil {
		t.Fatalf("get config: %v", err)
	}
	cfg.WeekName = weekName
	cfg.Deadline = &deadline
	if err := f.playoffRepo.Upsert(t.Context(), cfg); err != nil {
		t.Fatalf("upsert config: %v", err)
	}
}

func TestRosterService_Get_CreatesDraftOnFirstView(t *testing.T) {
	f := newRosterFixture(t)

	view, err := f.svc.Get(t.Context(), "demo-user-1", 1)
	if err != nil {
		t.Fatalf("get roster: %v", err)
	}
	if view.State != roster.StateDraft {
		t.Fatalf("unexpected state: %s", view.State)
	}
	if _, exists, _ := f.rosterRepo.Get(t.Context(), "demo-user-1", 1); !exists {
		t.Fatalf("expected draft roster to be persisted")
	}
}

func TestRosterService_Get_RejectsUnknownWeek(t *testing.T) {
	f := newRosterFixture(t)

	_, err := f.svc.Get(t.Context(), "demo-user-1", 5)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRosterService_LockAddsPlayersToLedger(t *testing.T) {
	f := newRosterFixture(t)
	f.fill(t, "demo-user-1", 1, fullWildcardRoster)

	view, err := f.svc.Lock(t.Context(), "demo-user-1", 1)
	if err != nil {
		t.Fatalf("lock roster: %v", err)
	}
	if view.State != roster.StateLocked || view.Roster.LockedAt == nil {
		t.Fatalf("expected locked roster, got %+v", view)
	}

	used, err := f.svc.UsedPlayers(t.Context(), "demo-user-1")
	if err != nil {
		t.Fatalf("used players: %v", err)
	}
	if len(used) != len(roster.Slots) {
		t.Fatalf("unexpected used count: %d", len(used))
	}
}

func TestRosterService_Lock_IncompleteStaysDraft(t *testing.T) {
	f := newRosterFixture(t)
	picks := make(map[roster.Slot]string)
	for slot, id := range fullWildcardRoster {
		if slot != roster.SlotK {
			picks[slot] = id
		}
	}
	f.fill(t, "demo-user-1", 1, picks)

	_, err := f.svc.Lock(t.Context(), "demo-user-1", 1)
	if !errors.Is(err, roster.ErrRosterIncomplete) {
		t.Fatalf("expected ErrRosterIncomplete, got %v", err)
	}

	stored, _, _ := f.rosterRepo.Get(t.Context(), "demo-user-1", 1)
	if stored.Locked {
		t.Fatalf("incomplete roster must stay draft")
	}
	used, _ := f.svc.UsedPlayers(t.Context(), "demo-user-1")
	if len(used) != 0 {
		t.Fatalf("ledger must not change, got %v", used)
	}
}

func TestRosterService_SetSlot_RejectsUsedPlayerInLaterWeek(t *testing.T) {
	f := newRosterFixture(t)
	f.fill(t, "demo-user-1", 1, fullWildcardRoster)
	if _, err := f.svc.Lock(t.Context(), "demo-user-1", 1); err != nil {
		t.Fatalf("lock roster: %v", err)
	}

	_, err := f.svc.SetSlot(t.Context(), SetSlotInput{UserID: "demo-user-1", Week: 2, Slot: "qb", PlayerID: "buf-qb-allen"})
	if !errors.Is(err, roster.ErrPlayerUsed) {
		t.Fatalf("expected ErrPlayerUsed, got %v", err)
	}

	if _, err := f.svc.SetSlot(t.Context(), SetSlotInput{UserID: "demo-user-2", Week: 2, Slot: "qb", PlayerID: "buf-qb-allen"}); err != nil {
		t.Fatalf("other users keep their own ledger: %v", err)
	}
}

func TestRosterService_SetSlot_RejectsEliminatedTeam(t *testing.T) {
	f := newRosterFixture(t)

	_, err := f.svc.SetSlot(t.Context(), SetSlotInput{UserID: "demo-user-1", Week: 1, Slot: "qb", PlayerID: "buf-qb-allen"})
	if err != nil {
		t.Fatalf("alive team rejected: %v", err)
	}

	cfg, _, _ := f.playoffRepo.Get(t.Context(), playoff.WeekWildcard)
	cfg.Teams = []string{"PHI"}
	if err := f.playoffRepo.Upsert(t.Context(), cfg); err != nil {
		t.Fatalf("upsert config: %v", err)
	}

	_, err = f.svc.SetSlot(t.Context(), SetSlotInput{UserID: "demo-user-1", Week: 1, Slot: "rb1", PlayerID: "det-rb-gibbs"})
	if !errors.Is(err, roster.ErrTeamEliminated) {
		t.Fatalf("expected ErrTeamEliminated, got %v", err)
	}
}

func TestRosterService_SetSlot_RejectsAfterDeadline(t *testing.T) {
	f := newRosterFixture(t)
	f.setDeadline(t, playoff.WeekWildcard, f.now.Add(-time.Minute))

	_, err := f.svc.SetSlot(t.Context(), SetSlotInput{UserID: "demo-user-1", Week: 1, Slot: "qb", PlayerID: "buf-qb-allen"})
	if !errors.Is(err, roster.ErrRosterLocked) {
		t.Fatalf("expected ErrRosterLocked, got %v", err)
	}

	view, err := f.svc.Get(t.Context(), "demo-user-1", 1)
	if err != nil {
		t.Fatalf("get roster: %v", err)
	}
	if !view.EffectiveLocked || view.State != roster.StateDraft {
		t.Fatalf("expected display-locked draft, got locked=%v state=%s", view.EffectiveLocked, view.State)
	}
}

func TestRosterService_Lock_RejectedAfterDeadline(t *testing.T) {
	f := newRosterFixture(t)
	f.fill(t, "demo-user-1", 1, fullWildcardRoster)
	f.setDeadline(t, playoff.WeekWildcard, f.now)

	_, err := f.svc.Lock(t.Context(), "demo-user-1", 1)
	if !errors.Is(err, roster.ErrRosterLocked) {
		t.Fatalf("expected ErrRosterLocked, got %v", err)
	}
}

func TestRosterService_EligiblePlayers_FiltersByPositionAndLedger(t *testing.T) {
	f := newRosterFixture(t)
	if err := f.usedRepo.Union(t.Context(), "demo-user-1", []string{"buf-qb-allen"}); err != nil {
		t.Fatalf("union: %v", err)
	}

	got, err := f.svc.EligiblePlayers(t.Context(), "demo-user-1", 1, "qb")
	if err != nil {
		t.Fatalf("eligible players: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("unexpected eligible count: %d", len(got))
	}
	if got[0].ID != "kc-qb-mahomes" || got[1].ID != "lar-qb-stafford" {
		t.Fatalf("unexpected order: %s, %s", got[0].ID, got[1].ID)
	}
}

func TestRosterService_BulkLock_CountsOutcomes(t *testing.T) {
	f := newRosterFixture(t)
	f.fill(t, "demo-user-1", 1, fullWildcardRoster)
	f.fill(t, "demo-user-2", 1, map[roster.Slot]string{roster.SlotQB: "kc-qb-mahomes"})

	result, err := f.svc.BulkLock(t.Context(), 1)
	if err != nil {
		t.Fatalf("bulk lock: %v", err)
	}
	if result.Total != 2 || result.Locked != 1 || result.Skipped != 1 || result.Failed != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Items[1].Status != bulkLockStatusIncomplete {
		t.Fatalf("unexpected status for incomplete roster: %+v", result.Items[1])
	}

	again, err := f.svc.BulkLock(t.Context(), 1)
	if err != nil {
		t.Fatalf("bulk lock rerun: %v", err)
	}
	if again.AlreadyLocked != 1 || again.Locked != 0 || again.Succeeded != 1 {
		t.Fatalf("rerun must be idempotent: %+v", again)
	}
}

func TestRosterService_Lock_RejectsPlayersUsedByAnotherDraft(t *testing.T) {
	f := newRosterFixture(t)
	f.fill(t, "demo-user-1", 1, fullWildcardRoster)
	f.fill(t, "demo-user-1", 2, fullWildcardRoster)

	if _, err := f.svc.Lock(t.Context(), "demo-user-1", 1); err != nil {
		t.Fatalf("lock week 1: %v", err)
	}

	_, err := f.svc.Lock(t.Context(), "demo-user-1", 2)
	if !errors.Is(err, roster.ErrPlayerUsed) {
		t.Fatalf("expected ErrPlayerUsed, got %v", err)
	}
	stored, _, err := f.rosterRepo.Get(t.Context(), "demo-user-1", 2)
	if err != nil {
		t.Fatalf("get roster: %v", err)
	}
	if stored.Locked {
		t.Fatalf("week 2 roster must stay a draft")
	}
}

func TestRosterService_BulkLock_FailsRostersWithUsedPlayers(t *testing.T) {
	f := newRosterFixture(t)
	f.fill(t, "demo-user-1", 1, fullWildcardRoster)
	f.fill(t, "demo-user-1", 2, fullWildcardRoster)
	if _, err := f.svc.Lock(t.Context(), "demo-user-1", 1); err != nil {
		t.Fatalf("lock week 1: %v", err)
	}

	result, err := f.svc.BulkLock(t.Context(), 2)
	if err != nil {
		t.Fatalf("bulk lock: %v", err)
	}
	if result.Total != 1 || result.Locked != 0 || result.Failed != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Items[0].Status != bulkLockStatusPlayerUsed {
		t.Fatalf("unexpected status: %+v", result.Items[0])
	}
}

func TestRosterService_SweepDeadlines_LocksPassedWeeksOnly(t *testing.T) {
	f := newRosterFixture(t)
	f.fill(t, "demo-user-1", 1, fullWildcardRoster)

	results, err := f.svc.SweepDeadlines(t.Context())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("no deadline passed yet, got %d results", len(results))
	}

	f.setDeadline(t, playoff.WeekWildcard, f.now.Add(-time.Hour))
	results, err = f.svc.SweepDeadlines(t.Context())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(results) != 1 || results[0].Locked != 1 {
		t.Fatalf("unexpected sweep results: %+v", results)
	}

	results, err = f.svc.SweepDeadlines(t.Context())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("second sweep has nothing to lock, got %+v", results)
	}
}

func TestRosterService_RepairUsedPlayers_RebuildsFromLockedRosters(t *testing.T) {
	f := newRosterFixture(t)
	f.fill(t, "demo-user-1", 1, fullWildcardRoster)
	if _, err := f.svc.Lock(t.Context(), "demo-user-1", 1); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if err := f.svc.ResetUsedPlayers(t.Context(), "demo-user-1"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := f.usedRepo.Union(t.Context(), "demo-user-2", []string{"stale-id"}); err != nil {
		t.Fatalf("union: %v", err)
	}

	result, err := f.svc.RepairUsedPlayers(t.Context(), "")
	if err != nil {
		t.Fatalf("repair: %v", err)
	}
	if result.Users != 2 || result.Repaired != 2 {
		t.Fatalf("unexpected repair result: %+v", result)
	}

	used, _ := f.svc.UsedPlayers(t.Context(), "demo-user-1")
	if len(used) != len(roster.Slots) {
		t.Fatalf("ledger not rebuilt: %v", used)
	}
	other, _ := f.svc.UsedPlayers(t.Context(), "demo-user-2")
	if len(other) != 0 {
		t.Fatalf("stale ledger entries must be dropped: %v", other)
	}
}

func TestRosterService_Lock_LedgerFailureKeepsRosterLockedUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	rosterRepo := rostermock.NewRepository(t)
	usedRepo := usedplayersmock.NewRepository(t)

	svc := NewRosterService(
		rosterRepo,
		usedRepo,
		memory.NewPlayerRepository(memory.SeedPlayers()),
		memory.NewPlayoffRepository(memory.SeedPlayoffConfigs()),
		memory.NewUserRepository(nil),
		RosterServiceConfig{},
		nil,
	)
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	draft := roster.New("demo-user-1", 1, now)
	for slot, id := range fullWildcardRoster {
		if err := draft.SetSlot(slot, id, now); err != nil {
			t.Fatalf("set slot: %v", err)
		}
	}

	rosterRepo.
		On("Get", mock.Anything, "demo-user-1", 1).
		Return(draft, true, nil).
		Once()
	rosterRepo.
		On("Upsert", mock.Anything, mock.MatchedBy(func(r roster.Roster) bool { return r.Locked })).
		Return(nil).
		Once()
	usedRepo.
		On("Union", mock.Anything, "demo-user-1", mock.MatchedBy(func(ids []string) bool { return len(ids) == len(roster.Slots) })).
		Return(errors.New("ledger unavailable")).
		Once()

	view, err := svc.Lock(ctx, "demo-user-1", 1)
	if !errors.Is(err, ErrUsedPlayersLag) {
		t.Fatalf("expected ErrUsedPlayersLag, got %v", err)
	}
	if !view.Roster.Locked || view.State != roster.StateLocked {
		t.Fatalf("roster must stay locked after ledger failure: %+v", view)
	}
}

func TestRosterService_Lock_PersistFailureSkipsLedgerUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	rosterRepo := rostermock.NewRepository(t)
	usedRepo := usedplayersmock.NewRepository(t)

	svc := NewRosterService(
		rosterRepo,
		usedRepo,
		memory.NewPlayerRepository(memory.SeedPlayers()),
		memory.NewPlayoffRepository(nil),
		memory.NewUserRepository(nil),
		RosterServiceConfig{},
		nil,
	)

	draft := roster.New("demo-user-1", 2, time.Now())
	for slot, id := range fullWildcardRoster {
		_ = draft.SetSlot(slot, id, time.Now())
	}

	rosterRepo.On("Get", mock.Anything, "demo-user-1", 2).Return(draft, true, nil).Once()
	rosterRepo.On("Upsert", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()

	_, err := svc.Lock(ctx, "demo-user-1", 2)
	if err == nil || errors.Is(err, ErrUsedPlayersLag) {
		t.Fatalf("expected plain persist error, got %v", err)
	}
	usedRepo.AssertNotCalled(t, "Union", mock.Anything, mock.Anything, mock.Anything)
}
