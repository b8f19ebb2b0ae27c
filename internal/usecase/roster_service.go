package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/playoff-pool/internal/domain/player"
	"github.com/riskibarqy/playoff-pool/internal/domain/playoff"
	"github.com/riskibarqy/playoff-pool/internal/domain/roster"
	"github.com/riskibarqy/playoff-pool/internal/domain/usedplayers"
	"github.com/riskibarqy/playoff-pool/internal/domain/user"
	"github.com/riskibarqy/playoff-pool/internal/platform/logging"
)

// ErrUsedPlayersLag marks a lock whose roster was persisted but whose
// used-players union failed. The roster stays locked; repair closes the gap.
var ErrUsedPlayersLag = errors.New("roster locked but used players update failed")

const (
	bulkLockStatusLocked        = "locked"
	bulkLockStatusAlreadyLocked = "already_locked"
	bulkLockStatusIncomplete    = "incomplete"
	bulkLockStatusPlayerUsed    = "player_used"
	bulkLockStatusFailed        = "failed"
	bulkLockStatusLedgerLag     = "ledger_lag"
)

type RosterServiceConfig struct {
	BulkWorkers int
}

type RosterView struct {
	Roster          roster.Roster
	State           roster.State
	Deadline        *time.Time
	EffectiveLocked bool
}

type SetSlotInput struct {
	UserID   string
	Week     int
	Slot     string
	PlayerID string
}

type BulkLockResult struct {
	Week          int            `json:"week"`
	Total         int            `json:"total"`
	Succeeded     int            `json:"succeeded"`
	Locked        int            `json:"locked"`
	AlreadyLocked int            `json:"already_locked"`
	Skipped       int            `json:"skipped"`
	Failed        int            `json:"failed"`
	Items         []BulkLockItem `json:"items"`
}

type BulkLockItem struct {
	UserID  string `json:"user_id"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type RepairResult struct {
	Users    int          `json:"users"`
	Repaired int          `json:"repaired"`
	Failed   int          `json:"failed"`
	Items    []RepairItem `json:"items"`
}

type RepairItem struct {
	UserID    string `json:"user_id"`
	PlayerIDs int    `json:"player_ids"`
	Error     string `json:"error,omitempty"`
}

// RosterService owns the weekly roster lifecycle and the used-players ledger.
type RosterService struct {
	rosterRepo  roster.Repository
	usedRepo    usedplayers.Repository
	playerRepo  player.Repository
	playoffRepo playoff.Repository
	userRepo    user.Repository
	cfg         RosterServiceConfig
	logger      *logging.Logger
	now         func() time.Time
}

func NewRosterService(
	rosterRepo roster.Repository,
	usedRepo usedplayers.Repository,
	playerRepo player.Repository,
	playoffRepo playoff.Repository,
	userRepo user.Repository,
	cfg RosterServiceConfig,
	logger *logging.Logger,
) *RosterService {
	if cfg.BulkWorkers <= 0 {
		cfg.BulkWorkers = 4
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RosterService{
		rosterRepo:  rosterRepo,
		usedRepo:    usedRepo,
		playerRepo:  playerRepo,
		playoffRepo: playoffRepo,
		userRepo:    userRepo,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// Get returns the user's roster for a week, creating an empty draft on first view.
func (s *RosterService) Get(ctx context.Context, userID string, week int) (RosterView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.Get", userAttr(userID), weekAttr(week))
	defer span.End()

	userID, weekCfg, err := s.resolveWeek(ctx, userID, week)
	if err != nil {
		return RosterView{}, err
	}

	item, err := s.getOrCreate(ctx, userID, week)
	if err != nil {
		return RosterView{}, err
	}
	return s.view(item, weekCfg), nil
}

func (s *RosterService) SetSlot(ctx context.Context, input SetSlotInput) (RosterView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.SetSlot")
	defer span.End()

	userID, weekCfg, err := s.resolveWeek(ctx, input.UserID, input.Week)
	if err != nil {
		return RosterView{}, err
	}
	slot, err := roster.ParseSlot(input.Slot)
	if err != nil {
		return RosterView{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	playerID := strings.TrimSpace(input.PlayerID)

	item, err := s.getOrCreate(ctx, userID, input.Week)
	if err != nil {
		return RosterView{}, err
	}
	now := s.now().UTC()
	if item.Locked {
		return RosterView{}, roster.ErrRosterLocked
	}
	if weekCfg.DeadlinePassed(now) {
		return RosterView{}, fmt.Errorf("%w: deadline passed for %s", roster.ErrRosterLocked, weekCfg.WeekName)
	}

	if playerID != "" {
		if err := s.checkPick(ctx, userID, slot, playerID, item, weekCfg); err != nil {
			return RosterView{}, err
		}
	}

	if err := item.SetSlot(slot, playerID, now); err != nil {
		return RosterView{}, err
	}
	if err := s.rosterRepo.Upsert(ctx, item); err != nil {
		return RosterView{}, fmt.Errorf("upsert roster: %w", err)
	}

	s.logger.InfoContext(ctx, "roster slot set",
		"user_id", userID,
		"week", input.Week,
		"slot", slot,
		"player_id", playerID,
	)
	return s.view(item, weekCfg), nil
}

func (s *RosterService) checkPick(ctx context.Context, userID string, slot roster.Slot, playerID string, current roster.Roster, weekCfg playoff.Config) error {
	candidate, exists, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return fmt.Errorf("get player: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: player=%s", ErrNotFound, playerID)
	}
	used, err := s.usedRepo.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("get used players: %w", err)
	}
	if err := roster.CheckEligibility(slot, candidate, used.PlayerIDs, current); err != nil {
		return err
	}
	if len(weekCfg.Teams) > 0 && !weekCfg.HasTeam(candidate.Team) {
		return fmt.Errorf("%w: %s plays for %s", roster.ErrTeamEliminated, candidate.ID, candidate.Team)
	}
	return nil
}

// EligiblePlayers lists the players a user may put into a slot this week.
func (s *RosterService) EligiblePlayers(ctx context.Context, userID string, week int, slotRaw string) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.EligiblePlayers")
	defer span.End()

	userID, weekCfg, err := s.resolveWeek(ctx, userID, week)
	if err != nil {
		return nil, err
	}
	slot, err := roster.ParseSlot(slotRaw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	current, _, err := s.rosterRepo.Get(ctx, userID, week)
	if err != nil {
		return nil, fmt.Errorf("get roster: %w", err)
	}
	used, err := s.usedRepo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get used players: %w", err)
	}
	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}

	out := make([]player.Player, 0)
	for _, candidate := range players {
		if !roster.IsEligible(slot, candidate, used.PlayerIDs, current) {
			continue
		}
		if len(weekCfg.Teams) > 0 && !weekCfg.HasTeam(candidate.Team) {
			continue
		}
		out = append(out, candidate)
	}
	sortPlayersByRank(out)
	return out, nil
}

// Lock is the user-initiated save-and-lock. It is refused after the deadline;
// from then on only the bulk lock path commits rosters.
func (s *RosterService) Lock(ctx context.Context, userID string, week int) (RosterView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.Lock", userAttr(userID), weekAttr(week))
	defer span.End()

	userID, weekCfg, err := s.resolveWeek(ctx, userID, week)
	if err != nil {
		return RosterView{}, err
	}

	item, exists, err := s.rosterRepo.Get(ctx, userID, week)
	if err != nil {
		return RosterView{}, fmt.Errorf("get roster: %w", err)
	}
	if !exists {
		return RosterView{}, fmt.Errorf("%w: 0 of %d slots filled", roster.ErrRosterIncomplete, len(roster.Slots))
	}
	if item.Locked {
		return s.view(item, weekCfg), nil
	}
	if weekCfg.DeadlinePassed(s.now().UTC()) {
		return RosterView{}, fmt.Errorf("%w: deadline passed for %s", roster.ErrRosterLocked, weekCfg.WeekName)
	}

	locked, err := s.lockRoster(ctx, item)
	if err != nil && !errors.Is(err, ErrUsedPlayersLag) {
		return RosterView{}, err
	}
	return s.view(locked, weekCfg), err
}

// lockRoster runs the two-step commit: persist the lock, then union the
// picks into the ledger. A ledger failure leaves the roster locked.
func (s *RosterService) lockRoster(ctx context.Context, item roster.Roster) (roster.Roster, error) {
	if err := item.Lock(s.now().UTC()); err != nil {
		return roster.Roster{}, err
	}
	used, err := s.usedRepo.Get(ctx, item.UserID)
	if err != nil {
		return roster.Roster{}, fmt.Errorf("get used players: %w", err)
	}
	if err := roster.CheckUnused(item, used.PlayerIDs); err != nil {
		return roster.Roster{}, err
	}
	if err := s.rosterRepo.Upsert(ctx, item); err != nil {
		return roster.Roster{}, fmt.Errorf("persist roster lock: %w", err)
	}

	ids := item.PlayerIDs()
	if err := s.usedRepo.Union(ctx, item.UserID, ids); err != nil {
		s.logger.ErrorContext(ctx, "used players union failed after lock",
			"user_id", item.UserID,
			"week", item.Week,
			"error", err,
		)
		return item, fmt.Errorf("%w: %v", ErrUsedPlayersLag, err)
	}

	s.logger.InfoContext(ctx, "roster locked", "user_id", item.UserID, "week", item.Week, "players", len(ids))
	return item, nil
}

// BulkLock locks every unlocked roster of a week. Already locked rosters
// count as successes, so the sweep can be re-run safely.
func (s *RosterService) BulkLock(ctx context.Context, week int) (BulkLockResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.BulkLock", weekAttr(week))
	defer span.End()

	if _, err := playoff.WeekName(week); err != nil {
		return BulkLockResult{}, fmt.Errorf("%w: week=%d", ErrInvalidInput, week)
	}
	rosters, err := s.rosterRepo.ListByWeek(ctx, week)
	if err != nil {
		return BulkLockResult{}, fmt.Errorf("list rosters week=%d: %w", week, err)
	}

	result := BulkLockResult{
		Week:  week,
		Total: len(rosters),
		Items: make([]BulkLockItem, 0, len(rosters)),
	}
	if len(rosters) == 0 {
		return result, nil
	}

	items := make(chan BulkLockItem, len(rosters))
	var lockedCount, alreadyCount, skippedCount, failedCount atomic.Int32

	pool, err := ants.NewPool(s.cfg.BulkWorkers)
	if err != nil {
		return BulkLockResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, item := range rosters {
		item := item
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			row := BulkLockItem{UserID: item.UserID}
			switch {
			case item.Locked:
				row.Status = bulkLockStatusAlreadyLocked
				alreadyCount.Add(1)
			default:
				_, lockErr := s.lockRoster(ctx, item)
				switch {
				case lockErr == nil:
					row.Status = bulkLockStatusLocked
					lockedCount.Add(1)
				case errors.Is(lockErr, roster.ErrRosterIncomplete):
					row.Status = bulkLockStatusIncomplete
					row.Message = lockErr.Error()
					skippedCount.Add(1)
				case errors.Is(lockErr, roster.ErrPlayerUsed):
					row.Status = bulkLockStatusPlayerUsed
					row.Message = lockErr.Error()
					failedCount.Add(1)
				case errors.Is(lockErr, ErrUsedPlayersLag):
					row.Status = bulkLockStatusLedgerLag
					row.Message = lockErr.Error()
					failedCount.Add(1)
				default:
					row.Status = bulkLockStatusFailed
					row.Message = lockErr.Error()
					failedCount.Add(1)
				}
			}
			items <- row
		}); err != nil {
			workers.Done()
			return BulkLockResult{}, fmt.Errorf("submit lock task to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(items)
	for row := range items {
		result.Items = append(result.Items, row)
	}
	sort.SliceStable(result.Items, func(i, j int) bool {
		return result.Items[i].UserID < result.Items[j].UserID
	})

	result.Locked = int(lockedCount.Load())
	result.AlreadyLocked = int(alreadyCount.Load())
	result.Succeeded = result.Locked + result.AlreadyLocked
	result.Skipped = int(skippedCount.Load())
	result.Failed = int(failedCount.Load())

	s.logger.InfoContext(ctx, "bulk lock finished",
		"week", week,
		"total", result.Total,
		"locked", result.Locked,
		"already_locked", result.AlreadyLocked,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	return result, nil
}

// SweepDeadlines runs the bulk lock for every week whose deadline passed and
// that still has a complete unlocked roster.
func (s *RosterService) SweepDeadlines(ctx context.Context) ([]BulkLockResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.SweepDeadlines")
	defer span.End()

	configs, err := s.playoffRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list playoff configs: %w", err)
	}

	now := s.now().UTC()
	out := make([]BulkLockResult, 0)
	for _, cfg := range configs {
		if !cfg.DeadlinePassed(now) {
			continue
		}
		week, err := playoff.WeekNumber(cfg.WeekName)
		if err != nil {
			continue
		}
		pending, err := s.hasLockableRoster(ctx, week)
		if err != nil {
			return out, err
		}
		if !pending {
			continue
		}
		result, err := s.BulkLock(ctx, week)
		if err != nil {
			return out, err
		}
		out = append(out, result)
	}
	return out, nil
}

func (s *RosterService) hasLockableRoster(ctx context.Context, week int) (bool, error) {
	rosters, err := s.rosterRepo.ListByWeek(ctx, week)
	if err != nil {
		return false, fmt.Errorf("list rosters week=%d: %w", week, err)
	}
	for _, item := range rosters {
		if !item.Locked && item.IsComplete() {
			return true, nil
		}
	}
	return false, nil
}

// ResetUsedPlayers empties a user's ledger.
func (s *RosterService) ResetUsedPlayers(ctx context.Context, userID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.ResetUsedPlayers")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	if err := s.usedRepo.Replace(ctx, userID, nil); err != nil {
		return fmt.Errorf("reset used players: %w", err)
	}
	s.logger.InfoContext(ctx, "used players reset", "user_id", userID)
	return nil
}

// RepairUsedPlayers re-derives ledgers from locked rosters. An empty user id
// repairs every known user.
func (s *RosterService) RepairUsedPlayers(ctx context.Context, userID string) (RepairResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.RepairUsedPlayers")
	defer span.End()

	userIDs := []string{strings.TrimSpace(userID)}
	if userIDs[0] == "" {
		users, err := s.userRepo.List(ctx)
		if err != nil {
			return RepairResult{}, fmt.Errorf("list users: %w", err)
		}
		userIDs = userIDs[:0]
		for _, u := range users {
			userIDs = append(userIDs, u.UID)
		}
	}

	result := RepairResult{Users: len(userIDs), Items: make([]RepairItem, 0, len(userIDs))}
	if len(userIDs) == 0 {
		return result, nil
	}

	pool, err := ants.NewPool(s.cfg.BulkWorkers)
	if err != nil {
		return RepairResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	items := make(chan RepairItem, len(userIDs))
	var workers sync.WaitGroup
	for _, id := range userIDs {
		id := id
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			count, repairErr := s.repairOne(ctx, id)
			row := RepairItem{UserID: id, PlayerIDs: count}
			if repairErr != nil {
				row.Error = repairErr.Error()
			}
			items <- row
		}); err != nil {
			workers.Done()
			return RepairResult{}, fmt.Errorf("submit repair task to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(items)
	for row := range items {
		if row.Error != "" {
			result.Failed++
		} else {
			result.Repaired++
		}
		result.Items = append(result.Items, row)
	}
	sort.SliceStable(result.Items, func(i, j int) bool {
		return result.Items[i].UserID < result.Items[j].UserID
	})

	s.logger.InfoContext(ctx, "used players repaired", "users", result.Users, "repaired", result.Repaired, "failed", result.Failed)
	return result, nil
}

func (s *RosterService) repairOne(ctx context.Context, userID string) (int, error) {
	rosters, err := s.rosterRepo.ListByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("list rosters user=%s: %w", userID, err)
	}
	used := usedplayers.NewSet()
	for _, item := range rosters {
		if item.Locked {
			used.Add(item.PlayerIDs()...)
		}
	}
	ids := used.Sorted()
	if err := s.usedRepo.Replace(ctx, userID, ids); err != nil {
		return 0, fmt.Errorf("replace used players user=%s: %w", userID, err)
	}
	return len(ids), nil
}

func (s *RosterService) UsedPlayers(ctx context.Context, userID string) ([]string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	used, err := s.usedRepo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get used players: %w", err)
	}
	return used.PlayerIDs.Sorted(), nil
}

func (s *RosterService) resolveWeek(ctx context.Context, userID string, week int) (string, playoff.Config, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", playoff.Config{}, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	weekName, err := playoff.WeekName(week)
	if err != nil {
		return "", playoff.Config{}, fmt.Errorf("%w: week=%d", ErrInvalidInput, week)
	}
	cfg, exists, err := s.playoffRepo.Get(ctx, weekName)
	if err != nil {
		return "", playoff.Config{}, fmt.Errorf("get playoff config week=%s: %w", weekName, err)
	}
	if !exists {
		cfg = playoff.Config{WeekName: weekName}
	}
	return userID, cfg, nil
}

func (s *RosterService) getOrCreate(ctx context.Context, userID string, week int) (roster.Roster, error) {
	item, exists, err := s.rosterRepo.Get(ctx, userID, week)
	if err != nil {
		return roster.Roster{}, fmt.Errorf("get roster: %w", err)
	}
	if exists {
		return item, nil
	}

	item = roster.New(userID, week, s.now().UTC())
	if err := s.rosterRepo.Upsert(ctx, item); err != nil {
		return roster.Roster{}, fmt.Errorf("create roster: %w", err)
	}
	return item, nil
}

func (s *RosterService) view(item roster.Roster, cfg playoff.Config) RosterView {
	return RosterView{
		Roster:          item,
		State:           item.State(),
		Deadline:        cfg.Deadline,
		EffectiveLocked: item.EffectiveLocked(s.now().UTC(), cfg.Deadline),
	}
}

func sortPlayersByRank(players []player.Player) {
	sort.SliceStable(players, func(i, j int) bool {
		ri, rj := players[i].Rank, players[j].Rank
		if (ri == 0) != (rj == 0) {
			return ri != 0
		}
		if ri != rj {
			return ri < rj
		}
		return players[i].Name < players[j].Name
	})
}
