package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/playoff-pool/internal/domain/boxscore"
	"github.com/riskibarqy/playoff-pool/internal/domain/matching"
	"github.com/riskibarqy/playoff-pool/internal/domain/player"
	"github.com/riskibarqy/playoff-pool/internal/domain/playoff"
	"github.com/riskibarqy/playoff-pool/internal/domain/stats"
	"github.com/riskibarqy/playoff-pool/internal/platform/id"
	"github.com/riskibarqy/playoff-pool/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

// StatsProvider is the external sports data source.
type StatsProvider interface {
	ListGames(ctx context.Context, week int) ([]ExternalGame, error)
	FetchBoxScore(ctx context.Context, gameID string) (boxscore.BoxScore, error)
}

type ExternalGame struct {
	ID       string
	Status   boxscore.Status
	HomeTeam string
	AwayTeam string
	StartsAt time.Time
}

type rosterTotalsUpdater interface {
	RecomputeRosterTotals(ctx context.Context, week int) (int, error)
}

type StatSyncConfig struct {
	Concurrency int
}

type StatSyncReport struct {
	RunID        string            `json:"run_id"`
	Week         int               `json:"week"`
	WeekName     string            `json:"week_name"`
	Games        int               `json:"games"`
	GamesSkipped int               `json:"games_skipped"`
	GamesFailed  int               `json:"games_failed"`
	Lines        int               `json:"lines"`
	Unmatched    []stats.Unmatched `json:"unmatched"`
	Failures     []GameFailure     `json:"failures,omitempty"`
	StartedAt    time.Time         `json:"started_at"`
	FinishedAt   time.Time         `json:"finished_at"`
}

type GameFailure struct {
	GameID string `json:"game_id"`
	Error  string `json:"error"`
}

type ManualStatInput struct {
	Week     int
	PlayerID string
	Line     stats.WeekLine
}

// StatSyncService ingests provider box scores into week stat lines.
type StatSyncService struct {
	provider   StatsProvider
	statsRepo  stats.Repository
	playerRepo player.Repository
	totals     rosterTotalsUpdater
	cfg        StatSyncConfig
	logger     *logging.Logger
	ids        id.Generator
	now        func() time.Time
}

func NewStatSyncService(
	provider StatsProvider,
	statsRepo stats.Repository,
	playerRepo player.Repository,
	totals rosterTotalsUpdater,
	cfg StatSyncConfig,
	logger *logging.Logger,
) *StatSyncService {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &StatSyncService{
		provider:   provider,
		statsRepo:  statsRepo,
		playerRepo: playerRepo,
		totals:     totals,
		cfg:        cfg,
		logger:     logger,
		ids:        id.NewUUIDGenerator(),
		now:        time.Now,
	}
}

type gameSyncResult struct {
	index      int
	gameID     string
	candidates []stats.Candidate
	err        error
}

// SyncWeek fetches every started game of the week and overwrites the stat
// lines it produces. A failed game is reported and skipped; the rest of the
// week still syncs.
func (s *StatSyncService) SyncWeek(ctx context.Context, week int) (StatSyncReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatSyncService.SyncWeek", weekAttr(week))
	defer span.End()

	weekName, err := playoff.WeekName(week)
	if err != nil {
		return StatSyncReport{}, fmt.Errorf("%w: week=%d", ErrInvalidInput, week)
	}
	if s.provider == nil {
		return StatSyncReport{}, fmt.Errorf("%w: stats provider is not configured", ErrDependencyUnavailable)
	}

	runID, err := s.ids.NewID()
	if err != nil {
		return StatSyncReport{}, fmt.Errorf("new sync run id: %w", err)
	}
	report := StatSyncReport{
		RunID:     runID,
		Week:      week,
		WeekName:  weekName,
		StartedAt: s.now().UTC(),
	}
	logger := s.logger.With("run_id", report.RunID, "week", week)

	games, err := s.provider.ListGames(ctx, week)
	if err != nil {
		return StatSyncReport{}, fmt.Errorf("%w: list games week=%d: %v", ErrDependencyUnavailable, week, err)
	}
	report.Games = len(games)

	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return StatSyncReport{}, fmt.Errorf("list players: %w", err)
	}
	normalizer, err := s.normalizer(ctx)
	if err != nil {
		return StatSyncReport{}, err
	}

	fetches := pool.NewWithResults[gameSyncResult]().WithMaxGoroutines(s.cfg.Concurrency)
	for i, game := range games {
		if !game.Status.Started() {
			report.GamesSkipped++
			continue
		}
		index, gameID := i, game.ID
		fetches.Go(func() gameSyncResult {
			box, err := s.provider.FetchBoxScore(ctx, gameID)
			if err != nil {
				return gameSyncResult{index: index, gameID: gameID, err: err}
			}
			return gameSyncResult{
				index:      index,
				gameID:     gameID,
				candidates: normalizer.Normalize(box, weekName, players),
			}
		})
	}
	results := fetches.Wait()
	sort.Slice(results, func(i, j int) bool { return results[i].index < results[j].index })

	now := s.now().UTC()
	chosen := make(map[string]stats.Candidate)
	unmatched := make(map[string]stats.Unmatched)
	park := func(c stats.Candidate) {
		c.Line.PlayerID = ""
		unmatched[c.ExternalKey] = stats.Unmatched{
			WeekName:    weekName,
			ExternalKey: c.ExternalKey,
			Name:        c.Name,
			Team:        c.Team,
			Position:    c.Position,
			Line:        c.Line,
			UpdatedAt:   now,
		}
	}
	for _, result := range results {
		if result.err != nil {
			report.GamesFailed++
			report.Failures = append(report.Failures, GameFailure{GameID: result.gameID, Error: result.err.Error()})
			logger.WarnContext(ctx, "box score fetch failed", "game_id", result.gameID, "error", result.err)
			continue
		}
		for _, c := range result.candidates {
			if !c.Matched {
				park(c)
				continue
			}
			c.Line.UpdatedAt = now
			held, taken := chosen[c.PlayerID]
			switch {
			case !taken:
				chosen[c.PlayerID] = c
			case boxscore.StrongerMatch(c, held):
				chosen[c.PlayerID] = c
				park(held)
			default:
				park(c)
			}
			if taken {
				logger.WarnContext(ctx, "stat lines collided on one player",
					"player_id", c.PlayerID,
					"kept", chosen[c.PlayerID].ExternalKey,
					"kept_tier", chosen[c.PlayerID].Tier,
				)
			}
		}
	}

	fetched := len(results)
	if fetched > 0 && report.GamesFailed == fetched {
		return report, fmt.Errorf("%w: all %d box score fetches failed", ErrDependencyUnavailable, fetched)
	}

	toStore := make([]stats.WeekLine, 0, len(chosen))
	for _, c := range chosen {
		toStore = append(toStore, c.Line)
	}
	sort.Slice(toStore, func(i, j int) bool { return toStore[i].PlayerID < toStore[j].PlayerID })
	if err := s.statsRepo.UpsertMany(ctx, toStore); err != nil {
		return report, fmt.Errorf("upsert stat lines week=%s: %w", weekName, err)
	}
	report.Lines = len(toStore)

	pending, err := s.pendingUnmatched(ctx, weekName, unmatched, report.GamesFailed > 0)
	if err != nil {
		return report, err
	}
	if err := s.statsRepo.ReplaceUnmatched(ctx, weekName, pending); err != nil {
		return report, fmt.Errorf("replace unmatched week=%s: %w", weekName, err)
	}
	report.Unmatched = pending

	if err := s.recompute(ctx, week); err != nil {
		return report, err
	}

	report.FinishedAt = s.now().UTC()
	logger.InfoContext(ctx, "stat sync finished",
		"games", report.Games,
		"skipped", report.GamesSkipped,
		"failed", report.GamesFailed,
		"lines", report.Lines,
		"unmatched", len(report.Unmatched),
	)
	return report, nil
}

// pendingUnmatched keeps the previous unmatched entries when some games
// failed, since those games produced nothing this run.
func (s *StatSyncService) pendingUnmatched(ctx context.Context, weekName string, fresh map[string]stats.Unmatched, keepPrevious bool) ([]stats.Unmatched, error) {
	if keepPrevious {
		previous, err := s.statsRepo.ListUnmatched(ctx, weekName)
		if err != nil {
			return nil, fmt.Errorf("list unmatched week=%s: %w", weekName, err)
		}
		for _, item := range previous {
			if _, ok := fresh[item.ExternalKey]; !ok {
				fresh[item.ExternalKey] = item
			}
		}
	}

	out := make([]stats.Unmatched, 0, len(fresh))
	for _, item := range fresh {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExternalKey < out[j].ExternalKey })
	return out, nil
}

func (s *StatSyncService) normalizer(ctx context.Context) (boxscore.Normalizer, error) {
	aliases, err := s.statsRepo.ListAliases(ctx)
	if err != nil {
		return boxscore.Normalizer{}, fmt.Errorf("list stat aliases: %w", err)
	}
	byKey := make(map[string]string, len(aliases))
	for _, alias := range aliases {
		byKey[alias.ExternalKey] = alias.PlayerID
	}
	return boxscore.Normalizer{Matcher: matching.Live, Aliases: byKey}, nil
}

// UpsertManual stores an admin-entered line for a known player.
func (s *StatSyncService) UpsertManual(ctx context.Context, input ManualStatInput) (stats.WeekLine, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatSyncService.UpsertManual")
	defer span.End()

	weekName, err := playoff.WeekName(input.Week)
	if err != nil {
		return stats.WeekLine{}, fmt.Errorf("%w: week=%d", ErrInvalidInput, input.Week)
	}
	playerID := strings.TrimSpace(input.PlayerID)
	if err := s.requirePlayer(ctx, playerID); err != nil {
		return stats.WeekLine{}, err
	}

	line := input.Line
	line.WeekName = weekName
	line.PlayerID = playerID
	line.Source = stats.SourceManual
	line.UpdatedAt = s.now().UTC()
	if err := line.Validate(); err != nil {
		return stats.WeekLine{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.statsRepo.UpsertMany(ctx, []stats.WeekLine{line}); err != nil {
		return stats.WeekLine{}, fmt.Errorf("upsert manual stat line: %w", err)
	}
	if err := s.recompute(ctx, input.Week); err != nil {
		return stats.WeekLine{}, err
	}

	s.logger.InfoContext(ctx, "manual stat line saved", "week", input.Week, "player_id", playerID)
	return line, nil
}

// MapUnmatched assigns an unmatched candidate to a player, stores its line
// and remembers the mapping for later syncs.
func (s *StatSyncService) MapUnmatched(ctx context.Context, week int, externalKey, playerID string) (stats.WeekLine, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatSyncService.MapUnmatched")
	defer span.End()

	weekName, err := playoff.WeekName(week)
	if err != nil {
		return stats.WeekLine{}, fmt.Errorf("%w: week=%d", ErrInvalidInput, week)
	}
	externalKey = strings.TrimSpace(externalKey)
	playerID = strings.TrimSpace(playerID)
	if externalKey == "" {
		return stats.WeekLine{}, fmt.Errorf("%w: external_key is required", ErrInvalidInput)
	}
	if err := s.requirePlayer(ctx, playerID); err != nil {
		return stats.WeekLine{}, err
	}

	pending, err := s.statsRepo.ListUnmatched(ctx, weekName)
	if err != nil {
		return stats.WeekLine{}, fmt.Errorf("list unmatched week=%s: %w", weekName, err)
	}
	var (
		item  stats.Unmatched
		found bool
	)
	for _, candidate := range pending {
		if candidate.ExternalKey == externalKey {
			item, found = candidate, true
			break
		}
	}
	if !found {
		return stats.WeekLine{}, fmt.Errorf("%w: unmatched entry %s in %s", ErrNotFound, externalKey, weekName)
	}

	now := s.now().UTC()
	line := item.Line
	line.WeekName = weekName
	line.PlayerID = playerID
	line.Source = stats.SourceSync
	line.UpdatedAt = now

	if err := s.statsRepo.UpsertMany(ctx, []stats.WeekLine{line}); err != nil {
		return stats.WeekLine{}, fmt.Errorf("upsert mapped stat line: %w", err)
	}
	if err := s.statsRepo.UpsertAlias(ctx, stats.Alias{ExternalKey: externalKey, PlayerID: playerID, UpdatedAt: now}); err != nil {
		return stats.WeekLine{}, fmt.Errorf("upsert stat alias: %w", err)
	}
	if err := s.statsRepo.DeleteUnmatched(ctx, weekName, externalKey); err != nil {
		return stats.WeekLine{}, fmt.Errorf("delete unmatched: %w", err)
	}
	if err := s.recompute(ctx, week); err != nil {
		return stats.WeekLine{}, err
	}

	s.logger.InfoContext(ctx, "unmatched stat line mapped",
		"week", week,
		"external_key", externalKey,
		"player_id", playerID,
	)
	return line, nil
}

func (s *StatSyncService) ListUnmatched(ctx context.Context, week int) ([]stats.Unmatched, error) {
	weekName, err := playoff.WeekName(week)
	if err != nil {
		return nil, fmt.Errorf("%w: week=%d", ErrInvalidInput, week)
	}
	items, err := s.statsRepo.ListUnmatched(ctx, weekName)
	if err != nil {
		return nil, fmt.Errorf("list unmatched week=%s: %w", weekName, err)
	}
	return items, nil
}

func (s *StatSyncService) requirePlayer(ctx context.Context, playerID string) error {
	if playerID == "" {
		return fmt.Errorf("%w: player_id is required", ErrInvalidInput)
	}
	_, exists, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return fmt.Errorf("get player: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: player=%s", ErrNotFound, playerID)
	}
	return nil
}

func (s *StatSyncService) recompute(ctx context.Context, week int) error {
	if s.totals == nil {
		return nil
	}
	if _, err := s.totals.RecomputeRosterTotals(ctx, week); err != nil {
		return fmt.Errorf("recompute roster totals week=%d: %w", week, err)
	}
	return nil
}

