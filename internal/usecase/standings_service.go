package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/playoff-pool/internal/domain/player"
	"github.com/riskibarqy/playoff-pool/internal/domain/playoff"
	"github.com/riskibarqy/playoff-pool/internal/domain/roster"
	"github.com/riskibarqy/playoff-pool/internal/domain/scoring"
	"github.com/riskibarqy/playoff-pool/internal/domain/standings"
	"github.com/riskibarqy/playoff-pool/internal/domain/stats"
	"github.com/riskibarqy/playoff-pool/internal/domain/user"
	"github.com/riskibarqy/playoff-pool/internal/platform/logging"
)

type rulesSource interface {
	Get(ctx context.Context) (scoring.Rules, error)
}

type currentWeekResolver interface {
	CurrentWeek(ctx context.Context) (int, error)
}

type PlayerBreakdown struct {
	Player   player.Player      `json:"player"`
	Week     int                `json:"week"`
	HasStats bool               `json:"has_stats"`
	Points   float64            `json:"points"`
	Items    []scoring.LineItem `json:"items"`
}

// StandingsService builds leaderboards from rosters and stored stat lines.
type StandingsService struct {
	rosterRepo roster.Repository
	statsRepo  stats.Repository
	userRepo   user.Repository
	playerRepo player.Repository
	rules      rulesSource
	weeks      currentWeekResolver
	logger     *logging.Logger
}

func NewStandingsService(
	rosterRepo roster.Repository,
	statsRepo stats.Repository,
	userRepo user.Repository,
	playerRepo player.Repository,
	rules rulesSource,
	weeks currentWeekResolver,
	logger *logging.Logger,
) *StandingsService {
	if logger == nil {
		logger = logging.Default()
	}
	return &StandingsService{
		rosterRepo: rosterRepo,
		statsRepo:  statsRepo,
		userRepo:   userRepo,
		playerRepo: playerRepo,
		rules:      rules,
		weeks:      weeks,
		logger:     logger,
	}
}

func (s *StandingsService) WeekStandings(ctx context.Context, week int) ([]standings.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.WeekStandings", weekAttr(week))
	defer span.End()

	week, err := s.resolveWeek(ctx, week)
	if err != nil {
		return nil, err
	}
	rules, err := s.rules.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("get scoring rules: %w", err)
	}
	data, err := s.loadWeek(ctx, week)
	if err != nil {
		return nil, err
	}
	users, err := s.listUsers(ctx, []standings.WeekData{data})
	if err != nil {
		return nil, err
	}
	return standings.Week(users, data, rules), nil
}

// Cumulative sums weeks 1 through throughWeek. Zero means the current week.
func (s *StandingsService) Cumulative(ctx context.Context, throughWeek int) ([]standings.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.Cumulative")
	defer span.End()

	throughWeek, err := s.resolveWeek(ctx, throughWeek)
	if err != nil {
		return nil, err
	}
	rules, err := s.rules.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("get scoring rules: %w", err)
	}

	weeks := make([]standings.WeekData, 0, throughWeek)
	for _, w := range playoff.Weeks {
		if w.Number > throughWeek {
			break
		}
		data, err := s.loadWeek(ctx, w.Number)
		if err != nil {
			return nil, err
		}
		weeks = append(weeks, data)
	}
	users, err := s.listUsers(ctx, weeks)
	if err != nil {
		return nil, err
	}
	return standings.Cumulative(users, weeks, rules), nil
}

// PlayerBreakdown explains one player's points for a week. Positions come
// from the player record.
func (s *StandingsService) PlayerBreakdown(ctx context.Context, playerID string, week int) (PlayerBreakdown, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.PlayerBreakdown")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return PlayerBreakdown{}, fmt.Errorf("%w: player_id is required", ErrInvalidInput)
	}
	week, err := s.resolveWeek(ctx, week)
	if err != nil {
		return PlayerBreakdown{}, err
	}
	weekName, _ := playoff.WeekName(week)

	item, exists, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return PlayerBreakdown{}, fmt.Errorf("get player: %w", err)
	}
	if !exists {
		return PlayerBreakdown{}, fmt.Errorf("%w: player=%s", ErrNotFound, playerID)
	}
	rules, err := s.rules.Get(ctx)
	if err != nil {
		return PlayerBreakdown{}, fmt.Errorf("get scoring rules: %w", err)
	}

	out := PlayerBreakdown{Player: item, Week: week, Items: []scoring.LineItem{}}
	line, ok, err := s.statsRepo.Get(ctx, weekName, playerID)
	if err != nil {
		return PlayerBreakdown{}, fmt.Errorf("get stat line: %w", err)
	}
	if !ok {
		return out, nil
	}

	statLine := line.StatLine()
	out.HasStats = true
	out.Points = scoring.CalculatePoints(statLine, rules, item.Position)
	out.Items = scoring.Breakdown(statLine, rules, item.Position)
	return out, nil
}

// RecomputeRosterTotals refreshes the cached TotalPoints of every roster in
// the week and returns how many changed.
func (s *StandingsService) RecomputeRosterTotals(ctx context.Context, week int) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.RecomputeRosterTotals")
	defer span.End()

	rules, err := s.rules.Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("get scoring rules: %w", err)
	}
	data, err := s.loadWeek(ctx, week)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, item := range data.Rosters {
		total, _ := standings.RosterTotal(item, data.Lines, rules)
		if total == item.TotalPoints {
			continue
		}
		item.TotalPoints = total
		if err := s.rosterRepo.Upsert(ctx, item); err != nil {
			return updated, fmt.Errorf("update roster total user=%s week=%d: %w", item.UserID, week, err)
		}
		updated++
	}

	s.logger.DebugContext(ctx, "roster totals recomputed", "week", week, "updated", updated)
	return updated, nil
}

func (s *StandingsService) resolveWeek(ctx context.Context, week int) (int, error) {
	if week == 0 && s.weeks != nil {
		current, err := s.weeks.CurrentWeek(ctx)
		if err != nil {
			return 0, fmt.Errorf("resolve current week: %w", err)
		}
		week = current
	}
	if _, err := playoff.WeekName(week); err != nil {
		return 0, fmt.Errorf("%w: week=%d", ErrInvalidInput, week)
	}
	return week, nil
}

func (s *StandingsService) loadWeek(ctx context.Context, week int) (standings.WeekData, error) {
	weekName, err := playoff.WeekName(week)
	if err != nil {
		return standings.WeekData{}, fmt.Errorf("%w: week=%d", ErrInvalidInput, week)
	}
	rosters, err := s.rosterRepo.ListByWeek(ctx, week)
	if err != nil {
		return standings.WeekData{}, fmt.Errorf("list rosters week=%d: %w", week, err)
	}
	lines, err := s.statsRepo.ListByWeek(ctx, weekName)
	if err != nil {
		return standings.WeekData{}, fmt.Errorf("list stat lines week=%s: %w", weekName, err)
	}

	byPlayer := make(map[string]stats.WeekLine, len(lines))
	for _, line := range lines {
		byPlayer[line.PlayerID] = line
	}
	return standings.WeekData{Week: week, Rosters: rosters, Lines: byPlayer}, nil
}

// listUsers returns known profiles plus a bare entry for any roster owner
// whose profile was never captured.
func (s *StandingsService) listUsers(ctx context.Context, weeks []standings.WeekData) ([]user.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	known := make(map[string]struct{}, len(users))
	for _, u := range users {
		known[u.UID] = struct{}{}
	}
	for _, week := range weeks {
		for _, r := range week.Rosters {
			if _, ok := known[r.UserID]; ok {
				continue
			}
			known[r.UserID] = struct{}{}
			users = append(users, user.User{UID: r.UserID, DisplayName: r.UserID})
		}
	}
	return users, nil
}
