package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/playoff-pool/internal/domain/player"
	"github.com/riskibarqy/playoff-pool/internal/domain/playoff"
	"github.com/riskibarqy/playoff-pool/internal/platform/logging"
)

// lockScheduler arranges for a week's bulk lock to run at its deadline.
type lockScheduler interface {
	ScheduleWeekLock(ctx context.Context, week int, at time.Time) error
}

type WeekView struct {
	Number         int
	Name           string
	Teams          []string
	Deadline       *time.Time
	DeadlinePassed bool
	Current        bool
}

type SetWeekConfigInput struct {
	Week     int
	Teams    []string
	Deadline *time.Time
}

type PlayoffService struct {
	repo      playoff.Repository
	scheduler lockScheduler
	logger *logging.Logger
	now    func() time.Time
}

func NewPlayoffService(repo playoff.Repository, scheduler lockScheduler, logger *logging.Logger) *PlayoffService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PlayoffService{
		repo:      repo,
		scheduler: scheduler,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *PlayoffService) ListWeeks(ctx context.Context) ([]WeekView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayoffService.ListWeeks")
	defer span.End()

	configs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list playoff configs: %w", err)
	}
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("get pool settings: %w", err)
	}

	now := s.now().UTC()
	current := playoff.ResolveCurrentWeek(settings, configs, now)
	byName := make(map[string]playoff.Config, len(configs))
	for _, cfg := range configs {
		byName[cfg.WeekName] = cfg
	}

	out := make([]WeekView, 0, len(playoff.Weeks))
	for _, week := range playoff.Weeks {
		cfg := byName[week.Name]
		out = append(out, WeekView{
			Number:         week.Number,
			Name:           week.Name,
			Teams:          append([]string(nil), cfg.Teams...),
			Deadline:       cfg.Deadline,
			DeadlinePassed: cfg.DeadlinePassed(now),
			Current:        week.Number == current,
		})
	}
	return out, nil
}

func (s *PlayoffService) CurrentWeek(ctx context.Context) (int, error) {
	configs, err := s.repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list playoff configs: %w", err)
	}
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return 0, fmt.Errorf("get pool settings: %w", err)
	}
	return playoff.ResolveCurrentWeek(settings, configs, s.now().UTC()), nil
}

// GetConfig returns the week's config, or an empty one when none was set.
func (s *PlayoffService) GetConfig(ctx context.Context, week int) (playoff.Config, error) {
	weekName, err := playoff.WeekName(week)
	if err != nil {
		return playoff.Config{}, fmt.Errorf("%w: week=%d", ErrInvalidInput, week)
	}
	cfg, exists, err := s.repo.Get(ctx, weekName)
	if err != nil {
		return playoff.Config{}, fmt.Errorf("get playoff config week=%s: %w", weekName, err)
	}
	if !exists {
		return playoff.Config{WeekName: weekName}, nil
	}
	return cfg, nil
}

// SetWeekConfig stores the alive teams and deadline of a week. A future
// deadline schedules the bulk lock job for that moment.
func (s *PlayoffService) SetWeekConfig(ctx context.Context, input SetWeekConfigInput) (playoff.Config, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayoffService.SetWeekConfig")
	defer span.End()

	weekName, err := playoff.WeekName(input.Week)
	if err != nil {
		return playoff.Config{}, fmt.Errorf("%w: week=%d", ErrInvalidInput, input.Week)
	}
	teams, err := normalizeTeams(input.Teams)
	if err != nil {
		return playoff.Config{}, err
	}

	now := s.now().UTC()
	cfg := playoff.Config{
		WeekName:  weekName,
		Teams:     teams,
		Deadline:  input.Deadline,
		UpdatedAt: now,
	}
	if err := s.repo.Upsert(ctx, cfg); err != nil {
		return playoff.Config{}, fmt.Errorf("upsert playoff config week=%s: %w", weekName, err)
	}

	if s.scheduler != nil && cfg.Deadline != nil && cfg.Deadline.After(now) {
		if err := s.scheduler.ScheduleWeekLock(ctx, input.Week, *cfg.Deadline); err != nil {
			s.logger.WarnContext(ctx, "schedule deadline lock failed", "week", weekName, "error", err)
		}
	}

	s.logger.InfoContext(ctx, "playoff week configured", "week", weekName, "teams", len(teams))
	return cfg, nil
}

// AddTeams unions team codes into a week's alive set.
func (s *PlayoffService) AddTeams(ctx context.Context, week int, teams []string) error {
	cfg, err := s.GetConfig(ctx, week)
	if err != nil {
		return err
	}
	merged, err := normalizeTeams(append(cfg.Teams, teams...))
	if err != nil {
		return err
	}
	cfg.Teams = merged
	cfg.UpdatedAt = s.now().UTC()
	if err := s.repo.Upsert(ctx, cfg); err != nil {
		return fmt.Errorf("upsert playoff config week=%s: %w", cfg.WeekName, err)
	}
	return nil
}

func (s *PlayoffService) SetCurrentWeekOverride(ctx context.Context, week int) error {
	if week != 0 {
		if _, err := playoff.WeekName(week); err != nil {
			return fmt.Errorf("%w: week=%d", ErrInvalidInput, week)
		}
	}
	if err := s.repo.SaveSettings(ctx, playoff.Settings{CurrentWeekOverride: week, UpdatedAt: s.now().UTC()}); err != nil {
		return fmt.Errorf("save pool settings: %w", err)
	}
	return nil
}

func normalizeTeams(raw []string) ([]string, error) {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		code := player.NormalizeTeam(item)
		if code == "" {
			continue
		}
		if !player.IsTeam(code) {
			return nil, fmt.Errorf("%w: unknown team %q", ErrInvalidInput, strings.TrimSpace(item))
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	sort.Strings(out)
	return out, nil
}
