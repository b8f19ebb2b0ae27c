package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/playoff-pool/internal/domain/scoring"
	"github.com/riskibarqy/playoff-pool/internal/platform/cache"
	"github.com/riskibarqy/playoff-pool/internal/platform/logging"
)

const scoringRulesCacheKey = "scoring:rules"

// ScoringRulesService serves the active rule table from a process cache that
// is dropped whenever an admin saves new rules.
type ScoringRulesService struct {
	repo   scoring.Repository
	cache  *cache.Store
	logger *logging.Logger
	now    func() time.Time
}

func NewScoringRulesService(repo scoring.Repository, store *cache.Store, logger *logging.Logger) *ScoringRulesService {
	if store == nil {
		store = cache.NewStore(time.Minute)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ScoringRulesService{
		repo:   repo,
		cache:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Get returns the stored rules, or the default table when none were saved.
func (s *ScoringRulesService) Get(ctx context.Context) (scoring.Rules, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringRulesService.Get")
	defer span.End()

	value, err := s.cache.GetOrLoad(ctx, scoringRulesCacheKey, func(ctx context.Context) (any, error) {
		rules, exists, err := s.repo.Get(ctx)
		if err != nil {
			return nil, fmt.Errorf("get scoring rules: %w", err)
		}
		if !exists {
			return scoring.DefaultRules(), nil
		}
		return rules, nil
	})
	if err != nil {
		return scoring.Rules{}, err
	}

	rules, ok := value.(scoring.Rules)
	if !ok {
		return scoring.Rules{}, fmt.Errorf("unexpected cached scoring rules type %T", value)
	}
	return rules, nil
}

func (s *ScoringRulesService) Update(ctx context.Context, rules scoring.Rules) (scoring.Rules, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringRulesService.Update")
	defer span.End()

	rules.Name = strings.TrimSpace(rules.Name)
	if rules.Name == "" {
		rules.Name = "custom"
	}
	if err := rules.Validate(); err != nil {
		return scoring.Rules{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.repo.Save(ctx, rules); err != nil {
		return scoring.Rules{}, fmt.Errorf("save scoring rules: %w", err)
	}
	s.cache.Delete(ctx, scoringRulesCacheKey)

	s.logger.InfoContext(ctx, "scoring rules updated", "name", rules.Name, "at", s.now().UTC())
	return rules, nil
}

// Reset restores the default table.
func (s *ScoringRulesService) Reset(ctx context.Context) (scoring.Rules, error) {
	return s.Update(ctx, scoring.DefaultRules())
}
