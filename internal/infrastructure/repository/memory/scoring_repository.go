package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/playoff-pool/internal/domain/scoring"
)

type ScoringRepository struct {
	mu    sync.RWMutex
	rules *scoring.Rules
}

func NewScoringRepository() *ScoringRepository {
	return &ScoringRepository{}
}

func (r *ScoringRepository) Get(_ context.Context) (scoring.Rules, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.rules == nil {
		return scoring.Rules{}, false, nil
	}
	return *r.rules, true, nil
}

func (r *ScoringRepository) Save(_ context.Context, rules scoring.Rules) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = &rules
	return nil
}
