package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/playoff-pool/internal/domain/playoff"
)

type PlayoffRepository struct {
	mu       sync.RWMutex
	configs  map[string]playoff.Config
	settings playoff.Settings
}

func NewPlayoffRepository(configs []playoff.Config) *PlayoffRepository {
	items := make(map[string]playoff.Config, len(configs))
	for _, cfg := range configs {
		items[cfg.WeekName] = clonePlayoffConfig(cfg)
	}
	return &PlayoffRepository{configs: items}
}

func (r *PlayoffRepository) Get(_ context.Context, weekName string) (playoff.Config, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.configs[weekName]
	if !ok {
		return playoff.Config{}, false, nil
	}
	return clonePlayoffConfig(cfg), true, nil
}

// List returns configs in week order.
func (r *PlayoffRepository) List(_ context.Context) ([]playoff.Config, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]playoff.Config, 0, len(r.configs))
	for _, week := range playoff.Weeks {
		if cfg, ok := r.configs[week.Name]; ok {
			out = append(out, clonePlayoffConfig(cfg))
		}
	}
	return out, nil
}

func (r *PlayoffRepository) Upsert(_ context.Context, cfg playoff.Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.configs[cfg.WeekName] = clonePlayoffConfig(cfg)
	return nil
}

func (r *PlayoffRepository) GetSettings(_ context.Context) (playoff.Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.settings, nil
}

func (r *PlayoffRepository) SaveSettings(_ context.Context, settings playoff.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.settings = settings
	return nil
}

func clonePlayoffConfig(cfg playoff.Config) playoff.Config {
	copied := cfg
	copied.Teams = append([]string(nil), cfg.Teams...)
	if cfg.Deadline != nil {
		deadline := *cfg.Deadline
		copied.Deadline = &deadline
	}
	return copied
}
