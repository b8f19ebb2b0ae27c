package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/playoff-pool/internal/domain/stats"
)

type StatsRepository struct {
	mu        sync.RWMutex
	lines     map[string]map[string]stats.WeekLine
	unmatched map[string]map[string]stats.Unmatched
	aliases   map[string]stats.Alias
}

func NewStatsRepository() *StatsRepository {
	return &StatsRepository{
		lines:     make(map[string]map[string]stats.WeekLine),
		unmatched: make(map[string]map[string]stats.Unmatched),
		aliases:   make(map[string]stats.Alias),
	}
}

func (r *StatsRepository) ListByWeek(_ context.Context, weekName string) ([]stats.WeekLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	week := r.lines[weekName]
	out := make([]stats.WeekLine, 0, len(week))
	for _, line := range week {
		out = append(out, line)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })

	return out, nil
}

func (r *StatsRepository) Get(_ context.Context, weekName, playerID string) (stats.WeekLine, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	line, ok := r.lines[weekName][playerID]
	return line, ok, nil
}

func (r *StatsRepository) UpsertMany(_ context.Context, lines []stats.WeekLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, line := range lines {
		week, ok := r.lines[line.WeekName]
		if !ok {
			week = make(map[string]stats.WeekLine)
			r.lines[line.WeekName] = week
		}
		week[line.PlayerID] = line
	}
	return nil
}

func (r *StatsRepository) ReplaceUnmatched(_ context.Context, weekName string, items []stats.Unmatched) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	week := make(map[string]stats.Unmatched, len(items))
	for _, item := range items {
		week[item.ExternalKey] = item
	}
	r.unmatched[weekName] = week
	return nil
}

func (r *StatsRepository) ListUnmatched(_ context.Context, weekName string) ([]stats.Unmatched, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	week := r.unmatched[weekName]
	out := make([]stats.Unmatched, 0, len(week))
	for _, item := range week {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExternalKey < out[j].ExternalKey })

	return out, nil
}

func (r *StatsRepository) DeleteUnmatched(_ context.Context, weekName, externalKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.unmatched[weekName], externalKey)
	return nil
}

func (r *StatsRepository) ListAliases(_ context.Context) ([]stats.Alias, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]stats.Alias, 0, len(r.aliases))
	for _, alias := range r.aliases {
		out = append(out, alias)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExternalKey < out[j].ExternalKey })

	return out, nil
}

func (r *StatsRepository) UpsertAlias(_ context.Context, alias stats.Alias) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.aliases[alias.ExternalKey] = alias
	return nil
}
