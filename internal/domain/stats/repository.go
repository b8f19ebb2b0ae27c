package stats

import "context"

type Repository interface {
	ListByWeek(ctx context.Context, weekName string) ([]WeekLine, error)
	Get(ctx context.Context, weekName, playerID string) (WeekLine, bool, error)
	UpsertMany(ctx context.Context, lines []WeekLine) error

	ReplaceUnmatched(ctx context.Context, weekName string, items []Unmatched) error
	ListUnmatched(ctx context.Context, weekName string) ([]Unmatched, error)
	DeleteUnmatched(ctx context.Context, weekName, externalKey string) error

	ListAliases(ctx context.Context) ([]Alias, error)
	UpsertAlias(ctx context.Context, alias Alias) error
}
