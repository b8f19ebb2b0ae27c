package roster

import "context"

type Repository interface {
	Get(ctx context.Context, userID string, week int) (Roster, bool, error)
	ListByWeek(ctx context.Context, week int) ([]Roster, error)
	ListByUser(ctx context.Context, userID string) ([]Roster, error)
	Upsert(ctx context.Context, r Roster) error
}
