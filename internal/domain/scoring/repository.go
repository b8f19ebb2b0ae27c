package scoring

import "context"

type Repository interface {
	Get(ctx context.Context) (Rules, bool, error)
	Save(ctx context.Context, rules Rules) error
}
