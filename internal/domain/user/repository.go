package user

import "context"

type Repository interface {
	List(ctx context.Context) ([]User, error)
	Get(ctx context.Context, uid string) (User, bool, error)
	Upsert(ctx context.Context, u User) error
}
