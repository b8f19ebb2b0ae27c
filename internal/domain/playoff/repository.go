package playoff

import "context"

type Repository interface {
	Get(ctx context.Context, weekName string) (Config, bool, error)
	List(ctx context.Context) ([]Config, error)
	Upsert(ctx context.Context, cfg Config) error

	GetSettings(ctx context.Context) (Settings, error)
	SaveSettings(ctx context.Context, settings Settings) error
}
