package usedplayers

import "context"

type Repository interface {
	// Get returns an empty ledger for users that have never locked a roster.
	Get(ctx context.Context, userID string) (UsedPlayers, error)
	Union(ctx context.Context, userID string, playerIDs []string) error
	Replace(ctx context.Context, userID string, playerIDs []string) error
}
