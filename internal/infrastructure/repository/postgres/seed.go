package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/playoff-pool/internal/domain/scoring"
	"github.com/riskibarqy/playoff-pool/internal/infrastructure/repository/memory"
)

// BootstrapSeed loads the default scoring rules and sample players into an
// empty database. Existing data is left alone.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	rules := NewScoringRepository(db)
	if _, ok, err := rules.Get(ctx); err != nil {
		return fmt.Errorf("check scoring rules for bootstrap seed: %w", err)
	} else if !ok {
		if err := rules.Save(ctx, scoring.DefaultRules()); err != nil {
			return fmt.Errorf("seed scoring rules: %w", err)
		}
	}

	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM players`); err != nil {
		return fmt.Errorf("count players for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}
	if err := NewPlayerRepository(db).UpsertMany(ctx, memory.SeedPlayers()); err != nil {
		return fmt.Errorf("seed players: %w", err)
	}

	playoffRepo := NewPlayoffRepository(db)
	for _, cfg := range memory.SeedPlayoffConfigs() {
		if err := playoffRepo.Upsert(ctx, cfg); err != nil {
			return fmt.Errorf("seed playoff week %s: %w", cfg.WeekName, err)
		}
	}
	return nil
}
