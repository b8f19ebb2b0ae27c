package memory

import (
	"github.com/riskibarqy/playoff-pool/internal/domain/player"
	"github.com/riskibarqy/playoff-pool/internal/domain/playoff"
	"github.com/riskibarqy/playoff-pool/internal/domain/user"
)

// Seed data for local runs with USE_MEMORY_STORE=true.

func SeedPlayers() []player.Player {
	return []player.Player{
		{ID: "buf-qb-allen", Name: "Josh Allen", Team: "BUF", Position: player.PositionQuarterback, Rank: 1},
		{ID: "kc-qb-mahomes", Name: "Patrick Mahomes", Team: "KC", Position: player.PositionQuarterback, Rank: 2},
		{ID: "lar-qb-stafford", Name: "Matthew Stafford", Team: "LAR", Position: player.PositionQuarterback, Rank: 3},
		{ID: "phi-rb-barkley", Name: "Saquon Barkley", Team: "PHI", Position: player.PositionRunningBack, Rank: 1},
		{ID: "det-rb-gibbs", Name: "Jahmyr Gibbs", Team: "DET", Position: player.PositionRunningBack, Rank: 2},
		{ID: "bal-rb-henry", Name: "Derrick Henry", Team: "BAL", Position: player.PositionRunningBack, Rank: 3},
		{ID: "buf-rb-cook", Name: "James Cook", Team: "BUF", Position: player.PositionRunningBack, Rank: 4},
		{ID: "lar-wr-nacua", Name: "Puka Nacua", Team: "LAR", Position: player.PositionWideReceiver, Rank: 1},
		{ID: "det-wr-stbrown", Name: "Amon-Ra St. Brown", Team: "DET", Position: player.PositionWideReceiver, Rank: 2},
		{ID: "phi-wr-brown", Name: "A.J. Brown", Team: "PHI", Position: player.PositionWideReceiver, Rank: 3},
		{ID: "bal-wr-flowers", Name: "Zay Flowers", Team: "BAL", Position: player.PositionWideReceiver, Rank: 4},
		{ID: "kc-te-kelce", Name: "Travis Kelce", Team: "KC", Position: player.PositionTightEnd, Rank: 1},
		{ID: "bal-te-andrews", Name: "Mark Andrews", Team: "BAL", Position: player.PositionTightEnd, Rank: 2},
		{ID: "phi-dst", Name: "Philadelphia Eagles", Team: "PHI", Position: player.PositionDefense, Rank: 1},
		{ID: "bal-dst", Name: "Baltimore Ravens", Team: "BAL", Position: player.PositionDefense, Rank: 2},
		{ID: "kc-dst", Name: "Kansas City Chiefs", Team: "KC", Position: player.PositionDefense, Rank: 3},
		{ID: "bal-k-tucker", Name: "Justin Tucker", Team: "BAL", Position: player.PositionKicker, Rank: 1},
		{ID: "kc-k-butker", Name: "Harrison Butker", Team: "KC", Position: player.PositionKicker, Rank: 2},
	}
}

func SeedPlayoffConfigs() []playoff.Config {
	return []playoff.Config{
		{
			WeekName: playoff.WeekWildcard,
			Teams:    []string{"BAL", "BUF", "DET", "KC", "LAR", "PHI"},
		},
	}
}

func SeedUsers() []user.User {
	return []user.User{
		{UID: "demo-user-1", DisplayName: "Demo One", Email: "one@example.com"},
		{UID: "demo-user-2", DisplayName: "Demo Two", Email: "two@example.com"},
	}
}
