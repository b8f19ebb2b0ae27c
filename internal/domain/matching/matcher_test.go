package matching

import (
	"testing"

	"github.com/riskibarqy/playoff-pool/internal/domain/player"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Matthew Stafford Jr.", "matthew stafford"},
		{"Odell Beckham Jr", "odell beckham"},
		{"Kenneth Walker III", "kenneth walker"},
		{"A.J.  Brown", "aj brown"},
		{"Amon-Ra St. Brown", "amonra st brown"},
		{"D'Andre Swift", "dandre swift"},
		{"Jr", "jr"},
		{"  ", ""},
	}
	for _, tc := range tests {
		if got := Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%q): got=%q want=%q", tc.in, got, tc.want)
		}
	}
}

func TestMatch_Tiers(t *testing.T) {
	candidates := []player.Player{
		{ID: "stafford", Name: "Matthew Stafford", Team: "LAR"},
		{ID: "kupp", Name: "Cooper Kupp", Team: "LAR"},
		{ID: "mahomes", Name: "Patrick Lavon Mahomes II", Team: "KC"},
		{ID: "allen-buf", Name: "Josh Allen", Team: "BUF"},
		{ID: "allen-jax", Name: "Josh Allen", Team: "JAX"},
		{ID: "kelce", Name: "Travis Kelce", Team: "KC"},
	}

	tests := []struct {
		name     string
		matcher  Matcher
		extName  string
		extTeam  string
		wantID   string
		wantTier Tier
		wantOK   bool
	}{
		{name: "suffix stripped exact", matcher: Strict, extName: "Matthew Stafford Jr.", extTeam: "LAR", wantID: "stafford", wantTier: TierExact, wantOK: true},
		{name: "middle name first last", matcher: Strict, extName: "Patrick Mahomes", extTeam: "KC", wantID: "mahomes", wantTier: TierFirstLast, wantOK: true},
		{name: "team disambiguates", matcher: Strict, extName: "Josh Allen", extTeam: "JAX", wantID: "allen-jax", wantTier: TierExact, wantOK: true},
		{name: "team alias", matcher: Strict, extName: "Josh Allen", extTeam: "JAC", wantID: "allen-jax", wantTier: TierExact, wantOK: true},
		{name: "wrong team never matches", matcher: Live, extName: "Cooper Kupp", extTeam: "SEA", wantOK: false},
		{name: "strict rejects last name only", matcher: Strict, extName: "T. Kelce", extTeam: "KC", wantOK: false},
		{name: "live accepts last name only", matcher: Live, extName: "T. Kelce", extTeam: "KC", wantID: "kelce", wantTier: TierLastName, wantOK: true},
		{name: "empty name", matcher: Live, extName: "", extTeam: "KC", wantOK: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tc.matcher.Match(tc.extName, tc.extTeam, candidates)
			if ok != tc.wantOK {
				t.Fatalf("unexpected ok: got=%v want=%v (%+v)", ok, tc.wantOK, got)
			}
			if !ok {
				return
			}
			if got.PlayerID != tc.wantID || got.Tier != tc.wantTier {
				t.Fatalf("unexpected result: %+v", got)
			}
		})
	}
}

func TestMatch_HigherTierBeatsEarlierCandidate(t *testing.T) {
	candidates := []player.Player{
		{ID: "brown-1", Name: "Marquise Brown", Team: "KC"},
		{ID: "brown-2", Name: "AJ Brown", Team: "KC"},
	}
	got, ok := Live.Match("A.J. Brown", "KC", candidates)
	if !ok || got.PlayerID != "brown-2" || got.Tier != TierExact {
		t.Fatalf("expected exact match on second candidate, got %+v ok=%v", got, ok)
	}
}

func TestMatch_FirstOccurrenceWinsAndIsIdempotent(t *testing.T) {
	candidates := []player.Player{
		{ID: "first", Name: "Mike Williams", Team: "NYJ"},
		{ID: "second", Name: "Mike Williams", Team: "NYJ"},
	}
	for i := 0; i < 3; i++ {
		id, ok := Live.MatchID("Mike Williams", "NYJ", candidates)
		if !ok || id != "first" {
			t.Fatalf("run %d: expected first candidate, got %q ok=%v", i, id, ok)
		}
	}

	for i := 0; i < 3; i++ {
		if id, ok := Strict.MatchID("Nobody Here", "NYJ", candidates); ok || id != "" {
			t.Fatalf("run %d: expected no match, got %q", i, id)
		}
	}
}
