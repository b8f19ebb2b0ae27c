package matching

import (
	"strings"
	"unicode"

	"github.com/riskibarqy/playoff-pool/internal/domain/player"
)

// Tier is one rule in a matcher's priority list.
type Tier string

const (
	TierExact     Tier = "exact"
	TierFirstLast Tier = "first_last"
	TierLastName  Tier = "last_name"
)

// Strict is used when syncing rosters, where a wrong merge is worse than a miss.
var Strict = Matcher{Tiers: []Tier{TierExact, TierFirstLast}}

// Live adds the last-name fallback for box scores, which often abbreviate names.
var Live = Matcher{Tiers: []Tier{TierExact, TierFirstLast, TierLastName}}

type Matcher struct {
	Tiers []Tier
}

type Result struct {
	PlayerID string
	Tier     Tier
}

var generationalSuffixes = map[string]struct{}{
	"jr":  {},
	"sr":  {},
	"ii":  {},
	"iii": {},
	"iv":  {},
	"v":   {},
}

// Normalize lowercases, drops every non-letter, collapses whitespace and
// removes a trailing generational suffix.
func Normalize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}

	tokens := strings.Fields(b.String())
	if len(tokens) > 1 {
		if _, ok := generationalSuffixes[tokens[len(tokens)-1]]; ok {
			tokens = tokens[:len(tokens)-1]
		}
	}
	return strings.Join(tokens, " ")
}

// Match resolves an external name and team to a candidate id. Team must match
// exactly in every tier. Within a tier the first candidate in slice order wins.
func (m Matcher) Match(name, team string, candidates []player.Player) (Result, bool) {
	target := newKey(name)
	if target.full == "" {
		return Result{}, false
	}
	team = player.NormalizeTeam(team)

	keys := make([]key, len(candidates))
	for i := range candidates {
		keys[i] = newKey(candidates[i].Name)
	}

	for _, tier := range m.Tiers {
		for i := range candidates {
			if player.NormalizeTeam(candidates[i].Team) != team {
				continue
			}
			if tierMatches(tier, target, keys[i]) {
				return Result{PlayerID: candidates[i].ID, Tier: tier}, true
			}
		}
	}

	return Result{}, false
}

// MatchID is Match without the tier detail.
func (m Matcher) MatchID(name, team string, candidates []player.Player) (string, bool) {
	result, ok := m.Match(name, team, candidates)
	return result.PlayerID, ok
}

type key struct {
	full  string
	first string
	last  string
}

func newKey(name string) key {
	normalized := Normalize(name)
	tokens := strings.Fields(normalized)
	if len(tokens) == 0 {
		return key{}
	}
	return key{
		full:  normalized,
		first: tokens[0],
		last:  tokens[len(tokens)-1],
	}
}

func tierMatches(tier Tier, target, candidate key) bool {
	if candidate.full == "" {
		return false
	}
	switch tier {
	case TierExact:
		return target.full == candidate.full
	case TierFirstLast:
		return target.first == candidate.first && target.last == candidate.last
	case TierLastName:
		return target.last == candidate.last
	default:
		return false
	}
}
