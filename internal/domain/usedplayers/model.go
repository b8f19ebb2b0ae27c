package usedplayers

import (
	"sort"
	"time"
)

// Set is a collection of player ids.
type Set map[string]struct{}

func NewSet(ids ...string) Set {
	out := make(Set, len(ids))
	out.Add(ids...)
	return out
}

func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s Set) Add(ids ...string) {
	for _, id := range ids {
		if id == "" {
			continue
		}
		s[id] = struct{}{}
	}
}

// Sorted returns the ids in ascending order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// UsedPlayers is the per-user ledger of players consumed by locked rosters.
// Ids only leave the ledger through an admin reset or repair.
type UsedPlayers struct {
	UserID    string
	PlayerIDs Set
	UpdatedAt time.Time
}
