package roster

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/playoff-pool/internal/domain/player"
)

var (
	ErrRosterLocked     = errors.New("roster is locked")
	ErrRosterIncomplete = errors.New("roster is incomplete")
	ErrUnknownSlot      = errors.New("unknown roster slot")
	ErrPositionMismatch = errors.New("player position does not fit slot")
	ErrPlayerUsed       = errors.New("player already used in a locked week")
	ErrDuplicatePlayer  = errors.New("player already on roster")
	ErrTeamEliminated   = errors.New("player team is not alive this week")
)

type Slot string

const (
	SlotQB  Slot = "qb"
	SlotRB1 Slot = "rb1"
	SlotRB2 Slot = "rb2"
	SlotWR1 Slot = "wr1"
	SlotWR2 Slot = "wr2"
	SlotWR3 Slot = "wr3"
	SlotTE  Slot = "te"
	SlotDST Slot = "dst"
	SlotK   Slot = "k"
)

// Slots lists every roster slot in display order.
var Slots = []Slot{SlotQB, SlotRB1, SlotRB2, SlotWR1, SlotWR2, SlotWR3, SlotTE, SlotDST, SlotK}

var slotPositions = map[Slot]player.Position{
	SlotQB:  player.PositionQuarterback,
	SlotRB1: player.PositionRunningBack,
	SlotRB2: player.PositionRunningBack,
	SlotWR1: player.PositionWideReceiver,
	SlotWR2: player.PositionWideReceiver,
	SlotWR3: player.PositionWideReceiver,
	SlotTE:  player.PositionTightEnd,
	SlotDST: player.PositionDefense,
	SlotK:   player.PositionKicker,
}

func ParseSlot(raw string) (Slot, error) {
	slot := Slot(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := slotPositions[slot]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSlot, raw)
	}
	return slot, nil
}

// Position is the player position a slot accepts.
func (s Slot) Position() player.Position {
	return slotPositions[s]
}

type State string

const (
	StateUnset  State = "unset"
	StateDraft  State = "draft"
	StateLocked State = "locked"
)

// Roster is one user's picks for one playoff week.
type Roster struct {
	UserID string
	Week   int

	QB  string
	RB1 string
	RB2 string
	WR1 string
	WR2 string
	WR3 string
	TE  string
	DST string
	K   string

	Locked      bool
	LockedAt    *time.Time
	TotalPoints float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func New(userID string, week int, now time.Time) Roster {
	return Roster{
		UserID:    userID,
		Week:      week,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (r Roster) State() State {
	if r.Locked {
		return StateLocked
	}
	return StateDraft
}

// EffectiveLocked treats a roster as locked for display and editing once the
// week deadline has passed, even without an explicit lock.
func (r Roster) EffectiveLocked(now time.Time, deadline *time.Time) bool {
	if r.Locked {
		return true
	}
	return deadline != nil && !now.Before(*deadline)
}

func (r Roster) Get(slot Slot) string {
	switch slot {
	case SlotQB:
		return r.QB
	case SlotRB1:
		return r.RB1
	case SlotRB2:
		return r.RB2
	case SlotWR1:
		return r.WR1
	case SlotWR2:
		return r.WR2
	case SlotWR3:
		return r.WR3
	case SlotTE:
		return r.TE
	case SlotDST:
		return r.DST
	case SlotK:
		return r.K
	default:
		return ""
	}
}

func (r *Roster) put(slot Slot, playerID string) {
	switch slot {
	case SlotQB:
		r.QB = playerID
	case SlotRB1:
		r.RB1 = playerID
	case SlotRB2:
		r.RB2 = playerID
	case SlotWR1:
		r.WR1 = playerID
	case SlotWR2:
		r.WR2 = playerID
	case SlotWR3:
		r.WR3 = playerID
	case SlotTE:
		r.TE = playerID
	case SlotDST:
		r.DST = playerID
	case SlotK:
		r.K = playerID
	}
}

// PlayerIDs returns filled slot ids in slot order.
func (r Roster) PlayerIDs() []string {
	out := make([]string, 0, len(Slots))
	for _, slot := range Slots {
		if id := r.Get(slot); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// Participating reports whether the user has engaged with the week: the
// roster is locked or holds at least one pick. Drafts created on first view
// stay out of standings.
func (r Roster) Participating() bool {
	return r.Locked || len(r.PlayerIDs()) > 0
}

func (r Roster) IsComplete() bool {
	return len(r.PlayerIDs()) == len(Slots)
}

// SlotOf reports the slot a player occupies.
func (r Roster) SlotOf(playerID string) (Slot, bool) {
	if playerID == "" {
		return "", false
	}
	for _, slot := range Slots {
		if r.Get(slot) == playerID {
			return slot, true
		}
	}
	return "", false
}

// SetSlot assigns or clears a slot on a draft roster. Eligibility of the
// player is checked separately by CheckEligibility.
func (r *Roster) SetSlot(slot Slot, playerID string, now time.Time) error {
	if r.Locked {
		return ErrRosterLocked
	}
	if _, ok := slotPositions[slot]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSlot, slot)
	}
	r.put(slot, strings.TrimSpace(playerID))
	r.UpdatedAt = now
	return nil
}

// Lock transitions a complete draft roster to locked. Locking an already
// locked roster is a no-op.
func (r *Roster) Lock(now time.Time) error {
	if r.Locked {
		return nil
	}
	ids := r.PlayerIDs()
	if len(ids) != len(Slots) {
		return fmt.Errorf("%w: %d of %d slots filled", ErrRosterIncomplete, len(ids), len(Slots))
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, exists := seen[id]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicatePlayer, id)
		}
		seen[id] = struct{}{}
	}

	lockedAt := now
	r.Locked = true
	r.LockedAt = &lockedAt
	r.UpdatedAt = now
	return nil
}
