package roster

import (
	"fmt"

	"github.com/riskibarqy/playoff-pool/internal/domain/player"
	"github.com/riskibarqy/playoff-pool/internal/domain/usedplayers"
)

// CheckEligibility reports why a player cannot go into a slot of the current
// roster, or nil when it can. A player already sitting in the same slot is
// eligible for it.
func CheckEligibility(slot Slot, candidate player.Player, used usedplayers.Set, current Roster) error {
	want, ok := slotPositions[slot]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSlot, slot)
	}
	if candidate.Position != want {
		return fmt.Errorf("%w: %s is %s, slot %s needs %s", ErrPositionMismatch, candidate.ID, candidate.Position, slot, want)
	}
	if used.Has(candidate.ID) {
		return fmt.Errorf("%w: %s", ErrPlayerUsed, candidate.ID)
	}
	if occupied, ok := current.SlotOf(candidate.ID); ok && occupied != slot {
		return fmt.Errorf("%w: %s is in slot %s", ErrDuplicatePlayer, candidate.ID, occupied)
	}
	return nil
}

func IsEligible(slot Slot, candidate player.Player, used usedplayers.Set, current Roster) bool {
	return CheckEligibility(slot, candidate, used, current) == nil
}

// CheckUnused rejects a roster holding any player already in the ledger.
// It runs at lock time so picks drafted into two open weeks commit once.
func CheckUnused(r Roster, used usedplayers.Set) error {
	for _, slot := range Slots {
		if id := r.Get(slot); id != "" && used.Has(id) {
			return fmt.Errorf("%w: %s in slot %s", ErrPlayerUsed, id, slot)
		}
	}
	return nil
}
