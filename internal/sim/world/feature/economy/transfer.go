// Package economy moves item stacks between slot containers: inventory,
// bank, equipment, shop stock and the ground.
package economy

import "realmgate.io/internal/sim/slots"

// Move transfers up to requested units from src[index] into dst. Unbounded
// stacks always move whole. dst.Add runs first; src is only debited once the
// destination has accepted the stack, so a failed transfer mutates nothing.
func Move(rules slots.Rules, src, dst slots.Container, index, requested int) (int, bool) {
	sl, ok := src.Slot(index)
	if !ok || sl.Empty() {
		return 0, false
	}
	n := TransferCount(rules, sl, requested)
	if n <= 0 {
		return 0, false
	}
	if !dst.Add(sl.ItemID, n, sl.Ability, sl.AbilityLevel) {
		return 0, false
	}
	if !src.Remove(sl.ItemID, n, index) {
		// Unreachable for a conforming container: the slot was read above.
		return 0, false
	}
	return n, true
}

// TransferCount resolves how many units of sl a request moves.
func TransferCount(rules slots.Rules, sl slots.Slot, requested int) int {
	if rules.MaxStack(sl.ItemID) == slots.Unbounded {
		return sl.Count
	}
	if requested > sl.Count {
		return sl.Count
	}
	return requested
}
