// Package slots implements fixed-capacity slot containers used for player
// inventories, banks and shop stock.
package slots

import "math"

// Unbounded is the MaxStack sentinel for infinite stacks.
const Unbounded = -1

type Slot struct {
	Index        int `json:"index"`
	ItemID       int `json:"id"`
	Count        int `json:"count"`
	Ability      int `json:"ability"`
	AbilityLevel int `json:"ability_level"`
}

func (s Slot) Empty() bool { return s.ItemID <= 0 }

func (s Slot) stacksWith(itemID, ability, abilityLevel int) bool {
	return s.ItemID == itemID && s.Ability == ability && s.AbilityLevel == abilityLevel
}

// Rules supplies stack limits: 1 for non-stackable items, Unbounded for
// infinite stacks.
type Rules interface {
	MaxStack(itemID int) int
}

type RulesFunc func(itemID int) int

func (f RulesFunc) MaxStack(itemID int) int { return f(itemID) }

// Container is the capability set shared by every slot-based store.
type Container interface {
	Slot(index int) (Slot, bool)
	Add(itemID, count, ability, abilityLevel int) bool
	Remove(itemID, count, index int) bool
	HasSpace() bool
}

// Store is a fixed-size ordered container. Add and Remove either apply fully
// or leave the store untouched.
type Store struct {
	slots []Slot
	rules Rules
}

func NewStore(size int, rules Rules) *Store {
	s := &Store{slots: make([]Slot, size), rules: rules}
	for i := range s.slots {
		s.slots[i] = Slot{Index: i, ItemID: -1, Ability: -1, AbilityLevel: -1}
	}
	return s
}

func (s *Store) Size() int { return len(s.slots) }

func (s *Store) Slot(index int) (Slot, bool) {
	if index < 0 || index >= len(s.slots) {
		return Slot{}, false
	}
	return s.slots[index], true
}

// Slots returns a copy of every slot in index order.
func (s *Store) Slots() []Slot {
	out := make([]Slot, len(s.slots))
	copy(out, s.slots)
	return out
}

func (s *Store) HasSpace() bool {
	return s.emptySlots() > 0
}

func (s *Store) emptySlots() int {
	n := 0
	for _, sl := range s.slots {
		if sl.Empty() {
			n++
		}
	}
	return n
}

// Count is the total number of itemID units held across all slots.
func (s *Store) Count(itemID int) int {
	n := 0
	for _, sl := range s.slots {
		if sl.ItemID == itemID {
			n += sl.Count
		}
	}
	return n
}

// Add places count units of itemID. Capacity is checked before any slot is
// touched.
func (s *Store) Add(itemID, count, ability, abilityLevel int) bool {
	if itemID <= 0 || count <= 0 {
		return false
	}
	plan, ok := s.plan(itemID, count, ability, abilityLevel)
	if !ok {
		return false
	}
	for idx, n := range plan {
		sl := &s.slots[idx]
		if sl.Empty() {
			sl.ItemID, sl.Count, sl.Ability, sl.AbilityLevel = itemID, 0, ability, abilityLevel
		}
		sl.Count += n
	}
	return true
}

// AddAt puts the whole amount into the empty slot at index when it fits
// there as one stack. Otherwise it behaves like Add.
func (s *Store) AddAt(index, itemID, count, ability, abilityLevel int) bool {
	if itemID > 0 && count > 0 && index >= 0 && index < len(s.slots) && s.slots[index].Empty() {
		limit := s.rules.MaxStack(itemID)
		if (limit == Unbounded && !s.holds(itemID, ability, abilityLevel)) || (limit != Unbounded && count <= max(limit, 1)) {
			s.slots[index] = Slot{Index: index, ItemID: itemID, Count: count, Ability: ability, AbilityLevel: abilityLevel}
			return true
		}
	}
	return s.Add(itemID, count, ability, abilityLevel)
}

func (s *Store) holds(itemID, ability, abilityLevel int) bool {
	for _, sl := range s.slots {
		if sl.stacksWith(itemID, ability, abilityLevel) {
			return true
		}
	}
	return false
}

// Fits reports whether Add would succeed without changing anything.
func (s *Store) Fits(itemID, count, ability, abilityLevel int) bool {
	if itemID <= 0 || count <= 0 {
		return false
	}
	_, ok := s.plan(itemID, count, ability, abilityLevel)
	return ok
}

// plan returns slot index -> units to add, or false when the whole amount
// does not fit.
func (s *Store) plan(itemID, count, ability, abilityLevel int) (map[int]int, bool) {
	limit := s.rules.MaxStack(itemID)
	plan := map[int]int{}

	switch {
	case limit == Unbounded:
		for i, sl := range s.slots {
			if sl.stacksWith(itemID, ability, abilityLevel) {
				if sl.Count > math.MaxInt32-count {
					return nil, false
				}
				plan[i] = count
				return plan, true
			}
		}
		for i, sl := range s.slots {
			if sl.Empty() {
				plan[i] = count
				return plan, true
			}
		}
		return nil, false

	case limit <= 1:
		if s.emptySlots() < count {
			return nil, false
		}
		for i, sl := range s.slots {
			if count == 0 {
				break
			}
			if sl.Empty() {
				plan[i] = 1
				count--
			}
		}
		return plan, true
	}

	remaining := count
	for i, sl := range s.slots {
		if remaining == 0 {
			break
		}
		if sl.stacksWith(itemID, ability, abilityLevel) && sl.Count < limit {
			n := min(limit-sl.Count, remaining)
			plan[i] = n
			remaining -= n
		}
	}
	for i, sl := range s.slots {
		if remaining == 0 {
			break
		}
		if sl.Empty() {
			n := min(limit, remaining)
			plan[i] = n
			remaining -= n
		}
	}
	if remaining > 0 {
		return nil, false
	}
	return plan, true
}

// Remove takes count units of itemID from the slot at index. It fails without
// mutation if the slot holds a different item or fewer units.
func (s *Store) Remove(itemID, count, index int) bool {
	if count <= 0 || index < 0 || index >= len(s.slots) {
		return false
	}
	sl := &s.slots[index]
	if sl.Empty() || sl.ItemID != itemID || sl.Count < count {
		return false
	}
	sl.Count -= count
	if sl.Count == 0 {
		*sl = Slot{Index: index, ItemID: -1, Ability: -1, AbilityLevel: -1}
	}
	return true
}

// Load replaces the contents with saved slots. Entries outside the store's
// range are ignored.
func (s *Store) Load(saved []Slot) {
	for i := range s.slots {
		s.slots[i] = Slot{Index: i, ItemID: -1, Ability: -1, AbilityLevel: -1}
	}
	for _, sl := range saved {
		if sl.Index < 0 || sl.Index >= len(s.slots) || sl.Empty() || sl.Count <= 0 {
			continue
		}
		s.slots[sl.Index] = sl
	}
}

// SetAbility rewrites the enchantment of a non-empty slot.
func (s *Store) SetAbility(index, ability, abilityLevel int) bool {
	if index < 0 || index >= len(s.slots) || s.slots[index].Empty() {
		return false
	}
	s.slots[index].Ability = ability
	s.slots[index].AbilityLevel = abilityLevel
	return true
}
