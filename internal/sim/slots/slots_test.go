package slots

import "testing"

const (
	gold  = 1 // unbounded
	sword = 3 // not stackable
	apple = 10
)

var testRules = RulesFunc(func(id int) int {
	switch id {
	case gold:
		return Unbounded
	case apple:
		return 20
	}
	return 1
})

func TestStore_AddStacksUpToLimit(t *testing.T) {
	s := NewStore(3, testRules)
	if !s.Add(apple, 35, -1, -1) {
		t.Fatalf("expected add to succeed")
	}
	a, _ := s.Slot(0)
	b, _ := s.Slot(1)
	if a.Count != 20 || b.Count != 15 {
		t.Fatalf("expected 20+15, got %d+%d", a.Count, b.Count)
	}
	// 5 fit on top of slot 1, 20 in slot 2, 1 more would overflow.
	if s.Add(apple, 26, -1, -1) {
		t.Fatalf("expected overflow to fail")
	}
	if s.Count(apple) != 35 {
		t.Fatalf("failed add must not mutate, count=%d", s.Count(apple))
	}
	for _, sl := range s.Slots() {
		if sl.ItemID == apple && sl.Count > 20 {
			t.Fatalf("slot %d exceeds max stack: %d", sl.Index, sl.Count)
		}
	}
}

func TestStore_UnboundedSingleSlot(t *testing.T) {
	s := NewStore(2, testRules)
	s.Add(gold, 1000, -1, -1)
	s.Add(gold, 5000, -1, -1)
	sl, _ := s.Slot(0)
	if sl.Count != 6000 {
		t.Fatalf("expected unbounded stack in one slot, got %+v", sl)
	}
	if other, _ := s.Slot(1); !other.Empty() {
		t.Fatalf("second slot should stay empty: %+v", other)
	}
}

func TestStore_NonStackableNeedsOneSlotEach(t *testing.T) {
	s := NewStore(2, testRules)
	if s.Add(sword, 3, -1, -1) {
		t.Fatalf("three swords cannot fit in two slots")
	}
	if s.Count(sword) != 0 {
		t.Fatalf("partial add leaked %d swords", s.Count(sword))
	}
	if !s.Add(sword, 2, -1, -1) {
		t.Fatalf("two swords should fit")
	}
	if s.HasSpace() {
		t.Fatalf("store should be full")
	}
}

func TestStore_AbilityDoesNotMerge(t *testing.T) {
	s := NewStore(2, testRules)
	s.Add(apple, 1, -1, -1)
	s.Add(apple, 1, 2, 1)
	a, _ := s.Slot(0)
	b, _ := s.Slot(1)
	if a.Count != 1 || b.Count != 1 || b.Ability != 2 {
		t.Fatalf("enchanted stack merged: %+v %+v", a, b)
	}
}

func TestStore_Remove(t *testing.T) {
	s := NewStore(2, testRules)
	s.Add(apple, 5, -1, -1)
	if s.Remove(apple, 6, 0) {
		t.Fatalf("cannot remove more than held")
	}
	if s.Remove(gold, 1, 0) {
		t.Fatalf("cannot remove a different item")
	}
	if !s.Remove(apple, 5, 0) {
		t.Fatalf("expected remove to succeed")
	}
	sl, _ := s.Slot(0)
	if !sl.Empty() || sl.Index != 0 {
		t.Fatalf("slot should be empty with index kept: %+v", sl)
	}
}

func TestStore_Load(t *testing.T) {
	s := NewStore(3, testRules)
	s.Load([]Slot{{Index: 2, ItemID: sword, Count: 1}, {Index: 9, ItemID: apple, Count: 1}})
	if sl, _ := s.Slot(2); sl.ItemID != sword {
		t.Fatalf("slot 2 not restored: %+v", sl)
	}
	if s.Count(apple) != 0 {
		t.Fatalf("out-of-range slot should be ignored")
	}
}

func TestStore_AddAt(t *testing.T) {
	s := NewStore(4, testRules)
	if !s.AddAt(2, sword, 1, -1, -1) {
		t.Fatalf("AddAt into empty slot failed")
	}
	if sl, _ := s.Slot(2); sl.ItemID != sword || sl.Index != 2 {
		t.Fatalf("slot 2 = %+v", sl)
	}
	// Occupied target falls back to the lowest free slot.
	if !s.AddAt(2, sword, 1, -1, -1) {
		t.Fatalf("fallback add failed")
	}
	if sl, _ := s.Slot(0); sl.ItemID != sword {
		t.Fatalf("slot 0 = %+v", sl)
	}
	// Unbounded items keep merging into their existing stack.
	s.Add(gold, 5, -1, -1)
	if !s.AddAt(3, gold, 7, -1, -1) {
		t.Fatalf("gold add failed")
	}
	if sl, _ := s.Slot(3); !sl.Empty() || s.Count(gold) != 12 {
		t.Fatalf("slot 3 = %+v gold=%d", sl, s.Count(gold))
	}
}
