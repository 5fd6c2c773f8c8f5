package model

import (
	"testing"
	"time"

	"realmgate.io/internal/protocol"
	"realmgate.io/internal/sim/slots"
)

func TestEmptyEquipment_ArmourSentinelDiffers(t *testing.T) {
	for i := 0; i < protocol.EquipSlotCount; i++ {
		slot := protocol.EquipSlot(i)
		e := EmptyEquipment(slot)
		if !e.IsEmpty(slot) {
			t.Fatalf("%s: empty value not reported empty", slot)
		}
		if slot == protocol.EquipArmour {
			if e.ItemID != ArmourSentinel || e.Count != 1 {
				t.Fatalf("armour empty = %+v", e)
			}
			continue
		}
		if e.ItemID != -1 || e.Count != -1 {
			t.Fatalf("%s empty = %+v", slot, e)
		}
	}
}

func TestPlayer_SetPositionTracksPrevious(t *testing.T) {
	rules := slots.RulesFunc(func(int) int { return 1 })
	p := NewPlayer(1, "alice", slots.NewStore(1, rules), slots.NewStore(1, rules))
	if p.Previous.Valid() {
		t.Fatalf("new player should have no previous position")
	}
	p.Pos = Pos{X: 3, Y: 4}
	p.SetPosition(Pos{X: 4, Y: 4})
	if p.Previous != (Pos{X: 3, Y: 4}) || p.Pos != (Pos{X: 4, Y: 4}) {
		t.Fatalf("previous=%v pos=%v", p.Previous, p.Pos)
	}
}

func TestPos_AdjacentAndManhattan(t *testing.T) {
	a := Pos{X: 10, Y: 10}
	if !a.Adjacent(Pos{X: 11, Y: 11}) || a.Adjacent(Pos{X: 12, Y: 10}) {
		t.Fatalf("adjacency wrong")
	}
	if d := a.Manhattan(Pos{X: 7, Y: 14}); d != 7 {
		t.Fatalf("manhattan=%d", d)
	}
}

func TestPlayerSave_RestoreKeepsContainersAndClampsHP(t *testing.T) {
	rules := slots.RulesFunc(func(int) int { return 10 })
	p := NewPlayer(1, "alice", slots.NewStore(4, rules), slots.NewStore(4, rules))
	p.MaxHitPoints, p.HitPoints = 50, 20
	p.Pos = Pos{X: 7, Y: 8}
	p.PvP = true
	p.Inventory.Add(3, 5, -1, -1)
	p.Bank.Add(4, 2, -1, -1)
	p.Equipment[protocol.EquipWeapon] = Equipped{ItemID: 9, Count: 1, Ability: -1, AbilityLevel: -1}

	save := SaveOf(p, time.Unix(100, 0))

	q := NewPlayer(2, "alice", slots.NewStore(4, rules), slots.NewStore(4, rules))
	q.MaxHitPoints, q.HitPoints = 50, 50
	save.Restore(q)
	if q.Pos != p.Pos || !q.PvP || q.HitPoints != 20 {
		t.Fatalf("restored pos=%v pvp=%v hp=%d", q.Pos, q.PvP, q.HitPoints)
	}
	if q.Inventory.Count(3) != 5 || q.Bank.Count(4) != 2 {
		t.Fatalf("inventory=%d bank=%d", q.Inventory.Count(3), q.Bank.Count(4))
	}
	if q.Equipment[protocol.EquipWeapon].ItemID != 9 {
		t.Fatalf("weapon = %+v", q.Equipment[protocol.EquipWeapon])
	}
	if !q.Equipment[protocol.EquipArmour].IsEmpty(protocol.EquipArmour) {
		t.Fatalf("armour should stay empty: %+v", q.Equipment[protocol.EquipArmour])
	}

	save.HitPoints = 500
	save.Restore(q)
	if q.HitPoints != 20 {
		t.Fatalf("out of range saved hp should keep current value, got %d", q.HitPoints)
	}
}
