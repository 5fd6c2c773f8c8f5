package model

import (
	"realmgate.io/internal/protocol"
	"realmgate.io/internal/sim/slots"
)

// ArmourSentinel is the item id worn when no armour is equipped. Every other
// equipment slot uses -1 for empty.
const ArmourSentinel = 114

// Equipped is the item worn in one equipment slot. From is the inventory slot
// it was equipped from.
type Equipped struct {
	ItemID       int `json:"id"`
	Count        int `json:"count"`
	Ability      int `json:"ability"`
	AbilityLevel int `json:"ability_level"`
	From         int `json:"from"`
}

// EmptyEquipment is the "nothing equipped" value for slot.
func EmptyEquipment(slot protocol.EquipSlot) Equipped {
	if slot == protocol.EquipArmour {
		return Equipped{ItemID: ArmourSentinel, Count: 1, Ability: -1, AbilityLevel: -1}
	}
	return Equipped{ItemID: -1, Count: -1, Ability: -1, AbilityLevel: -1}
}

// IsEmpty reports whether e is the empty representation for slot.
func (e Equipped) IsEmpty(slot protocol.EquipSlot) bool {
	if slot == protocol.EquipArmour {
		return e.ItemID == ArmourSentinel || e.ItemID <= 0
	}
	return e.ItemID <= 0
}

type EnchantSelection struct {
	// Slot indexes into the inventory, -1 when unset.
	Item   int
	Shards int
}

type Player struct {
	Entity

	Username  string
	Email     string
	Guest     bool
	Ready     bool
	UserAgent string

	// Regions the client has already been sent.
	Regions map[string]bool

	Previous      Pos
	Spawn         Pos
	MovementSpeed int

	Stunned bool
	Frozen  bool
	// Obstacles are instance-scoped collisions (closed doors, quest objects).
	Obstacles map[Pos]bool

	Inventory *slots.Store
	Bank      *slots.Store
	Equipment [protocol.EquipSlotCount]Equipped

	Muted   bool
	CanTalk bool

	ProfileOpen   bool
	InventoryOpen bool
	WarpOpen      bool

	Enchant EnchantSelection
}

func NewPlayer(instance int, username string, inventory, bank *slots.Store) *Player {
	p := &Player{
		Entity: Entity{
			Instance: instance,
			Kind:     KindPlayer,
			Name:     username,
		},
		Username:  username,
		Regions:   map[string]bool{},
		Previous:  NoPos,
		Obstacles: map[Pos]bool{},
		Inventory: inventory,
		Bank:      bank,
		CanTalk:   true,
		Enchant:   EnchantSelection{Item: -1, Shards: -1},
	}
	for i := range p.Equipment {
		p.Equipment[i] = EmptyEquipment(protocol.EquipSlot(i))
	}
	return p
}

// SetPosition moves the player and remembers the tile it left.
func (p *Player) SetPosition(to Pos) {
	p.Previous = p.Pos
	p.Pos = to
}

// InstanceColliding reports instance-scoped obstacles only.
func (p *Player) InstanceColliding(x, y int) bool {
	return p.Obstacles[Pos{X: x, Y: y}]
}

func (p *Player) EquipmentState() []protocol.EquipmentState {
	out := make([]protocol.EquipmentState, 0, len(p.Equipment))
	for i, e := range p.Equipment {
		out = append(out, protocol.EquipmentState{
			Type:         protocol.EquipSlot(i).String(),
			ItemID:       e.ItemID,
			Count:        e.Count,
			Ability:      e.Ability,
			AbilityLevel: e.AbilityLevel,
		})
	}
	return out
}

func SlotStates(ss []slots.Slot, key func(int) string) []protocol.SlotState {
	out := make([]protocol.SlotState, 0, len(ss))
	for _, s := range ss {
		st := protocol.SlotState{
			Index:        s.Index,
			ItemID:       s.ItemID,
			Count:        s.Count,
			Ability:      s.Ability,
			AbilityLevel: s.AbilityLevel,
		}
		if !s.Empty() && key != nil {
			st.Key = key(s.ItemID)
		}
		out = append(out, st)
	}
	return out
}
