package economy

import (
	"fmt"

	"realmgate.io/internal/protocol"
	"realmgate.io/internal/sim/model"
	"realmgate.io/internal/sim/session"
	"realmgate.io/internal/sim/slots"
)

const (
	NoSpaceNotice           = "You do not have enough space in your inventory."
	IncorrectPurchaseNotice = "Incorrect purchase packets."
	NoSelectionNotice       = "No item has been selected."
)

type Items interface {
	slots.Rules
	EquipSlot(id int) (protocol.EquipSlot, bool)
	Edible(id int) bool
	IsShard(id int) bool
	Key(id int) string
}

// Shops is the pricing authority. It owns stock and currency arithmetic;
// handlers only validate input before delegating.
type Shops interface {
	Buy(p *model.Player, shop, itemID, amount int) bool
	Sell(p *model.Player, shop, slotIndex int) bool
	Remove(p *model.Player, shop int)
	Currency(shop int) int
	SellPrice(shop, itemID int) int
}

type Env interface {
	Items() Items
	Shops() Shops

	CanEquip(p *model.Player, itemID int) bool
	Eat(p *model.Player, itemID int)
	SpawnItem(itemID, count, ability, abilityLevel int, at model.Pos)
	RemoveEntity(e *model.Entity)

	Notify(p *model.Player, text string)
	Send(p *model.Player, msg protocol.Message)
	Sync(p *model.Player)
}

func Handle(env Env, s *session.Context, cmd protocol.Command) session.Verdict {
	switch c := cmd.(type) {
	case protocol.InventoryRemove:
		return Drop(env, s, c)
	case protocol.InventorySelect:
		return Select(env, s, c)
	case protocol.Unequip:
		return Unequip(env, s, c)
	case protocol.BankSelect:
		return Bank(env, s, c)
	case protocol.ShopBuy:
		return ShopBuy(env, s, c)
	case protocol.ShopSell:
		return ShopSell(env, s, c)
	case protocol.ShopSelect:
		return ShopSelect(env, s, c)
	case protocol.ShopRemove:
		return ShopRemove(env, s, c)
	}
	return session.Reject(protocol.ErrBadRequest, fmt.Sprintf("not a container command: %T", cmd))
}

// Drop removes items from the inventory and spawns them on the ground at the
// player's feet. The default amount is one unit.
func Drop(env Env, s *session.Context, c protocol.InventoryRemove) session.Verdict {
	p := s.Player
	sl, ok := p.Inventory.Slot(c.Index)
	if !ok || sl.Empty() {
		return session.Reject(protocol.ErrEmptySlot, fmt.Sprintf("slot %d", c.Index))
	}
	requested := 1
	if c.HasCount {
		requested = c.Count
	}
	n := TransferCount(env.Items(), sl, requested)
	if n <= 0 {
		return session.Reject(protocol.ErrBadRequest, fmt.Sprintf("drop count %d", requested))
	}
	if !p.Inventory.Remove(sl.ItemID, n, sl.Index) {
		return session.Reject(protocol.ErrEmptySlot, fmt.Sprintf("slot %d", c.Index))
	}
	env.SpawnItem(sl.ItemID, n, sl.Ability, sl.AbilityLevel, p.Pos)
	sendInventory(env, p)
	return session.Accept()
}

// Select equips or eats the selected inventory slot, never both.
func Select(env Env, s *session.Context, c protocol.InventorySelect) session.Verdict {
	p := s.Player
	sl, ok := p.Inventory.Slot(c.Index)
	if !ok || sl.Empty() {
		return session.Reject(protocol.ErrEmptySlot, fmt.Sprintf("slot %d", c.Index))
	}
	items := env.Items()

	if slot, ok := items.EquipSlot(sl.ItemID); ok {
		if !env.CanEquip(p, sl.ItemID) {
			return session.Reject(protocol.ErrNotAllowed, fmt.Sprintf("cannot equip %d", sl.ItemID))
		}
		return equip(env, p, slot, sl)
	}
	if items.Edible(sl.ItemID) {
		if !p.Inventory.Remove(sl.ItemID, 1, sl.Index) {
			return session.Reject(protocol.ErrEmptySlot, fmt.Sprintf("slot %d", c.Index))
		}
		env.Eat(p, sl.ItemID)
		sendInventory(env, p)
		return session.Accept()
	}
	return session.Reject(protocol.ErrBadRequest, fmt.Sprintf("item %d is neither equippable nor edible", sl.ItemID))
}

func equip(env Env, p *model.Player, slot protocol.EquipSlot, sl slots.Slot) session.Verdict {
	if !p.Inventory.Remove(sl.ItemID, sl.Count, sl.Index) {
		return session.Reject(protocol.ErrEmptySlot, fmt.Sprintf("slot %d", sl.Index))
	}
	old := p.Equipment[slot]
	// The replaced item takes the freed slot.
	if !old.IsEmpty(slot) && !p.Inventory.AddAt(sl.Index, old.ItemID, max(1, old.Count), old.Ability, old.AbilityLevel) {
		p.Inventory.AddAt(sl.Index, sl.ItemID, sl.Count, sl.Ability, sl.AbilityLevel)
		return session.Reject(protocol.ErrNoSpace, "")
	}
	p.Equipment[slot] = model.Equipped{ItemID: sl.ItemID, Count: sl.Count, Ability: sl.Ability, AbilityLevel: sl.AbilityLevel, From: sl.Index}

	env.Send(p, protocol.EquipmentEquipMsg(protocol.EquipmentState{
		Type:         slot.String(),
		ItemID:       sl.ItemID,
		Count:        sl.Count,
		Ability:      sl.Ability,
		AbilityLevel: sl.AbilityLevel,
	}))
	sendInventory(env, p)
	env.Sync(p)
	return session.Accept()
}

// Unequip returns an equipped item to the inventory slot it was equipped
// from, or the first free one if that slot has since been filled. Inventory
// space is checked before anything moves.
func Unequip(env Env, s *session.Context, c protocol.Unequip) session.Verdict {
	p := s.Player
	if !p.Inventory.HasSpace() {
		env.Notify(p, NoSpaceNotice)
		return session.Reject(protocol.ErrNoSpace, "")
	}
	cur := p.Equipment[c.Slot]
	if cur.IsEmpty(c.Slot) {
		return session.Reject(protocol.ErrEmptySlot, c.Slot.String())
	}
	if !p.Inventory.AddAt(cur.From, cur.ItemID, max(1, cur.Count), cur.Ability, cur.AbilityLevel) {
		env.Notify(p, NoSpaceNotice)
		return session.Reject(protocol.ErrNoSpace, "")
	}
	p.Equipment[c.Slot] = model.EmptyEquipment(c.Slot)

	env.Send(p, protocol.EquipmentUnequipMsg(c.Slot))
	sendInventory(env, p)
	env.Sync(p)
	return session.Accept()
}

// Bank moves one unit out of the bank, or a whole slot into it. Unbounded
// stacks always move whole.
func Bank(env Env, s *session.Context, c protocol.BankSelect) session.Verdict {
	p := s.Player
	src, dst := slots.Container(p.Bank), slots.Container(p.Inventory)
	requested := 1
	if c.Side == protocol.BankSideInventory {
		src, dst = p.Inventory, p.Bank
		sl, ok := p.Inventory.Slot(c.Index)
		if !ok || sl.Empty() {
			return session.Reject(protocol.ErrEmptySlot, fmt.Sprintf("inventory slot %d", c.Index))
		}
		requested = sl.Count
	}
	if sl, ok := src.Slot(c.Index); !ok || sl.Empty() {
		return session.Reject(protocol.ErrEmptySlot, fmt.Sprintf("%s slot %d", c.Side, c.Index))
	}
	if _, ok := Move(env.Items(), src, dst, c.Index, requested); !ok {
		return session.Reject(protocol.ErrNoSpace, c.Side.String())
	}
	sendInventory(env, p)
	sendBank(env, p)
	return session.Accept()
}

// Collect picks a ground item up into the inventory and removes it from the
// world. Nothing happens if it does not fit.
func Collect(env Env, p *model.Player, item *model.Entity) bool {
	if item == nil || item.Kind != model.KindItem || item.ItemID <= 0 || item.Count <= 0 {
		return false
	}
	if !p.Inventory.Add(item.ItemID, item.Count, item.Ability, item.AbilityLevel) {
		env.Notify(p, NoSpaceNotice)
		return false
	}
	env.RemoveEntity(item)
	sendInventory(env, p)
	return true
}

func sendInventory(env Env, p *model.Player) {
	env.Send(p, protocol.InventoryBatchMsg(p.Inventory.Size(), model.SlotStates(p.Inventory.Slots(), env.Items().Key)))
}

func sendBank(env Env, p *model.Player) {
	env.Send(p, protocol.BankBatchMsg(p.Bank.Size(), model.SlotStates(p.Bank.Slots(), env.Items().Key)))
}
