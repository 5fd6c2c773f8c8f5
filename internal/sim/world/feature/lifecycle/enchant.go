package lifecycle

import (
	"fmt"

	"realmgate.io/internal/protocol"
	"realmgate.io/internal/sim/model"
	"realmgate.io/internal/sim/session"
	"realmgate.io/internal/sim/slots"
	"realmgate.io/internal/sim/world/feature/economy"
)

const (
	NotEnoughShardsNotice = "You do not have enough shards to enchant this item."
	MaxLevelNotice        = "This item cannot be enchanted any further."
	EnchantedNotice       = "Your item has been enchanted."
)

// EnchantSelect places an inventory slot on the enchant table, as the item
// or as the shard stack depending on what it holds.
func EnchantSelect(env Env, s *session.Context, c protocol.EnchantSelect) session.Verdict {
	p := s.Player
	sl, ok := p.Inventory.Slot(c.Index)
	if !ok || sl.Empty() {
		return session.Reject(protocol.ErrEmptySlot, fmt.Sprintf("slot %d", c.Index))
	}
	items := env.Items()
	switch {
	case items.IsShard(sl.ItemID):
		p.Enchant.Shards = sl.Index
	case enchantable(items, sl.ItemID):
		p.Enchant.Item = sl.Index
	default:
		return session.Reject(protocol.ErrBadRequest, fmt.Sprintf("item %d cannot be enchanted", sl.ItemID))
	}
	sendEnchant(env, p)
	return session.Accept()
}

func EnchantRemove(env Env, s *session.Context, c protocol.EnchantRemove) session.Verdict {
	p := s.Player
	switch c.Kind {
	case "item":
		p.Enchant.Item = -1
	case "shards":
		p.Enchant.Shards = -1
	default:
		return session.Reject(protocol.ErrBadRequest, "enchant remove "+c.Kind)
	}
	sendEnchant(env, p)
	return session.Accept()
}

// EnchantApply spends shards to raise the selected item's ability level.
func EnchantApply(env Env, s *session.Context, _ protocol.EnchantApply) session.Verdict {
	p := s.Player
	items := env.Items()
	tun := env.Tuning()

	item, ok := p.Inventory.Slot(p.Enchant.Item)
	if !ok || item.Empty() || !enchantable(items, item.ItemID) {
		p.Enchant.Item = -1
		return session.Reject(protocol.ErrStale, "no item selected")
	}
	shards, ok := p.Inventory.Slot(p.Enchant.Shards)
	if !ok || shards.Empty() || !items.IsShard(shards.ItemID) {
		p.Enchant.Shards = -1
		return session.Reject(protocol.ErrStale, "no shards selected")
	}
	if shards.Count < tun.ShardCost {
		env.Notify(p, NotEnoughShardsNotice)
		return session.Reject(protocol.ErrNoCurrency, fmt.Sprintf("%d shards", shards.Count))
	}
	if item.AbilityLevel >= tun.MaxAbilityLevel {
		env.Notify(p, MaxLevelNotice)
		return session.Reject(protocol.ErrNotAllowed, fmt.Sprintf("level %d", item.AbilityLevel))
	}

	if !p.Inventory.Remove(shards.ItemID, tun.ShardCost, shards.Index) {
		return session.Reject(protocol.ErrNoCurrency, "shard removal failed")
	}
	ability, level := item.Ability, item.AbilityLevel+1
	if ability < 0 {
		ability = 0
	}
	if level < 1 {
		level = 1
	}
	p.Inventory.SetAbility(item.Index, ability, level)
	if left, _ := p.Inventory.Slot(shards.Index); left.Empty() {
		p.Enchant.Shards = -1
	}

	env.Send(p, protocol.InventoryBatchMsg(p.Inventory.Size(), model.SlotStates(p.Inventory.Slots(), items.Key)))
	sendEnchant(env, p)
	env.Notify(p, EnchantedNotice)
	return session.Accept()
}

func enchantable(items economy.Items, id int) bool {
	_, ok := items.EquipSlot(id)
	return ok && id != model.ArmourSentinel
}

func sendEnchant(env Env, p *model.Player) {
	var st protocol.EnchantState
	keys := env.Items().Key
	if sl, ok := p.Inventory.Slot(p.Enchant.Item); ok && !sl.Empty() {
		st.Item = &model.SlotStates([]slots.Slot{sl}, keys)[0]
	}
	if sl, ok := p.Inventory.Slot(p.Enchant.Shards); ok && !sl.Empty() {
		st.Shards = &model.SlotStates([]slots.Slot{sl}, keys)[0]
	}
	env.Send(p, protocol.EnchantUpdateMsg(st))
}
