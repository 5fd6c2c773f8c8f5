package economy

import (
	"fmt"

	"realmgate.io/internal/protocol"
	"realmgate.io/internal/sim/session"
)

func ShopBuy(env Env, s *session.Context, c protocol.ShopBuy) session.Verdict {
	p := s.Player
	if c.ItemID <= 0 || c.Amount <= 0 {
		env.Notify(p, IncorrectPurchaseNotice)
		return session.Reject(protocol.ErrBadRequest, fmt.Sprintf("buy id=%d amount=%d", c.ItemID, c.Amount))
	}
	if !env.Shops().Buy(p, c.Shop, c.ItemID, c.Amount) {
		return session.Reject(protocol.ErrNotAllowed, fmt.Sprintf("shop %d refused %dx%d", c.Shop, c.Amount, c.ItemID))
	}
	sendInventory(env, p)
	return session.Accept()
}

func ShopSell(env Env, s *session.Context, c protocol.ShopSell) session.Verdict {
	p := s.Player
	if s.Selection == nil {
		env.Notify(p, NoSelectionNotice)
		return session.Reject(protocol.ErrBadRequest, "no selection")
	}
	index := s.Selection.SlotIndex
	s.Selection = nil
	if !env.Shops().Sell(p, c.Shop, index) {
		return session.Reject(protocol.ErrNotAllowed, fmt.Sprintf("shop %d refused slot %d", c.Shop, index))
	}
	sendInventory(env, p)
	return session.Accept()
}

// ShopSelect fixes the inventory slot the player intends to sell. A missing
// or zero slot is rejected before any shop state changes.
func ShopSelect(env Env, s *session.Context, c protocol.ShopSelect) session.Verdict {
	p := s.Player
	if c.Slot == 0 {
		env.Notify(p, IncorrectPurchaseNotice)
		return session.Reject(protocol.ErrBadRequest, "missing slot")
	}
	sl, ok := p.Inventory.Slot(c.Slot)
	if !ok || sl.Empty() {
		return session.Reject(protocol.ErrEmptySlot, fmt.Sprintf("slot %d", c.Slot))
	}

	shops := env.Shops()
	if s.Selection != nil {
		shops.Remove(p, s.Selection.ShopID)
		s.Selection = nil
	}
	currency := shops.Currency(c.Shop)
	if currency <= 0 {
		return session.Reject(protocol.ErrStale, fmt.Sprintf("shop %d", c.Shop))
	}

	env.Send(p, protocol.ShopSelectMsg(protocol.ShopSelection{
		ID:       c.Shop,
		SlotID:   c.Slot,
		Currency: env.Items().Key(currency),
		Price:    shops.SellPrice(c.Shop, sl.ItemID),
	}))
	s.Selection = &session.ShopSelection{ShopID: c.Shop, SlotIndex: sl.Index}
	return session.Accept()
}

func ShopRemove(env Env, s *session.Context, c protocol.ShopRemove) session.Verdict {
	env.Shops().Remove(s.Player, c.Shop)
	s.Selection = nil
	return session.Accept()
}
