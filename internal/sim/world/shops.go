package world

import (
	"sort"

	"realmgate.io/internal/protocol"
	"realmgate.io/internal/sim/catalogs"
	"realmgate.io/internal/sim/model"
	"realmgate.io/internal/sim/slots"
	"realmgate.io/internal/sim/world/feature/economy"
)

const (
	NoMoneyNotice    = "You do not have enough money to purchase this."
	OutOfStockNotice = "This item is currently out of stock."
	ShopFullNotice   = "The shop cannot take any more of that."
)

// shopBook owns shop stock. Buying adds to the buyer before anything is
// removed, and every removal is checked up front so a failed purchase
// changes nothing.
type shopBook struct {
	w     *World
	defs  map[int]catalogs.ShopDef
	stock map[int]*slots.Store
}

func newShopBook(w *World, cat catalogs.ShopCatalog, size int) *shopBook {
	b := &shopBook{w: w, defs: cat.ByID, stock: map[int]*slots.Store{}}
	for id, def := range cat.ByID {
		st := slots.NewStore(size, &w.cats.Items)
		for _, line := range def.Stock {
			if !st.Add(line.Item, line.Count, -1, -1) {
				w.log.Printf("shop %d: stock line %dx%d does not fit", id, line.Count, line.Item)
			}
		}
		b.stock[id] = st
	}
	return b
}

func (w *World) Shops() economy.Shops { return w.shops }

func (b *shopBook) Buy(p *model.Player, shop, itemID, amount int) bool {
	def, ok := b.defs[shop]
	st := b.stock[shop]
	if !ok || st == nil || amount <= 0 {
		return false
	}
	if st.Count(itemID) < amount {
		b.w.Notify(p, OutOfStockNotice)
		return false
	}
	price := b.w.cats.Items.Price(itemID) * amount
	if p.Inventory.Count(def.Currency) < price {
		b.w.Notify(p, NoMoneyNotice)
		return false
	}
	if !p.Inventory.Add(itemID, amount, -1, -1) {
		b.w.Notify(p, economy.NoSpaceNotice)
		return false
	}
	take(p.Inventory, def.Currency, price)
	take(st, itemID, amount)
	b.refresh(p, shop)
	return true
}

func (b *shopBook) Sell(p *model.Player, shop, slotIndex int) bool {
	def, ok := b.defs[shop]
	st := b.stock[shop]
	if !ok || st == nil {
		return false
	}
	sl, ok := p.Inventory.Slot(slotIndex)
	if !ok || sl.Empty() || sl.ItemID == def.Currency {
		return false
	}
	if !st.Fits(sl.ItemID, 1, -1, -1) {
		b.w.Notify(p, ShopFullNotice)
		return false
	}
	pay := b.SellPrice(shop, sl.ItemID)
	if !p.Inventory.Remove(sl.ItemID, 1, sl.Index) {
		return false
	}
	if !p.Inventory.Add(def.Currency, pay, -1, -1) {
		p.Inventory.AddAt(sl.Index, sl.ItemID, 1, sl.Ability, sl.AbilityLevel)
		b.w.Notify(p, economy.NoSpaceNotice)
		return false
	}
	st.Add(sl.ItemID, 1, -1, -1)
	b.refresh(p, shop)
	return true
}

func (b *shopBook) Remove(p *model.Player, shop int) {
	b.w.Send(p, protocol.ShopRemoveMsg(shop))
}

func (b *shopBook) Currency(shop int) int {
	return b.defs[shop].Currency
}

func (b *shopBook) SellPrice(shop, itemID int) int {
	return max(1, b.w.cats.Items.Price(itemID)/2)
}

func (b *shopBook) states(shop int) []protocol.SlotState {
	st := b.stock[shop]
	if st == nil {
		return nil
	}
	return model.SlotStates(st.Slots(), b.w.cats.Items.Key)
}

func (b *shopBook) open(p *model.Player, shop int) {
	if _, ok := b.defs[shop]; !ok {
		return
	}
	b.w.Send(p, protocol.ShopOpenMsg(shop, b.states(shop)))
}

func (b *shopBook) refresh(p *model.Player, shop int) {
	b.w.Send(p, protocol.ShopRefreshMsg(shop, b.states(shop)))
}

// restock adds one unit back to every line below its catalog count.
func (b *shopBook) restock() {
	ids := make([]int, 0, len(b.defs))
	for id := range b.defs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		st := b.stock[id]
		for _, line := range b.defs[id].Stock {
			if st.Count(line.Item) < line.Count {
				st.Add(line.Item, 1, -1, -1)
			}
		}
	}
}

// take removes count units of itemID across slots. Callers check Count
// first.
func take(st *slots.Store, itemID, count int) {
	for _, sl := range st.Slots() {
		if count <= 0 {
			return
		}
		if sl.ItemID != itemID {
			continue
		}
		n := min(sl.Count, count)
		if st.Remove(itemID, n, sl.Index) {
			count -= n
		}
	}
}
