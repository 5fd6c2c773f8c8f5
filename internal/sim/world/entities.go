package world

import (
	"sort"
	"time"

	"realmgate.io/internal/protocol"
	"realmgate.io/internal/sim/model"
	"realmgate.io/internal/sim/slots"
	"realmgate.io/internal/sim/world/feature/economy"
)

const (
	mobRespawnDelay   = 30 * time.Second
	chestRespawnDelay = 2 * time.Minute
)

// home is where a static entity returns to after it dies or is opened.
type home struct {
	pos       model.Pos
	respawnAt time.Time
}

func (w *World) EntityByInstance(id int) *model.Entity { return w.entities[id] }

func (w *World) PlayerByInstance(id int) *model.Player { return w.players[id] }

func (w *World) PlayerCount() int { return len(w.players) }

func (w *World) OutOfBounds(x, y int) bool { return w.cats.Map.OutOfBounds(x, y) }

func (w *World) Colliding(x, y int) bool { return w.cats.Map.Colliding(x, y) }

func (w *World) Door(x, y int) (model.Pos, bool) {
	d, ok := w.cats.Map.Door(x, y)
	if !ok {
		return model.Pos{}, false
	}
	return model.Pos{X: d.ToX, Y: d.ToY}, true
}

func (w *World) nextID() int {
	w.nextInstance++
	return w.nextInstance
}

// addEntity assigns an instance and files e under its region without
// announcing it.
func (w *World) addEntity(e *model.Entity) {
	if e.Instance == 0 {
		e.Instance = w.nextID()
	}
	w.entities[e.Instance] = e
	w.index(e)
}

// populate spawns the static map entities.
func (w *World) populate() {
	for _, d := range w.cats.Map.NPCs {
		e := &model.Entity{Kind: model.KindNPC, Key: d.Key, Name: d.Name, Pos: model.Pos{X: d.X, Y: d.Y}, Shop: d.Shop}
		w.addEntity(e)
		if len(d.Text) > 0 {
			w.npcText[e.Instance] = d.Text
		}
	}
	for _, d := range w.cats.Map.Chests {
		e := &model.Entity{Kind: model.KindChest, Key: "chest", Pos: model.Pos{X: d.X, Y: d.Y}, Loot: append([]int(nil), d.Items...)}
		w.addEntity(e)
		w.homes[e.Instance] = &home{pos: e.Pos}
	}
	for _, d := range w.cats.Map.Mobs {
		hp := max(d.HitPoints, 1)
		e := &model.Entity{
			Kind:         model.KindMob,
			Key:          d.Key,
			Name:         d.Name,
			Pos:          model.Pos{X: d.X, Y: d.Y},
			HitPoints:    hp,
			MaxHitPoints: hp,
			Damage:       d.Damage,
		}
		w.addEntity(e)
		w.homes[e.Instance] = &home{pos: e.Pos}
	}
}

func (w *World) newPlayer(username string) *model.Player {
	rules := slots.Rules(&w.cats.Items)
	p := model.NewPlayer(w.nextID(), username,
		slots.NewStore(w.tun.InventorySize, rules),
		slots.NewStore(w.tun.BankSize, rules))
	p.MaxHitPoints = w.tun.HitPoints
	p.HitPoints = w.tun.HitPoints
	p.MovementSpeed = w.tun.MovementSpeedMs
	p.Spawn = model.Pos{X: w.tun.Spawn.X, Y: w.tun.Spawn.Y}
	p.Pos = p.Spawn
	return p
}

func (w *World) removePlayer(p *model.Player) {
	w.Push(protocol.PushRegions, protocol.Push{
		RegionID: p.Region,
		Message:  protocol.Despawn(p.Instance),
		IgnoreID: p.Instance,
	})
	for _, e := range w.entities {
		if e.Combat.Target == p.Instance {
			w.StopCombat(e)
		}
		delete(e.Combat.Attackers, p.Instance)
	}
	w.unindex(&p.Entity)
	delete(w.entities, p.Instance)
	delete(w.players, p.Instance)
	delete(w.lastHit, p.Instance)
}

// RemoveEntity takes a non-player entity out of the world.
func (w *World) RemoveEntity(e *model.Entity) {
	if e == nil || e.Kind == model.KindPlayer || w.entities[e.Instance] != e {
		return
	}
	w.Push(protocol.PushRegions, protocol.Push{
		RegionID: e.Region,
		Message:  protocol.Despawn(e.Instance),
	})
	w.unindex(e)
	delete(w.entities, e.Instance)
	delete(w.homes, e.Instance)
	delete(w.lastHit, e.Instance)
	delete(w.npcText, e.Instance)
}

func (w *World) SpawnItem(itemID, count, ability, abilityLevel int, at model.Pos) {
	if itemID <= 0 || count <= 0 {
		return
	}
	e := &model.Entity{
		Kind:         model.KindItem,
		Key:          w.cats.Items.Key(itemID),
		Pos:          at,
		ItemID:       itemID,
		Count:        count,
		Ability:      ability,
		AbilityLevel: abilityLevel,
		SpawnedAt:    w.now(),
	}
	w.addEntity(e)
	w.Push(protocol.PushRegions, protocol.Push{
		RegionID: e.Region,
		Message:  protocol.Spawn(e.State()),
	})
}

// SpawnProjectile is used by ranged attacks; the client reports the impact.
func (w *World) SpawnProjectile(owner *model.Entity, damage int) *model.Entity {
	e := &model.Entity{
		Kind:   model.KindProjectile,
		Key:    "arrow",
		Pos:    owner.Pos,
		Owner:  owner.Instance,
		Damage: damage,
	}
	w.addEntity(e)
	w.Push(protocol.PushRegions, protocol.Push{
		RegionID: e.Region,
		Message:  protocol.Spawn(e.State()),
	})
	return e
}

func (w *World) MoveEntity(e *model.Entity, to model.Pos) {
	e.Pos = to
	w.relocate(e)
	w.Push(protocol.PushRegions, protocol.Push{
		RegionID: e.Region,
		Message:  protocol.Movement(protocol.MovementMove, e.Instance, to.X, to.Y),
	})
}

func (w *World) Collect(p *model.Player, item *model.Entity) bool {
	return economy.Collect(w, p, item)
}

// OpenChest drops the chest's loot at the player's feet and hides the chest
// until it respawns.
func (w *World) OpenChest(p *model.Player, chest *model.Entity) {
	if chest.Dead {
		return
	}
	for _, id := range chest.Loot {
		w.SpawnItem(id, 1, -1, -1, p.Pos)
	}
	chest.Dead = true
	w.Push(protocol.PushRegions, protocol.Push{
		RegionID: chest.Region,
		Message:  protocol.Despawn(chest.Instance),
	})
	if h := w.homes[chest.Instance]; h != nil {
		h.respawnAt = w.now().Add(chestRespawnDelay)
	}
}

// TalkTo opens an NPC's shop, or speaks its next line of text.
func (w *World) TalkTo(p *model.Player, npc *model.Entity) {
	if npc.Kind != model.KindNPC {
		return
	}
	if npc.Shop > 0 {
		w.shops.open(p, npc.Shop)
		return
	}
	lines := w.npcText[npc.Instance]
	if len(lines) == 0 {
		return
	}
	key := [2]int{p.Instance, npc.Instance}
	i := w.talks[key] % len(lines)
	w.talks[key] = i + 1
	w.Push(protocol.PushPlayer, protocol.Push{
		Target: p.Instance,
		Message: protocol.ChatMessage(protocol.ChatLine{
			ID:         npc.Instance,
			Name:       npc.Name,
			WithBubble: true,
			Text:       lines[i],
			Duration:   w.tun.ChatDurationMs,
		}),
	})
}

// systemItems expires ground items.
func (w *World) systemItems(now time.Time) {
	ttl := time.Duration(w.tun.ItemTTLMs) * time.Millisecond
	if ttl <= 0 {
		return
	}
	var expired []*model.Entity
	for _, e := range w.entities {
		if e.Kind == model.KindItem && now.Sub(e.SpawnedAt) >= ttl {
			expired = append(expired, e)
		}
	}
	sort.Slice(expired, func(i, j int) bool { return expired[i].Instance < expired[j].Instance })
	for _, e := range expired {
		w.RemoveEntity(e)
	}
}

// systemRespawns brings dead mobs and opened chests back at home.
func (w *World) systemRespawns(now time.Time) {
	ids := make([]int, 0, len(w.homes))
	for id := range w.homes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		h := w.homes[id]
		e := w.entities[id]
		if e == nil || !e.Dead || h.respawnAt.IsZero() || now.Before(h.respawnAt) {
			continue
		}
		h.respawnAt = time.Time{}
		e.Dead = false
		e.HitPoints = e.MaxHitPoints
		e.Combat = model.CombatState{}
		e.Pos = h.pos
		w.index(e)
		w.Push(protocol.PushRegions, protocol.Push{
			RegionID: e.Region,
			Message:  protocol.Spawn(e.State()),
		})
	}
}
