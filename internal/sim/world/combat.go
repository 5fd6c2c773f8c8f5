package world

import (
	"sort"
	"time"

	"realmgate.io/internal/protocol"
	"realmgate.io/internal/sim/model"
)

const (
	attackCooldown = time.Second
	rangedReach    = 6
	// leash is how far a mob follows its target from home.
	leash = 8
)

// ForceAttack starts e's combat loop and hits its target right away.
func (w *World) ForceAttack(e *model.Entity) {
	target := w.entities[e.Combat.Target]
	if target == nil || target.Dead || e.Dead {
		w.StopCombat(e)
		return
	}
	e.Combat.Started = true
	w.Attack(e, target)
}

// Attack runs one round: a melee hit when adjacent, or a projectile when a
// player with arrows stands within reach.
func (w *World) Attack(e, target *model.Entity) {
	if e.Dead || target.Dead {
		return
	}
	now := w.now()
	if last, ok := w.lastHit[e.Instance]; ok && now.Sub(last) < attackCooldown {
		return
	}

	switch {
	case e.Pos.Adjacent(target.Pos):
		w.lastHit[e.Instance] = now
		dmg := w.damageOf(e)
		w.Push(protocol.PushRegions, protocol.Push{
			RegionID: target.Region,
			Message:  protocol.CombatHit(e.Instance, target.Instance, dmg),
		})
		w.Damage(e.Instance, target, dmg)

	case e.Kind == model.KindPlayer && e.Pos.Manhattan(target.Pos) <= rangedReach:
		p := w.players[e.Instance]
		if p == nil || !w.takeArrow(p) {
			return
		}
		w.lastHit[e.Instance] = now
		proj := w.SpawnProjectile(e, w.damageOf(e))
		w.Push(protocol.PushRegions, protocol.Push{
			RegionID: target.Region,
			Message:  protocol.ProjectileCreate(proj.State(), target.Instance),
		})
		return

	default:
		return
	}

	if target.Kind == model.KindMob && !target.Dead && !target.Combat.Started {
		w.Engage(target, e.Instance)
	}
}

func (w *World) takeArrow(p *model.Player) bool {
	id, ok := w.cats.Items.ByKey["arrow"]
	if !ok {
		return false
	}
	for _, sl := range p.Inventory.Slots() {
		if sl.ItemID == id && p.Inventory.Remove(id, 1, sl.Index) {
			return true
		}
	}
	return false
}

// damageOf is the flat damage per hit. Players hit harder with a weapon and
// its enchantment level.
func (w *World) damageOf(e *model.Entity) int {
	if e.Kind != model.KindPlayer {
		return max(e.Damage, 1)
	}
	p := w.players[e.Instance]
	if p == nil {
		return 1
	}
	weapon := p.Equipment[protocol.EquipWeapon]
	if weapon.IsEmpty(protocol.EquipWeapon) {
		return 1
	}
	return 3 + max(weapon.AbilityLevel, 0)
}

func (w *World) Damage(attacker int, target *model.Entity, amount int) {
	if target == nil || target.Dead || amount <= 0 {
		return
	}
	switch target.Kind {
	case model.KindPlayer, model.KindMob:
	default:
		return
	}
	target.HitPoints = max(target.HitPoints-amount, 0)
	target.Combat.AddAttacker(attacker)
	if p := w.players[target.Instance]; p != nil {
		w.Send(p, protocol.Points(p.Instance, p.HitPoints, p.MaxHitPoints))
	}
	if target.HitPoints == 0 {
		w.kill(target)
	}
}

func (w *World) Engage(mob *model.Entity, attacker int) {
	if mob.Dead || w.entities[attacker] == nil {
		return
	}
	mob.Combat.Target = attacker
	mob.Combat.AddAttacker(attacker)
	w.ForceAttack(mob)
}

func (w *World) StopCombat(e *model.Entity) {
	e.Combat.Started = false
	e.Combat.Target = 0
	delete(w.lastHit, e.Instance)
}

func (w *World) kill(e *model.Entity) {
	e.Dead = true
	w.StopCombat(e)
	e.Combat.Attackers = nil
	for _, other := range w.entities {
		if other.Combat.Target == e.Instance {
			w.StopCombat(other)
		}
	}
	w.Push(protocol.PushRegions, protocol.Push{
		RegionID: e.Region,
		Message:  protocol.Despawn(e.Instance),
		IgnoreID: e.Instance,
	})
	if h := w.homes[e.Instance]; h != nil {
		h.respawnAt = w.now().Add(mobRespawnDelay)
	}
}

// systemCombat advances every started combat loop by at most one round.
func (w *World) systemCombat(now time.Time) {
	ids := make([]int, 0)
	for id, e := range w.entities {
		if e.Combat.Started {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	for _, id := range ids {
		e := w.entities[id]
		if e == nil || !e.Combat.Started {
			continue
		}
		target := w.entities[e.Combat.Target]
		if target == nil || target.Dead || e.Dead {
			w.StopCombat(e)
			continue
		}
		if e.Kind == model.KindMob && !e.Pos.Adjacent(target.Pos) {
			w.chase(e, target)
			continue
		}
		w.Attack(e, target)
	}
}

// chase moves a mob one tile towards its target, or sends it home when the
// target has left the leash.
func (w *World) chase(mob, target *model.Entity) {
	h := w.homes[mob.Instance]
	if h != nil && h.pos.Manhattan(target.Pos) > leash {
		w.StopCombat(mob)
		w.MoveEntity(mob, h.pos)
		return
	}
	next := mob.Pos
	switch {
	case target.Pos.X > mob.Pos.X+1:
		next.X++
	case target.Pos.X < mob.Pos.X-1:
		next.X--
	case target.Pos.Y > mob.Pos.Y+1:
		next.Y++
	case target.Pos.Y < mob.Pos.Y-1:
		next.Y--
	}
	if next == mob.Pos || w.Colliding(next.X, next.Y) {
		return
	}
	w.MoveEntity(mob, next)
}
