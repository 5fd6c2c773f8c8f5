// Package combat arbitrates who may fight whom before the simulation takes
// over.
package combat

import (
	"fmt"

	"realmgate.io/internal/protocol"
	"realmgate.io/internal/sim/model"
	"realmgate.io/internal/sim/session"
)

type Env interface {
	EntityByInstance(id int) *model.Entity
	Push(scope protocol.PushScope, push protocol.Push)

	// ForceAttack makes e hit its current target immediately and starts its
	// combat loop.
	ForceAttack(e *model.Entity)
	// Attack runs one round of e's already started combat loop against target.
	Attack(e, target *model.Entity)
	StopCombat(e *model.Entity)
	Damage(attacker int, target *model.Entity, amount int)
	// Engage wakes a mob and sets it on attacker.
	Engage(mob *model.Entity, attacker int)
	RemoveEntity(e *model.Entity)

	OpenChest(p *model.Player, chest *model.Entity)
	TalkTo(p *model.Player, npc *model.Entity)
}

// CanAttack allows any fight involving a mob. Players may only fight players
// when both have PvP enabled.
func CanAttack(attacker, target *model.Entity) bool {
	if attacker.Kind == model.KindMob || target.Kind == model.KindMob {
		return true
	}
	return attacker.Kind == model.KindPlayer && target.Kind == model.KindPlayer && attacker.PvP && target.PvP
}

func Handle(env Env, s *session.Context, cmd protocol.Command) session.Verdict {
	switch c := cmd.(type) {
	case protocol.Target:
		return HandleTarget(env, s, c)
	case protocol.CombatInitiate:
		return HandleInitiate(env, s, c)
	case protocol.ProjectileImpact:
		return HandleImpact(env, s, c)
	}
	return session.Reject(protocol.ErrBadRequest, fmt.Sprintf("not a combat command: %T", cmd))
}

func HandleTarget(env Env, s *session.Context, c protocol.Target) session.Verdict {
	p := s.Player
	switch c.Action {
	case protocol.TargetTalk:
		e := env.EntityByInstance(c.Instance)
		if e == nil {
			return session.Reject(protocol.ErrStale, "")
		}
		if !p.Pos.Adjacent(e.Pos) {
			return session.Reject(protocol.ErrNotAllowed, "not adjacent")
		}
		if e.Kind == model.KindChest {
			env.OpenChest(p, e)
			return session.Accept()
		}
		if e.Dead {
			return session.Reject(protocol.ErrStale, "dead")
		}
		env.TalkTo(p, e)
		return session.Accept()

	case protocol.TargetAttack:
		target := env.EntityByInstance(c.Instance)
		if target == nil || target.Dead {
			return session.Reject(protocol.ErrStale, "")
		}
		if !CanAttack(&p.Entity, target) {
			return session.Reject(protocol.ErrNotAllowed, fmt.Sprintf("cannot attack %s %d", target.Kind, target.Instance))
		}
		env.Push(protocol.PushRegions, protocol.Push{
			RegionID: target.Region,
			Message:  protocol.CombatStart(p.Instance, target.Instance),
		})
		return session.Accept()

	case protocol.TargetNone:
		env.StopCombat(&p.Entity)
		p.Combat.Target = 0
		return session.Accept()
	}
	return session.Reject(protocol.ErrBadRequest, fmt.Sprintf("target action %d", c.Action))
}

// HandleInitiate requires the sender to be one of the two parties.
func HandleInitiate(env Env, s *session.Context, c protocol.CombatInitiate) session.Verdict {
	attacker := env.EntityByInstance(c.Attacker)
	target := env.EntityByInstance(c.Target)
	if attacker == nil || target == nil || attacker.Dead || target.Dead {
		return session.Reject(protocol.ErrStale, "")
	}
	// Stricter than symmetric resolution: a client may only start its own fights.
	if me := s.Instance(); attacker.Instance != me && target.Instance != me {
		return session.Reject(protocol.ErrNotAllowed, "initiate between third parties")
	}
	if !CanAttack(attacker, target) {
		return session.Reject(protocol.ErrNotAllowed, fmt.Sprintf("%s %d cannot attack %s %d",
			attacker.Kind, attacker.Instance, target.Kind, target.Instance))
	}

	attacker.Combat.Target = target.Instance
	if !attacker.Combat.Started {
		env.ForceAttack(attacker)
	} else {
		env.Attack(attacker, target)
	}
	target.Combat.AddAttacker(attacker.Instance)
	return session.Accept()
}

func HandleImpact(env Env, s *session.Context, c protocol.ProjectileImpact) session.Verdict {
	projectile := env.EntityByInstance(c.Projectile)
	target := env.EntityByInstance(c.Target)
	if projectile == nil || projectile.Kind != model.KindProjectile || target == nil || target.Dead {
		return session.Reject(protocol.ErrStale, "")
	}

	env.Damage(projectile.Owner, target, projectile.Damage)
	env.RemoveEntity(projectile)

	if target.Kind != model.KindMob || target.Combat.Started || target.Dead {
		return session.Accept()
	}
	env.Engage(target, projectile.Owner)
	return session.Accept()
}
