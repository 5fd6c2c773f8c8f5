package combat

import (
	"testing"
	"time"

	"realmgate.io/internal/protocol"
	"realmgate.io/internal/sim/model"
	"realmgate.io/internal/sim/session"
	"realmgate.io/internal/sim/slots"
)

type stubCombatEnv struct {
	entities map[int]*model.Entity
	pushes   []protocol.Push
	forced   []int
	rounds   []int
	stopped  []int
	damage   map[int]int
	removed  []int
	engaged  map[int]int
	chests   []int
	talks    []int
}

func newStubCombatEnv() *stubCombatEnv {
	return &stubCombatEnv{
		entities: map[int]*model.Entity{},
		damage:   map[int]int{},
		engaged:  map[int]int{},
	}
}

func (s *stubCombatEnv) EntityByInstance(id int) *model.Entity { return s.entities[id] }
func (s *stubCombatEnv) Push(_ protocol.PushScope, p protocol.Push) {
	s.pushes = append(s.pushes, p)
}
func (s *stubCombatEnv) ForceAttack(e *model.Entity) {
	e.Combat.Started = true
	s.forced = append(s.forced, e.Instance)
}
func (s *stubCombatEnv) Attack(e, _ *model.Entity) { s.rounds = append(s.rounds, e.Instance) }
func (s *stubCombatEnv) StopCombat(e *model.Entity) {
	e.Combat.Started = false
	s.stopped = append(s.stopped, e.Instance)
}
func (s *stubCombatEnv) Damage(_ int, target *model.Entity, amount int) {
	s.damage[target.Instance] += amount
}
func (s *stubCombatEnv) Engage(mob *model.Entity, attacker int) { s.engaged[mob.Instance] = attacker }
func (s *stubCombatEnv) RemoveEntity(e *model.Entity)          { s.removed = append(s.removed, e.Instance) }
func (s *stubCombatEnv) OpenChest(_ *model.Player, c *model.Entity) {
	s.chests = append(s.chests, c.Instance)
}
func (s *stubCombatEnv) TalkTo(_ *model.Player, n *model.Entity) { s.talks = append(s.talks, n.Instance) }

func (s *stubCombatEnv) add(e *model.Entity) *model.Entity {
	s.entities[e.Instance] = e
	return e
}

func newFighter(env *stubCombatEnv, instance int, pvp bool) *session.Context {
	rules := slots.RulesFunc(func(int) int { return 1 })
	p := model.NewPlayer(instance, "p", slots.NewStore(1, rules), slots.NewStore(1, rules))
	p.PvP = pvp
	p.Region = "0:0"
	env.entities[instance] = &p.Entity
	s := session.New(nil, time.Unix(0, 0))
	s.Player = p
	return s
}

func TestCanAttack_Table(t *testing.T) {
	mob := &model.Entity{Kind: model.KindMob}
	npc := &model.Entity{Kind: model.KindNPC}
	pvpA := &model.Entity{Kind: model.KindPlayer, PvP: true}
	pvpB := &model.Entity{Kind: model.KindPlayer, PvP: true}
	peaceful := &model.Entity{Kind: model.KindPlayer}

	cases := []struct {
		name     string
		a, b     *model.Entity
		expected bool
	}{
		{"mob-player", mob, peaceful, true},
		{"player-mob", peaceful, mob, true},
		{"mob-npc", mob, npc, true},
		{"npc-mob", npc, mob, true},
		{"pvp-pvp", pvpA, pvpB, true},
		{"pvp-peaceful", pvpA, peaceful, false},
		{"peaceful-pvp", peaceful, pvpA, false},
		{"player-npc", pvpA, npc, false},
	}
	for _, tc := range cases {
		if got := CanAttack(tc.a, tc.b); got != tc.expected {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.expected)
		}
	}
}

func TestTargetAttack_PushesToTargetRegion(t *testing.T) {
	env := newStubCombatEnv()
	s := newFighter(env, 1, false)
	env.add(&model.Entity{Instance: 5, Kind: model.KindMob, Region: "3:4"})

	v := HandleTarget(env, s, protocol.Target{Action: protocol.TargetAttack, Instance: 5})
	if !v.Accepted {
		t.Fatalf("verdict %+v", v)
	}
	if len(env.pushes) != 1 || env.pushes[0].RegionID != "3:4" {
		t.Fatalf("expected push to target region, got %+v", env.pushes)
	}
}

func TestTargetAttack_RejectsPeacefulPlayer(t *testing.T) {
	env := newStubCombatEnv()
	s := newFighter(env, 1, true)
	newFighter(env, 2, false)
	v := HandleTarget(env, s, protocol.Target{Action: protocol.TargetAttack, Instance: 2})
	if v.Accepted || len(env.pushes) != 0 {
		t.Fatalf("expected silent rejection, verdict=%+v pushes=%d", v, len(env.pushes))
	}
}

func TestTargetTalk(t *testing.T) {
	env := newStubCombatEnv()
	s := newFighter(env, 1, false)
	s.Player.Pos = model.Pos{X: 10, Y: 10}
	env.add(&model.Entity{Instance: 7, Kind: model.KindChest, Pos: model.Pos{X: 11, Y: 10}})
	env.add(&model.Entity{Instance: 8, Kind: model.KindNPC, Pos: model.Pos{X: 10, Y: 11}})
	env.add(&model.Entity{Instance: 9, Kind: model.KindNPC, Pos: model.Pos{X: 15, Y: 15}})

	HandleTarget(env, s, protocol.Target{Action: protocol.TargetTalk, Instance: 7})
	HandleTarget(env, s, protocol.Target{Action: protocol.TargetTalk, Instance: 8})
	HandleTarget(env, s, protocol.Target{Action: protocol.TargetTalk, Instance: 9})
	if len(env.chests) != 1 || len(env.talks) != 1 || env.talks[0] != 8 {
		t.Fatalf("chests=%v talks=%v", env.chests, env.talks)
	}
}

func TestTargetNone_ClearsTarget(t *testing.T) {
	env := newStubCombatEnv()
	s := newFighter(env, 1, false)
	s.Player.Combat.Target = 5
	s.Player.Combat.Started = true
	HandleTarget(env, s, protocol.Target{Action: protocol.TargetNone})
	if s.Player.HasTarget() || s.Player.Combat.Started {
		t.Fatalf("combat not stopped: %+v", s.Player.Combat)
	}
}

func TestInitiate_StartsAndRegistersAttacker(t *testing.T) {
	env := newStubCombatEnv()
	s := newFighter(env, 1, false)
	mob := env.add(&model.Entity{Instance: 5, Kind: model.KindMob})

	v := HandleInitiate(env, s, protocol.CombatInitiate{Attacker: 1, Target: 5})
	if !v.Accepted {
		t.Fatalf("verdict %+v", v)
	}
	if s.Player.Combat.Target != 5 || len(env.forced) != 1 {
		t.Fatalf("expected forced attack, target=%d forced=%v", s.Player.Combat.Target, env.forced)
	}
	if !mob.Combat.Attackers[1] {
		t.Fatalf("attacker not registered on target")
	}

	// A started loop continues instead of forcing.
	HandleInitiate(env, s, protocol.CombatInitiate{Attacker: 1, Target: 5})
	if len(env.forced) != 1 || len(env.rounds) != 1 {
		t.Fatalf("forced=%v rounds=%v", env.forced, env.rounds)
	}
}

func TestInitiate_RejectsDeadOrThirdParty(t *testing.T) {
	env := newStubCombatEnv()
	s := newFighter(env, 1, false)
	env.add(&model.Entity{Instance: 5, Kind: model.KindMob, Dead: true})
	env.add(&model.Entity{Instance: 6, Kind: model.KindMob})
	env.add(&model.Entity{Instance: 7, Kind: model.KindMob})

	if v := HandleInitiate(env, s, protocol.CombatInitiate{Attacker: 1, Target: 5}); v.Accepted {
		t.Fatalf("dead target accepted")
	}
	if v := HandleInitiate(env, s, protocol.CombatInitiate{Attacker: 6, Target: 7}); v.Accepted {
		t.Fatalf("third-party initiate accepted")
	}
	if len(env.forced) != 0 {
		t.Fatalf("no combat should start")
	}
}

func TestImpact_DamagesRemovesAndWakesMob(t *testing.T) {
	env := newStubCombatEnv()
	s := newFighter(env, 1, false)
	env.add(&model.Entity{Instance: 20, Kind: model.KindProjectile, Owner: 1, Damage: 7})
	env.add(&model.Entity{Instance: 5, Kind: model.KindMob})

	HandleImpact(env, s, protocol.ProjectileImpact{Projectile: 20, Target: 5})
	if env.damage[5] != 7 {
		t.Fatalf("damage=%d", env.damage[5])
	}
	if len(env.removed) != 1 || env.removed[0] != 20 {
		t.Fatalf("projectile not removed: %v", env.removed)
	}
	if env.engaged[5] != 1 {
		t.Fatalf("mob not woken against owner: %v", env.engaged)
	}
}

func TestImpact_MissingTargetIsNoop(t *testing.T) {
	env := newStubCombatEnv()
	s := newFighter(env, 1, false)
	env.add(&model.Entity{Instance: 20, Kind: model.KindProjectile, Owner: 1, Damage: 7})
	v := HandleImpact(env, s, protocol.ProjectileImpact{Projectile: 20, Target: 99})
	if v.Accepted || len(env.damage) != 0 || len(env.removed) != 0 {
		t.Fatalf("expected no-op, verdict=%+v", v)
	}
}
