// Package model holds the world-owned entity state that command handlers
// read and mutate through the world.
package model

import (
	"time"

	"realmgate.io/internal/protocol"
)

type Pos struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// NoPos marks an unset position (for example, no previous tile yet).
var NoPos = Pos{X: -1, Y: -1}

func (p Pos) Valid() bool { return p.X >= 0 && p.Y >= 0 }

func (p Pos) Manhattan(o Pos) int {
	return abs(p.X-o.X) + abs(p.Y-o.Y)
}

// Adjacent reports whether o is within one tile of p, diagonals included.
func (p Pos) Adjacent(o Pos) bool {
	return abs(p.X-o.X) <= 1 && abs(p.Y-o.Y) <= 1
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

type Kind int

const (
	KindPlayer Kind = iota
	KindMob
	KindNPC
	KindItem
	KindChest
	KindProjectile
)

var kindNames = [...]string{"player", "mob", "npc", "item", "chest", "projectile"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

type CombatState struct {
	Started bool
	Target  int
	// Attackers is the set of instances that have engaged this entity.
	Attackers map[int]bool
}

func (c *CombatState) AddAttacker(instance int) {
	if c.Attackers == nil {
		c.Attackers = map[int]bool{}
	}
	c.Attackers[instance] = true
}

type Entity struct {
	Instance    int
	Kind        Kind
	Key         string
	Name        string
	Pos         Pos
	Orientation protocol.Orientation
	Region      string

	HitPoints    int
	MaxHitPoints int
	Dead         bool
	PvP          bool
	Combat       CombatState

	// Items on the ground.
	ItemID       int
	Count        int
	Ability      int
	AbilityLevel int
	SpawnedAt    time.Time

	// Projectiles.
	Owner  int
	Damage int

	// NPCs and chests.
	Shop int
	Loot []int
}

func (e *Entity) HasTarget() bool { return e.Combat.Target != 0 }

func (e *Entity) State() protocol.EntityState {
	return protocol.EntityState{
		Instance:     e.Instance,
		Kind:         e.Kind.String(),
		Key:          e.Key,
		Name:         e.Name,
		X:            e.Pos.X,
		Y:            e.Pos.Y,
		Orientation:  int(e.Orientation),
		HitPoints:    e.HitPoints,
		MaxHitPoints: e.MaxHitPoints,
		Count:        e.Count,
		Ability:      e.Ability,
		AbilityLevel: e.AbilityLevel,
	}
}
