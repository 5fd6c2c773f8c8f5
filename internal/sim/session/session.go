// Package session holds per-connection state for a bound player.
package session

import (
	"time"

	"github.com/google/uuid"

	"realmgate.io/internal/protocol"
	"realmgate.io/internal/sim/model"
)

type MovementState int

const (
	Idle MovementState = iota
	Requesting
	Moving
)

func (m MovementState) String() string {
	switch m {
	case Idle:
		return "idle"
	case Requesting:
		return "requesting"
	case Moving:
		return "moving"
	}
	return "unknown"
}

// Conn is the outbound half of a client connection. Send must not block.
type Conn interface {
	Send(msg protocol.Message) bool
	Close(reason string)
}

type ShopSelection struct {
	ShopID    int
	SlotIndex int
}

type Context struct {
	ID     string
	Player *model.Player
	Conn   Conn

	// CheatScore only ever grows; see Apply.
	CheatScore int
	// Flagged is set once CheatScore has crossed the moderation threshold.
	Flagged bool

	Movement      MovementState
	MovementStart time.Time
	// MovementOrigin is the authoritative position when movement was requested.
	MovementOrigin model.Pos
	// Predicted is the tile the last accepted Request is heading for.
	Predicted model.Pos

	LastCommandAt time.Time
	Introduced    bool
	Selection     *ShopSelection
}

func New(conn Conn, now time.Time) *Context {
	return &Context{
		ID:            uuid.NewString(),
		Conn:          conn,
		LastCommandAt: now,
	}
}

// Touch records activity for idle detection.
func (c *Context) Touch(now time.Time) {
	c.LastCommandAt = now
}

func (c *Context) IdleFor(now time.Time) time.Duration {
	return now.Sub(c.LastCommandAt)
}

// Apply folds a verdict's suspicion into the cheat score and returns the new
// score. Negative deltas are ignored.
func (c *Context) Apply(v Verdict) int {
	if v.Suspicion > 0 {
		c.CheatScore += v.Suspicion
	}
	return c.CheatScore
}

// Send is a convenience for handlers; it is a no-op for detached sessions.
func (c *Context) Send(msg protocol.Message) {
	if c.Conn != nil {
		c.Conn.Send(msg)
	}
}

func (c *Context) Instance() int {
	if c.Player == nil {
		return 0
	}
	return c.Player.Instance
}
