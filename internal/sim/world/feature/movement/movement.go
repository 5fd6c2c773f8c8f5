// Package movement validates client movement against authoritative state and
// reports suspicious timing or collisions as verdicts.
package movement

import (
	"fmt"
	"time"

	"realmgate.io/internal/protocol"
	"realmgate.io/internal/sim/model"
	"realmgate.io/internal/sim/session"
)

const NoClipNotice = "We have detected no-clipping in your client. Please submit a bug report."

type Env interface {
	Now() time.Time
	Colliding(x, y int) bool
	Door(x, y int) (model.Pos, bool)
	EntityByInstance(id int) *model.Entity

	SetPosition(p *model.Player, to model.Pos)
	SetOrientation(p *model.Player, o protocol.Orientation)
	Teleport(p *model.Player, to model.Pos, withAnimation, refreshInstance bool)
	StopMovement(p *model.Player)
	MoveEntity(e *model.Entity, to model.Pos)
	ForceAttack(e *model.Entity)
	Collect(p *model.Player, item *model.Entity) bool

	Notify(p *model.Player, text string)
	Push(scope protocol.PushScope, push protocol.Push)
	Logf(format string, args ...any)
}

// Handle runs one movement sub-command. Every sub-command from a dead player
// is ignored.
func Handle(env Env, s *session.Context, cmd protocol.Command) session.Verdict {
	p := s.Player
	if p == nil || p.Dead {
		return session.Reject(protocol.ErrInvalidState, "dead or detached")
	}
	switch c := cmd.(type) {
	case protocol.MoveRequest:
		return Request(env, s, c)
	case protocol.MoveStarted:
		return Started(env, s, c)
	case protocol.MoveStep:
		return Step(env, s, c)
	case protocol.MoveStop:
		return Stop(env, s, c)
	case protocol.MoveEntity:
		return Entity(env, s, c)
	case protocol.Orientate:
		return Orientate(env, s, c)
	case protocol.Freeze:
		p.Frozen = c.Frozen
		return session.Accept()
	case protocol.Zone:
		env.Logf("player %s zoned direction=%d", p.Username, c.Direction)
		return session.Accept()
	}
	return session.Reject(protocol.ErrBadRequest, fmt.Sprintf("not a movement command: %T", cmd))
}

// Request records the start of a movement and speculatively accepts the
// requested tile. The start time is recorded even when the tile is rejected.
func Request(env Env, s *session.Context, c protocol.MoveRequest) session.Verdict {
	p := s.Player
	s.MovementStart = env.Now()
	if p.Frozen {
		return session.Reject(protocol.ErrInvalidState, "frozen")
	}
	if !PreventNoClip(env, p, c.RequestX, c.RequestY) {
		s.Movement = session.Idle
		return session.Reject(protocol.ErrNoClip, fmt.Sprintf("request into %d,%d", c.RequestX, c.RequestY))
	}
	s.Predicted = model.Pos{X: c.RequestX, Y: c.RequestY}
	s.MovementOrigin = p.Pos
	s.Movement = session.Requesting
	return session.Accept()
}

// Started accrues suspicion for a missing or wrong speed but does not reject
// on it alone.
func Started(env Env, s *session.Context, c protocol.MoveStarted) session.Verdict {
	p := s.Player
	v := session.Accept()
	if !c.HasSpeed || c.Speed == 0 || c.Speed != p.MovementSpeed {
		v = session.Suspect(1, protocol.ErrSpeed, fmt.Sprintf("reported speed %d, expected %d", c.Speed, p.MovementSpeed))
	}

	switch {
	case c.ReportedX != p.Pos.X || c.ReportedY != p.Pos.Y:
		return v.With(session.Reject(protocol.ErrInvalidState,
			fmt.Sprintf("reported %d,%d but server has %d,%d", c.ReportedX, c.ReportedY, p.Pos.X, p.Pos.Y)))
	case p.Stunned:
		return v.With(session.Reject(protocol.ErrInvalidState, "stunned"))
	case p.Frozen:
		return v.With(session.Reject(protocol.ErrInvalidState, "frozen"))
	case !PreventNoClip(env, p, c.SelectedX, c.SelectedY):
		s.Movement = session.Idle
		return v.With(session.Reject(protocol.ErrNoClip, fmt.Sprintf("start towards %d,%d", c.SelectedX, c.SelectedY)))
	}

	if s.Movement != session.Requesting {
		s.MovementOrigin = p.Pos
	}
	s.Movement = session.Moving
	return v
}

// Step is a trusted incremental update; it is only collision checked.
func Step(env Env, s *session.Context, c protocol.MoveStep) session.Verdict {
	p := s.Player
	if p.Stunned {
		return session.Reject(protocol.ErrInvalidState, "stunned")
	}
	if !PreventNoClip(env, p, c.X, c.Y) {
		s.Movement = session.Idle
		return session.Reject(protocol.ErrNoClip, fmt.Sprintf("step into %d,%d", c.X, c.Y))
	}
	env.SetPosition(p, model.Pos{X: c.X, Y: c.Y})
	return session.Accept()
}

// Stop ends a movement. A Stop without a prior Started is flagged but still
// applied. Doors override the reported position unless the player holds a
// target. The travel time is checked against the state before the stop is
// applied, since a door teleport resets it.
func Stop(env Env, s *session.Context, c protocol.MoveStop) session.Verdict {
	p := s.Player
	v := session.Accept()
	wasIdle := s.Movement == session.Idle
	if s.Movement != session.Moving {
		v = session.Suspect(1, protocol.ErrStopIdle, "stop without start")
	}

	if c.Target != 0 {
		if e := env.EntityByInstance(c.Target); e != nil && e.Kind == model.KindItem {
			env.Collect(p, e)
		}
	}

	stop := model.Pos{X: c.X, Y: c.Y}
	if dest, ok := env.Door(c.X, c.Y); ok && !c.HasTarget {
		env.Teleport(p, dest, true, false)
	} else {
		env.SetPosition(p, stop)
		env.SetOrientation(p, c.Orientation)
	}

	if !wasIdle {
		elapsed := env.Now().Sub(s.MovementStart)
		if need := MinTravelTime(s.MovementOrigin, stop, p.MovementSpeed); elapsed < need {
			v = v.With(session.Suspect(1, protocol.ErrTooFast, fmt.Sprintf("moved %d tiles in %s, need %s",
				s.MovementOrigin.Manhattan(stop), elapsed, need)))
		}
	}
	s.Movement = session.Idle
	return v
}

// Entity applies a position update for a non-player entity. No collision
// check is made.
func Entity(env Env, s *session.Context, c protocol.MoveEntity) session.Verdict {
	e := env.EntityByInstance(c.Instance)
	if e == nil {
		return session.Reject(protocol.ErrStale, "")
	}
	if e.Kind == model.KindPlayer {
		return session.Reject(protocol.ErrNotAllowed, "entity update for a player")
	}
	to := model.Pos{X: c.X, Y: c.Y}
	if e.Pos == to {
		return session.Accept()
	}
	env.MoveEntity(e, to)
	if e.HasTarget() {
		env.ForceAttack(e)
	}
	return session.Accept()
}

func Orientate(env Env, s *session.Context, c protocol.Orientate) session.Verdict {
	p := s.Player
	p.Orientation = c.Orientation
	env.Push(protocol.PushRegions, protocol.Push{
		RegionID: p.Region,
		Message:  protocol.Movement(protocol.MovementOrientate, p.Instance, int(c.Orientation)),
	})
	return session.Accept()
}

// MinTravelTime is the least time a player at speed ms/tile needs from
// origin to stop. A zero-distance stop still costs one tile.
func MinTravelTime(origin, stop model.Pos, speedMs int) time.Duration {
	tiles := origin.Manhattan(stop)
	if tiles < 1 {
		tiles = 1
	}
	return time.Duration(tiles*speedMs) * time.Millisecond
}
