package router

import (
	"fmt"
	"testing"
	"time"

	"realmgate.io/internal/protocol"
	"realmgate.io/internal/sim/model"
	"realmgate.io/internal/sim/session"
	"realmgate.io/internal/sim/slots"
)

type audited struct {
	op protocol.Opcode
	v  session.Verdict
}

// stubRouterEnv implements only what the commands below reach; anything else
// panics through the nil embedded Env.
type stubRouterEnv struct {
	Env
	now    time.Time
	audits []audited
	logs   []string
}

func (e *stubRouterEnv) Now() time.Time { return e.now }
func (e *stubRouterEnv) Logf(format string, args ...any) {
	e.logs = append(e.logs, fmt.Sprintf(format, args...))
}
func (e *stubRouterEnv) Audit(_ *session.Context, op protocol.Opcode, v session.Verdict) {
	e.audits = append(e.audits, audited{op, v})
}
func (e *stubRouterEnv) EntityByInstance(int) *model.Entity      { return nil }
func (e *stubRouterEnv) Door(int, int) (model.Pos, bool)         { return model.Pos{}, false }
func (e *stubRouterEnv) SetPosition(p *model.Player, to model.Pos) { p.SetPosition(to) }
func (e *stubRouterEnv) SetOrientation(p *model.Player, o protocol.Orientation) {
	p.Orientation = o
}

func newSession(withPlayer bool) *session.Context {
	s := session.New(nil, time.Unix(0, 0))
	if withPlayer {
		rules := slots.RulesFunc(func(int) int { return 1 })
		s.Player = model.NewPlayer(1, "alice", slots.NewStore(1, rules), slots.NewStore(1, rules))
		s.Player.MovementSpeed = 250
	}
	return s
}

func TestDispatch_UnknownOpcodeDoesNotTouch(t *testing.T) {
	env := &stubRouterEnv{now: time.Unix(100, 0)}
	r := New(env)
	s := newSession(true)

	v := r.Dispatch(s, protocol.Unknown{Op: 99})
	if v.Accepted || v.Code != protocol.ErrUnknownOpcode {
		t.Fatalf("verdict %+v", v)
	}
	if !s.LastCommandAt.Equal(time.Unix(0, 0)) {
		t.Fatalf("unknown opcode refreshed the idle timer")
	}
	if len(env.logs) != 1 || len(env.audits) != 1 {
		t.Fatalf("logs=%v audits=%v", env.logs, env.audits)
	}
}

func TestDispatch_MalformedTouchesButSkipsHandler(t *testing.T) {
	env := &stubRouterEnv{now: time.Unix(100, 0)}
	r := New(env)
	s := newSession(true)

	v := r.Dispatch(s, protocol.Malformed{Op: protocol.OpMovement, Reason: "bad x"})
	if v.Code != protocol.ErrMalformed || s.CheatScore != 0 {
		t.Fatalf("verdict=%+v score=%d", v, s.CheatScore)
	}
	if !s.LastCommandAt.Equal(env.now) {
		t.Fatalf("recognised opcode should refresh the idle timer")
	}
	if len(env.audits) != 1 || env.audits[0].op != protocol.OpMovement {
		t.Fatalf("audits=%v", env.audits)
	}
}

func TestDispatch_RequiresLogin(t *testing.T) {
	env := &stubRouterEnv{now: time.Unix(100, 0)}
	r := New(env)
	s := newSession(false)

	v := r.Dispatch(s, protocol.Freeze{Frozen: true})
	if v.Accepted || v.Code != protocol.ErrInvalidState {
		t.Fatalf("verdict %+v", v)
	}
}

func TestDispatch_AppliesSuspicionAndAudits(t *testing.T) {
	env := &stubRouterEnv{now: time.Unix(100, 0)}
	r := New(env)
	s := newSession(true)
	s.Player.Pos = model.Pos{X: 10, Y: 10}

	v := r.Dispatch(s, protocol.MoveStop{X: 11, Y: 10, Orientation: protocol.OrientationRight})
	if !v.Accepted || v.Suspicion != 1 || s.CheatScore != 1 {
		t.Fatalf("verdict=%+v score=%d", v, s.CheatScore)
	}
	if s.Player.Pos != (model.Pos{X: 11, Y: 10}) {
		t.Fatalf("stop not applied: %+v", s.Player.Pos)
	}
	if len(env.audits) != 1 || env.audits[0].v.Code != protocol.ErrStopIdle {
		t.Fatalf("audits=%v", env.audits)
	}

	// A quiet, accepted command is not audited.
	r.Dispatch(s, protocol.Freeze{Frozen: true})
	if len(env.audits) != 1 || !s.Player.Frozen {
		t.Fatalf("audits=%d frozen=%v", len(env.audits), s.Player.Frozen)
	}
}

func TestHandlersCoverEveryDecodedOpcode(t *testing.T) {
	r := New(&stubRouterEnv{})
	for _, op := range []protocol.Opcode{
		protocol.OpIntro, protocol.OpReady, protocol.OpWho, protocol.OpEquipment,
		protocol.OpMovement, protocol.OpRequest, protocol.OpTarget, protocol.OpCombat,
		protocol.OpProjectile, protocol.OpNetwork, protocol.OpChat, protocol.OpInventory,
		protocol.OpBank, protocol.OpRespawn, protocol.OpTrade, protocol.OpEnchant,
		protocol.OpClick, protocol.OpWarp, protocol.OpShop, protocol.OpRegion, protocol.OpCamera,
	} {
		if !r.Handles(op) {
			t.Fatalf("no handler for %s", op)
		}
	}
	if r.Handles(protocol.OpWelcome) {
		t.Fatalf("server-only opcode has a handler")
	}
}
