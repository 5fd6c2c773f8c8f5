package movement

import (
	"testing"
	"time"

	"realmgate.io/internal/protocol"
	"realmgate.io/internal/sim/model"
	"realmgate.io/internal/sim/session"
	"realmgate.io/internal/sim/slots"
)

type stubMoveEnv struct {
	now       time.Time
	walls     map[model.Pos]bool
	doors     map[model.Pos]model.Pos
	entities  map[int]*model.Entity
	notes     []string
	teleports []model.Pos
	pushes    []protocol.Push
	collected []int
	attacks   []int
	stops     int
}

func newStubMoveEnv() *stubMoveEnv {
	return &stubMoveEnv{
		now:      time.Unix(1000, 0),
		walls:    map[model.Pos]bool{},
		doors:    map[model.Pos]model.Pos{},
		entities: map[int]*model.Entity{},
	}
}

func (s *stubMoveEnv) Now() time.Time                 { return s.now }
func (s *stubMoveEnv) Colliding(x, y int) bool        { return s.walls[model.Pos{X: x, Y: y}] }
func (s *stubMoveEnv) EntityByInstance(id int) *model.Entity { return s.entities[id] }
func (s *stubMoveEnv) Door(x, y int) (model.Pos, bool) {
	d, ok := s.doors[model.Pos{X: x, Y: y}]
	return d, ok
}
func (s *stubMoveEnv) SetPosition(p *model.Player, to model.Pos) { p.SetPosition(to) }
func (s *stubMoveEnv) SetOrientation(p *model.Player, o protocol.Orientation) {
	p.Orientation = o
}
func (s *stubMoveEnv) Teleport(p *model.Player, to model.Pos, _, _ bool) {
	s.teleports = append(s.teleports, to)
	p.SetPosition(to)
}
func (s *stubMoveEnv) StopMovement(*model.Player)               { s.stops++ }
func (s *stubMoveEnv) MoveEntity(e *model.Entity, to model.Pos) { e.Pos = to }
func (s *stubMoveEnv) ForceAttack(e *model.Entity)              { s.attacks = append(s.attacks, e.Instance) }
func (s *stubMoveEnv) Collect(_ *model.Player, item *model.Entity) bool {
	s.collected = append(s.collected, item.Instance)
	return true
}
func (s *stubMoveEnv) Notify(_ *model.Player, text string) { s.notes = append(s.notes, text) }
func (s *stubMoveEnv) Push(_ protocol.PushScope, p protocol.Push) {
	s.pushes = append(s.pushes, p)
}
func (s *stubMoveEnv) Logf(string, ...any) {}

const speed = 250

func newMover(x, y int) *session.Context {
	rules := slots.RulesFunc(func(int) int { return 1 })
	p := model.NewPlayer(1, "alice", slots.NewStore(4, rules), slots.NewStore(4, rules))
	p.Pos = model.Pos{X: x, Y: y}
	p.Spawn = model.Pos{X: 50, Y: 50}
	p.MovementSpeed = speed
	s := session.New(nil, time.Unix(0, 0))
	s.Player = p
	return s
}

func TestMovement_RequestStartedStopScenario(t *testing.T) {
	env := newStubMoveEnv()
	s := newMover(10, 10)

	v := Handle(env, s, protocol.MoveRequest{RequestX: 11, RequestY: 10, ReportedX: 10, ReportedY: 10})
	s.Apply(v)
	if !v.Accepted || s.Movement != session.Requesting {
		t.Fatalf("request: verdict=%+v state=%v", v, s.Movement)
	}
	if s.Predicted != (model.Pos{X: 11, Y: 10}) {
		t.Fatalf("predicted=%v", s.Predicted)
	}

	v = Handle(env, s, protocol.MoveStarted{SelectedX: 11, SelectedY: 10, ReportedX: 10, ReportedY: 10, Speed: speed, HasSpeed: true})
	s.Apply(v)
	if !v.Accepted || s.Movement != session.Moving || s.CheatScore != 0 {
		t.Fatalf("started: verdict=%+v state=%v score=%d", v, s.Movement, s.CheatScore)
	}

	env.now = env.now.Add(300 * time.Millisecond)
	v = Handle(env, s, protocol.MoveStop{X: 11, Y: 10, Orientation: protocol.OrientationRight})
	s.Apply(v)
	if s.Player.Pos != (model.Pos{X: 11, Y: 10}) {
		t.Fatalf("position=%v", s.Player.Pos)
	}
	if s.Movement != session.Idle || s.CheatScore != 0 {
		t.Fatalf("stop: state=%v score=%d verdict=%+v", s.Movement, s.CheatScore, v)
	}
	if s.Player.Orientation != protocol.OrientationRight {
		t.Fatalf("orientation not applied")
	}
}

func TestMovement_StopWhileIdleAddsExactlyOne(t *testing.T) {
	env := newStubMoveEnv()
	s := newMover(10, 10)
	v := Handle(env, s, protocol.MoveStop{X: 12, Y: 10, Orientation: protocol.OrientationLeft})
	s.Apply(v)
	if s.CheatScore != 1 {
		t.Fatalf("score=%d want 1", s.CheatScore)
	}
	if !v.Accepted || v.Code != protocol.ErrStopIdle {
		t.Fatalf("verdict %+v", v)
	}
	if s.Player.Pos != (model.Pos{X: 12, Y: 10}) || s.Player.Orientation != protocol.OrientationLeft {
		t.Fatalf("stop not applied: %v %v", s.Player.Pos, s.Player.Orientation)
	}
}

func TestMovement_StartedWrongSpeedIsSuspiciousNotBlocking(t *testing.T) {
	env := newStubMoveEnv()
	s := newMover(10, 10)
	Handle(env, s, protocol.MoveRequest{RequestX: 11, RequestY: 10, ReportedX: 10, ReportedY: 10})
	for _, c := range []protocol.MoveStarted{
		{SelectedX: 11, SelectedY: 10, ReportedX: 10, ReportedY: 10},
		{SelectedX: 11, SelectedY: 10, ReportedX: 10, ReportedY: 10, Speed: 100, HasSpeed: true},
	} {
		v := Handle(env, s, c)
		if !v.Accepted || v.Suspicion != 1 {
			t.Fatalf("%+v: verdict %+v", c, v)
		}
	}
	if s.Movement != session.Moving {
		t.Fatalf("speed mismatch must not block movement")
	}
}

func TestMovement_StartedPositionMismatchRejected(t *testing.T) {
	env := newStubMoveEnv()
	s := newMover(10, 10)
	v := Handle(env, s, protocol.MoveStarted{SelectedX: 11, SelectedY: 10, ReportedX: 9, ReportedY: 10, Speed: speed, HasSpeed: true})
	if v.Accepted || s.Movement == session.Moving {
		t.Fatalf("expected rejection, got %+v", v)
	}
	s.Player.Stunned = true
	v = Handle(env, s, protocol.MoveStarted{SelectedX: 11, SelectedY: 10, ReportedX: 10, ReportedY: 10, Speed: speed, HasSpeed: true})
	if v.Accepted {
		t.Fatalf("stunned player must not start moving")
	}
}

func TestMovement_StopTooFastFlagged(t *testing.T) {
	env := newStubMoveEnv()
	s := newMover(10, 10)
	Handle(env, s, protocol.MoveRequest{RequestX: 11, RequestY: 10, ReportedX: 10, ReportedY: 10})
	Handle(env, s, protocol.MoveStarted{SelectedX: 11, SelectedY: 10, ReportedX: 10, ReportedY: 10, Speed: speed, HasSpeed: true})
	env.now = env.now.Add(100 * time.Millisecond)
	v := Handle(env, s, protocol.MoveStop{X: 15, Y: 10})
	if v.Suspicion != 1 || v.Code != protocol.ErrTooFast {
		t.Fatalf("expected too-fast verdict, got %+v", v)
	}
}

func TestMovement_StopOnDoorTeleports(t *testing.T) {
	env := newStubMoveEnv()
	env.doors[model.Pos{X: 11, Y: 10}] = model.Pos{X: 70, Y: 70}
	s := newMover(10, 10)
	Handle(env, s, protocol.MoveStop{X: 11, Y: 10})
	if s.Player.Pos != (model.Pos{X: 70, Y: 70}) {
		t.Fatalf("door should override position, got %v", s.Player.Pos)
	}

	// Holding a target ignores the door.
	s2 := newMover(10, 10)
	Handle(env, s2, protocol.MoveStop{X: 11, Y: 10, HasTarget: true})
	if s2.Player.Pos != (model.Pos{X: 11, Y: 10}) {
		t.Fatalf("target holder should stop on the door tile, got %v", s2.Player.Pos)
	}
}

func TestMovement_StopCollectsItem(t *testing.T) {
	env := newStubMoveEnv()
	env.entities[9] = &model.Entity{Instance: 9, Kind: model.KindItem, ItemID: 3, Count: 1}
	env.entities[8] = &model.Entity{Instance: 8, Kind: model.KindMob}
	s := newMover(10, 10)
	Handle(env, s, protocol.MoveStop{X: 10, Y: 10, Target: 9})
	Handle(env, s, protocol.MoveStop{X: 10, Y: 10, Target: 8})
	if len(env.collected) != 1 || env.collected[0] != 9 {
		t.Fatalf("collected=%v", env.collected)
	}
}

func TestPreventNoClip_PositionNeverOnWall(t *testing.T) {
	walls := []model.Pos{{X: 11, Y: 10}, {X: 10, Y: 11}, {X: 0, Y: 0}}
	for _, w := range walls {
		env := newStubMoveEnv()
		env.walls[w] = true
		s := newMover(10, 10)
		s.Player.Previous = model.Pos{X: 9, Y: 10}
		if PreventNoClip(env, s.Player, w.X, w.Y) {
			t.Fatalf("%v: expected rejection", w)
		}
		if s.Player.Pos == w {
			t.Fatalf("%v: player left on colliding tile", w)
		}
		if len(env.notes) != 1 || env.notes[0] != NoClipNotice {
			t.Fatalf("%v: notes=%v", w, env.notes)
		}
	}
}

func TestPreventNoClip_FallbackChain(t *testing.T) {
	env := newStubMoveEnv()
	env.walls[model.Pos{X: 11, Y: 10}] = true
	s := newMover(10, 10)
	s.Player.Previous = model.Pos{X: 9, Y: 10}
	PreventNoClip(env, s.Player, 11, 10)
	if got := env.teleports[0]; got != (model.Pos{X: 9, Y: 10}) {
		t.Fatalf("expected previous position, got %v", got)
	}

	// No previous position: stay where we are.
	env = newStubMoveEnv()
	env.walls[model.Pos{X: 11, Y: 10}] = true
	s = newMover(10, 10)
	PreventNoClip(env, s.Player, 11, 10)
	if got := env.teleports[0]; got != (model.Pos{X: 10, Y: 10}) {
		t.Fatalf("expected current position, got %v", got)
	}

	// Current position is itself inside an instance obstacle: spawn.
	env = newStubMoveEnv()
	env.walls[model.Pos{X: 11, Y: 10}] = true
	s = newMover(10, 10)
	s.Player.Obstacles[model.Pos{X: 10, Y: 10}] = true
	PreventNoClip(env, s.Player, 11, 10)
	if got := env.teleports[0]; got != s.Player.Spawn {
		t.Fatalf("expected spawn, got %v", got)
	}
}

func TestMovement_RequestIntoInstanceObstacle(t *testing.T) {
	env := newStubMoveEnv()
	s := newMover(10, 10)
	s.Player.Obstacles[model.Pos{X: 11, Y: 10}] = true
	v := Handle(env, s, protocol.MoveRequest{RequestX: 11, RequestY: 10, ReportedX: 10, ReportedY: 10})
	if v.Accepted || v.Code != protocol.ErrNoClip {
		t.Fatalf("verdict %+v", v)
	}
	if s.MovementStart != env.now {
		t.Fatalf("movement start must be recorded even on rejection")
	}
}

func TestMovement_DeadPlayerIgnored(t *testing.T) {
	env := newStubMoveEnv()
	s := newMover(10, 10)
	s.Player.Dead = true
	Handle(env, s, protocol.MoveStep{X: 11, Y: 10})
	if s.Player.Pos != (model.Pos{X: 10, Y: 10}) {
		t.Fatalf("dead player moved")
	}
}

func TestMovement_EntityUpdateForcesAttack(t *testing.T) {
	env := newStubMoveEnv()
	mob := &model.Entity{Instance: 5, Kind: model.KindMob, Pos: model.Pos{X: 1, Y: 1}}
	mob.Combat.Target = 1
	env.entities[5] = mob
	s := newMover(10, 10)
	Handle(env, s, protocol.MoveEntity{Instance: 5, X: 1, Y: 1})
	if len(env.attacks) != 0 {
		t.Fatalf("unchanged position must be a no-op")
	}
	Handle(env, s, protocol.MoveEntity{Instance: 5, X: 2, Y: 1})
	if mob.Pos != (model.Pos{X: 2, Y: 1}) || len(env.attacks) != 1 {
		t.Fatalf("pos=%v attacks=%v", mob.Pos, env.attacks)
	}
	if v := Handle(env, s, protocol.MoveEntity{Instance: 77, X: 2, Y: 1}); v.Code != protocol.ErrStale {
		t.Fatalf("missing entity: %+v", v)
	}
}

func TestMovement_OrientatePushesToRegion(t *testing.T) {
	env := newStubMoveEnv()
	s := newMover(10, 10)
	s.Player.Region = "0:0"
	Handle(env, s, protocol.Orientate{Orientation: protocol.OrientationDown})
	if len(env.pushes) != 1 || env.pushes[0].RegionID != "0:0" {
		t.Fatalf("pushes=%+v", env.pushes)
	}
}

func TestMinTravelTime(t *testing.T) {
	if got := MinTravelTime(model.Pos{X: 1, Y: 1}, model.Pos{X: 1, Y: 1}, 250); got != 250*time.Millisecond {
		t.Fatalf("zero distance: %v", got)
	}
	if got := MinTravelTime(model.Pos{X: 1, Y: 1}, model.Pos{X: 4, Y: 2}, 100); got != 400*time.Millisecond {
		t.Fatalf("four tiles: %v", got)
	}
}
