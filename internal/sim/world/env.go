package world

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"realmgate.io/internal/protocol"
	"realmgate.io/internal/sim/model"
	"realmgate.io/internal/sim/session"
	"realmgate.io/internal/sim/tuning"
	"realmgate.io/internal/sim/world/feature/economy"
	"realmgate.io/internal/sim/world/feature/economy/trade"
	"realmgate.io/internal/sim/world/feature/lifecycle"
)

var (
	ErrAlreadyOnline = errors.New("world: player already online")
	ErrNoStore       = errors.New("world: no account store configured")
)

func (w *World) Now() time.Time { return w.now() }

func (w *World) Tuning() *tuning.Tuning { return &w.tun }

func (w *World) Items() economy.Items { return &w.cats.Items }

func (w *World) Trades() *trade.Book { return w.trades }

func (w *World) Logf(format string, args ...any) { w.log.Printf(format, args...) }

func (w *World) Accounts() lifecycle.Accounts {
	if w.store == nil {
		return noAccounts{}
	}
	return w.store
}

type noAccounts struct{}

func (noAccounts) Exists(string) (bool, error) { return false, ErrNoStore }

func (noAccounts) Register(string, string, string) error { return ErrNoStore }

func (noAccounts) Verify(string, string) (bool, error) { return false, ErrNoStore }

func (w *World) Online(username string) bool {
	_, ok := w.byName[username]
	return ok
}

func (w *World) GuestName() string {
	for {
		name := fmt.Sprintf("guest%d", rand.Intn(2_000_000))
		if !w.Online(name) {
			return name
		}
	}
}

// Enter binds a new player to s, restores its save when there is one, and
// sends the welcome.
func (w *World) Enter(s *session.Context, username, email string, guest, fresh bool) error {
	if username == "" {
		username, guest = w.GuestName(), true
	}
	if w.Online(username) {
		return fmt.Errorf("enter %s: %w", username, ErrAlreadyOnline)
	}
	p := w.newPlayer(username)
	p.Email = email
	p.Guest = guest
	if !fresh && !guest {
		if w.store == nil {
			return fmt.Errorf("enter %s: %w", username, ErrNoStore)
		}
		save, found, err := w.store.LoadPlayer(username)
		if err != nil {
			return fmt.Errorf("enter %s: %w", username, err)
		}
		if found {
			save.Restore(p)
		}
	}

	s.Player = p
	w.players[p.Instance] = p
	w.byName[username] = s
	w.addEntity(&p.Entity)

	s.Send(protocol.Welcome(protocol.WelcomePayload{
		ProtocolVersion: w.tun.ProtocolVersion,
		SessionID:       s.ID,
		Instance:        p.Instance,
		Username:        p.Username,
		X:               p.Pos.X,
		Y:               p.Pos.Y,
		HitPoints:       p.HitPoints,
		MaxHitPoints:    p.MaxHitPoints,
		MovementSpeed:   p.MovementSpeed,
		PvP:             p.PvP,
		ItemsDigest:     w.cats.Items.Digest,
		MapDigest:       w.cats.Map.Digest,
	}))
	w.Push(protocol.PushRegions, protocol.Push{
		RegionID: p.Region,
		Message:  protocol.Spawn(p.State()),
		IgnoreID: p.Instance,
	})
	w.log.Printf("player %s entered as instance %d (guest=%v fresh=%v)", username, p.Instance, guest, fresh)
	return nil
}

func (w *World) sessionOf(p *model.Player) *session.Context {
	if p == nil {
		return nil
	}
	s := w.byName[p.Username]
	if s == nil || s.Player != p {
		return nil
	}
	return s
}

func (w *World) Send(p *model.Player, msg protocol.Message) {
	if s := w.sessionOf(p); s != nil {
		s.Send(msg)
	}
}

func (w *World) Notify(p *model.Player, text string) {
	w.Send(p, protocol.Notification(text))
}

func (w *World) Sync(p *model.Player) {
	w.Push(protocol.PushRegions, protocol.Push{
		RegionID: p.Region,
		Message: protocol.Sync(protocol.SyncState{
			Instance:     p.Instance,
			HitPoints:    p.HitPoints,
			MaxHitPoints: p.MaxHitPoints,
			PvP:          p.PvP,
			Frozen:       p.Frozen,
		}),
	})
}

// SetPosition moves a player and shows the step to everyone else nearby.
func (w *World) SetPosition(p *model.Player, to model.Pos) {
	if p.Pos == to {
		return
	}
	p.SetPosition(to)
	before := p.Region
	w.relocate(&p.Entity)
	w.Push(protocol.PushRegions, protocol.Push{
		RegionID: p.Region,
		Message:  protocol.Movement(protocol.MovementMove, p.Instance, to.X, to.Y),
		IgnoreID: p.Instance,
	})
	if before != p.Region && p.Ready {
		w.UpdateRegions(p)
	}
}

func (w *World) SetOrientation(p *model.Player, o protocol.Orientation) {
	p.Orientation = o
}

// Teleport moves a player without walking. With refreshInstance the client
// reloads every region around the destination.
func (w *World) Teleport(p *model.Player, to model.Pos, withAnimation, refreshInstance bool) {
	w.StopMovement(p)
	p.SetPosition(to)
	w.relocate(&p.Entity)
	w.Push(protocol.PushRegions, protocol.Push{
		RegionID: p.Region,
		Message:  protocol.Teleport(p.Instance, to.X, to.Y, withAnimation),
	})
	if refreshInstance {
		p.Regions = map[string]bool{}
	}
	if p.Ready {
		w.UpdateRegions(p)
	}
}

func (w *World) StopMovement(p *model.Player) {
	if s := w.sessionOf(p); s != nil {
		s.Movement = session.Idle
		s.Predicted = p.Pos
	}
}

func (w *World) CanEquip(p *model.Player, itemID int) bool {
	if p.Dead {
		return false
	}
	_, ok := w.cats.Items.EquipSlot(itemID)
	return ok
}

func (w *World) Eat(p *model.Player, itemID int) {
	heal := w.cats.Items.ByID[itemID].EdibleHP
	if heal <= 0 {
		return
	}
	p.HitPoints = min(p.HitPoints+heal, p.MaxHitPoints)
	w.Send(p, protocol.Points(p.Instance, p.HitPoints, p.MaxHitPoints))
}

func (w *World) Revive(p *model.Player) {
	p.Dead = false
	p.HitPoints = p.MaxHitPoints
	p.Combat = model.CombatState{}
	w.Send(p, protocol.Points(p.Instance, p.HitPoints, p.MaxHitPoints))
}

// Save writes a registered player's state. Guests are never saved.
func (w *World) Save(p *model.Player) {
	if p.Guest || w.store == nil {
		return
	}
	if err := w.store.SavePlayer(model.SaveOf(p, w.now())); err != nil {
		w.log.Printf("save %s failed: %v", p.Username, err)
	}
}

func (w *World) saveAll() {
	ids := make([]int, 0, len(w.players))
	for id := range w.players {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		w.Save(w.players[id])
	}
}
