// Package lifecycle handles the session-level commands: login, readiness,
// region refreshes, respawn, UI toggles, warps, chat and enchanting.
package lifecycle

import (
	"fmt"
	"time"

	"realmgate.io/internal/protocol"
	"realmgate.io/internal/sim/model"
	"realmgate.io/internal/sim/session"
	"realmgate.io/internal/sim/tuning"
	"realmgate.io/internal/sim/world/feature/economy"
)

type Accounts interface {
	Exists(username string) (bool, error)
	Register(username, password, email string) error
	Verify(username, password string) (bool, error)
}

type Env interface {
	Now() time.Time
	Tuning() *tuning.Tuning
	Items() economy.Items
	Accounts() Accounts

	// Online reports whether username is bound to a live session.
	Online(username string) bool
	GuestName() string
	// Enter binds a player to s and sends the welcome. Fresh players start
	// from defaults; others are loaded from the account store.
	Enter(s *session.Context, username, email string, guest, fresh bool) error
	PlayerCount() int

	EntityByInstance(id int) *model.Entity
	OutOfBounds(x, y int) bool

	UpdateRegions(p *model.Player)
	PushRegions(p *model.Player)
	SetPosition(p *model.Player, to model.Pos)
	Teleport(p *model.Player, to model.Pos, withAnimation, refreshInstance bool)
	Revive(p *model.Player)
	Save(p *model.Player)
	Sync(p *model.Player)

	Notify(p *model.Player, text string)
	Send(p *model.Player, msg protocol.Message)
	Push(scope protocol.PushScope, push protocol.Push)
	Logf(format string, args ...any)
}

func Handle(env Env, s *session.Context, cmd protocol.Command) session.Verdict {
	switch c := cmd.(type) {
	case protocol.Intro:
		return Intro(env, s, c)
	case protocol.Ready:
		return Ready(env, s, c)
	case protocol.Who:
		return Who(env, s, c)
	case protocol.RegionRequest:
		return RegionRequest(env, s, c)
	case protocol.Respawn:
		return Respawn(env, s, c)
	case protocol.Click:
		return Click(env, s, c)
	case protocol.Warp:
		return Warp(env, s, c)
	case protocol.Chat:
		return Chat(env, s, c)
	case protocol.EnchantSelect:
		return EnchantSelect(env, s, c)
	case protocol.EnchantRemove:
		return EnchantRemove(env, s, c)
	case protocol.EnchantApply:
		return EnchantApply(env, s, c)
	case protocol.Pong:
		env.Logf("pong from %s", s.Player.Username)
		return session.Accept()
	case protocol.Camera:
		env.Logf("camera reset for %s at %d,%d", s.Player.Username, s.Player.Pos.X, s.Player.Pos.Y)
		return session.Accept()
	case protocol.Region:
		env.Logf("region opcode from %s has no handler", s.Player.Username)
		return ignored("region")
	}
	return session.Reject(protocol.ErrBadRequest, fmt.Sprintf("not a lifecycle command: %T", cmd))
}

// ignored drops a command without auditing it.
func ignored(detail string) session.Verdict {
	return session.Verdict{Detail: detail}
}
