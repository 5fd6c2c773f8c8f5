package lifecycle

import (
	"fmt"

	"realmgate.io/internal/protocol"
	"realmgate.io/internal/sim/model"
	"realmgate.io/internal/sim/session"
)

// Ready completes the login handshake once the client has loaded its assets.
func Ready(env Env, s *session.Context, c protocol.Ready) session.Verdict {
	p := s.Player
	if !c.Ready {
		return ignored("not ready")
	}
	if len(p.Regions) > 0 && !c.Preloaded {
		p.Regions = map[string]bool{}
	}
	p.Ready = true
	env.UpdateRegions(p)

	keys := env.Items().Key
	env.Send(p, protocol.EquipmentBatchMsg(p.EquipmentState()))
	env.Send(p, protocol.InventoryBatchMsg(p.Inventory.Size(), model.SlotStates(p.Inventory.Slots(), keys)))
	env.Send(p, protocol.BankBatchMsg(p.Bank.Size(), model.SlotStates(p.Bank.Slots(), keys)))

	if env.OutOfBounds(p.Pos.X, p.Pos.Y) {
		sp := env.Tuning().Spawn
		env.SetPosition(p, model.Pos{X: sp.X, Y: sp.Y})
	}
	if p.UserAgent != c.UserAgent {
		p.UserAgent = c.UserAgent
		p.Regions = map[string]bool{}
		env.UpdateRegions(p)
	}
	env.Save(p)
	env.Sync(p)
	return session.Accept()
}

// Who sends a spawn for every listed entity that is still alive.
func Who(env Env, s *session.Context, c protocol.Who) session.Verdict {
	for _, id := range c.Instances {
		e := env.EntityByInstance(id)
		if e == nil || e.Dead {
			continue
		}
		env.Send(s.Player, protocol.Spawn(e.State()))
	}
	return session.Accept()
}

func RegionRequest(env Env, s *session.Context, c protocol.RegionRequest) session.Verdict {
	if c.Instance != s.Player.Instance {
		return session.Reject(protocol.ErrNotAllowed, fmt.Sprintf("region request for %d", c.Instance))
	}
	env.PushRegions(s.Player)
	return session.Accept()
}

// Respawn revives a dead player at their spawn point.
func Respawn(env Env, s *session.Context, c protocol.Respawn) session.Verdict {
	p := s.Player
	if c.Instance != p.Instance {
		return session.Reject(protocol.ErrNotAllowed, fmt.Sprintf("respawn for %d", c.Instance))
	}
	if !p.Dead {
		return session.Reject(protocol.ErrInvalidState, "respawn while alive")
	}
	spawn := p.Spawn
	if !spawn.Valid() || env.OutOfBounds(spawn.X, spawn.Y) {
		sp := env.Tuning().Spawn
		spawn = model.Pos{X: sp.X, Y: sp.Y}
	}
	p.Dead = false
	env.SetPosition(p, spawn)
	env.Push(protocol.PushRegions, protocol.Push{
		RegionID: p.Region,
		Message:  protocol.Spawn(p.State()),
		IgnoreID: p.Instance,
	})
	env.Send(p, protocol.RespawnMsg(p.Instance, p.Pos.X, p.Pos.Y))
	env.Revive(p)
	return session.Accept()
}

func Click(env Env, s *session.Context, c protocol.Click) session.Verdict {
	p := s.Player
	switch c.Target {
	case protocol.ClickProfile:
		p.ProfileOpen = c.State
	case protocol.ClickInventory:
		p.InventoryOpen = c.State
	case protocol.ClickWarp:
		p.WarpOpen = c.State
	default:
		return session.Reject(protocol.ErrBadRequest, c.Target.String())
	}
	return session.Accept()
}

// Warp teleports to a configured warp point. Client ids are 1-based.
func Warp(env Env, s *session.Context, c protocol.Warp) session.Verdict {
	warps := env.Tuning().Warps
	idx := c.ID - 1
	if idx < 0 || idx >= len(warps) {
		return session.Reject(protocol.ErrBadRequest, fmt.Sprintf("warp %d", c.ID))
	}
	p := s.Player
	if p.Dead {
		return session.Reject(protocol.ErrInvalidState, "dead")
	}
	to := model.Pos{X: warps[idx].X, Y: warps[idx].Y}
	env.Teleport(p, to, true, false)
	p.WarpOpen = false
	return session.Accept()
}
