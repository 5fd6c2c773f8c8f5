// Package router dispatches decoded client commands to the feature handlers
// and folds their verdicts back into the session.
package router

import (
	"fmt"

	"realmgate.io/internal/protocol"
	"realmgate.io/internal/sim/session"
	"realmgate.io/internal/sim/world/feature/combat"
	"realmgate.io/internal/sim/world/feature/economy"
	"realmgate.io/internal/sim/world/feature/economy/trade"
	"realmgate.io/internal/sim/world/feature/lifecycle"
	"realmgate.io/internal/sim/world/feature/movement"
)

// Env is everything the feature handlers need from the world, plus the audit
// sink for noteworthy verdicts.
type Env interface {
	movement.Env
	combat.Env
	economy.Env
	trade.Env
	lifecycle.Env

	Audit(s *session.Context, op protocol.Opcode, v session.Verdict)
}

type handler func(Env, *session.Context, protocol.Command) session.Verdict

var handlers = map[protocol.Opcode]handler{
	protocol.OpIntro:      handleLifecycle,
	protocol.OpReady:      handleLifecycle,
	protocol.OpWho:        handleLifecycle,
	protocol.OpEquipment:  handleEconomy,
	protocol.OpMovement:   handleMovement,
	protocol.OpRequest:    handleLifecycle,
	protocol.OpTarget:     handleCombat,
	protocol.OpCombat:     handleCombat,
	protocol.OpProjectile: handleCombat,
	protocol.OpNetwork:    handleLifecycle,
	protocol.OpChat:       handleLifecycle,
	protocol.OpInventory:  handleEconomy,
	protocol.OpBank:       handleEconomy,
	protocol.OpRespawn:    handleLifecycle,
	protocol.OpTrade:      handleTrade,
	protocol.OpEnchant:    handleLifecycle,
	protocol.OpClick:      handleLifecycle,
	protocol.OpWarp:       handleLifecycle,
	protocol.OpShop:       handleEconomy,
	protocol.OpRegion:     handleLifecycle,
	protocol.OpCamera:     handleLifecycle,
}

func handleLifecycle(env Env, s *session.Context, c protocol.Command) session.Verdict {
	return lifecycle.Handle(env, s, c)
}

func handleMovement(env Env, s *session.Context, c protocol.Command) session.Verdict {
	return movement.Handle(env, s, c)
}

func handleEconomy(env Env, s *session.Context, c protocol.Command) session.Verdict {
	return economy.Handle(env, s, c)
}

func handleCombat(env Env, s *session.Context, c protocol.Command) session.Verdict {
	return combat.Handle(env, s, c)
}

func handleTrade(env Env, s *session.Context, c protocol.Command) session.Verdict {
	tc, ok := c.(protocol.Trade)
	if !ok {
		return session.Reject(protocol.ErrBadRequest, fmt.Sprintf("not a trade command: %T", c))
	}
	return trade.Handle(env, s, tc)
}

type Router struct {
	env      Env
	handlers map[protocol.Opcode]handler
}

func New(env Env) *Router {
	return &Router{env: env, handlers: handlers}
}

// Handles reports whether op has a handler.
func (r *Router) Handles(op protocol.Opcode) bool {
	_, ok := r.handlers[op]
	return ok
}

// Dispatch runs one command for s. Unknown opcodes are logged and dropped
// without refreshing the idle timer; every recognised opcode refreshes it
// before anything else happens, malformed ones included.
func (r *Router) Dispatch(s *session.Context, cmd protocol.Command) session.Verdict {
	op := cmd.Opcode()
	h, ok := r.handlers[op]
	if _, unknown := cmd.(protocol.Unknown); unknown || !ok {
		r.env.Logf("dropping unknown opcode %d from session %s", int(op), s.ID)
		v := session.Reject(protocol.ErrUnknownOpcode, fmt.Sprintf("opcode %d", int(op)))
		r.env.Audit(s, op, v)
		return v
	}

	s.Touch(r.env.Now())

	if m, malformed := cmd.(protocol.Malformed); malformed {
		v := session.Reject(protocol.ErrMalformed, m.Reason)
		r.env.Audit(s, op, v)
		return v
	}
	if s.Player == nil && op != protocol.OpIntro {
		v := session.Reject(protocol.ErrInvalidState, fmt.Sprintf("%s before login", op))
		r.env.Audit(s, op, v)
		return v
	}

	v := h(r.env, s, cmd)
	s.Apply(v)
	if v.Noteworthy() {
		r.env.Audit(s, op, v)
	}
	return v
}
