package trade

import (
	"fmt"
	"time"

	"realmgate.io/internal/protocol"
	"realmgate.io/internal/sim/model"
	"realmgate.io/internal/sim/session"
)

type Env interface {
	Now() time.Time
	Trades() *Book
	PlayerByInstance(id int) *model.Player

	Send(p *model.Player, msg protocol.Message)
	Notify(p *model.Player, text string)
}

// Handle resolves the counterpart and applies one trade transition. A
// missing counterpart drops the command.
func Handle(env Env, s *session.Context, c protocol.Trade) session.Verdict {
	p := s.Player
	other := env.PlayerByInstance(c.Counterpart)
	if other == nil || other.Instance == p.Instance {
		return session.Reject(protocol.ErrStale, fmt.Sprintf("trade counterpart %d", c.Counterpart))
	}
	book := env.Trades()

	switch c.Action {
	case protocol.TradeRequest:
		_, out := book.Request(p.Instance, other.Instance, env.Now())
		switch out {
		case Pending:
			env.Send(other, protocol.TradeMsg(protocol.TradeRequest, p.Instance))
			env.Notify(other, p.Username+" wants to trade with you.")
		case Opened:
			env.Send(other, protocol.TradeMsg(protocol.TradeRequest, p.Instance))
			env.Send(p, protocol.TradeMsg(protocol.TradeRequest, other.Instance))
		default:
			return session.Reject(protocol.ErrInvalidState, fmt.Sprintf("trade request to %d", other.Instance))
		}
	case protocol.TradeAccept:
		_, out := book.Accept(p.Instance, other.Instance)
		switch out {
		case Accepted:
			env.Send(other, protocol.TradeMsg(protocol.TradeAccept, p.Instance))
		case Completed:
			env.Send(other, protocol.TradeMsg(protocol.TradeAccept, p.Instance))
			env.Notify(p, "Trade completed.")
			env.Notify(other, "Trade completed.")
		default:
			return session.Reject(protocol.ErrInvalidState, fmt.Sprintf("no open trade with %d", other.Instance))
		}
	case protocol.TradeDecline:
		ts, out := book.Decline(p.Instance)
		if out != Declined {
			return session.Reject(protocol.ErrInvalidState, "no trade to decline")
		}
		if peer := env.PlayerByInstance(ts.Counterpart(p.Instance)); peer != nil {
			env.Send(peer, protocol.TradeMsg(protocol.TradeDecline, p.Instance))
		}
	default:
		return session.Reject(protocol.ErrBadRequest, fmt.Sprintf("trade action %d", c.Action))
	}
	return session.Accept()
}
