package world

import (
	"fmt"
	"sort"
	"time"

	"realmgate.io/internal/protocol"
	"realmgate.io/internal/sim/session"
)

// systemModeration enforces the idle timeout and the cheat threshold. The
// handlers only report suspicion; acting on it happens here.
func (w *World) systemModeration(now time.Time) {
	ids := make([]string, 0, len(w.sessions))
	for id := range w.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	idle := time.Duration(w.tun.IdleTimeoutMs) * time.Millisecond
	for _, id := range ids {
		s := w.sessions[id]
		if w.closing[id] {
			continue
		}
		if idle > 0 && s.IdleFor(now) >= idle {
			w.kick(s, protocol.ErrIdle, fmt.Sprintf("idle for %s", s.IdleFor(now).Truncate(time.Second)))
			continue
		}
		if s.Flagged || s.CheatScore < w.tun.Cheat.Threshold {
			continue
		}
		s.Flagged = true
		w.writeAudit(s, "FLAG", session.Verdict{
			Accepted: true,
			Code:     protocol.ErrSuspicious,
			Detail:   fmt.Sprintf("cheat score %d reached threshold %d", s.CheatScore, w.tun.Cheat.Threshold),
		})
		if w.tun.Cheat.Kick {
			w.kick(s, protocol.ErrSuspicious, "cheat threshold")
		}
	}
}

// kick asks the transport to close s. The session stays until the transport
// reports the leave.
func (w *World) kick(s *session.Context, code, detail string) {
	if w.closing[s.ID] {
		return
	}
	w.closing[s.ID] = true
	w.kicks.Add(1)
	w.writeAudit(s, "KICK", session.Reject(code, detail))
	if s.Conn != nil {
		s.Conn.Close(code)
	}
}
