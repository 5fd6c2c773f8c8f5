package world

import (
	"time"

	"realmgate.io/internal/protocol"
	"realmgate.io/internal/sim/session"
)

// AuditEntry records one noteworthy outcome. Action is an opcode name for
// commands and JOIN, LEAVE, IDLE, FLAG or KICK for world events.
type AuditEntry struct {
	Time      time.Time `json:"time"`
	Tick      uint64    `json:"tick"`
	World     string    `json:"world,omitempty"`
	SessionID string    `json:"session_id"`
	Actor     string    `json:"actor,omitempty"`
	Instance  int       `json:"instance,omitempty"`
	Action    string    `json:"action"`
	Accepted  bool      `json:"accepted"`
	Code      string    `json:"code,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Suspicion int       `json:"suspicion,omitempty"`
	Score     int       `json:"score"`
}

// Audit records a routed command's verdict.
func (w *World) Audit(s *session.Context, op protocol.Opcode, v session.Verdict) {
	w.writeAudit(s, op.String(), v)
}

func (w *World) writeAudit(s *session.Context, action string, v session.Verdict) {
	e := AuditEntry{
		Time:      w.now().UTC(),
		Tick:      w.tick.Load(),
		World:     w.cfg.ID,
		SessionID: s.ID,
		Action:    action,
		Accepted:  v.Accepted,
		Code:      v.Code,
		Detail:    v.Detail,
		Suspicion: v.Suspicion,
		Score:     s.CheatScore,
	}
	if p := s.Player; p != nil {
		e.Actor = p.Username
		e.Instance = p.Instance
	}
	w.audits.Add(1)
	if w.auditLogger == nil {
		return
	}
	if err := w.auditLogger.WriteAudit(e); err != nil {
		w.log.Printf("audit write failed: session=%s action=%s err=%v", s.ID, action, err)
	}
}

// MultiAudit fans entries out to several loggers. Every logger is tried.
type MultiAudit []AuditLogger

func (m MultiAudit) WriteAudit(e AuditEntry) error {
	var first error
	for _, l := range m {
		if l == nil {
			continue
		}
		if err := l.WriteAudit(e); err != nil && first == nil {
			first = err
		}
	}
	return first
}
