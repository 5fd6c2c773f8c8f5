package world

import (
	"time"

	"realmgate.io/internal/sim/model"
)

// WorldMetrics is a thread-safe read-only view of key world runtime signals.
// It is updated from the world loop goroutine and read from HTTP handlers/tests.
type WorldMetrics struct {
	Tick uint64 `json:"tick"`

	Sessions     int `json:"sessions"`
	Players      int `json:"players"`
	Entities     int `json:"entities"`
	GroundItems  int `json:"ground_items"`
	OpenTrades   int `json:"open_trades"`
	FlaggedTotal int `json:"flagged"`

	AuditTotal   uint64 `json:"audit_total"`
	KickTotal    uint64 `json:"kick_total"`
	DroppedSends uint64 `json:"dropped_sends"`

	QueueDepths QueueDepths `json:"queue_depths"`

	StepMS float64 `json:"step_ms"`
}

type QueueDepths struct {
	Inbox int `json:"inbox"`
	Join  int `json:"join"`
	Leave int `json:"leave"`
}

func (w *World) Metrics() WorldMetrics {
	if w == nil {
		return WorldMetrics{}
	}
	v := w.metrics.Load()
	if v == nil {
		return WorldMetrics{}
	}
	m, ok := v.(WorldMetrics)
	if !ok {
		return WorldMetrics{}
	}
	return m
}

func (w *World) publishMetrics(stepDur time.Duration) {
	m := WorldMetrics{
		Tick:         w.tick.Load(),
		Sessions:     len(w.sessions),
		Players:      len(w.players),
		Entities:     len(w.entities),
		OpenTrades:   w.trades.Len(),
		AuditTotal:   w.audits.Load(),
		KickTotal:    w.kicks.Load(),
		DroppedSends: w.dropped.Load(),
		QueueDepths: QueueDepths{
			Inbox: len(w.inbox),
			Join:  len(w.join),
			Leave: len(w.leave),
		},
		StepMS: float64(stepDur.Microseconds()) / 1000,
	}
	for _, e := range w.entities {
		if e.Kind == model.KindItem {
			m.GroundItems++
		}
	}
	for _, s := range w.sessions {
		if s.Flagged {
			m.FlaggedTotal++
		}
	}
	w.metrics.Store(m)
}
