package main

import (
	"fmt"
	"io"

	"realmgate.io/internal/sim/world"
)

type transportStats struct {
	Connections int64
	BadFrames   uint64
	IndexDrops  uint64
}

// writeMetrics renders the Prometheus text exposition format.
func writeMetrics(w io.Writer, worldID string, m world.WorldMetrics, t transportStats) {
	gauge := func(name, help string, v any) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s gauge\n", name)
		fmt.Fprintf(w, "%s{world=%q} %v\n", name, worldID, v)
	}
	counter := func(name, help string, v uint64) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s counter\n", name)
		fmt.Fprintf(w, "%s{world=%q} %d\n", name, worldID, v)
	}

	gauge("realmgate_world_tick", "Current world tick.", m.Tick)
	gauge("realmgate_world_sessions", "Connected sessions.", m.Sessions)
	gauge("realmgate_world_players", "Players in the world.", m.Players)
	gauge("realmgate_world_entities", "Entities in the world.", m.Entities)
	gauge("realmgate_world_ground_items", "Items lying on the ground.", m.GroundItems)
	gauge("realmgate_world_open_trades", "Trades in progress.", m.OpenTrades)
	gauge("realmgate_world_flagged_sessions", "Sessions past the cheat threshold.", m.FlaggedTotal)
	gauge("realmgate_ws_connections", "Open websocket connections.", t.Connections)

	counter("realmgate_audit_entries_total", "Audit entries written.", m.AuditTotal)
	counter("realmgate_kicks_total", "Sessions closed by moderation.", m.KickTotal)
	counter("realmgate_dropped_sends_total", "Outbound frames dropped on full client queues.", m.DroppedSends)
	counter("realmgate_ws_bad_frames_total", "Inbound frames with an unreadable header.", t.BadFrames)
	counter("realmgate_index_dropped_total", "Audit entries the sqlite index skipped.", t.IndexDrops)

	fmt.Fprintf(w, "# HELP realmgate_world_queue_depth Channel backlog depth.\n")
	fmt.Fprintf(w, "# TYPE realmgate_world_queue_depth gauge\n")
	fmt.Fprintf(w, "realmgate_world_queue_depth{world=%q,queue=%q} %d\n", worldID, "inbox", m.QueueDepths.Inbox)
	fmt.Fprintf(w, "realmgate_world_queue_depth{world=%q,queue=%q} %d\n", worldID, "join", m.QueueDepths.Join)
	fmt.Fprintf(w, "realmgate_world_queue_depth{world=%q,queue=%q} %d\n", worldID, "leave", m.QueueDepths.Leave)

	fmt.Fprintf(w, "# HELP realmgate_world_step_ms Last housekeeping step duration in milliseconds.\n")
	fmt.Fprintf(w, "# TYPE realmgate_world_step_ms gauge\n")
	fmt.Fprintf(w, "realmgate_world_step_ms{world=%q} %.3f\n", worldID, m.StepMS)
}
