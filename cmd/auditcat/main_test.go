package main

import (
	"testing"
	"time"

	"realmgate.io/internal/sim/world"
)

func TestFilterMatch(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	e := world.AuditEntry{Time: t0, SessionID: "s1", Actor: "ann", Action: "MOVE", Code: "E_MOVE", Suspicion: 2}

	cases := []struct {
		name string
		f    filter
		want bool
	}{
		{"empty", filter{}, true},
		{"session", filter{Session: "s2"}, false},
		{"actor", filter{Actor: "ann"}, true},
		{"action", filter{Actions: map[string]bool{"KICK": true}}, false},
		{"rejected", filter{Rejected: true}, true},
		{"suspicion", filter{MinSuspicion: 3}, false},
		{"since", filter{Since: t0.Add(time.Minute)}, false},
	}
	for _, c := range cases {
		if got := c.f.match(e); got != c.want {
			t.Fatalf("%s: match = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestFileBefore(t *testing.T) {
	at := time.Date(2026, 3, 1, 11, 30, 0, 0, time.UTC)
	if !fileBefore("/x/audit-2026-03-01-10.jsonl.zst", at) {
		t.Fatalf("10:00 file should be before 11:30")
	}
	if fileBefore("/x/audit-2026-03-01-11.jsonl.zst", at) {
		t.Fatalf("11:00 file covers 11:30")
	}
	if fileBefore("/x/audit-bad.jsonl.zst", at) {
		t.Fatalf("unparsable names are kept")
	}
}
