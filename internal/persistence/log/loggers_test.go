package log

import (
	"path/filepath"
	"testing"
	"time"

	"realmgate.io/internal/sim/world"
)

func TestAuditLogger_RotatesByEntryHourAndReadsBack(t *testing.T) {
	dir := t.TempDir()
	l := NewAuditLogger(dir)

	t0 := time.Date(2026, 3, 1, 10, 59, 0, 0, time.UTC)
	entries := []world.AuditEntry{
		{Time: t0, SessionID: "a", Action: "JOIN", Accepted: true},
		{Time: t0.Add(30 * time.Second), SessionID: "a", Action: "MOVE", Code: "E_MOVE", Suspicion: 1},
		{Time: t0.Add(2 * time.Minute), SessionID: "a", Action: "LEAVE", Accepted: true},
	}
	for _, e := range entries {
		if err := l.WriteAudit(e); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	files, err := AuditFiles(AuditDir(dir))
	if err != nil {
		t.Fatalf("files: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("files = %v, want two hours", files)
	}
	if filepath.Base(files[0]) != "audit-2026-03-01-10.jsonl.zst" {
		t.Fatalf("first file = %s", files[0])
	}
	var got []world.AuditEntry
	if err := ReadAudit(files[0], func(e world.AuditEntry) bool {
		got = append(got, e)
		return true
	}); err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 2 || got[1].Code != "E_MOVE" || got[1].Suspicion != 1 {
		t.Fatalf("entries = %+v", got)
	}

	got = nil
	if err := ReadAudit(files[1], func(e world.AuditEntry) bool {
		got = append(got, e)
		return false
	}); err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 1 || got[0].Action != "LEAVE" {
		t.Fatalf("entries = %+v", got)
	}
}

func TestJSONLZstdWriter_AppendsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		l := NewAuditLogger(dir)
		if err := l.WriteAudit(world.AuditEntry{Time: at, Action: "JOIN"}); err != nil {
			t.Fatalf("write: %v", err)
		}
		if err := l.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}
	files, err := AuditFiles(AuditDir(dir))
	if err != nil || len(files) != 1 {
		t.Fatalf("files = %v err=%v", files, err)
	}
	n := 0
	if err := ReadAudit(files[0], func(world.AuditEntry) bool { n++; return true }); err != nil {
		t.Fatalf("read: %v", err)
	}
	if n != 2 {
		t.Fatalf("entries = %d, want 2", n)
	}
}
