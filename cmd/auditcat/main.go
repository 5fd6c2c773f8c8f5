package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	persistlog "realmgate.io/internal/persistence/log"
	"realmgate.io/internal/sim/world"
)

func main() {
	var (
		dataDir  = flag.String("data", "./data", "runtime data directory")
		worldID  = flag.String("world", "world_1", "world id")
		dir      = flag.String("dir", "", "audit dir containing audit-*.jsonl.zst (overrides -data/-world)")
		session  = flag.String("session", "", "only this session id")
		actor    = flag.String("actor", "", "only this username")
		action   = flag.String("action", "", "only these actions, comma separated (MOVE,KICK,...)")
		rejected = flag.Bool("rejected", false, "only rejected entries")
		minSusp  = flag.Int("min_suspicion", 0, "only entries with at least this suspicion")
		since    = flag.String("since", "", "RFC3339 lower bound on entry time")
		limit    = flag.Int("limit", 0, "stop after this many entries (0 = all)")
	)
	flag.Parse()

	auditDir := strings.TrimSpace(*dir)
	if auditDir == "" {
		auditDir = persistlog.AuditDir(filepath.Join(*dataDir, "worlds", *worldID))
	}

	f := filter{
		Session:      *session,
		Actor:        strings.ToLower(*actor),
		Rejected:     *rejected,
		MinSuspicion: *minSusp,
	}
	if *action != "" {
		f.Actions = map[string]bool{}
		for _, a := range strings.Split(*action, ",") {
			f.Actions[strings.ToUpper(strings.TrimSpace(a))] = true
		}
	}
	if *since != "" {
		t, err := time.Parse(time.RFC3339, *since)
		if err != nil {
			fmt.Fprintln(os.Stderr, "bad -since:", err)
			os.Exit(2)
		}
		f.Since = t
	}

	files, err := persistlog.AuditFiles(auditDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "list audit:", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "no audit files found in", auditDir)
		os.Exit(1)
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()
	enc := json.NewEncoder(out)

	n := 0
	for _, path := range files {
		if !f.Since.IsZero() && fileBefore(path, f.Since) {
			continue
		}
		err := persistlog.ReadAudit(path, func(e world.AuditEntry) bool {
			if !f.match(e) {
				return true
			}
			_ = enc.Encode(e)
			n++
			return *limit == 0 || n < *limit
		})
		if err != nil {
			out.Flush()
			fmt.Fprintln(os.Stderr, "read:", err)
			os.Exit(1)
		}
		if *limit != 0 && n >= *limit {
			break
		}
	}
}

type filter struct {
	Session      string
	Actor        string
	Actions      map[string]bool
	Rejected     bool
	MinSuspicion int
	Since        time.Time
}

func (f filter) match(e world.AuditEntry) bool {
	if f.Session != "" && e.SessionID != f.Session {
		return false
	}
	if f.Actor != "" && e.Actor != f.Actor {
		return false
	}
	if f.Actions != nil && !f.Actions[e.Action] {
		return false
	}
	if f.Rejected && e.Accepted {
		return false
	}
	if e.Suspicion < f.MinSuspicion {
		return false
	}
	if !f.Since.IsZero() && e.Time.Before(f.Since) {
		return false
	}
	return true
}

// fileBefore reports whether every entry in an hourly file predates t.
func fileBefore(path string, t time.Time) bool {
	name := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(path), "audit-"), ".jsonl.zst")
	hour, err := time.Parse("2006-01-02-15", name)
	if err != nil {
		return false
	}
	return hour.Add(time.Hour).Before(t)
}
