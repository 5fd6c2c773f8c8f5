package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"realmgate.io/internal/persistence/accounts"
	"realmgate.io/internal/persistence/indexdb"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "db":
			dbCmd(os.Args[2:])
			return
		case "state":
			stateCmd(os.Args[2:])
			return
		case "accounts":
			accountsCmd(os.Args[2:])
			return
		}
	}
	listCmd(os.Args[1:])
}

func listCmd(args []string) {
	fs := flag.NewFlagSet("admin", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	_ = fs.Parse(args)

	entries, err := os.ReadDir(filepath.Join(*dataDir, "worlds"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	for _, e := range entries {
		if e.IsDir() {
			fmt.Println(e.Name())
		}
	}
}

// dbCmd runs a read-only query against a world's audit index:
//
//	admin db -world world_1 suspects
//	admin db -world world_1 -session <id> session
//	admin db -world world_1 -actor ann actor
//	admin db -world world_1 -since 1h codes
func dbCmd(args []string) {
	fs := flag.NewFlagSet("db", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id (required unless -db)")
	dbPath := fs.String("db", "", "sqlite db path (optional)")
	limit := fs.Int("limit", 20, "result limit")
	sessionID := fs.String("session", "", "session id (session query)")
	actor := fs.String("actor", "", "username (actor query)")
	since := fs.Duration("since", 24*time.Hour, "look-back window (codes query)")
	_ = fs.Parse(args)

	q := "suspects"
	if fs.NArg() > 0 {
		q = strings.TrimSpace(fs.Arg(0))
	}
	path := strings.TrimSpace(*dbPath)
	if path == "" {
		if strings.TrimSpace(*worldID) == "" {
			fmt.Fprintln(os.Stderr, "missing -world or -db")
			os.Exit(2)
		}
		path = filepath.Join(*dataDir, "worlds", *worldID, "index.db")
	}
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintln(os.Stderr, "index:", err)
		os.Exit(1)
	}

	idx, err := indexdb.OpenSQLite(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer idx.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var out any
	switch q {
	case "suspects":
		out, err = idx.TopSuspects(ctx, *limit)
	case "session":
		if *sessionID == "" {
			fmt.Fprintln(os.Stderr, "missing -session")
			os.Exit(2)
		}
		out, err = idx.SessionAudit(ctx, *sessionID, *limit)
	case "actor":
		if *actor == "" {
			fmt.Fprintln(os.Stderr, "missing -actor")
			os.Exit(2)
		}
		out, err = idx.ActorAudit(ctx, strings.ToLower(*actor), *limit)
	case "codes":
		out, err = idx.RejectCodes(ctx, time.Now().Add(-*since))
	default:
		fmt.Fprintln(os.Stderr, "unknown query:", q)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	printJSON(out)
}

func accountsCmd(args []string) {
	fs := flag.NewFlagSet("accounts", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "world_1", "world id")
	user := fs.String("user", "", "show the stored save for this username")
	_ = fs.Parse(args)

	// bbolt holds an exclusive lock; this only works while the server is stopped.
	store, err := accounts.Open(filepath.Join(*dataDir, "worlds", *worldID, "accounts.db"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer store.Close()

	if *user == "" {
		n, saves, err := store.Count()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		printJSON(map[string]int{"accounts": n, "saves": saves})
		return
	}
	save, found, err := store.LoadPlayer(strings.ToLower(*user))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if !found {
		fmt.Fprintln(os.Stderr, "no save for", *user)
		os.Exit(1)
	}
	printJSON(save)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
