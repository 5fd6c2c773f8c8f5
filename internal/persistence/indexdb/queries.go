package indexdb

import (
	"context"
	"database/sql"
	"time"

	"realmgate.io/internal/sim/world"
)

type SessionRow struct {
	SessionID string
	World     string
	Actor     string
	JoinedAt  string
	LeftAt    string
	MaxScore  int
	Flagged   bool
	KickCode  string
}

type CodeCount struct {
	Code  string
	Count int
}

// SessionAudit returns a session's entries in write order.
func (s *SQLiteIndex) SessionAudit(ctx context.Context, sessionID string, limit int) ([]world.AuditEntry, error) {
	return s.audits(ctx, `WHERE session_id = ? ORDER BY id LIMIT ?`, sessionID, clampLimit(limit))
}

// ActorAudit returns the most recent entries for a username, newest first.
func (s *SQLiteIndex) ActorAudit(ctx context.Context, actor string, limit int) ([]world.AuditEntry, error) {
	return s.audits(ctx, `WHERE actor = ? ORDER BY id DESC LIMIT ?`, actor, clampLimit(limit))
}

func (s *SQLiteIndex) audits(ctx context.Context, where string, args ...any) ([]world.AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT time,tick,world,session_id,actor,action,accepted,code,detail,suspicion,score FROM audits `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []world.AuditEntry
	for rows.Next() {
		var (
			e        world.AuditEntry
			at       string
			tick     int64
			accepted int
		)
		if err := rows.Scan(&at, &tick, &e.World, &e.SessionID, &e.Actor, &e.Action, &accepted, &e.Code, &e.Detail, &e.Suspicion, &e.Score); err != nil {
			return nil, err
		}
		e.Time, _ = time.Parse(time.RFC3339Nano, at)
		e.Tick = uint64(tick)
		e.Accepted = accepted != 0
		out = append(out, e)
	}
	return out, rows.Err()
}

// TopSuspects lists sessions by their highest cheat score.
func (s *SQLiteIndex) TopSuspects(ctx context.Context, limit int) ([]SessionRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT session_id,world,actor,joined_at,left_at,max_score,flagged,kick_code
		FROM sessions WHERE max_score > 0 ORDER BY max_score DESC, joined_at LIMIT ?`, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionRow
	for rows.Next() {
		var (
			r       SessionRow
			left    sql.NullString
			kick    sql.NullString
			flagged int
		)
		if err := rows.Scan(&r.SessionID, &r.World, &r.Actor, &r.JoinedAt, &left, &r.MaxScore, &flagged, &kick); err != nil {
			return nil, err
		}
		r.LeftAt = left.String
		r.KickCode = kick.String
		r.Flagged = flagged != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// RejectCodes counts rejected entries per error code since the given time.
func (s *SQLiteIndex) RejectCodes(ctx context.Context, since time.Time) ([]CodeCount, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT code, COUNT(*) FROM audits
		WHERE accepted = 0 AND code != '' AND time >= ? GROUP BY code ORDER BY COUNT(*) DESC, code`,
		since.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CodeCount
	for rows.Next() {
		var c CodeCount
		if err := rows.Scan(&c.Code, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func clampLimit(n int) int {
	if n <= 0 || n > 10000 {
		return 100
	}
	return n
}
