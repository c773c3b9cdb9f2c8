// Package audit persists a trail of mutating API calls. One row per
// request, written after the handler runs so the outcome status is known.
// Audit writes never fail the request; a lost row is logged and dropped.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/red095/clinic-management/internal/platform/db"
)

type Event struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	ActorID    *uuid.UUID `db:"actor_id" json:"actor_id,omitempty"`
	ActorRole  string     `db:"actor_role" json:"actor_role"`
	Method     string     `db:"method" json:"method"`
	Path       string     `db:"path" json:"path"`
	StatusCode int        `db:"status_code" json:"status_code"`
	RequestID  string     `db:"request_id" json:"request_id"`
	RemoteIP   string     `db:"remote_ip" json:"remote_ip"`
	UserAgent  string     `db:"user_agent" json:"user_agent"`
	Recorded   time.Time  `db:"recorded" json:"recorded"`
}

// Recorder is the write side of the trail.
type Recorder interface {
	Log(ctx context.Context, e *Event) error
}

type Logger struct {
	pool *pgxpool.Pool
}

func NewLogger(pool *pgxpool.Pool) *Logger {
	return &Logger{pool: pool}
}

func (l *Logger) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return l.pool
}

func (l *Logger) Log(ctx context.Context, e *Event) error {
	if e.Recorded.IsZero() {
		e.Recorded = time.Now().UTC()
	}
	e.ID = uuid.New()
	_, err := l.conn(ctx).Exec(ctx, `
		INSERT INTO audit_event (id, actor_id, actor_role, method, path, status_code, request_id, remote_ip, user_agent, recorded)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		e.ID, e.ActorID, e.ActorRole, e.Method, e.Path, e.StatusCode, e.RequestID, e.RemoteIP, e.UserAgent, e.Recorded)
	return err
}

// List returns the most recent events, newest first.
func (l *Logger) List(ctx context.Context, limit, offset int) ([]*Event, int, error) {
	var total int
	if err := l.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM audit_event`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := l.conn(ctx).Query(ctx, `
		SELECT id, actor_id, actor_role, method, path, status_code, request_id, remote_ip, user_agent, recorded
		FROM audit_event
		ORDER BY recorded DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.ActorID, &e.ActorRole, &e.Method, &e.Path, &e.StatusCode,
			&e.RequestID, &e.RemoteIP, &e.UserAgent, &e.Recorded); err != nil {
			return nil, 0, err
		}
		items = append(items, &e)
	}
	return items, total, rows.Err()
}
