package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"anonbox/internal/session"
)

// SessionSQLite stores sessions in the sessions table.
type SessionSQLite struct {
	db  *sql.DB
	now func() time.Time
}

func NewSessionSQLite(db *sql.DB) *SessionSQLite {
	return &SessionSQLite{db: db, now: time.Now}
}

var (
	_ session.Store  = (*SessionSQLite)(nil)
	_ session.Purger = (*SessionSQLite)(nil)
)

const (
	selectSessionSQL = `SELECT data FROM sessions WHERE id = ? AND expires_at > ?`
	upsertSessionSQL = `
		INSERT INTO sessions (id, data, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			data=excluded.data,
			expires_at=excluded.expires_at
	`
	deleteSessionSQL        = `DELETE FROM sessions WHERE id = ?`
	deleteExpiredSessionSQL = `DELETE FROM sessions WHERE expires_at <= ?`
)

// Get returns (nil, nil) when the session is missing or expired.
func (r *SessionSQLite) Get(ctx context.Context, id string) (*session.Session, error) {
	var data string
	err := r.db.QueryRowContext(ctx, selectSessionSQL, id, r.now().Unix()).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select session: %w", err)
	}
	return session.Unmarshal([]byte(data))
}

func (r *SessionSQLite) Save(ctx context.Context, s *session.Session) error {
	data, err := session.Marshal(s)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, upsertSessionSQL, s.ID, string(data), s.ExpiresAt.Unix()); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

func (r *SessionSQLite) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, deleteSessionSQL, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *SessionSQLite) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, deleteExpiredSessionSQL, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge sessions rows affected: %w", err)
	}
	return n, nil
}
