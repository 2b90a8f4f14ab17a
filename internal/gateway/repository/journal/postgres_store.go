package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"

	"graphclick/internal/clickgate"
)

// PostgresStore persists records in the click_notifications table.
type PostgresStore struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgres opens dsn with the pgx driver and checks the connection.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping journal db: %w", err)
	}
	s := NewPostgresStore(db)
	if err := s.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	s.schemaOnce.Do(func() {
		_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS click_notifications (
  id TEXT PRIMARY KEY,
  session_id TEXT NOT NULL,
  type TEXT NOT NULL,
  node_id TEXT NOT NULL,
  x DOUBLE PRECISION NOT NULL DEFAULT 0,
  y DOUBLE PRECISION NOT NULL DEFAULT 0,
  target_origin TEXT NOT NULL DEFAULT '*',
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_click_notifications_session ON click_notifications (session_id, created_at);
`)
		if err != nil {
			s.schemaErr = fmt.Errorf("create journal schema: %w", err)
		}
	})
	return s.schemaErr
}

func (s *PostgresStore) Append(ctx context.Context, rec Record) error {
	id := normalizeSessionID(rec.SessionID)
	if id == "" {
		return ErrInvalidSession
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO click_notifications (id, session_id, type, node_id, x, y, target_origin, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, id, string(rec.Type), rec.NodeID, rec.X, rec.Y, rec.TargetOrigin, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append notification %s: %w", rec.ID, err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, sessionID string, limit int) ([]Record, error) {
	id := normalizeSessionID(sessionID)
	if id == "" {
		return nil, ErrInvalidSession
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, session_id, type, node_id, x, y, target_origin, created_at FROM (
  SELECT * FROM click_notifications WHERE session_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2
) recent ORDER BY created_at ASC, id ASC`, id, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec Record
			typ string
		)
		if err := rows.Scan(&rec.ID, &rec.SessionID, &typ, &rec.NodeID, &rec.X, &rec.Y, &rec.TargetOrigin, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		rec.Type = clickgate.NotificationType(typ)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
