package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"medication-dashboard/internal/ports/session"
)

type SessionRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewSessionRepo guarda el token en dashboard_sessions bajo session.TokenKey.
func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db, now: time.Now}
}

func (r *SessionRepo) Token(ctx context.Context) (string, error) {
	var token string
	err := r.db.QueryRowContext(ctx, `
		SELECT token FROM dashboard_sessions WHERE key = $1
	`, session.TokenKey).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

func (r *SessionRepo) SetToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return r.ClearToken(ctx)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO dashboard_sessions (key, token, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE
		SET token = EXCLUDED.token, updated_at = EXCLUDED.updated_at
	`, session.TokenKey, token, r.now().UTC())
	return err
}

func (r *SessionRepo) ClearToken(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM dashboard_sessions WHERE key = $1
	`, session.TokenKey)
	return err
}
