package memory

import (
	"context"
	"strings"
	"sync"

	"medication-dashboard/internal/ports/session"
)

type sessionRepo struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewSessionRepo guarda el token en memoria del proceso (modo dev / tests).
func NewSessionRepo() session.TokenStore {
	return &sessionRepo{values: make(map[string]string)}
}

func (r *sessionRepo) Token(ctx context.Context) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.values[session.TokenKey], nil
}

func (r *sessionRepo) SetToken(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	token = strings.TrimSpace(token)
	if token == "" {
		delete(r.values, session.TokenKey)
		return nil
	}
	r.values[session.TokenKey] = token
	return nil
}

func (r *sessionRepo) ClearToken(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.values, session.TokenKey)
	return nil
}
