package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"medication-dashboard/internal/ports/session"

	goredis "github.com/go-redis/redis/v8"
)

const DefaultPrefix = "medication-dashboard:session:"

type Options struct {
	Addr     string
	Password string
	DB       int

	// Prefix de la key; vacío => DefaultPrefix.
	Prefix string
	// TTL del token; 0 => sin vencimiento.
	TTL time.Duration
}

func NewClient(opts Options) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
}

// Ping verifica la conexión.
func Ping(ctx context.Context, c *goredis.Client) error {
	return c.Ping(ctx).Err()
}

type SessionRepo struct {
	client *goredis.Client
	key    string
	ttl    time.Duration
}

func NewSessionRepo(client *goredis.Client, opts Options) *SessionRepo {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &SessionRepo{client: client, key: prefix + session.TokenKey, ttl: opts.TTL}
}

func (r *SessionRepo) Token(ctx context.Context) (string, error) {
	v, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", nil
	}
	return v, err
}

func (r *SessionRepo) SetToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return r.ClearToken(ctx)
	}
	return r.client.Set(ctx, r.key, token, r.ttl).Err()
}

func (r *SessionRepo) ClearToken(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}
