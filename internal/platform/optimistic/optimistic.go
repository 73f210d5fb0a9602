// Package optimistic implementa las mutaciones sincronizadas contra el querycache:
// Cancel → Snapshot → Apply → Commit → (Rollback si falla) → Settle.
package optimistic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"medication-dashboard/internal/platform/querycache"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ProvisionalPrefix marca los ids sintetizados antes de que responda el API.
const ProvisionalPrefix = "temp-"

var (
	ErrAlreadyStarted = errors.New("optimistic: mutation instance already started")
	ErrCommitPanicked = errors.New("optimistic: commit panicked")
)

// settleConcurrency limita los refetch simultáneos del Settle.
const settleConcurrency = 4

func NewProvisionalID() string {
	return ProvisionalPrefix + uuid.NewString()
}

func IsProvisional(id string) bool {
	return strings.HasPrefix(id, ProvisionalPrefix)
}

// Spec parametriza una mutación.
type Spec[In, Out any] struct {
	Name string

	// Keys: keys a cancelar y snapshotear.
	Keys func(in In) []querycache.Key

	// Cancel: keys extra a cancelar sin snapshot (opcional).
	Cancel func(in In) []querycache.Key

	// Optimistic sintetiza el valor post-mutación (opcional).
	Optimistic func(in In, now time.Time) []querycache.Patch

	Commit func(ctx context.Context, in In) (Out, error)

	// Settle: keys a invalidar y refetchear al terminar. nil => Keys.
	Settle func(in In) []querycache.Key
}

// Token es lo que devuelve Snapshot; se consume con Apply/Rollback.
type Token struct {
	snap *querycache.Snapshot
}

func (t *Token) Keys() []querycache.Key {
	if t == nil || t.snap == nil {
		return nil
	}
	return t.snap.Keys()
}

type Mutation[In, Out any] struct {
	store *querycache.Store
	spec  Spec[In, Out]
	log   *zap.Logger
	now   func() time.Time
}

func New[In, Out any](store *querycache.Store, spec Spec[In, Out], log *zap.Logger) *Mutation[In, Out] {
	if log == nil {
		log = zap.NewNop()
	}
	return &Mutation[In, Out]{
		store: store,
		spec:  spec,
		log:   log.With(zap.String("mutation", spec.Name)),
		now:   time.Now,
	}
}

// Snapshot cancela los fetches en curso de las keys afectadas y captura su valor.
func (m *Mutation[In, Out]) Snapshot(in In) *Token {
	keys := m.keys(in)

	cancel := keys
	if m.spec.Cancel != nil {
		cancel = querycache.Union(m.spec.Cancel(in), keys)
	}
	for _, k := range cancel {
		m.store.CancelInflight(k)
	}

	return &Token{snap: m.store.Snapshot(keys...)}
}

// Apply escribe el valor optimista.
func (m *Mutation[In, Out]) Apply(tok *Token, in In) {
	if tok == nil || m.spec.Optimistic == nil {
		return
	}
	m.store.Apply(m.spec.Optimistic(in, m.now())...)
}

// Rollback restaura exacto lo capturado en Snapshot. A lo sumo una vez por token.
func (m *Mutation[In, Out]) Rollback(tok *Token) bool {
	if tok == nil {
		return false
	}
	return m.store.Restore(tok.snap)
}

// Run ejecuta una instancia nueva de la mutación.
func (m *Mutation[In, Out]) Run(ctx context.Context, in In) (Out, error) {
	return m.Start().Run(ctx, in)
}

// Start crea una instancia en estado Idle.
func (m *Mutation[In, Out]) Start() *Instance[In, Out] {
	return &Instance[In, Out]{m: m}
}

func (m *Mutation[In, Out]) keys(in In) []querycache.Key {
	if m.spec.Keys == nil {
		return nil
	}
	return m.spec.Keys(in)
}

func (m *Mutation[In, Out]) settle(ctx context.Context, in In) {
	keys := m.keys(in)
	if m.spec.Settle != nil {
		keys = m.spec.Settle(in)
	}

	for _, k := range keys {
		m.store.Invalidate(k)
	}

	// el settle no depende de que el caller siga esperando
	ctx = context.WithoutCancel(ctx)

	var g errgroup.Group
	g.SetLimit(settleConcurrency)
	for _, k := range keys {
		k := k
		g.Go(func() error {
			err := m.store.Refetch(ctx, k)
			switch {
			case err == nil, errors.Is(err, querycache.ErrNoFetcher):
			default:
				m.log.Warn("settle refetch failed", zap.String("key", k.String()), zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()
}

type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Instance es una invocación: idle → pending → success|error, terminal.
type Instance[In, Out any] struct {
	m *Mutation[In, Out]

	mu     sync.Mutex
	status Status
	err    error
	out    Out
}

func (i *Instance[In, Out]) Status() Status {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.status
}

func (i *Instance[In, Out]) Err() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.err
}

func (i *Instance[In, Out]) Result() Out {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.out
}

func (i *Instance[In, Out]) Run(ctx context.Context, in In) (Out, error) {
	var zero Out

	i.mu.Lock()
	if i.status != StatusIdle {
		i.mu.Unlock()
		return zero, ErrAlreadyStarted
	}
	i.status = StatusPending
	i.mu.Unlock()

	m := i.m
	tok := m.Snapshot(in)
	m.Apply(tok, in)
	m.log.Debug("optimistic value applied", zap.Int("keys", len(tok.Keys())))

	out, err := i.commit(ctx, in, tok)

	i.mu.Lock()
	defer i.mu.Unlock()
	if err != nil {
		i.status, i.err = StatusError, err
		return zero, err
	}
	i.status, i.out = StatusSuccess, out
	return out, nil
}

// commit corre Commit con rollback y settle en defer: también corren si Commit
// entra en pánico, y el pánico se relanza después.
func (i *Instance[In, Out]) commit(ctx context.Context, in In, tok *Token) (out Out, err error) {
	m := i.m
	defer func() {
		p := recover()
		if p != nil {
			err = fmt.Errorf("%w: %v", ErrCommitPanicked, p)
		}
		if err != nil && m.Rollback(tok) {
			m.log.Warn("mutation failed, rolled back", zap.Error(err))
		}

		m.settle(ctx, in)
		m.log.Debug("mutation settled", zap.Bool("ok", err == nil))

		if p != nil {
			i.mu.Lock()
			i.status, i.err = StatusError, err
			i.mu.Unlock()
			panic(p)
		}
	}()

	return m.spec.Commit(ctx, in)
}
