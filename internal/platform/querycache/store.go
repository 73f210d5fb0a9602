// Package querycache es el store de lectura del dashboard: último valor conocido
// por (scope, entity), con invalidación, cancelación de fetches en curso,
// refetch forzado y de-duplicación de fetches por key.
package querycache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	ErrNoFetcher = errors.New("querycache: no fetcher for key")
	ErrCanceled  = errors.New("querycache: fetch superseded")
	ErrClosed    = errors.New("querycache: store closed")
)

// FetchFunc trae el valor fresco de una key desde el API.
type FetchFunc func(ctx context.Context) (any, error)

// Resolver mapea una key a su fetch. ok=false => la key solo se escribe a mano
// (p.ej. "medication-schedules" sin scope).
type Resolver func(Key) (FetchFunc, bool)

// Chain prueba los resolvers en orden; gana el primero que resuelve.
func Chain(resolvers ...Resolver) Resolver {
	return func(k Key) (FetchFunc, bool) {
		for _, r := range resolvers {
			if r == nil {
				continue
			}
			if f, ok := r(k); ok {
				return f, true
			}
		}
		return nil, false
	}
}

// Updater recibe el valor actual (nil si no hay) y devuelve el nuevo.
// Devolver nil deja la key sin valor.
type Updater func(old any) any

// Listener se invoca (fuera del lock) cada vez que cambia el valor de una key.
type Listener func(key Key, value any)

type entry struct {
	value     any
	has       bool
	stale     bool
	err       error
	updatedAt time.Time

	// gen se incrementa en cada CancelInflight; un fetch solo escribe si
	// la generación con la que arrancó sigue vigente.
	gen      uint64
	inflight bool
	// ver cambia con cada escritura; un fetch que arrancó antes de una
	// escritura no la pisa.
	ver      uint64
	cancel   context.CancelFunc
}

type Store struct {
	mu      sync.Mutex
	entries map[Key]*entry

	resolve Resolver
	group   singleflight.Group

	listeners map[Key]map[int]Listener
	nextLID   int

	ctx    context.Context
	stop   context.CancelFunc
	wg     sync.WaitGroup
	log    *zap.Logger
	now    func() time.Time
	closed bool
	resets uint64
}

// New crea un store aislado. Lo crea la raíz de la aplicación y se pasa por
// referencia a servicios y handlers.
func New(resolve Resolver, log *zap.Logger) *Store {
	if resolve == nil {
		resolve = func(Key) (FetchFunc, bool) { return nil, false }
	}
	if log == nil {
		log = zap.NewNop()
	}
	ctx, stop := context.WithCancel(context.Background())
	return &Store{
		entries:   make(map[Key]*entry),
		resolve:   resolve,
		listeners: make(map[Key]map[int]Listener),
		ctx:       ctx,
		stop:      stop,
		log:       log,
		now:       time.Now,
	}
}

// Close cancela todos los fetches en curso y espera a que terminen.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.stop()
	s.wg.Wait()
}

// entryLocked requiere s.mu tomado.
func (s *Store) entryLocked(key Key) *entry {
	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}
	return e
}

// Read devuelve el último valor conocido sin bloquear. Si no hay valor o está
// stale (y no hay fetch en curso), dispara un fetch en background.
func (s *Store) Read(key Key) (any, bool) {
	s.mu.Lock()
	e := s.entryLocked(key)
	v, has := e.value, e.has
	needFetch := (!has || e.stale) && !e.inflight
	s.mu.Unlock()

	if needFetch {
		s.background(key)
	}
	return v, has
}

// Peek devuelve el valor sin disparar fetches.
func (s *Store) Peek(key Key) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	return e.value, e.has
}

// Query es la lectura bloqueante para la vista: valor fresco => lo devuelve;
// stale => lo devuelve y revalida en background; ausente => espera el fetch
// (compartido con otros lectores de la misma key).
func (s *Store) Query(ctx context.Context, key Key) (any, error) {
	s.mu.Lock()
	e := s.entryLocked(key)
	v, has, stale, inflight := e.value, e.has, e.stale, e.inflight
	s.mu.Unlock()

	if has {
		if stale && !inflight {
			s.background(key)
		}
		return v, nil
	}
	return s.load(ctx, key, false, true)
}

// State expone metadata de una key (para la vista / tests).
type State struct {
	Has       bool
	Stale     bool
	Fetching  bool
	Err       error
	UpdatedAt time.Time
}

func (s *Store) State(key Key) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return State{}
	}
	return State{
		Has:       e.has,
		Stale:     e.stale,
		Fetching:  e.inflight,
		Err:       e.err,
		UpdatedAt: e.updatedAt,
	}
}

// Write reemplaza el valor por updater(actual). Usado por las escrituras optimistas.
func (s *Store) Write(key Key, update Updater) {
	s.mu.Lock()
	e := s.entryLocked(key)
	var old any
	if e.has {
		old = e.value
	}
	nv := update(old)
	s.setLocked(e, nv)
	s.mu.Unlock()

	s.notify(key, nv)
}

// Set es Write con un valor fijo.
func (s *Store) Set(key Key, v any) {
	s.Write(key, func(any) any { return v })
}

func (s *Store) setLocked(e *entry, v any) {
	e.value = v
	e.has = v != nil
	e.ver++
	e.updatedAt = s.now()
}

// Invalidate marca la key como stale; la próxima lectura revalida.
func (s *Store) Invalidate(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entryLocked(key).stale = true
}

// CancelInflight descarta cualquier fetch en curso para la key: su resultado
// no se escribirá aunque llegue después.
func (s *Store) CancelInflight(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked(s.entryLocked(key))
}

func (s *Store) cancelLocked(e *entry) {
	e.gen++
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.inflight = false
}

// Reset descarta todos los valores y cancela los fetches en curso (cierre de sesión).
// Las entradas se conservan para que un fetch viejo no escriba al terminar.
func (s *Store) Reset() {
	s.mu.Lock()
	s.resets++
	keys := make([]Key, 0, len(s.entries))
	for k, e := range s.entries {
		s.cancelLocked(e)
		had := e.has
		e.value, e.has, e.stale, e.err = nil, false, false, nil
		e.ver++
		if had {
			keys = append(keys, k)
		}
	}
	s.mu.Unlock()

	for _, k := range keys {
		s.notify(k, nil)
	}
}

// Refetch fuerza un fetch inmediato (cancelando el que hubiera) y espera el resultado.
// Una key sin fetcher devuelve ErrNoFetcher.
func (s *Store) Refetch(ctx context.Context, key Key) error {
	_, err := s.load(ctx, key, true, true)
	return err
}

func (s *Store) background(key Key) {
	if _, ok := s.resolve(key); !ok {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		if _, err := s.load(s.ctx, key, false, false); err != nil && !errors.Is(err, ErrCanceled) {
			s.log.Warn("background fetch failed", zap.String("key", key.String()), zap.Error(err))
		}
	}()
}

// maxSuperseded limita cuántas veces un lector reintenta cuando su fetch fue cancelado.
const maxSuperseded = 3

// load trae la key. Con retry, un lector cuyo fetch fue cancelado devuelve el
// valor escrito mientras tanto o reintenta; un Reset lo corta con ErrCanceled.
// Los fetches en background nunca reintentan.
func (s *Store) load(ctx context.Context, key Key, force, retry bool) (any, error) {
	fetch, ok := s.resolve(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoFetcher, key)
	}

	s.mu.Lock()
	resets := s.resets
	s.mu.Unlock()

	for attempt := 0; ; attempt++ {
		v, err := s.loadOnce(ctx, key, fetch, force)
		if !errors.Is(err, ErrCanceled) || !retry || attempt >= maxSuperseded {
			return v, err
		}
		if cur, has := s.Peek(key); has {
			return cur, nil
		}
		s.mu.Lock()
		reset := s.resets != resets
		s.mu.Unlock()
		if reset {
			return nil, ErrCanceled
		}
		force = false
	}
}

func (s *Store) loadOnce(ctx context.Context, key Key, fetch FetchFunc, force bool) (any, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	e := s.entryLocked(key)
	if force {
		s.cancelLocked(e)
	}
	gen := e.gen
	s.mu.Unlock()

	// Misma key + misma generación => un solo fetch compartido.
	ch := s.group.DoChan(fmt.Sprintf("%s#%d", key, gen), func() (any, error) {
		return s.run(key, gen, fetch, force)
	})

	select {
	case r := <-ch:
		return r.Val, r.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Store) run(key Key, gen uint64, fetch FetchFunc, force bool) (any, error) {
	fctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	s.mu.Lock()
	e := s.entryLocked(key)
	if e.gen != gen {
		s.mu.Unlock()
		return nil, ErrCanceled
	}
	// Otro lector ya lo trajo entre que miramos el estado y llegamos acá.
	if !force && e.has && !e.stale {
		v := e.value
		s.mu.Unlock()
		return v, nil
	}
	e.inflight = true
	e.cancel = cancel
	ver := e.ver
	s.mu.Unlock()

	v, err := fetch(fctx)

	s.mu.Lock()
	if e.gen != gen {
		// cancelado mientras volaba
		s.mu.Unlock()
		s.log.Debug("discarding superseded fetch", zap.String("key", key.String()))
		return nil, ErrCanceled
	}
	e.inflight = false
	e.cancel = nil
	if e.ver != ver {
		// alguien escribió la key después de que arrancó el fetch
		s.mu.Unlock()
		s.log.Debug("discarding fetch older than last write", zap.String("key", key.String()))
		return nil, ErrCanceled
	}
	if err != nil {
		e.err = err
		s.mu.Unlock()
		return nil, err
	}
	e.err = nil
	e.stale = false
	s.setLocked(e, v)
	s.mu.Unlock()

	s.notify(key, v)
	return v, nil
}

// Subscribe registra un listener para la key. Devuelve la función para desuscribir.
func (s *Store) Subscribe(key Key, fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextLID
	s.nextLID++
	if s.listeners[key] == nil {
		s.listeners[key] = map[int]Listener{}
	}
	s.listeners[key][id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners[key], id)
	}
}

func (s *Store) notify(key Key, v any) {
	s.mu.Lock()
	fns := make([]Listener, 0, len(s.listeners[key]))
	for _, fn := range s.listeners[key] {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(key, v)
	}
}

// Get es Read tipado. Un valor de otro tipo cuenta como ausente.
func Get[T any](s *Store, key Key) (T, bool) {
	v, ok := s.Read(key)
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// QueryAs es Query tipado.
func QueryAs[T any](ctx context.Context, s *Store, key Key) (T, error) {
	var zero T
	v, err := s.Query(ctx, key)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("querycache: unexpected %T for %s", v, key)
	}
	return t, nil
}
