package optimistic_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"medication-dashboard/internal/platform/optimistic"
	"medication-dashboard/internal/platform/querycache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var listKey = querycache.By("p1", querycache.Medications)

// fakeServer guarda la "verdad" del lado del API.
type fakeServer struct {
	mu    sync.Mutex
	items []string
	reads int32
}

func (f *fakeServer) list(ctx context.Context) (any, error) {
	atomic.AddInt32(&f.reads, 1)
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.items...), nil
}

func (f *fakeServer) add(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, name)
	return name
}

func newStore(t *testing.T, srv *fakeServer) *querycache.Store {
	t.Helper()
	s := querycache.New(func(k querycache.Key) (querycache.FetchFunc, bool) {
		if k == listKey {
			return srv.list, true
		}
		return nil, false
	}, zap.NewNop())
	t.Cleanup(s.Close)
	return s
}

func appendSpec(srv *fakeServer, commitErr error, commitGate <-chan struct{}) optimistic.Spec[string, string] {
	return optimistic.Spec[string, string]{
		Name: "append",
		Keys: func(string) []querycache.Key { return []querycache.Key{listKey} },
		Optimistic: func(name string, _ time.Time) []querycache.Patch {
			return []querycache.Patch{{Key: listKey, Update: func(old any) any {
				cur, _ := old.([]string)
				return append(append([]string(nil), cur...), optimistic.ProvisionalPrefix+name)
			}}}
		},
		Commit: func(ctx context.Context, name string) (string, error) {
			if commitGate != nil {
				<-commitGate
			}
			if commitErr != nil {
				return "", commitErr
			}
			return srv.add(name), nil
		},
	}
}

func TestProvisionalIDs(t *testing.T) {
	id := optimistic.NewProvisionalID()
	assert.True(t, optimistic.IsProvisional(id))
	assert.NotEqual(t, id, optimistic.NewProvisionalID())
	assert.False(t, optimistic.IsProvisional("m-1"))
}

func TestRun_OptimisticThenConvergesToServer(t *testing.T) {
	srv := &fakeServer{items: []string{"a"}}
	s := newStore(t, srv)
	_, err := s.Query(context.Background(), listKey)
	require.NoError(t, err)

	gate := make(chan struct{})
	m := optimistic.New(s, appendSpec(srv, nil, gate), zap.NewNop())
	inst := m.Start()
	assert.Equal(t, optimistic.StatusIdle, inst.Status())

	done := make(chan error, 1)
	go func() {
		_, err := inst.Run(context.Background(), "x")
		done <- err
	}()

	require.Eventually(t, func() bool {
		v, _ := s.Peek(listKey)
		return assert.ObjectsAreEqual([]string{"a", "temp-x"}, v)
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, optimistic.StatusPending, inst.Status())

	close(gate)
	require.NoError(t, <-done)

	v, _ := s.Peek(listKey)
	assert.Equal(t, []string{"a", "x"}, v)
	assert.False(t, s.State(listKey).Stale)
	assert.Equal(t, optimistic.StatusSuccess, inst.Status())
	assert.Equal(t, "x", inst.Result())
}

func TestRun_FailureRollsBackBeforeSettle(t *testing.T) {
	srv := &fakeServer{items: []string{"a"}}
	s := newStore(t, srv)
	_, err := s.Query(context.Background(), listKey)
	require.NoError(t, err)

	var seen []any
	s.Subscribe(listKey, func(_ querycache.Key, v any) { seen = append(seen, v) })

	boom := errors.New("boom")
	m := optimistic.New(s, appendSpec(srv, boom, nil), zap.NewNop())
	inst := m.Start()

	_, err = inst.Run(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, boom, err)
	assert.Equal(t, optimistic.StatusError, inst.Status())
	assert.ErrorIs(t, inst.Err(), boom)

	// optimista, rollback exacto, refetch del settle
	require.Len(t, seen, 3)
	assert.Equal(t, []string{"a", "temp-x"}, seen[0])
	assert.Equal(t, []string{"a"}, seen[1])
	assert.Equal(t, []string{"a"}, seen[2])
}

func TestRun_FailureRestoresAbsentKey(t *testing.T) {
	// sin fetcher: el settle no puede repoblar, queda lo restaurado
	s := querycache.New(nil, zap.NewNop())
	t.Cleanup(s.Close)

	boom := errors.New("boom")
	m := optimistic.New(s, appendSpec(&fakeServer{}, boom, nil), zap.NewNop())

	_, err := m.Run(context.Background(), "x")
	assert.ErrorIs(t, err, boom)

	_, ok := s.Peek(listKey)
	assert.False(t, ok)
}

func TestRun_PanickingCommitStillRollsBackAndSettles(t *testing.T) {
	srv := &fakeServer{items: []string{"a"}}
	s := newStore(t, srv)
	_, err := s.Query(context.Background(), listKey)
	require.NoError(t, err)

	spec := appendSpec(srv, nil, nil)
	spec.Commit = func(context.Context, string) (string, error) {
		panic("nil repo")
	}
	inst := optimistic.New(s, spec, zap.NewNop()).Start()

	assert.PanicsWithValue(t, "nil repo", func() {
		_, _ = inst.Run(context.Background(), "x")
	})

	v, ok := s.Peek(listKey)
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, v)
	assert.Equal(t, int32(2), atomic.LoadInt32(&srv.reads), "settle must refetch")
	assert.Equal(t, optimistic.StatusError, inst.Status())
	assert.ErrorIs(t, inst.Err(), optimistic.ErrCommitPanicked)
}

func TestInstance_RunsOnce(t *testing.T) {
	srv := &fakeServer{}
	s := newStore(t, srv)
	m := optimistic.New(s, appendSpec(srv, nil, nil), zap.NewNop())

	inst := m.Start()
	_, err := inst.Run(context.Background(), "x")
	require.NoError(t, err)

	_, err = inst.Run(context.Background(), "y")
	assert.ErrorIs(t, err, optimistic.ErrAlreadyStarted)
	assert.Equal(t, optimistic.StatusSuccess, inst.Status())
}

func TestSnapshotApplyRollback_ExplicitPhases(t *testing.T) {
	srv := &fakeServer{}
	s := newStore(t, srv)
	s.Set(listKey, []string{"a"})

	m := optimistic.New(s, appendSpec(srv, nil, nil), zap.NewNop())

	tok := m.Snapshot("x")
	assert.Equal(t, []querycache.Key{listKey}, tok.Keys())

	m.Apply(tok, "x")
	v, _ := s.Peek(listKey)
	assert.Equal(t, []string{"a", "temp-x"}, v)

	assert.True(t, m.Rollback(tok))
	assert.False(t, m.Rollback(tok))
	v, _ = s.Peek(listKey)
	assert.Equal(t, []string{"a"}, v)
}

func TestSnapshot_CancelsInflightFetch(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var calls int32

	s := querycache.New(func(k querycache.Key) (querycache.FetchFunc, bool) {
		return func(ctx context.Context) (any, error) {
			if atomic.AddInt32(&calls, 1) == 1 {
				close(started)
				<-release
				return []string{"stale"}, nil
			}
			return []string{"server"}, nil
		}, true
	}, zap.NewNop())
	t.Cleanup(s.Close)

	s.Read(listKey)
	<-started

	m := optimistic.New(s, appendSpec(&fakeServer{}, nil, nil), zap.NewNop())
	tok := m.Snapshot("x")
	m.Apply(tok, "x")
	close(release)

	time.Sleep(50 * time.Millisecond)
	v, _ := s.Peek(listKey)
	assert.Equal(t, []string{"temp-x"}, v)
}

func TestSettle_UsesSettleKeysAndIgnoresMissingFetchers(t *testing.T) {
	srv := &fakeServer{items: []string{"a"}}
	s := newStore(t, srv)
	noFetcher := querycache.All(querycache.MedicationSchedules)
	s.Set(noFetcher, "kept")

	spec := appendSpec(srv, nil, nil)
	spec.Settle = func(string) []querycache.Key { return []querycache.Key{listKey, noFetcher} }

	_, err := optimistic.New(s, spec, zap.NewNop()).Run(context.Background(), "b")
	require.NoError(t, err)

	v, _ := s.Peek(listKey)
	assert.Equal(t, []string{"a", "b"}, v)
	v, _ = s.Peek(noFetcher)
	assert.Equal(t, "kept", v)
	assert.True(t, s.State(noFetcher).Stale)
}

func TestSettle_SurvivesCallerCancellation(t *testing.T) {
	srv := &fakeServer{items: []string{"a"}}
	s := newStore(t, srv)

	ctx, cancel := context.WithCancel(context.Background())
	spec := appendSpec(srv, nil, nil)
	commit := spec.Commit
	spec.Commit = func(c context.Context, name string) (string, error) {
		out, err := commit(c, name)
		cancel()
		return out, err
	}

	_, err := optimistic.New(s, spec, zap.NewNop()).Run(ctx, "b")
	require.NoError(t, err)

	v, _ := s.Peek(listKey)
	assert.Equal(t, []string{"a", "b"}, v)
}

func TestConcurrentRuns_LastSettleWinsWithoutLeakingProvisional(t *testing.T) {
	srv := &fakeServer{}
	s := newStore(t, srv)
	_, err := s.Query(context.Background(), listKey)
	require.NoError(t, err)

	m := optimistic.New(s, appendSpec(srv, nil, nil), zap.NewNop())

	var wg sync.WaitGroup
	for _, name := range []string{"x", "y"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			_, err := m.Run(context.Background(), name)
			assert.NoError(t, err)
		}(name)
	}
	wg.Wait()

	v, _ := s.Peek(listKey)
	assert.ElementsMatch(t, []string{"x", "y"}, v)
	for _, it := range v.([]string) {
		assert.False(t, optimistic.IsProvisional(it))
	}
}
