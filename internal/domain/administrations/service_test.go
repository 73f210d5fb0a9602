package administrations

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"medication-dashboard/internal/platform/optimistic"
	"medication-dashboard/internal/platform/querycache"
	"medication-dashboard/internal/platform/validate"

	"go.uber.org/zap"
)

type testRepo struct {
	mu      sync.Mutex
	byPID   map[string][]MedicationAdministration
	owner   map[string]string // medicationID -> patientID
	seq     int
	gate    chan struct{}
	failErr error
	sent    []CreateMedicationAdministrationData
}

func newTestRepo() *testRepo {
	return &testRepo{
		byPID: map[string][]MedicationAdministration{},
		owner: map[string]string{"med-1": "p1"},
	}
}

func (r *testRepo) ListByPatient(ctx context.Context, patientID string) ([]MedicationAdministration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]MedicationAdministration{}, r.byPID[patientID]...), nil
}

func (r *testRepo) Create(ctx context.Context, d CreateMedicationAdministrationData) (MedicationAdministration, error) {
	if r.gate != nil {
		<-r.gate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, d)
	if r.failErr != nil {
		return MedicationAdministration{}, r.failErr
	}
	r.seq++
	a := MedicationAdministration{
		AdministrationID:  fmt.Sprintf("adm-%d", r.seq),
		MedicationID:      d.MedicationID,
		ScheduledDatetime: d.ScheduledDatetime,
		ActualDatetime:    d.ActualDatetime,
		AdministeredBy:    d.AdministeredBy,
	}
	pid := r.owner[d.MedicationID]
	r.byPID[pid] = append(r.byPID[pid], a)
	return a, nil
}

func newTestService(t *testing.T, repo *testRepo) (*Service, *querycache.Store) {
	t.Helper()
	store := querycache.New(Fetchers(repo), zap.NewNop())
	t.Cleanup(store.Close)
	svc := NewService(repo, store, zap.NewNop())
	svc.loc = time.UTC
	return svc, store
}

func dose() CreateMedicationAdministrationData {
	return CreateMedicationAdministrationData{
		MedicationID:      "med-1",
		ScheduledDatetime: "2025-03-02 08:00:00",
		ActualDatetime:    "2025-03-02T08:05",
		AdministeredBy:    " nurse ",
	}
}

func peek(store *querycache.Store, patientID string) ([]MedicationAdministration, bool) {
	v, ok := store.Peek(Key(patientID))
	if !ok {
		return nil, false
	}
	out, ok := v.([]MedicationAdministration)
	return out, ok
}

func TestRecord_NormalizesDatetimesOnTheWire(t *testing.T) {
	repo := newTestRepo()
	svc, _ := newTestService(t, repo)

	if _, err := svc.Record(context.Background(), "p1", dose()); err != nil {
		t.Fatalf("record: %v", err)
	}
	got := repo.sent[0]
	if got.ScheduledDatetime != "2025-03-02 08:00:00" || got.ActualDatetime != "2025-03-02 08:05:00" {
		t.Fatalf("unexpected datetimes %+v", got)
	}
	if got.AdministeredBy != "nurse" {
		t.Fatalf("expected trimmed administered_by, got %q", got.AdministeredBy)
	}
}

func TestRecord_AppendsProvisionalWhenCached(t *testing.T) {
	repo := newTestRepo()
	repo.byPID["p1"] = []MedicationAdministration{{AdministrationID: "adm-0", MedicationID: "med-1"}}
	svc, store := newTestService(t, repo)

	if _, err := svc.List(context.Background(), "p1"); err != nil {
		t.Fatalf("list: %v", err)
	}

	repo.gate = make(chan struct{})
	done := make(chan error, 1)
	go func() {
		_, err := svc.Record(context.Background(), "p1", dose())
		done <- err
	}()

	deadline := time.Now().Add(time.Second)
	for {
		got, _ := peek(store, "p1")
		if len(got) == 2 {
			if !optimistic.IsProvisional(got[1].AdministrationID) || got[1].ScheduledDatetime != "2025-03-02 08:00:00" {
				t.Fatalf("unexpected optimistic record %+v", got[1])
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("optimistic record never appeared")
		}
		time.Sleep(5 * time.Millisecond)
	}

	close(repo.gate)
	if err := <-done; err != nil {
		t.Fatalf("record: %v", err)
	}

	got, _ := peek(store, "p1")
	if len(got) != 2 || got[1].AdministrationID != "adm-1" {
		t.Fatalf("expected server list, got %+v", got)
	}
}

func TestRecord_NotCachedStaysAbsentUntilSettle(t *testing.T) {
	repo := newTestRepo()
	repo.gate = make(chan struct{})
	svc, store := newTestService(t, repo)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Record(context.Background(), "p1", dose())
		done <- err
	}()

	time.Sleep(30 * time.Millisecond)
	if _, ok := store.Peek(Key("p1")); ok {
		t.Fatal("expected no optimistic entry for an uncached list")
	}

	close(repo.gate)
	if err := <-done; err != nil {
		t.Fatalf("record: %v", err)
	}
	if got, ok := peek(store, "p1"); !ok || len(got) != 1 {
		t.Fatalf("expected settled list with 1 record, got %+v", got)
	}
}

func TestRecord_NetworkErrorRestoresCache(t *testing.T) {
	repo := newTestRepo()
	repo.byPID["p1"] = []MedicationAdministration{{AdministrationID: "adm-0", MedicationID: "med-1"}}
	cause := errors.New("dial tcp: connection refused")
	repo.failErr = fmt.Errorf("network error: %w", cause)
	svc, store := newTestService(t, repo)

	if _, err := svc.List(context.Background(), "p1"); err != nil {
		t.Fatalf("list: %v", err)
	}

	_, err := svc.Record(context.Background(), "p1", dose())
	if !errors.Is(err, cause) {
		t.Fatalf("expected error carrying the original cause, got %v", err)
	}

	got, _ := peek(store, "p1")
	if len(got) != 1 || got[0].AdministrationID != "adm-0" {
		t.Fatalf("expected pre-call value, got %+v", got)
	}
}

func TestRecord_Validation(t *testing.T) {
	repo := newTestRepo()
	svc, store := newTestService(t, repo)

	_, err := svc.Record(context.Background(), "p1", CreateMedicationAdministrationData{
		ActualDatetime: "yesterday",
	})
	if !errors.Is(err, validate.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	fields := map[string]bool{}
	for _, f := range validate.Fields(err) {
		fields[f.Field] = true
	}
	for _, want := range []string{"medication_id", "scheduled_datetime", "actual_datetime"} {
		if !fields[want] {
			t.Fatalf("missing field error %q in %+v", want, fields)
		}
	}
	if len(repo.sent) != 0 {
		t.Fatal("validation must not reach the API")
	}
	if _, ok := store.Peek(Key("p1")); ok {
		t.Fatal("validation must not touch the cache")
	}
}

func TestParseDateTime(t *testing.T) {
	for _, s := range []string{"2025-03-02 08:00:00", "2025-03-02T08:00:00", "2025-03-02T08:00:00Z", "2025-03-02T08:00"} {
		got, err := ParseDateTime(s, time.UTC)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		if FormatDateTime(got) != "2025-03-02 08:00:00" {
			t.Fatalf("parse %q: got %s", s, FormatDateTime(got))
		}
	}
	if _, err := ParseDateTime("03/02/2025", time.UTC); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
