package schedules

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

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	mu      sync.Mutex
	byMed   map[string][]MedicationSchedule // medicationID -> schedules
	seq     int
	gate    chan struct{}
	failErr error
}

func newTestRepo() *testRepo {
	return &testRepo{byMed: map[string][]MedicationSchedule{}}
}

func (r *testRepo) ListByPatient(ctx context.Context, patientID string) (SchedulesResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	resp := SchedulesResponse{Message: "ok", Patient: PatientSummary{PatientID: patientID}}
	for medID, items := range r.byMed {
		resp.SchedulesByMedication = append(resp.SchedulesByMedication, MedicationWithSchedules{
			MedicationID: medID,
			Schedules:    append([]MedicationSchedule(nil), items...),
		})
		resp.Count += len(items)
	}
	return resp, nil
}

func (r *testRepo) Create(ctx context.Context, d CreateMedicationScheduleData) (MedicationSchedule, error) {
	out, err := r.CreateBulk(ctx, []CreateMedicationScheduleData{d})
	if err != nil {
		return MedicationSchedule{}, err
	}
	return out[0], nil
}

func (r *testRepo) CreateBulk(ctx context.Context, data []CreateMedicationScheduleData) ([]MedicationSchedule, error) {
	if r.gate != nil {
		<-r.gate
	}
	if r.failErr != nil {
		return nil, r.failErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]MedicationSchedule, 0, len(data))
	for _, d := range data {
		r.seq++
		s := MedicationSchedule{
			ScheduleID:   fmt.Sprintf("sch-%d", r.seq),
			MedicationID: d.MedicationID,
			DayOfWeek:    d.DayOfWeek,
			TimeOfDay:    d.TimeOfDay,
			IsActive:     true,
		}
		r.byMed[d.MedicationID] = append(r.byMed[d.MedicationID], s)
		out = append(out, s)
	}
	return out, nil
}

func newTestService(t *testing.T, repo *testRepo) (*Service, *querycache.Store) {
	t.Helper()
	owners := NewOwners()
	store := querycache.New(Fetchers(repo, owners), zap.NewNop())
	t.Cleanup(store.Close)
	return NewService(repo, store, owners, zap.NewNop()), store
}

func bulk(patientID, medID string, times ...string) BulkInput {
	in := BulkInput{PatientID: patientID}
	for i, tm := range times {
		in.Schedules = append(in.Schedules, CreateMedicationScheduleData{
			MedicationID: medID, DayOfWeek: i % 7, TimeOfDay: tm, IsActive: true,
		})
	}
	return in
}

func peekByMed(store *querycache.Store, medID string) []MedicationSchedule {
	v, _ := store.Peek(MedicationKey(medID))
	out, _ := v.([]MedicationSchedule)
	return out
}

func TestNormalizeTimeOfDay(t *testing.T) {
	cases := map[string]struct {
		want string
		ok   bool
	}{
		"08:00":    {"08:00:00", true},
		"8:30":     {"08:30:00", true},
		"20:15:30": {"20:15:30", true},
		"25:00":    {"25:00", false},
		"":         {"", false},
	}
	for in, tc := range cases {
		got, ok := NormalizeTimeOfDay(in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("NormalizeTimeOfDay(%q) = %q,%v want %q,%v", in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestCreateBulk_Validation(t *testing.T) {
	svc, _ := newTestService(t, newTestRepo())

	cases := map[string]BulkInput{
		"empty batch": {PatientID: "p1"},
		"mixed meds":  {PatientID: "p1", Schedules: []CreateMedicationScheduleData{{MedicationID: "m1", TimeOfDay: "08:00"}, {MedicationID: "m2", TimeOfDay: "09:00"}}},
		"bad day":     {PatientID: "p1", Schedules: []CreateMedicationScheduleData{{MedicationID: "m1", DayOfWeek: 7, TimeOfDay: "08:00"}}},
		"bad time":    {PatientID: "p1", Schedules: []CreateMedicationScheduleData{{MedicationID: "m1", TimeOfDay: "8am"}}},
		"no patient":  {Schedules: []CreateMedicationScheduleData{{MedicationID: "m1", TimeOfDay: "08:00"}}},
		"missing med": {PatientID: "p1", Schedules: []CreateMedicationScheduleData{{TimeOfDay: "08:00"}}},
	}
	for name, in := range cases {
		if _, err := svc.CreateBulk(context.Background(), in); !errors.Is(err, validate.ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}
}

func TestFetchers_MedicationKeyNeedsKnownOwner(t *testing.T) {
	owners := NewOwners()
	r := Fetchers(newTestRepo(), owners)

	if _, ok := r(MedicationKey("m1")); ok {
		t.Fatal("expected no fetcher for unknown medication owner")
	}
	if _, ok := r(AllKey()); ok {
		t.Fatal("expected no fetcher for the all key")
	}
	owners.Remember("m1", "p1")
	if _, ok := r(MedicationKey("m1")); !ok {
		t.Fatal("expected fetcher once owner is known")
	}
	if _, ok := r(PatientKey("p1")); !ok {
		t.Fatal("expected fetcher for patient key")
	}
}

func TestCreateBulk_OptimisticAppendThenServerTruth(t *testing.T) {
	repo := newTestRepo()
	repo.byMed["m1"] = []MedicationSchedule{{ScheduleID: "sch-0", MedicationID: "m1", TimeOfDay: "07:00:00"}}
	svc, store := newTestService(t, repo)

	if _, err := svc.ForMedication(context.Background(), "p1", "m1"); err != nil {
		t.Fatalf("for medication: %v", err)
	}

	repo.gate = make(chan struct{})
	done := make(chan error, 1)
	go func() {
		_, err := svc.CreateBulk(context.Background(), bulk("p1", "m1", "08:00", "20:00"))
		done <- err
	}()

	deadline := time.Now().Add(time.Second)
	for len(peekByMed(store, "m1")) != 3 {
		if time.Now().After(deadline) {
			t.Fatalf("optimistic schedules never appeared: %+v", peekByMed(store, "m1"))
		}
		time.Sleep(5 * time.Millisecond)
	}
	opt := peekByMed(store, "m1")
	if !optimistic.IsProvisional(opt[1].ScheduleID) || opt[1].TimeOfDay != "08:00:00" {
		t.Fatalf("unexpected optimistic schedule %+v", opt[1])
	}

	close(repo.gate)
	if err := <-done; err != nil {
		t.Fatalf("create bulk: %v", err)
	}

	final := peekByMed(store, "m1")
	if len(final) != 3 {
		t.Fatalf("expected 3 schedules after settle, got %+v", final)
	}
	for _, s := range final {
		if optimistic.IsProvisional(s.ScheduleID) {
			t.Fatalf("provisional schedule leaked: %+v", s)
		}
	}

	resp, err := svc.List(context.Background(), "p1")
	if err != nil || resp.Count != 3 {
		t.Fatalf("expected patient envelope refreshed with 3 schedules, got %+v err=%v", resp, err)
	}
}

func TestCreateBulk_FailureRestoresAllSnapshottedKeys(t *testing.T) {
	repo := newTestRepo()
	repo.failErr = errors.New("network error: boom")
	svc, store := newTestService(t, repo)

	if _, err := svc.ForMedication(context.Background(), "p1", "m1"); err != nil {
		t.Fatalf("for medication: %v", err)
	}
	store.Set(AllKey(), "all-snapshot")

	var seen [][]MedicationSchedule
	store.Subscribe(MedicationKey("m1"), func(_ querycache.Key, v any) {
		s, _ := v.([]MedicationSchedule)
		seen = append(seen, s)
	})

	_, err := svc.CreateBulk(context.Background(), bulk("p1", "m1", "08:00"))
	if !errors.Is(err, repo.failErr) {
		t.Fatalf("expected commit error, got %v", err)
	}

	if len(seen) < 2 || len(seen[0]) != 1 || len(seen[1]) != 0 {
		t.Fatalf("expected optimistic then rollback to empty, got %+v", seen)
	}
	if v, _ := store.Peek(AllKey()); v != "all-snapshot" {
		t.Fatalf("expected all key restored, got %v", v)
	}
}

func TestCreateBulk_BackToBackLastSettleWins(t *testing.T) {
	repo := newTestRepo()
	svc, store := newTestService(t, repo)

	if _, err := svc.ForMedication(context.Background(), "p1", "m1"); err != nil {
		t.Fatalf("for medication: %v", err)
	}

	var wg sync.WaitGroup
	for _, tm := range []string{"08:00", "20:00"} {
		wg.Add(1)
		go func(tm string) {
			defer wg.Done()
			if _, err := svc.CreateBulk(context.Background(), bulk("p1", "m1", tm)); err != nil {
				t.Errorf("create bulk: %v", err)
			}
		}(tm)
	}
	wg.Wait()

	final := peekByMed(store, "m1")
	if len(final) != 2 {
		t.Fatalf("expected both schedules from the server, got %+v", final)
	}
	for _, s := range final {
		if optimistic.IsProvisional(s.ScheduleID) {
			t.Fatalf("provisional schedule leaked: %+v", s)
		}
	}
}
