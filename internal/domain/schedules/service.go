package schedules

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"medication-dashboard/internal/domain/medications"
	"medication-dashboard/internal/platform/optimistic"
	"medication-dashboard/internal/platform/querycache"
	"medication-dashboard/internal/platform/validate"

	"go.uber.org/zap"
)

func PatientKey(patientID string) querycache.Key {
	return querycache.By(patientID, querycache.MedicationSchedules)
}

func MedicationKey(medicationID string) querycache.Key {
	return querycache.ByMedication(medicationID, querycache.MedicationSchedules)
}

// AllKey no tiene fetcher: solo se snapshotea e invalida.
func AllKey() querycache.Key {
	return querycache.All(querycache.MedicationSchedules)
}

// Owners recuerda a qué paciente pertenece cada medicamento visto, para poder
// traer las keys por medicamento (el API solo lista horarios por paciente).
type Owners struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewOwners() *Owners {
	return &Owners{m: make(map[string]string)}
}

func (o *Owners) Remember(medicationID, patientID string) {
	if medicationID == "" || patientID == "" {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.m[medicationID] = patientID
}

func (o *Owners) Patient(medicationID string) (string, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	p, ok := o.m[medicationID]
	return p, ok
}

// Fetchers resuelve la key por paciente y, si se conoce el dueño, la key por
// medicamento (proyección del envelope del paciente).
func Fetchers(repo Repository, owners *Owners) querycache.Resolver {
	return func(k querycache.Key) (querycache.FetchFunc, bool) {
		if k.Entity != querycache.MedicationSchedules || k.IsAll() {
			return nil, false
		}

		if medicationID, ok := k.MedicationID(); ok {
			patientID, known := owners.Patient(medicationID)
			if !known {
				return nil, false
			}
			return func(ctx context.Context) (any, error) {
				resp, err := repo.ListByPatient(ctx, patientID)
				if err != nil {
					return nil, err
				}
				out, _ := resp.ForMedication(medicationID)
				if out == nil {
					out = []MedicationSchedule{}
				}
				return out, nil
			}, true
		}

		patientID := k.Scope
		return func(ctx context.Context) (any, error) {
			return repo.ListByPatient(ctx, patientID)
		}, true
	}
}

// BulkInput es un lote de horarios para un único medicamento del paciente.
type BulkInput struct {
	PatientID string
	Schedules []CreateMedicationScheduleData
}

func (in BulkInput) medicationID() string {
	if len(in.Schedules) == 0 {
		return ""
	}
	return in.Schedules[0].MedicationID
}

type Service struct {
	store  *querycache.Store
	owners *Owners
	bulk   *optimistic.Mutation[BulkInput, []MedicationSchedule]
}

// NewService recibe el mismo Owners que se pasó a Fetchers.
func NewService(repo Repository, store *querycache.Store, owners *Owners, log *zap.Logger) *Service {
	if owners == nil {
		owners = NewOwners()
	}
	s := &Service{store: store, owners: owners}

	s.bulk = optimistic.New(store, optimistic.Spec[BulkInput, []MedicationSchedule]{
		Name: "createMedicationSchedulesBulk",
		Keys: func(in BulkInput) []querycache.Key {
			return []querycache.Key{MedicationKey(in.medicationID()), AllKey(), PatientKey(in.PatientID)}
		},
		Cancel: func(in BulkInput) []querycache.Key {
			return querycache.PatientKeys(in.PatientID)
		},
		Optimistic: appendProvisional,
		Commit: func(ctx context.Context, in BulkInput) ([]MedicationSchedule, error) {
			return repo.CreateBulk(ctx, in.Schedules)
		},
		Settle: func(in BulkInput) []querycache.Key {
			return querycache.Union(
				[]querycache.Key{MedicationKey(in.medicationID()), AllKey()},
				querycache.PatientKeys(in.PatientID),
			)
		},
	}, log)

	return s
}

func (s *Service) List(ctx context.Context, patientID string) (SchedulesResponse, error) {
	if strings.TrimSpace(patientID) == "" {
		return SchedulesResponse{}, validate.Errors{{Field: "patient_id", Message: "is required"}}
	}
	return querycache.QueryAs[SchedulesResponse](ctx, s.store, PatientKey(patientID))
}

// ForMedication devuelve los horarios de un medicamento del paciente.
func (s *Service) ForMedication(ctx context.Context, patientID, medicationID string) ([]MedicationSchedule, error) {
	var v validate.Collector
	v.Required("patient_id", patientID)
	v.Required("medication_id", medicationID)
	if err := v.Err(); err != nil {
		return nil, err
	}

	s.owners.Remember(medicationID, patientID)
	return querycache.QueryAs[[]MedicationSchedule](ctx, s.store, MedicationKey(medicationID))
}

// CreateBulk crea un lote de horarios para un medicamento.
func (s *Service) CreateBulk(ctx context.Context, in BulkInput) ([]MedicationSchedule, error) {
	in, err := normalizeBulk(in)
	if err != nil {
		return nil, err
	}
	s.owners.Remember(in.medicationID(), in.PatientID)
	return s.bulk.Run(ctx, in)
}

// appendProvisional agrega los horarios a la lista del medicamento si está cacheada.
func appendProvisional(in BulkInput, now time.Time) []querycache.Patch {
	ts := now.UTC().Format(time.RFC3339)

	return []querycache.Patch{{
		Key: MedicationKey(in.medicationID()),
		Update: func(old any) any {
			cur, ok := old.([]MedicationSchedule)
			if !ok {
				return old
			}
			next := slices.Clone(cur)
			for _, d := range in.Schedules {
				next = append(next, MedicationSchedule{
					ScheduleID:   optimistic.NewProvisionalID(),
					MedicationID: d.MedicationID,
					DayOfWeek:    d.DayOfWeek,
					TimeOfDay:    d.TimeOfDay,
					IsActive:     medications.Flag(d.IsActive),
					CreatedAt:    ts,
					UpdatedAt:    ts,
				})
			}
			return next
		},
	}}
}

func normalizeBulk(in BulkInput) (BulkInput, error) {
	var v validate.Collector

	in.PatientID = strings.TrimSpace(in.PatientID)
	v.Required("patient_id", in.PatientID)
	if len(in.Schedules) == 0 {
		v.Add("schedules", "at least one schedule is required")
		return in, v.Err()
	}

	out := make([]CreateMedicationScheduleData, len(in.Schedules))
	medID := strings.TrimSpace(in.Schedules[0].MedicationID)
	for i, d := range in.Schedules {
		field := "schedules[" + strconv.Itoa(i) + "]"

		d.MedicationID = strings.TrimSpace(d.MedicationID)
		switch {
		case d.MedicationID == "":
			v.Add(field+".medication_id", "is required")
		case d.MedicationID != medID:
			v.Add(field+".medication_id", "all schedules must belong to the same medication")
		}

		v.Check(d.DayOfWeek >= 0 && d.DayOfWeek <= 6, field+".day_of_week", "must be between 0 and 6")

		t, ok := NormalizeTimeOfDay(d.TimeOfDay)
		v.Check(ok, field+".time_of_day", "must be HH:MM or HH:MM:SS")
		d.TimeOfDay = t

		out[i] = d
	}
	in.Schedules = out
	return in, v.Err()
}

// NormalizeTimeOfDay acepta HH:MM o HH:MM:SS y devuelve HH:MM:SS.
func NormalizeTimeOfDay(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.TimeOnly, "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(time.TimeOnly), true
		}
	}
	return s, false
}
