package administrations

import (
	"context"
	"slices"
	"strings"
	"time"

	"medication-dashboard/internal/platform/optimistic"
	"medication-dashboard/internal/platform/querycache"
	"medication-dashboard/internal/platform/validate"

	"go.uber.org/zap"
)

func Key(patientID string) querycache.Key {
	return querycache.By(patientID, querycache.MedicationAdministrations)
}

func Fetchers(repo Repository) querycache.Resolver {
	return func(k querycache.Key) (querycache.FetchFunc, bool) {
		if k.Entity != querycache.MedicationAdministrations || k.IsAll() {
			return nil, false
		}
		patientID := k.Scope
		return func(ctx context.Context) (any, error) {
			return repo.ListByPatient(ctx, patientID)
		}, true
	}
}

// recordInput agrega el paciente, que el payload no lleva pero define la key.
type recordInput struct {
	PatientID string
	Data      CreateMedicationAdministrationData
}

type Service struct {
	store  *querycache.Store
	loc    *time.Location
	record *optimistic.Mutation[recordInput, MedicationAdministration]
}

func NewService(repo Repository, store *querycache.Store, log *zap.Logger) *Service {
	s := &Service{store: store, loc: time.Local}

	s.record = optimistic.New(store, optimistic.Spec[recordInput, MedicationAdministration]{
		Name:       "createMedicationAdministration",
		Keys:       func(in recordInput) []querycache.Key { return []querycache.Key{Key(in.PatientID)} },
		Optimistic: appendProvisional,
		Commit: func(ctx context.Context, in recordInput) (MedicationAdministration, error) {
			return repo.Create(ctx, in.Data)
		},
	}, log)

	return s
}

func (s *Service) List(ctx context.Context, patientID string) ([]MedicationAdministration, error) {
	if strings.TrimSpace(patientID) == "" {
		return nil, validate.Errors{{Field: "patient_id", Message: "is required"}}
	}
	return querycache.QueryAs[[]MedicationAdministration](ctx, s.store, Key(patientID))
}

// Record registra una dosis como administrada.
func (s *Service) Record(ctx context.Context, patientID string, data CreateMedicationAdministrationData) (MedicationAdministration, error) {
	in, err := s.normalize(recordInput{PatientID: patientID, Data: data})
	if err != nil {
		return MedicationAdministration{}, err
	}
	return s.record.Run(ctx, in)
}

// normalize valida y lleva las fechas al formato del API.
func (s *Service) normalize(in recordInput) (recordInput, error) {
	var v validate.Collector

	in.PatientID = strings.TrimSpace(in.PatientID)
	d := in.Data
	d.MedicationID = strings.TrimSpace(d.MedicationID)
	d.AdministeredBy = strings.TrimSpace(d.AdministeredBy)
	d.Notes = strings.TrimSpace(d.Notes)

	v.Required("patient_id", in.PatientID)
	v.Required("medication_id", d.MedicationID)

	for _, f := range []struct {
		name string
		val  *string
	}{
		{"scheduled_datetime", &d.ScheduledDatetime},
		{"actual_datetime", &d.ActualDatetime},
	} {
		if strings.TrimSpace(*f.val) == "" {
			v.Add(f.name, "is required")
			continue
		}
		t, err := ParseDateTime(*f.val, s.loc)
		if err != nil {
			v.Add(f.name, "must be YYYY-MM-DD HH:MM:SS")
			continue
		}
		*f.val = FormatDateTime(t)
	}

	in.Data = d
	return in, v.Err()
}

// appendProvisional agrega el registro solo si la lista ya está cacheada.
func appendProvisional(in recordInput, now time.Time) []querycache.Patch {
	ts := now.UTC().Format(time.RFC3339)
	rec := MedicationAdministration{
		AdministrationID:  optimistic.NewProvisionalID(),
		MedicationID:      in.Data.MedicationID,
		ScheduledDatetime: in.Data.ScheduledDatetime,
		ActualDatetime:    in.Data.ActualDatetime,
		AdministeredBy:    in.Data.AdministeredBy,
		Notes:             in.Data.Notes,
		CreatedAt:         ts,
		UpdatedAt:         ts,
	}

	return []querycache.Patch{{
		Key: Key(in.PatientID),
		Update: func(old any) any {
			cur, ok := old.([]MedicationAdministration)
			if !ok {
				return old
			}
			return append(slices.Clone(cur), rec)
		},
	}}
}
