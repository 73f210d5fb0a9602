package memory

import (
	"context"
	"strings"

	"medication-dashboard/internal/domain/administrations"
)

type administrationRepo struct{ s *Sandbox }

func (r *administrationRepo) ListByPatient(ctx context.Context, patientID string) ([]administrations.MedicationAdministration, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if _, ok := r.s.patients[patientID]; !ok {
		return nil, notFound("patient")
	}

	out := make([]administrations.MedicationAdministration, 0)
	for _, a := range r.s.admins {
		if m, ok := r.s.medications[a.MedicationID]; ok && m.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *administrationRepo) Create(ctx context.Context, d administrations.CreateMedicationAdministrationData) (administrations.MedicationAdministration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.medications[d.MedicationID]; !ok {
		return administrations.MedicationAdministration{}, notFound("medication")
	}
	for _, v := range []string{d.ScheduledDatetime, d.ActualDatetime} {
		if _, err := administrations.ParseDateTime(v, nil); err != nil {
			return administrations.MedicationAdministration{}, badRequest("datetimes must be YYYY-MM-DD HH:MM:SS")
		}
	}

	ts := r.s.stamp()
	a := administrations.MedicationAdministration{
		AdministrationID:  r.s.newID(),
		MedicationID:      d.MedicationID,
		ScheduledDatetime: d.ScheduledDatetime,
		ActualDatetime:    d.ActualDatetime,
		AdministeredBy:    strings.TrimSpace(d.AdministeredBy),
		Notes:             d.Notes,
		CreatedAt:         ts,
		UpdatedAt:         ts,
	}
	r.s.admins = append(r.s.admins, a)
	return a, nil
}
