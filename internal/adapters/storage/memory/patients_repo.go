package memory

import (
	"context"
	"strings"

	"medication-dashboard/internal/domain/patients"
)

type patientRepo struct{ s *Sandbox }

func (r *patientRepo) List(ctx context.Context) (patients.PatientsResponse, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]patients.Patient, 0, len(r.s.patients))
	for _, p := range r.s.patients {
		out = append(out, p)
	}
	sortByOrder(r.s, out, func(p patients.Patient) string { return p.PatientID })

	return patients.PatientsResponse{Message: "Patients retrieved successfully", Count: len(out), Patients: out}, nil
}

func (r *patientRepo) GetByID(ctx context.Context, id string) (patients.Patient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.patients[strings.TrimSpace(id)]
	if !ok {
		return patients.Patient{}, notFound("patient")
	}
	return p, nil
}

func (r *patientRepo) Create(ctx context.Context, d patients.CreatePatientData) (patients.Patient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(d.FirstName) == "" || strings.TrimSpace(d.LastName) == "" {
		return patients.Patient{}, badRequest("first_name and last_name are required")
	}

	ts := r.s.stamp()
	p := patients.Patient{
		PatientID:   r.s.newID(),
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		DateOfBirth: d.DateOfBirth,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	r.s.patients[p.PatientID] = p
	return p, nil
}
