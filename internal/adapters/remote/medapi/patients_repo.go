package medapi

import (
	"context"
	"net/http"

	"medication-dashboard/internal/domain/patients"
)

type patientsRepo struct{ c *Client }

func NewPatientsRepo(c *Client) patients.Repository {
	return &patientsRepo{c: c}
}

func (r *patientsRepo) List(ctx context.Context) (patients.PatientsResponse, error) {
	var out patients.PatientsResponse
	if err := r.c.http.DoJSON(ctx, http.MethodGet, "/patients", nil, &out); err != nil {
		return patients.PatientsResponse{}, err
	}
	if out.Patients == nil {
		out.Patients = []patients.Patient{}
	}
	return out, nil
}

func (r *patientsRepo) GetByID(ctx context.Context, id string) (patients.Patient, error) {
	p, err := path("patients", id)
	if err != nil {
		return patients.Patient{}, err
	}
	var out patients.Patient
	if err := r.c.http.DoJSON(ctx, http.MethodGet, p, nil, &out); err != nil {
		return patients.Patient{}, err
	}
	return out, nil
}

func (r *patientsRepo) Create(ctx context.Context, data patients.CreatePatientData) (patients.Patient, error) {
	var out patients.Patient
	if err := r.c.http.DoJSON(ctx, http.MethodPost, "/patients", data, &out); err != nil {
		return patients.Patient{}, err
	}
	return out, nil
}
