package medapi

import (
	"context"
	"net/http"

	"medication-dashboard/internal/domain/medications"
)

type medicationsRepo struct{ c *Client }

func NewMedicationsRepo(c *Client) medications.Repository {
	return &medicationsRepo{c: c}
}

func (r *medicationsRepo) ListByPatient(ctx context.Context, patientID string) (medications.MedicationsResponse, error) {
	p, err := path("patients", patientID, "medications")
	if err != nil {
		return medications.MedicationsResponse{}, err
	}
	var out medications.MedicationsResponse
	if err := r.c.http.DoJSON(ctx, http.MethodGet, p, nil, &out); err != nil {
		return medications.MedicationsResponse{}, err
	}
	if out.Medications == nil {
		out.Medications = []medications.Medication{}
	}
	return out, nil
}

func (r *medicationsRepo) Create(ctx context.Context, data medications.CreateMedicationData) (medications.Medication, error) {
	var out medications.Medication
	if err := r.c.http.DoJSON(ctx, http.MethodPost, "/medications", data, &out); err != nil {
		return medications.Medication{}, err
	}
	return out, nil
}

func (r *medicationsRepo) Update(ctx context.Context, data medications.UpdateMedicationData) (medications.Medication, error) {
	p, err := path("medications", data.MedicationID)
	if err != nil {
		return medications.Medication{}, err
	}
	var out medications.Medication
	if err := r.c.http.DoJSON(ctx, http.MethodPut, p, data, &out); err != nil {
		return medications.Medication{}, err
	}
	return out, nil
}
