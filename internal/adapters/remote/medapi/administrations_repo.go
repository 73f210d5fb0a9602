package medapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"medication-dashboard/internal/domain/administrations"
)

type administrationsRepo struct{ c *Client }

func NewAdministrationsRepo(c *Client) administrations.Repository {
	return &administrationsRepo{c: c}
}

// ListByPatient desenvuelve {administrations: [...]}. Si el campo falta o no
// es una lista devuelve [] en vez de error; un registro mal formado sí es error.
func (r *administrationsRepo) ListByPatient(ctx context.Context, patientID string) ([]administrations.MedicationAdministration, error) {
	p, err := path("patients", patientID, "medication-administrations")
	if err != nil {
		return nil, err
	}
	resp, err := r.c.http.Get(ctx, p, nil)
	if err != nil {
		return nil, err
	}

	tree, err := resp.Tree()
	if err != nil {
		return nil, err
	}

	out := []administrations.MedicationAdministration{}
	env, ok := tree.(map[string]any)
	if !ok {
		return out, nil
	}
	list, ok := env["administrations"].([]any)
	if !ok {
		return out, nil
	}

	b, err := json.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("encode administrations: %w", err)
	}
	var items []administrations.MedicationAdministration
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("decode administrations: %w", err)
	}
	return append(out, items...), nil
}

func (r *administrationsRepo) Create(ctx context.Context, data administrations.CreateMedicationAdministrationData) (administrations.MedicationAdministration, error) {
	var out administrations.MedicationAdministration
	if err := r.c.http.DoJSON(ctx, http.MethodPost, "/medication-administrations", data, &out); err != nil {
		return administrations.MedicationAdministration{}, err
	}
	return out, nil
}
