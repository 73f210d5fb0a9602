package medapi

import (
	"context"
	"net/http"

	"medication-dashboard/internal/domain/schedules"
)

type schedulesRepo struct{ c *Client }

func NewSchedulesRepo(c *Client) schedules.Repository {
	return &schedulesRepo{c: c}
}

func (r *schedulesRepo) ListByPatient(ctx context.Context, patientID string) (schedules.SchedulesResponse, error) {
	p, err := path("patients", patientID, "medication-schedules")
	if err != nil {
		return schedules.SchedulesResponse{}, err
	}
	var out schedules.SchedulesResponse
	if err := r.c.http.DoJSON(ctx, http.MethodGet, p, nil, &out); err != nil {
		return schedules.SchedulesResponse{}, err
	}
	return out, nil
}

func (r *schedulesRepo) Create(ctx context.Context, data schedules.CreateMedicationScheduleData) (schedules.MedicationSchedule, error) {
	var out schedules.MedicationSchedule
	if err := r.c.http.DoJSON(ctx, http.MethodPost, "/medication-schedules", data, &out); err != nil {
		return schedules.MedicationSchedule{}, err
	}
	return out, nil
}

func (r *schedulesRepo) CreateBulk(ctx context.Context, data []schedules.CreateMedicationScheduleData) ([]schedules.MedicationSchedule, error) {
	var out []schedules.MedicationSchedule
	body := schedules.BulkCreateRequest{Schedules: data}
	if err := r.c.http.DoJSON(ctx, http.MethodPost, "/medication-schedules/bulk", body, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []schedules.MedicationSchedule{}
	}
	return out, nil
}
