package schedules

import "context"

// Repository son los endpoints del API remoto para horarios.
type Repository interface {
	ListByPatient(ctx context.Context, patientID string) (SchedulesResponse, error)
	Create(ctx context.Context, data CreateMedicationScheduleData) (MedicationSchedule, error)
	CreateBulk(ctx context.Context, data []CreateMedicationScheduleData) ([]MedicationSchedule, error)
}
