package medications

import "context"

// Repository son los endpoints del API remoto para medicamentos.
type Repository interface {
	ListByPatient(ctx context.Context, patientID string) (MedicationsResponse, error)
	Create(ctx context.Context, data CreateMedicationData) (Medication, error)
	Update(ctx context.Context, data UpdateMedicationData) (Medication, error)
}
