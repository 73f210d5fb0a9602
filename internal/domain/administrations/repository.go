package administrations

import "context"

type Repository interface {
	// ListByPatient devuelve [] (nunca nil) aunque el envelope no traiga el campo.
	ListByPatient(ctx context.Context, patientID string) ([]MedicationAdministration, error)
	Create(ctx context.Context, data CreateMedicationAdministrationData) (MedicationAdministration, error)
}
