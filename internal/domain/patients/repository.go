package patients

import "context"

// Repository son los endpoints del API remoto para pacientes.
type Repository interface {
	List(ctx context.Context) (PatientsResponse, error)
	GetByID(ctx context.Context, id string) (Patient, error)
	Create(ctx context.Context, data CreatePatientData) (Patient, error)
}
