package memory

import (
	"context"

	"medication-dashboard/internal/domain/medications"
)

type medicationRepo struct{ s *Sandbox }

func (r *medicationRepo) ListByPatient(ctx context.Context, patientID string) (medications.MedicationsResponse, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if _, ok := r.s.patients[patientID]; !ok {
		return medications.MedicationsResponse{}, notFound("patient")
	}

	out := r.s.medicationsOf(patientID)
	return medications.MedicationsResponse{Message: "Medications retrieved successfully", Count: len(out), Medications: out}, nil
}

func (r *medicationRepo) Create(ctx context.Context, d medications.CreateMedicationData) (medications.Medication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.patients[d.PatientID]; !ok {
		return medications.Medication{}, notFound("patient")
	}

	ts := r.s.stamp()
	m := medications.Medication{
		MedicationID:        r.s.newID(),
		PatientID:           d.PatientID,
		Name:                d.Name,
		GenericName:         d.GenericName,
		Strength:            d.Strength,
		Unit:                d.Unit,
		Form:                d.Form,
		DosageAmount:        medications.Amount(d.DosageAmount),
		FrequencyPerDay:     d.FrequencyPerDay,
		SpecialInstructions: d.SpecialInstructions,
		IsActive:            medications.Flag(d.IsActive),
		CreatedAt:           ts,
		UpdatedAt:           ts,
	}
	r.s.medications[m.MedicationID] = m
	return m, nil
}

func (r *medicationRepo) Update(ctx context.Context, d medications.UpdateMedicationData) (medications.Medication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.medications[d.MedicationID]
	if !ok {
		return medications.Medication{}, notFound("medication")
	}

	m.Name = d.Name
	m.GenericName = d.GenericName
	m.Strength = d.Strength
	m.Unit = d.Unit
	m.Form = d.Form
	m.DosageAmount = medications.Amount(d.DosageAmount)
	m.FrequencyPerDay = d.FrequencyPerDay
	m.SpecialInstructions = d.SpecialInstructions
	m.IsActive = medications.Flag(d.IsActive)
	m.UpdatedAt = r.s.stamp()

	r.s.medications[m.MedicationID] = m
	return m, nil
}

// medicationsOf requiere el lock tomado.
func (s *Sandbox) medicationsOf(patientID string) []medications.Medication {
	out := make([]medications.Medication, 0)
	for _, m := range s.medications {
		if m.PatientID == patientID {
			out = append(out, m)
		}
	}
	sortByOrder(s, out, func(m medications.Medication) string { return m.MedicationID })
	return out
}
