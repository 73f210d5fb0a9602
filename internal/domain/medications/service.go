package medications

import (
	"context"
	"slices"
	"strings"
	"time"

	"medication-dashboard/internal/platform/optimistic"
	"medication-dashboard/internal/platform/querycache"
	"medication-dashboard/internal/platform/validate"

	"go.uber.org/zap"
)

// Key es la key de cache de los medicamentos de un paciente.
func Key(patientID string) querycache.Key {
	return querycache.By(patientID, querycache.Medications)
}

// Fetchers resuelve (patientID, medications) contra el repo.
func Fetchers(repo Repository) querycache.Resolver {
	return func(k querycache.Key) (querycache.FetchFunc, bool) {
		if k.Entity != querycache.Medications || k.IsAll() {
			return nil, false
		}
		patientID := k.Scope
		return func(ctx context.Context) (any, error) {
			return repo.ListByPatient(ctx, patientID)
		}, true
	}
}

type Service struct {
	repo  Repository
	store *querycache.Store

	create *optimistic.Mutation[CreateMedicationData, Medication]
	update *optimistic.Mutation[UpdateMedicationData, Medication]
}

func NewService(repo Repository, store *querycache.Store, log *zap.Logger) *Service {
	s := &Service{repo: repo, store: store}

	s.create = optimistic.New(store, optimistic.Spec[CreateMedicationData, Medication]{
		Name:       "createMedication",
		Keys:       func(d CreateMedicationData) []querycache.Key { return []querycache.Key{Key(d.PatientID)} },
		Optimistic: appendProvisional,
		Commit:     repo.Create,
		Settle:     func(d CreateMedicationData) []querycache.Key { return querycache.PatientKeys(d.PatientID) },
	}, log)

	s.update = optimistic.New(store, optimistic.Spec[UpdateMedicationData, Medication]{
		Name:       "updateMedication",
		Keys:       func(d UpdateMedicationData) []querycache.Key { return []querycache.Key{Key(d.PatientID)} },
		Optimistic: replaceInPlace,
		Commit:     repo.Update,
		// incluye los horarios del paciente: el calendario depende del medicamento
		Settle: func(d UpdateMedicationData) []querycache.Key { return querycache.PatientKeys(d.PatientID) },
	}, log)

	return s
}

// List devuelve los medicamentos del paciente desde el cache (trae si no hay).
func (s *Service) List(ctx context.Context, patientID string) (MedicationsResponse, error) {
	if strings.TrimSpace(patientID) == "" {
		return MedicationsResponse{}, validate.Errors{{Field: "patient_id", Message: "is required"}}
	}
	return querycache.QueryAs[MedicationsResponse](ctx, s.store, Key(patientID))
}

// Cached es la lectura no bloqueante.
func (s *Service) Cached(patientID string) (MedicationsResponse, bool) {
	return querycache.Get[MedicationsResponse](s.store, Key(patientID))
}

func (s *Service) Create(ctx context.Context, data CreateMedicationData) (Medication, error) {
	data = normalizeCreate(data)
	if err := validateCreate(data); err != nil {
		return Medication{}, err
	}
	return s.create.Run(ctx, data)
}

func (s *Service) Update(ctx context.Context, data UpdateMedicationData) (Medication, error) {
	data = normalizeUpdate(data)
	if err := validateUpdate(data); err != nil {
		return Medication{}, err
	}
	return s.update.Run(ctx, data)
}

// appendProvisional agrega el medicamento con id provisorio. Sin lista cacheada
// arma un envelope con ese único elemento.
func appendProvisional(d CreateMedicationData, now time.Time) []querycache.Patch {
	ts := now.UTC().Format(time.RFC3339)
	med := Medication{
		MedicationID:        optimistic.NewProvisionalID(),
		PatientID:           d.PatientID,
		Name:                d.Name,
		GenericName:         d.GenericName,
		Strength:            d.Strength,
		Unit:                d.Unit,
		Form:                d.Form,
		DosageAmount:        Amount(d.DosageAmount),
		FrequencyPerDay:     d.FrequencyPerDay,
		SpecialInstructions: d.SpecialInstructions,
		IsActive:            Flag(d.IsActive),
		CreatedAt:           ts,
		UpdatedAt:           ts,
	}

	return []querycache.Patch{{
		Key: Key(d.PatientID),
		Update: func(old any) any {
			cur, ok := old.(MedicationsResponse)
			if !ok {
				return MedicationsResponse{Count: 1, Medications: []Medication{med}}
			}
			next := cur
			next.Medications = append(slices.Clone(cur.Medications), med)
			next.Count = cur.Count + 1
			return next
		},
	}}
}

// replaceInPlace reemplaza el medicamento si está cacheado; si no, no toca nada.
func replaceInPlace(d UpdateMedicationData, now time.Time) []querycache.Patch {
	ts := now.UTC().Format(time.RFC3339)

	return []querycache.Patch{{
		Key: Key(d.PatientID),
		Update: func(old any) any {
			cur, ok := old.(MedicationsResponse)
			if !ok {
				return old
			}
			next := cur
			next.Medications = make([]Medication, len(cur.Medications))
			for i, m := range cur.Medications {
				if m.MedicationID == d.MedicationID {
					m.Name = d.Name
					m.GenericName = d.GenericName
					m.Strength = d.Strength
					m.Unit = d.Unit
					m.Form = d.Form
					m.DosageAmount = Amount(d.DosageAmount)
					m.FrequencyPerDay = d.FrequencyPerDay
					m.SpecialInstructions = d.SpecialInstructions
					m.IsActive = Flag(d.IsActive)
					m.UpdatedAt = ts
				}
				next.Medications[i] = m
			}
			return next
		},
	}}
}

func normalizeCreate(d CreateMedicationData) CreateMedicationData {
	d.PatientID = strings.TrimSpace(d.PatientID)
	d.Name = strings.TrimSpace(d.Name)
	d.GenericName = strings.TrimSpace(d.GenericName)
	d.Strength = strings.TrimSpace(d.Strength)
	d.Unit = strings.TrimSpace(d.Unit)
	d.Form = strings.TrimSpace(d.Form)
	d.SpecialInstructions = strings.TrimSpace(d.SpecialInstructions)
	return d
}

func normalizeUpdate(d UpdateMedicationData) UpdateMedicationData {
	c := normalizeCreate(CreateMedicationData{
		PatientID:           d.PatientID,
		Name:                d.Name,
		GenericName:         d.GenericName,
		Strength:            d.Strength,
		Unit:                d.Unit,
		Form:                d.Form,
		SpecialInstructions: d.SpecialInstructions,
	})
	d.MedicationID = strings.TrimSpace(d.MedicationID)
	d.PatientID, d.Name, d.GenericName = c.PatientID, c.Name, c.GenericName
	d.Strength, d.Unit, d.Form = c.Strength, c.Unit, c.Form
	d.SpecialInstructions = c.SpecialInstructions
	return d
}

func validateCreate(d CreateMedicationData) error {
	var v validate.Collector
	checkFields(&v, d.PatientID, d.Name, d.GenericName, d.Strength, d.Unit, d.Form, d.DosageAmount, d.FrequencyPerDay)
	return v.Err()
}

func validateUpdate(d UpdateMedicationData) error {
	var v validate.Collector
	v.Required("medication_id", d.MedicationID)
	checkFields(&v, d.PatientID, d.Name, d.GenericName, d.Strength, d.Unit, d.Form, d.DosageAmount, d.FrequencyPerDay)
	return v.Err()
}

func checkFields(v *validate.Collector, patientID, name, generic, strength, unit, form string, dosage float64, freq int) {
	v.Required("patient_id", patientID)
	v.Required("name", name)
	v.Required("generic_name", generic)
	v.Required("strength", strength)
	v.Required("unit", unit)
	v.Required("form", form)
	v.Check(dosage > 0, "dosage_amount", "must be greater than 0")
	v.Check(freq > 0, "frequency_per_day", "must be greater than 0")
}
