package memory

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"medication-dashboard/internal/domain/administrations"
	"medication-dashboard/internal/domain/medications"
	"medication-dashboard/internal/domain/patients"
	"medication-dashboard/internal/domain/schedules"
	"medication-dashboard/internal/platform/httpclient"

	"github.com/google/uuid"
)

// Sandbox emula el API remoto en memoria (modo dev sin API_BASE_URL y tests).
// Los repos que devuelve comparten el mismo estado.
type Sandbox struct {
	mu sync.RWMutex

	patients    map[string]patients.Patient
	medications map[string]medications.Medication
	schedules   map[string]schedules.MedicationSchedule
	admins      []administrations.MedicationAdministration

	// orden de alta por id, para listar de forma estable
	order map[string]int
	seq   int

	now func() time.Time
}

func NewSandbox() *Sandbox {
	return &Sandbox{
		patients:    make(map[string]patients.Patient),
		medications: make(map[string]medications.Medication),
		schedules:   make(map[string]schedules.MedicationSchedule),
		order:       make(map[string]int),
		now:         time.Now,
	}
}

func (s *Sandbox) Patients() patients.Repository { return &patientRepo{s: s} }

func (s *Sandbox) Medications() medications.Repository { return &medicationRepo{s: s} }

func (s *Sandbox) Schedules() schedules.Repository { return &scheduleRepo{s: s} }

func (s *Sandbox) Administrations() administrations.Repository { return &administrationRepo{s: s} }

// Seed carga un paciente de ejemplo con un medicamento y dos horarios diarios.
func (s *Sandbox) Seed() patients.Patient {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.stamp()
	p := patients.Patient{
		PatientID:   s.newID(),
		FirstName:   "Ana",
		LastName:    "García",
		DateOfBirth: "1948-05-17",
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	s.patients[p.PatientID] = p

	m := medications.Medication{
		MedicationID:    s.newID(),
		PatientID:       p.PatientID,
		Name:            "Metformina",
		GenericName:     "metformin",
		Strength:        "500",
		Unit:            "mg",
		Form:            "tablet",
		DosageAmount:    1,
		FrequencyPerDay: 2,
		IsActive:        true,
		CreatedAt:       ts,
		UpdatedAt:       ts,
	}
	s.medications[m.MedicationID] = m

	for day := 0; day < 7; day++ {
		for _, at := range []string{"08:00:00", "20:00:00"} {
			sch := schedules.MedicationSchedule{
				ScheduleID:   s.newID(),
				MedicationID: m.MedicationID,
				DayOfWeek:    day,
				TimeOfDay:    at,
				IsActive:     true,
				CreatedAt:    ts,
				UpdatedAt:    ts,
			}
			s.schedules[sch.ScheduleID] = sch
		}
	}
	return p
}

func (s *Sandbox) stamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

// notFound imita la respuesta 404 del API.
func notFound(what string) error {
	return &httpclient.HTTPError{
		StatusCode: http.StatusNotFound,
		Status:     http.StatusText(http.StatusNotFound),
		Body:       map[string]any{"message": what + " not found"},
	}
}

// badRequest imita la respuesta 400 del API.
func badRequest(msg string) error {
	return &httpclient.HTTPError{
		StatusCode: http.StatusBadRequest,
		Status:     http.StatusText(http.StatusBadRequest),
		Body:       map[string]any{"message": msg},
	}
}

// newID genera un id y registra su orden de alta. Requiere el lock tomado.
func (s *Sandbox) newID() string {
	id := uuid.NewString()
	s.seq++
	s.order[id] = s.seq
	return id
}

func sortByOrder[T any](s *Sandbox, items []T, id func(T) string) {
	sort.SliceStable(items, func(i, j int) bool { return s.order[id(items[i])] < s.order[id(items[j])] })
}
