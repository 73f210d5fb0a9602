package schedules

import "medication-dashboard/internal/domain/medications"

// MedicationSchedule es un horario semanal: día (0=domingo) + hora HH:MM:SS.
type MedicationSchedule struct {
	ScheduleID   string           `json:"scheduleId"`
	MedicationID string           `json:"medicationId,omitempty"`
	DayOfWeek    int              `json:"dayOfWeek"`
	TimeOfDay    string           `json:"timeOfDay"`
	IsActive     medications.Flag `json:"isActive"`
	CreatedAt    string           `json:"createdAt"`
	UpdatedAt    string           `json:"updatedAt"`
}

// ScheduleWithDetails es un horario con los datos de su medicamento (allSchedules / schedulesByDay).
type ScheduleWithDetails struct {
	MedicationSchedule
	MedicationName      string             `json:"medicationName"`
	GenericName         string             `json:"genericName"`
	Strength            string             `json:"strength"`
	Unit                string             `json:"unit"`
	Form                string             `json:"form"`
	DosageAmount        medications.Amount `json:"dosageAmount"`
	FrequencyPerDay     int                `json:"frequencyPerDay"`
	SpecialInstructions string             `json:"specialInstructions"`
}

type MedicationWithSchedules struct {
	MedicationID        string               `json:"medicationId"`
	MedicationName      string               `json:"medicationName"`
	GenericName         string               `json:"genericName"`
	Strength            string               `json:"strength"`
	Unit                string               `json:"unit"`
	Form                string               `json:"form"`
	DosageAmount        medications.Amount   `json:"dosageAmount"`
	FrequencyPerDay     int                  `json:"frequencyPerDay"`
	SpecialInstructions string               `json:"specialInstructions"`
	Schedules           []MedicationSchedule `json:"schedules"`
}

type PatientSummary struct {
	PatientID   string `json:"patientId"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DateOfBirth string `json:"dateOfBirth"`
}

type Summary struct {
	TotalSchedules    int `json:"totalSchedules"`
	ActiveSchedules   int `json:"activeSchedules"`
	InactiveSchedules int `json:"inactiveSchedules"`
	MedicationsCount  int `json:"medicationsCount"`
	TotalDailyDoses   int `json:"totalDailyDoses"`
}

// SchedulesResponse es el envelope de GET /patients/{id}/medication-schedules.
// SchedulesByDay va indexado por nombre de día.
type SchedulesResponse struct {
	Message               string                           `json:"message"`
	Patient               PatientSummary                   `json:"patient"`
	Summary               Summary                          `json:"summary"`
	SchedulesByMedication []MedicationWithSchedules        `json:"schedulesByMedication"`
	SchedulesByDay        map[string][]ScheduleWithDetails `json:"schedulesByDay"`
	AllSchedules          []ScheduleWithDetails            `json:"allSchedules"`
	Count                 int                              `json:"count"`
}

// ForMedication devuelve los horarios de un medicamento del envelope.
func (r SchedulesResponse) ForMedication(medicationID string) ([]MedicationSchedule, bool) {
	for _, m := range r.SchedulesByMedication {
		if m.MedicationID == medicationID {
			out := make([]MedicationSchedule, 0, len(m.Schedules))
			for _, s := range m.Schedules {
				if s.MedicationID == "" {
					s.MedicationID = medicationID
				}
				out = append(out, s)
			}
			return out, true
		}
	}
	return nil, false
}

// CreateMedicationScheduleData se envía tal cual (snake_case).
type CreateMedicationScheduleData struct {
	MedicationID string `json:"medication_id"`
	DayOfWeek    int    `json:"day_of_week"`
	TimeOfDay    string `json:"time_of_day"`
	IsActive     bool   `json:"is_active"`
}

// BulkCreateRequest es el body de POST /medication-schedules/bulk.
type BulkCreateRequest struct {
	Schedules []CreateMedicationScheduleData `json:"schedules"`
}
