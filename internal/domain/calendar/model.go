package calendar

import "medication-dashboard/internal/domain/administrations"

// Dose es una ocurrencia de un horario activo en una fecha concreta.
type Dose struct {
	MedicationID      string                                     `json:"medicationId"`
	MedicationName    string                                     `json:"medicationName"`
	ScheduleID        string                                     `json:"scheduleId"`
	TimeOfDay         string                                     `json:"timeOfDay"`
	ScheduledDateTime string                                     `json:"scheduledDateTime"`
	Administered      bool                                       `json:"administered"`
	Administrations   []administrations.MedicationAdministration `json:"administrations"`
}

type Day struct {
	Date      string `json:"date"`
	DayOfWeek int    `json:"dayOfWeek"`
	Doses     []Dose `json:"doses"`
}

type Calendar struct {
	PatientID string `json:"patientId"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Days      []Day  `json:"days"`
}
