package administrations

import (
	"fmt"
	"strings"
	"time"
)

// MedicationAdministration es una dosis registrada. Se correlaciona con un
// horario por (medicationId, scheduledDatetime), no por id de ocurrencia.
type MedicationAdministration struct {
	AdministrationID  string `json:"administrationId"`
	MedicationID      string `json:"medicationId"`
	ScheduledDatetime string `json:"scheduledDatetime"`
	ActualDatetime    string `json:"actualDatetime"`
	AdministeredBy    string `json:"administeredBy"`
	Notes             string `json:"notes"`
	CreatedAt         string `json:"createdAt"`
	UpdatedAt         string `json:"updatedAt"`
}

// CreateMedicationAdministrationData se envía tal cual (snake_case).
type CreateMedicationAdministrationData struct {
	MedicationID      string `json:"medication_id"`
	ScheduledDatetime string `json:"scheduled_datetime"`
	ActualDatetime    string `json:"actual_datetime"`
	AdministeredBy    string `json:"administered_by"`
	Notes             string `json:"notes"`
}

// DateTimeLayout es el formato de fecha-hora que espera el API.
const DateTimeLayout = "2006-01-02 15:04:05"

var parseLayouts = []string{
	DateTimeLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

func FormatDateTime(t time.Time) string {
	return t.Format(DateTimeLayout)
}

// ParseDateTime acepta el formato del API y las variantes ISO que devuelve el server.
// Sin zona, se interpreta en loc.
func ParseDateTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range parseLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime %q", s)
}
