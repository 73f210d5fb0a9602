package medications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Medication tal como llega del API (keys ya en camelCase).
type Medication struct {
	MedicationID        string `json:"medicationId"`
	PatientID           string `json:"patientId"`
	Name                string `json:"name"`
	GenericName         string `json:"genericName"`
	Strength            string `json:"strength"`
	Unit                string `json:"unit"`
	Form                string `json:"form"`
	DosageAmount        Amount `json:"dosageAmount"`
	FrequencyPerDay     int    `json:"frequencyPerDay"`
	SpecialInstructions string `json:"specialInstructions"`
	IsActive            Flag   `json:"isActive"`
	CreatedAt           string `json:"createdAt"`
	UpdatedAt           string `json:"updatedAt"`
}

// MedicationsResponse es el envelope de GET /patients/{id}/medications.
type MedicationsResponse struct {
	Message     string       `json:"message"`
	Count       int          `json:"count"`
	Medications []Medication `json:"medications"`
}

// CreateMedicationData se envía tal cual (snake_case).
type CreateMedicationData struct {
	PatientID           string  `json:"patient_id"`
	Name                string  `json:"name"`
	GenericName         string  `json:"generic_name"`
	Strength            string  `json:"strength"`
	Unit                string  `json:"unit"`
	Form                string  `json:"form"`
	DosageAmount        float64 `json:"dosage_amount"`
	FrequencyPerDay     int     `json:"frequency_per_day"`
	SpecialInstructions string  `json:"special_instructions"`
	IsActive            bool    `json:"is_active"`
}

type UpdateMedicationData struct {
	MedicationID        string  `json:"medication_id"`
	PatientID           string  `json:"patient_id"`
	Name                string  `json:"name"`
	GenericName         string  `json:"generic_name"`
	Strength            string  `json:"strength"`
	Unit                string  `json:"unit"`
	Form                string  `json:"form"`
	DosageAmount        float64 `json:"dosage_amount"`
	FrequencyPerDay     int     `json:"frequency_per_day"`
	IsActive            bool    `json:"is_active"`
	SpecialInstructions string  `json:"special_instructions"`
}

// Flag acepta true/false o 1/0 (el API mezcla ambos).
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch string(b) {
	case "true", `"true"`:
		*f = true
		return nil
	case "false", `"false"`, "null", `""`:
		*f = false
		return nil
	}
	n, err := strconv.ParseFloat(string(bytes.Trim(b, `"`)), 64)
	if err != nil {
		return fmt.Errorf("flag: unexpected %s", b)
	}
	*f = n != 0
	return nil
}

// Amount es un número que el API a veces manda como string ("5.00").
type Amount float64

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		*a = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*a = 0
			return nil
		}
		b = []byte(s)
	}
	n, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("amount: unexpected %s", b)
	}
	*a = Amount(n)
	return nil
}
