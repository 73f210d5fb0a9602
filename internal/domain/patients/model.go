package patients

// Patient tal como llega del API (keys ya en camelCase).
type Patient struct {
	PatientID   string `json:"patientId"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DateOfBirth string `json:"dateOfBirth"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func (p Patient) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

type PatientsResponse struct {
	Message  string    `json:"message"`
	Count    int       `json:"count"`
	Patients []Patient `json:"patients"`
}

// CreatePatientData se envía tal cual; date_of_birth en YYYY-MM-DD.
type CreatePatientData struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"`
}
