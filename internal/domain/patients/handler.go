package patients

import (
	"encoding/json"
	"net/http"

	"medication-dashboard/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, rs *respond.Responder) {
	r.Get("/patients", listPatientsHandler(svc, rs))
	r.Post("/patients", createPatientHandler(svc, rs))
	r.Get("/patients/{patientID}", getPatientHandler(svc, rs))
}

// @Summary Listar pacientes
// @Tags patients
// @Produce json
// @Success 200 {object} PatientsResponse
// @Router /patients [get]
func listPatientsHandler(svc *Service, rs *respond.Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.List(r.Context())
		if err != nil {
			rs.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

// @Summary Crear paciente
// @Tags patients
// @Accept json
// @Produce json
// @Param payload body CreatePatientData true "date_of_birth en YYYY-MM-DD"
// @Success 201 {object} Patient
// @Failure 400 {object} object "validación"
// @Router /patients [post]
func createPatientHandler(svc *Service, rs *respond.Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreatePatientData
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.Create(r.Context(), req)
		if err != nil {
			rs.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusCreated, p)
	}
}

// @Summary Obtener paciente
// @Tags patients
// @Produce json
// @Param patientID path string true "ID del paciente"
// @Success 200 {object} Patient
// @Failure 404 {object} object "no existe en el API"
// @Router /patients/{patientID} [get]
func getPatientHandler(svc *Service, rs *respond.Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "patientID"))
		if err != nil {
			rs.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, p)
	}
}
