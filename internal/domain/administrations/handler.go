package administrations

import (
	"encoding/json"
	"net/http"

	"medication-dashboard/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, rs *respond.Responder) {
	r.Get("/patients/{patientID}/medication-administrations", listAdministrationsHandler(svc, rs))
	r.Post("/patients/{patientID}/medication-administrations", recordAdministrationHandler(svc, rs))
}

// @Summary Dosis registradas del paciente
// @Tags administrations
// @Produce json
// @Param patientID path string true "ID del paciente"
// @Success 200 {array} MedicationAdministration
// @Router /patients/{patientID}/medication-administrations [get]
func listAdministrationsHandler(svc *Service, rs *respond.Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.List(r.Context(), chi.URLParam(r, "patientID"))
		if err != nil {
			rs.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

// @Summary Registrar dosis administrada
// @Description Fechas en formato YYYY-MM-DD HH:MM:SS (también acepta ISO 8601).
// @Tags administrations
// @Accept json
// @Produce json
// @Param patientID path string true "ID del paciente"
// @Param payload body CreateMedicationAdministrationData true "Campos en snake_case"
// @Success 201 {object} MedicationAdministration
// @Failure 400 {object} object "validación"
// @Router /patients/{patientID}/medication-administrations [post]
func recordAdministrationHandler(svc *Service, rs *respond.Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateMedicationAdministrationData
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		out, err := svc.Record(r.Context(), chi.URLParam(r, "patientID"), req)
		if err != nil {
			rs.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusCreated, out)
	}
}
