package medications

import (
	"encoding/json"
	"net/http"

	"medication-dashboard/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, rs *respond.Responder) {
	r.Get("/patients/{patientID}/medications", listMedicationsHandler(svc, rs))
	r.Post("/patients/{patientID}/medications", createMedicationHandler(svc, rs))
	r.Put("/patients/{patientID}/medications/{medicationID}", updateMedicationHandler(svc, rs))
}

// @Summary Listar medicamentos del paciente
// @Description Devuelve el último valor cacheado; si no hay, lo trae del API.
// @Tags medications
// @Produce json
// @Param patientID path string true "ID del paciente"
// @Success 200 {object} MedicationsResponse
// @Failure 502 {object} object "API inalcanzable"
// @Failure 504 {object} object "timeout"
// @Router /patients/{patientID}/medications [get]
func listMedicationsHandler(svc *Service, rs *respond.Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.List(r.Context(), chi.URLParam(r, "patientID"))
		if err != nil {
			rs.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

// @Summary Crear medicamento
// @Description Escritura optimista: el medicamento aparece con id `temp-...` hasta que el API confirma.
// @Tags medications
// @Accept json
// @Produce json
// @Param patientID path string true "ID del paciente"
// @Param payload body CreateMedicationData true "Campos en snake_case"
// @Success 201 {object} Medication
// @Failure 400 {object} object "validación"
// @Router /patients/{patientID}/medications [post]
func createMedicationHandler(svc *Service, rs *respond.Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateMedicationData
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		req.PatientID = chi.URLParam(r, "patientID")

		m, err := svc.Create(r.Context(), req)
		if err != nil {
			rs.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusCreated, m)
	}
}

// @Summary Actualizar medicamento
// @Tags medications
// @Accept json
// @Produce json
// @Param patientID path string true "ID del paciente"
// @Param medicationID path string true "ID del medicamento"
// @Param payload body UpdateMedicationData true "Campos en snake_case"
// @Success 200 {object} Medication
// @Failure 400 {object} object "validación"
// @Router /patients/{patientID}/medications/{medicationID} [put]
func updateMedicationHandler(svc *Service, rs *respond.Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpdateMedicationData
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		req.PatientID = chi.URLParam(r, "patientID")
		req.MedicationID = chi.URLParam(r, "medicationID")

		m, err := svc.Update(r.Context(), req)
		if err != nil {
			rs.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, m)
	}
}
