package schedules

import (
	"encoding/json"
	"net/http"
	"strings"

	"medication-dashboard/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, rs *respond.Responder) {
	r.Get("/patients/{patientID}/medication-schedules", listSchedulesHandler(svc, rs))
	r.Get("/patients/{patientID}/medications/{medicationID}/schedules", medicationSchedulesHandler(svc, rs))
	r.Post("/patients/{patientID}/medications/{medicationID}/schedules", createSchedulesHandler(svc, rs))
}

// @Summary Horarios del paciente
// @Description Envelope agrupado por medicamento y por día, con resumen.
// @Tags schedules
// @Produce json
// @Param patientID path string true "ID del paciente"
// @Success 200 {object} SchedulesResponse
// @Router /patients/{patientID}/medication-schedules [get]
func listSchedulesHandler(svc *Service, rs *respond.Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.List(r.Context(), chi.URLParam(r, "patientID"))
		if err != nil {
			rs.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

// @Summary Horarios de un medicamento
// @Tags schedules
// @Produce json
// @Param patientID path string true "ID del paciente"
// @Param medicationID path string true "ID del medicamento"
// @Success 200 {array} MedicationSchedule
// @Router /patients/{patientID}/medications/{medicationID}/schedules [get]
func medicationSchedulesHandler(svc *Service, rs *respond.Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.ForMedication(r.Context(), chi.URLParam(r, "patientID"), chi.URLParam(r, "medicationID"))
		if err != nil {
			rs.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

// @Summary Crear horarios en lote
// @Description Todos los horarios del lote pertenecen al medicamento del path. time_of_day acepta HH:MM o HH:MM:SS.
// @Tags schedules
// @Accept json
// @Produce json
// @Param patientID path string true "ID del paciente"
// @Param medicationID path string true "ID del medicamento"
// @Param payload body BulkCreateRequest true "Lote de horarios"
// @Success 201 {array} MedicationSchedule
// @Failure 400 {object} object "validación"
// @Router /patients/{patientID}/medications/{medicationID}/schedules [post]
func createSchedulesHandler(svc *Service, rs *respond.Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BulkCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		medicationID := chi.URLParam(r, "medicationID")
		for i := range req.Schedules {
			if strings.TrimSpace(req.Schedules[i].MedicationID) == "" {
				req.Schedules[i].MedicationID = medicationID
			}
		}

		out, err := svc.CreateBulk(r.Context(), BulkInput{
			PatientID: chi.URLParam(r, "patientID"),
			Schedules: req.Schedules,
		})
		if err != nil {
			rs.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusCreated, out)
	}
}
