package calendar

import (
	"net/http"
	"strconv"
	"time"

	"medication-dashboard/internal/platform/respond"
	"medication-dashboard/internal/platform/validate"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, rs *respond.Responder) {
	r.Get("/patients/{patientID}/calendar", calendarHandler(svc, rs))
}

// @Summary Calendario de dosis
// @Description Expande los horarios activos del paciente desde el domingo de `start` y marca las dosis ya registradas.
// @Tags calendar
// @Produce json
// @Param patientID path string true "ID del paciente"
// @Param start query string false "Fecha de referencia (YYYY-MM-DD). Default: hoy"
// @Param days query int false "Cantidad de días (default 14, máx 62)"
// @Success 200 {object} Calendar
// @Failure 400 {object} object "parámetros inválidos"
// @Router /patients/{patientID}/calendar [get]
func calendarHandler(svc *Service, rs *respond.Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var v validate.Collector
		q := r.URL.Query()

		var start time.Time
		if raw := q.Get("start"); raw != "" {
			t, err := time.ParseInLocation(time.DateOnly, raw, svc.loc)
			v.Check(err == nil, "start", "must be YYYY-MM-DD")
			start = t
		}

		days := 0
		if raw := q.Get("days"); raw != "" {
			n, err := strconv.Atoi(raw)
			v.Check(err == nil && n > 0, "days", "must be a positive integer")
			days = n
		}

		if err := v.Err(); err != nil {
			rs.Error(w, r, err)
			return
		}

		out, err := svc.Build(r.Context(), chi.URLParam(r, "patientID"), start, days)
		if err != nil {
			rs.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, out)
	}
}
