package calendar

import (
	"context"
	"sort"
	"strings"
	"time"

	"medication-dashboard/internal/domain/administrations"
	"medication-dashboard/internal/domain/schedules"
	"medication-dashboard/internal/platform/validate"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultDays = 14
	MaxDays     = 62
)

// ScheduleSource y AdministrationSource son las lecturas cacheadas que usa el calendario.
type ScheduleSource interface {
	List(ctx context.Context, patientID string) (schedules.SchedulesResponse, error)
}

type AdministrationSource interface {
	List(ctx context.Context, patientID string) ([]administrations.MedicationAdministration, error)
}

type Service struct {
	schedules ScheduleSource
	admins    AdministrationSource
	now       func() time.Time
	loc       *time.Location
}

func NewService(s ScheduleSource, a AdministrationSource) *Service {
	return &Service{schedules: s, admins: a, now: time.Now, loc: time.Local}
}

// WeekStart devuelve el domingo 00:00 de la semana de t.
func WeekStart(t time.Time) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// Build arma el calendario de dosis. start cero => semana actual; days <= 0 => dos semanas.
func (s *Service) Build(ctx context.Context, patientID string, start time.Time, days int) (Calendar, error) {
	patientID = strings.TrimSpace(patientID)
	var v validate.Collector
	v.Required("patient_id", patientID)
	v.Check(days <= MaxDays, "days", "must be at most 62")
	if err := v.Err(); err != nil {
		return Calendar{}, err
	}
	if days <= 0 {
		days = DefaultDays
	}
	if start.IsZero() {
		start = s.now().In(s.loc)
	}
	start = WeekStart(start)

	var (
		envelope schedules.SchedulesResponse
		admins   []administrations.MedicationAdministration
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		envelope, err = s.schedules.List(gctx, patientID)
		return err
	})
	g.Go(func() (err error) {
		admins, err = s.admins.List(gctx, patientID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Calendar{}, err
	}

	byDose := indexAdministrations(admins, start.Location())

	out := Calendar{
		PatientID: patientID,
		Start:     start.Format(time.DateOnly),
		End:       start.AddDate(0, 0, days-1).Format(time.DateOnly),
		Days:      make([]Day, 0, days),
	}
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i)
		out.Days = append(out.Days, Day{
			Date:      date.Format(time.DateOnly),
			DayOfWeek: int(date.Weekday()),
			Doses:     dosesFor(envelope, date, byDose),
		})
	}
	return out, nil
}

type doseKey struct {
	medicationID string
	scheduled    string
}

// indexAdministrations agrupa por (medicamento, fecha-hora programada). Las que
// no parsean quedan fuera: no hay ocurrencia con la que correlacionarlas.
func indexAdministrations(list []administrations.MedicationAdministration, loc *time.Location) map[doseKey][]administrations.MedicationAdministration {
	out := make(map[doseKey][]administrations.MedicationAdministration, len(list))
	for _, a := range list {
		t, err := administrations.ParseDateTime(a.ScheduledDatetime, loc)
		if err != nil {
			continue
		}
		k := doseKey{medicationID: a.MedicationID, scheduled: administrations.FormatDateTime(t.In(loc))}
		out[k] = append(out[k], a)
	}
	return out
}

func dosesFor(envelope schedules.SchedulesResponse, date time.Time, byDose map[doseKey][]administrations.MedicationAdministration) []Dose {
	doses := make([]Dose, 0)
	weekday := int(date.Weekday())

	for _, med := range envelope.SchedulesByMedication {
		for _, sch := range med.Schedules {
			if !bool(sch.IsActive) || sch.DayOfWeek != weekday {
				continue
			}
			at, ok := scheduledAt(date, sch.TimeOfDay)
			if !ok {
				continue
			}
			scheduled := administrations.FormatDateTime(at)
			matched := byDose[doseKey{medicationID: med.MedicationID, scheduled: scheduled}]
			doses = append(doses, Dose{
				MedicationID:      med.MedicationID,
				MedicationName:    med.MedicationName,
				ScheduleID:        sch.ScheduleID,
				TimeOfDay:         sch.TimeOfDay,
				ScheduledDateTime: scheduled,
				Administered:      len(matched) > 0,
				Administrations:   append([]administrations.MedicationAdministration{}, matched...),
			})
		}
	}

	sort.SliceStable(doses, func(i, j int) bool { return doses[i].TimeOfDay < doses[j].TimeOfDay })
	return doses
}

// scheduledAt combina la fecha con HH:MM del horario; los segundos van en cero.
func scheduledAt(date time.Time, timeOfDay string) (time.Time, bool) {
	norm, ok := schedules.NormalizeTimeOfDay(timeOfDay)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.TimeOnly, norm)
	if err != nil {
		return time.Time{}, false
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, date.Location()), true
}
