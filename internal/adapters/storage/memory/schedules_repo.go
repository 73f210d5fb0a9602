package memory

import (
	"context"
	"sort"
	"time"

	"medication-dashboard/internal/domain/medications"
	"medication-dashboard/internal/domain/schedules"
)

var dayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

type scheduleRepo struct{ s *Sandbox }

// ListByPatient arma el envelope igual que el API: por medicamento, por día,
// lista plana y resumen.
func (r *scheduleRepo) ListByPatient(ctx context.Context, patientID string) (schedules.SchedulesResponse, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.patients[patientID]
	if !ok {
		return schedules.SchedulesResponse{}, notFound("patient")
	}

	out := schedules.SchedulesResponse{
		Message: "Medication schedules retrieved successfully",
		Patient: schedules.PatientSummary{
			PatientID:   p.PatientID,
			FirstName:   p.FirstName,
			LastName:    p.LastName,
			DateOfBirth: p.DateOfBirth,
		},
		SchedulesByMedication: make([]schedules.MedicationWithSchedules, 0),
		SchedulesByDay:        make(map[string][]schedules.ScheduleWithDetails, len(dayNames)),
		AllSchedules:          make([]schedules.ScheduleWithDetails, 0),
	}
	for _, d := range dayNames {
		out.SchedulesByDay[d] = make([]schedules.ScheduleWithDetails, 0)
	}

	for _, m := range r.s.medicationsOf(patientID) {
		list := r.s.schedulesOf(m.MedicationID)
		if len(list) == 0 {
			continue
		}

		out.SchedulesByMedication = append(out.SchedulesByMedication, schedules.MedicationWithSchedules{
			MedicationID:        m.MedicationID,
			MedicationName:      m.Name,
			GenericName:         m.GenericName,
			Strength:            m.Strength,
			Unit:                m.Unit,
			Form:                m.Form,
			DosageAmount:        m.DosageAmount,
			FrequencyPerDay:     m.FrequencyPerDay,
			SpecialInstructions: m.SpecialInstructions,
			Schedules:           list,
		})
		out.Summary.MedicationsCount++
		if m.IsActive {
			out.Summary.TotalDailyDoses += m.FrequencyPerDay
		}

		for _, sch := range list {
			d := schedules.ScheduleWithDetails{
				MedicationSchedule:  sch,
				MedicationName:      m.Name,
				GenericName:         m.GenericName,
				Strength:            m.Strength,
				Unit:                m.Unit,
				Form:                m.Form,
				DosageAmount:        m.DosageAmount,
				FrequencyPerDay:     m.FrequencyPerDay,
				SpecialInstructions: m.SpecialInstructions,
			}
			out.AllSchedules = append(out.AllSchedules, d)
			day := dayNames[sch.DayOfWeek]
			out.SchedulesByDay[day] = append(out.SchedulesByDay[day], d)

			out.Summary.TotalSchedules++
			if sch.IsActive {
				out.Summary.ActiveSchedules++
			} else {
				out.Summary.InactiveSchedules++
			}
		}
	}

	sortSchedules(out.AllSchedules)
	for _, list := range out.SchedulesByDay {
		sortSchedules(list)
	}
	out.Count = out.Summary.TotalSchedules
	return out, nil
}

func (r *scheduleRepo) Create(ctx context.Context, d schedules.CreateMedicationScheduleData) (schedules.MedicationSchedule, error) {
	out, err := r.CreateBulk(ctx, []schedules.CreateMedicationScheduleData{d})
	if err != nil {
		return schedules.MedicationSchedule{}, err
	}
	return out[0], nil
}

// CreateBulk es todo o nada: si un horario es inválido no se crea ninguno.
func (r *scheduleRepo) CreateBulk(ctx context.Context, data []schedules.CreateMedicationScheduleData) ([]schedules.MedicationSchedule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if len(data) == 0 {
		return nil, badRequest("schedules must be a non-empty array")
	}
	for _, d := range data {
		if _, ok := r.s.medications[d.MedicationID]; !ok {
			return nil, notFound("medication")
		}
		if d.DayOfWeek < 0 || d.DayOfWeek > 6 {
			return nil, badRequest("day_of_week must be between 0 and 6")
		}
		if _, err := time.Parse(time.TimeOnly, d.TimeOfDay); err != nil {
			return nil, badRequest("time_of_day must be HH:MM:SS")
		}
	}

	ts := r.s.stamp()
	out := make([]schedules.MedicationSchedule, 0, len(data))
	for _, d := range data {
		sch := schedules.MedicationSchedule{
			ScheduleID:   r.s.newID(),
			MedicationID: d.MedicationID,
			DayOfWeek:    d.DayOfWeek,
			TimeOfDay:    d.TimeOfDay,
			IsActive:     medications.Flag(d.IsActive),
			CreatedAt:    ts,
			UpdatedAt:    ts,
		}
		r.s.schedules[sch.ScheduleID] = sch
		out = append(out, sch)
	}
	return out, nil
}

// schedulesOf requiere el lock tomado. Orden: día, hora.
func (s *Sandbox) schedulesOf(medicationID string) []schedules.MedicationSchedule {
	out := make([]schedules.MedicationSchedule, 0)
	for _, sch := range s.schedules {
		if sch.MedicationID == medicationID {
			out = append(out, sch)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DayOfWeek != out[j].DayOfWeek {
			return out[i].DayOfWeek < out[j].DayOfWeek
		}
		if out[i].TimeOfDay != out[j].TimeOfDay {
			return out[i].TimeOfDay < out[j].TimeOfDay
		}
		return s.order[out[i].ScheduleID] < s.order[out[j].ScheduleID]
	})
	return out
}

func sortSchedules(list []schedules.ScheduleWithDetails) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].DayOfWeek != list[j].DayOfWeek {
			return list[i].DayOfWeek < list[j].DayOfWeek
		}
		return list[i].TimeOfDay < list[j].TimeOfDay
	})
}
