package memory_test

import (
	"context"
	"net/http"
	"testing"

	"medication-dashboard/internal/adapters/storage/memory"
	"medication-dashboard/internal/domain/administrations"
	"medication-dashboard/internal/domain/medications"
	"medication-dashboard/internal/domain/patients"
	"medication-dashboard/internal/domain/schedules"
	"medication-dashboard/internal/platform/httpclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSandbox_SchedulesEnvelope(t *testing.T) {
	ctx := context.Background()
	sb := memory.NewSandbox()

	p, err := sb.Patients().Create(ctx, patients.CreatePatientData{FirstName: "Ana", LastName: "Paz", DateOfBirth: "1950-01-01"})
	require.NoError(t, err)

	m, err := sb.Medications().Create(ctx, medications.CreateMedicationData{
		PatientID: p.PatientID, Name: "X", FrequencyPerDay: 2, DosageAmount: 1, IsActive: true,
	})
	require.NoError(t, err)
	_, err = sb.Medications().Create(ctx, medications.CreateMedicationData{PatientID: p.PatientID, Name: "sin horarios"})
	require.NoError(t, err)

	_, err = sb.Schedules().CreateBulk(ctx, []schedules.CreateMedicationScheduleData{
		{MedicationID: m.MedicationID, DayOfWeek: 1, TimeOfDay: "20:00:00", IsActive: true},
		{MedicationID: m.MedicationID, DayOfWeek: 1, TimeOfDay: "08:00:00", IsActive: true},
		{MedicationID: m.MedicationID, DayOfWeek: 0, TimeOfDay: "09:00:00", IsActive: false},
	})
	require.NoError(t, err)

	env, err := sb.Schedules().ListByPatient(ctx, p.PatientID)
	require.NoError(t, err)

	assert.Equal(t, "Ana", env.Patient.FirstName)
	assert.Equal(t, 3, env.Count)
	assert.Equal(t, schedules.Summary{
		TotalSchedules: 3, ActiveSchedules: 2, InactiveSchedules: 1, MedicationsCount: 1, TotalDailyDoses: 2,
	}, env.Summary)
	require.Len(t, env.SchedulesByMedication, 1)

	monday := env.SchedulesByDay["Monday"]
	require.Len(t, monday, 2)
	assert.Equal(t, "08:00:00", monday[0].TimeOfDay)
	assert.Equal(t, "X", monday[0].MedicationName)
	assert.Empty(t, env.SchedulesByDay["Friday"])
	assert.Equal(t, 0, env.AllSchedules[0].DayOfWeek)
}

func TestSandbox_BulkIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	sb := memory.NewSandbox()
	p := sb.Seed()

	meds, err := sb.Medications().ListByPatient(ctx, p.PatientID)
	require.NoError(t, err)
	medID := meds.Medications[0].MedicationID

	before, _ := sb.Schedules().ListByPatient(ctx, p.PatientID)

	_, err = sb.Schedules().CreateBulk(ctx, []schedules.CreateMedicationScheduleData{
		{MedicationID: medID, DayOfWeek: 2, TimeOfDay: "10:00:00"},
		{MedicationID: medID, DayOfWeek: 9, TimeOfDay: "10:00:00"},
	})
	assert.Equal(t, http.StatusBadRequest, httpclient.StatusCode(err))

	after, _ := sb.Schedules().ListByPatient(ctx, p.PatientID)
	assert.Equal(t, before.Count, after.Count)
}

func TestSandbox_NotFoundLooksLikeAPI(t *testing.T) {
	ctx := context.Background()
	sb := memory.NewSandbox()

	_, err := sb.Patients().GetByID(ctx, "nope")
	assert.Equal(t, http.StatusNotFound, httpclient.StatusCode(err))

	_, err = sb.Medications().Update(ctx, medications.UpdateMedicationData{MedicationID: "nope"})
	assert.Equal(t, http.StatusNotFound, httpclient.StatusCode(err))
}

func TestSandbox_AdministrationsScopedToPatient(t *testing.T) {
	ctx := context.Background()
	sb := memory.NewSandbox()
	a := sb.Seed()
	b := sb.Seed()

	medsA, _ := sb.Medications().ListByPatient(ctx, a.PatientID)
	_, err := sb.Administrations().Create(ctx, administrations.CreateMedicationAdministrationData{
		MedicationID:      medsA.Medications[0].MedicationID,
		ScheduledDatetime: "2025-03-02 08:00:00",
		ActualDatetime:    "2025-03-02 08:10:00",
	})
	require.NoError(t, err)

	gotA, err := sb.Administrations().ListByPatient(ctx, a.PatientID)
	require.NoError(t, err)
	assert.Len(t, gotA, 1)

	gotB, err := sb.Administrations().ListByPatient(ctx, b.PatientID)
	require.NoError(t, err)
	assert.NotNil(t, gotB)
	assert.Empty(t, gotB)

	_, err = sb.Administrations().Create(ctx, administrations.CreateMedicationAdministrationData{
		MedicationID: medsA.Medications[0].MedicationID, ScheduledDatetime: "ayer", ActualDatetime: "hoy",
	})
	assert.Equal(t, http.StatusBadRequest, httpclient.StatusCode(err))
}

func TestSandbox_ListsInCreationOrder(t *testing.T) {
	ctx := context.Background()
	sb := memory.NewSandbox()

	for _, name := range []string{"A", "B", "C"} {
		_, err := sb.Patients().Create(ctx, patients.CreatePatientData{FirstName: name, LastName: "Z"})
		require.NoError(t, err)
	}
	out, err := sb.Patients().List(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, out.Count)
	assert.Equal(t, "A", out.Patients[0].FirstName)
	assert.Equal(t, "C", out.Patients[2].FirstName)
}
