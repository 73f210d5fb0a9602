package patients

import (
	"context"
	"strings"
	"time"

	"medication-dashboard/internal/platform/optimistic"
	"medication-dashboard/internal/platform/querycache"
	"medication-dashboard/internal/platform/validate"

	"go.uber.org/zap"
)

func ListKey() querycache.Key { return querycache.All(querycache.Patients) }

func Key(id string) querycache.Key { return querycache.By(id, querycache.Patients) }

// Fetchers resuelve la lista de pacientes y cada paciente por id.
func Fetchers(repo Repository) querycache.Resolver {
	return func(k querycache.Key) (querycache.FetchFunc, bool) {
		if k.Entity != querycache.Patients {
			return nil, false
		}
		if k.IsAll() {
			return func(ctx context.Context) (any, error) { return repo.List(ctx) }, true
		}
		id := k.Scope
		return func(ctx context.Context) (any, error) { return repo.GetByID(ctx, id) }, true
	}
}

type Service struct {
	store  *querycache.Store
	create *optimistic.Mutation[CreatePatientData, Patient]
}

func NewService(repo Repository, store *querycache.Store, log *zap.Logger) *Service {
	return &Service{
		store: store,
		// sin valor optimista: el id lo asigna el API
		create: optimistic.New(store, optimistic.Spec[CreatePatientData, Patient]{
			Name:   "createPatient",
			Keys:   func(CreatePatientData) []querycache.Key { return []querycache.Key{ListKey()} },
			Commit: repo.Create,
		}, log),
	}
}

func (s *Service) List(ctx context.Context) (PatientsResponse, error) {
	return querycache.QueryAs[PatientsResponse](ctx, s.store, ListKey())
}

func (s *Service) GetByID(ctx context.Context, id string) (Patient, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Patient{}, validate.Errors{{Field: "patient_id", Message: "is required"}}
	}
	return querycache.QueryAs[Patient](ctx, s.store, Key(id))
}

func (s *Service) Create(ctx context.Context, data CreatePatientData) (Patient, error) {
	data.FirstName = strings.TrimSpace(data.FirstName)
	data.LastName = strings.TrimSpace(data.LastName)
	data.DateOfBirth = strings.TrimSpace(data.DateOfBirth)

	var v validate.Collector
	v.Required("first_name", data.FirstName)
	v.Required("last_name", data.LastName)
	if data.DateOfBirth != "" {
		_, err := time.Parse(time.DateOnly, data.DateOfBirth)
		v.Check(err == nil, "date_of_birth", "must be YYYY-MM-DD")
	} else {
		v.Add("date_of_birth", "is required")
	}
	if err := v.Err(); err != nil {
		return Patient{}, err
	}

	return s.create.Run(ctx, data)
}
