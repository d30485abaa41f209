package doctor

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jwalitptl/scheduler-api/internal/model"
	"github.com/jwalitptl/scheduler-api/internal/repository"
	"github.com/jwalitptl/scheduler-api/internal/schedule"
	"github.com/jwalitptl/scheduler-api/internal/service/clinic"
	apperrors "github.com/jwalitptl/scheduler-api/pkg/errors"
	"github.com/jwalitptl/scheduler-api/pkg/metrics"
	"github.com/jwalitptl/scheduler-api/pkg/validator"
)

type DoctorServicer interface {
	CreateDoctor(ctx context.Context, req *model.CreateDoctorRequest) (*model.Doctor, error)
	GetDoctor(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
	ListDoctors(ctx context.Context) ([]*model.Doctor, error)
}

type Service struct {
	repo      repository.DoctorRepository
	clinicSvc clinic.ClinicServicer
	metrics   *metrics.Metrics
	validator *validator.Validator
}

func NewService(repo repository.DoctorRepository, clinicSvc clinic.ClinicServicer, m *metrics.Metrics) *Service {
	return &Service{
		repo:      repo,
		clinicSvc: clinicSvc,
		metrics:   m,
		validator: validator.New(),
	}
}

// CreateDoctor resolves the clinic, generates the doctor's full slot set
// from its operating hours and persists both. Slots are generated exactly
// once here; later clinic updates do not touch them.
func (s *Service) CreateDoctor(ctx context.Context, req *model.CreateDoctorRequest) (*model.Doctor, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, apperrors.InvalidInput(err.Error(), err)
	}

	clinicID, err := uuid.Parse(req.ClinicID)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid clinic ID", err)
	}

	owner, err := s.clinicSvc.GetClinic(ctx, clinicID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrNotFound) {
			// An unresolvable clinic reference is a client error, not a 404:
			// the doctor payload itself is malformed.
			return nil, apperrors.InvalidInput("invalid clinic ID", err)
		}
		return nil, err
	}

	doctor := &model.Doctor{
		FullName:       req.FullName,
		Specialization: req.Specialization,
		AppointmentFee: req.AppointmentFee,
		ClinicID:       owner.ID,
		Slots:          schedule.Generate(owner),
	}

	if err := s.repo.Create(ctx, doctor); err != nil {
		return nil, apperrors.Persistence(err)
	}

	s.metrics.SlotsGenerated.Add(float64(len(doctor.Slots)))
	doctor.Clinic = owner
	return doctor, nil
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	doctor, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("doctor", err)
		}
		return nil, apperrors.Persistence(err)
	}

	if owner, err := s.clinicSvc.GetClinic(ctx, doctor.ClinicID); err == nil {
		doctor.Clinic = owner
	}

	return doctor, nil
}

func (s *Service) ListDoctors(ctx context.Context) ([]*model.Doctor, error) {
	doctors, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Persistence(err)
	}

	for _, doctor := range doctors {
		if owner, err := s.clinicSvc.GetClinic(ctx, doctor.ClinicID); err == nil {
			doctor.Clinic = owner
		}
	}

	return doctors, nil
}
