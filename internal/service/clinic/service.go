package clinic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/jwalitptl/scheduler-api/internal/model"
	"github.com/jwalitptl/scheduler-api/internal/repository"
	apperrors "github.com/jwalitptl/scheduler-api/pkg/errors"
)

const (
	cacheTTL     = 5 * time.Minute
	cacheCleanup = 10 * time.Minute
)

type ClinicServicer interface {
	CreateClinic(ctx context.Context, req *model.CreateClinicRequest) (*model.Clinic, error)
	GetClinic(ctx context.Context, id uuid.UUID) (*model.Clinic, error)
	UpdateClinic(ctx context.Context, id uuid.UUID, req *model.UpdateClinicRequest) (*model.Clinic, error)
	ListClinics(ctx context.Context) ([]*model.Clinic, error)
}

type Service struct {
	repo  repository.ClinicRepository
	cache *gocache.Cache
}

func NewService(repo repository.ClinicRepository) *Service {
	return &Service{
		repo:  repo,
		cache: gocache.New(cacheTTL, cacheCleanup),
	}
}

func (s *Service) CreateClinic(ctx context.Context, req *model.CreateClinicRequest) (*model.Clinic, error) {
	clinic := &model.Clinic{
		Name:       req.Name,
		Address:    req.Address,
		OpenTime:   req.OpenTime,
		CloseTime:  req.CloseTime,
		LunchStart: req.LunchStart,
		LunchEnd:   req.LunchEnd,
	}

	if err := validateHours(clinic); err != nil {
		return nil, apperrors.InvalidInput(err.Error(), err)
	}

	if err := s.repo.Create(ctx, clinic); err != nil {
		return nil, apperrors.Persistence(err)
	}

	s.cache.Set(clinic.ID.String(), clinic, gocache.DefaultExpiration)
	return clinic, nil
}

// GetClinic serves from cache when possible. Clinic records are read on
// every doctor creation, and stale operating hours are harmless there:
// slots are generated from whatever hours the doctor was created against.
func (s *Service) GetClinic(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	if cached, ok := s.cache.Get(id.String()); ok {
		return cached.(*model.Clinic), nil
	}

	clinic, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("clinic", err)
		}
		return nil, apperrors.Persistence(err)
	}

	s.cache.Set(id.String(), clinic, gocache.DefaultExpiration)
	return clinic, nil
}

func (s *Service) UpdateClinic(ctx context.Context, id uuid.UUID, req *model.UpdateClinicRequest) (*model.Clinic, error) {
	clinic, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("clinic", err)
		}
		return nil, apperrors.Persistence(err)
	}

	clinic.Name = req.Name
	clinic.Address = req.Address
	clinic.OpenTime = req.OpenTime
	clinic.CloseTime = req.CloseTime
	clinic.LunchStart = req.LunchStart
	clinic.LunchEnd = req.LunchEnd

	if err := validateHours(clinic); err != nil {
		return nil, apperrors.InvalidInput(err.Error(), err)
	}

	// Doctors created against the previous hours keep their slot sequences.
	if err := s.repo.Update(ctx, clinic); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("clinic", err)
		}
		return nil, apperrors.Persistence(err)
	}

	s.cache.Set(id.String(), clinic, gocache.DefaultExpiration)
	return clinic, nil
}

func (s *Service) ListClinics(ctx context.Context) ([]*model.Clinic, error) {
	clinics, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Persistence(err)
	}
	return clinics, nil
}

func validateHours(clinic *model.Clinic) error {
	if !clinic.OpenTime.Before(clinic.CloseTime) {
		return fmt.Errorf("opentime must be before closetime")
	}
	if !clinic.LunchStart.Before(clinic.LunchEnd) {
		return fmt.Errorf("lunch start must be before lunch end")
	}
	return nil
}
