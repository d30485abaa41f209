package booking

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/scheduler-api/internal/model"
	"github.com/jwalitptl/scheduler-api/internal/repository"
	apperrors "github.com/jwalitptl/scheduler-api/pkg/errors"
	"github.com/jwalitptl/scheduler-api/pkg/metrics"
	"github.com/jwalitptl/scheduler-api/pkg/validator"
)

type BookingServicer interface {
	Allocate(ctx context.Context, req *model.CreateBookingRequest) (*model.BookingResponse, error)
	Release(ctx context.Context, doctorID, slotID uuid.UUID) error
}

// Service is the allocation manager. The scan for the first free slot and
// the flip that claims it must be one atomic unit per doctor: without that,
// two concurrent requests can both observe the same slot as free and both
// claim it. A per-doctor mutex serializes allocate/release within this
// process, and the repository's guarded UPDATE re-checks availability at
// write time, so a racing writer from another process loses there and the
// scan is retried.
type Service struct {
	doctors   repository.DoctorRepository
	bookings  repository.BookingRepository
	metrics   *metrics.Metrics
	validator *validator.Validator

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewService(doctors repository.DoctorRepository, bookings repository.BookingRepository, m *metrics.Metrics) *Service {
	return &Service{
		doctors:   doctors,
		bookings:  bookings,
		metrics:   m,
		validator: validator.New(),
		locks:     make(map[uuid.UUID]*sync.Mutex),
	}
}

// doctorLock returns the mutex serializing mutations for one doctor.
// Operations on different doctors proceed in parallel.
func (s *Service) doctorLock(id uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}

// Allocate claims the first available slot of the doctor, earliest first,
// and records a booking snapshotting the slot and patient details. On
// success exactly one previously free slot is unavailable and exactly one
// booking references it.
func (s *Service) Allocate(ctx context.Context, req *model.CreateBookingRequest) (*model.BookingResponse, error) {
	timer := prometheus.NewTimer(s.metrics.AllocationLatency)
	defer timer.ObserveDuration()

	if err := s.validator.Validate(req); err != nil {
		s.metrics.AllocationsTotal.WithLabelValues("invalid").Inc()
		return nil, apperrors.InvalidInput(err.Error(), err)
	}

	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		s.metrics.AllocationsTotal.WithLabelValues("invalid").Inc()
		return nil, apperrors.InvalidInput("invalid doctor ID", err)
	}

	lock := s.doctorLock(doctorID)
	lock.Lock()
	defer lock.Unlock()

	for {
		doctor, err := s.doctors.Get(ctx, doctorID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				s.metrics.AllocationsTotal.WithLabelValues("not_found").Inc()
				return nil, apperrors.NotFound("doctor", err)
			}
			s.metrics.AllocationsTotal.WithLabelValues("error").Inc()
			return nil, apperrors.Persistence(err)
		}

		slot := firstAvailable(doctor.Slots)
		if slot == nil {
			s.metrics.AllocationsTotal.WithLabelValues("no_availability").Inc()
			return nil, apperrors.NoAvailability("no available slots for this doctor")
		}

		booking := &model.Booking{
			FullName:      req.FullName,
			Email:         req.Email,
			DoctorID:      doctorID,
			SlotID:        slot.ID,
			SlotNumber:    slot.Number,
			SlotStartTime: slot.StartTime,
			SlotEndTime:   slot.EndTime,
		}

		if err := s.bookings.Allocate(ctx, booking); err != nil {
			if errors.Is(err, repository.ErrSlotUnavailable) {
				// Lost the slot to a writer outside this process; re-read
				// and scan again.
				continue
			}
			s.metrics.AllocationsTotal.WithLabelValues("error").Inc()
			return nil, apperrors.Persistence(err)
		}

		s.metrics.AllocationsTotal.WithLabelValues("success").Inc()

		allocated := *slot
		allocated.DoctorID = doctorID
		allocated.Available = false
		return &model.BookingResponse{
			Slot: allocated,
			Patient: model.PatientEcho{
				FullName: req.FullName,
				Email:    req.Email,
			},
		}, nil
	}
}

// Release marks a previously allocated slot available again. Releasing an
// already available slot is a no-op success. The booking created at
// allocation time is retained as a historical record.
func (s *Service) Release(ctx context.Context, doctorID, slotID uuid.UUID) error {
	lock := s.doctorLock(doctorID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := s.doctors.Get(ctx, doctorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.metrics.ReleasesTotal.WithLabelValues("not_found").Inc()
			return apperrors.NotFound("doctor", err)
		}
		s.metrics.ReleasesTotal.WithLabelValues("error").Inc()
		return apperrors.Persistence(err)
	}

	if err := s.bookings.ReleaseSlot(ctx, doctorID, slotID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.metrics.ReleasesTotal.WithLabelValues("not_found").Inc()
			return apperrors.NotFound("slot", err)
		}
		s.metrics.ReleasesTotal.WithLabelValues("error").Inc()
		return apperrors.Persistence(err)
	}

	s.metrics.ReleasesTotal.WithLabelValues("success").Inc()
	return nil
}

func firstAvailable(slots []model.Slot) *model.Slot {
	for i := range slots {
		if slots[i].Available {
			return &slots[i]
		}
	}
	return nil
}
