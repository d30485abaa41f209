package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/scheduler-api/internal/model"
)

// Sentinel errors shared by all repository implementations.
var (
	ErrNotFound = errors.New("record not found")

	// ErrSlotUnavailable is returned when a claim races another writer and
	// the slot is no longer free at commit time.
	ErrSlotUnavailable = errors.New("slot no longer available")
)

// All repository interfaces in one file
type (
	// ClinicRepository handles clinic operations
	ClinicRepository interface {
		Create(ctx context.Context, clinic *model.Clinic) error
		Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error)
		Update(ctx context.Context, clinic *model.Clinic) error
		List(ctx context.Context) ([]*model.Clinic, error)
	}

	// DoctorRepository persists doctors together with their slot sequences.
	DoctorRepository interface {
		// Create inserts the doctor and its full slot set in one transaction.
		Create(ctx context.Context, doctor *model.Doctor) error
		// Get returns the doctor with slots ordered by slot number.
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		List(ctx context.Context) ([]*model.Doctor, error)
	}

	// BookingRepository performs the guarded slot mutations. Both operations
	// run the slot flip and the record write in a single transaction so a
	// failed write never strands a claimed slot.
	BookingRepository interface {
		// Allocate claims booking.SlotID for booking.DoctorID and inserts the
		// booking. Returns ErrSlotUnavailable if the slot was taken since the
		// caller's scan.
		Allocate(ctx context.Context, booking *model.Booking) error
		// ReleaseSlot marks the slot available again. Releasing an already
		// available slot succeeds. Returns ErrNotFound when the slot does not
		// belong to the doctor.
		ReleaseSlot(ctx context.Context, doctorID, slotID uuid.UUID) error
	}

	// OutboxRepository drains events recorded alongside booking mutations.
	OutboxRepository interface {
		GetPending(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
		DeleteProcessedBefore(ctx context.Context, cutoff time.Time) error
	}
)
