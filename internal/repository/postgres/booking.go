package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/scheduler-api/internal/model"
	"github.com/jwalitptl/scheduler-api/internal/repository"
)

type bookingRepository struct {
	BaseRepository
}

func NewBookingRepository(base BaseRepository) repository.BookingRepository {
	return &bookingRepository{base}
}

// Allocate flips the chosen slot and inserts the booking in one transaction.
// The UPDATE re-checks availability at write time, so a concurrent claim of
// the same slot fails here instead of double-booking.
func (r *bookingRepository) Allocate(ctx context.Context, booking *model.Booking) error {
	booking.ID = uuid.New()
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = time.Now()

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		claim := `
			UPDATE slots
			SET available = FALSE
			WHERE id = $1 AND doctor_id = $2 AND available
		`
		result, err := tx.ExecContext(ctx, claim, booking.SlotID, booking.DoctorID)
		if err != nil {
			return fmt.Errorf("failed to claim slot: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return repository.ErrSlotUnavailable
		}

		insert := `
			INSERT INTO bookings (
				id, fullname, email, doctor_id, slot_id, slot_number,
				slot_start_time, slot_end_time, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
			)
		`
		if _, err := tx.ExecContext(ctx, insert,
			booking.ID,
			booking.FullName,
			booking.Email,
			booking.DoctorID,
			booking.SlotID,
			booking.SlotNumber,
			booking.SlotStartTime,
			booking.SlotEndTime,
			booking.CreatedAt,
			booking.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}

		return r.recordEvent(ctx, tx, model.EventBookingCreated, booking)
	})
}

// ReleaseSlot marks the slot available again. The flip is idempotent: an
// already available slot matches the WHERE clause and succeeds. The booking
// created at allocation time is kept as a historical record.
func (r *bookingRepository) ReleaseSlot(ctx context.Context, doctorID, slotID uuid.UUID) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		release := `
			UPDATE slots
			SET available = TRUE
			WHERE id = $1 AND doctor_id = $2
		`
		result, err := tx.ExecContext(ctx, release, slotID, doctorID)
		if err != nil {
			return fmt.Errorf("failed to release slot: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return repository.ErrNotFound
		}

		return r.recordEvent(ctx, tx, model.EventBookingRejected, map[string]interface{}{
			"doctor_id": doctorID,
			"slot_id":   slotID,
		})
	})
}

func (r *bookingRepository) recordEvent(ctx context.Context, tx *sqlx.Tx, eventType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	query := `
		INSERT INTO outbox_events (
			id, event_type, payload, status, retry_count, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, 0, $5, $5
		)
	`
	if _, err := tx.ExecContext(ctx, query,
		uuid.New(),
		eventType,
		data,
		model.OutboxStatusPending,
		time.Now(),
	); err != nil {
		return fmt.Errorf("failed to record outbox event: %w", err)
	}
	return nil
}
