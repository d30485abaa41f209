package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/scheduler-api/internal/model"
	"github.com/jwalitptl/scheduler-api/internal/repository"
)

type doctorRepository struct {
	BaseRepository
}

func NewDoctorRepository(base BaseRepository) repository.DoctorRepository {
	return &doctorRepository{base}
}

func (r *doctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	doctor.ID = uuid.New()
	doctor.CreatedAt = time.Now()
	doctor.UpdatedAt = time.Now()

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO doctors (
				id, fullname, specialization, appointment_fee, clinic_id,
				created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7
			)
		`
		_, err := tx.ExecContext(ctx, query,
			doctor.ID,
			doctor.FullName,
			doctor.Specialization,
			doctor.AppointmentFee,
			doctor.ClinicID,
			doctor.CreatedAt,
			doctor.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create doctor: %w", err)
		}

		slotQuery := `
			INSERT INTO slots (
				id, doctor_id, slot_number, start_time, end_time, available
			) VALUES (
				$1, $2, $3, $4, $5, $6
			)
		`
		for i := range doctor.Slots {
			slot := &doctor.Slots[i]
			slot.ID = uuid.New()
			slot.DoctorID = doctor.ID

			if _, err := tx.ExecContext(ctx, slotQuery,
				slot.ID,
				slot.DoctorID,
				slot.Number,
				slot.StartTime,
				slot.EndTime,
				slot.Available,
			); err != nil {
				return fmt.Errorf("failed to create slot %d: %w", slot.Number, err)
			}
		}

		return nil
	})
}

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	query := `
		SELECT
			id, fullname, specialization, appointment_fee, clinic_id,
			created_at, updated_at
		FROM doctors
		WHERE id = $1
	`
	var doctor model.Doctor
	err := r.db.GetContext(ctx, &doctor, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}

	slots, err := r.getSlots(ctx, id)
	if err != nil {
		return nil, err
	}
	doctor.Slots = slots

	return &doctor, nil
}

func (r *doctorRepository) List(ctx context.Context) ([]*model.Doctor, error) {
	query := `
		SELECT
			d.id, d.fullname, d.specialization, d.appointment_fee, d.clinic_id,
			d.created_at, d.updated_at
		FROM doctors d
		ORDER BY d.created_at DESC
	`
	var doctors []*model.Doctor
	if err := r.db.SelectContext(ctx, &doctors, query); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}

	for _, doctor := range doctors {
		slots, err := r.getSlots(ctx, doctor.ID)
		if err != nil {
			return nil, err
		}
		doctor.Slots = slots
	}

	return doctors, nil
}

func (r *doctorRepository) getSlots(ctx context.Context, doctorID uuid.UUID) ([]model.Slot, error) {
	query := `
		SELECT id, doctor_id, slot_number, start_time, end_time, available
		FROM slots
		WHERE doctor_id = $1
		ORDER BY slot_number
	`
	var slots []model.Slot
	if err := r.db.SelectContext(ctx, &slots, query, doctorID); err != nil {
		return nil, fmt.Errorf("failed to get slots: %w", err)
	}
	return slots, nil
}
