package model

import (
	"time"

	"github.com/google/uuid"
)

// Booking records a successful allocation. The slot columns are a snapshot
// taken at allocation time, not a live reference: releasing the slot later
// leaves the booking untouched as a historical record.
type Booking struct {
	Base
	FullName      string    `db:"fullname" json:"fullname"`
	Email         string    `db:"email" json:"email"`
	DoctorID      uuid.UUID `db:"doctor_id" json:"doctor_id"`
	SlotID        uuid.UUID `db:"slot_id" json:"slot_id"`
	SlotNumber    int       `db:"slot_number" json:"slot_number"`
	SlotStartTime time.Time `db:"slot_start_time" json:"slot_start_time"`
	SlotEndTime   time.Time `db:"slot_end_time" json:"slot_end_time"`
}

type CreateBookingRequest struct {
	FullName string `json:"fullname" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	DoctorID string `json:"doctor_id" binding:"required,uuid"`
}

// BookingResponse echoes the allocated slot and patient details back to the
// caller.
type BookingResponse struct {
	Slot    Slot        `json:"slot"`
	Patient PatientEcho `json:"user"`
}

type PatientEcho struct {
	FullName string `json:"fullname"`
	Email    string `json:"email"`
}
