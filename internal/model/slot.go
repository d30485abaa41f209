package model

import (
	"time"

	"github.com/google/uuid"
)

// Slot is a single bookable interval on a doctor's calendar. The full slot
// set is generated once, at doctor creation; after that only Available
// changes.
type Slot struct {
	ID        uuid.UUID `db:"id" json:"id"`
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Number    int       `db:"slot_number" json:"slot"`
	StartTime time.Time `db:"start_time" json:"start_time"`
	EndTime   time.Time `db:"end_time" json:"end_time"`
	Available bool      `db:"available" json:"available"`
}
