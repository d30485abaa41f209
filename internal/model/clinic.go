package model

import "time"

// Clinic holds a clinic's operating calendar. All times are wall-clock
// timestamps on a shared reference date; slot arithmetic compares them
// directly, so callers must keep them on the same date.
type Clinic struct {
	Base
	Name       string    `db:"name" json:"name"`
	Address    string    `db:"address" json:"address"`
	OpenTime   time.Time `db:"open_time" json:"opentime"`
	CloseTime  time.Time `db:"close_time" json:"closetime"`
	LunchStart time.Time `db:"lunch_start" json:"lunch_start_time"`
	LunchEnd   time.Time `db:"lunch_end" json:"lunch_end_time"`
}

type CreateClinicRequest struct {
	Name       string    `json:"name" binding:"required"`
	Address    string    `json:"address" binding:"required"`
	OpenTime   time.Time `json:"opentime" binding:"required"`
	CloseTime  time.Time `json:"closetime" binding:"required,gtfield=OpenTime"`
	LunchStart time.Time `json:"lunch_start_time" binding:"required"`
	LunchEnd   time.Time `json:"lunch_end_time" binding:"required,gtfield=LunchStart"`
}

type UpdateClinicRequest struct {
	Name       string    `json:"name" binding:"required"`
	Address    string    `json:"address" binding:"required"`
	OpenTime   time.Time `json:"opentime" binding:"required"`
	CloseTime  time.Time `json:"closetime" binding:"required,gtfield=OpenTime"`
	LunchStart time.Time `json:"lunch_start_time" binding:"required"`
	LunchEnd   time.Time `json:"lunch_end_time" binding:"required,gtfield=LunchStart"`
}
