package model

import "github.com/google/uuid"

type Doctor struct {
	Base
	FullName       string    `db:"fullname" json:"fullname"`
	Specialization *string   `db:"specialization" json:"specialization,omitempty"`
	AppointmentFee float64   `db:"appointment_fee" json:"appointment_fee"`
	ClinicID       uuid.UUID `db:"clinic_id" json:"clinic_id"`
	Slots          []Slot    `db:"-" json:"slots"`
	Clinic         *Clinic   `db:"-" json:"clinic,omitempty"`
}

type CreateDoctorRequest struct {
	FullName       string  `json:"fullname" binding:"required"`
	Specialization *string `json:"specialization"`
	AppointmentFee float64 `json:"appointment_fee" binding:"required"`
	ClinicID       string  `json:"clinic" binding:"required,uuid"`
}
