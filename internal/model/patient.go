package model

import (
	"time"
)

type Patient struct {
	Base
	Name        string       `db:"name" json:"name"`
	Email       string       `db:"email" json:"email"`
	Phone       string       `db:"phone" json:"phone"`
	DateOfBirth *time.Time   `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender      string       `db:"gender" json:"gender"`
	Status      RecordStatus `db:"status" json:"status"`
}

func (p *Patient) IsActive() bool {
	return p.Status == RecordStatusActive
}

type CreatePatientRequest struct {
	Name        string     `json:"name" binding:"required,max=200"`
	Email       string     `json:"email" binding:"required,email"`
	Phone       string     `json:"phone" binding:"max=32"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Gender      string     `json:"gender" binding:"omitempty,oneof=male female other"`
}

type UpdatePatientRequest struct {
	Name        *string       `json:"name" binding:"omitempty,max=200"`
	Email       *string       `json:"email" binding:"omitempty,email"`
	Phone       *string       `json:"phone" binding:"omitempty,max=32"`
	DateOfBirth *time.Time    `json:"date_of_birth"`
	Gender      *string       `json:"gender" binding:"omitempty,oneof=male female other"`
	Status      *RecordStatus `json:"status" binding:"omitempty,oneof=active inactive"`
}

type PatientFilters struct {
	Status RecordStatus
	Search string
	Pagination
}
