package model

import (
	"github.com/google/uuid"

	"github.com/jwalitptl/hivcare-api/internal/scheduling"
)

type Doctor struct {
	Base
	Name         string       `db:"name" json:"name"`
	Email        string       `db:"email" json:"email"`
	Specialty    string       `db:"specialty" json:"specialty"`
	PasswordHash string       `db:"password_hash" json:"-"`
	Status       RecordStatus `db:"status" json:"status"`
}

func (d *Doctor) IsActive() bool {
	return d.Status == RecordStatusActive
}

type CreateDoctorRequest struct {
	Name      string `json:"name" binding:"required,max=200"`
	Email     string `json:"email" binding:"required,email"`
	Specialty string `json:"specialty" binding:"max=200"`
	Password  string `json:"password" binding:"omitempty,min=8,max=72"`
}

type UpdateDoctorRequest struct {
	Name      *string       `json:"name" binding:"omitempty,max=200"`
	Email     *string       `json:"email" binding:"omitempty,email"`
	Specialty *string       `json:"specialty" binding:"omitempty,max=200"`
	Status    *RecordStatus `json:"status" binding:"omitempty,oneof=active inactive"`
}

type DoctorFilters struct {
	Status RecordStatus
	Search string
	Pagination
}

// WorkingHours is one doctor's availability window for one weekday.
type WorkingHours struct {
	ID        uuid.UUID        `db:"id" json:"id"`
	DoctorID  uuid.UUID        `db:"doctor_id" json:"doctor_id"`
	DayOfWeek int              `db:"day_of_week" json:"day_of_week"`
	StartTime scheduling.Clock `db:"start_time" json:"start_time"`
	EndTime   scheduling.Clock `db:"end_time" json:"end_time"`
}

func (w *WorkingHours) Window() *scheduling.Window {
	return &scheduling.Window{Start: w.StartTime, End: w.EndTime}
}

type WorkingHoursEntry struct {
	DayOfWeek int    `json:"day_of_week" binding:"weekday"`
	StartTime string `json:"start_time" binding:"required,clock"`
	EndTime   string `json:"end_time" binding:"required,clock"`
}

type SetWorkingHoursRequest struct {
	Days []WorkingHoursEntry `json:"days" binding:"dive"`
}
