package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hivcare-api/internal/scheduling"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// appointmentTransitions lists the legal edges; completed and cancelled are terminal.
var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusPending:   {AppointmentStatusConfirmed, AppointmentStatusCancelled},
	AppointmentStatusConfirmed: {AppointmentStatusCompleted, AppointmentStatusCancelled},
	AppointmentStatusCompleted: nil,
	AppointmentStatusCancelled: nil,
}

func (s AppointmentStatus) Valid() bool {
	_, ok := appointmentTransitions[s]
	return ok
}

func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	return canTransition(appointmentTransitions, s, next)
}

func (s AppointmentStatus) Terminal() bool {
	return s.Valid() && len(appointmentTransitions[s]) == 0
}

type Appointment struct {
	Base
	DoctorID          uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	PatientID         uuid.UUID         `db:"patient_id" json:"patient_id"`
	ServiceID         uuid.UUID         `db:"service_id" json:"service_id"`
	Date              time.Time         `db:"appointment_date" json:"date"`
	StartTime         scheduling.Clock  `db:"start_time" json:"start_time"`
	EndTime           scheduling.Clock  `db:"end_time" json:"end_time"`
	Status            AppointmentStatus `db:"status" json:"status"`
	ReferenceCode     string            `db:"reference_code" json:"reference_code"`
	Notes             string            `db:"notes" json:"notes,omitempty"`
	CancelReason      *string           `db:"cancel_reason" json:"cancel_reason,omitempty"`
	ConsultationNotes *string           `db:"consultation_notes" json:"consultation_notes,omitempty"`
}

// Interval returns the booking as a half-open interval on its day.
func (a *Appointment) Interval() scheduling.Interval {
	return scheduling.Interval{Start: a.StartTime, End: a.EndTime}
}

type CreateAppointmentRequest struct {
	DoctorID  string `json:"doctor_id" binding:"required,uuid"`
	PatientID string `json:"patient_id" binding:"required,uuid"`
	ServiceID string `json:"service_id" binding:"required,uuid"`
	Date      string `json:"date" binding:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" binding:"required,clock"`
	Notes     string `json:"notes" binding:"max=1000"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

type CompleteAppointmentRequest struct {
	ConsultationNotes string `json:"consultation_notes" binding:"max=5000"`
}

type AppointmentFilters struct {
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	Status    AppointmentStatus
	StartDate *time.Time
	EndDate   *time.Time
	Pagination
}

// SlotQuery is the input of the availability lookup.
type SlotQuery struct {
	DoctorID  uuid.UUID
	ServiceID uuid.UUID
	Date      time.Time
}

// AppointmentEvent is the payload published for appointment lifecycle changes.
type AppointmentEvent struct {
	AppointmentID uuid.UUID         `json:"appointment_id"`
	ReferenceCode string            `json:"reference_code"`
	Status        AppointmentStatus `json:"status"`
	Date          string            `json:"date"`
	StartTime     string            `json:"start_time"`
	EndTime       string            `json:"end_time"`
	PatientName   string            `json:"patient_name"`
	PatientEmail  string            `json:"patient_email"`
	DoctorName    string            `json:"doctor_name"`
	ServiceName   string            `json:"service_name"`
	Reason        string            `json:"reason,omitempty"`
}
