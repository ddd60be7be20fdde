package model

import (
	"time"

	"github.com/google/uuid"
)

type ARVDrug struct {
	Base
	Name        string       `db:"name" json:"name"`
	GenericName string       `db:"generic_name" json:"generic_name"`
	DrugClass   string       `db:"drug_class" json:"drug_class"`
	Form        string       `db:"form" json:"form"`
	Strength    string       `db:"strength" json:"strength"`
	Status      RecordStatus `db:"status" json:"status"`
}

func (d *ARVDrug) IsActive() bool {
	return d.Status == RecordStatusActive
}

type CreateDrugRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	GenericName string `json:"generic_name" binding:"max=200"`
	DrugClass   string `json:"drug_class" binding:"required,oneof=NRTI NNRTI PI INSTI CCR5 FI PK"`
	Form        string `json:"form" binding:"max=100"`
	Strength    string `json:"strength" binding:"max=100"`
}

type UpdateDrugRequest struct {
	Name        *string       `json:"name" binding:"omitempty,max=200"`
	GenericName *string       `json:"generic_name" binding:"omitempty,max=200"`
	DrugClass   *string       `json:"drug_class" binding:"omitempty,oneof=NRTI NNRTI PI INSTI CCR5 FI PK"`
	Form        *string       `json:"form" binding:"omitempty,max=100"`
	Strength    *string       `json:"strength" binding:"omitempty,max=100"`
	Status      *RecordStatus `json:"status" binding:"omitempty,oneof=active inactive"`
}

type RegimenLine string

const (
	RegimenLineFirst  RegimenLine = "first"
	RegimenLineSecond RegimenLine = "second"
	RegimenLineThird  RegimenLine = "third"
)

// Regimen is a named combination of ARV drugs with dosing instructions.
type Regimen struct {
	Base
	Name        string        `db:"name" json:"name"`
	Description string        `db:"description" json:"description"`
	Line        RegimenLine   `db:"line" json:"line"`
	Status      RecordStatus  `db:"status" json:"status"`
	Drugs       []RegimenDrug `db:"-" json:"drugs"`
}

func (r *Regimen) IsActive() bool {
	return r.Status == RecordStatusActive
}

type RegimenDrug struct {
	RegimenID uuid.UUID `db:"regimen_id" json:"-"`
	DrugID    uuid.UUID `db:"drug_id" json:"drug_id"`
	DrugName  string    `db:"drug_name" json:"drug_name,omitempty"`
	Dosage    string    `db:"dosage" json:"dosage"`
	Frequency string    `db:"frequency" json:"frequency"`
}

type RegimenDrugRequest struct {
	DrugID    string `json:"drug_id" binding:"required,uuid"`
	Dosage    string `json:"dosage" binding:"required,max=100"`
	Frequency string `json:"frequency" binding:"required,max=100"`
}

type CreateRegimenRequest struct {
	Name        string               `json:"name" binding:"required,max=200"`
	Description string               `json:"description" binding:"max=2000"`
	Line        RegimenLine          `json:"line" binding:"required,oneof=first second third"`
	Drugs       []RegimenDrugRequest `json:"drugs" binding:"required,min=1,dive"`
}

type PrescriptionStatus string

const (
	PrescriptionStatusActive PrescriptionStatus = "active"
	PrescriptionStatusEnded  PrescriptionStatus = "ended"
)

var prescriptionTransitions = map[PrescriptionStatus][]PrescriptionStatus{
	PrescriptionStatusActive: {PrescriptionStatusEnded},
	PrescriptionStatusEnded:  nil,
}

func (s PrescriptionStatus) CanTransitionTo(next PrescriptionStatus) bool {
	return canTransition(prescriptionTransitions, s, next)
}

type Prescription struct {
	Base
	PatientID uuid.UUID          `db:"patient_id" json:"patient_id"`
	DoctorID  uuid.UUID          `db:"doctor_id" json:"doctor_id"`
	RegimenID uuid.UUID          `db:"regimen_id" json:"regimen_id"`
	StartDate time.Time          `db:"start_date" json:"start_date"`
	EndDate   *time.Time         `db:"end_date" json:"end_date,omitempty"`
	Status    PrescriptionStatus `db:"status" json:"status"`
	Notes     string             `db:"notes" json:"notes,omitempty"`
}

type CreatePrescriptionRequest struct {
	PatientID string `json:"patient_id" binding:"required,uuid"`
	DoctorID  string `json:"doctor_id" binding:"required,uuid"`
	RegimenID string `json:"regimen_id" binding:"required,uuid"`
	StartDate string `json:"start_date" binding:"required,datetime=2006-01-02"`
	Notes     string `json:"notes" binding:"max=2000"`
}
