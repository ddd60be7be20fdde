package model

import "time"

// Service is a bookable medical service; Duration is in minutes.
type Service struct {
	Base
	Name        string       `db:"name" json:"name"`
	Description string       `db:"description" json:"description"`
	Duration    int          `db:"duration_minutes" json:"duration_minutes"`
	Price       float64      `db:"price" json:"price"`
	Status      RecordStatus `db:"status" json:"status"`
}

func (s *Service) IsActive() bool {
	return s.Status == RecordStatusActive
}

func (s *Service) DurationValue() time.Duration {
	return time.Duration(s.Duration) * time.Minute
}

type CreateServiceRequest struct {
	Name        string  `json:"name" binding:"required,max=200"`
	Description string  `json:"description" binding:"max=2000"`
	Duration    int     `json:"duration_minutes" binding:"required,min=5,max=480"`
	Price       float64 `json:"price" binding:"min=0"`
}

type UpdateServiceRequest struct {
	Name        *string       `json:"name" binding:"omitempty,max=200"`
	Description *string       `json:"description" binding:"omitempty,max=2000"`
	Duration    *int          `json:"duration_minutes" binding:"omitempty,min=5,max=480"`
	Price       *float64      `json:"price" binding:"omitempty,min=0"`
	Status      *RecordStatus `json:"status" binding:"omitempty,oneof=active inactive"`
}
