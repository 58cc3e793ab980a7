package models

import (
	"time"

	"github.com/google/uuid"
)

type VehicleStatus string

const (
	VehicleStatusAvailable   VehicleStatus = "available"
	VehicleStatusRented      VehicleStatus = "rented"
	VehicleStatusMaintenance VehicleStatus = "maintenance"
)

// Valid reports whether s is one of the known vehicle statuses.
func (s VehicleStatus) Valid() bool {
	switch s {
	case VehicleStatusAvailable, VehicleStatusRented, VehicleStatusMaintenance:
		return true
	}
	return false
}

type Vehicle struct {
	ID                 uuid.UUID     `json:"id" db:"id"`
	TenantID           uuid.UUID     `json:"-" db:"tenant_id"`
	Brand              string        `json:"brand" db:"brand"`
	Model              string        `json:"model" db:"model"`
	Year               int           `json:"year" db:"year"`
	RegistrationNumber string        `json:"registration_number" db:"registration_number"`
	DailyRate          float64       `json:"daily_rate" db:"daily_rate"`
	Status             VehicleStatus `json:"status" db:"status"`
	ImageURL           *string       `json:"image_url" db:"image_url"`
	CreatedAt          time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at" db:"updated_at"`
}

// VehicleFilter narrows vehicle listings
type VehicleFilter struct {
	Status *VehicleStatus `json:"status,omitempty"`
	Limit  int           `json:"limit,omitempty"`
	Offset int           `json:"offset,omitempty"`
}
