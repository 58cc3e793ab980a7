package models

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusReserved  BookingStatus = "reserved"
	BookingStatusActive    BookingStatus = "active"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusReserved, BookingStatusActive, BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s BookingStatus) Terminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

// Blocking reports whether a booking in status s holds its vehicle's dates.
func (s BookingStatus) Blocking() bool {
	return s == BookingStatusActive || s == BookingStatusReserved
}

// Booking covers both immediate rentals and advance reservations.
// StartDate and EndDate are calendar dates at UTC midnight.
type Booking struct {
	ID         uuid.UUID     `json:"id" db:"id"`
	TenantID   uuid.UUID     `json:"-" db:"tenant_id"`
	VehicleID  uuid.UUID     `json:"vehicle_id" db:"vehicle_id"`
	ClientID   uuid.UUID     `json:"client_id" db:"client_id"`
	StartDate  time.Time     `json:"start_date" db:"start_date"`
	EndDate    time.Time     `json:"end_date" db:"end_date"`
	StartAt    *time.Time    `json:"start_at,omitempty" db:"start_at"`
	EndAt      *time.Time    `json:"end_at,omitempty" db:"end_at"`
	TotalPrice float64       `json:"total_price" db:"total_price"`
	Status     BookingStatus `json:"status" db:"status"`
	Notes      *string       `json:"notes" db:"notes"`
	CreatedAt  time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at" db:"updated_at"`
}

// BookingView is a booking joined with the vehicle and client columns listings display.
type BookingView struct {
	Booking
	VehicleBrand       string `json:"vehicle_brand"`
	VehicleModel       string `json:"vehicle_model"`
	RegistrationNumber string `json:"registration_number"`
	ClientName         string `json:"client_name"`
}

type BookingFilter struct {
	Statuses  []BookingStatus `json:"statuses,omitempty"`
	VehicleID *uuid.UUID      `json:"vehicle_id,omitempty"`
	ClientID  *uuid.UUID      `json:"client_id,omitempty"`
	Limit     int             `json:"limit,omitempty"`
	Offset    int             `json:"offset,omitempty"`
}

// BookingExtension prolongs a booking. Extensions are append-only.
type BookingExtension struct {
	ID        uuid.UUID `json:"id" db:"id"`
	BookingID uuid.UUID `json:"booking_id" db:"booking_id"`
	Days      int       `json:"days" db:"days"`
	Price     float64   `json:"price" db:"price"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// BookingInput carries the caller-provided fields for a new booking.
type BookingInput struct {
	VehicleID uuid.UUID
	ClientID  uuid.UUID
	StartDate time.Time
	EndDate   time.Time
	StartAt   *time.Time
	EndAt     *time.Time
	Notes     *string
}
