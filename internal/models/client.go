package models

import (
	"time"

	"github.com/google/uuid"
)

// Client is a renter registered under a tenant
type Client struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	TenantID          uuid.UUID  `json:"-" db:"tenant_id"`
	Name              string     `json:"name" db:"name"`
	IDNumber          string     `json:"id_number" db:"id_number"`
	Email             *string    `json:"email" db:"email"`
	Phone             *string    `json:"phone" db:"phone"`
	Address           *string    `json:"address" db:"address"`
	LicenseNumber     *string    `json:"license_number" db:"license_number"`
	LicenseIssueDate  *time.Time `json:"license_issue_date" db:"license_issue_date"`
	LicenseExpiryDate *time.Time `json:"license_expiry_date" db:"license_expiry_date"`
	IDCardIssueDate   *time.Time `json:"id_card_issue_date" db:"id_card_issue_date"`
	IDCardExpiryDate  *time.Time `json:"id_card_expiry_date" db:"id_card_expiry_date"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

type ClientFilter struct {
	Query  string `json:"query,omitempty"` // matches name, id number, email or phone
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}
