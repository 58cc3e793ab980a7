package models

import (
	"time"

	"github.com/google/uuid"
)

// CompanySettings is the tenant-level data printed on rental contracts.
type CompanySettings struct {
	TenantID      uuid.UUID `json:"-" db:"tenant_id"`
	CompanyName   string    `json:"company_name" db:"company_name"`
	Address       *string   `json:"address" db:"address"`
	Phone         *string   `json:"phone" db:"phone"`
	Email         *string   `json:"email" db:"email"`
	TaxID         *string   `json:"tax_id" db:"tax_id"`
	LogoURL       *string   `json:"logo_url" db:"logo_url"`
	ContractTerms string    `json:"contract_terms" db:"contract_terms"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
