package models

import "time"

// ContractSnapshot is the flattened, already-validated view of a booking handed to the document renderer.
// It carries no internal identifiers beyond the printable contract number.
type ContractSnapshot struct {
	ContractNumber string
	IssuedAt       time.Time

	CompanyName    string
	CompanyAddress string
	CompanyPhone   string
	CompanyEmail   string
	CompanyTaxID   string
	Logo           []byte
	LogoType       string
	Terms          string

	ClientName          string
	ClientIDNumber      string
	ClientEmail         string
	ClientPhone         string
	ClientAddress       string
	ClientLicenseNumber string
	LicenseExpiryDate   *time.Time

	VehicleBrand       string
	VehicleModel       string
	VehicleYear        int
	RegistrationNumber string
	DailyRate          float64

	Status     string
	StartDate  time.Time
	EndDate    time.Time
	Days       int
	Extensions []ContractExtension
	TotalPrice float64
	Notes      string
}

type ContractExtension struct {
	Days      int
	Price     float64
	CreatedAt time.Time
}
