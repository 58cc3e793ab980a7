package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fleetrent/internal/common"
	"fleetrent/internal/models"
	"fleetrent/internal/repositories"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

// DocumentRenderer turns a contract snapshot into a printable document.
type DocumentRenderer interface {
	Render(snapshot *models.ContractSnapshot) ([]byte, error)
	ContentType() string
}

type ContractService interface {
	BuildSnapshot(ctx context.Context, tenantID, bookingID uuid.UUID) (*models.ContractSnapshot, error)
	Render(ctx context.Context, snapshot *models.ContractSnapshot) ([]byte, error)
	ContentType() string
}

type contractService struct {
	bookings   repositories.BookingRepository
	vehicles   repositories.VehicleRepository
	clients    repositories.ClientRepository
	extensions repositories.ExtensionRepository
	settings   SettingsService
	blobs      BlobStore
	renderer   DocumentRenderer
	logger     hclog.Logger
	now        func() time.Time
}

func NewContractService(stores repositories.Stores, settings SettingsService, blobs BlobStore, renderer DocumentRenderer, logger hclog.Logger) ContractService {
	return &contractService{
		bookings:   stores.Bookings,
		vehicles:   stores.Vehicles,
		clients:    stores.Clients,
		extensions: stores.Extensions,
		settings:   settings,
		blobs:      blobs,
		renderer:   renderer,
		logger:     logger.Named("contracts"),
		now:        time.Now,
	}
}

// ContractNumber derives the printable number from the booking ID.
func ContractNumber(bookingID uuid.UUID) string {
	return "RC-" + strings.ToUpper(bookingID.String()[:8])
}

func (s *contractService) BuildSnapshot(ctx context.Context, tenantID, bookingID uuid.UUID) (*models.ContractSnapshot, error) {
	booking, err := s.bookings.GetByID(ctx, tenantID, bookingID)
	if err != nil {
		return nil, err
	}
	vehicle, err := s.vehicles.GetByID(ctx, tenantID, booking.VehicleID)
	if err != nil {
		return nil, err
	}
	client, err := s.clients.GetByID(ctx, tenantID, booking.ClientID)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	exts, err := s.extensions.ListByBooking(ctx, tenantID, booking.ID)
	if err != nil {
		return nil, err
	}

	snapshot := &models.ContractSnapshot{
		ContractNumber: ContractNumber(booking.ID),
		IssuedAt:       s.now().UTC(),

		CompanyName:    settings.CompanyName,
		CompanyAddress: common.SafeString(settings.Address),
		CompanyPhone:   common.SafeString(settings.Phone),
		CompanyEmail:   common.SafeString(settings.Email),
		CompanyTaxID:   common.SafeString(settings.TaxID),

		ClientName:          client.Name,
		ClientIDNumber:      client.IDNumber,
		ClientEmail:         common.SafeString(client.Email),
		ClientPhone:         common.SafeString(client.Phone),
		ClientAddress:       common.SafeString(client.Address),
		ClientLicenseNumber: common.SafeString(client.LicenseNumber),
		LicenseExpiryDate:   client.LicenseExpiryDate,

		VehicleBrand:       vehicle.Brand,
		VehicleModel:       vehicle.Model,
		VehicleYear:        vehicle.Year,
		RegistrationNumber: vehicle.RegistrationNumber,
		DailyRate:          vehicle.DailyRate,

		Status:     string(booking.Status),
		StartDate:  booking.StartDate,
		EndDate:    booking.EndDate,
		Days:       DayCount(booking.StartDate, booking.EndDate),
		TotalPrice: booking.TotalPrice,
		Notes:      common.SafeString(booking.Notes),
	}
	for _, ext := range exts {
		snapshot.Extensions = append(snapshot.Extensions, models.ContractExtension{
			Days:      ext.Days,
			Price:     ext.Price,
			CreatedAt: ext.CreatedAt,
		})
	}

	if settings.LogoURL != nil {
		snapshot.Logo, snapshot.LogoType = s.fetchLogo(ctx, *settings.LogoURL)
	}
	snapshot.Terms = ExpandTerms(settings.ContractTerms, snapshot)
	return snapshot, nil
}

// fetchLogo returns no logo when the blob cannot be read or is not a format the renderer embeds.
func (s *contractService) fetchLogo(ctx context.Context, url string) ([]byte, string) {
	data, err := s.blobs.Fetch(ctx, url)
	if err != nil {
		s.logger.Warn("logo unavailable, rendering contract without it", "url", url, "error", err)
		return nil, ""
	}
	switch http.DetectContentType(data) {
	case "image/png":
		return data, "PNG"
	case "image/jpeg":
		return data, "JPG"
	case "image/gif":
		return data, "GIF"
	}
	s.logger.Warn("logo format not supported in contracts", "url", url)
	return nil, ""
}

func (s *contractService) Render(ctx context.Context, snapshot *models.ContractSnapshot) ([]byte, error) {
	doc, err := s.renderer.Render(snapshot)
	if err != nil {
		return nil, fmt.Errorf("render contract %s: %w", snapshot.ContractNumber, err)
	}
	return doc, nil
}

func (s *contractService) ContentType() string {
	return s.renderer.ContentType()
}

// ExpandTerms substitutes {{placeholder}} tokens in contract terms. Unknown tokens are left as written.
func ExpandTerms(terms string, snapshot *models.ContractSnapshot) string {
	if !strings.Contains(terms, "{{") {
		return terms
	}
	r := strings.NewReplacer(
		"{{contract_number}}", snapshot.ContractNumber,
		"{{company_name}}", snapshot.CompanyName,
		"{{client_name}}", snapshot.ClientName,
		"{{client_id_number}}", snapshot.ClientIDNumber,
		"{{vehicle}}", strings.TrimSpace(snapshot.VehicleBrand+" "+snapshot.VehicleModel),
		"{{registration_number}}", snapshot.RegistrationNumber,
		"{{start_date}}", snapshot.StartDate.Format(common.DateLayout),
		"{{end_date}}", snapshot.EndDate.Format(common.DateLayout),
		"{{days}}", fmt.Sprintf("%d", snapshot.Days),
		"{{daily_rate}}", fmt.Sprintf("%.2f", snapshot.DailyRate),
		"{{total_price}}", fmt.Sprintf("%.2f", snapshot.TotalPrice),
	)
	return r.Replace(terms)
}
