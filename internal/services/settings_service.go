package services

import (
	"context"
	"io"
	"strings"

	"fleetrent/internal/common"
	"fleetrent/internal/models"
	"fleetrent/internal/repositories"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

// DefaultContractTerms is printed when a tenant has not saved its own terms.
const DefaultContractTerms = `The renter {{client_name}} receives the vehicle {{vehicle}} ({{registration_number}}) from {{start_date}} to {{end_date}}.
The vehicle must be returned in the condition it was received, with the same fuel level.
The renter is liable for traffic fines and damage caused during the rental period.
Total amount due: {{total_price}}.`

const maxTermsLength = 20000

type SettingsService interface {
	Get(ctx context.Context, tenantID uuid.UUID) (*models.CompanySettings, error)
	Update(ctx context.Context, tenantID uuid.UUID, settings *models.CompanySettings) error
	SetLogo(ctx context.Context, tenantID uuid.UUID, file io.Reader, size int64, contentType string) (*models.CompanySettings, error)
	RemoveLogo(ctx context.Context, tenantID uuid.UUID) (*models.CompanySettings, error)
}

type settingsService struct {
	settingsRepo repositories.SettingsRepository
	blobs        BlobStore
	logger       hclog.Logger
}

func NewSettingsService(settingsRepo repositories.SettingsRepository, blobs BlobStore, logger hclog.Logger) SettingsService {
	return &settingsService{
		settingsRepo: settingsRepo,
		blobs:        blobs,
		logger:       logger.Named("settings"),
	}
}

// Get returns the saved settings, or the defaults when the tenant has none yet.
func (s *settingsService) Get(ctx context.Context, tenantID uuid.UUID) (*models.CompanySettings, error) {
	settings, err := s.settingsRepo.Get(ctx, tenantID)
	if err != nil {
		if common.IsKind(err, common.ErrNotFound) {
			return &models.CompanySettings{TenantID: tenantID, ContractTerms: DefaultContractTerms}, nil
		}
		return nil, err
	}
	if strings.TrimSpace(settings.ContractTerms) == "" {
		settings.ContractTerms = DefaultContractTerms
	}
	return settings, nil
}

func (s *settingsService) Update(ctx context.Context, tenantID uuid.UUID, settings *models.CompanySettings) error {
	settings.TenantID = tenantID
	settings.CompanyName = strings.TrimSpace(settings.CompanyName)
	settings.Address = common.NormalizeOptional(settings.Address)
	settings.Phone = common.NormalizeOptional(settings.Phone)
	settings.Email = common.NormalizeOptional(settings.Email)
	settings.TaxID = common.NormalizeOptional(settings.TaxID)

	if err := common.ValidateRequiredString(settings.CompanyName, "company_name"); err != nil {
		return err
	}
	if err := common.ValidateEmail(settings.Email, "email"); err != nil {
		return err
	}
	if len(settings.ContractTerms) > maxTermsLength {
		return common.ValidationError("contract_terms", "is too long")
	}
	return s.settingsRepo.Upsert(ctx, settings)
}

func (s *settingsService) SetLogo(ctx context.Context, tenantID uuid.UUID, file io.Reader, size int64, contentType string) (*models.CompanySettings, error) {
	upload, err := inspectAttachment(file, size, contentType)
	if err != nil {
		return nil, err
	}
	current, err := s.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	key := attachmentKey("logos", tenantID, tenantID, upload.ext)
	url, err := replaceAttachment(ctx, s.blobs, s.logger, key, upload.body, size, upload.contentType, current.LogoURL, func(url string) error {
		return s.settingsRepo.UpdateLogo(ctx, tenantID, &url)
	})
	if err != nil {
		return nil, err
	}
	current.LogoURL = &url
	return current, nil
}

func (s *settingsService) RemoveLogo(ctx context.Context, tenantID uuid.UUID) (*models.CompanySettings, error) {
	current, err := s.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if current.LogoURL == nil {
		return current, nil
	}
	if err := s.settingsRepo.UpdateLogo(ctx, tenantID, nil); err != nil {
		return nil, err
	}
	discardBlob(ctx, s.blobs, s.logger, *current.LogoURL)
	current.LogoURL = nil
	return current, nil
}
