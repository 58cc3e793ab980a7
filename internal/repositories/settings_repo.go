package repositories

import (
	"context"

	"fleetrent/internal/models"

	"github.com/google/uuid"
)

type SettingsRepository interface {
	Get(ctx context.Context, tenantID uuid.UUID) (*models.CompanySettings, error)
	Upsert(ctx context.Context, settings *models.CompanySettings) error
	UpdateLogo(ctx context.Context, tenantID uuid.UUID, logoURL *string) error
}

type settingsRepo struct {
	db DBTX
}

func NewSettingsRepository(db DBTX) SettingsRepository {
	return &settingsRepo{db: db}
}

func (r *settingsRepo) Get(ctx context.Context, tenantID uuid.UUID) (*models.CompanySettings, error) {
	settings := &models.CompanySettings{}
	query := `
		SELECT tenant_id, company_name, address, phone, email, tax_id, logo_url, contract_terms, updated_at
		FROM company_settings
		WHERE tenant_id = $1
	`
	err := r.db.QueryRow(ctx, query, tenantID).Scan(&settings.TenantID, &settings.CompanyName, &settings.Address, &settings.Phone,
		&settings.Email, &settings.TaxID, &settings.LogoURL, &settings.ContractTerms, &settings.UpdatedAt)
	if err != nil {
		return nil, translateError(err, "company settings")
	}
	return settings, nil
}

// Upsert writes every field except the logo, which only changes through UpdateLogo.
func (r *settingsRepo) Upsert(ctx context.Context, settings *models.CompanySettings) error {
	query := `
		INSERT INTO company_settings (tenant_id, company_name, address, phone, email, tax_id, contract_terms, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (tenant_id) DO UPDATE SET
			company_name = EXCLUDED.company_name,
			address = EXCLUDED.address,
			phone = EXCLUDED.phone,
			email = EXCLUDED.email,
			tax_id = EXCLUDED.tax_id,
			contract_terms = EXCLUDED.contract_terms,
			updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, settings.TenantID, settings.CompanyName, settings.Address, settings.Phone, settings.Email,
		settings.TaxID, settings.ContractTerms)
	return translateError(err, "company settings")
}

func (r *settingsRepo) UpdateLogo(ctx context.Context, tenantID uuid.UUID, logoURL *string) error {
	query := `
		INSERT INTO company_settings (tenant_id, company_name, logo_url, contract_terms, updated_at)
		VALUES ($1, '', $2, '', NOW())
		ON CONFLICT (tenant_id) DO UPDATE SET logo_url = EXCLUDED.logo_url, updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, tenantID, logoURL)
	return translateError(err, "company settings")
}
