package services

import (
	"context"
	"strings"

	"fleetrent/internal/common"
	"fleetrent/internal/models"
	"fleetrent/internal/repositories"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

type ClientService interface {
	Create(ctx context.Context, tenantID uuid.UUID, client *models.Client) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Client, error)
	Update(ctx context.Context, tenantID uuid.UUID, client *models.Client) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, filter models.ClientFilter) ([]*models.Client, error)
}

type clientService struct {
	tx         repositories.Transactor
	clientRepo repositories.ClientRepository
	stats      StatsInvalidator
	logger     hclog.Logger
}

func NewClientService(tx repositories.Transactor, clientRepo repositories.ClientRepository, stats StatsInvalidator, logger hclog.Logger) ClientService {
	return &clientService{
		tx:         tx,
		clientRepo: clientRepo,
		stats:      stats,
		logger:     logger.Named("clients"),
	}
}

func validateClient(client *models.Client) error {
	client.Name = strings.TrimSpace(client.Name)
	client.IDNumber = strings.TrimSpace(client.IDNumber)
	client.Email = common.NormalizeOptional(client.Email)
	client.Phone = common.NormalizeOptional(client.Phone)
	client.Address = common.NormalizeOptional(client.Address)
	client.LicenseNumber = common.NormalizeOptional(client.LicenseNumber)

	if err := common.ValidateRequiredString(client.Name, "name"); err != nil {
		return err
	}
	if err := common.ValidateRequiredString(client.IDNumber, "id_number"); err != nil {
		return err
	}
	if err := common.ValidateEmail(client.Email, "email"); err != nil {
		return err
	}
	if err := common.ValidateOptionalString(client.Phone, "phone", 50); err != nil {
		return err
	}
	if err := common.ValidateOptionalString(client.Address, "address", 500); err != nil {
		return err
	}
	if client.LicenseIssueDate != nil && client.LicenseExpiryDate != nil && client.LicenseExpiryDate.Before(*client.LicenseIssueDate) {
		return common.ValidationError("license_expiry_date", "must not be before the issue date")
	}
	if client.IDCardIssueDate != nil && client.IDCardExpiryDate != nil && client.IDCardExpiryDate.Before(*client.IDCardIssueDate) {
		return common.ValidationError("id_card_expiry_date", "must not be before the issue date")
	}
	return nil
}

// checkUnique rejects an identity-document number or email already used by another client of the tenant.
func (s *clientService) checkUnique(ctx context.Context, tenantID uuid.UUID, client *models.Client) error {
	existing, err := s.clientRepo.GetByIDNumber(ctx, tenantID, client.IDNumber)
	switch {
	case err == nil && existing.ID != client.ID:
		return common.ConflictError("id_number", "a client with this identity document number already exists")
	case err != nil && !common.IsKind(err, common.ErrNotFound):
		return err
	}

	if client.Email == nil {
		return nil
	}
	existing, err = s.clientRepo.GetByEmail(ctx, tenantID, *client.Email)
	switch {
	case err == nil && existing.ID != client.ID:
		return common.ConflictError("email", "a client with this email already exists")
	case err != nil && !common.IsKind(err, common.ErrNotFound):
		return err
	}
	return nil
}

func (s *clientService) Create(ctx context.Context, tenantID uuid.UUID, client *models.Client) error {
	if err := validateClient(client); err != nil {
		return err
	}
	client.TenantID = tenantID
	client.ID = uuid.New()

	if err := s.checkUnique(ctx, tenantID, client); err != nil {
		return err
	}
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return err
	}
	s.stats.Invalidate(ctx, tenantID)
	return nil
}

func (s *clientService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Client, error) {
	return s.clientRepo.GetByID(ctx, tenantID, id)
}

func (s *clientService) Update(ctx context.Context, tenantID uuid.UUID, client *models.Client) error {
	if err := validateClient(client); err != nil {
		return err
	}
	client.TenantID = tenantID

	if _, err := s.clientRepo.GetByID(ctx, tenantID, client.ID); err != nil {
		return err
	}
	if err := s.checkUnique(ctx, tenantID, client); err != nil {
		return err
	}
	return s.clientRepo.Update(ctx, client)
}

// Delete removes a client with no active booking. Its other bookings go with it.
func (s *clientService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(st repositories.Stores) error {
		if _, err := st.Clients.GetForUpdate(ctx, tenantID, id); err != nil {
			return err
		}
		active, err := st.Bookings.CountActiveByClient(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if active > 0 {
			return common.DependencyError("client has an active booking")
		}
		return st.Clients.Delete(ctx, tenantID, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("client deleted", "tenant", tenantID, "client", id)
	s.stats.Invalidate(ctx, tenantID)
	return nil
}

func (s *clientService) List(ctx context.Context, tenantID uuid.UUID, filter models.ClientFilter) ([]*models.Client, error) {
	filter.Query = strings.TrimSpace(filter.Query)
	filter.Limit, filter.Offset = common.ValidatePaginationParams(filter.Limit, filter.Offset)
	return s.clientRepo.List(ctx, tenantID, filter)
}
