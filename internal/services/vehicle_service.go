package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"fleetrent/internal/common"
	"fleetrent/internal/models"
	"fleetrent/internal/repositories"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

type VehicleService interface {
	Create(ctx context.Context, tenantID uuid.UUID, vehicle *models.Vehicle) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Vehicle, error)
	Update(ctx context.Context, tenantID uuid.UUID, vehicle *models.Vehicle) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, filter models.VehicleFilter) ([]*models.Vehicle, error)
	SetImage(ctx context.Context, tenantID, id uuid.UUID, file io.Reader, size int64, contentType string) (*models.Vehicle, error)
	RemoveImage(ctx context.Context, tenantID, id uuid.UUID) (*models.Vehicle, error)
}

type vehicleService struct {
	tx          repositories.Transactor
	vehicleRepo repositories.VehicleRepository
	blobs       BlobStore
	stats       StatsInvalidator
	logger      hclog.Logger
}

func NewVehicleService(tx repositories.Transactor, vehicleRepo repositories.VehicleRepository, blobs BlobStore, stats StatsInvalidator, logger hclog.Logger) VehicleService {
	return &vehicleService{
		tx:          tx,
		vehicleRepo: vehicleRepo,
		blobs:       blobs,
		stats:       stats,
		logger:      logger.Named("vehicles"),
	}
}

func validateVehicle(vehicle *models.Vehicle) error {
	vehicle.Brand = strings.TrimSpace(vehicle.Brand)
	vehicle.Model = strings.TrimSpace(vehicle.Model)
	vehicle.RegistrationNumber = strings.ToUpper(strings.TrimSpace(vehicle.RegistrationNumber))

	if err := common.ValidateRequiredString(vehicle.Brand, "brand"); err != nil {
		return err
	}
	if err := common.ValidateRequiredString(vehicle.Model, "model"); err != nil {
		return err
	}
	if err := common.ValidateRequiredString(vehicle.RegistrationNumber, "registration_number"); err != nil {
		return err
	}
	maxYear := time.Now().Year() + 1
	if vehicle.Year < 1900 || vehicle.Year > maxYear {
		return common.ValidationError("year", fmt.Sprintf("must be between 1900 and %d", maxYear))
	}
	if vehicle.DailyRate < 0 {
		return common.ValidationError("daily_rate", "cannot be negative")
	}
	return nil
}

func (s *vehicleService) checkRegistration(ctx context.Context, tenantID, id uuid.UUID, registration string) error {
	existing, err := s.vehicleRepo.GetByRegistration(ctx, tenantID, registration)
	if err != nil {
		if common.IsKind(err, common.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != id {
		return common.ConflictError("registration_number", "a vehicle with this registration number already exists")
	}
	return nil
}

func (s *vehicleService) Create(ctx context.Context, tenantID uuid.UUID, vehicle *models.Vehicle) error {
	if err := validateVehicle(vehicle); err != nil {
		return err
	}
	if vehicle.Status == "" {
		vehicle.Status = models.VehicleStatusAvailable
	}
	if vehicle.Status == models.VehicleStatusRented || !vehicle.Status.Valid() {
		return common.ValidationError("status", "must be available or maintenance")
	}

	vehicle.TenantID = tenantID
	vehicle.ID = uuid.New()
	vehicle.ImageURL = nil
	if err := s.checkRegistration(ctx, tenantID, vehicle.ID, vehicle.RegistrationNumber); err != nil {
		return err
	}

	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		return err
	}
	s.stats.Invalidate(ctx, tenantID)
	return nil
}

func (s *vehicleService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Vehicle, error) {
	return s.vehicleRepo.GetByID(ctx, tenantID, id)
}

// Update edits vehicle details. Status may only move between available and maintenance;
// rented is owned by the booking lifecycle.
func (s *vehicleService) Update(ctx context.Context, tenantID uuid.UUID, vehicle *models.Vehicle) error {
	if err := validateVehicle(vehicle); err != nil {
		return err
	}
	if vehicle.Status != "" && !vehicle.Status.Valid() {
		return common.ValidationError("status", fmt.Sprintf("unknown status %q", vehicle.Status))
	}
	vehicle.TenantID = tenantID

	err := s.tx.WithinTx(ctx, func(st repositories.Stores) error {
		current, err := st.Vehicles.GetForUpdate(ctx, tenantID, vehicle.ID)
		if err != nil {
			return err
		}

		if vehicle.Status == "" {
			vehicle.Status = current.Status
		}
		if vehicle.Status != current.Status &&
			(current.Status == models.VehicleStatusRented || vehicle.Status == models.VehicleStatusRented) {
			return common.TransitionError(fmt.Sprintf("cannot change vehicle status from %s to %s manually", current.Status, vehicle.Status))
		}

		existing, err := st.Vehicles.GetByRegistration(ctx, tenantID, vehicle.RegistrationNumber)
		switch {
		case err == nil && existing.ID != vehicle.ID:
			return common.ConflictError("registration_number", "a vehicle with this registration number already exists")
		case err != nil && !common.IsKind(err, common.ErrNotFound):
			return err
		}

		vehicle.ImageURL = current.ImageURL
		vehicle.CreatedAt = current.CreatedAt
		return st.Vehicles.Update(ctx, vehicle)
	})
	if err != nil {
		return err
	}
	s.stats.Invalidate(ctx, tenantID)
	return nil
}

// Delete removes a vehicle with no active booking. Its other bookings go with it.
func (s *vehicleService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	var imageURL *string
	err := s.tx.WithinTx(ctx, func(st repositories.Stores) error {
		vehicle, err := st.Vehicles.GetForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}
		active, err := st.Bookings.CountActiveByVehicle(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if active > 0 {
			return common.DependencyError("vehicle has an active booking")
		}
		imageURL = vehicle.ImageURL
		return st.Vehicles.Delete(ctx, tenantID, id)
	})
	if err != nil {
		return err
	}

	if imageURL != nil && *imageURL != "" {
		discardBlob(ctx, s.blobs, s.logger, *imageURL)
	}
	s.logger.Info("vehicle deleted", "tenant", tenantID, "vehicle", id)
	s.stats.Invalidate(ctx, tenantID)
	return nil
}

func (s *vehicleService) List(ctx context.Context, tenantID uuid.UUID, filter models.VehicleFilter) ([]*models.Vehicle, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, common.ValidationError("status", fmt.Sprintf("unknown status %q", *filter.Status))
	}
	filter.Limit, filter.Offset = common.ValidatePaginationParams(filter.Limit, filter.Offset)
	return s.vehicleRepo.List(ctx, tenantID, filter)
}

func (s *vehicleService) SetImage(ctx context.Context, tenantID, id uuid.UUID, file io.Reader, size int64, contentType string) (*models.Vehicle, error) {
	upload, err := inspectAttachment(file, size, contentType)
	if err != nil {
		return nil, err
	}
	vehicle, err := s.vehicleRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	key := attachmentKey("vehicles", tenantID, id, upload.ext)
	url, err := replaceAttachment(ctx, s.blobs, s.logger, key, upload.body, size, upload.contentType, vehicle.ImageURL, func(url string) error {
		return s.vehicleRepo.UpdateImage(ctx, tenantID, id, &url)
	})
	if err != nil {
		return nil, err
	}
	vehicle.ImageURL = &url
	return vehicle, nil
}

func (s *vehicleService) RemoveImage(ctx context.Context, tenantID, id uuid.UUID) (*models.Vehicle, error) {
	vehicle, err := s.vehicleRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if vehicle.ImageURL == nil {
		return vehicle, nil
	}
	if err := s.vehicleRepo.UpdateImage(ctx, tenantID, id, nil); err != nil {
		return nil, err
	}
	discardBlob(ctx, s.blobs, s.logger, *vehicle.ImageURL)
	vehicle.ImageURL = nil
	return vehicle, nil
}
