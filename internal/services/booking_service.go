package services

import (
	"context"
	"fmt"
	"time"

	"fleetrent/internal/common"
	"fleetrent/internal/models"
	"fleetrent/internal/repositories"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

// StatsInvalidator drops cached dashboard figures after a write.
type StatsInvalidator interface {
	Invalidate(ctx context.Context, tenantID uuid.UUID)
}

type BookingService interface {
	CreateRental(ctx context.Context, tenantID uuid.UUID, input models.BookingInput) (*models.Booking, error)
	CreateReservation(ctx context.Context, tenantID uuid.UUID, input models.BookingInput) (*models.Booking, error)
	Activate(ctx context.Context, tenantID, id uuid.UUID) (*models.Booking, error)
	Cancel(ctx context.Context, tenantID, id uuid.UUID) (*models.Booking, error)
	Complete(ctx context.Context, tenantID, id uuid.UUID) (*models.Booking, error)
	ChangeVehicle(ctx context.Context, tenantID, id, newVehicleID uuid.UUID) (*models.Booking, error)
	Extend(ctx context.Context, tenantID, id uuid.UUID, days int) (*models.Booking, error)
	UpdateNotes(ctx context.Context, tenantID, id uuid.UUID, notes *string) (*models.Booking, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Booking, error)
	List(ctx context.Context, tenantID uuid.UUID, filter models.BookingFilter) ([]*models.BookingView, error)
	ListExtensions(ctx context.Context, tenantID, id uuid.UUID) ([]*models.BookingExtension, error)
}

type bookingService struct {
	tx       repositories.Transactor
	bookings repositories.BookingRepository
	exts     repositories.ExtensionRepository
	stats    StatsInvalidator
	logger   hclog.Logger
}

func NewBookingService(tx repositories.Transactor, bookings repositories.BookingRepository, exts repositories.ExtensionRepository, stats StatsInvalidator, logger hclog.Logger) BookingService {
	return &bookingService{
		tx:       tx,
		bookings: bookings,
		exts:     exts,
		stats:    stats,
		logger:   logger.Named("bookings"),
	}
}

const maxNotesLength = 2000

func (s *bookingService) CreateRental(ctx context.Context, tenantID uuid.UUID, input models.BookingInput) (*models.Booking, error) {
	return s.create(ctx, tenantID, input, models.BookingStatusActive)
}

func (s *bookingService) CreateReservation(ctx context.Context, tenantID uuid.UUID, input models.BookingInput) (*models.Booking, error) {
	return s.create(ctx, tenantID, input, models.BookingStatusReserved)
}

func validateBookingInput(input *models.BookingInput) error {
	if input.VehicleID == uuid.Nil {
		return common.ValidationError("vehicle_id", "is required")
	}
	if input.ClientID == uuid.Nil {
		return common.ValidationError("client_id", "is required")
	}
	if input.StartDate.IsZero() {
		return common.ValidationError("start_date", "is required")
	}
	if input.EndDate.IsZero() {
		return common.ValidationError("end_date", "is required")
	}
	input.StartDate = common.TruncateToDate(input.StartDate)
	input.EndDate = common.TruncateToDate(input.EndDate)
	if !input.StartDate.Before(input.EndDate) {
		return common.ValidationError("end_date", "must be after start date")
	}
	if input.StartAt != nil && input.EndAt != nil && !input.StartAt.Before(*input.EndAt) {
		return common.ValidationError("end_at", "must be after start_at")
	}
	input.Notes = common.NormalizeOptional(input.Notes)
	return common.ValidateOptionalString(input.Notes, "notes", maxNotesLength)
}

func (s *bookingService) create(ctx context.Context, tenantID uuid.UUID, input models.BookingInput, status models.BookingStatus) (*models.Booking, error) {
	if err := validateBookingInput(&input); err != nil {
		return nil, err
	}

	var booking *models.Booking
	err := s.tx.WithinTx(ctx, func(st repositories.Stores) error {
		if _, err := st.Clients.GetByID(ctx, tenantID, input.ClientID); err != nil {
			return err
		}

		vehicle, err := st.Vehicles.GetForUpdate(ctx, tenantID, input.VehicleID)
		if err != nil {
			return err
		}
		if status == models.BookingStatusActive && vehicle.Status != models.VehicleStatusAvailable {
			return vehicleUnavailable(vehicle)
		}

		if err := ensureFree(ctx, st, tenantID, vehicle.ID, input.StartDate, input.EndDate, nil); err != nil {
			return err
		}

		price, err := ComputePrice(vehicle.DailyRate, input.StartDate, input.EndDate)
		if err != nil {
			return err
		}
		if price <= 0 {
			return common.ValidationError("total_price", "must be positive")
		}

		booking = &models.Booking{
			ID:         uuid.New(),
			TenantID:   tenantID,
			VehicleID:  vehicle.ID,
			ClientID:   input.ClientID,
			StartDate:  input.StartDate,
			EndDate:    input.EndDate,
			StartAt:    input.StartAt,
			EndAt:      input.EndAt,
			TotalPrice: price,
			Status:     status,
			Notes:      input.Notes,
		}
		if err := st.Bookings.Create(ctx, booking); err != nil {
			return err
		}

		if status == models.BookingStatusActive {
			return st.Vehicles.UpdateStatus(ctx, tenantID, vehicle.ID, models.VehicleStatusRented)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking created", "tenant", tenantID, "booking", booking.ID, "status", status, "total", booking.TotalPrice)
	s.stats.Invalidate(ctx, tenantID)
	return booking, nil
}

func (s *bookingService) Activate(ctx context.Context, tenantID, id uuid.UUID) (*models.Booking, error) {
	return s.mutate(ctx, tenantID, id, "activated", func(st repositories.Stores, b *models.Booking) error {
		if b.Status != models.BookingStatusReserved {
			return common.TransitionError(fmt.Sprintf("cannot activate a %s booking", b.Status))
		}
		vehicle, err := st.Vehicles.GetForUpdate(ctx, tenantID, b.VehicleID)
		if err != nil {
			return err
		}
		if vehicle.Status != models.VehicleStatusAvailable {
			return vehicleUnavailable(vehicle)
		}
		if err := st.Bookings.UpdateStatus(ctx, tenantID, b.ID, models.BookingStatusActive); err != nil {
			return err
		}
		b.Status = models.BookingStatusActive
		return st.Vehicles.UpdateStatus(ctx, tenantID, vehicle.ID, models.VehicleStatusRented)
	})
}

func (s *bookingService) Cancel(ctx context.Context, tenantID, id uuid.UUID) (*models.Booking, error) {
	return s.mutate(ctx, tenantID, id, "cancelled", func(st repositories.Stores, b *models.Booking) error {
		if b.Status != models.BookingStatusReserved {
			return common.TransitionError(fmt.Sprintf("cannot cancel a %s booking", b.Status))
		}
		if err := st.Bookings.UpdateStatus(ctx, tenantID, b.ID, models.BookingStatusCancelled); err != nil {
			return err
		}
		b.Status = models.BookingStatusCancelled
		return nil
	})
}

func (s *bookingService) Complete(ctx context.Context, tenantID, id uuid.UUID) (*models.Booking, error) {
	return s.mutate(ctx, tenantID, id, "completed", func(st repositories.Stores, b *models.Booking) error {
		if b.Status != models.BookingStatusActive {
			return common.TransitionError(fmt.Sprintf("cannot complete a %s booking", b.Status))
		}
		if err := st.Bookings.UpdateStatus(ctx, tenantID, b.ID, models.BookingStatusCompleted); err != nil {
			return err
		}
		b.Status = models.BookingStatusCompleted
		return st.Vehicles.UpdateStatus(ctx, tenantID, b.VehicleID, models.VehicleStatusAvailable)
	})
}

func (s *bookingService) ChangeVehicle(ctx context.Context, tenantID, id, newVehicleID uuid.UUID) (*models.Booking, error) {
	if newVehicleID == uuid.Nil {
		return nil, common.ValidationError("vehicle_id", "is required")
	}
	return s.mutate(ctx, tenantID, id, "vehicle changed", func(st repositories.Stores, b *models.Booking) error {
		if b.Status != models.BookingStatusActive {
			return common.TransitionError(fmt.Sprintf("cannot change the vehicle of a %s booking", b.Status))
		}
		if b.VehicleID == newVehicleID {
			return nil
		}

		next, err := st.Vehicles.GetForUpdate(ctx, tenantID, newVehicleID)
		if err != nil {
			return err
		}
		if next.Status != models.VehicleStatusAvailable {
			return vehicleUnavailable(next)
		}
		if err := ensureFree(ctx, st, tenantID, next.ID, b.StartDate, b.EndDate, &b.ID); err != nil {
			return err
		}

		if err := st.Bookings.UpdateVehicle(ctx, tenantID, b.ID, next.ID); err != nil {
			return err
		}
		if err := st.Vehicles.UpdateStatus(ctx, tenantID, b.VehicleID, models.VehicleStatusAvailable); err != nil {
			return err
		}
		b.VehicleID = next.ID
		return st.Vehicles.UpdateStatus(ctx, tenantID, next.ID, models.VehicleStatusRented)
	})
}

func (s *bookingService) Extend(ctx context.Context, tenantID, id uuid.UUID, days int) (*models.Booking, error) {
	if days < MinExtensionDays || days > MaxExtensionDays {
		return nil, common.ValidationError("days", fmt.Sprintf("must be between %d and %d", MinExtensionDays, MaxExtensionDays))
	}
	return s.mutate(ctx, tenantID, id, "extended", func(st repositories.Stores, b *models.Booking) error {
		if !b.Status.Blocking() {
			return common.TransitionError(fmt.Sprintf("cannot extend a %s booking", b.Status))
		}

		vehicle, err := st.Vehicles.GetForUpdate(ctx, tenantID, b.VehicleID)
		if err != nil {
			return err
		}

		newEnd := b.EndDate.AddDate(0, 0, days)
		if err := ensureFree(ctx, st, tenantID, vehicle.ID, b.StartDate, newEnd, &b.ID); err != nil {
			return err
		}

		price, err := ExtensionPrice(vehicle.DailyRate, days)
		if err != nil {
			return err
		}

		var newEndAt *time.Time
		if b.EndAt != nil {
			t := b.EndAt.AddDate(0, 0, days)
			newEndAt = &t
		}
		total := RoundCurrency(b.TotalPrice + price)

		if err := st.Bookings.UpdateSchedule(ctx, tenantID, b.ID, newEnd, newEndAt, total); err != nil {
			return err
		}
		ext := &models.BookingExtension{
			ID:        uuid.New(),
			BookingID: b.ID,
			Days:      days,
			Price:     price,
		}
		if err := st.Extensions.Create(ctx, ext); err != nil {
			return err
		}

		b.EndDate, b.EndAt, b.TotalPrice = newEnd, newEndAt, total
		return nil
	})
}

func (s *bookingService) UpdateNotes(ctx context.Context, tenantID, id uuid.UUID, notes *string) (*models.Booking, error) {
	notes = common.NormalizeOptional(notes)
	if err := common.ValidateOptionalString(notes, "notes", maxNotesLength); err != nil {
		return nil, err
	}
	if err := s.bookings.UpdateNotes(ctx, tenantID, id, notes); err != nil {
		return nil, err
	}
	return s.bookings.GetByID(ctx, tenantID, id)
}

func (s *bookingService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(st repositories.Stores) error {
		b, err := st.Bookings.GetForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if err := st.Extensions.DeleteByBooking(ctx, tenantID, b.ID); err != nil {
			return err
		}
		if err := st.Bookings.Delete(ctx, tenantID, b.ID); err != nil {
			return err
		}
		if b.Status == models.BookingStatusActive {
			return st.Vehicles.UpdateStatus(ctx, tenantID, b.VehicleID, models.VehicleStatusAvailable)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("booking deleted", "tenant", tenantID, "booking", id)
	s.stats.Invalidate(ctx, tenantID)
	return nil
}

func (s *bookingService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Booking, error) {
	return s.bookings.GetByID(ctx, tenantID, id)
}

func (s *bookingService) List(ctx context.Context, tenantID uuid.UUID, filter models.BookingFilter) ([]*models.BookingView, error) {
	for _, st := range filter.Statuses {
		if !st.Valid() {
			return nil, common.ValidationError("status", fmt.Sprintf("unknown status %q", st))
		}
	}
	filter.Limit, filter.Offset = common.ValidatePaginationParams(filter.Limit, filter.Offset)
	return s.bookings.List(ctx, tenantID, filter)
}

func (s *bookingService) ListExtensions(ctx context.Context, tenantID, id uuid.UUID) ([]*models.BookingExtension, error) {
	if _, err := s.bookings.GetByID(ctx, tenantID, id); err != nil {
		return nil, err
	}
	return s.exts.ListByBooking(ctx, tenantID, id)
}

// mutate locks the booking row, applies fn and commits both the booking and any paired
// vehicle writes together.
func (s *bookingService) mutate(ctx context.Context, tenantID, id uuid.UUID, action string, fn func(st repositories.Stores, b *models.Booking) error) (*models.Booking, error) {
	var booking *models.Booking
	err := s.tx.WithinTx(ctx, func(st repositories.Stores) error {
		b, err := st.Bookings.GetForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if err := fn(st, b); err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking "+action, "tenant", tenantID, "booking", id, "status", booking.Status)
	s.stats.Invalidate(ctx, tenantID)
	return booking, nil
}

// ensureFree runs the overlap check on stores bound to the caller's transaction.
func ensureFree(ctx context.Context, st repositories.Stores, tenantID, vehicleID uuid.UUID, start, end time.Time, exclude *uuid.UUID) error {
	count, err := st.Bookings.CountOverlapping(ctx, tenantID, vehicleID, start, end, exclude)
	if err != nil {
		return err
	}
	if count > 0 {
		return common.ConflictError("dates", "vehicle is already booked for the requested dates")
	}
	return nil
}

func vehicleUnavailable(v *models.Vehicle) error {
	return common.ConflictError("vehicle_id", fmt.Sprintf("vehicle is currently %s", v.Status))
}
