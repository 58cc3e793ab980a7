package services

import (
	"context"
	"time"

	"fleetrent/internal/common"
	"fleetrent/internal/repositories"

	"github.com/google/uuid"
)

// AvailabilityChecker answers whether a vehicle is free over an inclusive date range.
type AvailabilityChecker interface {
	IsAvailable(ctx context.Context, tenantID, vehicleID uuid.UUID, start, end time.Time, excludeBookingID *uuid.UUID) (bool, error)
}

type availabilityChecker struct {
	vehicles repositories.VehicleRepository
	bookings repositories.BookingRepository
}

func NewAvailabilityChecker(vehicles repositories.VehicleRepository, bookings repositories.BookingRepository) AvailabilityChecker {
	return &availabilityChecker{vehicles: vehicles, bookings: bookings}
}

// Overlaps reports whether two inclusive date ranges share at least one day.
// Ranges that touch on the same day overlap. It is the predicate CountOverlapping
// evaluates in SQL and the bookings_no_overlap constraint enforces.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}

func (a *availabilityChecker) IsAvailable(ctx context.Context, tenantID, vehicleID uuid.UUID, start, end time.Time, excludeBookingID *uuid.UUID) (bool, error) {
	start, end = common.TruncateToDate(start), common.TruncateToDate(end)
	if !start.Before(end) {
		return false, common.ValidationError("end_date", "must be after start date")
	}

	if _, err := a.vehicles.GetByID(ctx, tenantID, vehicleID); err != nil {
		return false, err
	}

	count, err := a.bookings.CountOverlapping(ctx, tenantID, vehicleID, start, end, excludeBookingID)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}
