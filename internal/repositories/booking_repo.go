package repositories

import (
	"context"
	"fmt"
	"time"

	"fleetrent/internal/models"

	"github.com/google/uuid"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Booking, error)
	GetForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*models.Booking, error)
	List(ctx context.Context, tenantID uuid.UUID, filter models.BookingFilter) ([]*models.BookingView, error)
	CountOverlapping(ctx context.Context, tenantID, vehicleID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (int, error)
	CountActiveByVehicle(ctx context.Context, tenantID, vehicleID uuid.UUID) (int, error)
	CountActiveByClient(ctx context.Context, tenantID, clientID uuid.UUID) (int, error)
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status models.BookingStatus) error
	UpdateVehicle(ctx context.Context, tenantID, id, vehicleID uuid.UUID) error
	UpdateSchedule(ctx context.Context, tenantID, id uuid.UUID, endDate time.Time, endAt *time.Time, totalPrice float64) error
	UpdateNotes(ctx context.Context, tenantID, id uuid.UUID, notes *string) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type bookingRepo struct {
	db DBTX
}

func NewBookingRepository(db DBTX) BookingRepository {
	return &bookingRepo{db: db}
}

const bookingColumns = `id, tenant_id, vehicle_id, client_id, start_date, end_date, start_at, end_at, total_price, status, notes, created_at, updated_at`

func scanBooking(row scanner) (*models.Booking, error) {
	booking := &models.Booking{}
	var status string
	err := row.Scan(&booking.ID, &booking.TenantID, &booking.VehicleID, &booking.ClientID, &booking.StartDate, &booking.EndDate,
		&booking.StartAt, &booking.EndAt, &booking.TotalPrice, &status, &booking.Notes, &booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		return nil, err
	}
	booking.Status = models.BookingStatus(status)
	return booking, nil
}

func (r *bookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	query := `
		INSERT INTO bookings (id, tenant_id, vehicle_id, client_id, start_date, end_date, start_at, end_at, total_price, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, booking.ID, booking.TenantID, booking.VehicleID, booking.ClientID, booking.StartDate, booking.EndDate,
		booking.StartAt, booking.EndAt, booking.TotalPrice, string(booking.Status), booking.Notes)
	return translateError(err, "booking")
}

func (r *bookingRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE tenant_id = $1 AND id = $2`
	booking, err := scanBooking(r.db.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		return nil, translateError(err, "booking")
	}
	return booking, nil
}

func (r *bookingRepo) GetForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE tenant_id = $1 AND id = $2 FOR UPDATE`
	booking, err := scanBooking(r.db.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		return nil, translateError(err, "booking")
	}
	return booking, nil
}

func (r *bookingRepo) List(ctx context.Context, tenantID uuid.UUID, filter models.BookingFilter) ([]*models.BookingView, error) {
	args := []any{tenantID}
	where := "b.tenant_id = $1"
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, statuses)
		where += fmt.Sprintf(" AND b.status = ANY($%d)", len(args))
	}
	if filter.VehicleID != nil {
		args = append(args, *filter.VehicleID)
		where += fmt.Sprintf(" AND b.vehicle_id = $%d", len(args))
	}
	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		where += fmt.Sprintf(" AND b.client_id = $%d", len(args))
	}
	args = append(args, filter.Limit, filter.Offset)

	query := fmt.Sprintf(`
		SELECT b.id, b.tenant_id, b.vehicle_id, b.client_id, b.start_date, b.end_date, b.start_at, b.end_at, b.total_price, b.status, b.notes, b.created_at, b.updated_at,
			v.brand, v.model, v.registration_number, c.name
		FROM bookings b
		JOIN vehicles v ON v.id = b.vehicle_id
		JOIN clients c ON c.id = b.client_id
		WHERE %s
		ORDER BY b.start_date DESC, b.created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	views := []*models.BookingView{}
	for rows.Next() {
		view := &models.BookingView{}
		var status string
		if err := rows.Scan(&view.ID, &view.TenantID, &view.VehicleID, &view.ClientID, &view.StartDate, &view.EndDate, &view.StartAt, &view.EndAt,
			&view.TotalPrice, &status, &view.Notes, &view.CreatedAt, &view.UpdatedAt,
			&view.VehicleBrand, &view.VehicleModel, &view.RegistrationNumber, &view.ClientName); err != nil {
			return nil, err
		}
		view.Status = models.BookingStatus(status)
		views = append(views, view)
	}
	return views, rows.Err()
}

// CountOverlapping counts active or reserved bookings of the vehicle whose inclusive date range
// touches [start, end]. A booking ending on the day another starts counts as overlapping.
func (r *bookingRepo) CountOverlapping(ctx context.Context, tenantID, vehicleID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM bookings
		WHERE tenant_id = $1 AND vehicle_id = $2
			AND status IN ('active', 'reserved')
			AND start_date <= $3 AND end_date >= $4
			AND ($5::uuid IS NULL OR id <> $5)
	`
	var count int
	if err := r.db.QueryRow(ctx, query, tenantID, vehicleID, end, start, excludeID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *bookingRepo) CountActiveByVehicle(ctx context.Context, tenantID, vehicleID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE tenant_id = $1 AND vehicle_id = $2 AND status = 'active'`
	var count int
	if err := r.db.QueryRow(ctx, query, tenantID, vehicleID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *bookingRepo) CountActiveByClient(ctx context.Context, tenantID, clientID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE tenant_id = $1 AND client_id = $2 AND status = 'active'`
	var count int
	if err := r.db.QueryRow(ctx, query, tenantID, clientID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *bookingRepo) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status models.BookingStatus) error {
	query := `UPDATE bookings SET status = $1, updated_at = NOW() WHERE tenant_id = $2 AND id = $3`
	tag, err := r.db.Exec(ctx, query, string(status), tenantID, id)
	if err != nil {
		return translateError(err, "booking")
	}
	return expectAffected(tag, "booking")
}

func (r *bookingRepo) UpdateVehicle(ctx context.Context, tenantID, id, vehicleID uuid.UUID) error {
	query := `UPDATE bookings SET vehicle_id = $1, updated_at = NOW() WHERE tenant_id = $2 AND id = $3`
	tag, err := r.db.Exec(ctx, query, vehicleID, tenantID, id)
	if err != nil {
		return translateError(err, "booking")
	}
	return expectAffected(tag, "booking")
}

func (r *bookingRepo) UpdateSchedule(ctx context.Context, tenantID, id uuid.UUID, endDate time.Time, endAt *time.Time, totalPrice float64) error {
	query := `UPDATE bookings SET end_date = $1, end_at = $2, total_price = $3, updated_at = NOW() WHERE tenant_id = $4 AND id = $5`
	tag, err := r.db.Exec(ctx, query, endDate, endAt, totalPrice, tenantID, id)
	if err != nil {
		return translateError(err, "booking")
	}
	return expectAffected(tag, "booking")
}

func (r *bookingRepo) UpdateNotes(ctx context.Context, tenantID, id uuid.UUID, notes *string) error {
	query := `UPDATE bookings SET notes = $1, updated_at = NOW() WHERE tenant_id = $2 AND id = $3`
	tag, err := r.db.Exec(ctx, query, notes, tenantID, id)
	if err != nil {
		return translateError(err, "booking")
	}
	return expectAffected(tag, "booking")
}

func (r *bookingRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM bookings WHERE tenant_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, tenantID, id)
	if err != nil {
		return translateError(err, "booking")
	}
	return expectAffected(tag, "booking")
}
