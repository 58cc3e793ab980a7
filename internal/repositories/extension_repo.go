package repositories

import (
	"context"

	"fleetrent/internal/models"

	"github.com/google/uuid"
)

// ExtensionRepository stores booking extensions. Extensions carry no tenant key of their own,
// so every read and delete is scoped through the parent booking.
type ExtensionRepository interface {
	Create(ctx context.Context, extension *models.BookingExtension) error
	ListByBooking(ctx context.Context, tenantID, bookingID uuid.UUID) ([]*models.BookingExtension, error)
	DeleteByBooking(ctx context.Context, tenantID, bookingID uuid.UUID) error
}

type extensionRepo struct {
	db DBTX
}

func NewExtensionRepository(db DBTX) ExtensionRepository {
	return &extensionRepo{db: db}
}

func (r *extensionRepo) Create(ctx context.Context, extension *models.BookingExtension) error {
	query := `
		INSERT INTO booking_extensions (id, booking_id, days, price, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`
	_, err := r.db.Exec(ctx, query, extension.ID, extension.BookingID, extension.Days, extension.Price)
	return translateError(err, "booking extension")
}

func (r *extensionRepo) ListByBooking(ctx context.Context, tenantID, bookingID uuid.UUID) ([]*models.BookingExtension, error) {
	query := `
		SELECT e.id, e.booking_id, e.days, e.price, e.created_at
		FROM booking_extensions e
		JOIN bookings b ON b.id = e.booking_id
		WHERE b.tenant_id = $1 AND e.booking_id = $2
		ORDER BY e.created_at ASC
	`
	rows, err := r.db.Query(ctx, query, tenantID, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	extensions := []*models.BookingExtension{}
	for rows.Next() {
		extension := &models.BookingExtension{}
		if err := rows.Scan(&extension.ID, &extension.BookingID, &extension.Days, &extension.Price, &extension.CreatedAt); err != nil {
			return nil, err
		}
		extensions = append(extensions, extension)
	}
	return extensions, rows.Err()
}

func (r *extensionRepo) DeleteByBooking(ctx context.Context, tenantID, bookingID uuid.UUID) error {
	query := `
		DELETE FROM booking_extensions e
		USING bookings b
		WHERE e.booking_id = b.id AND b.tenant_id = $1 AND b.id = $2
	`
	_, err := r.db.Exec(ctx, query, tenantID, bookingID)
	return err
}
