package repositories

import (
	"context"
	"fmt"

	"fleetrent/internal/models"

	"github.com/google/uuid"
)

type VehicleRepository interface {
	Create(ctx context.Context, vehicle *models.Vehicle) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Vehicle, error)
	GetForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*models.Vehicle, error)
	GetByRegistration(ctx context.Context, tenantID uuid.UUID, registration string) (*models.Vehicle, error)
	List(ctx context.Context, tenantID uuid.UUID, filter models.VehicleFilter) ([]*models.Vehicle, error)
	Update(ctx context.Context, vehicle *models.Vehicle) error
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status models.VehicleStatus) error
	UpdateImage(ctx context.Context, tenantID, id uuid.UUID, imageURL *string) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type vehicleRepo struct {
	db DBTX
}

func NewVehicleRepository(db DBTX) VehicleRepository {
	return &vehicleRepo{db: db}
}

const vehicleColumns = `id, tenant_id, brand, model, year, registration_number, daily_rate, status, image_url, created_at, updated_at`

func scanVehicle(row scanner) (*models.Vehicle, error) {
	vehicle := &models.Vehicle{}
	var status string
	err := row.Scan(&vehicle.ID, &vehicle.TenantID, &vehicle.Brand, &vehicle.Model, &vehicle.Year, &vehicle.RegistrationNumber,
		&vehicle.DailyRate, &status, &vehicle.ImageURL, &vehicle.CreatedAt, &vehicle.UpdatedAt)
	if err != nil {
		return nil, err
	}
	vehicle.Status = models.VehicleStatus(status)
	return vehicle, nil
}

func (r *vehicleRepo) Create(ctx context.Context, vehicle *models.Vehicle) error {
	query := `
		INSERT INTO vehicles (id, tenant_id, brand, model, year, registration_number, daily_rate, status, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, vehicle.ID, vehicle.TenantID, vehicle.Brand, vehicle.Model, vehicle.Year,
		vehicle.RegistrationNumber, vehicle.DailyRate, string(vehicle.Status), vehicle.ImageURL)
	return translateError(err, "vehicle")
}

func (r *vehicleRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE tenant_id = $1 AND id = $2`
	vehicle, err := scanVehicle(r.db.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		return nil, translateError(err, "vehicle")
	}
	return vehicle, nil
}

// GetForUpdate locks the vehicle row until the surrounding transaction ends. Booking writes
// take this lock first so concurrent requests for the same vehicle run one after another.
func (r *vehicleRepo) GetForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*models.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE tenant_id = $1 AND id = $2 FOR UPDATE`
	vehicle, err := scanVehicle(r.db.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		return nil, translateError(err, "vehicle")
	}
	return vehicle, nil
}

func (r *vehicleRepo) GetByRegistration(ctx context.Context, tenantID uuid.UUID, registration string) (*models.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE tenant_id = $1 AND registration_number = $2`
	vehicle, err := scanVehicle(r.db.QueryRow(ctx, query, tenantID, registration))
	if err != nil {
		return nil, translateError(err, "vehicle")
	}
	return vehicle, nil
}

func (r *vehicleRepo) List(ctx context.Context, tenantID uuid.UUID, filter models.VehicleFilter) ([]*models.Vehicle, error) {
	args := []any{tenantID}
	where := "tenant_id = $1"
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM vehicles WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		vehicleColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	vehicles := []*models.Vehicle{}
	for rows.Next() {
		vehicle, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, vehicle)
	}
	return vehicles, rows.Err()
}

func (r *vehicleRepo) Update(ctx context.Context, vehicle *models.Vehicle) error {
	query := `
		UPDATE vehicles
		SET brand = $1, model = $2, year = $3, registration_number = $4, daily_rate = $5, status = $6, updated_at = NOW()
		WHERE tenant_id = $7 AND id = $8
	`
	tag, err := r.db.Exec(ctx, query, vehicle.Brand, vehicle.Model, vehicle.Year, vehicle.RegistrationNumber,
		vehicle.DailyRate, string(vehicle.Status), vehicle.TenantID, vehicle.ID)
	if err != nil {
		return translateError(err, "vehicle")
	}
	return expectAffected(tag, "vehicle")
}

func (r *vehicleRepo) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status models.VehicleStatus) error {
	query := `UPDATE vehicles SET status = $1, updated_at = NOW() WHERE tenant_id = $2 AND id = $3`
	tag, err := r.db.Exec(ctx, query, string(status), tenantID, id)
	if err != nil {
		return translateError(err, "vehicle")
	}
	return expectAffected(tag, "vehicle")
}

func (r *vehicleRepo) UpdateImage(ctx context.Context, tenantID, id uuid.UUID, imageURL *string) error {
	query := `UPDATE vehicles SET image_url = $1, updated_at = NOW() WHERE tenant_id = $2 AND id = $3`
	tag, err := r.db.Exec(ctx, query, imageURL, tenantID, id)
	if err != nil {
		return translateError(err, "vehicle")
	}
	return expectAffected(tag, "vehicle")
}

func (r *vehicleRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM vehicles WHERE tenant_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, tenantID, id)
	if err != nil {
		return translateError(err, "vehicle")
	}
	return expectAffected(tag, "vehicle")
}
