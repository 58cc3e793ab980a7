package testhelpers

import (
	"context"
	"os"
	"testing"

	"fleetrent/internal/models"
	"fleetrent/pkg/database"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TestDB holds the database connection for integration tests
type TestDB struct {
	Pool    *pgxpool.Pool
	Cleanup func()
}

// SetupTestDB connects to TEST_DATABASE_URL and applies the schema.
// The test is skipped when the variable is not set.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	logger := hclog.NewNullLogger()
	pool, err := database.NewPool(ctx, connString, logger)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := database.Migrate(ctx, pool, logger); err != nil {
		pool.Close()
		t.Fatalf("Failed to apply schema: %v", err)
	}

	db := &TestDB{Pool: pool}
	db.Cleanup = func() { pool.Close() }
	t.Cleanup(db.Cleanup)
	return db
}

// NewTenant returns a fresh tenant ID and removes the tenant's rows when the test ends.
// Tenants have no table of their own, so every test gets an isolated slice of the shared schema.
func NewTenant(t *testing.T, db *TestDB) uuid.UUID {
	t.Helper()

	tenantID := uuid.New()
	t.Cleanup(func() {
		ctx := context.Background()
		for _, table := range []string{"bookings", "vehicles", "clients", "company_settings"} {
			if _, err := db.Pool.Exec(ctx, "DELETE FROM "+table+" WHERE tenant_id = $1", tenantID); err != nil {
				t.Logf("cleanup %s: %v", table, err)
			}
		}
	})
	return tenantID
}

// SeedVehicle inserts an available vehicle
func SeedVehicle(t *testing.T, db *TestDB, tenantID uuid.UUID, registration string, dailyRate float64) *models.Vehicle {
	t.Helper()

	vehicle := &models.Vehicle{
		ID:                 uuid.New(),
		TenantID:           tenantID,
		Brand:              "Toyota",
		Model:              "Corolla",
		Year:               2022,
		RegistrationNumber: registration,
		DailyRate:          dailyRate,
		Status:             models.VehicleStatusAvailable,
	}
	query := `
		INSERT INTO vehicles (id, tenant_id, brand, model, year, registration_number, daily_rate, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := db.Pool.Exec(context.Background(), query, vehicle.ID, tenantID, vehicle.Brand, vehicle.Model, vehicle.Year,
		registration, dailyRate, string(vehicle.Status))
	if err != nil {
		t.Fatalf("Failed to create test vehicle: %v", err)
	}
	return vehicle
}

// SeedClient inserts a client with the given ID number
func SeedClient(t *testing.T, db *TestDB, tenantID uuid.UUID, name, idNumber string) *models.Client {
	t.Helper()

	client := &models.Client{ID: uuid.New(), TenantID: tenantID, Name: name, IDNumber: idNumber}
	query := `INSERT INTO clients (id, tenant_id, name, id_number) VALUES ($1, $2, $3, $4)`
	if _, err := db.Pool.Exec(context.Background(), query, client.ID, tenantID, name, idNumber); err != nil {
		t.Fatalf("Failed to create test client: %v", err)
	}
	return client
}
