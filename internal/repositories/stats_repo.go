package repositories

import (
	"context"
	"time"

	"fleetrent/internal/models"

	"github.com/google/uuid"
)

// StatsRepository reads the dashboard aggregates. It never writes.
type StatsRepository interface {
	Aggregate(ctx context.Context, tenantID uuid.UUID, monthStart time.Time) (*models.DashboardStats, error)
}

type statsRepo struct {
	db DBTX
}

func NewStatsRepository(db DBTX) StatsRepository {
	return &statsRepo{db: db}
}

// Aggregate counts vehicles, clients and bookings of the tenant. Revenue sums the total price of
// active and completed bookings; month revenue restricts that to bookings starting on or after monthStart.
func (r *statsRepo) Aggregate(ctx context.Context, tenantID uuid.UUID, monthStart time.Time) (*models.DashboardStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM vehicles WHERE tenant_id = $1),
			(SELECT COUNT(*) FROM vehicles WHERE tenant_id = $1 AND status = 'available'),
			(SELECT COUNT(*) FROM vehicles WHERE tenant_id = $1 AND status = 'rented'),
			(SELECT COUNT(*) FROM vehicles WHERE tenant_id = $1 AND status = 'maintenance'),
			(SELECT COUNT(*) FROM clients WHERE tenant_id = $1),
			(SELECT COUNT(*) FROM bookings WHERE tenant_id = $1 AND status = 'reserved'),
			(SELECT COUNT(*) FROM bookings WHERE tenant_id = $1 AND status = 'active'),
			(SELECT COUNT(*) FROM bookings WHERE tenant_id = $1 AND status = 'completed'),
			(SELECT COUNT(*) FROM bookings WHERE tenant_id = $1 AND status = 'cancelled'),
			(SELECT COALESCE(SUM(total_price), 0)::float8 FROM bookings WHERE tenant_id = $1 AND status IN ('active', 'completed')),
			(SELECT COALESCE(SUM(total_price), 0)::float8 FROM bookings WHERE tenant_id = $1 AND status IN ('active', 'completed') AND start_date >= $2)
	`
	stats := &models.DashboardStats{}
	err := r.db.QueryRow(ctx, query, tenantID, monthStart).Scan(
		&stats.TotalVehicles, &stats.AvailableVehicles, &stats.RentedVehicles, &stats.MaintenanceVehicles,
		&stats.TotalClients,
		&stats.ReservedBookings, &stats.ActiveBookings, &stats.CompletedBookings, &stats.CancelledBookings,
		&stats.TotalRevenue, &stats.MonthRevenue,
	)
	if err != nil {
		return nil, err
	}
	stats.GeneratedAt = time.Now().UTC()
	return stats, nil
}
