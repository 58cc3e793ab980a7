package models

import "time"

// DashboardStats holds the aggregate counts and revenue sums shown on the dashboard
type DashboardStats struct {
	TotalVehicles       int       `json:"total_vehicles"`
	AvailableVehicles   int       `json:"available_vehicles"`
	RentedVehicles      int       `json:"rented_vehicles"`
	MaintenanceVehicles int       `json:"maintenance_vehicles"`
	TotalClients        int       `json:"total_clients"`
	ReservedBookings    int       `json:"reserved_bookings"`
	ActiveBookings      int       `json:"active_bookings"`
	CompletedBookings   int       `json:"completed_bookings"`
	CancelledBookings   int       `json:"cancelled_bookings"`
	TotalRevenue        float64   `json:"total_revenue"`
	MonthRevenue        float64   `json:"month_revenue"`
	GeneratedAt         time.Time `json:"generated_at"`
}
