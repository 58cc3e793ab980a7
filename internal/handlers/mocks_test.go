package handlers

import (
	"context"
	"io"
	"time"

	"fleetrent/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockVehicleService struct {
	mock.Mock
}

func (m *MockVehicleService) Create(ctx context.Context, tenantID uuid.UUID, vehicle *models.Vehicle) error {
	args := m.Called(ctx, tenantID, vehicle)
	return args.Error(0)
}

func (m *MockVehicleService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Vehicle, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

func (m *MockVehicleService) Update(ctx context.Context, tenantID uuid.UUID, vehicle *models.Vehicle) error {
	args := m.Called(ctx, tenantID, vehicle)
	return args.Error(0)
}

func (m *MockVehicleService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockVehicleService) List(ctx context.Context, tenantID uuid.UUID, filter models.VehicleFilter) ([]*models.Vehicle, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Vehicle), args.Error(1)
}

func (m *MockVehicleService) SetImage(ctx context.Context, tenantID, id uuid.UUID, file io.Reader, size int64, contentType string) (*models.Vehicle, error) {
	args := m.Called(ctx, tenantID, id, file, size, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

func (m *MockVehicleService) RemoveImage(ctx context.Context, tenantID, id uuid.UUID) (*models.Vehicle, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

type MockAvailabilityChecker struct {
	mock.Mock
}

func (m *MockAvailabilityChecker) IsAvailable(ctx context.Context, tenantID, vehicleID uuid.UUID, start, end time.Time, excludeBookingID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, vehicleID, start, end, excludeBookingID)
	return args.Bool(0), args.Error(1)
}

type MockClientService struct {
	mock.Mock
}

func (m *MockClientService) Create(ctx context.Context, tenantID uuid.UUID, client *models.Client) error {
	args := m.Called(ctx, tenantID, client)
	return args.Error(0)
}

func (m *MockClientService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Client, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

func (m *MockClientService) Update(ctx context.Context, tenantID uuid.UUID, client *models.Client) error {
	args := m.Called(ctx, tenantID, client)
	return args.Error(0)
}

func (m *MockClientService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockClientService) List(ctx context.Context, tenantID uuid.UUID, filter models.ClientFilter) ([]*models.Client, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Client), args.Error(1)
}

type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) booking(args mock.Arguments) (*models.Booking, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingService) CreateRental(ctx context.Context, tenantID uuid.UUID, input models.BookingInput) (*models.Booking, error) {
	return m.booking(m.Called(ctx, tenantID, input))
}

func (m *MockBookingService) CreateReservation(ctx context.Context, tenantID uuid.UUID, input models.BookingInput) (*models.Booking, error) {
	return m.booking(m.Called(ctx, tenantID, input))
}

func (m *MockBookingService) Activate(ctx context.Context, tenantID, id uuid.UUID) (*models.Booking, error) {
	return m.booking(m.Called(ctx, tenantID, id))
}

func (m *MockBookingService) Cancel(ctx context.Context, tenantID, id uuid.UUID) (*models.Booking, error) {
	return m.booking(m.Called(ctx, tenantID, id))
}

func (m *MockBookingService) Complete(ctx context.Context, tenantID, id uuid.UUID) (*models.Booking, error) {
	return m.booking(m.Called(ctx, tenantID, id))
}

func (m *MockBookingService) ChangeVehicle(ctx context.Context, tenantID, id, newVehicleID uuid.UUID) (*models.Booking, error) {
	return m.booking(m.Called(ctx, tenantID, id, newVehicleID))
}

func (m *MockBookingService) Extend(ctx context.Context, tenantID, id uuid.UUID, days int) (*models.Booking, error) {
	return m.booking(m.Called(ctx, tenantID, id, days))
}

func (m *MockBookingService) UpdateNotes(ctx context.Context, tenantID, id uuid.UUID, notes *string) (*models.Booking, error) {
	return m.booking(m.Called(ctx, tenantID, id, notes))
}

func (m *MockBookingService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockBookingService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Booking, error) {
	return m.booking(m.Called(ctx, tenantID, id))
}

func (m *MockBookingService) List(ctx context.Context, tenantID uuid.UUID, filter models.BookingFilter) ([]*models.BookingView, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BookingView), args.Error(1)
}

func (m *MockBookingService) ListExtensions(ctx context.Context, tenantID, id uuid.UUID) ([]*models.BookingExtension, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BookingExtension), args.Error(1)
}

type MockContractService struct {
	mock.Mock
}

func (m *MockContractService) BuildSnapshot(ctx context.Context, tenantID, bookingID uuid.UUID) (*models.ContractSnapshot, error) {
	args := m.Called(ctx, tenantID, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ContractSnapshot), args.Error(1)
}

func (m *MockContractService) Render(ctx context.Context, snapshot *models.ContractSnapshot) ([]byte, error) {
	args := m.Called(ctx, snapshot)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockContractService) ContentType() string {
	return m.Called().String(0)
}

type MockSettingsService struct {
	mock.Mock
}

func (m *MockSettingsService) settings(args mock.Arguments) (*models.CompanySettings, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CompanySettings), args.Error(1)
}

func (m *MockSettingsService) Get(ctx context.Context, tenantID uuid.UUID) (*models.CompanySettings, error) {
	return m.settings(m.Called(ctx, tenantID))
}

func (m *MockSettingsService) Update(ctx context.Context, tenantID uuid.UUID, settings *models.CompanySettings) error {
	args := m.Called(ctx, tenantID, settings)
	return args.Error(0)
}

func (m *MockSettingsService) SetLogo(ctx context.Context, tenantID uuid.UUID, file io.Reader, size int64, contentType string) (*models.CompanySettings, error) {
	return m.settings(m.Called(ctx, tenantID, file, size, contentType))
}

func (m *MockSettingsService) RemoveLogo(ctx context.Context, tenantID uuid.UUID) (*models.CompanySettings, error) {
	return m.settings(m.Called(ctx, tenantID))
}

type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) Get(ctx context.Context, tenantID uuid.UUID) (*models.DashboardStats, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DashboardStats), args.Error(1)
}

func (m *MockStatsService) Invalidate(ctx context.Context, tenantID uuid.UUID) {
	m.Called(ctx, tenantID)
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error {
	return p.err
}

var (
	mockCtx       = mock.Anything
	mockAnyFilter = mock.Anything
)
