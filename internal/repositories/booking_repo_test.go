package repositories

import (
	"context"
	"testing"
	"time"

	"fleetrent/internal/common"
	"fleetrent/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

var bookingColumnNames = []string{"id", "tenant_id", "vehicle_id", "client_id", "start_date", "end_date", "start_at", "end_at", "total_price", "status", "notes", "created_at", "updated_at"}

type BookingRepoTestSuite struct {
	suite.Suite
	mock      pgxmock.PgxPoolIface
	repo      BookingRepository
	tenantID  uuid.UUID
	vehicleID uuid.UUID
	context   context.Context
}

func (suite *BookingRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock
	suite.repo = NewBookingRepository(mock)
	suite.tenantID = uuid.New()
	suite.vehicleID = uuid.New()
	suite.context = context.Background()
}

func (suite *BookingRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestBookingRepoTestSuite(t *testing.T) {
	suite.Run(t, new(BookingRepoTestSuite))
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (suite *BookingRepoTestSuite) TestCreate_Success() {
	notes := "child seat"
	booking := &models.Booking{
		ID: uuid.New(), TenantID: suite.tenantID, VehicleID: suite.vehicleID, ClientID: uuid.New(),
		StartDate: date(2024, 1, 1), EndDate: date(2024, 1, 5), TotalPrice: 250, Status: models.BookingStatusActive, Notes: &notes,
	}
	suite.mock.ExpectExec(`INSERT INTO bookings`).
		WithArgs(booking.ID, suite.tenantID, suite.vehicleID, booking.ClientID, booking.StartDate, booking.EndDate,
			(*time.Time)(nil), (*time.Time)(nil), 250.0, "active", &notes).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(suite.T(), suite.repo.Create(suite.context, booking))
}

func (suite *BookingRepoTestSuite) TestCreate_ExclusionViolationIsOverlapConflict() {
	booking := &models.Booking{ID: uuid.New(), TenantID: suite.tenantID, VehicleID: suite.vehicleID, Status: models.BookingStatusReserved}
	suite.mock.ExpectExec(`INSERT INTO bookings`).
		WillReturnError(&pgconn.PgError{Code: "23P01", ConstraintName: "bookings_no_overlap"})

	err := suite.repo.Create(suite.context, booking)

	assert.ErrorIs(suite.T(), err, common.ErrConflict)
	var de *common.DomainError
	assert.ErrorAs(suite.T(), err, &de)
	assert.Equal(suite.T(), "dates", de.Field)
}

func (suite *BookingRepoTestSuite) TestGetForUpdate() {
	id := uuid.New()
	startAt := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	now := time.Now()
	suite.mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE tenant_id = \$1 AND id = \$2 FOR UPDATE`).
		WithArgs(suite.tenantID, id).
		WillReturnRows(pgxmock.NewRows(bookingColumnNames).AddRow(id, suite.tenantID, suite.vehicleID, uuid.New(),
			date(2024, 1, 1), date(2024, 1, 5), &startAt, (*time.Time)(nil), 250.0, "reserved", (*string)(nil), now, now))

	booking, err := suite.repo.GetForUpdate(suite.context, suite.tenantID, id)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.BookingStatusReserved, booking.Status)
	assert.Equal(suite.T(), startAt, *booking.StartAt)
	assert.Nil(suite.T(), booking.EndAt)
}

func (suite *BookingRepoTestSuite) TestGetByID_NotFound() {
	suite.mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE tenant_id = \$1 AND id = \$2`).
		WillReturnError(pgx.ErrNoRows)

	_, err := suite.repo.GetByID(suite.context, suite.tenantID, uuid.New())

	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}

func (suite *BookingRepoTestSuite) TestCountOverlapping_ComparesInclusiveBounds() {
	start, end := date(2024, 1, 3), date(2024, 1, 7)
	suite.mock.ExpectQuery(`SELECT COUNT\(\*\)\s+FROM bookings\s+WHERE tenant_id = \$1 AND vehicle_id = \$2\s+AND status IN \('active', 'reserved'\)\s+AND start_date <= \$3 AND end_date >= \$4`).
		WithArgs(suite.tenantID, suite.vehicleID, end, start, (*uuid.UUID)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))

	count, err := suite.repo.CountOverlapping(suite.context, suite.tenantID, suite.vehicleID, start, end, nil)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, count)
}

func (suite *BookingRepoTestSuite) TestCountOverlapping_ExcludesBooking() {
	exclude := uuid.New()
	suite.mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs(suite.tenantID, suite.vehicleID, date(2024, 1, 9), date(2024, 1, 1), &exclude).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))

	count, err := suite.repo.CountOverlapping(suite.context, suite.tenantID, suite.vehicleID, date(2024, 1, 1), date(2024, 1, 9), &exclude)

	assert.NoError(suite.T(), err)
	assert.Zero(suite.T(), count)
}

func (suite *BookingRepoTestSuite) TestCountActiveByClient() {
	clientID := uuid.New()
	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE tenant_id = \$1 AND client_id = \$2 AND status = 'active'`).
		WithArgs(suite.tenantID, clientID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))

	count, err := suite.repo.CountActiveByClient(suite.context, suite.tenantID, clientID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, count)
}

func (suite *BookingRepoTestSuite) TestList_JoinsVehicleAndClient() {
	clientID := uuid.New()
	now := time.Now()
	suite.mock.ExpectQuery(`FROM bookings b\s+JOIN vehicles v ON v.id = b.vehicle_id\s+JOIN clients c ON c.id = b.client_id\s+WHERE b.tenant_id = \$1 AND b.status = ANY\(\$2\) AND b.client_id = \$3`).
		WithArgs(suite.tenantID, []string{"active", "reserved"}, clientID, 50, 0).
		WillReturnRows(pgxmock.NewRows(append(append([]string{}, bookingColumnNames...), "brand", "model", "registration_number", "name")).
			AddRow(uuid.New(), suite.tenantID, suite.vehicleID, clientID, date(2024, 1, 1), date(2024, 1, 5), (*time.Time)(nil), (*time.Time)(nil),
				250.0, "active", (*string)(nil), now, now, "Toyota", "Corolla", "AB-123", "Ana Petrova"))

	views, err := suite.repo.List(suite.context, suite.tenantID, models.BookingFilter{
		Statuses: []models.BookingStatus{models.BookingStatusActive, models.BookingStatusReserved},
		ClientID: &clientID,
		Limit:    50,
	})

	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), views, 1)
	assert.Equal(suite.T(), "Ana Petrova", views[0].ClientName)
	assert.Equal(suite.T(), "AB-123", views[0].RegistrationNumber)
	assert.Equal(suite.T(), models.BookingStatusActive, views[0].Status)
}

func (suite *BookingRepoTestSuite) TestUpdateSchedule() {
	id := uuid.New()
	suite.mock.ExpectExec(`UPDATE bookings SET end_date = \$1, end_at = \$2, total_price = \$3`).
		WithArgs(date(2024, 1, 7), (*time.Time)(nil), 316.67, suite.tenantID, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(suite.T(), suite.repo.UpdateSchedule(suite.context, suite.tenantID, id, date(2024, 1, 7), nil, 316.67))
}

func (suite *BookingRepoTestSuite) TestUpdateStatus_NotFound() {
	id := uuid.New()
	suite.mock.ExpectExec(`UPDATE bookings SET status = \$1`).
		WithArgs("completed", suite.tenantID, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := suite.repo.UpdateStatus(suite.context, suite.tenantID, id, models.BookingStatusCompleted)

	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}

func (suite *BookingRepoTestSuite) TestUpdateVehicle() {
	id, newVehicle := uuid.New(), uuid.New()
	suite.mock.ExpectExec(`UPDATE bookings SET vehicle_id = \$1`).
		WithArgs(newVehicle, suite.tenantID, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(suite.T(), suite.repo.UpdateVehicle(suite.context, suite.tenantID, id, newVehicle))
}
