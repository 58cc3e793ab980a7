package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fleetrent/internal/common"
	"fleetrent/internal/models"
	"fleetrent/internal/services"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/labstack/echo/v4"
)

// BookingHandlers handles booking ledger HTTP requests
type BookingHandlers struct {
	bookingService  services.BookingService
	contractService services.ContractService
	logger          hclog.Logger
}

// NewBookingHandlers creates a new booking handlers instance
func NewBookingHandlers(bookingService services.BookingService, contractService services.ContractService, logger hclog.Logger) *BookingHandlers {
	return &BookingHandlers{
		bookingService:  bookingService,
		contractService: contractService,
		logger:          logger.Named("bookings"),
	}
}

// Register mounts the booking routes on g
func (h *BookingHandlers) Register(g *echo.Group) {
	g.GET("/bookings", h.ListBookings)
	g.POST("/bookings", h.CreateRental)
	g.POST("/reservations", h.CreateReservation)
	g.GET("/bookings/:id", h.GetBooking)
	g.DELETE("/bookings/:id", h.DeleteBooking)
	g.POST("/bookings/:id/activate", h.Activate)
	g.POST("/bookings/:id/cancel", h.Cancel)
	g.POST("/bookings/:id/complete", h.Complete)
	g.POST("/bookings/:id/extend", h.Extend)
	g.POST("/bookings/:id/change-vehicle", h.ChangeVehicle)
	g.PUT("/bookings/:id/notes", h.UpdateNotes)
	g.GET("/bookings/:id/extensions", h.ListExtensions)
	g.GET("/bookings/:id/contract", h.DownloadContract)
}

// ListBookingsRequest represents query parameters for listing bookings.
// Status accepts a comma separated list.
type ListBookingsRequest struct {
	Status    string `query:"status"`
	VehicleID string `query:"vehicle_id" validate:"omitempty,uuid"`
	ClientID  string `query:"client_id" validate:"omitempty,uuid"`
	Limit     int    `query:"limit"`
	Offset    int    `query:"offset"`
}

func (r *ListBookingsRequest) toFilter() (models.BookingFilter, error) {
	filter := models.BookingFilter{}
	filter.Limit, filter.Offset = common.ValidatePaginationParams(r.Limit, r.Offset)
	for _, raw := range strings.Split(r.Status, ",") {
		status := models.BookingStatus(strings.TrimSpace(raw))
		if status == "" {
			continue
		}
		if !status.Valid() {
			return filter, common.ValidationError("status", fmt.Sprintf("unknown status %q", status))
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	if r.VehicleID != "" {
		id, err := common.ValidateUUID(r.VehicleID, "vehicle_id")
		if err != nil {
			return filter, err
		}
		filter.VehicleID = &id
	}
	if r.ClientID != "" {
		id, err := common.ValidateUUID(r.ClientID, "client_id")
		if err != nil {
			return filter, err
		}
		filter.ClientID = &id
	}
	return filter, nil
}

// ListBookings handles listing bookings joined with vehicle and client names
func (h *BookingHandlers) ListBookings(c echo.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req ListBookingsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}
	filter, err := req.toFilter()
	if err != nil {
		return respondError(c, h.logger, err)
	}

	bookings, err := h.bookingService.List(c.Request().Context(), tenant, filter)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"bookings": bookings,
		"limit":    filter.Limit,
		"offset":   filter.Offset,
	})
}

// CreateBookingRequest represents the rental and reservation payload. StartDate and EndDate
// are YYYY-MM-DD; StartAt and EndAt are optional RFC3339 pickup and return times.
type CreateBookingRequest struct {
	VehicleID string  `json:"vehicle_id" validate:"required,uuid"`
	ClientID  string  `json:"client_id" validate:"required,uuid"`
	StartDate string  `json:"start_date" validate:"required"`
	EndDate   string  `json:"end_date" validate:"required"`
	StartAt   *string `json:"start_at"`
	EndAt     *string `json:"end_at"`
	Notes     *string `json:"notes"`
}

func (r *CreateBookingRequest) toInput() (models.BookingInput, error) {
	var input models.BookingInput
	var err error
	if input.VehicleID, err = common.ValidateUUID(r.VehicleID, "vehicle_id"); err != nil {
		return input, err
	}
	if input.ClientID, err = common.ValidateUUID(r.ClientID, "client_id"); err != nil {
		return input, err
	}
	if input.StartDate, err = common.ParseDate(r.StartDate, "start_date"); err != nil {
		return input, err
	}
	if input.EndDate, err = common.ParseDate(r.EndDate, "end_date"); err != nil {
		return input, err
	}
	if input.StartAt, err = parseOptionalTimestamp(r.StartAt, "start_at"); err != nil {
		return input, err
	}
	if input.EndAt, err = parseOptionalTimestamp(r.EndAt, "end_at"); err != nil {
		return input, err
	}
	input.Notes = r.Notes
	return input, nil
}

func parseOptionalTimestamp(value *string, field string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(*value))
	if err != nil {
		return nil, common.ValidationError(field, "must be an RFC3339 timestamp")
	}
	return &t, nil
}

// CreateRental handles starting an immediate rental
func (h *BookingHandlers) CreateRental(c echo.Context) error {
	return h.create(c, h.bookingService.CreateRental)
}

// CreateReservation handles booking a vehicle in advance
func (h *BookingHandlers) CreateReservation(c echo.Context) error {
	return h.create(c, h.bookingService.CreateReservation)
}

type createFunc func(ctx context.Context, tenantID uuid.UUID, input models.BookingInput) (*models.Booking, error)

func (h *BookingHandlers) create(c echo.Context, fn createFunc) error {
	tenant, err := tenantID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req CreateBookingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}
	input, err := req.toInput()
	if err != nil {
		return respondError(c, h.logger, err)
	}

	booking, err := fn(c.Request().Context(), tenant, input)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, booking)
}

// GetBooking handles getting a booking by ID
func (h *BookingHandlers) GetBooking(c echo.Context) error {
	tenant, id, err := pathTarget(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	booking, err := h.bookingService.Get(c.Request().Context(), tenant, id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, booking)
}

// DeleteBooking handles removing a booking and its extensions
func (h *BookingHandlers) DeleteBooking(c echo.Context) error {
	tenant, id, err := pathTarget(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if err := h.bookingService.Delete(c.Request().Context(), tenant, id); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type transitionFunc func(ctx context.Context, tenantID, id uuid.UUID) (*models.Booking, error)

func (h *BookingHandlers) transition(c echo.Context, fn transitionFunc) error {
	tenant, id, err := pathTarget(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	booking, err := fn(c.Request().Context(), tenant, id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, booking)
}

// Activate handles converting a reservation into an active rental
func (h *BookingHandlers) Activate(c echo.Context) error {
	return h.transition(c, h.bookingService.Activate)
}

// Cancel handles cancelling a reservation
func (h *BookingHandlers) Cancel(c echo.Context) error {
	return h.transition(c, h.bookingService.Cancel)
}

// Complete handles returning the vehicle of an active rental
func (h *BookingHandlers) Complete(c echo.Context) error {
	return h.transition(c, h.bookingService.Complete)
}

// ExtendRequest represents the extension payload
type ExtendRequest struct {
	Days int `json:"days" validate:"required"`
}

// Extend handles prolonging an active rental or a reservation by a number of days
func (h *BookingHandlers) Extend(c echo.Context) error {
	tenant, id, err := pathTarget(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req ExtendRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}
	booking, err := h.bookingService.Extend(c.Request().Context(), tenant, id, req.Days)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, booking)
}

// ChangeVehicleRequest represents the vehicle swap payload
type ChangeVehicleRequest struct {
	VehicleID string `json:"vehicle_id" validate:"required,uuid"`
}

// ChangeVehicle handles moving an active rental onto another vehicle
func (h *BookingHandlers) ChangeVehicle(c echo.Context) error {
	tenant, id, err := pathTarget(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req ChangeVehicleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}
	vehicleID, err := common.ValidateUUID(req.VehicleID, "vehicle_id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	booking, err := h.bookingService.ChangeVehicle(c.Request().Context(), tenant, id, vehicleID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, booking)
}

// UpdateNotesRequest represents the notes payload. A null or blank value clears the notes.
type UpdateNotesRequest struct {
	Notes *string `json:"notes"`
}

// UpdateNotes handles editing a booking's free-text notes
func (h *BookingHandlers) UpdateNotes(c echo.Context) error {
	tenant, id, err := pathTarget(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req UpdateNotesRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}
	booking, err := h.bookingService.UpdateNotes(c.Request().Context(), tenant, id, req.Notes)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, booking)
}

// ListExtensions handles listing the extensions applied to a booking
func (h *BookingHandlers) ListExtensions(c echo.Context) error {
	tenant, id, err := pathTarget(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	exts, err := h.bookingService.ListExtensions(c.Request().Context(), tenant, id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"extensions": exts,
	})
}

// DownloadContract handles rendering the rental contract of a booking
func (h *BookingHandlers) DownloadContract(c echo.Context) error {
	tenant, id, err := pathTarget(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	ctx := c.Request().Context()
	snapshot, err := h.contractService.BuildSnapshot(ctx, tenant, id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	doc, err := h.contractService.Render(ctx, snapshot)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	filename := fmt.Sprintf("contract-%s.pdf", snapshot.ContractNumber)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Blob(http.StatusOK, h.contractService.ContentType(), doc)
}
