package handlers

import (
	"net/http"

	"fleetrent/internal/common"
	"fleetrent/internal/models"
	"fleetrent/internal/services"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/labstack/echo/v4"
)

// VehicleHandlers handles fleet registry HTTP requests
type VehicleHandlers struct {
	vehicleService services.VehicleService
	availability   services.AvailabilityChecker
	logger         hclog.Logger
}

// NewVehicleHandlers creates a new vehicle handlers instance
func NewVehicleHandlers(vehicleService services.VehicleService, availability services.AvailabilityChecker, logger hclog.Logger) *VehicleHandlers {
	return &VehicleHandlers{
		vehicleService: vehicleService,
		availability:   availability,
		logger:         logger.Named("vehicles"),
	}
}

// Register mounts the vehicle routes on g
func (h *VehicleHandlers) Register(g *echo.Group) {
	g.GET("/vehicles", h.ListVehicles)
	g.POST("/vehicles", h.CreateVehicle)
	g.GET("/vehicles/:id", h.GetVehicle)
	g.PUT("/vehicles/:id", h.UpdateVehicle)
	g.DELETE("/vehicles/:id", h.DeleteVehicle)
	g.PUT("/vehicles/:id/image", h.UploadImage)
	g.DELETE("/vehicles/:id/image", h.RemoveImage)
	g.GET("/vehicles/:id/availability", h.CheckAvailability)
}

// ListVehiclesRequest represents query parameters for listing vehicles
type ListVehiclesRequest struct {
	Status string `query:"status" validate:"omitempty,oneof=available rented maintenance"`
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}

// ListVehicles handles getting the tenant's fleet, optionally filtered by status
func (h *VehicleHandlers) ListVehicles(c echo.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req ListVehiclesRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	filter := models.VehicleFilter{Limit: req.Limit, Offset: req.Offset}
	filter.Limit, filter.Offset = common.ValidatePaginationParams(filter.Limit, filter.Offset)
	if req.Status != "" {
		status := models.VehicleStatus(req.Status)
		filter.Status = &status
	}

	vehicles, err := h.vehicleService.List(c.Request().Context(), tenant, filter)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"vehicles": vehicles,
		"limit":    filter.Limit,
		"offset":   filter.Offset,
	})
}

// VehicleRequest represents the vehicle create and update payload
type VehicleRequest struct {
	Brand              string  `json:"brand" validate:"required,max=100"`
	Model              string  `json:"model" validate:"required,max=100"`
	Year               int     `json:"year" validate:"required"`
	RegistrationNumber string  `json:"registration_number" validate:"required,max=50"`
	DailyRate          float64 `json:"daily_rate" validate:"gte=0"`
	Status             string  `json:"status" validate:"omitempty,oneof=available rented maintenance"`
}

func (r *VehicleRequest) toModel() *models.Vehicle {
	return &models.Vehicle{
		Brand:              r.Brand,
		Model:              r.Model,
		Year:               r.Year,
		RegistrationNumber: r.RegistrationNumber,
		DailyRate:          r.DailyRate,
		Status:             models.VehicleStatus(r.Status),
	}
}

// CreateVehicle handles registering a new vehicle
func (h *VehicleHandlers) CreateVehicle(c echo.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req VehicleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	vehicle := req.toModel()
	if err := h.vehicleService.Create(c.Request().Context(), tenant, vehicle); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, vehicle)
}

// GetVehicle handles getting a vehicle by ID
func (h *VehicleHandlers) GetVehicle(c echo.Context) error {
	tenant, id, err := h.target(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	vehicle, err := h.vehicleService.GetByID(c.Request().Context(), tenant, id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, vehicle)
}

// UpdateVehicle handles replacing a vehicle's editable fields
func (h *VehicleHandlers) UpdateVehicle(c echo.Context) error {
	tenant, id, err := h.target(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req VehicleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	vehicle := req.toModel()
	vehicle.ID = id
	if err := h.vehicleService.Update(c.Request().Context(), tenant, vehicle); err != nil {
		return respondError(c, h.logger, err)
	}
	updated, err := h.vehicleService.GetByID(c.Request().Context(), tenant, id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteVehicle handles removing a vehicle and its bookings
func (h *VehicleHandlers) DeleteVehicle(c echo.Context) error {
	tenant, id, err := h.target(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if err := h.vehicleService.Delete(c.Request().Context(), tenant, id); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadImage handles replacing the vehicle photo from a multipart "file" field
func (h *VehicleHandlers) UploadImage(c echo.Context) error {
	tenant, id, err := h.target(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	upload, err := openUpload(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	defer upload.Close()

	vehicle, err := h.vehicleService.SetImage(c.Request().Context(), tenant, id, upload, upload.size, upload.contentType)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, vehicle)
}

// RemoveImage handles clearing the vehicle photo
func (h *VehicleHandlers) RemoveImage(c echo.Context) error {
	tenant, id, err := h.target(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	vehicle, err := h.vehicleService.RemoveImage(c.Request().Context(), tenant, id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, vehicle)
}

// AvailabilityRequest represents query parameters for an availability check
type AvailabilityRequest struct {
	Start   string `query:"start" validate:"required"`
	End     string `query:"end" validate:"required"`
	Exclude string `query:"exclude" validate:"omitempty,uuid"`
}

// CheckAvailability reports whether the vehicle is free for the inclusive date range
func (h *VehicleHandlers) CheckAvailability(c echo.Context) error {
	tenant, id, err := h.target(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req AvailabilityRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}
	start, err := common.ParseDate(req.Start, "start")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	end, err := common.ParseDate(req.End, "end")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var exclude *uuid.UUID
	if req.Exclude != "" {
		excludeID, err := common.ValidateUUID(req.Exclude, "exclude")
		if err != nil {
			return respondError(c, h.logger, err)
		}
		exclude = &excludeID
	}

	available, err := h.availability.IsAvailable(c.Request().Context(), tenant, id, start, end, exclude)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"vehicle_id": id,
		"start":      req.Start,
		"end":        req.End,
		"available":  available,
	})
}

func (h *VehicleHandlers) target(c echo.Context) (uuid.UUID, uuid.UUID, error) {
	return pathTarget(c)
}
