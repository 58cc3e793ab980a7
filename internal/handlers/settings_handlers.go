package handlers

import (
	"net/http"

	"fleetrent/internal/models"
	"fleetrent/internal/services"

	"github.com/hashicorp/go-hclog"
	"github.com/labstack/echo/v4"
)

// SettingsHandlers handles company settings HTTP requests
type SettingsHandlers struct {
	settingsService services.SettingsService
	statsService    services.StatsService
	logger          hclog.Logger
}

// NewSettingsHandlers creates a new settings handlers instance
func NewSettingsHandlers(settingsService services.SettingsService, statsService services.StatsService, logger hclog.Logger) *SettingsHandlers {
	return &SettingsHandlers{
		settingsService: settingsService,
		statsService:    statsService,
		logger:          logger.Named("settings"),
	}
}

// Register mounts the settings and dashboard routes on g
func (h *SettingsHandlers) Register(g *echo.Group) {
	g.GET("/settings", h.GetSettings)
	g.PUT("/settings", h.UpdateSettings)
	g.PUT("/settings/logo", h.UploadLogo)
	g.DELETE("/settings/logo", h.RemoveLogo)
	g.GET("/stats", h.GetStats)
}

// GetSettings handles getting the company settings, falling back to defaults
func (h *SettingsHandlers) GetSettings(c echo.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	settings, err := h.settingsService.Get(c.Request().Context(), tenant)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, settings)
}

// UpdateSettingsRequest represents the company settings payload
type UpdateSettingsRequest struct {
	CompanyName   string  `json:"company_name" validate:"required,max=200"`
	Address       *string `json:"address"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email"`
	TaxID         *string `json:"tax_id" validate:"omitempty,max=100"`
	ContractTerms string  `json:"contract_terms"`
}

// UpdateSettings handles saving the company settings
func (h *SettingsHandlers) UpdateSettings(c echo.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req UpdateSettingsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	settings := &models.CompanySettings{
		CompanyName:   req.CompanyName,
		Address:       req.Address,
		Phone:         req.Phone,
		Email:         req.Email,
		TaxID:         req.TaxID,
		ContractTerms: req.ContractTerms,
	}
	ctx := c.Request().Context()
	if err := h.settingsService.Update(ctx, tenant, settings); err != nil {
		return respondError(c, h.logger, err)
	}
	saved, err := h.settingsService.Get(ctx, tenant)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, saved)
}

// UploadLogo handles replacing the company logo from a multipart "file" field
func (h *SettingsHandlers) UploadLogo(c echo.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	upload, err := openUpload(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	defer upload.Close()

	settings, err := h.settingsService.SetLogo(c.Request().Context(), tenant, upload, upload.size, upload.contentType)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, settings)
}

// RemoveLogo handles clearing the company logo
func (h *SettingsHandlers) RemoveLogo(c echo.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	settings, err := h.settingsService.RemoveLogo(c.Request().Context(), tenant)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, settings)
}

// GetStats handles getting the dashboard counters
func (h *SettingsHandlers) GetStats(c echo.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	stats, err := h.statsService.Get(c.Request().Context(), tenant)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, stats)
}
