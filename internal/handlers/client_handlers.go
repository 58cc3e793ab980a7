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

// ClientHandlers handles client registry HTTP requests
type ClientHandlers struct {
	clientService services.ClientService
	logger        hclog.Logger
}

// NewClientHandlers creates a new client handlers instance
func NewClientHandlers(clientService services.ClientService, logger hclog.Logger) *ClientHandlers {
	return &ClientHandlers{
		clientService: clientService,
		logger:        logger.Named("clients"),
	}
}

// Register mounts the client routes on g
func (h *ClientHandlers) Register(g *echo.Group) {
	g.GET("/clients", h.ListClients)
	g.POST("/clients", h.CreateClient)
	g.GET("/clients/:id", h.GetClient)
	g.PUT("/clients/:id", h.UpdateClient)
	g.DELETE("/clients/:id", h.DeleteClient)
}

// ListClientsRequest represents query parameters for listing clients
type ListClientsRequest struct {
	Query  string `query:"q" validate:"max=200"`
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}

// ListClients handles searching the tenant's clients
func (h *ClientHandlers) ListClients(c echo.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req ListClientsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	filter := models.ClientFilter{Query: req.Query}
	filter.Limit, filter.Offset = common.ValidatePaginationParams(req.Limit, req.Offset)
	clients, err := h.clientService.List(c.Request().Context(), tenant, filter)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"clients": clients,
		"limit":   filter.Limit,
		"offset":  filter.Offset,
	})
}

// ClientRequest represents the client create and update payload. Dates are YYYY-MM-DD.
type ClientRequest struct {
	Name              string  `json:"name" validate:"required,max=200"`
	IDNumber          string  `json:"id_number" validate:"required,max=100"`
	Email             *string `json:"email" validate:"omitempty,max=254"`
	Phone             *string `json:"phone"`
	Address           *string `json:"address"`
	LicenseNumber     *string `json:"license_number" validate:"omitempty,max=100"`
	LicenseIssueDate  *string `json:"license_issue_date"`
	LicenseExpiryDate *string `json:"license_expiry_date"`
	IDCardIssueDate   *string `json:"id_card_issue_date"`
	IDCardExpiryDate  *string `json:"id_card_expiry_date"`
}

func (r *ClientRequest) toModel() (*models.Client, error) {
	client := &models.Client{
		Name:          r.Name,
		IDNumber:      r.IDNumber,
		Email:         r.Email,
		Phone:         r.Phone,
		Address:       r.Address,
		LicenseNumber: r.LicenseNumber,
	}
	var err error
	if client.LicenseIssueDate, err = common.ParseOptionalDate(r.LicenseIssueDate, "license_issue_date"); err != nil {
		return nil, err
	}
	if client.LicenseExpiryDate, err = common.ParseOptionalDate(r.LicenseExpiryDate, "license_expiry_date"); err != nil {
		return nil, err
	}
	if client.IDCardIssueDate, err = common.ParseOptionalDate(r.IDCardIssueDate, "id_card_issue_date"); err != nil {
		return nil, err
	}
	if client.IDCardExpiryDate, err = common.ParseOptionalDate(r.IDCardExpiryDate, "id_card_expiry_date"); err != nil {
		return nil, err
	}
	return client, nil
}

// CreateClient handles registering a new client
func (h *ClientHandlers) CreateClient(c echo.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req ClientRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}
	client, err := req.toModel()
	if err != nil {
		return respondError(c, h.logger, err)
	}

	if err := h.clientService.Create(c.Request().Context(), tenant, client); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, client)
}

// GetClient handles getting a client by ID
func (h *ClientHandlers) GetClient(c echo.Context) error {
	tenant, id, err := h.target(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	client, err := h.clientService.GetByID(c.Request().Context(), tenant, id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, client)
}

// UpdateClient handles replacing a client's details
func (h *ClientHandlers) UpdateClient(c echo.Context) error {
	tenant, id, err := h.target(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req ClientRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}
	client, err := req.toModel()
	if err != nil {
		return respondError(c, h.logger, err)
	}

	client.ID = id
	if err := h.clientService.Update(c.Request().Context(), tenant, client); err != nil {
		return respondError(c, h.logger, err)
	}
	updated, err := h.clientService.GetByID(c.Request().Context(), tenant, id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteClient handles removing a client and their bookings
func (h *ClientHandlers) DeleteClient(c echo.Context) error {
	tenant, id, err := h.target(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if err := h.clientService.Delete(c.Request().Context(), tenant, id); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ClientHandlers) target(c echo.Context) (uuid.UUID, uuid.UUID, error) {
	return pathTarget(c)
}
