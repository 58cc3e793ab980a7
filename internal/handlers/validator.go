package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"fleetrent/internal/common"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/labstack/echo/v4"
)

// RequestValidator adapts go-playground/validator to echo.Validator. Failures are
// reported as validation errors on the JSON field name.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
	return &RequestValidator{validate: v}
}

func (rv *RequestValidator) Validate(i interface{}) error {
	err := rv.validate.Struct(i)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return common.ValidationError("body", "is invalid")
	}
	fe := fieldErrs[0]
	return common.ValidationError(fe.Field(), describe(fe))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "is not a valid email address"
	case "uuid", "uuid4":
		return "has invalid UUID format"
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "datetime":
		return fmt.Sprintf("must match the %s layout", fe.Param())
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}

// bindAndValidate decodes the request into req and runs its validate tags.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return common.ValidationError("body", "invalid request format")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	return nil
}

// tenantID reads the caller's tenant established by the auth middleware.
func tenantID(c echo.Context) (uuid.UUID, error) {
	id, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return uuid.Nil, common.ErrUnauthorized
	}
	return id, nil
}

// pathTarget reads the caller's tenant and the :id path parameter.
func pathTarget(c echo.Context) (uuid.UUID, uuid.UUID, error) {
	tenant, err := tenantID(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return tenant, id, nil
}

// respondError writes the error envelope. Errors outside the domain taxonomy are logged first.
func respondError(c echo.Context, logger hclog.Logger, err error) error {
	var de *common.DomainError
	if !errors.As(err, &de) && !errors.Is(err, common.ErrUnauthorized) {
		logger.Error("request failed", "method", c.Request().Method, "path", c.Path(), "error", err)
	}
	return common.SendDomainError(c, err)
}
