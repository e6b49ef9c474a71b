package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/99minutos/cargo-tracking/internal/core/domain"
)

// ErrValidation marks request payloads rejected by the validator.
var ErrValidation = errors.New("validation failed")

// requestValidator adapts go-playground/validator to echo.Validator. Field
// names in messages are the JSON names clients send.
type requestValidator struct {
	v *validator.Validate
}

func NewValidator() *requestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	_ = v.RegisterValidation("shipment_status", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseShipmentStatus(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return domain.ValidRole(fl.Field().String())
	})
	return &requestValidator{v: v}
}

func (rv *requestValidator) Validate(i any) error {
	err := rv.v.Struct(i)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte", "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte", "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "shipment_status":
		return fmt.Sprintf("%s must be one of: %s %s %s %s", field,
			domain.StatusCreated, domain.StatusInTransit, domain.StatusDelivered, domain.StatusCancelled)
	case "role":
		return fmt.Sprintf("%s must be one of: %s %s %s", field, domain.RoleAdmin, domain.RoleCourier, domain.RoleCustomer)
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
