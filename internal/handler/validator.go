package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validator adapts go-playground/validator to echo's Validator interface.
// Handlers call c.Validate(&req) after binding; a failing struct yields a
// 400 listing the offending fields.
type Validator struct{ validate *validator.Validate }

func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}
	fields := []string{}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
	}
	return echo.NewHTTPError(http.StatusBadRequest, echo.Map{
		"error":  "validation failed",
		"fields": fields,
	})
}
