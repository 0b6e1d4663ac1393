package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jhoicas/rate-calendar-api/internal/application/dto"
)

// requestValidator envuelve go-playground/validator y traduce sus errores a dto.FieldError.
type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New()
	// Los errores se reportan con el nombre JSON (o query) del campo.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			if name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]; name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return &requestValidator{validate: v}
}

// Validate devuelve los campos que no cumplen sus etiquetas `validate`; nil si todo es válido.
func (v *requestValidator) Validate(i any) []dto.FieldError {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []dto.FieldError{{Field: "body", Rule: err.Error()}}
	}
	out := make([]dto.FieldError, 0, len(verrs))
	for _, e := range verrs {
		rule := e.Tag()
		if e.Param() != "" {
			rule += "=" + e.Param()
		}
		out = append(out, dto.FieldError{Field: e.Field(), Rule: rule})
	}
	return out
}
