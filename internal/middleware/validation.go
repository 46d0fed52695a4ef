package middleware

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/yigit/catequesis/internal/pkg/apperrors"
	"github.com/yigit/catequesis/internal/pkg/logger"
	"github.com/yigit/catequesis/internal/pkg/validation"
)

var registerOnce sync.Once

// RegisterValidators installs the application rules on gin's validator and makes
// field errors report form field names
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			logger.Warn().Msg("Gin validator engine is not go-playground/validator; custom rules not registered")
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
			if name == "" || name == "-" {
				return field.Name
			}
			return name
		})
		if err := validation.RegisterRules(v); err != nil {
			logger.Error().Err(err).Msg("Failed to register validation rules")
		}
	})
}

// BindForm binds the submitted form into obj. Binding and validation failures become
// a validation error carrying a readable notice.
func BindForm(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBind(obj); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) {
			messages := make([]string, 0, len(fieldErrors))
			for _, fe := range fieldErrors {
				messages = append(messages, formatValidationError(fe))
			}
			return apperrors.NewCustomError(apperrors.ErrValidationFailed, strings.Join(messages, " "))
		}
		return apperrors.NewCustomError(apperrors.ErrValidationFailed, "Formulario inválido.")
	}
	return nil
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required", validation.TagNotBlank:
		return fmt.Sprintf("El campo %s es obligatorio.", e.Field())
	case "min":
		return fmt.Sprintf("El campo %s debe tener al menos %s caracteres.", e.Field(), e.Param())
	case "max":
		return fmt.Sprintf("El campo %s debe tener como máximo %s caracteres.", e.Field(), e.Param())
	case "uuid":
		return fmt.Sprintf("El campo %s no es un identificador válido.", e.Field())
	case validation.TagRole:
		return fmt.Sprintf("El campo %s debe ser admin, catequista o catequizando.", e.Field())
	case validation.TagDate:
		return fmt.Sprintf("El campo %s debe tener el formato AAAA-MM-DD.", e.Field())
	case validation.TagNationalID:
		return fmt.Sprintf("El campo %s solo admite letras, números y guiones.", e.Field())
	default:
		return fmt.Sprintf("El campo %s no es válido (%s).", e.Field(), e.Tag())
	}
}
