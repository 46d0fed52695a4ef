package validation

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yigit/catequesis/internal/app/models"
	"github.com/yigit/catequesis/internal/pkg/helpers"
)

// Validation rule patterns
var (
	// National id: digits, letters and dashes
	NationalIDPattern = `^[0-9A-Za-z\-]+$`
)

// CompiledPatterns caches compiled regex patterns for better performance
var CompiledPatterns = struct {
	NationalID *regexp.Regexp
}{
	NationalID: regexp.MustCompile(NationalIDPattern),
}

// Tags registered by RegisterRules
const (
	TagRole       = "role"
	TagDate       = "isodate"
	TagNationalID = "cedula"
	TagNotBlank   = "notblank"
)

// RegisterRules adds the form rules of the application to v
func RegisterRules(v *validator.Validate) error {
	rules := map[string]validator.Func{
		TagRole:       validRole,
		TagDate:       validDate,
		TagNationalID: validNationalID,
		TagNotBlank:   notBlank,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func validRole(fl validator.FieldLevel) bool {
	return models.Role(fl.Field().String()).Valid()
}

func validDate(fl validator.FieldLevel) bool {
	_, err := helpers.ParseDate(fl.Field().String())
	return err == nil
}

func validNationalID(fl validator.FieldLevel) bool {
	return CompiledPatterns.NationalID.MatchString(strings.TrimSpace(fl.Field().String()))
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
