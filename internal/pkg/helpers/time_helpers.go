package helpers

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yigit/catequesis/internal/app/models"
	"github.com/yigit/catequesis/internal/pkg/apperrors"
)

// ParseDuration parses a duration string, returns default duration on error.
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		log.Warn().Err(err).Str("durationStr", durationStr).Dur("defaultDuration", defaultDuration).Msg("Failed to parse duration string, using default")
		return defaultDuration
	}
	return duration
}

// ParseDate parses a YYYY-MM-DD form value into a UTC midnight time.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidDate, value)
	}
	return t.UTC(), nil
}

// FormatDate renders a date back into its YYYY-MM-DD form value.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(models.DateLayout)
}

// DateOnly truncates t to midnight UTC of the same calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
