package helpers

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/catequesis/internal/pkg/apperrors"
)

func TestDateRoundTrip(t *testing.T) {
	for _, value := range []string{"2015-03-09", "2000-02-29", "1999-12-31", "2024-01-01"} {
		parsed, err := ParseDate(value)
		require.NoError(t, err)
		assert.Equal(t, value, FormatDate(parsed))
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, value := range []string{"", "09/03/2015", "2015-13-01", "yesterday"} {
		_, err := ParseDate(value)
		assert.ErrorIs(t, err, apperrors.ErrInvalidDate, value)
	}
}

func TestDateOnly(t *testing.T) {
	in := time.Date(2020, 5, 17, 23, 59, 1, 5, time.UTC)
	assert.Equal(t, time.Date(2020, 5, 17, 0, 0, 0, 0, time.UTC), DateOnly(in))
}

func TestParseID(t *testing.T) {
	id := uuid.New()

	parsed, err := ParseID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseID("64b7f0c2a1b2c3d4e5f60718")
	assert.ErrorIs(t, err, apperrors.ErrInvalidID)
}

func TestParseOptionalID(t *testing.T) {
	got, err := ParseOptionalID("  ")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = ParseOptionalID("nope")
	assert.ErrorIs(t, err, apperrors.ErrInvalidID)
}

func TestParseDurationFallsBack(t *testing.T) {
	assert.Equal(t, time.Minute, ParseDuration("bogus", time.Minute))
	assert.Equal(t, 2*time.Hour, ParseDuration("2h", time.Minute))
}
