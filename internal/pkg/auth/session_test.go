package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/catequesis/internal/app/models"
	"github.com/yigit/catequesis/internal/app/models/dto"
	"github.com/yigit/catequesis/internal/pkg/apperrors"
)

func newTestCodec() *CookieCodec {
	return NewCookieCodec(CookieConfig{SecretKey: "test-secret", SessionTTL: time.Hour})
}

func TestSessionRoundTrip(t *testing.T) {
	codec := newTestCodec()
	identity := models.Identity{
		UserID:    uuid.New(),
		Username:  "crivera",
		Role:      models.RoleStudent,
		FullName:  "Camila Rivera",
		SessionID: NewSessionID(),
	}

	token, err := codec.EncodeSession(identity)
	require.NoError(t, err)

	decoded, err := codec.DecodeSession(token)
	require.NoError(t, err)
	assert.Equal(t, identity, *decoded)
}

func TestSessionRejectsTampering(t *testing.T) {
	codec := newTestCodec()
	token, err := codec.EncodeSession(models.Identity{
		UserID:    uuid.New(),
		Username:  "x",
		Role:      models.RoleCatechist,
		SessionID: NewSessionID(),
	})
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	forged := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	_, err = codec.DecodeSession(forged)
	assert.ErrorIs(t, err, apperrors.ErrSessionInvalid)

	other := NewCookieCodec(CookieConfig{SecretKey: "other-secret", SessionTTL: time.Hour})
	_, err = other.DecodeSession(token)
	assert.ErrorIs(t, err, apperrors.ErrSessionInvalid)
}

func TestSessionExpiry(t *testing.T) {
	codec := newTestCodec()
	issued := time.Now().Add(-2 * time.Hour)
	codec.now = func() time.Time { return issued }

	token, err := codec.EncodeSession(models.Identity{
		UserID:    uuid.New(),
		Role:      models.RoleAdmin,
		SessionID: NewSessionID(),
	})
	require.NoError(t, err)

	codec.now = time.Now
	_, err = codec.DecodeSession(token)
	assert.ErrorIs(t, err, apperrors.ErrSessionExpired)
}

func TestFlashTokenIsNotASession(t *testing.T) {
	codec := newTestCodec()
	flashes := []dto.FlashMessage{{Category: dto.FlashWarning, Message: "login first"}}

	token, err := codec.EncodeFlashes(flashes)
	require.NoError(t, err)

	decoded, err := codec.DecodeFlashes(token)
	require.NoError(t, err)
	assert.Equal(t, flashes, decoded)

	_, err = codec.DecodeSession(token)
	assert.Error(t, err)
}

func TestEncodeSessionRequiresSessionID(t *testing.T) {
	_, err := newTestCodec().EncodeSession(models.Identity{UserID: uuid.New(), Role: models.RoleAdmin})
	assert.ErrorIs(t, err, apperrors.ErrSessionInvalid)
}
