package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yigit/catequesis/internal/app/auth"
	"github.com/yigit/catequesis/internal/app/models"
	"github.com/yigit/catequesis/internal/app/models/dto"
	pkgauth "github.com/yigit/catequesis/internal/pkg/auth"
	"github.com/yigit/catequesis/internal/pkg/logger"
	"github.com/yigit/catequesis/internal/pkg/sessionstore"
)

const identityKey = "identity"

// SessionConfig defines the cookies used to carry sessions and flashes
type SessionConfig struct {
	CookieName      string
	FlashCookieName string
	Secure          bool
}

// SessionMiddleware decodes sessions at the request boundary and guards routes
type SessionMiddleware struct {
	codec    *pkgauth.CookieCodec
	registry sessionstore.Registry
	config   SessionConfig
}

// NewSessionMiddleware creates a new SessionMiddleware
func NewSessionMiddleware(codec *pkgauth.CookieCodec, registry sessionstore.Registry, config SessionConfig) *SessionMiddleware {
	if config.CookieName == "" {
		config.CookieName = "catequesis_session"
	}
	if config.FlashCookieName == "" {
		config.FlashCookieName = config.CookieName + "_flash"
	}
	return &SessionMiddleware{
		codec:    codec,
		registry: registry,
		config:   config,
	}
}

// LoadSession decodes the session and flash cookies. Invalid, expired or revoked
// sessions leave the request unauthenticated and clear the cookie.
func (m *SessionMiddleware) LoadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(flashStateKey, &flashState{m: m, incoming: m.readFlashes(c)})

		token, err := c.Cookie(m.config.CookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		identity, err := m.codec.DecodeSession(token)
		if err != nil {
			logger.Debug().Err(err).Msg("Discarding unusable session cookie")
			m.clearCookie(c, m.config.CookieName)
			c.Next()
			return
		}

		active, err := m.registry.IsActive(c.Request.Context(), identity.UserID.String(), identity.SessionID)
		if err != nil {
			logger.Error().Err(err).Str("userID", identity.UserID.String()).Msg("Session registry lookup failed")
			c.Next()
			return
		}
		if !active {
			logger.Debug().Str("userID", identity.UserID.String()).Msg("Session was replaced or revoked")
			m.clearCookie(c, m.config.CookieName)
			c.Next()
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// Guard admits the request only when the current identity satisfies req
func (m *SessionMiddleware) Guard(req auth.Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := CurrentIdentity(c)
		decision := auth.Authorize(identity, req)
		if decision.Allowed {
			c.Next()
			return
		}

		switch decision.Reason {
		case auth.ReasonAuthenticationRequired:
			AddFlash(c, dto.FlashWarning, dto.MsgLoginRequired)
		default:
			AddFlash(c, dto.FlashError, dto.MsgPermissionDenied)
			logger.Info().
				Str("userID", identity.UserID.String()).
				Str("role", identity.Role.String()).
				Str("required", req.String()).
				Str("path", c.Request.URL.Path).
				Msg("Permission denied")
		}

		Redirect(c, http.StatusFound, decision.Redirect)
		c.Abort()
	}
}

// Start opens a session for user, replacing any session the user already had
func (m *SessionMiddleware) Start(c *gin.Context, user *models.User) error {
	identity := &models.Identity{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		FullName:  user.DisplayName(),
		SessionID: pkgauth.NewSessionID(),
	}

	ttl := m.codec.SessionTTL()
	if err := m.registry.Activate(c.Request.Context(), identity.UserID.String(), identity.SessionID, ttl); err != nil {
		return err
	}

	token, err := m.codec.EncodeSession(*identity)
	if err != nil {
		return err
	}

	m.setCookie(c, m.config.CookieName, token, ttl)
	c.Set(identityKey, identity)
	return nil
}

// End revokes the current session and clears its cookie
func (m *SessionMiddleware) End(c *gin.Context) {
	if identity := CurrentIdentity(c); identity != nil {
		if err := m.registry.Revoke(c.Request.Context(), identity.UserID.String(), identity.SessionID); err != nil {
			logger.Warn().Err(err).Str("userID", identity.UserID.String()).Msg("Failed to revoke session")
		}
	}
	m.clearCookie(c, m.config.CookieName)
	c.Set(identityKey, (*models.Identity)(nil))
}

// CurrentIdentity returns the authenticated caller, or nil
func CurrentIdentity(c *gin.Context) *models.Identity {
	value, exists := c.Get(identityKey)
	if !exists {
		return nil
	}
	identity, _ := value.(*models.Identity)
	return identity
}

func (m *SessionMiddleware) setCookie(c *gin.Context, name, value string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, int(ttl.Seconds()), "/", "", m.config.Secure, true)
}

func (m *SessionMiddleware) clearCookie(c *gin.Context, name string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, "", -1, "/", "", m.config.Secure, true)
}
