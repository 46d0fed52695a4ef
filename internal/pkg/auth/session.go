package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yigit/catequesis/internal/app/models"
	"github.com/yigit/catequesis/internal/app/models/dto"
	"github.com/yigit/catequesis/internal/pkg/apperrors"
)

const (
	sessionAudience = "session"
	flashAudience   = "flash"
	flashTTL        = 5 * time.Minute
)

// CookieConfig defines the signing settings shared by the session and flash cookies
type CookieConfig struct {
	SecretKey  string
	SessionTTL time.Duration
	Issuer     string
}

// CookieCodec signs and verifies the small key-value payloads kept in browser cookies.
// Payloads are HS256 JWTs so any tampering invalidates the signature.
type CookieCodec struct {
	config CookieConfig
	now    func() time.Time
}

// NewCookieCodec creates a new cookie codec
func NewCookieCodec(config CookieConfig) *CookieCodec {
	if config.Issuer == "" {
		config.Issuer = "catequesis"
	}
	return &CookieCodec{config: config, now: time.Now}
}

// SessionClaims defines the session cookie content
type SessionClaims struct {
	UserID   string `json:"uid"`
	Username string `json:"usr"`
	Role     string `json:"rol"`
	FullName string `json:"name"`
	jwt.RegisteredClaims
}

// FlashClaims defines the flash cookie content
type FlashClaims struct {
	Messages []dto.FlashMessage `json:"msgs"`
	jwt.RegisteredClaims
}

// SessionTTL returns how long an issued session stays valid
func (c *CookieCodec) SessionTTL() time.Duration {
	return c.config.SessionTTL
}

// NewSessionID returns a fresh random session identifier
func NewSessionID() string {
	return uuid.NewString()
}

// EncodeSession signs the identity into a session token
func (c *CookieCodec) EncodeSession(identity models.Identity) (string, error) {
	if identity.SessionID == "" {
		return "", fmt.Errorf("%w: session id is required", apperrors.ErrSessionInvalid)
	}

	now := c.now()
	claims := &SessionClaims{
		UserID:   identity.UserID.String(),
		Username: identity.Username,
		Role:     string(identity.Role),
		FullName: identity.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(c.config.SessionTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    c.config.Issuer,
			Audience:  jwt.ClaimStrings{sessionAudience},
			Subject:   identity.UserID.String(),
			ID:        identity.SessionID,
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(c.config.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}
	return token, nil
}

// DecodeSession verifies a session token and returns the identity it carries
func (c *CookieCodec) DecodeSession(token string) (*models.Identity, error) {
	claims := &SessionClaims{}
	if err := c.parse(token, claims, sessionAudience); err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad user id", apperrors.ErrSessionInvalid)
	}

	role := models.Role(claims.Role)
	if !role.Valid() || claims.ID == "" {
		return nil, apperrors.ErrSessionInvalid
	}

	return &models.Identity{
		UserID:    userID,
		Username:  claims.Username,
		Role:      role,
		FullName:  claims.FullName,
		SessionID: claims.ID,
	}, nil
}

// EncodeFlashes signs queued notices into a flash token
func (c *CookieCodec) EncodeFlashes(messages []dto.FlashMessage) (string, error) {
	now := c.now()
	claims := &FlashClaims{
		Messages: messages,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(flashTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    c.config.Issuer,
			Audience:  jwt.ClaimStrings{flashAudience},
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(c.config.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign flashes: %w", err)
	}
	return token, nil
}

// DecodeFlashes verifies a flash token and returns its notices
func (c *CookieCodec) DecodeFlashes(token string) ([]dto.FlashMessage, error) {
	claims := &FlashClaims{}
	if err := c.parse(token, claims, flashAudience); err != nil {
		return nil, err
	}
	return claims.Messages, nil
}

func (c *CookieCodec) parse(token string, claims jwt.Claims, audience string) error {
	if token == "" {
		return apperrors.ErrSessionInvalid
	}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(c.config.SecretKey), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.config.Issuer),
		jwt.WithAudience(audience),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return apperrors.ErrSessionExpired
		}
		return fmt.Errorf("%w: %v", apperrors.ErrSessionInvalid, err)
	}
	if !parsed.Valid {
		return apperrors.ErrSessionInvalid
	}
	return nil
}
