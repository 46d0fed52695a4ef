package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yigit/catequesis/internal/app/models/dto"
	"github.com/yigit/catequesis/internal/pkg/logger"
)

const (
	flashStateKey  = "flashState"
	flashCookieTTL = 5 * time.Minute
)

// flashState holds the notices received with the request and those queued by it
type flashState struct {
	m        *SessionMiddleware
	incoming []dto.FlashMessage
	pending  []dto.FlashMessage
}

func getFlashState(c *gin.Context) *flashState {
	if value, exists := c.Get(flashStateKey); exists {
		if state, ok := value.(*flashState); ok {
			return state
		}
	}
	state := &flashState{}
	c.Set(flashStateKey, state)
	return state
}

func (m *SessionMiddleware) readFlashes(c *gin.Context) []dto.FlashMessage {
	token, err := c.Cookie(m.config.FlashCookieName)
	if err != nil || token == "" {
		return nil
	}
	messages, err := m.codec.DecodeFlashes(token)
	if err != nil {
		logger.Debug().Err(err).Msg("Discarding unusable flash cookie")
		m.clearCookie(c, m.config.FlashCookieName)
		return nil
	}
	return messages
}

// AddFlash queues a notice for the next rendered page
func AddFlash(c *gin.Context, category dto.FlashCategory, message string) {
	state := getFlashState(c)
	state.pending = append(state.pending, dto.FlashMessage{Category: category, Message: message})
}

// Redirect carries every unread notice across the redirect
func Redirect(c *gin.Context, status int, location string) {
	state := getFlashState(c)
	carried := append(append([]dto.FlashMessage{}, state.incoming...), state.pending...)

	if state.m != nil && len(carried) > 0 {
		token, err := state.m.codec.EncodeFlashes(carried)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to encode flash messages")
		} else {
			state.m.setCookie(c, state.m.config.FlashCookieName, token, flashCookieTTL)
		}
	}
	state.incoming, state.pending = nil, nil

	c.Redirect(status, location)
}

// Render writes the page data and consumes every notice
func Render(c *gin.Context, status int, page string, data interface{}) {
	state := getFlashState(c)
	flashes := append(append([]dto.FlashMessage{}, state.incoming...), state.pending...)
	if state.m != nil && len(state.incoming) > 0 {
		state.m.clearCookie(c, state.m.config.FlashCookieName)
	}
	state.incoming, state.pending = nil, nil

	c.JSON(status, dto.PageResponse{
		Page:      page,
		Flashes:   flashes,
		Identity:  CurrentIdentity(c),
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

// RenderOK renders a page with status 200
func RenderOK(c *gin.Context, page string, data interface{}) {
	Render(c, http.StatusOK, page, data)
}
