package dto

import (
	"time"

	"github.com/yigit/catequesis/internal/app/models"
)

// FlashCategory classifies a user-visible notice
type FlashCategory string

const (
	FlashSuccess FlashCategory = "success"
	FlashInfo    FlashCategory = "info"
	FlashWarning FlashCategory = "warning"
	FlashError   FlashCategory = "error"
)

// FlashMessage is a notice queued for the next rendered page
type FlashMessage struct {
	Category FlashCategory `json:"category"`
	Message  string        `json:"message"`
}

// PageResponse is the plain data handed to the page renderer
type PageResponse struct {
	Page      string           `json:"page"`
	Flashes   []FlashMessage   `json:"flashes"`
	Identity  *models.Identity `json:"identity,omitempty"`
	Data      interface{}      `json:"data,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}
