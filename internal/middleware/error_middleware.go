package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/catequesis/internal/app/auth"
	"github.com/yigit/catequesis/internal/app/models/dto"
	"github.com/yigit/catequesis/internal/pkg/apperrors"
	"github.com/yigit/catequesis/internal/pkg/dberrors"
	"github.com/yigit/catequesis/internal/pkg/logger"
)

// Page rendered when a request cannot be served
const ErrorPage = "error"

// HandleError maps err onto a notice and a response. Recoverable errors redirect to
// fallback with the notice; storage outages and unexpected failures render an error page.
func HandleError(c *gin.Context, err error, fallback string) {
	switch {
	case dberrors.IsUnavailable(err):
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Storage unavailable")
		renderStorageUnavailable(c)

	case errors.Is(err, apperrors.ErrAuthenticationRequired):
		AddFlash(c, dto.FlashWarning, dto.MsgLoginRequired)
		Redirect(c, http.StatusSeeOther, auth.LoginPath)

	case errors.Is(err, apperrors.ErrPermissionDenied):
		AddFlash(c, dto.FlashError, dto.MsgPermissionDenied)
		Redirect(c, http.StatusSeeOther, auth.HomePath)

	case apperrors.IsValidation(err), apperrors.IsNotFound(err), apperrors.IsConflict(err),
		errors.Is(err, apperrors.ErrInvalidCredentials):
		AddFlash(c, dto.FlashError, userMessage(err))
		Redirect(c, http.StatusSeeOther, fallback)

	default:
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unexpected error")
		AddFlash(c, dto.FlashError, dto.MsgUnexpected)
		Render(c, http.StatusInternalServerError, ErrorPage, nil)
	}
	c.Abort()
}

// RenderError renders err on the error page without redirecting. Pages with no
// sensible fallback location use it.
func RenderError(c *gin.Context, err error) {
	switch {
	case dberrors.IsUnavailable(err),
		errors.Is(err, apperrors.ErrAuthenticationRequired),
		errors.Is(err, apperrors.ErrPermissionDenied):
		HandleError(c, err, auth.HomePath)
		return

	case apperrors.IsValidation(err):
		AddFlash(c, dto.FlashError, userMessage(err))
		Render(c, http.StatusBadRequest, ErrorPage, nil)

	case apperrors.IsNotFound(err):
		AddFlash(c, dto.FlashError, userMessage(err))
		Render(c, http.StatusNotFound, ErrorPage, nil)

	case apperrors.IsConflict(err):
		AddFlash(c, dto.FlashError, userMessage(err))
		Render(c, http.StatusConflict, ErrorPage, nil)

	default:
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unexpected error")
		AddFlash(c, dto.FlashError, dto.MsgUnexpected)
		Render(c, http.StatusInternalServerError, ErrorPage, nil)
	}
	c.Abort()
}

// userMessage returns the notice attached to err, or a generic one per error kind
func userMessage(err error) string {
	if msg, ok := apperrors.UserMessage(err); ok {
		return msg
	}
	switch {
	case errors.Is(err, apperrors.ErrInvalidID):
		return dto.MsgInvalidID
	case errors.Is(err, apperrors.ErrInvalidDate):
		return dto.MsgInvalidDate
	case errors.Is(err, apperrors.ErrInvalidRole):
		return dto.MsgInvalidRole
	case errors.Is(err, apperrors.ErrPasswordTooLong):
		return dto.MsgPasswordTooLong
	case errors.Is(err, apperrors.ErrStudentNotFound):
		return dto.MsgStudentNotFound
	case errors.Is(err, apperrors.ErrGroupNotFound):
		return dto.MsgGroupNotFound
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return dto.MsgInvalidCredentials
	default:
		return dto.MsgUnexpected
	}
}

func renderStorageUnavailable(c *gin.Context) {
	AddFlash(c, dto.FlashError, dto.MsgStorageUnavailable)
	Render(c, http.StatusServiceUnavailable, ErrorPage, nil)
}
