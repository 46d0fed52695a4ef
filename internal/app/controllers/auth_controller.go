// Package controllers handles HTTP request handling
package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/catequesis/internal/app/auth"
	"github.com/yigit/catequesis/internal/app/models"
	"github.com/yigit/catequesis/internal/app/models/dto"
	"github.com/yigit/catequesis/internal/app/services"
	"github.com/yigit/catequesis/internal/middleware"
)

// Registration paths
const (
	RegisterUserPath = "/registrar_usuario"
	LogoutPath       = "/logout"
)

var roleOptions = []dto.RoleOption{
	{Value: string(models.RoleAdmin), Label: "Administrador"},
	{Value: string(models.RoleCatechist), Label: "Catequista"},
	{Value: string(models.RoleStudent), Label: "Catequizando"},
}

// AuthController handles login, logout and account registration
type AuthController struct {
	authService *services.AuthService
	sessions    *middleware.SessionMiddleware
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService, sessions *middleware.SessionMiddleware, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		sessions:    sessions,
		logger:      logger,
	}
}

// LoginPage renders the login form
func (c *AuthController) LoginPage(ctx *gin.Context) {
	if middleware.CurrentIdentity(ctx) != nil {
		middleware.Redirect(ctx, http.StatusFound, auth.HomePath)
		return
	}
	middleware.RenderOK(ctx, "login", nil)
}

// Login verifies the submitted credentials and opens a session
func (c *AuthController) Login(ctx *gin.Context) {
	if middleware.CurrentIdentity(ctx) != nil {
		middleware.Redirect(ctx, http.StatusSeeOther, auth.HomePath)
		return
	}

	var form dto.LoginForm
	if err := middleware.BindForm(ctx, &form); err != nil {
		middleware.HandleError(ctx, err, auth.LoginPath)
		return
	}

	user, err := c.authService.Login(ctx.Request.Context(), form.Username, form.Password)
	if err != nil {
		middleware.HandleError(ctx, err, auth.LoginPath)
		return
	}

	if err := c.sessions.Start(ctx, user); err != nil {
		c.logger.Error().Err(err).Str("userID", user.ID.String()).Msg("Failed to start session")
		middleware.HandleError(ctx, err, auth.LoginPath)
		return
	}

	middleware.AddFlash(ctx, dto.FlashSuccess, fmt.Sprintf(dto.MsgWelcomeBack, user.DisplayName()))
	middleware.Redirect(ctx, http.StatusSeeOther, auth.HomePath)
}

// Logout ends the current session
func (c *AuthController) Logout(ctx *gin.Context) {
	c.sessions.End(ctx)
	middleware.AddFlash(ctx, dto.FlashInfo, dto.MsgLoggedOut)
	middleware.Redirect(ctx, http.StatusFound, auth.LoginPath)
}

// RegisterUserPage renders the registration form
func (c *AuthController) RegisterUserPage(ctx *gin.Context) {
	middleware.RenderOK(ctx, "registrar_usuario", gin.H{"roles": roleOptions})
}

// RegisterUser creates an account, linking student accounts by national id
func (c *AuthController) RegisterUser(ctx *gin.Context) {
	var form dto.RegisterUserForm
	if err := middleware.BindForm(ctx, &form); err != nil {
		middleware.HandleError(ctx, err, RegisterUserPath)
		return
	}

	result, err := c.authService.RegisterUser(ctx.Request.Context(), form)
	if err != nil {
		middleware.HandleError(ctx, err, RegisterUserPath)
		return
	}

	if result.Warning != "" {
		middleware.AddFlash(ctx, dto.FlashWarning, result.Warning)
	}
	middleware.AddFlash(ctx, dto.FlashSuccess, fmt.Sprintf(dto.MsgUserRegistered, form.Username))
	middleware.Redirect(ctx, http.StatusSeeOther, auth.HomePath)
}
