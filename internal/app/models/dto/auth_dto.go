package dto

// LoginForm represents the login form submission
type LoginForm struct {
	Username string `form:"usuario" binding:"required"`
	Password string `form:"contrasena" binding:"required"`
}

// RegisterUserForm represents the admin-only user registration form
type RegisterUserForm struct {
	Username   string `form:"usuario" binding:"required,notblank,max=100"`
	Password   string `form:"contrasena" binding:"required,min=6,max=72"`
	Role       string `form:"rol" binding:"required,role"`
	FullName   string `form:"nombre_completo" binding:"required,notblank,max=200"`
	NationalID string `form:"cedula_asociada" binding:"omitempty,max=20,cedula"`
}

// RegistrationResult describes the outcome of a registration that may have partially succeeded
type RegistrationResult struct {
	UserID  string `json:"userId"`
	Linked  bool   `json:"linked"`
	Warning string `json:"warning,omitempty"`
}

// RoleOption is a selectable role on the registration page
type RoleOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}
