package dto

// User-facing notices
const (
	MsgInvalidCredentials = "Usuario o contraseña incorrectos."
	MsgWelcomeBack        = "¡Bienvenido de vuelta, %s!"
	MsgLoggedOut          = "Has cerrado sesión correctamente."
	MsgLoginRequired      = "Debes iniciar sesión para acceder a esta página."
	MsgPermissionDenied   = "No tienes los permisos necesarios para realizar esta acción."
	MsgUsernameTaken      = "El nombre de usuario '%s' ya existe."
	MsgLinkTargetAbsent   = "Cédula '%s' no encontrada. El usuario se creó sin vincular."
	MsgUserRegistered     = "Usuario '%s' registrado con éxito."
	MsgNationalIDTaken    = "La cédula '%s' ya está registrada."
	MsgStudentAdded       = "Catequizando agregado con éxito."
	MsgStudentUpdated     = "Datos del catequizando actualizados."
	MsgStudentDeleted     = "Catequizando y usuarios asociados eliminados."
	MsgStudentNotFound    = "Catequizando no encontrado."
	MsgGroupCreated       = "Grupo creado con éxito."
	MsgGroupNotFound      = "Grupo no encontrado."
	MsgCatechistNotFound  = "Catequista no encontrado."
	MsgInvalidID          = "Identificador inválido."
	MsgInvalidDate        = "La fecha debe tener el formato AAAA-MM-DD."
	MsgInvalidRole        = "Rol no válido."
	MsgPasswordTooLong    = "La contraseña no puede superar los 72 bytes."
	MsgNameRequired       = "El nombre no puede estar vacío."
	MsgStorageUnavailable = "No se pudo conectar con la base de datos. Inténtalo más tarde."
	MsgUnexpected         = "Ocurrió un error inesperado."
)
