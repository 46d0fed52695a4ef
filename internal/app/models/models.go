package models

// Role is the access role stored on every user account.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleCatechist Role = "catequista"
	RoleStudent   Role = "catequizando"
)

// Roles lists every assignable role.
var Roles = []Role{RoleAdmin, RoleCatechist, RoleStudent}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer
func (r Role) String() string {
	return string(r)
}

// StudentStatusActive is the status given to newly enrolled students.
const StudentStatusActive = "Activo"

// DateLayout is the wire format of every date field submitted through forms.
const DateLayout = "2006-01-02"
