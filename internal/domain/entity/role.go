package entity

// Role gates which routes and mutations a user may invoke.
// It is always re-read from storage for privileged requests.
type Role string

const (
	RoleUser       Role = "user"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

// CanTeach reports whether the role may create and manage classes.
func (r Role) CanTeach() bool {
	return r == RoleInstructor || r == RoleAdmin
}

// Viewer is the identity a request acts as. An empty Email means anonymous.
type Viewer struct {
	Email string
	Role  Role
}

func (v Viewer) Anonymous() bool { return v.Email == "" }

func (v Viewer) IsAdmin() bool { return v.Role == RoleAdmin }

// Owns reports whether the viewer is the given email or an admin.
func (v Viewer) Owns(email string) bool {
	return !v.Anonymous() && (v.Email == email || v.IsAdmin())
}
