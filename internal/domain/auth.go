package domain

// Actor identifies the authenticated caller of an operation. It is built at
// the transport boundary and passed explicitly into every service call.
type Actor struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
