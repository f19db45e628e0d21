package domain

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Identity is the resolved caller of an operation: an authenticated
// user (UserID set) or a guest (SessionID only). It is threaded
// explicitly through every service call.
type Identity struct {
	UserID    string
	SessionID string
	Roles     []Role
}

func (id Identity) IsAuthenticated() bool {
	return id.UserID != ""
}

func (id Identity) HasRole(role Role) bool {
	for _, r := range id.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (id Identity) IsAdmin() bool {
	return id.HasRole(RoleAdmin)
}

// CartOwner maps the identity to the cart it may touch: the user cart
// when authenticated, the session cart otherwise.
func (id Identity) CartOwner() CartOwner {
	if id.IsAuthenticated() {
		return CartOwner{UserID: id.UserID}
	}
	return CartOwner{SessionID: id.SessionID}
}
