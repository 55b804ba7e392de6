package auth

// Role distinguishes the two kinds of authenticated staff principals.
type Role string

const (
	RoleWaiter Role = "waiter"
	RoleAdmin  Role = "admin"
)

// Identity describes the authenticated caller of one request. It is
// reconstructed per request from the session token and never persisted.
type Identity struct {
	Role         Role
	RestaurantID int64
	// WaiterID is set only for waiter sessions.
	WaiterID *int64
	Name     string
}

// IsAdmin reports whether the identity carries the admin role.
func (id Identity) IsAdmin() bool {
	return id.Role == RoleAdmin
}
