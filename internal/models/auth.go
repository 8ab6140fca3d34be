package models

// User is the authenticated account as reported by the backend's probe call.
type User struct {
	ID        int64    `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Role      UserRole `json:"role"`
}

// IsManager reports whether the account may open the manager dashboard.
func (u User) IsManager() bool {
	return u.Role == UserRoleManager || u.Role == UserRoleAdmin
}
