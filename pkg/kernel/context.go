package kernel

// RoleRef is the role snapshot embedded in access tokens and in the
// per-request auth context.
type RoleRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// StatusRef is the status snapshot joined onto user records.
type StatusRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AuthContext is the authentication context injected into each request
// after token validation.
type AuthContext struct {
	UserID string  `json:"user_id"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Source string  `json:"source"`
	Role   RoleRef `json:"role"`
}

// IsValid reports whether the context identifies an authenticated user.
func (ac *AuthContext) IsValid() bool {
	return ac != nil && ac.UserID != ""
}

// HasLevel reports whether the user's role level meets the required minimum.
func (ac *AuthContext) HasLevel(min int) bool {
	if ac == nil {
		return false
	}
	return ac.Role.Level >= min
}

// LocalsKey is the Fiber locals key under which the AuthContext is stored.
const LocalsKey = "auth"
