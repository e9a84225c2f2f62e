package helpers

// AdminClaims is what the auth middleware stores on the request context.
type AdminClaims struct {
	*CustomClaims
	Role     string `json:"role"`
	UserID   string `json:"id"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"full_name,omitempty"`
}

func (ac *AdminClaims) IsAdmin() bool {
	return ac.Role == "admin"
}

func (ac *AdminClaims) GetSafeRole() string {
	if ac.Role == "" {
		return "guest"
	}
	return ac.Role
}

// Actor names the admin in audit records.
func (ac *AdminClaims) Actor() string {
	if ac.Email != "" {
		return ac.Email
	}
	return ac.UserID
}
