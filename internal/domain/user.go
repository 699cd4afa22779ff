package domain

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// SessionUser is the identity asserted by a verified session cookie.
// There is no user table: the cookie is the whole account.
type SessionUser struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role"`
}

// AdminCheck is the result of the admin authorization gate.
type AdminCheck struct {
	OK     bool   `json:"ok"`
	Email  string `json:"email,omitempty"`
	Reason string `json:"reason,omitempty"`
}
