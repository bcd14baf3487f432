package domain

// Role is the account kind reported by the identity service.
type Role string

const (
	RoleNone     Role = ""
	RoleOperator Role = "user"
	RoleReviewer Role = "police"
)

// ParseRole maps a persisted or remote role name to a Role.
// Anything unrecognised becomes RoleNone.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleOperator, RoleReviewer:
		return Role(s)
	default:
		return RoleNone
	}
}

// Valid reports whether r is one of the known account roles.
func (r Role) Valid() bool {
	return r == RoleOperator || r == RoleReviewer
}

// Session is the identity held for one browser session.
// Token and Role are either both set or both empty.
type Session struct {
	Token       string `json:"-"`
	Role        Role   `json:"role,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// Authenticated reports whether a token is present.
func (s Session) Authenticated() bool {
	return s.Token != ""
}
