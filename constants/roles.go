package constants

// User roles carried inside JWT claims and checked by the auth middleware.
const (
	RoleAdmin    = "ADMIN"
	RoleSender   = "SENDER"
	RoleReceiver = "RECEIVER"
)

// User account statuses.
const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
	StatusBlocked  = "BLOCKED"
	StatusDeleted  = "DELETED"
)

// RoleAny allows any authenticated user regardless of role.
const RoleAny = "any"

// ValidRoles returns all assignable user roles.
func ValidRoles() []string {
	return []string{RoleAdmin, RoleSender, RoleReceiver}
}

// IsValidRole reports whether the given string is a known role.
func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleSender, RoleReceiver:
		return true
	default:
		return false
	}
}

// IsValidStatus reports whether the given string is a known account status.
func IsValidStatus(status string) bool {
	switch status {
	case StatusActive, StatusInactive, StatusBlocked, StatusDeleted:
		return true
	default:
		return false
	}
}
