package enums

import (
	"fmt"
	"strings"
)

// UserRole is the account-level permission role.
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

var validUserRoles = []UserRole{
	UserRoleUser,
	UserRoleAdmin,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw input into a UserRole. Matching ignores case.
func ParseUserRole(value string) (UserRole, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validUserRoles {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}

// UserStatus captures the account lifecycle state.
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"
)

var validUserStatuses = []UserStatus{
	UserStatusActive,
	UserStatusInactive,
	UserStatusSuspended,
}

// String implements fmt.Stringer.
func (s UserStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known UserStatus.
func (s UserStatus) IsValid() bool {
	for _, candidate := range validUserStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseUserStatus converts raw input into a UserStatus. Matching ignores case.
func ParseUserStatus(value string) (UserStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validUserStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user status %q", value)
}
