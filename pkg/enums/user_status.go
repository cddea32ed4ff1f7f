package enums

import "fmt"

// UserStatus tracks whether an account may sign in.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

// String implements fmt.Stringer.
func (s UserStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known UserStatus.
func (s UserStatus) IsValid() bool {
	return s == UserStatusActive || s == UserStatusInactive
}

// ParseUserStatus converts raw input into a UserStatus.
func ParseUserStatus(value string) (UserStatus, error) {
	switch UserStatus(value) {
	case UserStatusActive:
		return UserStatusActive, nil
	case UserStatusInactive:
		return UserStatusInactive, nil
	}
	return "", fmt.Errorf("status must be active or inactive")
}
