package models

import "time"

type UserRole string

const (
	UserRoleWriter    UserRole = "writer"
	UserRoleEditor    UserRole = "editor"
	UserRolePublisher UserRole = "publisher"
)

// KnownRole reports whether role is one of the marketplace roles.
func KnownRole(role UserRole) bool {
	switch role {
	case UserRoleWriter, UserRoleEditor, UserRolePublisher:
		return true
	}
	return false
}

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusPending   UserStatus = "pending"
)

type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	DisplayName  string
	Role         UserRole
	Status       UserStatus
	AvatarURL    *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Session struct {
	ID               string
	UserID           string
	DeviceID         string
	DeviceName       string
	RefreshTokenHash []byte
	IPAddress        string
	UserAgent        string
	CreatedAt        time.Time
	LastSeenAt       time.Time
	ExpiresAt        time.Time
}
