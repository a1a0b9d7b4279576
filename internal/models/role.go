package models

// Roles stored on User.Role.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)
