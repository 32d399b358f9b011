package models

import (
	"slices"
	"time"
)

// Role names. Every registered user holds RoleUser.
const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

// User is a registered account. PasswordHash never leaves the service layer.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	DisplayName  string
	Country      string
	ImageURL     string
	Bio          string
	Roles        []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}

// Clone returns a copy that shares no slices with u.
func (u *User) Clone() *User {
	c := *u
	c.Roles = slices.Clone(u.Roles)
	return &c
}
