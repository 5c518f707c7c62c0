package models

import (
	"strings"
	"time"
)

// Role is a user's role on the server.
type Role string

const (
	RoleUnspecified Role = "ROLE_UNSPECIFIED"
	RoleHost        Role = "HOST"
	RoleAdmin       Role = "ADMIN"
	RoleUser        Role = "USER"
)

// User is a server account.
type User struct {
	Name        string `json:"name" validate:"required,resname=users"`
	Username    string `json:"username" validate:"required"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	Nickname    string `json:"nickname,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	Description string `json:"description,omitempty"`

	Role       Role      `json:"role,omitempty"`
	CreateTime time.Time `json:"create_time"`
	UpdateTime time.Time `json:"update_time"`
}

// Validate normalizes username and email and checks every invariant.
func (u *User) Validate() error {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.TrimSpace(u.Email)
	if u.Role == "" {
		u.Role = RoleUser
	}
	return Validate(u)
}

// ID is the bare user id, the resource name without its prefix.
func (u *User) ID() string {
	return extractID(u.Name)
}

// DisplayName is the nickname, falling back to the username.
func (u *User) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Username
}

// IsAdmin reports whether the user has admin privileges. Hosts count.
func (u *User) IsAdmin() bool {
	return u.Role == RoleHost || u.Role == RoleAdmin
}

// IsHost reports whether the user is the host account.
func (u *User) IsHost() bool {
	return u.Role == RoleHost
}
