// Package models contains the persisted domain records and the aggregate that
// holds them.
package models

import (
	"slices"
	"strings"
)

// Role is the privilege level of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Profile is the user-editable part of a User.
type Profile struct {
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
	// Avatar is a data URI or empty.
	Avatar string `json:"avatar"`
}

// User is a registered account.
//
// Passwords and security answers are stored as given (or as produced by the
// configured hasher). The plaintext default is a known-insecure demo property.
type User struct {
	ID               string   `json:"id"`
	Username         string   `json:"username"`
	Email            string   `json:"email"`
	Password         string   `json:"password"`
	SecurityQuestion string   `json:"security_question"`
	SecurityAnswer   string   `json:"security_answer"`
	Role             Role     `json:"role"`
	Deactivated      bool     `json:"deactivated"`
	Profile          Profile  `json:"profile"`
	Followers        []string `json:"followers"`
	Following        []string `json:"following"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// MatchesIdentity reports whether identity equals the username or the email.
// The comparison is exact.
func (u *User) MatchesIdentity(identity string) bool {
	return u.Username == identity || u.Email == identity
}

// Name returns the display name, falling back to the username.
func (u *User) Name() string {
	if u.Profile.DisplayName != "" {
		return u.Profile.DisplayName
	}
	return u.Username
}

// IsFollowing reports whether u follows the user with the given id.
func (u *User) IsFollowing(id string) bool {
	return slices.Contains(u.Following, id)
}

// HasFollower reports whether the user with the given id follows u.
func (u *User) HasFollower(id string) bool {
	return slices.Contains(u.Followers, id)
}

// SearchMatch reports whether q occurs in the username or display name,
// ignoring case.
func (u *User) SearchMatch(q string) bool {
	q = strings.ToLower(q)
	return strings.Contains(strings.ToLower(u.Username), q) ||
		strings.Contains(strings.ToLower(u.Profile.DisplayName), q)
}

// AdminMatch is SearchMatch extended to the email address. It is what the
// moderation user list filters on.
func (u *User) AdminMatch(q string) bool {
	return u.SearchMatch(q) || strings.Contains(strings.ToLower(u.Email), strings.ToLower(q))
}
