package models

import (
	"slices"
	"strings"
)

// CurrentSchemaVersion is written into every saved aggregate. Blobs without a
// version predate versioning and are back-filled by Normalize.
const CurrentSchemaVersion = 1

// Session is the currently authenticated identity.
type Session struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// Metrics holds persisted counters.
type Metrics struct {
	Logins int `json:"logins"`
}

// Aggregate is the whole persisted state, read and written as one blob.
type Aggregate struct {
	SchemaVersion int            `json:"schema_version"`
	Users         []User         `json:"users"`
	Posts         []Post         `json:"posts"`
	Messages      []Message      `json:"messages"`
	Notifications []Notification `json:"notifications"`
	Session       *Session       `json:"session"`
	Metrics       *Metrics       `json:"metrics"`
	Seeded        bool           `json:"seeded"`
}

// NewAggregate returns an empty, unseeded aggregate.
func NewAggregate() *Aggregate {
	a := &Aggregate{}
	a.Normalize()
	return a
}

// Normalize fills every optional field with its default so that callers never
// need to nil-check collections. It is applied once when a blob is loaded.
func (a *Aggregate) Normalize() {
	if a.Metrics == nil {
		a.Metrics = &Metrics{}
	}
	if a.Users == nil {
		a.Users = []User{}
	}
	if a.Posts == nil {
		a.Posts = []Post{}
	}
	if a.Messages == nil {
		a.Messages = []Message{}
	}
	if a.Notifications == nil {
		a.Notifications = []Notification{}
	}
	for i := range a.Users {
		u := &a.Users[i]
		if u.Role == "" {
			u.Role = RoleUser
		}
		if u.Followers == nil {
			u.Followers = []string{}
		}
		if u.Following == nil {
			u.Following = []string{}
		}
	}
	for i := range a.Posts {
		p := &a.Posts[i]
		if p.Likes == nil {
			p.Likes = []string{}
		}
		if p.Dislikes == nil {
			p.Dislikes = []string{}
		}
		if p.Comments == nil {
			p.Comments = []Comment{}
		}
		if p.Flags == nil {
			p.Flags = []Flag{}
		}
	}
	for i := range a.Notifications {
		if a.Notifications[i].Type == "" {
			a.Notifications[i].Type = NotificationInfo
		}
	}
	a.SchemaVersion = CurrentSchemaVersion
}

// UserByID returns a pointer into the aggregate, or nil.
func (a *Aggregate) UserByID(id string) *User {
	if id == "" {
		return nil
	}
	for i := range a.Users {
		if a.Users[i].ID == id {
			return &a.Users[i]
		}
	}
	return nil
}

// UserByIdentity returns the first user whose username or email equals
// identity exactly.
func (a *Aggregate) UserByIdentity(identity string) *User {
	for i := range a.Users {
		if a.Users[i].MatchesIdentity(identity) {
			return &a.Users[i]
		}
	}
	return nil
}

// UserByUsername prefers an exact username match and otherwise falls back to
// the first case-insensitive match.
func (a *Aggregate) UserByUsername(username string) *User {
	var folded *User
	for i := range a.Users {
		u := &a.Users[i]
		if u.Username == username {
			return u
		}
		if folded == nil && strings.EqualFold(u.Username, username) {
			folded = u
		}
	}
	return folded
}

// SessionUser resolves the session to its user. It returns nil when logged
// out or when the session references a user that no longer exists.
func (a *Aggregate) SessionUser() *User {
	if a.Session == nil {
		return nil
	}
	return a.UserByID(a.Session.UserID)
}

// PostByID returns a pointer into the aggregate, or nil.
func (a *Aggregate) PostByID(id string) *Post {
	for i := range a.Posts {
		if a.Posts[i].ID == id {
			return &a.Posts[i]
		}
	}
	return nil
}

// RemovePost deletes the post with the given id and reports whether it existed.
func (a *Aggregate) RemovePost(id string) bool {
	n := len(a.Posts)
	a.Posts = slices.DeleteFunc(a.Posts, func(p Post) bool { return p.ID == id })
	return len(a.Posts) != n
}

// Link records a follow edge from follower to followee on both sides.
// Each side is inserted only if missing.
func Link(follower, followee *User) {
	follower.Following = addID(follower.Following, followee.ID)
	followee.Followers = addID(followee.Followers, follower.ID)
}

// Unlink removes the follow edge from follower to followee on both sides.
func Unlink(follower, followee *User) {
	follower.Following = removeID(follower.Following, followee.ID)
	followee.Followers = removeID(followee.Followers, follower.ID)
}
