package server

import (
	"psocial/internal/models"
)

// UserView is a User without its credentials.
type UserView struct {
	ID               string         `json:"id"`
	Username         string         `json:"username"`
	Email            string         `json:"email"`
	SecurityQuestion string         `json:"security_question,omitempty"`
	Role             models.Role    `json:"role"`
	Deactivated      bool           `json:"deactivated"`
	Profile          models.Profile `json:"profile"`
	Followers        []string       `json:"followers"`
	Following        []string       `json:"following"`
}

func viewUser(u *models.User) *UserView {
	if u == nil {
		return nil
	}
	return &UserView{
		ID:               u.ID,
		Username:         u.Username,
		Email:            u.Email,
		SecurityQuestion: u.SecurityQuestion,
		Role:             u.Role,
		Deactivated:      u.Deactivated,
		Profile:          u.Profile,
		Followers:        u.Followers,
		Following:        u.Following,
	}
}

func viewUsers(users []models.User) []UserView {
	out := make([]UserView, 0, len(users))
	for i := range users {
		out = append(out, *viewUser(&users[i]))
	}
	return out
}
