package store

import (
	"context"

	"psocial/internal/idgen"
	"psocial/internal/models"
)

// Bootstrap administrator. These credentials are well known and insecure on
// purpose: the first run of a fresh store must be usable without setup.
const (
	AdminUsername         = "admin"
	AdminEmail            = "admin@example.com"
	AdminPassword         = "admin123"
	AdminSecurityQuestion = "code?"
	AdminSecurityAnswer   = "admin"
)

// PasswordEncoder turns a plaintext password into its stored form. A nil
// encoder stores plaintext.
type PasswordEncoder func(plain string) (string, error)

// Seed inserts the bootstrap administrator once per store. It is a no-op when
// the aggregate is already marked seeded.
func (s *Store) Seed(ctx context.Context, encode PasswordEncoder) error {
	if encode == nil {
		encode = func(p string) (string, error) { return p, nil }
	}
	return s.Update(ctx, func(agg *models.Aggregate) error {
		if agg.Seeded {
			return ErrNoChange
		}
		password, err := encode(AdminPassword)
		if err != nil {
			return err
		}
		agg.Users = append(agg.Users, models.User{
			ID:               idgen.New(),
			Username:         AdminUsername,
			Email:            AdminEmail,
			Password:         password,
			SecurityQuestion: AdminSecurityQuestion,
			SecurityAnswer:   AdminSecurityAnswer,
			Role:             models.RoleAdmin,
			Profile: models.Profile{
				DisplayName: "Administrator",
				Bio:         "Site admin",
			},
			Followers: []string{},
			Following: []string{},
		})
		agg.Seeded = true
		return nil
	})
}
