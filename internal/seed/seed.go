// Package seed populates a store with demo data through the domain
// services. It is meant for development and tests only.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"psocial/internal/models"
	"psocial/internal/observability"
	"psocial/internal/service"

	"github.com/brianvoe/gofakeit/v6"
)

// DemoPassword is the password of every generated demo user.
const DemoPassword = "password123"

// Options configures SeedDemo.
type Options struct {
	NumUsers int
	NumPosts int
	// FakerSeed makes the generated data reproducible. Zero picks a random
	// seed.
	FakerSeed int64
}

// Result summarizes what a seeding run created.
type Result struct {
	Users    []string
	Posts    int
	Follows  int
	Likes    int
	Comments int
	Messages int
}

// Seeder drives the services as a sequence of logged-in users.
type Seeder struct {
	svc *service.Services
}

func NewSeeder(svc *service.Services) *Seeder {
	return &Seeder{svc: svc}
}

// as logs in as username, runs fn and logs out again.
func (s *Seeder) as(ctx context.Context, username, password string, fn func() error) error {
	if err := s.svc.Auth.Login(ctx, username, password); err != nil {
		return fmt.Errorf("login %s: %w", username, err)
	}
	defer func() { _ = s.svc.Auth.Logout(ctx) }()
	return fn()
}

// SeedDemo registers NumUsers fake users and has them post, follow, like,
// comment and message each other. The session is logged out afterwards.
func (s *Seeder) SeedDemo(ctx context.Context, opts Options) (*Result, error) {
	faker := gofakeit.New(opts.FakerSeed)
	res := &Result{}

	observability.Logger.Info("Starting demo seeding",
		slog.Int("users", opts.NumUsers),
		slog.Int("posts", opts.NumPosts),
	)

	ids := make([]string, 0, opts.NumUsers)
	for len(res.Users) < opts.NumUsers {
		username := fmt.Sprintf("%s%d", faker.Username(), faker.Number(100, 999))
		err := s.svc.Auth.Register(ctx, service.RegisterInput{
			Username:         username,
			Email:            fmt.Sprintf("%s@%s", username, faker.DomainName()),
			Password:         DemoPassword,
			SecurityQuestion: "Favorite color?",
			SecurityAnswer:   faker.Color(),
		})
		if errors.Is(err, models.ErrUserExists) {
			continue
		}
		if err != nil {
			return res, fmt.Errorf("register %s: %w", username, err)
		}
		u, err := s.svc.Auth.FindByIdentity(ctx, username)
		if err != nil {
			return res, err
		}
		res.Users = append(res.Users, username)
		ids = append(ids, u.ID)

		err = s.as(ctx, username, DemoPassword, func() error {
			return s.svc.Auth.SaveProfile(ctx, service.ProfileInput{
				DisplayName: faker.Name(),
				Bio:         faker.Sentence(8),
			})
		})
		if err != nil {
			return res, err
		}
	}
	if len(ids) == 0 {
		return res, nil
	}

	var postIDs []string
	for i := 0; i < opts.NumPosts; i++ {
		author := res.Users[faker.Number(0, len(res.Users)-1)]
		err := s.as(ctx, author, DemoPassword, func() error {
			p, err := s.svc.Posts.Create(ctx, faker.Sentence(faker.Number(5, 20)))
			if err != nil {
				return err
			}
			postIDs = append(postIDs, p.ID)
			return nil
		})
		if err != nil {
			return res, err
		}
		res.Posts++
	}

	for i, username := range res.Users {
		err := s.as(ctx, username, DemoPassword, func() error {
			for j, id := range ids {
				if j == i || !faker.Bool() {
					continue
				}
				if err := s.svc.Users.Follow(ctx, id); err != nil {
					return err
				}
				res.Follows++
			}
			for _, postID := range postIDs {
				switch faker.Number(0, 5) {
				case 0:
					if err := s.svc.Posts.Like(ctx, postID); err != nil {
						return err
					}
					res.Likes++
				case 1:
					if err := s.svc.Posts.Comment(ctx, postID, faker.Sentence(6)); err != nil {
						return err
					}
					res.Comments++
				}
			}
			if len(ids) > 1 {
				to := ids[(i+1)%len(ids)]
				if err := s.svc.Messages.Send(ctx, to, faker.Sentence(10)); err != nil {
					return err
				}
				res.Messages++
			}
			return nil
		})
		if err != nil {
			return res, err
		}
	}

	observability.Logger.Info("Demo seeding completed",
		slog.Int("users", len(res.Users)),
		slog.Int("posts", res.Posts),
		slog.Int("follows", res.Follows),
	)
	return res, nil
}
