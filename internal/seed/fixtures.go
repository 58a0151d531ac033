package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"psocial/internal/models"
	"psocial/internal/service"

	"gopkg.in/yaml.v3"
)

// Fixtures is a hand-written data set, usually loaded from YAML.
type Fixtures struct {
	Users    []FixtureUser    `yaml:"users"`
	Posts    []FixturePost    `yaml:"posts"`
	Messages []FixtureMessage `yaml:"messages"`
}

type FixtureUser struct {
	Username         string   `yaml:"username"`
	Email            string   `yaml:"email"`
	Password         string   `yaml:"password"`
	SecurityQuestion string   `yaml:"security_question"`
	SecurityAnswer   string   `yaml:"security_answer"`
	DisplayName      string   `yaml:"display_name"`
	Bio              string   `yaml:"bio"`
	Follows          []string `yaml:"follows"`
}

type FixturePost struct {
	Author   string           `yaml:"author"`
	Text     string           `yaml:"text"`
	Likes    []string         `yaml:"likes"`
	Dislikes []string         `yaml:"dislikes"`
	Comments []FixtureComment `yaml:"comments"`
	Flags    []FixtureFlag    `yaml:"flags"`
}

type FixtureComment struct {
	Author string `yaml:"author"`
	Text   string `yaml:"text"`
}

type FixtureFlag struct {
	Reporter string `yaml:"reporter"`
	Reason   string `yaml:"reason"`
}

type FixtureMessage struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
	Text string `yaml:"text"`
}

// LoadFixtures decodes YAML fixtures. Unknown keys are rejected.
func LoadFixtures(r io.Reader) (*Fixtures, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fx Fixtures
	if err := dec.Decode(&fx); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	return &fx, nil
}

// LoadFixturesFile reads fixtures from path.
func LoadFixturesFile(path string) (*Fixtures, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadFixtures(f)
}

// ApplyFixtures replays fixtures through the services. Users that already
// exist are reused, so applying the same file twice only repeats posts,
// flags and messages.
func (s *Seeder) ApplyFixtures(ctx context.Context, fx *Fixtures) error {
	passwords := make(map[string]string, len(fx.Users))
	ids := make(map[string]string, len(fx.Users))

	for _, u := range fx.Users {
		err := s.svc.Auth.Register(ctx, service.RegisterInput{
			Username:         u.Username,
			Email:            u.Email,
			Password:         u.Password,
			SecurityQuestion: u.SecurityQuestion,
			SecurityAnswer:   u.SecurityAnswer,
		})
		if err != nil && !errors.Is(err, models.ErrUserExists) {
			return fmt.Errorf("register %s: %w", u.Username, err)
		}
		found, err := s.svc.Auth.FindByIdentity(ctx, u.Username)
		if err != nil {
			return err
		}
		if found == nil {
			return fmt.Errorf("fixture user %s: email already taken", u.Username)
		}
		passwords[u.Username] = u.Password
		ids[u.Username] = found.ID
	}

	userID := func(name string) (string, error) {
		id, ok := ids[name]
		if !ok {
			return "", fmt.Errorf("fixture references unknown user %q", name)
		}
		return id, nil
	}
	as := func(name string, fn func() error) error {
		if _, err := userID(name); err != nil {
			return err
		}
		return s.as(ctx, name, passwords[name], fn)
	}

	for _, u := range fx.Users {
		err := as(u.Username, func() error {
			if u.DisplayName != "" || u.Bio != "" {
				profile := service.ProfileInput{DisplayName: u.DisplayName, Bio: u.Bio}
				if profile.DisplayName == "" {
					profile.DisplayName = u.Username
				}
				if err := s.svc.Auth.SaveProfile(ctx, profile); err != nil {
					return err
				}
			}
			for _, name := range u.Follows {
				id, err := userID(name)
				if err != nil {
					return err
				}
				if err := s.svc.Users.Follow(ctx, id); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	// Posts are created in reverse so the first fixture post ends up first
	// in the feed.
	for i := len(fx.Posts) - 1; i >= 0; i-- {
		fp := fx.Posts[i]
		var postID string
		err := as(fp.Author, func() error {
			p, err := s.svc.Posts.Create(ctx, fp.Text)
			if err != nil {
				return err
			}
			postID = p.ID
			return nil
		})
		if err != nil {
			return err
		}

		for _, name := range fp.Likes {
			if err := as(name, func() error { return s.svc.Posts.Like(ctx, postID) }); err != nil {
				return err
			}
		}
		for _, name := range fp.Dislikes {
			if err := as(name, func() error { return s.svc.Posts.Dislike(ctx, postID) }); err != nil {
				return err
			}
		}
		for _, c := range fp.Comments {
			if err := as(c.Author, func() error { return s.svc.Posts.Comment(ctx, postID, c.Text) }); err != nil {
				return err
			}
		}
		for _, f := range fp.Flags {
			if err := as(f.Reporter, func() error { return s.svc.Posts.Flag(ctx, postID, f.Reason) }); err != nil {
				return err
			}
		}
	}

	for _, m := range fx.Messages {
		to, err := userID(m.To)
		if err != nil {
			return err
		}
		if err := as(m.From, func() error { return s.svc.Messages.Send(ctx, to, m.Text) }); err != nil {
			return err
		}
	}
	return nil
}
