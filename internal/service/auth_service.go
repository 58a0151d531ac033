package service

import (
	"context"
	"strings"

	"psocial/internal/featureflags"
	"psocial/internal/models"
	"psocial/internal/store"
)

// AuthService handles registration, login and the caller's own profile.
type AuthService struct {
	base
	hasher PasswordHasher
}

// RegisterInput carries a new account.
type RegisterInput struct {
	Username         string
	Email            string
	Password         string
	SecurityQuestion string
	SecurityAnswer   string
}

// ProfileInput updates the caller's profile. A nil Avatar keeps the current
// avatar; a non-nil one (empty included) replaces it.
type ProfileInput struct {
	DisplayName string
	Bio         string
	Avatar      *string
}

func NewAuthService(repo store.Repository, hasher PasswordHasher, opts ...Option) *AuthService {
	if hasher == nil {
		hasher = PlainHasher{}
	}
	return &AuthService{base: newBase("auth", repo, opts), hasher: hasher}
}

// CurrentSession returns the active session or nil.
func (s *AuthService) CurrentSession(ctx context.Context) (*models.Session, error) {
	var session *models.Session
	err := s.repo.View(ctx, func(agg *models.Aggregate) error {
		session = agg.Session
		return nil
	})
	return session, err
}

// CurrentUser resolves the session to its user, or nil when logged out.
func (s *AuthService) CurrentUser(ctx context.Context) (*models.User, error) {
	var me *models.User
	err := s.repo.View(ctx, func(agg *models.Aggregate) error {
		me = agg.SessionUser()
		return nil
	})
	return me, err
}

// Login replaces the session. identity matches a username or an email
// exactly.
func (s *AuthService) Login(ctx context.Context, identity, password string) (err error) {
	defer s.observe(ctx, "login", &err)

	return s.repo.Update(ctx, func(agg *models.Aggregate) error {
		var user *models.User
		for i := range agg.Users {
			u := &agg.Users[i]
			if u.MatchesIdentity(identity) && s.hasher.Verify(u.Password, password) {
				user = u
				break
			}
		}
		if user == nil {
			return models.ErrInvalidCredentials
		}
		if user.Deactivated {
			return models.ErrAccountDeactivated
		}
		agg.Session = &models.Session{UserID: user.ID, Username: user.Username}
		if s.flags == nil || s.flags.On(featureflags.LoginMetrics) {
			agg.Metrics.Logins++
		}
		return nil
	})
}

// Logout clears the session unconditionally.
func (s *AuthService) Logout(ctx context.Context) (err error) {
	defer s.observe(ctx, "logout", &err)

	return s.repo.Update(ctx, func(agg *models.Aggregate) error {
		agg.Session = nil
		return nil
	})
}

// Register creates a user account. Username and email must each be unused;
// the comparison is case-sensitive.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (err error) {
	defer s.observe(ctx, "register", &err)

	if strings.TrimSpace(in.Username) == "" || strings.TrimSpace(in.Email) == "" {
		return models.NewValidationError("Username and email are required")
	}
	if in.Password == "" {
		return models.NewValidationError("Password is required")
	}
	password, err := s.hasher.Hash(in.Password)
	if err != nil {
		return models.NewInternalError(err)
	}

	return s.repo.Update(ctx, func(agg *models.Aggregate) error {
		for i := range agg.Users {
			u := &agg.Users[i]
			if u.Username == in.Username || u.Email == in.Email {
				return models.ErrUserExists
			}
		}
		agg.Users = append(agg.Users, models.User{
			ID:               s.newID(),
			Username:         in.Username,
			Email:            in.Email,
			Password:         password,
			SecurityQuestion: in.SecurityQuestion,
			SecurityAnswer:   in.SecurityAnswer,
			Role:             models.RoleUser,
			Profile:          models.Profile{DisplayName: in.Username},
			Followers:        []string{},
			Following:        []string{},
		})
		return nil
	})
}

// FindByIdentity returns the user whose username or email equals identity,
// or nil.
func (s *AuthService) FindByIdentity(ctx context.Context, identity string) (*models.User, error) {
	var found *models.User
	err := s.repo.View(ctx, func(agg *models.Aggregate) error {
		found = agg.UserByIdentity(identity)
		return nil
	})
	return found, err
}

// ResetPassword is the self-service reset. The security answer is compared
// trimmed and case-insensitively.
func (s *AuthService) ResetPassword(ctx context.Context, identity, answer, newPassword string) (err error) {
	defer s.observe(ctx, "reset_password", &err)

	password, err := s.hasher.Hash(newPassword)
	if err != nil {
		return models.NewInternalError(err)
	}
	return s.repo.Update(ctx, func(agg *models.Aggregate) error {
		u := agg.UserByIdentity(identity)
		if u == nil {
			return models.ErrAccountNotFound
		}
		if !answerMatches(u.SecurityAnswer, answer) {
			return models.ErrWrongAnswer
		}
		u.Password = password
		return nil
	})
}

func answerMatches(stored, given string) bool {
	return strings.EqualFold(strings.TrimSpace(stored), strings.TrimSpace(given))
}

// SaveProfile updates the caller's display name and bio, and the avatar when
// one is supplied. It does nothing when logged out.
func (s *AuthService) SaveProfile(ctx context.Context, in ProfileInput) (err error) {
	defer s.observe(ctx, "save_profile", &err)

	return s.repo.Update(ctx, func(agg *models.Aggregate) error {
		me, err := s.sessionUser(agg)
		if err != nil {
			return err
		}
		me.Profile.DisplayName = in.DisplayName
		me.Profile.Bio = in.Bio
		if in.Avatar != nil {
			me.Profile.Avatar = *in.Avatar
		}
		return nil
	})
}

// IsAdmin reports whether the session user holds the admin role. It is
// derived from a fresh load on every call.
func (s *AuthService) IsAdmin(ctx context.Context) (bool, error) {
	var admin bool
	err := s.repo.View(ctx, func(agg *models.Aggregate) error {
		admin = agg.SessionUser().IsAdmin()
		return nil
	})
	return admin, err
}
