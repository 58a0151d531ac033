package service

import (
	"context"
	"strings"

	"psocial/internal/models"
	"psocial/internal/store"
)

// Default admin notification texts.
const (
	RestrictedText  = "Your account has been restricted by an administrator."
	ReactivatedText = "Your account has been reactivated by an administrator."
	DefaultWarning  = "You received a warning from an administrator."
)

// Report is the site-wide moderation summary.
type Report struct {
	Users        int `json:"users"`
	Posts        int `json:"posts"`
	Likes        int `json:"likes"`
	Dislikes     int `json:"dislikes"`
	Comments     int `json:"comments"`
	Logins       int `json:"logins"`
	FlaggedPosts int `json:"flagged_posts"`
}

// AdminService holds the privileged operations. Each one checks the admin
// role against the aggregate it loads.
type AdminService struct {
	base
	hasher PasswordHasher
}

func NewAdminService(repo store.Repository, hasher PasswordHasher, opts ...Option) *AdminService {
	if hasher == nil {
		hasher = PlainHasher{}
	}
	return &AdminService{base: newBase("admin", repo, opts), hasher: hasher}
}

func requireAdmin(agg *models.Aggregate) error {
	if !agg.SessionUser().IsAdmin() {
		return models.ErrAdminOnly
	}
	return nil
}

// update runs fn only for admins.
func (s *AdminService) update(ctx context.Context, fn func(*models.Aggregate) error) error {
	return s.repo.Update(ctx, func(agg *models.Aggregate) error {
		if err := requireAdmin(agg); err != nil {
			return err
		}
		return fn(agg)
	})
}

func (s *AdminService) view(ctx context.Context, fn func(*models.Aggregate) error) error {
	return s.repo.View(ctx, func(agg *models.Aggregate) error {
		if err := requireAdmin(agg); err != nil {
			return err
		}
		return fn(agg)
	})
}

// SetDeactivated restricts or reactivates a user and tells them.
func (s *AdminService) SetDeactivated(ctx context.Context, userID string, deactivated bool) (err error) {
	defer s.observe(ctx, "set_deactivated", &err)

	return s.update(ctx, func(agg *models.Aggregate) error {
		u := agg.UserByID(userID)
		if u == nil {
			return s.guard(models.ErrTargetNotFound)
		}
		u.Deactivated = deactivated
		if deactivated {
			s.notify(agg, u.ID, RestrictedText, models.NotificationAccountRestricted)
		} else {
			s.notify(agg, u.ID, ReactivatedText, models.NotificationAccountReactivated)
		}
		return nil
	})
}

// ResetPassword overwrites a user's password without any check.
func (s *AdminService) ResetPassword(ctx context.Context, userID, newPassword string) (err error) {
	defer s.observe(ctx, "reset_password", &err)

	password, err := s.hasher.Hash(newPassword)
	if err != nil {
		return models.NewInternalError(err)
	}
	return s.update(ctx, func(agg *models.Aggregate) error {
		u := agg.UserByID(userID)
		if u == nil {
			return s.guard(models.ErrTargetNotFound)
		}
		u.Password = password
		return nil
	})
}

// DeletePost removes any post regardless of its author.
func (s *AdminService) DeletePost(ctx context.Context, postID string) (err error) {
	defer s.observe(ctx, "delete_post", &err)

	return s.update(ctx, func(agg *models.Aggregate) error {
		if !agg.RemovePost(postID) {
			return s.guard(models.ErrTargetNotFound)
		}
		return nil
	})
}

// Warn sends a warning notification. An empty message uses DefaultWarning.
func (s *AdminService) Warn(ctx context.Context, userID, message string) (err error) {
	defer s.observe(ctx, "warn", &err)

	if message == "" {
		message = DefaultWarning
	}
	return s.update(ctx, func(agg *models.Aggregate) error {
		if agg.UserByID(userID) == nil {
			return s.guard(models.ErrTargetNotFound)
		}
		s.notify(agg, userID, message, models.NotificationWarning)
		return nil
	})
}

// ApprovePost clears every flag on a post.
func (s *AdminService) ApprovePost(ctx context.Context, postID string) (err error) {
	defer s.observe(ctx, "approve_post", &err)

	return s.update(ctx, func(agg *models.Aggregate) error {
		p := agg.PostByID(postID)
		if p == nil {
			return s.guard(models.ErrTargetNotFound)
		}
		p.Flags = []models.Flag{}
		return nil
	})
}

// Users lists accounts for moderation. A non-blank q keeps users whose
// username, display name or email contains it, ignoring case.
func (s *AdminService) Users(ctx context.Context, q string) ([]models.User, error) {
	q = strings.TrimSpace(q)
	out := []models.User{}
	err := s.view(ctx, func(agg *models.Aggregate) error {
		for i := range agg.Users {
			if q == "" || agg.Users[i].AdminMatch(q) {
				out = append(out, agg.Users[i])
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FlaggedPosts lists posts with at least one flag, in feed order.
func (s *AdminService) FlaggedPosts(ctx context.Context) ([]models.Post, error) {
	out := []models.Post{}
	err := s.view(ctx, func(agg *models.Aggregate) error {
		for _, p := range agg.Posts {
			if p.IsFlagged() {
				out = append(out, p)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *AdminService) Report(ctx context.Context) (*Report, error) {
	var r Report
	err := s.view(ctx, func(agg *models.Aggregate) error {
		r.Users = len(agg.Users)
		r.Posts = len(agg.Posts)
		r.Logins = agg.Metrics.Logins
		for _, p := range agg.Posts {
			r.Likes += len(p.Likes)
			r.Dislikes += len(p.Dislikes)
			r.Comments += len(p.Comments)
			if p.IsFlagged() {
				r.FlaggedPosts++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}
