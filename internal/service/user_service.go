package service

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"psocial/internal/models"
	"psocial/internal/store"
)

// DefaultSuggestionLimit is the number of follow suggestions returned when
// the caller passes a non-positive limit.
const DefaultSuggestionLimit = 5

// UserService covers user lookup and the follow graph.
type UserService struct {
	base
}

func NewUserService(repo store.Repository, opts ...Option) *UserService {
	return &UserService{base: newBase("users", repo, opts)}
}

func (s *UserService) ByID(ctx context.Context, id string) (*models.User, error) {
	var found *models.User
	err := s.repo.View(ctx, func(agg *models.Aggregate) error {
		found = agg.UserByID(id)
		return nil
	})
	return found, err
}

// ByUsername prefers an exact match, then a case-insensitive one.
func (s *UserService) ByUsername(ctx context.Context, username string) (*models.User, error) {
	var found *models.User
	err := s.repo.View(ctx, func(agg *models.Aggregate) error {
		found = agg.UserByUsername(username)
		return nil
	})
	return found, err
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.repo.View(ctx, func(agg *models.Aggregate) error {
		users = agg.Users
		return nil
	})
	return users, err
}

// Follow links the caller to target on both sides and notifies target. It
// is idempotent, and does nothing when logged out, when target is missing or
// when target is the caller.
func (s *UserService) Follow(ctx context.Context, targetID string) (err error) {
	defer s.observe(ctx, "follow", &err)

	return s.repo.Update(ctx, func(agg *models.Aggregate) error {
		me, target, err := s.edgeEnds(agg, targetID)
		if err != nil {
			return err
		}
		models.Link(me, target)
		s.notify(agg, target.ID, me.Name()+" started following you.", models.NotificationFollow)
		return nil
	})
}

// Unfollow removes the edge on both sides. Same guards as Follow; no
// notification.
func (s *UserService) Unfollow(ctx context.Context, targetID string) (err error) {
	defer s.observe(ctx, "unfollow", &err)

	return s.repo.Update(ctx, func(agg *models.Aggregate) error {
		me, target, err := s.edgeEnds(agg, targetID)
		if err != nil {
			return err
		}
		models.Unlink(me, target)
		return nil
	})
}

func (s *UserService) edgeEnds(agg *models.Aggregate, targetID string) (*models.User, *models.User, error) {
	me, err := s.sessionUser(agg)
	if err != nil {
		return nil, nil, err
	}
	target := agg.UserByID(targetID)
	if target == nil {
		return nil, nil, s.guard(models.ErrTargetNotFound)
	}
	if target.ID == me.ID {
		return nil, nil, store.ErrNoChange
	}
	return me, target, nil
}

// Suggestions lists users the caller might follow: active, non-admin, not
// the caller and not already followed, most-followed first. Logged-out
// callers get none.
func (s *UserService) Suggestions(ctx context.Context, limit int) ([]models.User, error) {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	var out []models.User
	err := s.repo.View(ctx, func(agg *models.Aggregate) error {
		me := agg.SessionUser()
		if me == nil {
			return nil
		}
		for _, u := range agg.Users {
			if u.ID == me.ID || u.Deactivated || u.IsAdmin() || me.IsFollowing(u.ID) {
				continue
			}
			out = append(out, u)
		}
		slices.SortStableFunc(out, func(a, b models.User) int {
			return cmp.Compare(len(b.Followers), len(a.Followers))
		})
		if len(out) > limit {
			out = out[:limit]
		}
		return nil
	})
	return out, err
}

// Search matches q against usernames and display names, ignoring case. A
// blank query matches nobody.
func (s *UserService) Search(ctx context.Context, q string) ([]models.User, error) {
	q = strings.TrimSpace(q)
	var out []models.User
	if q == "" {
		return out, nil
	}
	err := s.repo.View(ctx, func(agg *models.Aggregate) error {
		for _, u := range agg.Users {
			if u.SearchMatch(q) {
				out = append(out, u)
			}
		}
		return nil
	})
	return out, err
}
