package service

import (
	"context"
	"strings"

	"psocial/internal/models"
	"psocial/internal/store"
)

// PostService covers the feed and everything a user can do to a post.
type PostService struct {
	base
}

func NewPostService(repo store.Repository, opts ...Option) *PostService {
	return &PostService{base: newBase("posts", repo, opts)}
}

// Create prepends a post by the caller and returns it.
func (s *PostService) Create(ctx context.Context, text string) (post *models.Post, err error) {
	defer s.observe(ctx, "create", &err)

	err = s.repo.Update(ctx, func(agg *models.Aggregate) error {
		me := agg.SessionUser()
		if me == nil {
			return models.ErrNotLoggedIn
		}
		p := models.Post{
			ID:             s.newID(),
			AuthorID:       me.ID,
			AuthorUsername: agg.Session.Username,
			Text:           text,
			Likes:          []string{},
			Dislikes:       []string{},
			Comments:       []models.Comment{},
			Flags:          []models.Flag{},
			CreatedAt:      s.now(),
		}
		agg.Posts = append([]models.Post{p}, agg.Posts...)
		post = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// All returns every post ordered by mode.
func (s *PostService) All(ctx context.Context, mode SortMode) ([]models.Post, error) {
	return s.filter(ctx, mode, func(*models.Aggregate, *models.Post) bool { return true })
}

// Mine returns the caller's posts, or none when logged out.
func (s *PostService) Mine(ctx context.Context, mode SortMode) ([]models.Post, error) {
	return s.filter(ctx, mode, func(agg *models.Aggregate, p *models.Post) bool {
		return agg.Session != nil && p.AuthorID == agg.Session.UserID
	})
}

func (s *PostService) ByAuthor(ctx context.Context, authorID string, mode SortMode) ([]models.Post, error) {
	return s.filter(ctx, mode, func(_ *models.Aggregate, p *models.Post) bool {
		return p.AuthorID == authorID
	})
}

// Search matches q against post text, ignoring case. A blank query matches
// nothing.
func (s *PostService) Search(ctx context.Context, q string, mode SortMode) ([]models.Post, error) {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return []models.Post{}, nil
	}
	return s.filter(ctx, mode, func(_ *models.Aggregate, p *models.Post) bool {
		return strings.Contains(strings.ToLower(p.Text), q)
	})
}

func (s *PostService) ByID(ctx context.Context, id string) (*models.Post, error) {
	var found *models.Post
	err := s.repo.View(ctx, func(agg *models.Aggregate) error {
		found = agg.PostByID(id)
		return nil
	})
	return found, err
}

func (s *PostService) filter(ctx context.Context, mode SortMode, keep func(*models.Aggregate, *models.Post) bool) ([]models.Post, error) {
	out := []models.Post{}
	err := s.repo.View(ctx, func(agg *models.Aggregate) error {
		for i := range agg.Posts {
			if keep(agg, &agg.Posts[i]) {
				out = append(out, agg.Posts[i])
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return SortPosts(out, mode), nil
}

// target resolves the caller and a post for the guarded operations.
func (s *PostService) target(agg *models.Aggregate, postID string) (*models.User, *models.Post, error) {
	me, err := s.sessionUser(agg)
	if err != nil {
		return nil, nil, err
	}
	p := agg.PostByID(postID)
	if p == nil {
		return nil, nil, s.guard(models.ErrTargetNotFound)
	}
	return me, p, nil
}

// Like toggles the caller's like. Adding a like clears the caller's dislike
// and notifies the author, unless the author is the caller.
func (s *PostService) Like(ctx context.Context, postID string) (err error) {
	defer s.observe(ctx, "like", &err)

	return s.repo.Update(ctx, func(agg *models.Aggregate) error {
		me, p, err := s.target(agg, postID)
		if err != nil {
			return err
		}
		if p.ToggleLike(me.ID) && p.AuthorID != me.ID {
			s.notify(agg, p.AuthorID, agg.Session.Username+" liked your post.", models.NotificationLike)
		}
		return nil
	})
}

// Dislike toggles the caller's dislike. It never notifies.
func (s *PostService) Dislike(ctx context.Context, postID string) (err error) {
	defer s.observe(ctx, "dislike", &err)

	return s.repo.Update(ctx, func(agg *models.Aggregate) error {
		me, p, err := s.target(agg, postID)
		if err != nil {
			return err
		}
		p.ToggleDislike(me.ID)
		return nil
	})
}

// Comment appends a comment and notifies the author of someone else's post.
func (s *PostService) Comment(ctx context.Context, postID, text string) (err error) {
	defer s.observe(ctx, "comment", &err)

	return s.repo.Update(ctx, func(agg *models.Aggregate) error {
		me, p, err := s.target(agg, postID)
		if err != nil {
			return err
		}
		p.Comments = append(p.Comments, models.Comment{
			ID:             s.newID(),
			AuthorID:       me.ID,
			AuthorUsername: agg.Session.Username,
			Text:           text,
			CreatedAt:      s.now(),
		})
		if p.AuthorID != me.ID {
			s.notify(agg, p.AuthorID, agg.Session.Username+" commented on your post.", models.NotificationComment)
		}
		return nil
	})
}

// Edit replaces the text of the caller's own post. Admins get ErrNotOwner
// like anyone else.
func (s *PostService) Edit(ctx context.Context, postID, text string) (err error) {
	defer s.observe(ctx, "edit", &err)

	return s.repo.Update(ctx, func(agg *models.Aggregate) error {
		p := agg.PostByID(postID)
		if p == nil {
			return s.guard(models.ErrTargetNotFound)
		}
		if agg.Session == nil || p.AuthorID != agg.Session.UserID {
			return models.ErrNotOwner
		}
		p.Text = text
		return nil
	})
}

// Remove deletes a post when the caller is its author or an admin, and
// otherwise does nothing.
func (s *PostService) Remove(ctx context.Context, postID string) (err error) {
	defer s.observe(ctx, "remove", &err)

	return s.repo.Update(ctx, func(agg *models.Aggregate) error {
		p := agg.PostByID(postID)
		if p == nil {
			return s.guard(models.ErrTargetNotFound)
		}
		me := agg.SessionUser()
		if me == nil {
			return s.guard(models.ErrNotLoggedIn)
		}
		if p.AuthorID != me.ID && !me.IsAdmin() {
			return s.guard(models.ErrNotOwner)
		}
		agg.RemovePost(postID)
		return nil
	})
}

// Flag appends a report. Repeated flags from one user are all kept.
func (s *PostService) Flag(ctx context.Context, postID, reason string) (err error) {
	defer s.observe(ctx, "flag", &err)

	return s.repo.Update(ctx, func(agg *models.Aggregate) error {
		me, p, err := s.target(agg, postID)
		if err != nil {
			return err
		}
		if reason == "" {
			reason = models.DefaultFlagReason
		}
		p.Flags = append(p.Flags, models.Flag{
			ID:         s.newID(),
			ReporterID: me.ID,
			Reason:     reason,
		})
		if p.AuthorID != me.ID {
			s.notify(agg, p.AuthorID, "Your post was flagged by another user.", models.NotificationFlagged)
		}
		return nil
	})
}
