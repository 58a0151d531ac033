// Package service implements the domain operations over the persisted
// aggregate. Every operation is one Store.Update or Store.View call: the
// aggregate is reloaded per call, so nothing (the admin role included) is
// cached between calls.
package service

import (
	"context"
	"time"

	"psocial/internal/featureflags"
	"psocial/internal/idgen"
	"psocial/internal/models"
	"psocial/internal/observability"
	"psocial/internal/store"
)

// Option configures the shared dependencies of a service.
type Option func(*base)

// WithIDGenerator overrides idgen.New.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(b *base) {
		if gen != nil {
			b.newID = gen
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(b *base) {
		if now != nil {
			b.now = now
		}
	}
}

// WithFlags sets the feature-flag manager. Without it every flag is off.
func WithFlags(flags *featureflags.Manager) Option {
	return func(b *base) { b.flags = flags }
}

type base struct {
	name  string
	repo  store.Repository
	newID idgen.Generator
	now   func() time.Time
	flags *featureflags.Manager
}

func newBase(name string, repo store.Repository, opts []Option) base {
	b := base{
		name:  name,
		repo:  repo,
		newID: idgen.New,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// guard turns a failed precondition into a silent no-op, or into err when
// strict guards are on.
func (b *base) guard(err error) error {
	if b.flags.On(featureflags.StrictGuards) {
		return err
	}
	return store.ErrNoChange
}

// observe records the outcome of one operation. Use as
// defer b.observe(ctx, "op", &err).
func (b *base) observe(ctx context.Context, operation string, errp *error) {
	var err error
	if errp != nil {
		err = *errp
	}
	observability.RecordOperation(b.name, operation, err)
	observability.LogOperation(ctx, b.name, operation, err)
}

// notify appends a notification inside the caller's update.
func (b *base) notify(agg *models.Aggregate, recipientID, text string, typ models.NotificationType) {
	if recipientID == "" {
		return
	}
	if !typ.Valid() {
		typ = models.NotificationInfo
	}
	agg.Notifications = append(agg.Notifications, models.Notification{
		ID:          b.newID(),
		RecipientID: recipientID,
		Text:        text,
		Type:        typ,
		CreatedAt:   b.now(),
	})
}

// sessionUser resolves the caller or returns the guard outcome for
// ErrNotLoggedIn.
func (b *base) sessionUser(agg *models.Aggregate) (*models.User, error) {
	me := agg.SessionUser()
	if me == nil {
		return nil, b.guard(models.ErrNotLoggedIn)
	}
	return me, nil
}

// Services bundles every domain service over one repository.
type Services struct {
	Auth          *AuthService
	Users         *UserService
	Posts         *PostService
	Notifications *NotificationService
	Messages      *MessageService
	Admin         *AdminService
}

func NewServices(repo store.Repository, hasher PasswordHasher, opts ...Option) *Services {
	return &Services{
		Auth:          NewAuthService(repo, hasher, opts...),
		Users:         NewUserService(repo, opts...),
		Posts:         NewPostService(repo, opts...),
		Notifications: NewNotificationService(repo, opts...),
		Messages:      NewMessageService(repo, opts...),
		Admin:         NewAdminService(repo, hasher, opts...),
	}
}
