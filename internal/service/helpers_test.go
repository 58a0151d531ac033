package service

import (
	"context"
	"testing"
	"time"

	"psocial/internal/featureflags"
	"psocial/internal/idgen"
	"psocial/internal/models"
	"psocial/internal/store"

	"github.com/stretchr/testify/require"
)

type testEnv struct {
	ctx   context.Context
	store *store.Store
	auth  *AuthService
	users *UserService
	posts *PostService
	notes *NotificationService
	msgs  *MessageService
	admin *AdminService
}

// tickingClock advances one second per call so timestamps are strictly
// increasing.
func tickingClock() func() time.Time {
	t := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newTestEnv(t *testing.T, flags string) *testEnv {
	t.Helper()
	st := store.New(store.NewMemorySlot())
	require.NoError(t, st.Seed(context.Background(), nil))

	opts := []Option{
		WithIDGenerator(idgen.Sequence("id")),
		WithClock(tickingClock()),
		WithFlags(featureflags.NewManager(flags)),
	}
	return &testEnv{
		ctx:   context.Background(),
		store: st,
		auth:  NewAuthService(st, PlainHasher{}, opts...),
		users: NewUserService(st, opts...),
		posts: NewPostService(st, opts...),
		notes: NewNotificationService(st, opts...),
		msgs:  NewMessageService(st, opts...),
		admin: NewAdminService(st, PlainHasher{}, opts...),
	}
}

func (e *testEnv) register(t *testing.T, username string) string {
	t.Helper()
	require.NoError(t, e.auth.Register(e.ctx, RegisterInput{
		Username:         username,
		Email:            username + "@example.com",
		Password:         "pw-" + username,
		SecurityQuestion: "pet?",
		SecurityAnswer:   "Rex",
	}))
	u, err := e.auth.FindByIdentity(e.ctx, username)
	require.NoError(t, err)
	require.NotNil(t, u)
	return u.ID
}

func (e *testEnv) login(t *testing.T, username string) {
	t.Helper()
	password := "pw-" + username
	if username == store.AdminUsername {
		password = store.AdminPassword
	}
	require.NoError(t, e.auth.Login(e.ctx, username, password))
}

func (e *testEnv) aggregate(t *testing.T) *models.Aggregate {
	t.Helper()
	agg, err := e.store.Load(e.ctx)
	require.NoError(t, err)
	return agg
}

func (e *testEnv) createPost(t *testing.T, author, text string) string {
	t.Helper()
	e.login(t, author)
	p, err := e.posts.Create(e.ctx, text)
	require.NoError(t, err)
	return p.ID
}

func (e *testEnv) notificationsOf(t *testing.T, userID string, typ models.NotificationType) []models.Notification {
	t.Helper()
	all, err := e.notes.ForUser(e.ctx, userID)
	require.NoError(t, err)
	var out []models.Notification
	for _, n := range all {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}
