package service

import (
	"testing"

	"psocial/internal/models"
	"psocial/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_FollowUnfollowRoundTrip(t *testing.T) {
	e := newTestEnv(t, "")
	aID := e.register(t, "alice")
	bID := e.register(t, "bob")
	e.login(t, "alice")

	require.NoError(t, e.users.Follow(e.ctx, bID))
	require.NoError(t, e.users.Follow(e.ctx, bID))

	agg := e.aggregate(t)
	assert.Equal(t, []string{bID}, agg.UserByID(aID).Following)
	assert.Equal(t, []string{aID}, agg.UserByID(bID).Followers, "follower recorded exactly once")

	require.NoError(t, e.users.Unfollow(e.ctx, bID))
	agg = e.aggregate(t)
	assert.NotContains(t, agg.UserByID(aID).Following, bID)
	assert.NotContains(t, agg.UserByID(bID).Followers, aID)

	require.NoError(t, e.users.Unfollow(e.ctx, bID))
}

func TestUserService_FollowNotifies(t *testing.T) {
	e := newTestEnv(t, "")
	e.register(t, "alice")
	bID := e.register(t, "bob")

	e.login(t, "alice")
	require.NoError(t, e.auth.SaveProfile(e.ctx, ProfileInput{DisplayName: "Alice A."}))
	require.NoError(t, e.users.Follow(e.ctx, bID))
	require.NoError(t, e.users.Unfollow(e.ctx, bID))

	got := e.notificationsOf(t, bID, models.NotificationFollow)
	require.Len(t, got, 1)
	assert.Equal(t, "Alice A. started following you.", got[0].Text)
	assert.False(t, got[0].Read)
}

func TestUserService_FollowGuards(t *testing.T) {
	tests := []struct {
		name    string
		flags   string
		login   bool
		target  func(selfID, otherID string) string
		wantErr error
	}{
		{"logged out", "", false, func(_, o string) string { return o }, nil},
		{"missing target", "", true, func(_, _ string) string { return "nope" }, nil},
		{"self", "", true, func(s, _ string) string { return s }, nil},
		{"strict logged out", "strict_guards=on", false, func(_, o string) string { return o }, models.ErrNotLoggedIn},
		{"strict missing target", "strict_guards=on", true, func(_, _ string) string { return "nope" }, models.ErrTargetNotFound},
		{"strict self stays a no-op", "strict_guards=on", true, func(s, _ string) string { return s }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t, tt.flags)
			selfID := e.register(t, "alice")
			otherID := e.register(t, "bob")
			if tt.login {
				e.login(t, "alice")
			}
			before := e.aggregate(t)

			err := e.users.Follow(e.ctx, tt.target(selfID, otherID))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			after := e.aggregate(t)
			assert.Equal(t, before.Users, after.Users)
			assert.Equal(t, before.Notifications, after.Notifications)
		})
	}
}

func TestUserService_Lookups(t *testing.T) {
	e := newTestEnv(t, "")
	bobID := e.register(t, "Bob")

	u, err := e.users.ByID(e.ctx, bobID)
	require.NoError(t, err)
	assert.Equal(t, "Bob", u.Username)

	u, err = e.users.ByUsername(e.ctx, "bob")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, bobID, u.ID)

	u, err = e.users.ByID(e.ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, u)

	list, err := e.users.List(e.ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestUserService_Suggestions(t *testing.T) {
	e := newTestEnv(t, "")
	ids := map[string]string{}
	for _, name := range []string{"me", "a", "b", "c", "d", "e", "f", "g", "gone"} {
		ids[name] = e.register(t, name)
	}

	// Give c two followers and b one.
	for _, follower := range []string{"a", "d"} {
		e.login(t, follower)
		require.NoError(t, e.users.Follow(e.ctx, ids["c"]))
	}
	e.login(t, "a")
	require.NoError(t, e.users.Follow(e.ctx, ids["b"]))

	e.login(t, store.AdminUsername)
	require.NoError(t, e.admin.SetDeactivated(e.ctx, ids["gone"], true))

	e.login(t, "me")
	require.NoError(t, e.users.Follow(e.ctx, ids["d"]))

	got, err := e.users.Suggestions(e.ctx, 0)
	require.NoError(t, err)
	var names []string
	for _, u := range got {
		names = append(names, u.Username)
	}
	assert.Equal(t, []string{"c", "b", "a", "e", "f"}, names)

	got, err = e.users.Suggestions(e.ctx, 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	require.NoError(t, e.auth.Logout(e.ctx))
	got, err = e.users.Suggestions(e.ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUserService_Search(t *testing.T) {
	e := newTestEnv(t, "")
	e.register(t, "alice")
	e.register(t, "bob")
	e.login(t, "bob")
	require.NoError(t, e.auth.SaveProfile(e.ctx, ProfileInput{DisplayName: "Robert Alison"}))

	got, err := e.users.Search(e.ctx, "ALI")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "alice", got[0].Username)
	assert.Equal(t, "bob", got[1].Username)

	got, err = e.users.Search(e.ctx, "  ")
	require.NoError(t, err)
	assert.Empty(t, got)
}
