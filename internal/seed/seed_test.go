package seed

import (
	"context"
	"strings"
	"testing"

	"psocial/internal/models"
	"psocial/internal/service"
	"psocial/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSeeder(t *testing.T) (*Seeder, *store.Store) {
	t.Helper()
	st := store.New(store.NewMemorySlot())
	require.NoError(t, st.Seed(context.Background(), nil))
	return NewSeeder(service.NewServices(st, service.PlainHasher{})), st
}

func TestSeedDemo(t *testing.T) {
	s, st := newSeeder(t)
	ctx := context.Background()

	res, err := s.SeedDemo(ctx, Options{NumUsers: 6, NumPosts: 10, FakerSeed: 42})
	require.NoError(t, err)
	assert.Len(t, res.Users, 6)
	assert.Equal(t, 10, res.Posts)
	assert.Equal(t, 6, res.Messages)

	agg, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, agg.Users, 7, "demo users plus the seeded admin")
	assert.Len(t, agg.Posts, 10)
	assert.Len(t, agg.Messages, 6)
	assert.Nil(t, agg.Session, "seeding logs out when done")

	follows := 0
	for _, u := range agg.Users {
		follows += len(u.Following)
		assert.NotContains(t, u.Following, u.ID)
	}
	assert.Equal(t, res.Follows, follows)

	likes, comments := 0, 0
	for _, p := range agg.Posts {
		likes += len(p.Likes)
		comments += len(p.Comments)
	}
	assert.Equal(t, res.Likes, likes)
	assert.Equal(t, res.Comments, comments)
}

func TestSeedDemo_NoUsers(t *testing.T) {
	s, _ := newSeeder(t)
	res, err := s.SeedDemo(context.Background(), Options{NumPosts: 5})
	require.NoError(t, err)
	assert.Zero(t, res.Posts)
}

func TestApplyFixtures(t *testing.T) {
	s, st := newSeeder(t)
	ctx := context.Background()

	fx, err := LoadFixturesFile("testdata/fixtures.yml")
	require.NoError(t, err)
	require.NoError(t, s.ApplyFixtures(ctx, fx))

	agg, err := st.Load(ctx)
	require.NoError(t, err)
	require.Len(t, agg.Users, 4)
	assert.Nil(t, agg.Session)

	alice := agg.UserByUsername("alice")
	bob := agg.UserByUsername("bob")
	carol := agg.UserByUsername("carol")
	assert.Equal(t, "Alice Liddell", alice.Profile.DisplayName)
	assert.ElementsMatch(t, []string{bob.ID}, alice.Following)
	assert.ElementsMatch(t, []string{alice.ID, carol.ID}, bob.Following)
	assert.ElementsMatch(t, []string{bob.ID}, carol.Followers)

	require.Len(t, agg.Posts, 2)
	first, second := agg.Posts[0], agg.Posts[1]
	assert.Equal(t, "Down the rabbit hole.", first.Text)
	assert.ElementsMatch(t, []string{bob.ID, carol.ID}, first.Likes)
	require.Len(t, first.Comments, 1)
	assert.Equal(t, "bob", first.Comments[0].AuthorUsername)

	assert.Equal(t, []string{alice.ID}, second.Dislikes)
	require.Len(t, second.Flags, 2)
	assert.Equal(t, "Spam", second.Flags[0].Reason)
	assert.Equal(t, models.DefaultFlagReason, second.Flags[1].Reason)

	require.Len(t, agg.Messages, 2)
	assert.Equal(t, bob.ID, agg.Messages[0].SenderID)

	// Re-applying reuses the existing accounts.
	require.NoError(t, s.ApplyFixtures(ctx, fx))
	agg, err = st.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, agg.Users, 4)
	assert.Len(t, agg.Posts, 4)
}

func TestLoadFixtures_Errors(t *testing.T) {
	_, err := LoadFixtures(strings.NewReader("users:\n  - username: a\n    nickname: x\n"))
	assert.Error(t, err, "unknown keys are rejected")

	fx, err := LoadFixtures(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, fx.Users)

	_, err = LoadFixturesFile("testdata/missing.yml")
	assert.Error(t, err)
}

func TestApplyFixtures_UnknownUser(t *testing.T) {
	s, _ := newSeeder(t)
	fx := &Fixtures{
		Users: []FixtureUser{{Username: "a", Email: "a@x", Password: "p"}},
		Posts: []FixturePost{{Author: "ghost", Text: "boo"}},
	}
	err := s.ApplyFixtures(context.Background(), fx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}
