package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_BackfillsLegacyBlob(t *testing.T) {
	raw := `{"users":[{"id":"u1","username":"bob"}],"posts":[{"id":"p1","author_id":"u1","text":"hi"}],"session":null,"seeded":true}`

	var agg Aggregate
	require.NoError(t, json.Unmarshal([]byte(raw), &agg))
	agg.Normalize()

	assert.Equal(t, CurrentSchemaVersion, agg.SchemaVersion)
	require.NotNil(t, agg.Metrics)
	assert.Equal(t, 0, agg.Metrics.Logins)
	assert.NotNil(t, agg.Messages)
	assert.NotNil(t, agg.Notifications)
	assert.Equal(t, RoleUser, agg.Users[0].Role)
	assert.NotNil(t, agg.Users[0].Followers)
	assert.NotNil(t, agg.Posts[0].Likes)
	assert.NotNil(t, agg.Posts[0].Flags)
	assert.True(t, agg.Seeded)
}

func TestUserByUsername_PrefersExactMatch(t *testing.T) {
	agg := NewAggregate()
	agg.Users = append(agg.Users,
		User{ID: "1", Username: "Bob"},
		User{ID: "2", Username: "bob"},
	)

	assert.Equal(t, "2", agg.UserByUsername("bob").ID)
	assert.Equal(t, "1", agg.UserByUsername("Bob").ID)
	assert.Equal(t, "1", agg.UserByUsername("BOB").ID)
	assert.Nil(t, agg.UserByUsername("alice"))
}

func TestUserByIdentity_IsCaseSensitive(t *testing.T) {
	agg := NewAggregate()
	agg.Users = append(agg.Users, User{ID: "1", Username: "bob", Email: "bob@example.com"})

	assert.NotNil(t, agg.UserByIdentity("bob"))
	assert.NotNil(t, agg.UserByIdentity("bob@example.com"))
	assert.Nil(t, agg.UserByIdentity("Bob"))
}

func TestLinkUnlink_Symmetric(t *testing.T) {
	a := &User{ID: "a"}
	b := &User{ID: "b"}

	Link(a, b)
	Link(a, b)
	assert.Equal(t, []string{"b"}, a.Following)
	assert.Equal(t, []string{"a"}, b.Followers)

	Unlink(a, b)
	assert.False(t, a.IsFollowing("b"))
	assert.False(t, b.HasFollower("a"))
}

func TestToggleLike_ClearsDislike(t *testing.T) {
	p := &Post{}
	assert.True(t, p.ToggleDislike("u"))
	assert.True(t, p.ToggleLike("u"))
	assert.True(t, p.LikedBy("u"))
	assert.False(t, p.DislikedBy("u"))

	assert.False(t, p.ToggleLike("u"))
	assert.Empty(t, p.Likes)
}

func TestRemovePost(t *testing.T) {
	agg := NewAggregate()
	agg.Posts = append(agg.Posts, Post{ID: "p1"}, Post{ID: "p2"})

	assert.True(t, agg.RemovePost("p1"))
	assert.False(t, agg.RemovePost("p1"))
	require.Len(t, agg.Posts, 1)
	assert.Equal(t, "p2", agg.Posts[0].ID)
}

func TestAppError_IsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("edit: %w", &AppError{Code: CodeNotOwner, Message: "nope"})
	assert.True(t, errors.Is(err, ErrNotOwner))
	assert.False(t, errors.Is(err, ErrAdminOnly))

	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, CodeNotOwner, appErr.Code)
}
