package service

import (
	"testing"

	"psocial/internal/models"
	"psocial/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostService_CreateRequiresLogin(t *testing.T) {
	e := newTestEnv(t, "")

	p, err := e.posts.Create(e.ctx, "hi")
	assert.ErrorIs(t, err, models.ErrNotLoggedIn)
	assert.Nil(t, p)
	assert.Empty(t, e.aggregate(t).Posts)
}

func TestPostService_CreatePrepends(t *testing.T) {
	e := newTestEnv(t, "")
	bobID := e.register(t, "bob")

	first := e.createPost(t, "bob", "first")
	second := e.createPost(t, "bob", "second")

	posts := e.aggregate(t).Posts
	require.Len(t, posts, 2)
	assert.Equal(t, second, posts[0].ID)
	assert.Equal(t, first, posts[1].ID)
	assert.Equal(t, bobID, posts[0].AuthorID)
	assert.Equal(t, "bob", posts[0].AuthorUsername)

	// Display name changes do not rewrite the denormalized author name.
	require.NoError(t, e.auth.SaveProfile(e.ctx, ProfileInput{DisplayName: "Bobby"}))
	assert.Equal(t, "bob", e.aggregate(t).Posts[0].AuthorUsername)
}

func TestPostService_LikeAfterDislike(t *testing.T) {
	e := newTestEnv(t, "")
	authorID := e.register(t, "author")
	fanID := e.register(t, "fan")
	postID := e.createPost(t, "author", "hello")

	e.login(t, "fan")
	require.NoError(t, e.posts.Dislike(e.ctx, postID))
	require.NoError(t, e.posts.Like(e.ctx, postID))

	p := e.aggregate(t).PostByID(postID)
	assert.Equal(t, []string{fanID}, p.Likes)
	assert.Empty(t, p.Dislikes)

	likes := e.notificationsOf(t, authorID, models.NotificationLike)
	require.Len(t, likes, 1)
	assert.Equal(t, "fan liked your post.", likes[0].Text)

	// Un-liking and re-disliking never notify.
	require.NoError(t, e.posts.Like(e.ctx, postID))
	require.NoError(t, e.posts.Dislike(e.ctx, postID))
	assert.Len(t, e.notificationsOf(t, authorID, models.NotificationLike), 1)

	p = e.aggregate(t).PostByID(postID)
	assert.Empty(t, p.Likes)
	assert.Equal(t, []string{fanID}, p.Dislikes)
}

func TestPostService_SelfLikeDoesNotNotify(t *testing.T) {
	e := newTestEnv(t, "")
	authorID := e.register(t, "author")
	postID := e.createPost(t, "author", "hello")

	require.NoError(t, e.posts.Like(e.ctx, postID))
	require.NoError(t, e.posts.Comment(e.ctx, postID, "me again"))
	require.NoError(t, e.posts.Flag(e.ctx, postID, ""))

	all, err := e.notes.ForUser(e.ctx, authorID)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestPostService_Comment(t *testing.T) {
	e := newTestEnv(t, "")
	authorID := e.register(t, "author")
	e.register(t, "fan")
	postID := e.createPost(t, "author", "hello")

	e.login(t, "fan")
	require.NoError(t, e.posts.Comment(e.ctx, postID, "nice"))
	require.NoError(t, e.posts.Comment(e.ctx, postID, "really"))

	p := e.aggregate(t).PostByID(postID)
	require.Len(t, p.Comments, 2)
	assert.Equal(t, "nice", p.Comments[0].Text)
	assert.Equal(t, "fan", p.Comments[0].AuthorUsername)
	assert.True(t, p.Comments[0].CreatedAt.Before(p.Comments[1].CreatedAt))

	got := e.notificationsOf(t, authorID, models.NotificationComment)
	require.Len(t, got, 2)
	assert.Equal(t, "fan commented on your post.", got[0].Text)
}

func TestPostService_Edit(t *testing.T) {
	tests := []struct {
		name    string
		caller  string
		wantErr error
		want    string
	}{
		{"author", "author", nil, "edited"},
		{"other user", "other", models.ErrNotOwner, "original"},
		{"admin cannot edit", store.AdminUsername, models.ErrNotOwner, "original"},
		{"logged out", "", models.ErrNotOwner, "original"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t, "")
			e.register(t, "author")
			e.register(t, "other")
			postID := e.createPost(t, "author", "original")

			if tt.caller == "" {
				require.NoError(t, e.auth.Logout(e.ctx))
			} else {
				e.login(t, tt.caller)
			}

			err := e.posts.Edit(e.ctx, postID, "edited")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, e.aggregate(t).PostByID(postID).Text)
		})
	}
}

func TestPostService_EditMissingPost(t *testing.T) {
	e := newTestEnv(t, "")
	e.login(t, store.AdminUsername)
	assert.NoError(t, e.posts.Edit(e.ctx, "missing", "x"))

	strict := newTestEnv(t, "strict_guards=on")
	strict.login(t, store.AdminUsername)
	assert.ErrorIs(t, strict.posts.Edit(strict.ctx, "missing", "x"), models.ErrTargetNotFound)
}

func TestPostService_Remove(t *testing.T) {
	tests := []struct {
		name    string
		caller  string
		removed bool
	}{
		{"author", "author", true},
		{"admin", store.AdminUsername, true},
		{"other user is ignored", "other", false},
		{"logged out is ignored", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t, "")
			e.register(t, "author")
			e.register(t, "other")
			postID := e.createPost(t, "author", "bye")

			if tt.caller == "" {
				require.NoError(t, e.auth.Logout(e.ctx))
			} else {
				e.login(t, tt.caller)
			}

			require.NoError(t, e.posts.Remove(e.ctx, postID))
			assert.Equal(t, !tt.removed, e.aggregate(t).PostByID(postID) != nil)
		})
	}
}

func TestPostService_FlagIsNotIdempotent(t *testing.T) {
	e := newTestEnv(t, "")
	authorID := e.register(t, "author")
	reporterID := e.register(t, "reporter")
	postID := e.createPost(t, "author", "spam?")

	e.login(t, "reporter")
	for i := 0; i < 10; i++ {
		require.NoError(t, e.posts.Flag(e.ctx, postID, ""))
	}
	require.NoError(t, e.posts.Flag(e.ctx, postID, "Spam"))

	p := e.aggregate(t).PostByID(postID)
	require.Len(t, p.Flags, 11)
	assert.Equal(t, reporterID, p.Flags[0].ReporterID)
	assert.Equal(t, models.DefaultFlagReason, p.Flags[0].Reason)
	assert.Equal(t, "Spam", p.Flags[10].Reason)

	got := e.notificationsOf(t, authorID, models.NotificationFlagged)
	require.Len(t, got, 11)
	assert.Equal(t, "Your post was flagged by another user.", got[0].Text)
}

func TestPostService_GuardedOperations(t *testing.T) {
	ops := map[string]func(e *testEnv, postID string) error{
		"like":    func(e *testEnv, id string) error { return e.posts.Like(e.ctx, id) },
		"dislike": func(e *testEnv, id string) error { return e.posts.Dislike(e.ctx, id) },
		"comment": func(e *testEnv, id string) error { return e.posts.Comment(e.ctx, id, "x") },
		"flag":    func(e *testEnv, id string) error { return e.posts.Flag(e.ctx, id, "") },
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			e := newTestEnv(t, "")
			e.register(t, "author")
			postID := e.createPost(t, "author", "x")
			before := e.aggregate(t)

			assert.NoError(t, op(e, "missing"))
			require.NoError(t, e.auth.Logout(e.ctx))
			assert.NoError(t, op(e, postID))
			assert.Equal(t, before.Posts, e.aggregate(t).Posts)

			strict := newTestEnv(t, "strict_guards=on")
			strict.register(t, "author")
			postID = strict.createPost(t, "author", "x")
			assert.ErrorIs(t, op(strict, "missing"), models.ErrTargetNotFound)
			require.NoError(t, strict.auth.Logout(strict.ctx))
			assert.ErrorIs(t, op(strict, postID), models.ErrNotLoggedIn)
		})
	}
}

func TestPostService_Queries(t *testing.T) {
	e := newTestEnv(t, "")
	aliceID := e.register(t, "alice")
	e.register(t, "bob")

	p1 := e.createPost(t, "alice", "Hello world")
	p2 := e.createPost(t, "bob", "bob says hi")
	p3 := e.createPost(t, "alice", "another WORLD tour")

	e.login(t, "bob")
	require.NoError(t, e.posts.Like(e.ctx, p1))
	require.NoError(t, e.posts.Comment(e.ctx, p3, "c"))

	all, err := e.posts.All(e.ctx, SortNew)
	require.NoError(t, err)
	assert.Equal(t, []string{p3, p2, p1}, postIDs(all))

	all, err = e.posts.All(e.ctx, SortLikes)
	require.NoError(t, err)
	assert.Equal(t, []string{p1, p3, p2}, postIDs(all))

	mine, err := e.posts.Mine(e.ctx, SortNew)
	require.NoError(t, err)
	assert.Equal(t, []string{p2}, postIDs(mine))

	byAlice, err := e.posts.ByAuthor(e.ctx, aliceID, SortNew)
	require.NoError(t, err)
	assert.Equal(t, []string{p3, p1}, postIDs(byAlice))

	found, err := e.posts.Search(e.ctx, "world", SortNew)
	require.NoError(t, err)
	assert.Equal(t, []string{p3, p1}, postIDs(found))

	found, err = e.posts.Search(e.ctx, " ", SortNew)
	require.NoError(t, err)
	assert.Empty(t, found)

	p, err := e.posts.ByID(e.ctx, p2)
	require.NoError(t, err)
	assert.Equal(t, "bob says hi", p.Text)

	require.NoError(t, e.auth.Logout(e.ctx))
	mine, err = e.posts.Mine(e.ctx, SortNew)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func postIDs(posts []models.Post) []string {
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}
