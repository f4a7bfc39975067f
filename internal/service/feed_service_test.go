package service

import (
	"Aviary/internal/pkg/consts"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestHomeFeedScope(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	alice := seedUser(t, env, "alice")
	bob := seedUser(t, env, "bob")
	carol := seedUser(t, env, "carol")

	require.NoError(t, env.followSvc.Follow(ctx, alice.ID, "bob"))

	own, err := env.contentSvc.CreatePost(ctx, alice.ID, "my own", "", nil)
	require.NoError(t, err)
	followed, err := env.contentSvc.CreatePost(ctx, bob.ID, "from bob", "", nil)
	require.NoError(t, err)
	_, err = env.contentSvc.CreatePost(ctx, carol.ID, "stranger", "", nil)
	require.NoError(t, err)
	// 被关注者的评论不进入首页时间线
	_, err = env.contentSvc.CreateComment(ctx, bob.ID, own.ID, "a comment", "")
	require.NoError(t, err)

	items, err := env.feedSvc.Home(ctx, alice.ID, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)

	ids := []primitive.ObjectID{items[0].ID, items[1].ID}
	assert.Contains(t, ids, own.ID)
	assert.Contains(t, ids, followed.ID)
	// 倒序：后写的在前
	assert.Equal(t, followed.ID, items[0].ID)
}

func TestHomeFeedIncludesFollowedReposts(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	alice := seedUser(t, env, "alice")
	bob := seedUser(t, env, "bob")
	carol := seedUser(t, env, "carol")

	require.NoError(t, env.followSvc.Follow(ctx, alice.ID, "bob"))

	origin, err := env.contentSvc.CreatePost(ctx, carol.ID, "viral", "", nil)
	require.NoError(t, err)
	repost, err := env.contentSvc.CreateRepost(ctx, bob.ID, origin.ID)
	require.NoError(t, err)

	items, err := env.feedSvc.Home(ctx, alice.ID, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, repost.ID, items[0].ID)
	assert.Equal(t, "viral", items[0].Body.Text)
}

func TestRepliesPagination(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	alice := seedUser(t, env, "alice")
	bob := seedUser(t, env, "bob")

	post, err := env.contentSvc.CreatePost(ctx, alice.ID, "busy thread", "", nil)
	require.NoError(t, err)

	total := consts.ReplyBatchSize + 5
	created := make([]primitive.ObjectID, 0, total)
	for i := 0; i < int(total); i++ {
		c, err := env.contentSvc.CreateComment(ctx, bob.ID, post.ID, fmt.Sprintf("reply %d", i), "")
		require.NoError(t, err)
		created = append(created, c.ID)
	}

	first, err := env.feedSvc.Replies(ctx, alice.ID, post.ID, 0)
	require.NoError(t, err)
	require.Len(t, first, int(consts.ReplyBatchSize))

	second, err := env.feedSvc.Replies(ctx, alice.ID, post.ID, consts.ReplyBatchSize)
	require.NoError(t, err)
	require.Len(t, second, 5)

	// 两页正序衔接且不重叠
	got := make([]primitive.ObjectID, 0, total)
	for _, c := range append(first, second...) {
		got = append(got, c.ID)
	}
	assert.Equal(t, created, got)
}

func TestRepliesOnRepostResolveOrigin(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	alice := seedUser(t, env, "alice")
	bob := seedUser(t, env, "bob")

	origin, err := env.contentSvc.CreatePost(ctx, alice.ID, "origin", "", nil)
	require.NoError(t, err)
	repost, err := env.contentSvc.CreateRepost(ctx, bob.ID, origin.ID)
	require.NoError(t, err)
	comment, err := env.contentSvc.CreateComment(ctx, bob.ID, origin.ID, "on origin", "")
	require.NoError(t, err)

	// 经由转发副本拉取回复得到原帖的评论
	items, err := env.feedSvc.Replies(ctx, alice.ID, repost.ID, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, comment.ID, items[0].ID)
}

func TestDecorateCountsAndLiked(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	alice := seedUser(t, env, "alice")
	bob := seedUser(t, env, "bob")
	carol := seedUser(t, env, "carol")

	post, err := env.contentSvc.CreatePost(ctx, alice.ID, "popular", "", nil)
	require.NoError(t, err)
	_, err = env.contentSvc.CreateComment(ctx, bob.ID, post.ID, "nice", "")
	require.NoError(t, err)
	_, err = env.contentSvc.CreateRepost(ctx, carol.ID, post.ID)
	require.NoError(t, err)
	require.NoError(t, env.likeSvc.Like(ctx, bob.ID, post.ID))
	require.NoError(t, env.likeSvc.Like(ctx, carol.ID, post.ID))

	got, err := env.feedSvc.Get(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.LikeCount)
	assert.Equal(t, int64(1), got.CommentCount)
	assert.Equal(t, int64(1), got.RepostCount)
	assert.True(t, got.Liked)

	// 未点赞的查看者
	got, err = env.feedSvc.Get(ctx, alice.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, got.Liked)
}

func TestDecorateFillsEmbeddedSnapshots(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	alice := seedUser(t, env, "alice")
	bob := seedUser(t, env, "bob")

	origin, err := env.contentSvc.CreatePost(ctx, alice.ID, "quoted a lot", "", nil)
	require.NoError(t, err)
	quote, err := env.contentSvc.CreatePost(ctx, bob.ID, "check this", "", &origin.ID)
	require.NoError(t, err)
	require.NoError(t, env.likeSvc.Like(ctx, bob.ID, origin.ID))

	got, err := env.feedSvc.Get(ctx, bob.ID, quote.ID)
	require.NoError(t, err)
	require.NotNil(t, got.QuotedPost)
	assert.Equal(t, int64(1), got.QuotedPost.LikeCount)
	assert.True(t, got.QuotedPost.Liked)
	assert.Zero(t, got.LikeCount)
}

func TestUserPostsAndComments(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	alice := seedUser(t, env, "alice")
	bob := seedUser(t, env, "bob")

	post, err := env.contentSvc.CreatePost(ctx, alice.ID, "a post", "", nil)
	require.NoError(t, err)
	comment, err := env.contentSvc.CreateComment(ctx, alice.ID, post.ID, "a comment", "")
	require.NoError(t, err)
	repost, err := env.contentSvc.CreateRepost(ctx, alice.ID, post.ID)
	require.NoError(t, err)

	// 时间线含帖子与转发，不含评论
	posts, err := env.feedSvc.UserPosts(ctx, bob.ID, "alice", 0)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, repost.ID, posts[0].ID)
	assert.Equal(t, post.ID, posts[1].ID)

	comments, err := env.feedSvc.UserComments(ctx, bob.ID, "alice", 0)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, comment.ID, comments[0].ID)

	_, err = env.feedSvc.UserPosts(ctx, bob.ID, "nobody", 0)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
