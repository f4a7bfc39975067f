package service

import (
	"Aviary/internal/model"
	"Aviary/internal/pkg/consts"
	"Aviary/internal/pkg/redis"
	"Aviary/internal/repository"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// FeedService 读侧装配：分页列表 + 聚合计数 + 查看者点赞状态。
// 计数一律读取时统计 (Redis 缓存加速)，从不维护增量计数器
type FeedService interface {
	Home(ctx context.Context, viewerID primitive.ObjectID, skip int64) ([]*model.Content, error)
	UserPosts(ctx context.Context, viewerID primitive.ObjectID, username string, skip int64) ([]*model.Content, error)
	UserComments(ctx context.Context, viewerID primitive.ObjectID, username string, skip int64) ([]*model.Content, error)
	Replies(ctx context.Context, viewerID, parentID primitive.ObjectID, skip int64) ([]*model.Content, error)
	Get(ctx context.Context, viewerID, contentID primitive.ObjectID) (*model.Content, error)
}

type feedServiceImpl struct {
	contentRepo repository.ContentRepo
	userRepo    repository.UserRepo
	likeRepo    repository.LikeRepo
}

func NewFeedService(
	contentRepo repository.ContentRepo,
	userRepo repository.UserRepo,
	likeRepo repository.LikeRepo,
) FeedService {
	return &feedServiceImpl{
		contentRepo: contentRepo,
		userRepo:    userRepo,
		likeRepo:    likeRepo,
	}
}

// Home 首页时间线：自己与关注者的帖子及转发，按时间倒序
func (s *feedServiceImpl) Home(ctx context.Context, viewerID primitive.ObjectID, skip int64) ([]*model.Content, error) {
	viewer, err := s.userRepo.FindByID(ctx, viewerID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	authorIDs := make([]primitive.ObjectID, 0, len(viewer.Following)+1)
	authorIDs = append(authorIDs, viewer.Following...)
	authorIDs = append(authorIDs, viewer.ID)

	items, err := s.contentRepo.ListFeed(ctx, authorIDs, skip, consts.FeedBatchSize)
	if err != nil {
		return nil, err
	}
	return items, s.decorate(ctx, viewerID, items)
}

func (s *feedServiceImpl) UserPosts(ctx context.Context, viewerID primitive.ObjectID, username string, skip int64) ([]*model.Content, error) {
	if err := s.checkUserExists(ctx, username); err != nil {
		return nil, err
	}
	items, err := s.contentRepo.ListPostsByAuthor(ctx, username, skip, consts.FeedBatchSize)
	if err != nil {
		return nil, err
	}
	return items, s.decorate(ctx, viewerID, items)
}

func (s *feedServiceImpl) UserComments(ctx context.Context, viewerID primitive.ObjectID, username string, skip int64) ([]*model.Content, error) {
	if err := s.checkUserExists(ctx, username); err != nil {
		return nil, err
	}
	items, err := s.contentRepo.ListCommentsByAuthor(ctx, username, skip, consts.FeedBatchSize)
	if err != nil {
		return nil, err
	}
	return items, s.decorate(ctx, viewerID, items)
}

// Replies 直接子评论，仅一层；深层线程由调用方换父级 ID 继续翻页
func (s *feedServiceImpl) Replies(ctx context.Context, viewerID, parentID primitive.ObjectID, skip int64) ([]*model.Content, error) {
	parent, err := s.findContent(ctx, parentID)
	if err != nil {
		return nil, err
	}
	items, err := s.contentRepo.ListReplies(ctx, parent.Origin(), skip, consts.ReplyBatchSize)
	if err != nil {
		return nil, err
	}
	return items, s.decorate(ctx, viewerID, items)
}

func (s *feedServiceImpl) Get(ctx context.Context, viewerID, contentID primitive.ObjectID) (*model.Content, error) {
	c, err := s.findContent(ctx, contentID)
	if err != nil {
		return nil, err
	}
	return c, s.decorate(ctx, viewerID, []*model.Content{c})
}

func (s *feedServiceImpl) checkUserExists(ctx context.Context, username string) error {
	_, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *feedServiceImpl) findContent(ctx context.Context, id primitive.ObjectID) (*model.Content, error) {
	c, err := s.contentRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrContentNotFound
		}
		return nil, err
	}
	return c, nil
}

// decorate 填充条目及其嵌入快照的聚合计数与查看者点赞状态。
// 点赞状态按原始内容 ID 批量探测一次
func (s *feedServiceImpl) decorate(ctx context.Context, viewerID primitive.ObjectID, items []*model.Content) error {
	seen := make(map[primitive.ObjectID]bool)
	origins := make([]primitive.ObjectID, 0, len(items)*2)
	collect := func(id primitive.ObjectID) {
		if !seen[id] {
			seen[id] = true
			origins = append(origins, id)
		}
	}

	for _, item := range items {
		collect(item.Origin())
		for _, snap := range snapshots(item) {
			if snap != nil && snap.Data != nil {
				collect(snap.Data.PostID)
			}
		}
	}

	likedSet, err := s.likeRepo.FilterLiked(ctx, viewerID, origins)
	if err != nil {
		return err
	}

	for _, item := range items {
		origin := item.Origin()
		item.LikeCount, _ = s.likeCount(ctx, origin)
		item.CommentCount, _ = s.commentCount(ctx, origin)
		item.RepostCount, _ = s.repostCount(ctx, origin)
		item.Liked = likedSet[origin]

		for _, snap := range snapshots(item) {
			if snap == nil || snap.Data == nil {
				continue
			}
			so := snap.Data.PostID
			snap.LikeCount, _ = s.likeCount(ctx, so)
			snap.CommentCount, _ = s.commentCount(ctx, so)
			snap.RepostCount, _ = s.repostCount(ctx, so)
			snap.Liked = likedSet[so]
		}
	}
	return nil
}

func snapshots(c *model.Content) []*model.Snapshot {
	return []*model.Snapshot{c.QuotedPost, c.ParentPost, c.RootPost}
}

func (s *feedServiceImpl) likeCount(ctx context.Context, originID primitive.ObjectID) (int64, error) {
	return s.cachedCount(ctx, consts.ContentLikeCountKey, originID, func() (int64, error) {
		return s.likeRepo.CountByPost(ctx, originID)
	})
}

func (s *feedServiceImpl) commentCount(ctx context.Context, originID primitive.ObjectID) (int64, error) {
	return s.cachedCount(ctx, consts.ContentCommentCountKey, originID, func() (int64, error) {
		return s.contentRepo.CountComments(ctx, originID)
	})
}

func (s *feedServiceImpl) repostCount(ctx context.Context, originID primitive.ObjectID) (int64, error) {
	return s.cachedCount(ctx, consts.ContentRepostCountKey, originID, func() (int64, error) {
		return s.contentRepo.CountReposts(ctx, originID)
	})
}

func (s *feedServiceImpl) cachedCount(ctx context.Context, keyPrefix string, id primitive.ObjectID, fetchDB func() (int64, error)) (int64, error) {
	key := keyPrefix + id.Hex()
	count, err := redis.GetInt64(ctx, key)
	if err == nil {
		return count, nil
	}
	realCount, err := fetchDB()
	if err != nil {
		return 0, err
	}
	_ = redis.SetWithExpiration(ctx, key, realCount, countCacheExpiration)
	return realCount, nil
}
