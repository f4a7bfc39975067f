package service

import (
	"Aviary/internal/model"
	"Aviary/internal/pkg/consts"
	"Aviary/internal/pkg/redis"
	"Aviary/internal/repository"
	"context"
	log "log/slog"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PropagationService 反规范化快照的一致性维护。
// 三类事件：正文编辑、内容删除、作者资料变更。
// 扇出路径全部来自 repository 的快照位置注册表，新增快照位置只改注册表。
// 扇出写入失败只记录日志不回滚，由 SnapshotReconcileJob 兜底修复
type PropagationService interface {
	TextEdited(ctx context.Context, originID primitive.ObjectID, text string)
	ContentDeleted(ctx context.Context, c *model.Content)
	ProfileUpdated(ctx context.Context, userID primitive.ObjectID, snap model.AuthorSnapshot)
}

type propagationServiceImpl struct {
	contentRepo repository.ContentRepo
	likeRepo    repository.LikeRepo
}

func NewPropagationService(contentRepo repository.ContentRepo, likeRepo repository.LikeRepo) PropagationService {
	return &propagationServiceImpl{
		contentRepo: contentRepo,
		likeRepo:    likeRepo,
	}
}

// TextEdited 正文更新：原内容及转发副本，再到每个嵌入快照位置
func (s *propagationServiceImpl) TextEdited(ctx context.Context, originID primitive.ObjectID, text string) {
	if err := s.contentRepo.UpdateBodyText(ctx, originID, text); err != nil {
		log.ErrorContext(ctx, "text fan-out failed on body", "origin", originID.Hex(), "err", err)
	}
	for _, loc := range repository.EmbedLocations {
		if err := s.contentRepo.UpdateSnapshotText(ctx, loc, originID, text); err != nil {
			log.ErrorContext(ctx, "text fan-out failed on snapshot", "location", string(loc), "origin", originID.Hex(), "err", err)
		}
	}
}

// ContentDeleted 删除扇出。
// 转发副本：仅删除副本自身并孤立指向它的引用。
// 原始内容：点赞、转发副本级联删除，指向原内容或其副本的引用整体置空
func (s *propagationServiceImpl) ContentDeleted(ctx context.Context, c *model.Content) {
	if c.IsRepost() {
		if err := s.contentRepo.DeleteByID(ctx, c.ID); err != nil {
			log.ErrorContext(ctx, "delete repost failed", "id", c.ID.Hex(), "err", err)
			return
		}
		for _, loc := range repository.EmbedLocations {
			if err := s.contentRepo.ClearReferenceByID(ctx, loc, c.ID); err != nil {
				log.ErrorContext(ctx, "orphan reference failed", "location", string(loc), "id", c.ID.Hex(), "err", err)
			}
		}
		s.invalidateCounts(ctx, c)
		return
	}

	if err := s.likeRepo.DeleteByPost(ctx, c.ID); err != nil {
		log.ErrorContext(ctx, "cascade delete likes failed", "id", c.ID.Hex(), "err", err)
	}

	deleted, err := s.contentRepo.DeleteByOrigin(ctx, c.ID)
	if err != nil {
		log.ErrorContext(ctx, "cascade delete reposts failed", "id", c.ID.Hex(), "err", err)
	} else if deleted > 1 {
		log.InfoContext(ctx, "reposts cascade deleted", "origin", c.ID.Hex(), "count", deleted-1)
	}

	for _, loc := range repository.EmbedLocations {
		if err = s.contentRepo.ClearReferenceByOrigin(ctx, loc, c.ID); err != nil {
			log.ErrorContext(ctx, "orphan reference failed", "location", string(loc), "origin", c.ID.Hex(), "err", err)
		}
	}
	s.invalidateCounts(ctx, c)
}

// ProfileUpdated 作者快照更新，覆盖注册表内的全部位置，
// 含评论 parent_post/root_post 内层快照
func (s *propagationServiceImpl) ProfileUpdated(ctx context.Context, userID primitive.ObjectID, snap model.AuthorSnapshot) {
	for _, loc := range repository.AuthorLocations {
		if err := s.contentRepo.UpdateAuthorSnapshot(ctx, loc, userID, snap); err != nil {
			log.ErrorContext(ctx, "author fan-out failed", "location", string(loc), "user", userID.Hex(), "err", err)
		}
	}
}

func (s *propagationServiceImpl) invalidateCounts(ctx context.Context, c *model.Content) {
	origin := c.Origin().Hex()
	keys := []string{
		consts.ContentLikeCountKey + origin,
		consts.ContentRepostCountKey + origin,
		consts.ContentCommentCountKey + c.ID.Hex(),
	}
	// 评论删除后父级的评论数随之变化
	if c.ParentPost != nil {
		keys = append(keys, consts.ContentCommentCountKey+c.ParentPost.ID.Hex())
	}
	if err := redis.DeleteKeys(ctx, keys...); err != nil {
		log.WarnContext(ctx, "count cache invalidation failed", "err", err)
	}
}
