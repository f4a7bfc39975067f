package job

import (
	"Aviary/internal/repository"
	"context"
	log "log/slog"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GuestCleanupJob 清理已过期游客遗留的内容、点赞与关注引用。
// 游客文档本身由 MongoDB 的 TTL 索引删除，这里只负责善后。
type GuestCleanupJob struct {
	userRepo    repository.UserRepo
	contentRepo repository.ContentRepo
	likeRepo    repository.LikeRepo
}

func NewGuestCleanupJob(
	userRepo repository.UserRepo,
	contentRepo repository.ContentRepo,
	likeRepo repository.LikeRepo,
) *GuestCleanupJob {
	return &GuestCleanupJob{
		userRepo:    userRepo,
		contentRepo: contentRepo,
		likeRepo:    likeRepo,
	}
}

func (s *GuestCleanupJob) Run() {
	ctx := context.Background()
	log.Info("start guest cleanup job")

	authorIDs, err := s.contentRepo.DistinctAuthorIDs(ctx)
	if err != nil {
		log.Error("failed to collect content author ids", "err", err)
		return
	}
	likerIDs, err := s.likeRepo.DistinctUserIDs(ctx)
	if err != nil {
		log.Error("failed to collect like user ids", "err", err)
		return
	}

	seen := make(map[primitive.ObjectID]bool, len(authorIDs)+len(likerIDs))
	candidates := make([]primitive.ObjectID, 0, len(authorIDs)+len(likerIDs))
	for _, id := range append(authorIDs, likerIDs...) {
		if !seen[id] {
			seen[id] = true
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return
	}

	existing, err := s.userRepo.FilterExisting(ctx, candidates)
	if err != nil {
		log.Error("failed to check user existence", "err", err)
		return
	}

	var vanished []primitive.ObjectID
	for _, id := range candidates {
		if !existing[id] {
			vanished = append(vanished, id)
		}
	}
	if len(vanished) == 0 {
		return
	}

	deleted, err := s.contentRepo.DeleteByAuthors(ctx, vanished)
	if err != nil {
		log.Error("failed to delete contents of vanished users", "err", err)
	}
	if err = s.likeRepo.DeleteByUsers(ctx, vanished); err != nil {
		log.Error("failed to delete likes of vanished users", "err", err)
	}
	if err = s.userRepo.PullFollowRefs(ctx, vanished); err != nil {
		log.Error("failed to pull follow refs of vanished users", "err", err)
	}

	log.Info("guest cleanup job finished", "vanished_users", len(vanished), "deleted_contents", deleted)
}
