package job

import (
	"Aviary/internal/repository"
	"context"
	"errors"
	log "log/slog"

	"go.mongodb.org/mongo-driver/mongo"
)

// SnapshotReconcileJob 按作者现状重写全部内容快照。
// 传播失败只会记录日志，本任务是快照一致性的兜底修复路径。
type SnapshotReconcileJob struct {
	userRepo    repository.UserRepo
	contentRepo repository.ContentRepo
}

func NewSnapshotReconcileJob(
	userRepo repository.UserRepo,
	contentRepo repository.ContentRepo,
) *SnapshotReconcileJob {
	return &SnapshotReconcileJob{
		userRepo:    userRepo,
		contentRepo: contentRepo,
	}
}

func (s *SnapshotReconcileJob) Run() {
	ctx := context.Background()
	log.Info("start snapshot reconcile job")

	authorIDs, err := s.contentRepo.DistinctAuthorIDs(ctx)
	if err != nil {
		log.Error("failed to collect content author ids", "err", err)
		return
	}

	count := 0
	for _, id := range authorIDs {
		user, err := s.userRepo.FindByID(ctx, id)
		if err != nil {
			// 已消失的作者交给游客清理任务处理
			if !errors.Is(err, mongo.ErrNoDocuments) {
				log.Error("failed to load author for reconcile", "user_id", id.Hex(), "err", err)
			}
			continue
		}

		snap := user.Snapshot()
		for _, loc := range repository.AuthorLocations {
			if err = s.contentRepo.UpdateAuthorSnapshot(ctx, loc, id, snap); err != nil {
				log.Error("failed to reconcile author snapshot",
					"user_id", id.Hex(), "location", string(loc), "err", err)
			}
		}
		count++
	}

	log.Info("snapshot reconcile job finished", "reconciled_authors", count)
}
