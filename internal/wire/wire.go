package wire

import (
	"Aviary/internal/api"
	"Aviary/internal/api/config"
	"Aviary/internal/api/handler"
	"Aviary/internal/job"
	"Aviary/internal/pkg/cron"
	"Aviary/internal/repository"
	"Aviary/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router  *gin.Engine
	CronMgr *cron.Manager
}

func BuildApplication(db *mongo.Database, cfg *config.Config) (*ApplicationContainer, error) {
	contentRepo := repository.NewContentRepo(db)
	userRepo := repository.NewUserRepo(db)
	likeRepo := repository.NewLikeRepo(db)

	propagationService := service.NewPropagationService(contentRepo, likeRepo)
	contentService := service.NewContentService(contentRepo, userRepo, propagationService)
	feedService := service.NewFeedService(contentRepo, userRepo, likeRepo)
	likeService := service.NewLikeService(contentRepo, likeRepo)
	userService := service.NewUserService(userRepo, contentRepo, likeRepo, propagationService)
	followService := service.NewFollowService(userRepo)

	handlers := &api.HandlersGroup{
		UserHandler:    handler.NewUserHandler(userService),
		FollowHandler:  handler.NewFollowHandler(followService),
		ContentHandler: handler.NewContentHandler(contentService, feedService),
		FeedHandler:    handler.NewFeedHandler(feedService),
		LikeHandler:    handler.NewLikeHandler(likeService),
	}

	router := api.SetupRouter(handlers)

	cronMgr := cron.NewCronManager(
		job.NewGuestCleanupJob(userRepo, contentRepo, likeRepo),
		job.NewSnapshotReconcileJob(userRepo, contentRepo),
	)

	return &ApplicationContainer{
		Router:  router,
		CronMgr: cronMgr,
	}, nil
}
