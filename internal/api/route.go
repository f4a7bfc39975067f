package api

import (
	"Aviary/internal/api/middleware"
	"Aviary/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"code":    200,
				"message": "pong",
				"data":    nil,
			})
		})

		userGroup := apiGroup.Group("/user")
		{
			// 无需登录即可访问的接口
			userGroup.POST("/register", group.UserHandler.Register)
			userGroup.POST("/guest", group.UserHandler.RegisterGuest)
			userGroup.POST("/login", group.UserHandler.Login)

			authGroup := userGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.DELETE("/logout", group.UserHandler.Logout)
				authGroup.GET("/:username", group.UserHandler.GetUser)
				authGroup.PUT("/:username", group.UserHandler.UpdateProfile)
				authGroup.PUT("/:username/security", group.UserHandler.ChangePassword)
				authGroup.GET("/:username/followers", group.UserHandler.Followers)
				authGroup.GET("/:username/following", group.UserHandler.Following)
				authGroup.GET("/:username/posts", group.FeedHandler.UserPosts)
				authGroup.GET("/:username/comments", group.FeedHandler.UserComments)
			}

			// 游客账号不允许建立关注关系
			followGroup := authGroup.Group("")
			followGroup.Use(middleware.RequireNormalUser())
			{
				followGroup.POST("/:username/follow", group.FollowHandler.Follow)
				followGroup.DELETE("/:username/follow", group.FollowHandler.Unfollow)
			}
		}

		usersGroup := apiGroup.Group("/users")
		usersGroup.Use(middleware.AuthMiddleware())
		{
			usersGroup.GET("", group.UserHandler.ListUsers)
		}

		feedGroup := apiGroup.Group("/feed")
		feedGroup.Use(middleware.AuthMiddleware())
		{
			feedGroup.GET("/home", group.FeedHandler.Home)
		}

		postGroup := apiGroup.Group("/posts")
		postGroup.Use(middleware.AuthMiddleware())
		{
			postGroup.GET("/:post_id", group.ContentHandler.Get)
			postGroup.GET("/:post_id/replies", group.ContentHandler.Replies)
			postGroup.POST("/:post_id/replies", group.ContentHandler.CreateComment)
			postGroup.PUT("/:post_id", group.ContentHandler.Edit)
			postGroup.DELETE("/:post_id", group.ContentHandler.Delete)

			normalGroup := postGroup.Group("")
			normalGroup.Use(middleware.RequireNormalUser())
			{
				normalGroup.POST("", group.ContentHandler.CreatePost)
				normalGroup.POST("/:post_id/repost", group.ContentHandler.CreateRepost)
			}
		}

		// 评论与帖子共用同一内容模型，路由分开暴露
		commentGroup := apiGroup.Group("/comments")
		commentGroup.Use(middleware.AuthMiddleware())
		{
			commentGroup.GET("/:comment_id", group.ContentHandler.Get)
			commentGroup.GET("/:comment_id/replies", group.ContentHandler.Replies)
			commentGroup.POST("/:comment_id/replies", group.ContentHandler.CreateComment)
			commentGroup.PUT("/:comment_id", group.ContentHandler.Edit)
			commentGroup.DELETE("/:comment_id", group.ContentHandler.Delete)

			normalGroup := commentGroup.Group("")
			normalGroup.Use(middleware.RequireNormalUser())
			{
				normalGroup.POST("/:comment_id/repost", group.ContentHandler.CreateRepost)
			}
		}

		contentGroup := apiGroup.Group("/content")
		contentGroup.Use(middleware.AuthMiddleware())
		{
			contentGroup.POST("/:post_id/like", group.LikeHandler.Like)
			contentGroup.DELETE("/:post_id/like", group.LikeHandler.Unlike)
		}
	}

	return r
}
