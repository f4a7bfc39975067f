package middleware

import (
	"Aviary/internal/pkg/consts"
	"Aviary/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// RequireNormalUser 拦截游客账号。需在 AuthMiddleware 之后使用
func RequireNormalUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("user_kind") == consts.UserKindGuest {
			response.Fail(c, response.Unauthorized, "游客无权执行此操作")
			c.Abort()
			return
		}
		c.Next()
	}
}
