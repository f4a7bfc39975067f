package handler

import (
	"Aviary/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// currentUserID 取认证中间件注入的当前用户 ID
func currentUserID(c *gin.Context) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		return primitive.NilObjectID, service.UnauthorizedError
	}
	return id, nil
}

// getSkip 分页游标必须显式携带且为非负整数，缺失不做静默兜底
func getSkip(c *gin.Context) (int64, error) {
	skipStr := c.Query("skip")
	if skipStr == "" {
		return 0, service.ErrParamInvalid
	}
	skip, err := strconv.ParseInt(skipStr, 10, 64)
	if err != nil || skip < 0 {
		return 0, service.ErrParamInvalid
	}
	return skip, nil
}

// contentIDParam 取路径中的内容 ID，帖子与评论路由参数名不同
func contentIDParam(c *gin.Context) (primitive.ObjectID, error) {
	raw := c.Param("post_id")
	if raw == "" {
		raw = c.Param("comment_id")
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, service.ErrParamInvalid
	}
	return id, nil
}
