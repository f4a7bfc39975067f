package handler

import (
	"Aviary/internal/pkg/response"
	"Aviary/internal/service"

	"github.com/gin-gonic/gin"
)

type LikeHandler struct {
	likeSvc service.LikeService
}

func NewLikeHandler(likeSvc service.LikeService) *LikeHandler {
	return &LikeHandler{likeSvc: likeSvc}
}

// Like 点赞，重复点赞为幂等成功
func (s *LikeHandler) Like(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	contentID, err := contentIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err = s.likeSvc.Like(c.Request.Context(), userID, contentID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *LikeHandler) Unlike(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	contentID, err := contentIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err = s.likeSvc.Unlike(c.Request.Context(), userID, contentID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
