package handler

import (
	"Aviary/internal/pkg/response"
	"Aviary/internal/service"

	"github.com/gin-gonic/gin"
)

type FollowHandler struct {
	followSvc service.FollowService
}

func NewFollowHandler(followSvc service.FollowService) *FollowHandler {
	return &FollowHandler{followSvc: followSvc}
}

func (s *FollowHandler) Follow(c *gin.Context) {
	actorID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err = s.followSvc.Follow(c.Request.Context(), actorID, c.Param("username")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *FollowHandler) Unfollow(c *gin.Context) {
	actorID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err = s.followSvc.Unfollow(c.Request.Context(), actorID, c.Param("username")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
