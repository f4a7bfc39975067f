package handler

import (
	"Aviary/internal/model"
	"Aviary/internal/pkg/response"
	"Aviary/internal/service"
	"context"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FeedHandler struct {
	feedSvc service.FeedService
}

func NewFeedHandler(feedSvc service.FeedService) *FeedHandler {
	return &FeedHandler{feedSvc: feedSvc}
}

// Home 首页时间线：自己与关注者的帖子及转发
func (s *FeedHandler) Home(c *gin.Context) {
	viewerID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	skip, err := getSkip(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	items, err := s.feedSvc.Home(c.Request.Context(), viewerID, skip)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, items)
}

func (s *FeedHandler) UserPosts(c *gin.Context) {
	s.listUserContent(c, s.feedSvc.UserPosts)
}

func (s *FeedHandler) UserComments(c *gin.Context) {
	s.listUserContent(c, s.feedSvc.UserComments)
}

type userContentFunc func(ctx context.Context, viewerID primitive.ObjectID, username string, skip int64) ([]*model.Content, error)

func (s *FeedHandler) listUserContent(c *gin.Context, fetch userContentFunc) {
	viewerID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	skip, err := getSkip(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	items, err := fetch(c.Request.Context(), viewerID, c.Param("username"), skip)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, items)
}
