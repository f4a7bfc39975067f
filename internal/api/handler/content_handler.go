package handler

import (
	"Aviary/internal/api/dto"
	"Aviary/internal/pkg/response"
	"Aviary/internal/pkg/util"
	"Aviary/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ContentHandler struct {
	contentSvc service.ContentService
	feedSvc    service.FeedService
}

func NewContentHandler(contentSvc service.ContentService, feedSvc service.FeedService) *ContentHandler {
	return &ContentHandler{
		contentSvc: contentSvc,
		feedSvc:    feedSvc,
	}
}

func (s *ContentHandler) CreatePost(c *gin.Context) {
	authorID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var d dto.CreatePostDTO
	if err = c.ShouldBindJSON(&d); err != nil {
		response.Error(c, err)
		return
	}
	if errs := util.ValidateContentBody(d.Text, d.Image); errs != nil {
		response.ValidationFail(c, errs)
		return
	}

	var quotedID *primitive.ObjectID
	if d.QuotedPostID != nil {
		id, err := primitive.ObjectIDFromHex(*d.QuotedPostID)
		if err != nil {
			response.Error(c, service.ErrParamInvalid)
			return
		}
		quotedID = &id
	}

	created, err := s.contentSvc.CreatePost(c.Request.Context(), authorID, d.Text, d.Image, quotedID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

func (s *ContentHandler) CreateComment(c *gin.Context) {
	authorID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	parentID, err := contentIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var d dto.CreateCommentDTO
	if err = c.ShouldBindJSON(&d); err != nil {
		response.Error(c, err)
		return
	}
	if errs := util.ValidateContentBody(d.Text, d.Image); errs != nil {
		response.ValidationFail(c, errs)
		return
	}

	created, err := s.contentSvc.CreateComment(c.Request.Context(), authorID, parentID, d.Text, d.Image)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

func (s *ContentHandler) CreateRepost(c *gin.Context) {
	authorID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	targetID, err := contentIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	created, err := s.contentSvc.CreateRepost(c.Request.Context(), authorID, targetID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

func (s *ContentHandler) Get(c *gin.Context) {
	viewerID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	contentID, err := contentIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	item, err := s.feedSvc.Get(c.Request.Context(), viewerID, contentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, item)
}

func (s *ContentHandler) Replies(c *gin.Context) {
	viewerID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	parentID, err := contentIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	skip, err := getSkip(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	items, err := s.feedSvc.Replies(c.Request.Context(), viewerID, parentID, skip)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, items)
}

func (s *ContentHandler) Edit(c *gin.Context) {
	actorID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	contentID, err := contentIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var d dto.EditContentDTO
	if err = c.ShouldBindJSON(&d); err != nil {
		response.Error(c, err)
		return
	}

	updated, err := s.contentSvc.Edit(c.Request.Context(), actorID, contentID, d.Text)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, updated)
}

func (s *ContentHandler) Delete(c *gin.Context) {
	actorID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	contentID, err := contentIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err = s.contentSvc.Delete(c.Request.Context(), actorID, contentID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
