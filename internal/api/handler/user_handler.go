package handler

import (
	"Aviary/internal/api/dto"
	"Aviary/internal/pkg/response"
	"Aviary/internal/pkg/util"
	"Aviary/internal/service"
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserHandler struct {
	userSvc service.UserService
}

func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

func (s *UserHandler) Register(c *gin.Context) {
	var d dto.RegisterDTO
	if err := c.ShouldBindJSON(&d); err != nil {
		response.Error(c, err)
		return
	}
	if errs := util.ValidateRegister(&d); errs != nil {
		response.ValidationFail(c, errs)
		return
	}

	token, err := s.userSvc.Register(c.Request.Context(), &d)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.TokenDTO{Token: token, Username: d.Username})
}

func (s *UserHandler) RegisterGuest(c *gin.Context) {
	user, token, err := s.userSvc.RegisterGuest(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.TokenDTO{Token: token, Username: user.Username})
}

func (s *UserHandler) Login(c *gin.Context) {
	var d dto.LoginDTO
	if err := c.ShouldBindJSON(&d); err != nil {
		response.Error(c, err)
		return
	}
	if d.Username == "" || d.Password == "" {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	token, err := s.userSvc.Login(c.Request.Context(), d.Username, d.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.TokenDTO{Token: token, Username: d.Username})
}

func (s *UserHandler) Logout(c *gin.Context) {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if err := s.userSvc.Logout(c.Request.Context(), token); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *UserHandler) GetUser(c *gin.Context) {
	viewerID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	user, err := s.userSvc.GetUser(c.Request.Context(), viewerID, c.Param("username"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, user)
}

func (s *UserHandler) ListUsers(c *gin.Context) {
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

	users, err := s.userSvc.ListUsers(c.Request.Context(), viewerID, skip)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, users)
}

func (s *UserHandler) Followers(c *gin.Context) {
	s.listFollowPage(c, s.userSvc.Followers)
}

func (s *UserHandler) Following(c *gin.Context) {
	s.listFollowPage(c, s.userSvc.Following)
}

func (s *UserHandler) UpdateProfile(c *gin.Context) {
	actorID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var d dto.UpdateProfileDTO
	if err = c.ShouldBindJSON(&d); err != nil {
		response.Error(c, err)
		return
	}
	if errs := util.ValidateProfile(&d); errs != nil {
		response.ValidationFail(c, errs)
		return
	}

	user, err := s.userSvc.UpdateProfile(c.Request.Context(), actorID, c.Param("username"), &d)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, user)
}

func (s *UserHandler) ChangePassword(c *gin.Context) {
	actorID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var d dto.ChangePasswordDTO
	if err = c.ShouldBindJSON(&d); err != nil {
		response.Error(c, err)
		return
	}
	if errs := util.ValidatePasswordChange(&d); errs != nil {
		response.ValidationFail(c, errs)
		return
	}

	if err = s.userSvc.UpdatePassword(c.Request.Context(), actorID, c.Param("username"), &d); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

type followPageFunc func(ctx context.Context, viewerID primitive.ObjectID, username string, skip int64) ([]*dto.UserDTO, error)

func (s *UserHandler) listFollowPage(c *gin.Context, fetch followPageFunc) {
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

	users, err := fetch(c.Request.Context(), viewerID, c.Param("username"), skip)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, users)
}
