package service

import (
	"Aviary/internal/api/config"
	"Aviary/internal/api/dto"
	"Aviary/internal/model"
	"Aviary/internal/pkg/consts"
	"Aviary/internal/pkg/redis"
	"Aviary/internal/pkg/security"
	"Aviary/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jinzhu/copier"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const guestUsernameAttempts = 5

type UserService interface {
	Register(ctx context.Context, d *dto.RegisterDTO) (string, error)
	// RegisterGuest 创建限时游客账号，初始关注列表随机采样自正式用户
	RegisterGuest(ctx context.Context) (*model.User, string, error)
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context, token string) error

	GetUser(ctx context.Context, viewerID primitive.ObjectID, username string) (*dto.UserDTO, error)
	ListUsers(ctx context.Context, viewerID primitive.ObjectID, skip int64) ([]*dto.UserDTO, error)
	Followers(ctx context.Context, viewerID primitive.ObjectID, username string, skip int64) ([]*dto.UserDTO, error)
	Following(ctx context.Context, viewerID primitive.ObjectID, username string, skip int64) ([]*dto.UserDTO, error)

	UpdateProfile(ctx context.Context, actorID primitive.ObjectID, username string, d *dto.UpdateProfileDTO) (*model.User, error)
	UpdatePassword(ctx context.Context, actorID primitive.ObjectID, username string, d *dto.ChangePasswordDTO) error
}

type userServiceImpl struct {
	userRepo    repository.UserRepo
	contentRepo repository.ContentRepo
	likeRepo    repository.LikeRepo
	propagation PropagationService
}

func NewUserService(
	userRepo repository.UserRepo,
	contentRepo repository.ContentRepo,
	likeRepo repository.LikeRepo,
	propagation PropagationService,
) UserService {
	return &userServiceImpl{
		userRepo:    userRepo,
		contentRepo: contentRepo,
		likeRepo:    likeRepo,
		propagation: propagation,
	}
}

func (s *userServiceImpl) Register(ctx context.Context, d *dto.RegisterDTO) (string, error) {
	if err := s.checkUsernameFree(ctx, d.Username); err != nil {
		return "", err
	}
	if err := s.checkEmailFree(ctx, d.Email); err != nil {
		return "", err
	}

	passwordHash, err := security.HashPassword(d.Password)
	if err != nil {
		return "", err
	}

	nickname := d.Nickname
	if nickname == "" {
		nickname = d.Username
	}

	user := &model.User{
		Username:  d.Username,
		Password:  passwordHash,
		Email:     d.Email,
		Nickname:  nickname,
		Kind:      consts.UserKindNormal,
		Following: []primitive.ObjectID{},
		Followers: []primitive.ObjectID{},
		JoinDate:  time.Now(),
	}

	id, err := s.userRepo.Insert(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", ErrUsernameExist
		}
		return "", err
	}

	return security.GenerateToken(id.Hex(), consts.UserKindNormal)
}

func (s *userServiceImpl) RegisterGuest(ctx context.Context) (*model.User, string, error) {
	guestCount, err := s.userRepo.CountGuests(ctx)
	if err != nil {
		return nil, "", err
	}

	var user *model.User
	for attempt := int64(0); attempt < guestUsernameAttempts; attempt++ {
		username := fmt.Sprintf("guest-%d", guestCount+1+attempt)
		if err = s.checkUsernameFree(ctx, username); err != nil {
			if errors.Is(err, ErrUsernameExist) {
				continue
			}
			return nil, "", err
		}

		expireAt := time.Now().Add(time.Duration(config.Cfg.Guest.TTLSeconds) * time.Second)
		user = &model.User{
			Username: username,
			// 游客无登录凭据，邮箱仅用于满足唯一索引
			Email:     username + "@guest.aviary",
			Nickname:  username,
			Kind:      consts.UserKindGuest,
			Following: []primitive.ObjectID{},
			Followers: []primitive.ObjectID{},
			JoinDate:  time.Now(),
			ExpireAt:  &expireAt,
		}
		break
	}
	if user == nil {
		return nil, "", UnExpectedError
	}

	id, err := s.userRepo.Insert(ctx, user)
	if err != nil {
		return nil, "", err
	}
	user.ID = id

	seeds, err := s.userRepo.SampleNonGuests(ctx, config.Cfg.Guest.SeedFollows)
	if err != nil {
		return nil, "", err
	}
	for _, seed := range seeds {
		if err = s.userRepo.AddFollow(ctx, id, seed); err != nil {
			return nil, "", err
		}
		user.Following = append(user.Following, seed)
	}

	token, err := security.GenerateToken(id.Hex(), consts.UserKindGuest)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *userServiceImpl) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	if err = security.CheckPasswordHash(password, user.Password); err != nil {
		return "", ErrPasswordIncorrect
	}
	return security.GenerateToken(user.ID.Hex(), user.Kind)
}

// Logout 将 Token 签名写入黑名单，有效期与 Token 对齐
func (s *userServiceImpl) Logout(ctx context.Context, token string) error {
	signature, err := security.ExtractSignature(token)
	if err != nil {
		return err
	}
	return redis.SetWithExpiration(ctx, signature, true, security.JWTExpirationTime)
}

func (s *userServiceImpl) GetUser(ctx context.Context, viewerID primitive.ObjectID, username string) (*dto.UserDTO, error) {
	user, err := s.findByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	userDTO := s.toSummaryDTO(user, viewerID)

	userDTO.PostCount, _ = s.contentRepo.CountByAuthor(ctx, user.ID, consts.ContentKindPost)
	userDTO.CommentCount, _ = s.contentRepo.CountByAuthor(ctx, user.ID, consts.ContentKindComment)
	userDTO.LikeCount, _ = s.likeRepo.CountByUser(ctx, user.ID)
	return userDTO, nil
}

// ListUsers 用户目录，不含查看者自己
func (s *userServiceImpl) ListUsers(ctx context.Context, viewerID primitive.ObjectID, skip int64) ([]*dto.UserDTO, error) {
	viewer, err := s.userRepo.FindByID(ctx, viewerID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	users, err := s.userRepo.List(ctx, viewer.Username, skip, consts.UserBatchSize)
	if err != nil {
		return nil, err
	}
	return s.toSummaryDTOs(users, viewerID), nil
}

func (s *userServiceImpl) Followers(ctx context.Context, viewerID primitive.ObjectID, username string, skip int64) ([]*dto.UserDTO, error) {
	target, err := s.findByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.ListFollowers(ctx, target.ID, skip, consts.FollowBatchSize)
	if err != nil {
		return nil, err
	}
	return s.toSummaryDTOs(users, viewerID), nil
}

func (s *userServiceImpl) Following(ctx context.Context, viewerID primitive.ObjectID, username string, skip int64) ([]*dto.UserDTO, error) {
	target, err := s.findByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.ListFollowing(ctx, target.ID, skip, consts.FollowBatchSize)
	if err != nil {
		return nil, err
	}
	return s.toSummaryDTOs(users, viewerID), nil
}

// UpdateProfile 更新资料。用户名/昵称/头像变更会触发全量作者快照扇出
func (s *userServiceImpl) UpdateProfile(ctx context.Context, actorID primitive.ObjectID, username string, d *dto.UpdateProfileDTO) (*model.User, error) {
	target, err := s.findByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if target.ID != actorID {
		return nil, ErrNotOwner
	}

	fields := bson.M{}
	snapshotChanged := false

	if d.Username != nil && *d.Username != target.Username {
		if err = s.checkUsernameFree(ctx, *d.Username); err != nil {
			return nil, err
		}
		fields["username"] = *d.Username
		snapshotChanged = true
	}
	if d.Email != nil && *d.Email != target.Email {
		if err = s.checkEmailFree(ctx, *d.Email); err != nil {
			return nil, err
		}
		fields["email"] = *d.Email
	}
	if d.Nickname != nil {
		nickname := *d.Nickname
		if nickname == "" {
			nickname = target.Username
		}
		if nickname != target.Nickname {
			fields["nickname"] = nickname
			snapshotChanged = true
		}
	}
	if d.Bio != nil {
		fields["bio"] = *d.Bio
	}
	if d.Avatar != nil {
		fields["avatar"] = clearableValue(*d.Avatar)
		snapshotChanged = true
	}
	if d.Header != nil {
		fields["header"] = clearableValue(*d.Header)
	}

	if len(fields) == 0 {
		return target, nil
	}

	if err = s.userRepo.UpdateProfile(ctx, target.ID, fields); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	updated, err := s.userRepo.FindByID(ctx, target.ID)
	if err != nil {
		return nil, err
	}

	if snapshotChanged {
		s.propagation.ProfileUpdated(ctx, updated.ID, updated.Snapshot())
	}
	return updated, nil
}

func (s *userServiceImpl) UpdatePassword(ctx context.Context, actorID primitive.ObjectID, username string, d *dto.ChangePasswordDTO) error {
	target, err := s.findByUsername(ctx, username)
	if err != nil {
		return err
	}
	if target.ID != actorID {
		return ErrNotOwner
	}
	if err = security.CheckPasswordHash(d.OldPassword, target.Password); err != nil {
		return ErrPasswordIncorrect
	}
	passwordHash, err := security.HashPassword(d.NewPassword)
	if err != nil {
		return err
	}
	return s.userRepo.UpdatePassword(ctx, target.ID, passwordHash)
}

func (s *userServiceImpl) findByUsername(ctx context.Context, username string) (*model.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userServiceImpl) checkUsernameFree(ctx context.Context, username string) error {
	_, err := s.userRepo.FindByUsername(ctx, username)
	if err == nil {
		return ErrUsernameExist
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	return err
}

func (s *userServiceImpl) checkEmailFree(ctx context.Context, email string) error {
	_, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return ErrEmailExist
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	return err
}

func (s *userServiceImpl) toSummaryDTO(user *model.User, viewerID primitive.ObjectID) *dto.UserDTO {
	userDTO := &dto.UserDTO{}
	_ = copier.Copy(userDTO, user)
	userDTO.ID = user.ID.Hex()
	userDTO.FollowerCount = int64(len(user.Followers))
	userDTO.FollowingCount = int64(len(user.Following))
	userDTO.IsFollowing = containsID(user.Followers, viewerID)
	return userDTO
}

func (s *userServiceImpl) toSummaryDTOs(users []*model.User, viewerID primitive.ObjectID) []*dto.UserDTO {
	res := make([]*dto.UserDTO, 0, len(users))
	for _, u := range users {
		res = append(res, s.toSummaryDTO(u, viewerID))
	}
	return res
}

func clearableValue(v string) string {
	if v == consts.ImageClearSentinel {
		return ""
	}
	return v
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
