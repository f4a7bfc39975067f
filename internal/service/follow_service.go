package service

import (
	"Aviary/internal/model"
	"Aviary/internal/repository"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// FollowService 关注关系维护。重复关注/取关均为幂等成功；
// 自我关注与游客目标被拒绝
type FollowService interface {
	Follow(ctx context.Context, actorID primitive.ObjectID, targetUsername string) error
	Unfollow(ctx context.Context, actorID primitive.ObjectID, targetUsername string) error
}

type followServiceImpl struct {
	userRepo repository.UserRepo
}

func NewFollowService(userRepo repository.UserRepo) FollowService {
	return &followServiceImpl{userRepo: userRepo}
}

func (s *followServiceImpl) Follow(ctx context.Context, actorID primitive.ObjectID, targetUsername string) error {
	actor, target, err := s.resolvePair(ctx, actorID, targetUsername)
	if err != nil {
		return err
	}
	return s.userRepo.AddFollow(ctx, actor.ID, target.ID)
}

func (s *followServiceImpl) Unfollow(ctx context.Context, actorID primitive.ObjectID, targetUsername string) error {
	actor, target, err := s.resolvePair(ctx, actorID, targetUsername)
	if err != nil {
		return err
	}
	return s.userRepo.RemoveFollow(ctx, actor.ID, target.ID)
}

func (s *followServiceImpl) resolvePair(ctx context.Context, actorID primitive.ObjectID, targetUsername string) (*model.User, *model.User, error) {
	actor, err := s.findUser(ctx, func() (*model.User, error) {
		return s.userRepo.FindByID(ctx, actorID)
	})
	if err != nil {
		return nil, nil, err
	}
	if actor.IsGuest() {
		return nil, nil, ErrGuestNotAllowed
	}

	target, err := s.findUser(ctx, func() (*model.User, error) {
		return s.userRepo.FindByUsername(ctx, targetUsername)
	})
	if err != nil {
		return nil, nil, err
	}
	if target.ID == actor.ID {
		return nil, nil, ErrFollowSelf
	}
	if target.IsGuest() {
		return nil, nil, ErrFollowGuest
	}
	return actor, target, nil
}

func (s *followServiceImpl) findUser(_ context.Context, fetch func() (*model.User, error)) (*model.User, error) {
	user, err := fetch()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
