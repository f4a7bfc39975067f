package service

import (
	"Aviary/internal/model"
	"Aviary/internal/pkg/consts"
	"Aviary/internal/pkg/redis"
	"Aviary/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const countCacheExpiration = time.Hour * 1

type LikeService interface {
	// Like 点赞，对已点赞的内容重复点赞为幂等成功
	Like(ctx context.Context, userID, contentID primitive.ObjectID) error
	// Unlike 取消点赞，未点赞时为无副作用成功
	Unlike(ctx context.Context, userID, contentID primitive.ObjectID) error
	GetLikeCount(ctx context.Context, originID primitive.ObjectID) (int64, error)
	FilterLiked(ctx context.Context, userID primitive.ObjectID, originIDs []primitive.ObjectID) (map[primitive.ObjectID]bool, error)
}

type likeServiceImpl struct {
	contentRepo repository.ContentRepo
	likeRepo    repository.LikeRepo
}

func NewLikeService(contentRepo repository.ContentRepo, likeRepo repository.LikeRepo) LikeService {
	return &likeServiceImpl{
		contentRepo: contentRepo,
		likeRepo:    likeRepo,
	}
}

func (s *likeServiceImpl) Like(ctx context.Context, userID, contentID primitive.ObjectID) error {
	origin, err := s.resolveOrigin(ctx, contentID)
	if err != nil {
		return err
	}

	created, err := s.likeRepo.Insert(ctx, &model.Like{
		Timestamp: time.Now(),
		User:      userID,
		Post:      origin,
	})
	if err != nil {
		return err
	}
	if created {
		_ = redis.DeleteKey(ctx, consts.ContentLikeCountKey+origin.Hex())
	}
	return nil
}

func (s *likeServiceImpl) Unlike(ctx context.Context, userID, contentID primitive.ObjectID) error {
	origin, err := s.resolveOrigin(ctx, contentID)
	if err != nil {
		return err
	}

	deleted, err := s.likeRepo.Delete(ctx, userID, origin)
	if err != nil {
		return err
	}
	if deleted {
		_ = redis.DeleteKey(ctx, consts.ContentLikeCountKey+origin.Hex())
	}
	return nil
}

func (s *likeServiceImpl) GetLikeCount(ctx context.Context, originID primitive.ObjectID) (int64, error) {
	key := consts.ContentLikeCountKey + originID.Hex()
	count, err := redis.GetInt64(ctx, key)
	if err == nil {
		return count, nil
	}
	realCount, err := s.likeRepo.CountByPost(ctx, originID)
	if err != nil {
		return 0, err
	}
	_ = redis.SetWithExpiration(ctx, key, realCount, countCacheExpiration)
	return realCount, nil
}

func (s *likeServiceImpl) FilterLiked(ctx context.Context, userID primitive.ObjectID, originIDs []primitive.ObjectID) (map[primitive.ObjectID]bool, error) {
	return s.likeRepo.FilterLiked(ctx, userID, originIDs)
}

// resolveOrigin 点赞以原始内容为准：对转发副本点赞会归并到原帖
func (s *likeServiceImpl) resolveOrigin(ctx context.Context, contentID primitive.ObjectID) (primitive.ObjectID, error) {
	c, err := s.contentRepo.FindByID(ctx, contentID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return primitive.NilObjectID, ErrContentNotFound
		}
		return primitive.NilObjectID, err
	}
	return c.Origin(), nil
}
