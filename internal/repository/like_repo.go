package repository

import (
	"Aviary/internal/model"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type LikeRepo interface {
	// Insert 写入点赞记录，(user, post) 已存在时返回 false 而非错误
	Insert(ctx context.Context, like *model.Like) (bool, error)
	Delete(ctx context.Context, userID, postID primitive.ObjectID) (bool, error)
	DeleteByPost(ctx context.Context, postID primitive.ObjectID) error
	DeleteByUsers(ctx context.Context, userIDs []primitive.ObjectID) error

	Exists(ctx context.Context, userID, postID primitive.ObjectID) (bool, error)
	CountByPost(ctx context.Context, postID primitive.ObjectID) (int64, error)
	CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]*model.Like, error)

	// FilterLiked 批量探测查看者对一组内容的点赞状态
	FilterLiked(ctx context.Context, userID primitive.ObjectID, postIDs []primitive.ObjectID) (map[primitive.ObjectID]bool, error)

	// DistinctUserIDs 全部点赞记录的用户 ID 去重集合
	DistinctUserIDs(ctx context.Context) ([]primitive.ObjectID, error)
}

type likeRepoImpl struct {
	col *mongo.Collection
}

func NewLikeRepo(db *mongo.Database) LikeRepo {
	return &likeRepoImpl{
		col: db.Collection("likes"),
	}
}

func (s *likeRepoImpl) Insert(ctx context.Context, like *model.Like) (bool, error) {
	_, err := s.col.InsertOne(ctx, like)
	if err != nil {
		// 唯一索引冲突视为已点赞，幂等成功
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *likeRepoImpl) Delete(ctx context.Context, userID, postID primitive.ObjectID) (bool, error) {
	res, err := s.col.DeleteOne(ctx, bson.M{"user": userID, "post": postID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (s *likeRepoImpl) DeleteByPost(ctx context.Context, postID primitive.ObjectID) error {
	_, err := s.col.DeleteMany(ctx, bson.M{"post": postID})
	return err
}

func (s *likeRepoImpl) DeleteByUsers(ctx context.Context, userIDs []primitive.ObjectID) error {
	if len(userIDs) == 0 {
		return nil
	}
	_, err := s.col.DeleteMany(ctx, bson.M{"user": bson.M{"$in": userIDs}})
	return err
}

func (s *likeRepoImpl) Exists(ctx context.Context, userID, postID primitive.ObjectID) (bool, error) {
	count, err := s.col.CountDocuments(ctx, bson.M{"user": userID, "post": postID})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *likeRepoImpl) CountByPost(ctx context.Context, postID primitive.ObjectID) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{"post": postID})
}

func (s *likeRepoImpl) CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{"user": userID})
}

// ListByUser 某用户的点赞记录，按时间倒序分页
func (s *likeRepoImpl) ListByUser(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]*model.Like, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := s.col.Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var likes []*model.Like
	if err = cursor.All(ctx, &likes); err != nil {
		return nil, err
	}
	return likes, nil
}

func (s *likeRepoImpl) FilterLiked(ctx context.Context, userID primitive.ObjectID, postIDs []primitive.ObjectID) (map[primitive.ObjectID]bool, error) {
	liked := make(map[primitive.ObjectID]bool, len(postIDs))
	if len(postIDs) == 0 {
		return liked, nil
	}

	cursor, err := s.col.Find(ctx, bson.M{
		"user": userID,
		"post": bson.M{"$in": postIDs},
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var likes []*model.Like
	if err = cursor.All(ctx, &likes); err != nil {
		return nil, err
	}

	for _, l := range likes {
		liked[l.Post] = true
	}
	return liked, nil
}

func (s *likeRepoImpl) DistinctUserIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	values, err := s.col.Distinct(ctx, "user", bson.M{})
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(values))
	for _, v := range values {
		if id, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
