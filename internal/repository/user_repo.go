package repository

import (
	"Aviary/internal/model"
	"Aviary/internal/pkg/consts"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepo interface {
	Insert(ctx context.Context, u *model.User) (primitive.ObjectID, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	List(ctx context.Context, excludeUsername string, skip, limit int64) ([]*model.User, error)
	ListFollowers(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]*model.User, error)
	ListFollowing(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]*model.User, error)

	AddFollow(ctx context.Context, followerID, targetID primitive.ObjectID) error
	RemoveFollow(ctx context.Context, followerID, targetID primitive.ObjectID) error

	UpdateProfile(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error

	CountGuests(ctx context.Context) (int64, error)
	SampleNonGuests(ctx context.Context, n int) ([]primitive.ObjectID, error)
	FilterExisting(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]bool, error)
	PullFollowRefs(ctx context.Context, ids []primitive.ObjectID) error
}

type userRepoImpl struct {
	col *mongo.Collection
}

func NewUserRepo(db *mongo.Database) UserRepo {
	return &userRepoImpl{
		col: db.Collection("users"),
	}
}

func (s *userRepoImpl) Insert(ctx context.Context, u *model.User) (primitive.ObjectID, error) {
	res, err := s.col.InsertOne(ctx, u)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, _ := res.InsertedID.(primitive.ObjectID)
	return id, nil
}

func (s *userRepoImpl) FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *userRepoImpl) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.findOne(ctx, bson.M{"username": username})
}

func (s *userRepoImpl) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *userRepoImpl) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var u model.User
	err := s.col.FindOne(ctx, filter).Decode(&u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// List 用户目录，按用户名正序分页，可排除指定用户 (查看者自己)
func (s *userRepoImpl) List(ctx context.Context, excludeUsername string, skip, limit int64) ([]*model.User, error) {
	filter := bson.M{}
	if excludeUsername != "" {
		filter["username"] = bson.M{"$ne": excludeUsername}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "username", Value: 1}}).
		SetSkip(skip).
		SetLimit(limit)
	return s.listUsers(ctx, filter, opts)
}

// ListFollowers 关注了指定用户的人：以对方 following 数组反查
func (s *userRepoImpl) ListFollowers(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]*model.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "username", Value: 1}}).
		SetSkip(skip).
		SetLimit(limit)
	return s.listUsers(ctx, bson.M{"following": userID}, opts)
}

// ListFollowing 指定用户关注的人：以对方 followers 数组反查
func (s *userRepoImpl) ListFollowing(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]*model.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "username", Value: 1}}).
		SetSkip(skip).
		SetLimit(limit)
	return s.listUsers(ctx, bson.M{"followers": userID}, opts)
}

func (s *userRepoImpl) listUsers(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.User, error) {
	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var users []*model.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// AddFollow 双向写入关注边。$addToSet 保证重复关注天然幂等
func (s *userRepoImpl) AddFollow(ctx context.Context, followerID, targetID primitive.ObjectID) error {
	_, err := s.col.UpdateOne(ctx,
		bson.M{"_id": followerID},
		bson.M{"$addToSet": bson.M{"following": targetID}},
	)
	if err != nil {
		return err
	}
	_, err = s.col.UpdateOne(ctx,
		bson.M{"_id": targetID},
		bson.M{"$addToSet": bson.M{"followers": followerID}},
	)
	return err
}

// RemoveFollow 双向移除关注边，未关注时为无副作用成功
func (s *userRepoImpl) RemoveFollow(ctx context.Context, followerID, targetID primitive.ObjectID) error {
	_, err := s.col.UpdateOne(ctx,
		bson.M{"_id": followerID},
		bson.M{"$pull": bson.M{"following": targetID}},
	)
	if err != nil {
		return err
	}
	_, err = s.col.UpdateOne(ctx,
		bson.M{"_id": targetID},
		bson.M{"$pull": bson.M{"followers": followerID}},
	)
	return err
}

// UpdateProfile 按字段集更新资料，字段值为空字符串时改为 $unset
func (s *userRepoImpl) UpdateProfile(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	set := bson.M{}
	unset := bson.M{}
	for k, v := range fields {
		if str, ok := v.(string); ok && str == "" {
			unset[k] = ""
			continue
		}
		set[k] = v
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	if len(update) == 0 {
		return nil
	}

	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (s *userRepoImpl) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"password": passwordHash}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (s *userRepoImpl) CountGuests(ctx context.Context) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{"kind": consts.UserKindGuest})
}

// SampleNonGuests 随机抽样 n 个正式用户 ID，用于游客初始关注列表
func (s *userRepoImpl) SampleNonGuests(ctx context.Context, n int) ([]primitive.ObjectID, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"kind": bson.M{"$ne": consts.UserKindGuest}}}},
		{{Key: "$sample", Value: bson.M{"size": n}}},
		{{Key: "$project", Value: bson.M{"_id": 1}}},
	}

	cursor, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

// FilterExisting 返回仍然存在的用户 ID 集合
func (s *userRepoImpl) FilterExisting(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]bool, error) {
	cursor, err := s.col.Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"_id": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	existing := make(map[primitive.ObjectID]bool, len(docs))
	for _, d := range docs {
		existing[d.ID] = true
	}
	return existing, nil
}

// PullFollowRefs 从所有用户的关注关系中移除已消失的用户 ID
func (s *userRepoImpl) PullFollowRefs(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.col.UpdateMany(ctx,
		bson.M{},
		bson.M{"$pull": bson.M{
			"following": bson.M{"$in": ids},
			"followers": bson.M{"$in": ids},
		}},
	)
	return err
}
