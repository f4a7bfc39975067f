package repository

import (
	"Aviary/internal/model"
	"Aviary/internal/pkg/consts"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SnapshotLocation 标识内容文档中嵌入快照所在的字段。
// 所有快照位置集中在此注册，扇出更新据此遍历，禁止在调用方散落字段路径
type SnapshotLocation string

const (
	// LocationSelf 文档自身的 post_data/post
	LocationSelf   SnapshotLocation = ""
	LocationQuoted SnapshotLocation = "quoted_post"
	LocationParent SnapshotLocation = "parent_post"
	LocationRoot   SnapshotLocation = "root_post"
)

// EmbedLocations 嵌入他人内容副本的全部位置
var EmbedLocations = []SnapshotLocation{LocationQuoted, LocationParent, LocationRoot}

// AuthorLocations 携带作者快照的全部位置，含文档自身
var AuthorLocations = []SnapshotLocation{LocationSelf, LocationQuoted, LocationParent, LocationRoot}

func (l SnapshotLocation) prefix() string {
	if l == LocationSelf {
		return ""
	}
	return string(l) + "."
}

type ContentRepo interface {
	Insert(ctx context.Context, c *model.Content) (primitive.ObjectID, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Content, error)

	ListFeed(ctx context.Context, authorIDs []primitive.ObjectID, skip, limit int64) ([]*model.Content, error)
	ListPostsByAuthor(ctx context.Context, username string, skip, limit int64) ([]*model.Content, error)
	ListCommentsByAuthor(ctx context.Context, username string, skip, limit int64) ([]*model.Content, error)
	ListReplies(ctx context.Context, parentID primitive.ObjectID, skip, limit int64) ([]*model.Content, error)

	CountComments(ctx context.Context, id primitive.ObjectID) (int64, error)
	CountReposts(ctx context.Context, originID primitive.ObjectID) (int64, error)
	CountByAuthor(ctx context.Context, userID primitive.ObjectID, kind string) (int64, error)

	// 正文编辑扇出原语
	UpdateBodyText(ctx context.Context, originID primitive.ObjectID, text string) error
	UpdateSnapshotText(ctx context.Context, loc SnapshotLocation, originID primitive.ObjectID, text string) error

	// 删除扇出原语
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
	DeleteByOrigin(ctx context.Context, originID primitive.ObjectID) (int64, error)
	ClearReferenceByID(ctx context.Context, loc SnapshotLocation, id primitive.ObjectID) error
	ClearReferenceByOrigin(ctx context.Context, loc SnapshotLocation, originID primitive.ObjectID) error

	// 作者快照扇出原语
	UpdateAuthorSnapshot(ctx context.Context, loc SnapshotLocation, userID primitive.ObjectID, snap model.AuthorSnapshot) error

	// 游客清理
	DistinctAuthorIDs(ctx context.Context) ([]primitive.ObjectID, error)
	DeleteByAuthors(ctx context.Context, userIDs []primitive.ObjectID) (int64, error)
}

type contentRepoImpl struct {
	col *mongo.Collection
}

func NewContentRepo(db *mongo.Database) ContentRepo {
	return &contentRepoImpl{
		col: db.Collection("contents"),
	}
}

func (s *contentRepoImpl) Insert(ctx context.Context, c *model.Content) (primitive.ObjectID, error) {
	res, err := s.col.InsertOne(ctx, c)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("unexpected inserted id type")
	}
	return id, nil
}

func (s *contentRepoImpl) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Content, error) {
	var c model.Content
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListFeed 查询指定作者集合的帖子与转发 (不含评论)，按时间倒序分页
func (s *contentRepoImpl) ListFeed(ctx context.Context, authorIDs []primitive.ObjectID, skip, limit int64) ([]*model.Content, error) {
	filter := bson.M{
		"post_data.user.id": bson.M{"$in": authorIDs},
		"$or": bson.A{
			bson.M{"kind": consts.ContentKindPost},
			bson.M{"post_data.repost": true},
		},
	}
	return s.list(ctx, filter, skip, limit, -1)
}

// ListPostsByAuthor 查询某用户时间线：帖子与转发，不含评论
func (s *contentRepoImpl) ListPostsByAuthor(ctx context.Context, username string, skip, limit int64) ([]*model.Content, error) {
	filter := bson.M{
		"post_data.user.username": username,
		"$or": bson.A{
			bson.M{"kind": consts.ContentKindPost},
			bson.M{"post_data.repost": true},
		},
	}
	return s.list(ctx, filter, skip, limit, -1)
}

// ListCommentsByAuthor 查询某用户发表的评论 (不含转发副本)
func (s *contentRepoImpl) ListCommentsByAuthor(ctx context.Context, username string, skip, limit int64) ([]*model.Content, error) {
	filter := bson.M{
		"post_data.user.username": username,
		"kind":                    consts.ContentKindComment,
		"post_data.repost":        false,
	}
	return s.list(ctx, filter, skip, limit, -1)
}

// ListReplies 查询直接子评论 (仅一层)，按时间正序分页
func (s *contentRepoImpl) ListReplies(ctx context.Context, parentID primitive.ObjectID, skip, limit int64) ([]*model.Content, error) {
	filter := bson.M{
		"parent_post._id":  parentID,
		"post_data.repost": false,
	}
	return s.list(ctx, filter, skip, limit, 1)
}

func (s *contentRepoImpl) list(ctx context.Context, filter bson.M, skip, limit int64, order int) ([]*model.Content, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "post_data.timestamp", Value: order}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var items []*model.Content
	if err = cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// CountComments 直接子评论数
func (s *contentRepoImpl) CountComments(ctx context.Context, id primitive.ObjectID) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{
		"parent_post._id":  id,
		"post_data.repost": false,
	})
}

// CountReposts 转发数，按原始内容 ID 归并
func (s *contentRepoImpl) CountReposts(ctx context.Context, originID primitive.ObjectID) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{
		"post_data.post_id": originID,
		"post_data.repost":  true,
	})
}

// CountByAuthor 某用户发表的指定类型内容数 (不含转发副本)
func (s *contentRepoImpl) CountByAuthor(ctx context.Context, userID primitive.ObjectID, kind string) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{
		"post_data.user.id": userID,
		"kind":              kind,
		"post_data.repost":  false,
	})
}

// UpdateBodyText 更新正文文本。过滤条件按原始内容 ID 匹配，
// 一次覆盖原内容及其全部转发副本
func (s *contentRepoImpl) UpdateBodyText(ctx context.Context, originID primitive.ObjectID, text string) error {
	_, err := s.col.UpdateMany(ctx,
		bson.M{"post_data.post_id": originID},
		bson.M{"$set": bson.M{"post.text": text}},
	)
	return err
}

// UpdateSnapshotText 更新指定位置嵌入快照中的正文文本
func (s *contentRepoImpl) UpdateSnapshotText(ctx context.Context, loc SnapshotLocation, originID primitive.ObjectID, text string) error {
	p := loc.prefix()
	_, err := s.col.UpdateMany(ctx,
		bson.M{p + "post_data.post_id": originID},
		bson.M{"$set": bson.M{p + "post.text": text}},
	)
	return err
}

func (s *contentRepoImpl) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// DeleteByOrigin 删除原始内容及其全部转发副本
func (s *contentRepoImpl) DeleteByOrigin(ctx context.Context, originID primitive.ObjectID) (int64, error) {
	res, err := s.col.DeleteMany(ctx, bson.M{"post_data.post_id": originID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ClearReferenceByID 将指向指定文档的嵌入引用整体置空 (孤立而非删除)
func (s *contentRepoImpl) ClearReferenceByID(ctx context.Context, loc SnapshotLocation, id primitive.ObjectID) error {
	_, err := s.col.UpdateMany(ctx,
		bson.M{string(loc) + "._id": id},
		bson.M{"$set": bson.M{string(loc): nil}},
	)
	return err
}

// ClearReferenceByOrigin 将指向某原始内容或其任一转发副本的嵌入引用整体置空
func (s *contentRepoImpl) ClearReferenceByOrigin(ctx context.Context, loc SnapshotLocation, originID primitive.ObjectID) error {
	p := loc.prefix()
	_, err := s.col.UpdateMany(ctx,
		bson.M{p + "post_data.post_id": originID},
		bson.M{"$set": bson.M{string(loc): nil}},
	)
	return err
}

// UpdateAuthorSnapshot 更新指定位置上属于某作者的快照。
// 信封与正文各带一份作者信息，两处都要覆盖
func (s *contentRepoImpl) UpdateAuthorSnapshot(ctx context.Context, loc SnapshotLocation, userID primitive.ObjectID, snap model.AuthorSnapshot) error {
	p := loc.prefix()

	_, err := s.col.UpdateMany(ctx,
		bson.M{p + "post_data.user.id": userID},
		bson.M{"$set": bson.M{
			p + "post_data.user.username": snap.Username,
			p + "post_data.user.nickname": snap.Nickname,
			p + "post_data.user.avatar":   snap.Avatar,
		}},
	)
	if err != nil {
		return err
	}

	_, err = s.col.UpdateMany(ctx,
		bson.M{p + "post.user.id": userID},
		bson.M{"$set": bson.M{
			p + "post.user.username": snap.Username,
			p + "post.user.nickname": snap.Nickname,
			p + "post.user.avatar":   snap.Avatar,
		}},
	)
	return err
}

// DistinctAuthorIDs 全部内容的作者 ID 去重集合
func (s *contentRepoImpl) DistinctAuthorIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	values, err := s.col.Distinct(ctx, "post_data.user.id", bson.M{})
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

// DeleteByAuthors 删除指定作者发表的全部内容
func (s *contentRepoImpl) DeleteByAuthors(ctx context.Context, userIDs []primitive.ObjectID) (int64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	res, err := s.col.DeleteMany(ctx, bson.M{"post_data.user.id": bson.M{"$in": userIDs}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
