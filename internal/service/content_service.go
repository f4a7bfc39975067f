package service

import (
	"Aviary/internal/model"
	"Aviary/internal/pkg/consts"
	"Aviary/internal/pkg/redis"
	"Aviary/internal/repository"
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type ContentService interface {
	CreatePost(ctx context.Context, authorID primitive.ObjectID, text, image string, quotedID *primitive.ObjectID) (*model.Content, error)
	CreateComment(ctx context.Context, authorID, parentID primitive.ObjectID, text, image string) (*model.Content, error)
	CreateRepost(ctx context.Context, authorID, targetID primitive.ObjectID) (*model.Content, error)
	Edit(ctx context.Context, actorID, contentID primitive.ObjectID, text string) (*model.Content, error)
	Delete(ctx context.Context, actorID, contentID primitive.ObjectID) error
}

type contentServiceImpl struct {
	contentRepo repository.ContentRepo
	userRepo    repository.UserRepo
	propagation PropagationService
}

func NewContentService(
	contentRepo repository.ContentRepo,
	userRepo repository.UserRepo,
	propagation PropagationService,
) ContentService {
	return &contentServiceImpl{
		contentRepo: contentRepo,
		userRepo:    userRepo,
		propagation: propagation,
	}
}

func (s *contentServiceImpl) CreatePost(ctx context.Context, authorID primitive.ObjectID, text, image string, quotedID *primitive.ObjectID) (*model.Content, error) {
	author, err := s.getAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if err = checkBody(text, image); err != nil {
		return nil, err
	}

	c := newContent(consts.ContentKindPost, author, text, image)

	if quotedID != nil {
		quoted, err := s.resolveOriginal(ctx, *quotedID)
		if err != nil {
			return nil, err
		}
		c.QuotedPost = quoted.AsSnapshot()
	}

	if _, err = s.contentRepo.Insert(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// CreateComment 创建评论。根帖规则：父级是帖子则根为父级自身，
// 父级是评论则继承父级的根帖快照
func (s *contentServiceImpl) CreateComment(ctx context.Context, authorID, parentID primitive.ObjectID, text, image string) (*model.Content, error) {
	author, err := s.getAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if err = checkBody(text, image); err != nil {
		return nil, err
	}

	parent, err := s.resolveOriginal(ctx, parentID)
	if err != nil {
		return nil, err
	}

	c := newContent(consts.ContentKindComment, author, text, image)
	c.ParentPost = parent.AsSnapshot()
	if parent.Kind == consts.ContentKindPost {
		c.RootPost = parent.AsSnapshot()
	} else {
		c.RootPost = parent.RootPost
	}

	if _, err = s.contentRepo.Insert(ctx, c); err != nil {
		return nil, err
	}

	_ = redis.DeleteKey(ctx, consts.ContentCommentCountKey+parent.ID.Hex())
	return c, nil
}

// CreateRepost 创建转发副本：正文与原作者快照原样复制，
// 信封归属转发者，post_id 指向原始内容
func (s *contentServiceImpl) CreateRepost(ctx context.Context, authorID, targetID primitive.ObjectID) (*model.Content, error) {
	author, err := s.getAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}

	origin, err := s.resolveOriginal(ctx, targetID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	c := &model.Content{
		ID:   primitive.NewObjectID(),
		Kind: origin.Kind,
		Data: model.Envelope{
			PostID:    origin.ID,
			Timestamp: now,
			Repost:    true,
			User:      author.Snapshot(),
		},
		Body:       origin.Body,
		QuotedPost: origin.QuotedPost,
		ParentPost: origin.ParentPost,
		RootPost:   origin.RootPost,
	}

	if _, err = s.contentRepo.Insert(ctx, c); err != nil {
		return nil, err
	}

	_ = redis.DeleteKey(ctx, consts.ContentRepostCountKey+origin.ID.Hex())
	return c, nil
}

// Edit 编辑正文。仅限作者本人，转发副本不可编辑 (需编辑原始内容)
func (s *contentServiceImpl) Edit(ctx context.Context, actorID, contentID primitive.ObjectID, text string) (*model.Content, error) {
	c, err := s.findContent(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if c.IsRepost() {
		return nil, ErrEditRepost
	}
	if c.Data.User.ID != actorID {
		return nil, ErrNotOwner
	}
	if err = checkBody(text, c.Body.Image); err != nil {
		return nil, err
	}

	s.propagation.TextEdited(ctx, c.ID, text)

	c.Body.Text = text
	return c, nil
}

// Delete 删除内容并触发级联/孤立扇出
func (s *contentServiceImpl) Delete(ctx context.Context, actorID, contentID primitive.ObjectID) error {
	c, err := s.findContent(ctx, contentID)
	if err != nil {
		return err
	}
	if c.Data.User.ID != actorID {
		return ErrNotOwner
	}

	s.propagation.ContentDeleted(ctx, c)
	return nil
}

func (s *contentServiceImpl) getAuthor(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	author, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return author, nil
}

func (s *contentServiceImpl) findContent(ctx context.Context, id primitive.ObjectID) (*model.Content, error) {
	c, err := s.contentRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrContentNotFound
		}
		return nil, err
	}
	return c, nil
}

// resolveOriginal 按 ID 取内容，命中转发副本时解析到原始内容
func (s *contentServiceImpl) resolveOriginal(ctx context.Context, id primitive.ObjectID) (*model.Content, error) {
	c, err := s.findContent(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.IsRepost() {
		return s.findContent(ctx, c.Origin())
	}
	return c, nil
}

func newContent(kind string, author *model.User, text, image string) *model.Content {
	id := primitive.NewObjectID()
	now := time.Now()
	snap := author.Snapshot()
	return &model.Content{
		ID:   id,
		Kind: kind,
		Data: model.Envelope{
			PostID:    id,
			Timestamp: now,
			Repost:    false,
			User:      snap,
		},
		Body: model.Body{
			Timestamp: now,
			Text:      text,
			Image:     image,
			User:      snap,
		},
	}
}

func checkBody(text, image string) error {
	if strings.TrimSpace(text) == "" && image == "" {
		return ErrParamInvalid
	}
	if len([]rune(text)) > consts.MaxBodyTextLen {
		return ErrParamInvalid
	}
	return nil
}
