package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthorSnapshot 写入时刻的作者展示信息快照，冗余存储而非实时引用
type AuthorSnapshot struct {
	ID       primitive.ObjectID `bson:"id" json:"id"`
	Username string             `bson:"username" json:"username"`
	Nickname string             `bson:"nickname" json:"nickname"`
	Avatar   string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
}

// Envelope 内容的外层信封 (bson: post_data)
// PostID 指向原始内容：转发时为被转发内容的 ID，否则为自身 ID
type Envelope struct {
	PostID    primitive.ObjectID `bson:"post_id" json:"post_id"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
	Repost    bool               `bson:"repost" json:"repost"`
	User      AuthorSnapshot     `bson:"user" json:"user"`
}

// Body 内容正文 (bson: post)
type Body struct {
	Timestamp time.Time      `bson:"timestamp" json:"timestamp"`
	Text      string         `bson:"text,omitempty" json:"text,omitempty"`
	Image     string         `bson:"image,omitempty" json:"image,omitempty"`
	User      AuthorSnapshot `bson:"user" json:"user"`
}

// Snapshot 另一条内容的嵌入副本，用于引用/父级/根帖的展示。
// 被引用内容删除后整个引用置为 null，而不是局部清空
type Snapshot struct {
	ID   primitive.ObjectID `bson:"_id" json:"_id"`
	Kind string             `bson:"kind" json:"kind"`
	Data *Envelope          `bson:"post_data" json:"post_data"`
	Body *Body              `bson:"post" json:"post"`

	// 读取时计算，不落库
	CommentCount int64 `bson:"-" json:"comment_count"`
	RepostCount  int64 `bson:"-" json:"repost_count"`
	LikeCount    int64 `bson:"-" json:"like_count"`
	Liked        bool  `bson:"-" json:"liked"`
}

// Content 多态内容条目，kind 为判别字段 (post | comment)。
// Post 专有 quoted_post；Comment 专有 parent_post 与 root_post
type Content struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Kind string             `bson:"kind" json:"kind"`
	Data Envelope           `bson:"post_data" json:"post_data"`
	Body Body               `bson:"post" json:"post"`

	QuotedPost *Snapshot `bson:"quoted_post,omitempty" json:"quoted_post,omitempty"`
	ParentPost *Snapshot `bson:"parent_post,omitempty" json:"parent_post,omitempty"`
	RootPost   *Snapshot `bson:"root_post,omitempty" json:"root_post,omitempty"`

	// 聚合计数读取时统计，从不维护增量计数器
	CommentCount int64 `bson:"-" json:"comment_count"`
	RepostCount  int64 `bson:"-" json:"repost_count"`
	LikeCount    int64 `bson:"-" json:"like_count"`
	Liked        bool  `bson:"-" json:"liked"`
}

// Origin 原始内容 ID，点赞与转发计数均按此归并
func (c *Content) Origin() primitive.ObjectID {
	return c.Data.PostID
}

// IsRepost 是否为转发副本
func (c *Content) IsRepost() bool {
	return c.Data.Repost
}

// AsSnapshot 生成当前内容的嵌入副本
func (c *Content) AsSnapshot() *Snapshot {
	data := c.Data
	body := c.Body
	return &Snapshot{
		ID:   c.ID,
		Kind: c.Kind,
		Data: &data,
		Body: &body,
	}
}
