package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Username string             `bson:"username" json:"username"`
	Password string             `bson:"password" json:"-"`
	Email    string             `bson:"email" json:"-"`
	Nickname string             `bson:"nickname" json:"nickname"`
	Avatar   string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Header   string             `bson:"header,omitempty" json:"header,omitempty"`
	Bio      string             `bson:"bio,omitempty" json:"bio,omitempty"`
	Kind     string             `bson:"kind" json:"kind"`

	// 关注关系对称维护：A 关注 B 时 A.following 与 B.followers 同时更新
	Following []primitive.ObjectID `bson:"following" json:"following"`
	Followers []primitive.ObjectID `bson:"followers" json:"followers"`

	JoinDate time.Time `bson:"join_date" json:"join_date"`

	// 游客账号到期时间，TTL 索引自动清理
	ExpireAt *time.Time `bson:"expire_at,omitempty" json:"-"`
}

func (u *User) IsGuest() bool {
	return u.Kind == "guest"
}

// Snapshot 取当前展示信息，写入内容时冗余嵌入
func (u *User) Snapshot() AuthorSnapshot {
	return AuthorSnapshot{
		ID:       u.ID,
		Username: u.Username,
		Nickname: u.Nickname,
		Avatar:   u.Avatar,
	}
}

// ProfilePatch 资料更新补丁，nil 表示保持原值。
// Avatar/Header 传入哨兵值 "clear" 时清空
type ProfilePatch struct {
	Username *string
	Email    *string
	Nickname *string
	Bio      *string
	Avatar   *string
	Header   *string
}
