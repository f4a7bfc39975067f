package dto

import "time"

type RegisterDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

type LoginDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ChangePasswordDTO struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// UpdateProfileDTO 资料更新补丁，nil 字段保持原值。
// Avatar/Header 取值 "clear" 表示清除
type UpdateProfileDTO struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Nickname *string `json:"nickname"`
	Bio      *string `json:"bio"`
	Avatar   *string `json:"avatar"`
	Header   *string `json:"header"`
}

type TokenDTO struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// UserDTO 用户展示信息，计数与关注状态均为读取时计算
type UserDTO struct {
	ID       string    `json:"_id"`
	Username string    `json:"username"`
	Nickname string    `json:"nickname"`
	Avatar   string    `json:"avatar,omitempty"`
	Header   string    `json:"header,omitempty"`
	Bio      string    `json:"bio,omitempty"`
	Kind     string    `json:"kind"`
	JoinDate time.Time `json:"join_date"`

	FollowerCount  int64 `json:"follower_count"`
	FollowingCount int64 `json:"following_count"`
	PostCount      int64 `json:"post_count"`
	CommentCount   int64 `json:"comment_count"`
	LikeCount      int64 `json:"like_count"`

	IsFollowing bool `json:"is_following"`
}
