package security

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	JWTSecret         string = "aviary_secret"
	JWTExpirationTime        = time.Hour * 24
)

// UserClaims Token 中携带的业务身份。只存 ID 与账号类型，
// 展示信息 (昵称/头像) 每次操作从用户表现查，避免资料更新后的陈旧快照
type UserClaims struct {
	UserID string `json:"user_id"`
	Kind   string `json:"kind"`
	jwt.RegisteredClaims
}
