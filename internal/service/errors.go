package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	NotAcceptable       = 406
	Conflict            = 409
	InternalServerError = 500
)

var (
	ErrParamInvalid      = errors.New("参数错误")
	ErrUserNotFound      = errors.New("用户不存在")
	ErrContentNotFound   = errors.New("内容不存在")
	ErrUsernameExist     = errors.New("用户名已存在")
	ErrEmailExist        = errors.New("邮箱已被注册")
	ErrPasswordIncorrect = errors.New("密码错误")
	ErrNotOwner          = errors.New("无权操作他人内容")
	ErrEditRepost        = errors.New("转发内容不可编辑")
	ErrFollowSelf        = errors.New("不能关注自己")
	ErrFollowGuest       = errors.New("不能关注游客账号")
	ErrGuestNotAllowed   = errors.New("游客无权执行此操作")
	UnauthorizedError    = errors.New("权限不足")
	UnExpectedError      = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:      BadRequest,
	ErrUserNotFound:      NotFound,
	ErrContentNotFound:   NotFound,
	ErrUsernameExist:     Conflict,
	ErrEmailExist:        Conflict,
	ErrPasswordIncorrect: Unauthorized,
	ErrNotOwner:          Unauthorized,
	ErrEditRepost:        NotAcceptable,
	ErrFollowSelf:        NotAcceptable,
	ErrFollowGuest:       NotAcceptable,
	ErrGuestNotAllowed:   Unauthorized,
	UnauthorizedError:    Unauthorized,
	UnExpectedError:      InternalServerError,
}
