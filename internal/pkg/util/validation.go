package util

import (
	"Aviary/internal/api/config"
	"Aviary/internal/api/dto"
	"Aviary/internal/pkg/consts"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

func init() {
	validate = validator.New()
}

// FieldErrors 按字段聚合的校验失败信息，键为 "{field}Errors"
type FieldErrors map[string][]string

func (e FieldErrors) add(field, msg string) {
	key := field + "Errors"
	e[key] = append(e[key], msg)
}

// ValidateRegister 注册参数校验，返回 nil 表示通过
func ValidateRegister(d *dto.RegisterDTO) FieldErrors {
	errs := FieldErrors{}
	checkUsername(errs, d.Username)
	checkPassword(errs, "password", d.Password)
	if err := validate.Var(d.Email, "required,email"); err != nil {
		errs.add("email", "邮箱格式不正确")
	}
	if len(d.Nickname) > 50 {
		errs.add("nickname", "昵称不能超过 50 个字符")
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateProfile 资料更新补丁校验，仅检查携带的字段
func ValidateProfile(d *dto.UpdateProfileDTO) FieldErrors {
	errs := FieldErrors{}
	if d.Username != nil {
		checkUsername(errs, *d.Username)
	}
	if d.Email != nil {
		if err := validate.Var(*d.Email, "required,email"); err != nil {
			errs.add("email", "邮箱格式不正确")
		}
	}
	if d.Nickname != nil && len(*d.Nickname) > 50 {
		errs.add("nickname", "昵称不能超过 50 个字符")
	}
	if d.Bio != nil && len(*d.Bio) > 160 {
		errs.add("bio", "简介不能超过 160 个字符")
	}
	if d.Avatar != nil && !ValidImageURL(*d.Avatar) {
		errs.add("avatar", "头像链接不在允许的来源内")
	}
	if d.Header != nil && !ValidImageURL(*d.Header) {
		errs.add("header", "背景图链接不在允许的来源内")
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateContentBody 内容正文校验：文本与图片至少其一，文本限长
func ValidateContentBody(text, image string) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(text) == "" && image == "" {
		errs.add("text", "正文与图片不能同时为空")
	}
	if len([]rune(text)) > consts.MaxBodyTextLen {
		errs.add("text", fmt.Sprintf("正文不能超过 %d 个字符", consts.MaxBodyTextLen))
	}
	if image != "" && !ValidImageURL(image) {
		errs.add("image", "图片链接不在允许的来源内")
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidatePasswordChange 改密参数校验
func ValidatePasswordChange(d *dto.ChangePasswordDTO) FieldErrors {
	errs := FieldErrors{}
	if d.OldPassword == "" {
		errs.add("oldPassword", "原密码不能为空")
	}
	checkPassword(errs, "newPassword", d.NewPassword)
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidImageURL 图片外链检查：空值与哨兵值 "clear" 直接放行，
// 其余必须是合法 URL 且来源在白名单内 (白名单为空时仅校验 URL 格式)
func ValidImageURL(raw string) bool {
	if raw == "" || raw == consts.ImageClearSentinel {
		return true
	}
	if err := validate.Var(raw, "url"); err != nil {
		return false
	}
	origins := config.Cfg.Image.AllowedOrigins
	if len(origins) == 0 {
		return true
	}
	for _, origin := range origins {
		if strings.HasPrefix(raw, origin) {
			return true
		}
	}
	return false
}

func checkUsername(errs FieldErrors, username string) {
	if len(username) < 3 || len(username) > 20 {
		errs.add("username", "用户名长度需在 3 到 20 之间")
		return
	}
	if !usernamePattern.MatchString(username) {
		errs.add("username", "用户名仅允许字母、数字与下划线")
	}
}

func checkPassword(errs FieldErrors, field, password string) {
	if len(password) < 6 || len(password) > 64 {
		errs.add(field, "密码长度需在 6 到 64 之间")
	}
}
