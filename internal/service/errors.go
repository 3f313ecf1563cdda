package service

import (
	"errors"
	"fmt"
)

// 认证相关错误
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidPassword    = errors.New("current password is incorrect")
	ErrWeakPassword       = errors.New("password does not meet the security policy")
	ErrNotFound           = errors.New("record not found")
)

// 验证码相关错误
var (
	ErrCodeCooldown = errors.New("verification code requested too frequently")
	ErrCodeNotFound = errors.New("no verification code found, please request a new one")
	ErrCodeExpired  = errors.New("verification code expired, please request a new one")
	ErrCodeMismatch = errors.New("invalid verification code")
	ErrCodeDelivery = errors.New("failed to deliver verification code")
)

// 验证申请相关错误
var (
	ErrRequestNotFound  = errors.New("verification request not found")
	ErrRequestExists    = errors.New("verification request already exists")
	ErrRequestFinalized = errors.New("verification request already finalized")
	ErrMissingDiscordID = errors.New("discord id is required")
)

// 人机验证相关错误
var (
	ErrCaptchaRequired      = errors.New("captcha is required")
	ErrCaptchaInvalid       = errors.New("captcha verification failed")
	ErrCaptchaConfigInvalid = errors.New("captcha is not configured")
	ErrCaptchaVerifyFailed  = errors.New("captcha provider unreachable")
)

// CooldownError 冷却期错误，携带剩余等待秒数
type CooldownError struct {
	RemainingSeconds int
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("please wait %d seconds before requesting a new code", e.RemainingSeconds)
}

// Is 使 errors.Is(err, ErrCodeCooldown) 成立
func (e *CooldownError) Is(target error) bool {
	return target == ErrCodeCooldown
}

// RequestFinalizedError 申请已终结错误，携带当前状态
type RequestFinalizedError struct {
	Status string
}

func (e *RequestFinalizedError) Error() string {
	return fmt.Sprintf("verification request already %s", e.Status)
}

// Is 使 errors.Is(err, ErrRequestFinalized) 成立
func (e *RequestFinalizedError) Is(target error) bool {
	return target == ErrRequestFinalized
}
