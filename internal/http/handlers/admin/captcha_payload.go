package admin

import handlershared "github.com/khxzi/passport/internal/http/handlers/shared"

// CaptchaPayloadRequest 验证码请求载荷。
type CaptchaPayloadRequest = handlershared.CaptchaPayloadRequest
