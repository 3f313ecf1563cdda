package public

import "github.com/khxzi/passport/internal/provider"

// Handler 前台/公开接口处理器入口
// 说明：验证前台与 OAuth 回调的响应体保持对外原始契约，不走统一信封。
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
