package public

import (
	"github.com/khxzi/passport/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

// respondRawError 按对外契约返回 {"error": msg}，HTTP 状态码承载语义。
func respondRawError(c *gin.Context, status int, msg string, err error) {
	if err != nil {
		shared.RequestLog(c).Errorw("handler_error",
			"status", status,
			"message", msg,
			"error", err,
		)
	}
	c.JSON(status, gin.H{"error": msg})
}

func respondError(c *gin.Context, code int, msg string, err error) {
	shared.RespondError(c, code, msg, err)
}
