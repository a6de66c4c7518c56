package errors

import (
	"github.com/gin-gonic/gin"
)

// Err 将错误映射为 HTTP 响应并结束请求。
// 调试模式下输出完整错误链，否则只输出对外信息。
func Err(c *gin.Context, err error) {
	if err == nil {
		return
	}
	code := Code(err)
	if gin.IsDebugging() {
		c.String(code, "%+v", err)
		c.Abort()
		return
	}
	c.String(code, "%s", err.Error())
	c.Abort()
}
