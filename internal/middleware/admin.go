package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminAPIKey 管理接口认证中间件，校验 X-API-Key 请求头
func AdminAPIKey(expected string, log *zap.Logger) gin.HandlerFunc {
	want := []byte(expected)

	return func(c *gin.Context) {
		apiKey := c.GetHeader("X-API-Key")
		if apiKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code": http.StatusUnauthorized,
				"msg":  "缺少 API Key",
			})
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(apiKey), want) != 1 {
			log.Warn("invalid admin API key", zap.String("ip", c.ClientIP()))
			c.JSON(http.StatusUnauthorized, gin.H{
				"code": http.StatusUnauthorized,
				"msg":  "API Key 无效",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
