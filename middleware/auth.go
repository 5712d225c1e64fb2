package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const UserIDKey = "UserID"

type AccessVerifier interface {
	VerifyAccess(token string) (uint, error)
}

// 檢查Authorization: Bearer <token>，驗證失敗則中止請求
func RequireAccessToken(tokens AccessVerifier, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header missing",
			})
			return
		}

		userID, err := tokens.VerifyAccess(bearerToken(authHeader))
		if err != nil {
			logger.WarnContext(c.Request.Context(), "access token rejected", "path", c.FullPath(), "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "access token expired",
			})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// 取出"Bearer"之後的token，格式不符時回傳空字串
func bearerToken(header string) string {
	fields := strings.Fields(header)
	if len(fields) != 2 || !strings.EqualFold(fields[0], "Bearer") {
		return ""
	}
	return fields[1]
}
