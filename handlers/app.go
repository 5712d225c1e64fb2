package handlers

import (
	"Storefront/cache"
	"Storefront/google"
	"Storefront/jwt"
	"Storefront/mail"
	"Storefront/metrics"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// App 集中所有handler需要的依賴，於啟動時建立
type App struct {
	DB       *gorm.DB
	Tokens   *jwt.Service
	Products *cache.ProductCache
	Google   google.Verifier
	Mailer   mail.Sender
	Metrics  *metrics.Metrics
	Logger   *slog.Logger

	// 0代表bcrypt.DefaultCost
	BcryptCost int
}

func (a *App) bcryptCost() int {
	if a.BcryptCost == 0 {
		return bcrypt.DefaultCost
	}
	return a.BcryptCost
}

func (a *App) internalError(c *gin.Context, msg string, err error) {
	a.Logger.ErrorContext(c.Request.Context(), msg, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Internal server error",
	})
}

func HomeHandler(c *gin.Context) {
	c.String(http.StatusOK, "hosted success .....")
}

// 沒有被handler處理的panic統一回傳500
func RecoveryHandler(logger *slog.Logger) gin.RecoveryFunc {
	return func(c *gin.Context, recovered any) {
		logger.ErrorContext(c.Request.Context(), "panic recovered", "path", c.Request.URL.Path, "panic", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": "Something went wrong!",
		})
	}
}
