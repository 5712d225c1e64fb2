package handlers

import (
	"Storefront/google"
	"Storefront/metrics"
	"Storefront/models"
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// 以Google ID Token登入，第一次登入時建立帳號
func (a *App) GoogleLoginHandler(c *gin.Context) {
	ctx := c.Request.Context()
	var req struct {
		Credential string `json:"respons"`
	}
	_ = c.ShouldBindJSON(&req)

	claims, err := a.Google.Verify(ctx, req.Credential)
	if err != nil {
		a.Logger.WarnContext(ctx, "google login failed: verify token", "error", err)
		a.Metrics.Login("google", metrics.ResultFailure)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Google login error"})
		return
	}

	user, created, err := a.findOrCreateGoogleUser(ctx, claims)
	if err != nil {
		a.Metrics.Login("google", metrics.ResultError)
		a.internalError(c, "google login failed: store", err)
		return
	}

	accessToken, refreshToken, err := a.Tokens.IssueTokens(user.ID)
	if err != nil {
		a.Metrics.Login("google", metrics.ResultError)
		a.internalError(c, "google login failed: issue tokens", err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	a.Logger.InfoContext(ctx, "google login success", "user_id", user.ID, "created", created)
	a.Metrics.Login("google", metrics.ResultSuccess)
	c.JSON(status, gin.H{
		"picture":      claims.Picture,
		"name":         claims.Name,
		"email":        claims.Email,
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
		"role":         user.Role,
	})
}

func (a *App) findOrCreateGoogleUser(ctx context.Context, claims *google.Claims) (*models.GoogleUser, bool, error) {
	db := a.DB.WithContext(ctx)

	var user models.GoogleUser
	err := db.First(&user, "email = ?", claims.Email).Error
	if err == nil {
		return &user, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	user = models.GoogleUser{
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
		Sub:     claims.Subject,
		Role:    models.DefaultRole,
	}
	if err := db.Create(&user).Error; err != nil {
		//同一個Email同時第一次登入，改用已建立的帳號
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			var existing models.GoogleUser
			if err := db.First(&existing, "email = ?", claims.Email).Error; err != nil {
				return nil, false, err
			}
			return &existing, false, nil
		}
		return nil, false, err
	}
	return &user, true, nil
}
