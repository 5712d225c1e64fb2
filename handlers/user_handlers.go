package handlers

import (
	"Storefront/metrics"
	"Storefront/models"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// 檢查使用者名稱是否重複
func IsUserNameExists(db *gorm.DB, username string) (bool, error) {
	var user models.User
	err := db.First(&user, "username = ?", username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// 檢查Email是否重複
func IsUserEmailExists(db *gorm.DB, email string) (bool, error) {
	var user models.User
	err := db.First(&user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// 以Email查詢使用者，找不到時回傳(nil, nil)
func findUserByEmail(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	err := db.First(&user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// 註冊使用者帳戶
func (a *App) SignupHandler(c *gin.Context) {
	ctx := c.Request.Context()
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
		Email    string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		a.Logger.WarnContext(ctx, "signup failed: incomplete data")
		a.Metrics.Signup(metrics.ResultFailure)
		c.JSON(http.StatusBadRequest, gin.H{"error": "incomplete data"})
		return
	}

	if !ValidateEmail(req.Email) {
		a.Logger.WarnContext(ctx, "signup failed: invalid email", "email", req.Email)
		a.Metrics.Signup(metrics.ResultFailure)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email"})
		return
	}

	if passwordTooLong(req.Password) {
		a.Logger.WarnContext(ctx, "signup failed: password too long", "email", req.Email)
		a.Metrics.Signup(metrics.ResultFailure)
		c.JSON(http.StatusBadRequest, gin.H{"error": "password too long"})
		return
	}

	//檢查Email是否重複
	exists, err := IsUserEmailExists(a.DB.WithContext(ctx), req.Email)
	if err != nil {
		a.Metrics.Signup(metrics.ResultError)
		a.internalError(c, "signup failed: email lookup", err)
		return
	}
	if exists {
		a.Logger.WarnContext(ctx, "signup failed: email already exists", "email", req.Email)
		a.Metrics.Signup(metrics.ResultFailure)
		c.JSON(http.StatusBadRequest, gin.H{"fail": "Email already exists"})
		return
	}

	//檢查使用者名稱是否重複
	exists, err = IsUserNameExists(a.DB.WithContext(ctx), req.Username)
	if err != nil {
		a.Metrics.Signup(metrics.ResultError)
		a.internalError(c, "signup failed: username lookup", err)
		return
	}
	if exists {
		a.Logger.WarnContext(ctx, "signup failed: username already exists", "username", req.Username)
		a.Metrics.Signup(metrics.ResultFailure)
		c.JSON(http.StatusBadRequest, gin.H{"fail": "Username already exists"})
		return
	}

	hashedPassword, err := a.hashPassword(req.Password)
	if err != nil {
		a.Metrics.Signup(metrics.ResultError)
		a.internalError(c, "signup failed: hash password", err)
		return
	}

	newUser := models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hashedPassword,
		Role:     models.DefaultRole,
	}
	if err := a.DB.WithContext(ctx).Create(&newUser).Error; err != nil {
		//同時註冊時由unique index擋下
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			a.Logger.WarnContext(ctx, "signup failed: duplicate user", "username", req.Username)
			a.Metrics.Signup(metrics.ResultFailure)
			c.JSON(http.StatusBadRequest, gin.H{"fail": "User already exists"})
			return
		}
		a.Metrics.Signup(metrics.ResultError)
		a.internalError(c, "signup failed: create user", err)
		return
	}

	a.Logger.InfoContext(ctx, "signup success", "user_id", newUser.ID, "username", newUser.Username)
	a.Metrics.Signup(metrics.ResultSuccess)
	c.JSON(http.StatusCreated, gin.H{"success": "Data saved successfully"})
}

// 以Email和密碼登入，成功後回傳Access Token和Refresh Token
func (a *App) LoginHandler(c *gin.Context) {
	ctx := c.Request.Context()
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		a.Logger.WarnContext(ctx, "login failed: incomplete data")
		a.Metrics.Login("local", metrics.ResultFailure)
		c.JSON(http.StatusBadRequest, gin.H{"error": "incomplete data"})
		return
	}

	//前端的username欄位填的是Email
	user, err := findUserByEmail(a.DB.WithContext(ctx), req.Username)
	if err != nil {
		a.Metrics.Login("local", metrics.ResultError)
		a.internalError(c, "login failed: user lookup", err)
		return
	}
	if user == nil {
		a.Logger.WarnContext(ctx, "login failed: user not found", "email", req.Username)
		a.Metrics.Login("local", metrics.ResultFailure)
		c.JSON(http.StatusBadRequest, gin.H{"fail": "user not found"})
		return
	}

	if !checkPassword(user.Password, req.Password) {
		a.Logger.WarnContext(ctx, "login failed: wrong password", "email", req.Username)
		a.Metrics.Login("local", metrics.ResultFailure)
		c.JSON(http.StatusBadRequest, gin.H{"fail": "wrong password"})
		return
	}

	accessToken, refreshToken, err := a.Tokens.IssueTokens(user.ID)
	if err != nil {
		a.Metrics.Login("local", metrics.ResultError)
		a.internalError(c, "login failed: issue tokens", err)
		return
	}

	a.Logger.InfoContext(ctx, "login success", "user_id", user.ID)
	a.Metrics.Login("local", metrics.ResultSuccess)
	c.JSON(http.StatusCreated, gin.H{
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
		"user":         user.Username,
		"role":         user.Role,
	})
}

// 以Refresh Token換發新的Access Token
func (a *App) RefreshAccessTokenHandler(c *gin.Context) {
	ctx := c.Request.Context()
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	_ = c.ShouldBindJSON(&req)
	if req.RefreshToken == "" {
		a.Metrics.Refresh(metrics.ResultFailure)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No refresh token provided"})
		return
	}

	accessToken, userID, err := a.Tokens.RefreshAccess(req.RefreshToken)
	if err != nil {
		a.Logger.WarnContext(ctx, "refresh access token failed", "error", err)
		a.Metrics.Refresh(metrics.ResultFailure)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh token expired"})
		return
	}

	a.Logger.InfoContext(ctx, "refresh access token success", "user_id", userID)
	a.Metrics.Refresh(metrics.ResultSuccess)
	c.JSON(http.StatusOK, gin.H{"accessToken": accessToken})
}

// 查詢使用者列表(需要Access Token)
func (a *App) UserDataHandler(c *gin.Context) {
	users := []models.User{}
	if err := a.DB.WithContext(c.Request.Context()).Order("id").Find(&users).Error; err != nil {
		a.internalError(c, "user data failed", err)
		return
	}

	a.Logger.InfoContext(c.Request.Context(), "user data success", "count", len(users))
	c.JSON(http.StatusOK, users)
}

// 產生驗證碼並寄送到使用者信箱
func (a *App) ChangePasswordOTPHandler(c *gin.Context) {
	ctx := c.Request.Context()
	var req struct {
		Email string `json:"email"`
	}
	_ = c.ShouldBindJSON(&req)

	var user *models.User
	var err error
	if req.Email != "" {
		user, err = findUserByEmail(a.DB.WithContext(ctx), req.Email)
		if err != nil {
			a.Metrics.OTPRequest(metrics.ResultError)
			a.internalError(c, "password otp failed: user lookup", err)
			return
		}
	}
	if user == nil {
		a.Logger.WarnContext(ctx, "password otp failed: user not found", "email", req.Email)
		a.Metrics.OTPRequest(metrics.ResultFailure)
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	otp, err := generateOTP()
	if err != nil {
		a.Metrics.OTPRequest(metrics.ResultError)
		a.internalError(c, "password otp failed: generate", err)
		return
	}
	if err := a.DB.WithContext(ctx).Model(user).Update("otp", otp).Error; err != nil {
		a.Metrics.OTPRequest(metrics.ResultError)
		a.internalError(c, "password otp failed: save", err)
		return
	}

	if err := a.Mailer.Send(ctx, user.Email, "Forgot password OTP", fmt.Sprintf("Your OTP is %d", otp)); err != nil {
		a.Metrics.OTPRequest(metrics.ResultError)
		a.internalError(c, "password otp failed: send mail", err)
		return
	}

	a.Logger.InfoContext(ctx, "password otp generated", "user_id", user.ID)
	a.Metrics.OTPRequest(metrics.ResultSuccess)
	c.JSON(http.StatusOK, gin.H{"success": "OTP sent"})
}

// 驗證碼正確後清除，避免重複使用
func (a *App) CheckOTPHandler(c *gin.Context) {
	ctx := c.Request.Context()
	var req struct {
		Email string `json:"email"`
		Otp   *int   `json:"otp"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Otp == nil {
		a.Logger.WarnContext(ctx, "check otp failed: bad request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid OTP"})
		return
	}

	user, err := findUserByEmail(a.DB.WithContext(ctx), req.Email)
	if err != nil {
		a.internalError(c, "check otp failed: user lookup", err)
		return
	}
	if user == nil || user.Otp == nil || *user.Otp != *req.Otp {
		a.Logger.WarnContext(ctx, "check otp failed: wrong otp", "email", req.Email)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid OTP"})
		return
	}

	if err := a.DB.WithContext(ctx).Model(user).Update("otp", nil).Error; err != nil {
		a.internalError(c, "check otp failed: clear otp", err)
		return
	}

	a.Logger.InfoContext(ctx, "check otp success", "user_id", user.ID)
	c.JSON(http.StatusOK, gin.H{"success": "OTP verified"})
}

// 重設密碼
func (a *App) ChangePasswordHandler(c *gin.Context) {
	ctx := c.Request.Context()
	var req struct {
		Email       string `json:"email"`
		NewPassword string `json:"new_password"`
	}
	_ = c.ShouldBindJSON(&req)

	var user *models.User
	var err error
	if req.Email != "" {
		user, err = findUserByEmail(a.DB.WithContext(ctx), req.Email)
		if err != nil {
			a.Metrics.Reset(metrics.ResultError)
			a.internalError(c, "change password failed: user lookup", err)
			return
		}
	}
	if user == nil {
		a.Logger.WarnContext(ctx, "change password failed: user not found", "email", req.Email)
		a.Metrics.Reset(metrics.ResultFailure)
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if req.NewPassword == "" {
		a.Metrics.Reset(metrics.ResultFailure)
		c.JSON(http.StatusBadRequest, gin.H{"error": "incomplete data"})
		return
	}
	if passwordTooLong(req.NewPassword) {
		a.Logger.WarnContext(ctx, "change password failed: password too long", "user_id", user.ID)
		a.Metrics.Reset(metrics.ResultFailure)
		c.JSON(http.StatusBadRequest, gin.H{"error": "password too long"})
		return
	}

	hashedPassword, err := a.hashPassword(req.NewPassword)
	if err != nil {
		a.Metrics.Reset(metrics.ResultError)
		a.internalError(c, "change password failed: hash password", err)
		return
	}
	if err := a.DB.WithContext(ctx).Model(user).Update("password", hashedPassword).Error; err != nil {
		a.Metrics.Reset(metrics.ResultError)
		a.internalError(c, "change password failed: save", err)
		return
	}

	a.Logger.InfoContext(ctx, "change password success", "user_id", user.ID)
	a.Metrics.Reset(metrics.ResultSuccess)
	c.JSON(http.StatusOK, gin.H{"success": "Password changed"})
}
