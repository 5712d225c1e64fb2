package handlers

import (
	"Storefront/models"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// 前端送來的map可能是字串或JSON，統一存成文字
func cartContents(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	text := strings.TrimSpace(string(raw))
	if text == "null" {
		return ""
	}
	return text
}

// 空字串、[]、{}都代表空購物車
func isEmptyCart(contents string) bool {
	return contents == "" || contents == "[]" || contents == "{}"
}

// 購物車以Google帳號的名稱查詢使用者，找不到時回傳(nil, nil)
func findGoogleUserByName(db *gorm.DB, name string) (*models.GoogleUser, error) {
	var user models.GoogleUser
	err := db.First(&user, "name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// 新增或覆蓋使用者的購物車
func (a *App) CartUpdateHandler(c *gin.Context) {
	ctx := c.Request.Context()
	var req struct {
		User string          `json:"user"`
		Map  json.RawMessage `json:"map"`
	}
	_ = c.ShouldBindJSON(&req)

	contents := cartContents(req.Map)
	if req.User == "" || isEmptyCart(contents) {
		a.Logger.InfoContext(ctx, "cart update: cart empty")
		c.JSON(http.StatusOK, gin.H{"success": "cartempty"})
		return
	}

	db := a.DB.WithContext(ctx)
	user, err := findGoogleUserByName(db, req.User)
	if err != nil {
		a.internalError(c, "cart update failed: user lookup", err)
		return
	}
	if user == nil {
		a.Logger.WarnContext(ctx, "cart update failed: user not found", "user", req.User)
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var cart models.Cart
	err = db.First(&cart, "userid = ?", user.ID).Error
	switch {
	case err == nil:
		if err := db.Model(&cart).Update("map", contents).Error; err != nil {
			a.internalError(c, "cart update failed: save", err)
			return
		}
		a.Logger.InfoContext(ctx, "cart update success: updated", "user_id", user.ID)
		c.JSON(http.StatusOK, gin.H{"success": "updates successfully"})
	case errors.Is(err, gorm.ErrRecordNotFound):
		cart = models.Cart{UserID: user.ID, Map: contents}
		if err := db.Create(&cart).Error; err != nil {
			a.internalError(c, "cart update failed: create", err)
			return
		}
		a.Logger.InfoContext(ctx, "cart update success: created", "user_id", user.ID)
		c.JSON(http.StatusOK, gin.H{"success": "created successfully"})
	default:
		a.internalError(c, "cart update failed: cart lookup", err)
	}
}

// 查詢使用者的購物車
func (a *App) GetCartHandler(c *gin.Context) {
	ctx := c.Request.Context()
	//前端送的欄位名稱是uesr
	var req struct {
		Uesr string `json:"uesr"`
		User string `json:"user"`
	}
	_ = c.ShouldBindJSON(&req)
	name := req.Uesr
	if name == "" {
		name = req.User
	}

	if name == "" {
		c.JSON(http.StatusOK, gin.H{"fail": "failed"})
		return
	}

	db := a.DB.WithContext(ctx)
	user, err := findGoogleUserByName(db, name)
	if err != nil {
		a.internalError(c, "get cart failed: user lookup", err)
		return
	}
	if user == nil {
		a.Logger.InfoContext(ctx, "get cart failed: user not found", "user", name)
		c.JSON(http.StatusOK, gin.H{"fail": "failed"})
		return
	}

	var cart models.Cart
	err = db.First(&cart, "userid = ?", user.ID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, gin.H{"map": nil})
			return
		}
		a.internalError(c, "get cart failed: cart lookup", err)
		return
	}

	a.Logger.InfoContext(ctx, "get cart success", "user_id", user.ID)
	c.JSON(http.StatusOK, gin.H{"map": cart})
}
