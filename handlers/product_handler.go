package handlers

import (
	"Storefront/models"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// 前端表單的數字欄位可能是數字或數字字串
type formInt int

func (n *formInt) UnmarshalJSON(data []byte) error {
	text := string(data)
	if text == "null" {
		return nil
	}
	if strings.HasPrefix(text, `"`) {
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			*n = 0
			return nil
		}
	}
	v, err := strconv.Atoi(text)
	if err != nil {
		return fmt.Errorf("invalid number %s", data)
	}
	*n = formInt(v)
	return nil
}

type productForm struct {
	ImageSrc    string  `json:"image_src"`
	Description string  `json:"description"`
	Price       formInt `json:"price"`
	Title       string  `json:"title"`
}

// 只更新請求中有帶的欄位
type productUpdateForm struct {
	ID          formInt  `json:"id"`
	ImageSrc    *string  `json:"image_src"`
	Description *string  `json:"description"`
	Price       *formInt `json:"price"`
	Title       *string  `json:"title"`
}

func (f productUpdateForm) changes() map[string]interface{} {
	changes := map[string]interface{}{}
	if f.ImageSrc != nil && *f.ImageSrc != "" {
		changes["image_src"] = *f.ImageSrc
	}
	if f.Description != nil {
		changes["description"] = *f.Description
	}
	if f.Price != nil {
		changes["price"] = int(*f.Price)
	}
	if f.Title != nil {
		changes["title"] = *f.Title
	}
	return changes
}

// 商品異動後清除快取，失敗只記錄不影響回應
func (a *App) invalidateProducts(c *gin.Context) {
	if err := a.Products.Invalidate(c.Request.Context()); err != nil {
		a.Logger.WarnContext(c.Request.Context(), "invalidate product cache", "error", err)
	}
}

// 新增商品
func (a *App) CreateProductHandler(c *gin.Context) {
	ctx := c.Request.Context()
	var req struct {
		FormData *productForm `json:"formData"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.FormData == nil {
		a.Logger.WarnContext(ctx, "create product failed: bad request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error creating product"})
		return
	}

	product := models.Product{
		ImageSrc:    req.FormData.ImageSrc,
		Description: req.FormData.Description,
		Price:       int(req.FormData.Price),
		Title:       req.FormData.Title,
	}
	if err := a.DB.WithContext(ctx).Create(&product).Error; err != nil {
		a.Logger.ErrorContext(ctx, "create product failed", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error creating product"})
		return
	}

	a.invalidateProducts(c)
	a.Logger.InfoContext(ctx, "create product success", "product_id", product.ID)
	c.JSON(http.StatusOK, gin.H{"result": "Product created successfully"})
}

// 修改商品
func (a *App) UpdateProductHandler(c *gin.Context) {
	ctx := c.Request.Context()
	var req struct {
		FormData *productUpdateForm `json:"formData"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.FormData == nil || req.FormData.ID <= 0 {
		a.Logger.WarnContext(ctx, "update product failed: bad request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error updating product"})
		return
	}

	var product models.Product
	err := a.DB.WithContext(ctx).First(&product, "id = ?", int(req.FormData.ID)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			a.Logger.WarnContext(ctx, "update product failed: product not found", "product_id", req.FormData.ID)
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		a.Logger.ErrorContext(ctx, "update product failed: lookup", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error updating product"})
		return
	}

	if changes := req.FormData.changes(); len(changes) > 0 {
		if err := a.DB.WithContext(ctx).Model(&product).Updates(changes).Error; err != nil {
			a.Logger.ErrorContext(ctx, "update product failed: save", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Error updating product"})
			return
		}
	}

	a.invalidateProducts(c)
	a.Logger.InfoContext(ctx, "update product success", "product_id", product.ID)
	c.JSON(http.StatusOK, gin.H{"success": "Product updated successfully"})
}

// 刪除商品
func (a *App) DeleteProductHandler(c *gin.Context) {
	ctx := c.Request.Context()
	var req struct {
		ID formInt `json:"id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ID <= 0 {
		a.Logger.WarnContext(ctx, "delete product failed: bad request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"message": "Error deleting product"})
		return
	}

	var product models.Product
	err := a.DB.WithContext(ctx).First(&product, "id = ?", int(req.ID)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			a.Logger.WarnContext(ctx, "delete product failed: product not found", "product_id", req.ID)
			c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
			return
		}
		a.Logger.ErrorContext(ctx, "delete product failed: lookup", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"message": "Error deleting product"})
		return
	}

	if err := a.DB.WithContext(ctx).Delete(&product).Error; err != nil {
		a.Logger.ErrorContext(ctx, "delete product failed", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"message": "Error deleting product"})
		return
	}

	a.invalidateProducts(c)
	a.Logger.InfoContext(ctx, "delete product success", "product_id", req.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// 查詢商品列表(需要Access Token)，先讀Redis，沒有再從資料庫讀取並存入Redis
func (a *App) ProductDataHandler(c *gin.Context) {
	ctx := c.Request.Context()

	products, hit, err := a.Products.List(ctx)
	if err != nil {
		a.Logger.WarnContext(ctx, "read product cache", "error", err)
	}
	if hit {
		c.JSON(http.StatusOK, products)
		return
	}

	//版本要在讀資料庫之前取得
	version, versionErr := a.Products.Version(ctx)
	if versionErr != nil {
		a.Logger.WarnContext(ctx, "read product cache version", "error", versionErr)
	}

	products = []models.Product{}
	if err := a.DB.WithContext(ctx).Order("id").Find(&products).Error; err != nil {
		a.internalError(c, "product data failed", err)
		return
	}

	if versionErr == nil {
		if err := a.Products.Store(ctx, version, products); err != nil {
			a.Logger.WarnContext(ctx, "store product cache", "error", err)
		}
	}

	a.Logger.InfoContext(ctx, "product data success", "count", len(products))
	c.JSON(http.StatusOK, products)
}
