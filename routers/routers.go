package routers

import (
	"Storefront/handlers"
	"Storefront/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	AllowedOrigin string
	// nil時不提供/metrics
	Gatherer prometheus.Gatherer
}

func SetupRouters(app *handlers.App, opts Options) *gin.Engine {
	//建立Gin路由器
	router := gin.New()
	router.Use(
		middleware.RequestLogger(app.Logger),
		gin.CustomRecovery(handlers.RecoveryHandler(app.Logger)),
		middleware.CORS(opts.AllowedOrigin),
	)
	if err := router.SetTrustedProxies(nil); err != nil {
		app.Logger.Warn("set trusted proxies", "error", err)
	}

	router.GET("/", handlers.HomeHandler)
	if opts.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	////帳號
	router.POST("/signup", app.SignupHandler)
	router.POST("/login", app.LoginHandler)
	router.POST("/refresh_access_token", app.RefreshAccessTokenHandler)
	router.POST("/googlelogin", app.GoogleLoginHandler)

	////忘記密碼
	router.POST("/change_password_otp", app.ChangePasswordOTPHandler)
	router.POST("/check_otp", app.CheckOTPHandler)
	router.POST("/change_password", app.ChangePasswordHandler)

	////商品
	router.POST("/create_product_item", app.CreateProductHandler)
	router.POST("/update_product", app.UpdateProductHandler)
	router.POST("/delete_product_items", app.DeleteProductHandler)

	////購物車
	router.POST("/cart_update", app.CartUpdateHandler)
	router.POST("/getCart", app.GetCartHandler)

	////需要Access Token
	authRequired := router.Group("/")
	authRequired.Use(middleware.RequireAccessToken(app.Tokens, app.Logger))
	{
		//查詢使用者列表
		authRequired.GET("/user_data", app.UserDataHandler)
		//查詢商品列表
		authRequired.GET("/product_data", app.ProductDataHandler)
	}

	return router
}
