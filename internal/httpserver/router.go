package httpserver

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization", sessionHeader},
		ExposeHeaders:   []string{sessionHeader},
		MaxAge:          12 * time.Hour,
	}))
	router.Use(sessionMiddleware(), identifyMiddleware(deps.AccountSvc, deps.RoleSvc))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &handlers{deps: deps}

	router.POST("/auth/register", h.register)
	router.POST("/auth/login", h.login)

	router.GET("/products", h.listProducts)
	router.GET("/products/:id", h.getProduct)
	router.GET("/categories", h.listCategories)
	router.GET("/media/:file", h.serveMedia)

	router.GET("/cart", h.getCart)
	router.POST("/cart/items/:productID", h.addCartItem)
	router.PUT("/cart/items/:productID", h.setCartItem)
	router.DELETE("/cart/items/:productID", h.removeCartItem)
	router.DELETE("/cart", h.clearCart)

	authed := router.Group("", requireAuth())
	{
		authed.POST("/auth/logout", h.logout)
		authed.GET("/me", h.me)
		authed.PUT("/me/profile", h.updateProfile)
		authed.POST("/me/password", h.changePassword)

		authed.POST("/checkout", h.checkout)
		authed.GET("/orders", h.listMyOrders)
		authed.GET("/orders/:number", h.getOrder)
		authed.GET("/orders/:number/invoice", h.viewInvoice)
		authed.GET("/orders/:number/invoice/export", h.exportInvoice)

		authed.POST("/messages", h.sendMessage)
		authed.POST("/suggestions", h.sendSuggestion)
		authed.GET("/messages/thread/:userID", h.thread)
		authed.GET("/messages/unread", h.unread)
		authed.GET("/messages/inbox", h.inbox)
	}

	courier := router.Group("/courier", requireAuth(), requireCourier())
	{
		courier.GET("/orders", h.courierOrders)
		courier.POST("/orders/:id/claim", h.claimOrder)
		courier.POST("/orders/:id/deliver", h.deliverOrder)
	}

	admin := router.Group("/admin", requireAuth(), requireAdmin())
	{
		admin.POST("/categories", h.createCategory)
		admin.PUT("/categories/:id", h.updateCategory)
		admin.DELETE("/categories/:id", h.deleteCategory)

		admin.POST("/products", h.createProduct)
		admin.PUT("/products/:id", h.updateProduct)
		admin.DELETE("/products/:id", h.deleteProduct)
		admin.POST("/products/:id/image", h.uploadProductImage)
		admin.DELETE("/products/:id/image", h.clearProductImage)
		admin.PUT("/products/:id/stock", h.setStock)
		admin.POST("/products/:id/stock/adjust", h.adjustStock)

		admin.GET("/orders", h.adminListOrders)
		admin.POST("/orders/:id/status", h.updateOrderStatus)
		admin.POST("/orders/:id/assign", h.assignCourier)

		admin.GET("/couriers", h.listCouriers)
		admin.POST("/couriers", h.createCourier)
		admin.GET("/couriers/:id", h.getCourier)
		admin.PUT("/couriers/:id", h.updateCourier)
		admin.POST("/couriers/:id/active", h.setCourierActive)

		admin.GET("/clients", h.listClients)
		admin.POST("/users/:id/active", h.setUserActive)
		admin.DELETE("/users/:id", h.deleteUser)

		admin.GET("/dashboard", h.dashboard)
		admin.GET("/reports/sales", h.salesReport)
	}

	return router, nil
}

type handlers struct {
	deps Deps
}
