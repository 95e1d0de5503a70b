package handler

import (
	"net/http"

	"buyback-pos/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Handlers bundles every screen so the router can be set up in one place,
// in main and in tests alike. A nil handler leaves its routes out.
type Handlers struct {
	Public        *PublicHandler
	Auth          *AuthHandler
	Admin         *AdminHandler
	Products      *ProductHandler
	Inventory     *InventoryHandler
	Customers     *CustomerHandler
	Purchase      *PurchaseHandler
	PurchaseOrder *PurchaseOrderHandler
	Receipts      *ReceiptHandler
}

func (h *Handlers) Register(r *gin.Engine, tokens middleware.TokenValidator) {
	auth := middleware.AuthMiddleware

	if h.Public != nil {
		r.GET("/ping", h.Public.Ping)
		r.GET("/healthz", h.Public.Health)
		r.GET("/api/v1/public/site-info", h.Public.GetSiteInfo)
	}

	if h.Auth != nil {
		r.GET("/login", h.Auth.LoginPage)
		r.POST("/login", h.Auth.LoginForm)
		r.POST("/logout", auth(tokens), h.Auth.Logout)
		r.GET("/account/password", auth(tokens), h.Auth.PasswordPage)
		r.POST("/account/password", auth(tokens), h.Auth.PasswordForm)

		r.POST("/api/v1/auth/login", h.Auth.Login)
		r.PUT("/api/v1/user/password", auth(tokens), h.Auth.ChangePassword)
	}

	if h.Admin != nil {
		adminRoutes := r.Group("/api/v1/admin")
		adminRoutes.Use(auth(tokens, middleware.AdminRoles...))
		{
			adminRoutes.POST("/employees", h.Admin.CreateEmployee)
			adminRoutes.GET("/employees", h.Admin.ListEmployees)
			adminRoutes.PUT("/employees/:id", h.Admin.UpdateEmployee)
			adminRoutes.PUT("/employees/:id/status", h.Admin.UpdateEmployeeStatus)
			adminRoutes.PUT("/employees/:id/password", h.Admin.ResetEmployeePassword)
			adminRoutes.GET("/roles", h.Admin.ListRoles)
			adminRoutes.GET("/login-history", h.Admin.GetLoginHistory)
			adminRoutes.GET("/dashboard", h.Admin.GetDashboardStats)
		}
		r.GET("/admin/audit", auth(tokens, middleware.AdminRoles...), h.Admin.AuditLog)
	}

	if h.Products != nil {
		catalog := r.Group("/")
		catalog.Use(auth(tokens, middleware.CatalogRoles...))
		{
			catalog.GET("/products", h.Products.List)
			catalog.POST("/products", h.Products.Create)
			catalog.POST("/products/:id", h.Products.Update)
			catalog.POST("/products/:id/active", h.Products.SetActive)
			catalog.POST("/categories", h.Products.CreateCategory)
		}
	}

	if h.Inventory != nil {
		stock := r.Group("/inventory")
		stock.Use(auth(tokens, middleware.CatalogRoles...))
		{
			stock.GET("", h.Inventory.List)
			stock.POST("/sell", h.Inventory.Sell)
			stock.GET("/export", h.Inventory.Export)
			stock.GET("/:prodId", h.Inventory.Detail)
		}
	}

	if h.Customers != nil {
		customers := r.Group("/customers")
		customers.Use(auth(tokens, middleware.ReportingRoles...))
		{
			customers.GET("", h.Customers.List)
			customers.GET("/:id", h.Customers.Detail)
		}
	}

	if h.Purchase != nil {
		bill := r.Group("/purchase")
		bill.Use(auth(tokens, middleware.PurchaseRoles...))
		{
			bill.GET("", h.Purchase.Select)
			bill.POST("/open/delete", h.Purchase.DiscardOpen)
			bill.POST("/idcard/preview", h.Purchase.PreviewIDCard)
			bill.POST("/idcard/commit", h.Purchase.CommitIDCard)
			bill.POST("/anonymous/preview", h.Purchase.PreviewAnonymous)
			bill.POST("/anonymous/commit", h.Purchase.CommitAnonymous)
			bill.GET("/customers", h.Purchase.Customers)
			bill.POST("/customers/:id/open", h.Purchase.OpenForCustomer)
			bill.GET("/camera/status", h.Purchase.CameraStatus)

			bill.GET("/:id", h.Purchase.Bill)
			bill.GET("/:id/camera/live", h.Purchase.LiveCamera)
			bill.POST("/:id/items", h.Purchase.AddItem)
			bill.POST("/:id/items/preview", h.Purchase.PreviewItemPhoto)
			bill.POST("/:id/items/scale", h.Purchase.ReadScale)
			bill.POST("/:id/items/:itemId/price", h.Purchase.EditPrice)
			bill.POST("/:id/items/:itemId/delete", h.Purchase.DeleteItem)
			bill.POST("/:id/pay", h.Purchase.Pay)
			bill.POST("/:id/receipt", h.Purchase.PrintReceipt)
		}
	}

	if h.PurchaseOrder != nil {
		history := r.Group("/purchase-order")
		history.Use(auth(tokens, middleware.ReportingRoles...))
		{
			history.GET("", h.PurchaseOrder.List)
			history.GET("/export", h.PurchaseOrder.Export)
		}
	}

	if h.Receipts != nil {
		r.GET("/receipts", auth(tokens, middleware.ReportingRoles...), h.Receipts.List)
	}

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/products")
	})
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method == http.MethodGet {
			c.Redirect(http.StatusFound, "/products")
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
}
