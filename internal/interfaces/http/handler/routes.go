package handler

import "github.com/storefront/backend/internal/interfaces/http/router"

// Routes returns the catalog maintenance routes, mounted under /admin
func (h *CatalogHandler) Routes() *router.DomainGroup {
	admin := router.NewDomainGroup("admin", "/admin")
	admin.POST("/products", h.CreateProduct)
	admin.GET("/products/:id", h.GetProduct)
	admin.PATCH("/products/:id", h.UpdateProduct)
	admin.POST("/products/:id/activate", h.ActivateProduct)
	admin.POST("/products/:id/deactivate", h.DeactivateProduct)
	admin.POST("/products/:id/variations", h.AddVariation)
	admin.GET("/products/:id/variations", h.ListVariations)
	admin.PATCH("/variations/:id", h.UpdateVariation)
	admin.POST("/attributes", h.DefineAttribute)
	admin.GET("/attributes/:key", h.GetAttribute)
	return admin
}

// Routes returns the add-to-cart form routes
func (h *AttributeFormHandler) Routes() *router.DomainGroup {
	products := router.NewDomainGroup("products", "/products")
	products.GET("/:id/form", h.GetForm)
	products.POST("/:id/form", h.ChangeAttribute)
	return products
}

// CartRoutes returns the cart and checkout routes
func CartRoutes(cart *CartHandler, checkout *CheckoutHandler) *router.DomainGroup {
	carts := router.NewDomainGroup("carts", "/carts")
	carts.POST("", cart.CreateCart)
	carts.GET("/:id", cart.GetCart)
	carts.POST("/:id/items", cart.AddItem)

	steps := carts.Group("checkout", "/:id/checkout")
	steps.GET("", checkout.GetStep)
	steps.GET("/:step", checkout.GetStep)
	steps.POST("/:step", checkout.Submit)
	steps.POST("/:step/back", checkout.Back)
	return carts
}

// Routes returns the system information route
func (h *SystemHandler) Routes() *router.DomainGroup {
	return router.NewDomainGroup("system", "/system").GET("/info", h.GetSystemInfo)
}
