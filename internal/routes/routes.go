package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/nushka/internal/config"
	"github.com/example/nushka/internal/handlers"
	"github.com/example/nushka/internal/middleware"
	"github.com/example/nushka/internal/services"
	"github.com/example/nushka/pkg/rabbitmq"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config, events *rabbitmq.Client) {
	telegramService := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat)
	mailService := services.NewMailService(cfg.MailAPIURL, cfg.MailAPIKey, cfg.MailFrom)
	upstreamService := services.NewUpstreamService(cfg.UpstreamAPIURL)
	cartService := services.NewCartService(db)
	orderService := services.NewOrderService(db, cartService, telegramService, events)

	authHandler := handlers.NewAuthHandler(db, cfg, cartService, mailService)
	productHandler := handlers.NewProductHandler(db)
	cartHandler := handlers.NewCartHandler(db, cartService)
	orderHandler := handlers.NewOrderHandler(db, cartService, orderService)
	profileHandler := handlers.NewProfileHandler(db)
	adminHandler := handlers.NewAdminHandler(db, orderService)
	proxyHandler := handlers.NewProxyHandler(upstreamService)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/otp/send", authHandler.SendOTP)
	auth.Post("/otp/verify", authHandler.VerifyOTP)
	auth.Get("/me", middleware.AuthMiddleware(cfg), authHandler.Me)

	// Catalog
	products := api.Group("/products")
	products.Get("/", productHandler.ListProducts)
	products.Get("/:id", productHandler.GetProduct)

	// Upstream proxy
	proxy := api.Group("/proxy")
	proxy.All("/", proxyHandler.Proxy)
	proxy.All("/*", proxyHandler.Proxy)

	// Cart and wishlist, shared by guests and signed-in users
	cart := api.Group("/cart", middleware.OptionalAuthMiddleware(cfg))
	cart.Get("/", cartHandler.GetCart)
	cart.Put("/", cartHandler.SyncCart)
	cart.Delete("/", cartHandler.ClearCart)
	cart.Post("/items", cartHandler.AddItem)
	cart.Put("/items/:productId", cartHandler.UpdateItem)
	cart.Delete("/items/:productId", cartHandler.RemoveItem)
	cart.Post("/wishlist", cartHandler.AddWishlistItem)
	cart.Delete("/wishlist/:productId", cartHandler.RemoveWishlistItem)

	// Checkout works for guests (with a guest token) and users alike
	api.Post("/orders", middleware.OptionalAuthMiddleware(cfg), orderHandler.CreateOrder)
	api.Get("/orders/track", orderHandler.TrackOrder)

	// Protected routes
	protected := api.Group("", middleware.AuthMiddleware(cfg))

	protected.Get("/orders", orderHandler.ListOrders)
	protected.Get("/orders/:id", orderHandler.GetOrder)

	protected.Get("/profile", profileHandler.GetProfile)
	protected.Put("/profile", profileHandler.UpdateProfile)
	protected.Get("/profile/addresses", profileHandler.ListAddresses)
	protected.Post("/profile/addresses", profileHandler.CreateAddress)
	protected.Put("/profile/addresses/:id", profileHandler.UpdateAddress)
	protected.Delete("/profile/addresses/:id", profileHandler.DeleteAddress)

	// Admin back-office
	admin := api.Group("/admin", middleware.AuthMiddleware(cfg), middleware.AdminMiddleware())
	admin.Get("/stats", adminHandler.DashboardStats)
	admin.Get("/orders", adminHandler.ListAllOrders)
	admin.Put("/orders/:id/status", adminHandler.UpdateOrderStatus)
	admin.Post("/orders/:id/payment", adminHandler.ProcessPayment)
	admin.Post("/products", productHandler.CreateProduct)
	admin.Put("/products/:id", productHandler.UpdateProduct)
	admin.Delete("/products/:id", productHandler.DeleteProduct)
}
