package routes

import (
	"parcel-delivery/config"
	"parcel-delivery/constants"
	authController "parcel-delivery/controllers/auth"
	parcelController "parcel-delivery/controllers/parcel"
	userController "parcel-delivery/controllers/user"
	"parcel-delivery/logger"
	"parcel-delivery/middleware"
	parcelService "parcel-delivery/services/parcel"
	"parcel-delivery/services/token"
	userService "parcel-delivery/services/user"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, cfg *config.Config, db *gorm.DB, redisClient *redis.Client) {
	asyncLogger := logger.NewAsyncLogger(db)

	tokens := token.NewService(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.JWTAccessExpires, cfg.JWTRefreshExpires)
	tokenStore := token.NewStore(redisClient, "refresh_token")
	users := userService.NewService(db, cfg.BcryptCost)
	parcels := parcelService.NewService(db)

	auth := authController.NewAuthController(cfg, users, tokens, tokenStore, asyncLogger)
	user := userController.NewUserController(users, asyncLogger)
	parcel := parcelController.NewParcelController(parcels, asyncLogger)

	authMW := middleware.NewAuthMiddleware(tokens)

	// Start the async logger processing goroutine
	go asyncLogger.ProcessLog()

	/*=============================================================================
	| Public Routes
	===============================================================================*/
	api := app.Group("/api")
	api.Post("/auth/login", auth.Login)
	api.Post("/auth/refresh-token", auth.RefreshToken)
	api.Post("/users/register", user.Register)

	/*=============================================================================
	| Auth Routes
	===============================================================================*/
	authGroup := api.Group("/auth").Use(authMW.RequireAuthentication())
	authGroup.Post("/logout", auth.Logout)
	authGroup.Post("/change-password", auth.ChangePassword)
	authGroup.Get("/profile", user.GetProfile)

	/*=============================================================================
	| User Routes
	===============================================================================*/
	api.Get("/users", authMW.RequireRoles(constants.RoleAdmin), user.List)
	api.Patch("/users/:id", authMW.RequireAuthentication(), user.Update)

	/*=============================================================================
	| Parcel Routes
	===============================================================================*/
	parcelGroup := api.Group("/parcels")

	// Public tracking lookup, registered before the :id routes.
	parcelGroup.Get("/track/:trackingId", parcel.Track)

	parcelGroup.Post("/", authMW.RequireRoles(constants.RoleSender), parcel.Store)
	parcelGroup.Get("/", authMW.RequireRoles(constants.RoleAdmin), parcel.List)
	parcelGroup.Get("/stats", authMW.RequireRoles(constants.RoleAdmin), parcel.Stats)
	parcelGroup.Get("/my-parcels", authMW.RequireRoles(constants.RoleSender), parcel.MyParcels)
	parcelGroup.Get("/incoming-parcels", authMW.RequireRoles(constants.RoleReceiver), parcel.IncomingParcels)

	parcelGroup.Get("/:id", authMW.RequireRoles(constants.RoleSender, constants.RoleReceiver, constants.RoleAdmin), parcel.GetSingle)
	parcelGroup.Patch("/:id/cancel", authMW.RequireRoles(constants.RoleSender), parcel.Cancel)
	parcelGroup.Patch("/:id/status", authMW.RequireRoles(constants.RoleAdmin), parcel.UpdateStatus)
	parcelGroup.Patch("/:id/confirm-delivery", authMW.RequireRoles(constants.RoleReceiver), parcel.ConfirmDelivery)
	parcelGroup.Patch("/:id/block", authMW.RequireRoles(constants.RoleAdmin), parcel.Block)
	parcelGroup.Patch("/:id/unblock", authMW.RequireRoles(constants.RoleAdmin), parcel.Unblock)
	parcelGroup.Delete("/:id", authMW.RequireRoles(constants.RoleAdmin), parcel.Delete)
}
