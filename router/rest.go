package router

import (
	"swappo-chat-service/chat"
	"swappo-chat-service/controller"
	"swappo-chat-service/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func Rest(app *fiber.App, chatService *chat.Service) {
	api := app.Group("/v1", logger.New())

	// Chat
	room := api.Group("/chat", middleware.JWT(), middleware.OTP())
	room.Get("/inbox", controller.ChatInbox(chatService))
	room.Get("/rooms/:peer/messages", controller.ChatRoomMessages(chatService))
	room.Post("/rooms/:peer/messages", controller.ChatSendMessage(chatService))
	room.Post("/rooms/:peer/read", controller.ChatMarkRead(chatService))

	// Auth
	auth := api.Group("/auth")
	auth.Post("/signup", controller.AuthSignup)
	auth.Post("/signin", controller.AuthSignin)
	auth.Post("/token/renew", controller.AuthTokenRenew)
	auth.Post("/2fa/secret", middleware.JWT(), middleware.OTP(), controller.AuthOtpSecret)
	auth.Post("/2fa/verify", middleware.JWT(), middleware.OTP(), controller.AuthOtpVerify)
	auth.Post("/2fa/validate", middleware.JWT(), controller.AuthOtpValidate)
	auth.Post("/2fa/disable", middleware.JWT(), middleware.OTP(), controller.AuthOtpDisable)

	// User
	user := api.Group("/user", middleware.JWT(), middleware.OTP())
	user.Get("/profile", controller.UserProfile)
	user.Put("/profile", controller.UserUpdateProfile)

	// Admin
	admin := api.Group("/admin", middleware.JWT(), middleware.OTP(), middleware.RBAC())
	admin.Get("/chat/rooms/:a/:b", controller.AdminRoomTranscript(chatService))
}
