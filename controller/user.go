package controller

import (
	"context"

	"swappo-chat-service/database"
	"swappo-chat-service/event/listener"
	"swappo-chat-service/model"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

type UserUpdateProfileInput struct {
	AvatarURL string `json:"avatar_url"`
}

func UserProfile(c *fiber.Ctx) error {
	user := c.Locals("user").(*jwt.Token)
	claims := user.Claims.(jwt.MapClaims)

	userModel := new(model.User)

	if err := database.Postgres.First(&userModel, claims["id"]).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Internal server error",
			"data":    nil,
		})
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": nil,
		"data": fiber.Map{
			"id":       userModel.ID,
			"created":  userModel.CreatedAt.Unix(),
			"username": userModel.Username,
			"email":    userModel.Email,
			"role":     userModel.Role,
			"avatar":   userModel.AvatarURL,
			"otp":      userModel.Otp_enabled,
		},
	})
}

func UserUpdateProfile(c *fiber.Ctx) error {
	input := new(UserUpdateProfileInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Review your input",
			"data":    nil,
		})
	}

	user := c.Locals("user").(*jwt.Token)
	claims := user.Claims.(jwt.MapClaims)

	userModel := new(model.User)
	if err := database.Postgres.First(&userModel, claims["id"]).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Internal server error",
			"data":    nil,
		})
	}

	userModel.AvatarURL = input.AvatarURL
	if err := database.Postgres.Save(&userModel).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Internal server error",
			"data":    nil,
		})
	}

	// Cached inbox joins must not keep serving the old avatar.
	if listener.Profiles != nil {
		listener.Profiles.Invalidate(context.Background(), userModel.ID)
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": nil,
		"data":    nil,
	})
}
