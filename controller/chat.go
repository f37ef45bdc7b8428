package controller

import (
	"errors"
	"strconv"

	"swappo-chat-service/chat"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

type ChatSendInput struct {
	Body string `json:"body"`
}

func localUserID(c *fiber.Ctx) uint {
	user := c.Locals("user").(*jwt.Token)
	claims := user.Claims.(jwt.MapClaims)
	id, _ := strconv.ParseUint(claims["id"].(string), 10, 64)
	return uint(id)
}

func paramID(c *fiber.Ctx, name string) uint {
	id, _ := strconv.ParseUint(c.Params(name), 10, 64)
	return uint(id)
}

func isPrecondition(err error) bool {
	return errors.Is(err, chat.ErrEmptyBody) ||
		errors.Is(err, chat.ErrNoIdentity) ||
		errors.Is(err, chat.ErrSamePeer)
}

func ChatInbox(service *chat.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		views, err := service.Inbox(c.UserContext(), localUserID(c))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"status":  "error",
				"message": "Internal server error",
				"data":    nil,
			})
		}
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": nil,
			"data":    views,
		})
	}
}

func ChatRoomMessages(service *chat.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := service.OpenRoom(c.UserContext(), localUserID(c), paramID(c, "peer"))
		if err != nil {
			if isPrecondition(err) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"status":  "error",
					"message": "Review your input",
					"data":    nil,
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"status":  "error",
				"message": "Internal server error",
				"data":    nil,
			})
		}
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": nil,
			"data":    view,
		})
	}
}

func ChatSendMessage(service *chat.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input := new(ChatSendInput)
		if err := c.BodyParser(input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status":  "error",
				"message": "Review your input",
				"data":    nil,
			})
		}

		msg, err := service.Send(c.UserContext(), localUserID(c), paramID(c, "peer"), input.Body)
		if err != nil {
			if isPrecondition(err) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"status":  "error",
					"message": "Review your input",
					"data":    nil,
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"status":  "error",
				"message": "Internal server error",
				"data":    nil,
			})
		}
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": nil,
			"data":    msg,
		})
	}
}

func ChatMarkRead(service *chat.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := service.MarkRead(c.UserContext(), localUserID(c), paramID(c, "peer")); err != nil && !isPrecondition(err) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"status":  "error",
				"message": "Internal server error",
				"data":    nil,
			})
		}
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": nil,
			"data":    nil,
		})
	}
}

// AdminRoomTranscript exposes a room's full history to moderators without
// touching either participant's unread state.
func AdminRoomTranscript(service *chat.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		messages, err := service.Transcript(c.UserContext(), paramID(c, "a"), paramID(c, "b"))
		if err != nil {
			if isPrecondition(err) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"status":  "error",
					"message": "Review your input",
					"data":    nil,
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"status":  "error",
				"message": "Internal server error",
				"data":    nil,
			})
		}
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": nil,
			"data":    messages,
		})
	}
}
