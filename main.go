package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"swappo-chat-service/chat"
	"swappo-chat-service/config"
	"swappo-chat-service/database"
	"swappo-chat-service/event"
	"swappo-chat-service/event/listener"
	"swappo-chat-service/model"
	"swappo-chat-service/router"
	"swappo-chat-service/socketio"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	log.SetPrefix("swappo-chat-service: ")

	rest := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		StrictRouting:         true,
		AppName:               "swappo-chat-service",
	})

	rest.Use(cors.New())

	database.RedisConnect()
	database.PostgresConnect()

	event.RabbitMQConnect([]string{
		// Connect to queues
		"api",
		"notifications",
	})

	// Run "api" listener
	go listener.Api()

	// Subscribe listener channel to "api" events
	event.RabbitMQSubscribe([]event.RabbitMQSubscribeListener{
		{
			Queue:   "api",
			Channel: listener.ApiChannel,
		},
	})

	// Init event logs
	event.Init()

	// Chat protocol over the shared stores; stored messages fan out to the
	// notification queue for the rest of the platform.
	profiles := chat.NewDirectory(database.Postgres, database.Redis[2])
	listener.Profiles = profiles

	chatService := chat.NewService(
		chat.NewStore(database.Postgres),
		profiles,
		func(msg *model.ChatMessage) {
			data, _ := json.Marshal(msg)
			event.Emit("notifications", "message.sent", data, true)
		},
	)

	socket := socketio.Init(rest)

	router.Rest(rest, chatService)
	router.Socket(socket, chatService)

	go rest.Listen(fmt.Sprintf(":%s", config.Config("SERVER_PORT")))

	exit := make(chan struct{})
	SignalC := make(chan os.Signal, 1)

	signal.Notify(SignalC, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		for s := range SignalC {
			switch s {
			case syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
				close(exit)
				return
			}
		}
	}()

	<-exit
	socket.Close(nil)
	event.RabbitMQChannel.Close()
	event.RabbitMQConnection.Close()
	event.InLogFile.Close()
	event.OutLogFile.Close()
	os.Exit(0)
}
