package router

import (
	"context"
	"strconv"

	"swappo-chat-service/chat"
	"swappo-chat-service/socketio"
	"swappo-chat-service/utils"

	"github.com/zishang520/socket.io/v2/socket"
)

type InitConnection struct {
	Inbox      []chat.InboxView `json:"inbox"`
	UserStatus []ChatUserStatus `json:"userStatus"`
}

type ChatUserStatus struct {
	Id     uint `json:"id"`
	Status bool `json:"status"`
}

func clientUserID(client *socket.Socket) uint {
	if client.Data() == nil {
		return 0
	}
	id, _ := strconv.ParseUint(client.Data().(*utils.TokenMetadata).Id, 10, 64)
	return uint(id)
}

func parseID(arg interface{}) uint {
	raw, ok := arg.(string)
	if !ok {
		return 0
	}
	id, _ := strconv.ParseUint(raw, 10, 64)
	return uint(id)
}

func peerStatus(server *socket.Server, peers []uint) []ChatUserStatus {
	rooms := server.Sockets().Adapter().Rooms().Keys()

	statuses := []ChatUserStatus{}
	for _, peer := range peers {
		online := false
		for i := range rooms {
			if rooms[i] == socket.Room(strconv.FormatUint(uint64(peer), 10)) {
				online = true
				break
			}
		}
		statuses = append(statuses, ChatUserStatus{Id: peer, Status: online})
	}
	return statuses
}

// Socket is the realtime surface of the chat service. Every handler is a
// thin call into chat.Service; unauthenticated sockets and malformed
// arguments fall through without a reply.
func Socket(server *socket.Server, chatService *chat.Service) {
	server.On("connection", func(clients ...interface{}) {
		client := clients[0].(*socket.Socket)

		client.On("init", func(args ...interface{}) {
			inbox := []chat.InboxView{}
			statuses := []ChatUserStatus{}

			if owner := clientUserID(client); owner != 0 {
				if views, err := chatService.Inbox(context.Background(), owner); err == nil {
					inbox = views
				}
				if peers, err := chatService.Peers(context.Background(), owner); err == nil {
					statuses = peerStatus(server, peers)
				}
			}

			// Send response
			client.Emit(
				"init",
				InitConnection{
					Inbox:      inbox,
					UserStatus: statuses,
				},
			)
		})

		client.On("chat_inbox", func(args ...interface{}) {
			owner := clientUserID(client)
			if owner == 0 {
				return
			}

			views, err := chatService.Inbox(context.Background(), owner)
			if err != nil {
				return
			}
			client.Emit("chat_inbox", views)
		})

		client.On("chat_room_open", func(args ...interface{}) {
			owner := clientUserID(client)
			if owner == 0 || len(args) < 1 {
				return
			}

			view, err := chatService.OpenRoom(context.Background(), owner, parseID(args[0]))
			if err != nil {
				return
			}
			client.Emit("chat_room_open", view)
		})

		client.On("chat_send_message", func(args ...interface{}) {
			owner := clientUserID(client)
			if owner == 0 || len(args) < 2 {
				return
			}

			peer := parseID(args[0])
			body, _ := args[1].(string)

			msg, err := chatService.Send(context.Background(), owner, peer, body)
			if err != nil {
				// Precondition misses and write failures alike: the
				// sender simply sees no echo.
				return
			}

			// Echo to the sender, push to the recipient's room.
			client.Emit("chat_message", msg)
			socketio.Emit(strconv.FormatUint(uint64(peer), 10), "chat_message", msg)

			// Refresh hints; each side pulls its own enriched inbox.
			client.Emit("chat_inbox_update")
			socketio.Emit(strconv.FormatUint(uint64(peer), 10), "chat_inbox_update", nil)
		})

		client.On("chat_mark_read", func(args ...interface{}) {
			owner := clientUserID(client)
			if owner == 0 || len(args) < 1 {
				return
			}
			chatService.MarkRead(context.Background(), owner, parseID(args[0]))
		})

		client.On("chat_user_status", func(args ...interface{}) {
			owner := clientUserID(client)
			if owner == 0 {
				return
			}

			peers, err := chatService.Peers(context.Background(), owner)
			if err != nil {
				return
			}

			// Send response
			client.Emit(
				"chat_user_status",
				peerStatus(server, peers),
			)
		})
	})
}
