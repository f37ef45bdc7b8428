package listener

import (
	"context"
	"encoding/json"
	"log"

	"swappo-chat-service/chat"
	"swappo-chat-service/event"
)

var (
	ApiChannel = make(chan event.EventChannelData)

	// Profiles is set at boot; profile events arriving before that are dropped.
	Profiles *chat.Directory
)

type profileEvent struct {
	Id uint `json:"id"`
}

// Api consumes platform events from the marketplace API queue. The chat
// service only cares about profile changes, which invalidate the inbox
// join cache.
func Api() {
	for data := range ApiChannel {
		switch data.Action {
		case "user.profile_updated", "user.deleted":
			if Profiles == nil {
				continue
			}
			payload := profileEvent{}
			if err := json.Unmarshal(data.Data, &payload); err != nil {
				log.Printf("ignoring malformed %s event: %v", data.Action, err)
				continue
			}
			Profiles.Invalidate(context.Background(), payload.Id)
		}
	}
}
