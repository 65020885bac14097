package listener

import (
	"encoding/json"
	"log"

	"chat-service/event"
	"chat-service/socketio"
)

var (
	ApiChannel = make(chan event.ChannelData)
)

// Api mirrors peer-service events to connected clients: payloads that name
// a telegram_id land in that user's private room, payloads that name a
// chat_id land in the chat topic room.
func Api(server *socketio.Server) {
	for msg := range ApiChannel {
		if !msg.Out.Send {
			continue
		}

		var payload struct {
			TelegramID *string `json:"telegram_id"`
			ChatID     *uint   `json:"chat_id"`
		}
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			log.Printf("drop malformed [%s] event: %v", msg.Action, err)
			continue
		}

		switch {
		case payload.TelegramID != nil:
			server.DeliverToUser(*payload.TelegramID, json.RawMessage(msg.Data))
		case payload.ChatID != nil:
			server.DeliverToChatTopic(*payload.ChatID, json.RawMessage(msg.Data))
		}
	}
}
