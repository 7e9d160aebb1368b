package domain

import (
	"time"

	"github.com/google/uuid"
)

type Gift struct {
	Id    string
	Name  string
	Icon  string
	Price int
}

// Gifts is the catalogue offered in the stream view.
var Gifts = []Gift{
	{Id: "1", Name: "Heart", Icon: "❤️", Price: 1},
	{Id: "2", Name: "Rose", Icon: "🌹", Price: 5},
	{Id: "3", Name: "Diamond", Icon: "💎", Price: 10},
	{Id: "4", Name: "Crown", Icon: "👑", Price: 50},
	{Id: "5", Name: "Rocket", Icon: "🚀", Price: 100},
}

func GiftById(id string) (Gift, bool) {
	for _, g := range Gifts {
		if g.Id == id {
			return g, true
		}
	}
	return Gift{}, false
}

type ChatMessage struct {
	Id        uuid.UUID
	StreamId  uuid.UUID
	UserId    uuid.UUID
	Username  string
	Message   string
	Timestamp time.Time
	Gift      *Gift
}

// NewChatMessage stamps a message with a fresh id. The timestamp is never
// earlier than after, so appending keeps the list ascending.
func NewChatMessage(streamId uuid.UUID, author *User, text string, after time.Time) ChatMessage {
	now := time.Now()
	if now.Before(after) {
		now = after
	}
	return ChatMessage{
		Id:        uuid.New(),
		StreamId:  streamId,
		UserId:    author.Id,
		Username:  author.Username,
		Message:   text,
		Timestamp: now,
	}
}
