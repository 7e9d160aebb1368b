package domain

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationFollow      NotificationType = "follow"
	NotificationGift        NotificationType = "gift"
	NotificationStreamStart NotificationType = "stream_start"
	NotificationMention     NotificationType = "mention"
)

type Notification struct {
	Id        uuid.UUID
	Type      NotificationType
	Title     string
	Message   string
	UserId    uuid.UUID // recipient
	ActorId   uuid.UUID // the user the notification is about, uuid.Nil if none
	Read      bool
	CreatedAt time.Time
}

// Icon is the glyph shown next to a notification.
func (t NotificationType) Icon() string {
	switch t {
	case NotificationFollow:
		return "👤"
	case NotificationGift:
		return "🎁"
	case NotificationStreamStart:
		return "▶"
	case NotificationMention:
		return "💬"
	default:
		return "🔔"
	}
}
