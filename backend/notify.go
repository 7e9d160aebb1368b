package backend

import (
	"context"
	"fmt"

	"github.com/AustinHatem/crema-live/domain"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// NotifyFollow tells target that actor started following them.
func NotifyFollow(ctx context.Context, n Notifications, actor *domain.User, targetId uuid.UUID) error {
	return n.CreateNotification(ctx, domain.Notification{
		Type:    domain.NotificationFollow,
		Title:   "New follower",
		Message: fmt.Sprintf("%s started following you", actor.Username),
		UserId:  targetId,
		ActorId: actor.Id,
	})
}

// NotifyGift tells the streamer about a gift sent in their chat.
func NotifyGift(ctx context.Context, n Notifications, actor *domain.User, streamerId uuid.UUID, gift domain.Gift) error {
	if actor.Id == streamerId {
		return nil
	}
	return n.CreateNotification(ctx, domain.Notification{
		Type:    domain.NotificationGift,
		Title:   "Gift received",
		Message: fmt.Sprintf("%s sent you a %s", actor.Username, gift.Name),
		UserId:  streamerId,
		ActorId: actor.Id,
	})
}

// NotifyStreamStart fans a stream_start notification out to every follower of
// the streamer. A failed recipient is logged and skipped.
func NotifyStreamStart(ctx context.Context, p interface {
	Follows
	Notifications
}, streamer *domain.User, title string) (int, error) {
	followers, err := p.FollowerIds(ctx, streamer.Id)
	if err != nil {
		return 0, fmt.Errorf("listing followers: %w", err)
	}
	sent := 0
	for _, id := range followers {
		err := p.CreateNotification(ctx, domain.Notification{
			Type:    domain.NotificationStreamStart,
			Title:   fmt.Sprintf("%s is live", streamer.Username),
			Message: title,
			UserId:  id,
			ActorId: streamer.Id,
		})
		if err != nil {
			log.Warn("Failed to notify follower", "follower", id, "err", err)
			continue
		}
		sent++
	}
	return sent, nil
}
