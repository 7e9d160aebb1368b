package fixture

import (
	"context"
	"fmt"
	"time"

	"github.com/AustinHatem/crema-live/backend"
	"github.com/AustinHatem/crema-live/domain"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Seed copies the fixture data set into p through its public API. Every
// account gets DemoPassword. Seeding a provider that already has the demo
// account is a no-op.
func Seed(ctx context.Context, p backend.Provider) error {
	ok, err := p.IsUsernameAvailable(ctx, "demo")
	if err != nil {
		return fmt.Errorf("checking seed state: %w", err)
	}
	if !ok {
		log.Info("Seed data already present")
		return nil
	}

	now := time.Now()
	ids := make(map[uuid.UUID]uuid.UUID)
	for _, u := range users(now) {
		email := u.Email
		if email == "" {
			email = u.Username + "@crema.live"
		}
		created, err := p.CreateAccount(ctx, email, DemoPassword, u.Username, u.Birthday)
		if err != nil {
			return fmt.Errorf("seeding %s: %w", u.Username, err)
		}
		ids[u.Id] = created.Id

		update := domain.ProfileUpdate{
			DisplayName: &u.DisplayName,
			Bio:         &u.Bio,
			Avatar:      &u.Avatar,
			Nationality: &u.Nationality,
			Languages:   u.Languages,
		}
		if _, err := p.UpdateProfile(ctx, created.Id, update); err != nil {
			return fmt.Errorf("seeding profile of %s: %w", u.Username, err)
		}
	}

	for _, f := range seedFollows {
		if err := p.FollowUser(ctx, ids[f[0]], ids[f[1]]); err != nil {
			return fmt.Errorf("seeding follows: %w", err)
		}
	}

	// oldest first so the live list keeps the fixture order
	for i := len(streamSeeds) - 1; i >= 0; i-- {
		s := streamSeeds[i]
		streamId, err := p.CreateStream(ctx, domain.SaveStream{
			Title:       s.title,
			Description: s.desc,
			StreamerId:  ids[s.streamer],
			Category:    s.category,
			Tags:        s.tags,
		})
		if err != nil {
			return fmt.Errorf("seeding stream %q: %w", s.title, err)
		}
		if err := p.UpdateViewerCount(ctx, streamId, s.viewers); err != nil {
			return err
		}
		for _, m := range chatMessages(now) {
			m.Id = uuid.New()
			m.StreamId = streamId
			m.UserId = ids[m.UserId]
			if err := p.SendChatMessage(ctx, streamId, m); err != nil {
				return fmt.Errorf("seeding chat: %w", err)
			}
		}
	}

	for _, n := range notifications(now) {
		n.Id = uuid.New()
		n.UserId = ids[n.UserId]
		n.ActorId = ids[n.ActorId]
		if err := p.CreateNotification(ctx, *n); err != nil {
			return fmt.Errorf("seeding notifications: %w", err)
		}
	}

	log.Info("Seeded provider", "provider", p.Name(), "users", len(ids), "streams", len(streamSeeds))
	return nil
}
