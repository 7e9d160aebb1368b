package fixture

import (
	"time"

	"github.com/AustinHatem/crema-live/domain"
	"github.com/google/uuid"
)

// DemoUserId is the account the "continue (test)" shortcut signs into.
var DemoUserId = uuid.MustParse("6f1c2a3e-0b7d-4c55-9a61-2d8e4f0c1a01")

var (
	sofiaId = uuid.MustParse("6f1c2a3e-0b7d-4c55-9a61-2d8e4f0c1a02")
	marcoId = uuid.MustParse("6f1c2a3e-0b7d-4c55-9a61-2d8e4f0c1a03")
	amyId   = uuid.MustParse("6f1c2a3e-0b7d-4c55-9a61-2d8e4f0c1a04")
	kaiId   = uuid.MustParse("6f1c2a3e-0b7d-4c55-9a61-2d8e4f0c1a05")
	lenaId  = uuid.MustParse("6f1c2a3e-0b7d-4c55-9a61-2d8e4f0c1a06")
)

// Credentials of the demo account. Seed copies them into the live provider.
const (
	DemoEmail    = "demo@crema.live"
	DemoPassword = "crema-demo"
)

func users(now time.Time) []domain.User {
	return []domain.User{
		{
			Id:          DemoUserId,
			Username:    "demo",
			DisplayName: "Demo User",
			Bio:         "Just here for the streams ☕",
			Nationality: "US",
			Languages:   []string{"English"},
			Email:       DemoEmail,
			Birthday:    time.Date(1995, time.May, 12, 0, 0, 0, 0, time.UTC),
			Followers:   128,
			Following:   2,
			CreatedAt:   now.AddDate(0, -6, 0),
		},
		{
			Id:          sofiaId,
			Username:    "sofia_live",
			DisplayName: "Sofia",
			Bio:         "Singing every night at 9",
			Nationality: "ES",
			Languages:   []string{"Spanish", "English"},
			Followers:   15400,
			Following:   210,
			IsStreaming: true,
			CreatedAt:   now.AddDate(-1, 0, 0),
		},
		{
			Id:          marcoId,
			Username:    "dj_marco",
			DisplayName: "DJ Marco",
			Bio:         "House, techno, sunrise sets",
			Nationality: "IT",
			Languages:   []string{"Italian", "English"},
			Followers:   8900,
			Following:   87,
			IsStreaming: true,
			CreatedAt:   now.AddDate(0, -10, 0),
		},
		{
			Id:          amyId,
			Username:    "chef_amy",
			DisplayName: "Chef Amy",
			Bio:         "Cooking live from my tiny kitchen",
			Nationality: "GB",
			Languages:   []string{"English"},
			Followers:   3200,
			Following:   140,
			IsStreaming: true,
			CreatedAt:   now.AddDate(0, -8, 0),
		},
		{
			Id:          kaiId,
			Username:    "gamer_kai",
			DisplayName: "Kai",
			Bio:         "Speedruns and chill",
			Nationality: "JP",
			Languages:   []string{"Japanese", "English"},
			Followers:   22100,
			Following:   33,
			IsStreaming: true,
			CreatedAt:   now.AddDate(-2, 0, 0),
		},
		{
			Id:          lenaId,
			Username:    "yoga_lena",
			DisplayName: "Lena",
			Bio:         "Morning flow, every day",
			Nationality: "DE",
			Languages:   []string{"German", "English"},
			Followers:   1200,
			Following:   300,
			CreatedAt:   now.AddDate(0, -3, 0),
		},
	}
}

type streamSeed struct {
	id       uuid.UUID
	streamer uuid.UUID
	title    string
	desc     string
	category string
	tags     []string
	viewers  int
	started  time.Duration
}

var streamSeeds = []streamSeed{
	{uuid.MustParse("a0000000-0000-4000-8000-000000000001"), sofiaId, "Late night acoustic covers 🎸", "Requests open in chat", "Music", []string{"music", "acoustic"}, 1234, 12 * time.Minute},
	{uuid.MustParse("a0000000-0000-4000-8000-000000000002"), marcoId, "Sunset house mix", "Two hours of deep house", "Music", []string{"dj", "house"}, 856, 40 * time.Minute},
	{uuid.MustParse("a0000000-0000-4000-8000-000000000003"), amyId, "Making fresh pasta from scratch", "Tagliatelle and a simple sauce", "Food", []string{"cooking"}, 342, 55 * time.Minute},
	{uuid.MustParse("a0000000-0000-4000-8000-000000000004"), kaiId, "Any% speedrun attempts", "PB or bust", "Gaming", []string{"gaming", "speedrun"}, 5021, 2 * time.Hour},
}

func streams(now time.Time, byId map[uuid.UUID]*domain.User) []*domain.Stream {
	out := make([]*domain.Stream, 0, len(streamSeeds))
	for _, s := range streamSeeds {
		out = append(out, &domain.Stream{
			Id:          s.id,
			Title:       s.title,
			Description: s.desc,
			ViewerCount: s.viewers,
			Streamer:    *byId[s.streamer],
			StartedAt:   now.Add(-s.started),
			Category:    s.category,
			Tags:        s.tags,
			IsLive:      true,
		})
	}
	return out
}

// chatMessages is the static history every fixture chat session opens with.
func chatMessages(now time.Time) []domain.ChatMessage {
	heart, _ := domain.GiftById("1")
	return []domain.ChatMessage{
		{Id: uuid.MustParse("c0000000-0000-4000-8000-000000000001"), UserId: marcoId, Username: "dj_marco", Message: "Hey everyone! 👋", Timestamp: now.Add(-5 * time.Minute)},
		{Id: uuid.MustParse("c0000000-0000-4000-8000-000000000002"), UserId: amyId, Username: "chef_amy", Message: "Love this song", Timestamp: now.Add(-4 * time.Minute)},
		{Id: uuid.MustParse("c0000000-0000-4000-8000-000000000003"), UserId: kaiId, Username: "gamer_kai", Message: "Sent a Heart", Timestamp: now.Add(-3 * time.Minute), Gift: &heart},
		{Id: uuid.MustParse("c0000000-0000-4000-8000-000000000004"), UserId: lenaId, Username: "yoga_lena", Message: "Greetings from Berlin", Timestamp: now.Add(-2 * time.Minute)},
		{Id: uuid.MustParse("c0000000-0000-4000-8000-000000000005"), UserId: marcoId, Username: "dj_marco", Message: "Can you play the one from yesterday?", Timestamp: now.Add(-1 * time.Minute)},
	}
}

func notifications(now time.Time) []*domain.Notification {
	return []*domain.Notification{
		{Id: uuid.MustParse("e0000000-0000-4000-8000-000000000001"), Type: domain.NotificationStreamStart, Title: "sofia_live is live", Message: "Late night acoustic covers 🎸", UserId: DemoUserId, ActorId: sofiaId, CreatedAt: now.Add(-12 * time.Minute)},
		{Id: uuid.MustParse("e0000000-0000-4000-8000-000000000002"), Type: domain.NotificationFollow, Title: "New follower", Message: "yoga_lena started following you", UserId: DemoUserId, ActorId: lenaId, CreatedAt: now.Add(-3 * time.Hour)},
		{Id: uuid.MustParse("e0000000-0000-4000-8000-000000000003"), Type: domain.NotificationGift, Title: "Gift received", Message: "gamer_kai sent you a Rose", UserId: DemoUserId, ActorId: kaiId, CreatedAt: now.Add(-26 * time.Hour), Read: true},
		{Id: uuid.MustParse("e0000000-0000-4000-8000-000000000004"), Type: domain.NotificationMention, Title: "Mentioned in chat", Message: "dj_marco mentioned you", UserId: DemoUserId, ActorId: marcoId, CreatedAt: now.Add(-50 * time.Hour), Read: true},
	}
}

// demo follows sofia and marco
var seedFollows = [][2]uuid.UUID{
	{DemoUserId, sofiaId},
	{DemoUserId, marcoId},
}
