package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const MaxStreamTitle = 130

type Stream struct {
	Id          uuid.UUID
	Title       string
	Description string
	Thumbnail   string
	ViewerCount int
	Streamer    User
	StartedAt   time.Time
	EndedAt     *time.Time // nil while the stream is live
	Category    string
	Tags        []string
	IsLive      bool
}

// SaveStream carries the fields needed to create a stream.
type SaveStream struct {
	Title       string
	Description string
	Thumbnail   string
	StreamerId  uuid.UUID
	Category    string
	Tags        []string
}

func (s *Stream) ToString() string {
	return fmt.Sprintf("\n\tId: %s \n\tTitle: %s \n\tStreamer: %s \n\tStartedAt: %s)", s.Id, s.Title, s.Streamer.Username, s.StartedAt)
}
