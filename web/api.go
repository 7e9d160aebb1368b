package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/AustinHatem/crema-live/backend"
	"github.com/AustinHatem/crema-live/domain"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// API serves the JSON endpoints. Nothing here writes.
type API struct {
	provider backend.Provider
}

type UserJSON struct {
	Id          string   `json:"id"`
	Username    string   `json:"username"`
	DisplayName string   `json:"displayName"`
	Avatar      string   `json:"avatar,omitempty"`
	Bio         string   `json:"bio,omitempty"`
	Nationality string   `json:"nationality,omitempty"`
	Languages   []string `json:"languages,omitempty"`
	Followers   int      `json:"followers"`
	Following   int      `json:"following"`
	IsStreaming bool     `json:"isStreaming"`
	CreatedAt   string   `json:"createdAt"`
}

type StreamJSON struct {
	Id          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Thumbnail   string   `json:"thumbnail,omitempty"`
	ViewerCount int      `json:"viewerCount"`
	Streamer    UserJSON `json:"streamer"`
	StartedAt   string   `json:"startedAt"`
	EndedAt     *string  `json:"endedAt,omitempty"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags"`
	IsLive      bool     `json:"isLive"`
}

type ChatMessageJSON struct {
	Id        string `json:"id"`
	UserId    string `json:"userId"`
	Username  string `json:"username"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Gift      string `json:"gift,omitempty"`
}

// Emails and birthdays are never exposed.
func toUserJSON(u domain.User) UserJSON {
	return UserJSON{
		Id:          u.Id.String(),
		Username:    u.Username,
		DisplayName: u.Name(),
		Avatar:      u.Avatar,
		Bio:         u.Bio,
		Nationality: u.Nationality,
		Languages:   u.Languages,
		Followers:   u.Followers,
		Following:   u.Following,
		IsStreaming: u.IsStreaming,
		CreatedAt:   u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toStreamJSON(s domain.Stream) StreamJSON {
	out := StreamJSON{
		Id:          s.Id.String(),
		Title:       s.Title,
		Description: s.Description,
		Thumbnail:   s.Thumbnail,
		ViewerCount: s.ViewerCount,
		Streamer:    toUserJSON(s.Streamer),
		StartedAt:   s.StartedAt.UTC().Format(time.RFC3339),
		Category:    s.Category,
		Tags:        s.Tags,
		IsLive:      s.IsLive,
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if s.EndedAt != nil {
		ended := s.EndedAt.UTC().Format(time.RFC3339)
		out.EndedAt = &ended
	}
	return out
}

func toChatJSON(m domain.ChatMessage) ChatMessageJSON {
	out := ChatMessageJSON{
		Id:        m.Id.String(),
		UserId:    m.UserId.String(),
		Username:  m.Username,
		Message:   m.Message,
		Timestamp: m.Timestamp.UTC().Format(time.RFC3339),
	}
	if m.Gift != nil {
		out.Gift = m.Gift.Name
	}
	return out
}

func (a *API) fail(c *gin.Context, err error) {
	if errors.Is(err, backend.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	log.Error("API request failed", "path", c.Request.URL.Path, "err", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func parseId(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

func (a *API) LiveStreams(c *gin.Context) {
	streams, err := a.provider.GetLiveStreams(c.Request.Context())
	if err != nil {
		a.fail(c, err)
		return
	}
	out := make([]StreamJSON, 0, len(streams))
	for _, s := range streams {
		out = append(out, toStreamJSON(s))
	}
	c.JSON(http.StatusOK, out)
}

func (a *API) Stream(c *gin.Context) {
	id, ok := parseId(c)
	if !ok {
		return
	}
	s, err := a.provider.GetStream(c.Request.Context(), id)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toStreamJSON(*s))
}

func (a *API) Chat(c *gin.Context) {
	id, ok := parseId(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := a.provider.GetStream(ctx, id); err != nil {
		a.fail(c, err)
		return
	}
	msgs, err := a.provider.ChatMessages(ctx, id)
	if err != nil {
		a.fail(c, err)
		return
	}
	out := make([]ChatMessageJSON, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toChatJSON(m))
	}
	c.JSON(http.StatusOK, out)
}

func (a *API) User(c *gin.Context) {
	u, err := a.provider.GetUserByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserJSON(*u))
}
