package web

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AustinHatem/crema-live/backend"
	"github.com/AustinHatem/crema-live/domain"
	"github.com/AustinHatem/crema-live/util"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/feeds"
)

func baseUrl(conf *util.AppConfig) string {
	if conf.Conf.PublicUrl != "" {
		return strings.TrimSuffix(conf.Conf.PublicUrl, "/")
	}
	return fmt.Sprintf("http://%s:%d", conf.Conf.Host, conf.Conf.HttpPort)
}

func streamItem(conf *util.AppConfig, s domain.Stream) *feeds.Item {
	content := s.Description
	if s.Category != "" {
		content = fmt.Sprintf("[%s] %s", s.Category, content)
	}
	return &feeds.Item{
		Id:          s.Id.String(),
		Title:       s.Title,
		Link:        &feeds.Link{Href: fmt.Sprintf("%s/feed/%s", baseUrl(conf), s.Id)},
		Description: fmt.Sprintf("%s viewers", util.FormatCount(s.ViewerCount)),
		Content:     content,
		Author:      &feeds.Author{Name: s.Streamer.Username},
		Created:     s.StartedAt,
	}
}

// GetRSS renders the live streams, or only those of username, as RSS.
func GetRSS(ctx context.Context, conf *util.AppConfig, p backend.Provider, username string) (string, error) {
	link := baseUrl(conf) + "/feed"
	title := "Crema Live - live now"
	author := "everyone"

	if username != "" {
		if _, err := p.GetUserByUsername(ctx, username); err != nil {
			log.Debug("RSS for unknown user", "username", username, "err", err)
			return "", fmt.Errorf("reading user %s: %w", username, err)
		}
		title = fmt.Sprintf("Crema Live - %s", username)
		author = username
		link = fmt.Sprintf("%s?username=%s", link, username)
	}

	streams, err := p.GetLiveStreams(ctx)
	if err != nil {
		log.Error("Could not get live streams", "err", err)
		return "", fmt.Errorf("reading live streams: %w", err)
	}

	feed := &feeds.Feed{
		Title:       title,
		Link:        &feeds.Link{Href: link},
		Description: "streams live on crema",
		Author:      &feeds.Author{Name: author},
		Created:     time.Now(),
	}
	for _, s := range streams {
		if username != "" && s.Streamer.Username != username {
			continue
		}
		feed.Items = append(feed.Items, streamItem(conf, s))
	}
	return feed.ToRss()
}

// GetRSSItem renders a single stream, live or ended, as RSS.
func GetRSSItem(ctx context.Context, conf *util.AppConfig, p backend.Provider, id uuid.UUID) (string, error) {
	s, err := p.GetStream(ctx, id)
	if err != nil {
		return "", fmt.Errorf("reading stream %s: %w", id, err)
	}
	item := streamItem(conf, *s)
	feed := &feeds.Feed{
		Title:       s.Title,
		Link:        item.Link,
		Description: "a single crema stream",
		Author:      item.Author,
		Created:     time.Now(),
		Items:       []*feeds.Item{item},
	}
	return feed.ToRss()
}
