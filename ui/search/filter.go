package search

import (
	"sort"
	"strings"

	"github.com/AustinHatem/crema-live/domain"
	"github.com/google/uuid"
)

// FilterUsers keeps users whose username or display name contains query,
// ignoring case. An empty query keeps everyone.
func FilterUsers(users []domain.User, query string) []domain.User {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []domain.User
	for _, u := range users {
		if q == "" ||
			strings.Contains(strings.ToLower(u.Username), q) ||
			strings.Contains(strings.ToLower(u.DisplayName), q) {
			out = append(out, u)
		}
	}
	return out
}

// FilterStreams keeps streams whose title or streamer username contains
// query, ignoring case.
func FilterStreams(streams []domain.Stream, query string) []domain.Stream {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []domain.Stream
	for _, s := range streams {
		if q == "" ||
			strings.Contains(strings.ToLower(s.Title), q) ||
			strings.Contains(strings.ToLower(s.Streamer.Username), q) {
			out = append(out, s)
		}
	}
	return out
}

// mergeUsers joins the lists without duplicates, sorted by username.
func mergeUsers(lists ...[]domain.User) []domain.User {
	seen := make(map[uuid.UUID]bool)
	var out []domain.User
	for _, list := range lists {
		for _, u := range list {
			if !seen[u.Id] {
				seen[u.Id] = true
				out = append(out, u)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Username) < strings.ToLower(out[j].Username)
	})
	return out
}
