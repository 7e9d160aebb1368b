package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id          uuid.UUID
	Username    string
	DisplayName string
	Avatar      string
	Bio         string
	Nationality string
	Languages   []string
	Email       string
	Birthday    time.Time
	Followers   int
	Following   int
	IsStreaming bool
	CreatedAt   time.Time
}

// Name returns the display name, falling back to the username.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

func (u *User) Handle() string {
	return "@" + u.Username
}

func (u *User) ToString() string {
	return fmt.Sprintf("\n\tId: %s \n\tUsername: %s \n\tEmail: %s \n\tCREATED_AT: %s)", u.Id, u.Username, u.Email, u.CreatedAt)
}

// ProfileUpdate is a partial update of a user profile. Nil fields are left untouched.
type ProfileUpdate struct {
	DisplayName *string
	Bio         *string
	Avatar      *string
	Nationality *string
	Languages   []string
}

// Apply merges the update into u.
func (p ProfileUpdate) Apply(u *User) {
	if p.DisplayName != nil {
		u.DisplayName = *p.DisplayName
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	if p.Nationality != nil {
		u.Nationality = *p.Nationality
	}
	if p.Languages != nil {
		u.Languages = append([]string(nil), p.Languages...)
	}
}

func (p ProfileUpdate) Empty() bool {
	return p.DisplayName == nil && p.Bio == nil && p.Avatar == nil && p.Nationality == nil && p.Languages == nil
}

// Follow is a follower -> following relationship.
type Follow struct {
	FollowerId  uuid.UUID
	FollowingId uuid.UUID
	CreatedAt   time.Time
}
