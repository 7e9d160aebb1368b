// Package auth holds the signed-in state of one client. Each SSH connection
// (or the local terminal) owns its own Session.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/AustinHatem/crema-live/backend"
	"github.com/AustinHatem/crema-live/backend/fixture"
	"github.com/AustinHatem/crema-live/domain"
	"github.com/AustinHatem/crema-live/util"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = backend.ErrInvalidCredentials
	ErrNotSignedIn        = errors.New("You must be signed in")
)

// Backend is the slice of the provider a session needs.
type Backend interface {
	backend.Users
	backend.Accounts
}

type Session struct {
	mu          sync.RWMutex
	backend     Backend
	store       *Store
	fingerprint string
	user        *domain.User
}

// NewSession creates a signed-out session. store may be nil, and an empty
// fingerprint disables remembering.
func NewSession(b Backend, store *Store, fingerprint string) *Session {
	return &Session{backend: b, store: store, fingerprint: fingerprint}
}

// CurrentUser returns a copy of the signed-in user, nil when signed out.
func (s *Session) CurrentUser() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) SignedIn() bool {
	return s.CurrentUser() != nil
}

func (s *Session) SignIn(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return errors.New("Please fill in all fields")
	}
	if err := util.ValidateEmail(email); err != nil {
		return err
	}
	u, err := s.backend.Authenticate(ctx, email, password)
	if err != nil {
		return humanize(err)
	}
	s.setUser(u)
	log.Info("Signed in", "username", u.Username)
	return nil
}

// SignInDemo signs into the demo account behind the "continue (test)" shortcut.
func (s *Session) SignInDemo(ctx context.Context) error {
	return s.SignIn(ctx, fixture.DemoEmail, fixture.DemoPassword)
}

func (s *Session) SignUp(ctx context.Context, email, password, username string, birthday time.Time) error {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	if err := util.ValidateUsername(username); err != nil {
		return err
	}
	if err := util.ValidateEmail(email); err != nil {
		return err
	}
	if err := util.ValidatePassword(password); err != nil {
		return err
	}
	if err := util.ValidateBirthday(birthday, time.Now()); err != nil {
		return err
	}
	u, err := s.backend.CreateAccount(ctx, email, password, username, birthday)
	if err != nil {
		return humanize(err)
	}
	s.setUser(u)
	log.Info("Signed up", "username", u.Username)
	return nil
}

func (s *Session) SignOut(ctx context.Context) error {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	if s.store != nil && s.fingerprint != "" {
		if err := s.store.Forget(s.fingerprint); err != nil {
			return fmt.Errorf("forgetting session: %w", err)
		}
	}
	return nil
}

func (s *Session) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) error {
	current := s.CurrentUser()
	if current == nil {
		return ErrNotSignedIn
	}
	u, err := s.backend.UpdateProfile(ctx, current.Id, update)
	if err != nil {
		return humanize(err)
	}
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
	return nil
}

// Refresh reloads the signed-in user, picking up follower counts and the
// streaming flag.
func (s *Session) Refresh(ctx context.Context) error {
	current := s.CurrentUser()
	if current == nil {
		return ErrNotSignedIn
	}
	u, err := s.backend.GetUser(ctx, current.Id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
	return nil
}

// DeleteAccount removes the signed-in account and signs out.
func (s *Session) DeleteAccount(ctx context.Context) error {
	current := s.CurrentUser()
	if current == nil {
		return ErrNotSignedIn
	}
	if err := s.backend.DeleteAccount(ctx, current.Id); err != nil {
		return humanize(err)
	}
	if s.store != nil {
		if err := s.store.ForgetUser(current.Id); err != nil {
			log.Warn("Failed to drop remembered sessions", "err", err)
		}
	}
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	return nil
}

// Restore signs back into the account remembered for this fingerprint.
// It reports whether a user was restored.
func (s *Session) Restore(ctx context.Context) (bool, error) {
	if s.store == nil || s.fingerprint == "" {
		return false, nil
	}
	id, err := s.store.Lookup(s.fingerprint)
	if err != nil {
		return false, err
	}
	if id == uuid.Nil {
		return false, nil
	}
	u, err := s.backend.GetUser(ctx, id)
	if backend.IsNotFound(err) {
		_ = s.store.Forget(s.fingerprint)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
	return true, nil
}

// IsUsernameAvailable is a best-effort pre-check. A backend failure reports
// the name as available and leaves the final word to SignUp.
func (s *Session) IsUsernameAvailable(ctx context.Context, username string) bool {
	ok, err := s.backend.IsUsernameAvailable(ctx, strings.TrimSpace(username))
	if err != nil {
		log.Warn("Username availability check failed", "err", err)
		return true
	}
	return ok
}

// Close releases nothing shared: the store belongs to the server.
func (s *Session) Close() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}

func (s *Session) setUser(u *domain.User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
	if s.store != nil && s.fingerprint != "" {
		if err := s.store.Remember(s.fingerprint, u.Id); err != nil {
			log.Warn("Failed to remember session", "err", err)
		}
	}
}

// humanize keeps sentinel messages and hides storage details.
func humanize(err error) error {
	switch {
	case errors.Is(err, backend.ErrInvalidCredentials),
		errors.Is(err, backend.ErrUsernameTaken),
		errors.Is(err, backend.ErrEmailTaken),
		errors.Is(err, backend.ErrNotFound):
		return err
	default:
		log.Error("Auth backend failure", "err", err)
		return fmt.Errorf("Something went wrong, please try again: %w", err)
	}
}
