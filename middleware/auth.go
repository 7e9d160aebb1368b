package middleware

import (
	"github.com/AustinHatem/crema-live/auth"
	"github.com/AustinHatem/crema-live/util"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/google/uuid"
)

// AuthMiddleware logs who connected and whether their key is remembered.
// Signing in happens inside the client; keys only pick the remembered
// session.
func AuthMiddleware(store *auth.Store) wish.Middleware {
	return func(h ssh.Handler) ssh.Handler {
		return func(s ssh.Session) {
			fp := util.KeyFingerprint(s.PublicKey())
			remembered := false
			if store != nil && fp != "" {
				id, err := store.Lookup(fp)
				if err != nil {
					log.Warn("Session lookup failed", "fingerprint", fp, "err", err)
				}
				remembered = id != uuid.Nil
			}
			log.Info("Client connected",
				"user", s.User(),
				"remote", s.RemoteAddr().String(),
				"fingerprint", fp,
				"remembered", remembered,
			)
			h(s)
			log.Info("Client disconnected", "user", s.User(), "remote", s.RemoteAddr().String())
		}
	}
}
