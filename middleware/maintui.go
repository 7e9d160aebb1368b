package middleware

import (
	"github.com/AustinHatem/crema-live/auth"
	"github.com/AustinHatem/crema-live/backend"
	"github.com/AustinHatem/crema-live/ui"
	"github.com/AustinHatem/crema-live/util"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	bm "github.com/charmbracelet/wish/bubbletea"
	"github.com/muesli/termenv"
)

// MainTui runs one client per SSH session. Sessions share the provider and
// the session store; the signed-in user is per connection.
func MainTui(p backend.Provider, store *auth.Store) wish.Middleware {
	teaHandler := func(s ssh.Session) *tea.Program {
		pty, _, active := s.Pty()
		if !active {
			wish.Println(s, "no active terminal, skipping")
			return nil
		}

		session := auth.NewSession(p, store, util.KeyFingerprint(s.PublicKey()))
		go func() {
			<-s.Context().Done()
			session.Close()
		}()

		m := ui.NewModel(p, session, pty.Window.Width, pty.Window.Height)
		return tea.NewProgram(m,
			tea.WithInput(s),
			tea.WithOutput(s),
			tea.WithAltScreen(),
			tea.WithMouseCellMotion(),
			tea.WithFilter(ui.QuitFilter),
		)
	}
	log.Debug("Serving the client over SSH", "provider", p.Name())
	return bm.MiddlewareWithProgramHandler(teaHandler, termenv.ANSI256)
}
